package ops

import (
	"context"
	"testing"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

func TestDelete_SelectedMovesToMostRecent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	a := mustIngest(t, database, "a.zip", namedZip(t, "A"))
	b := mustIngest(t, database, "b.zip", namedZip(t, "B"))
	c := mustIngest(t, database, "c.zip", namedZip(t, "C"))

	// c is selected; deleting it moves the selection to b
	output, err := Delete(ctx, database, DeleteInput{ID: c})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !output.Deleted || output.ID != c || output.Selected != b {
		t.Errorf("Delete() = %+v, want selected %s", output, b)
	}

	// deleting an unselected bundle keeps the selection
	output, err = Delete(ctx, database, DeleteInput{ID: a})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if output.Selected != b {
		t.Errorf("Selected = %q, want %q", output.Selected, b)
	}

	// deleting the last one clears it
	output, err = Delete(ctx, database, DeleteInput{ID: b})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if output.Selected != "" {
		t.Errorf("Selected = %q, want empty", output.Selected)
	}
}

func TestDelete_NotFound(t *testing.T) {
	database := openTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{ID: "missing"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Delete() error = %v, want NOT_FOUND", err)
	}
}

func TestDelete_RequiresID(t *testing.T) {
	database := openTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{ID: "  "})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Delete() error = %v, want INVALID_REQUEST", err)
	}
}
