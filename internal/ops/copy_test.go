package ops

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

type recordingClipboard struct {
	text string
	err  error
}

func (c *recordingClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func TestCopy_WritesDocument(t *testing.T) {
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))
	cb := &recordingClipboard{}

	output, err := Copy(context.Background(), database, cb, CopyInput{})
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	b, err := db.GetByID(context.Background(), database, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if cb.text != b.HTML {
		t.Error("clipboard text differs from the stored document")
	}
	if output.ID != id || output.Name != b.Name || output.Bytes != len(b.HTML) {
		t.Errorf("Copy() = %+v", output)
	}
}

func TestCopy_ClipboardFailure(t *testing.T) {
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))
	cb := &recordingClipboard{err: stderrors.New("xclip: not found")}

	_, err := Copy(context.Background(), database, cb, CopyInput{ID: id})
	if !errors.Is(err, errors.ErrExportFailed) {
		t.Fatalf("Copy() error = %v, want EXPORT_FAILED", err)
	}

	// The collection is untouched
	if _, err := db.GetByID(context.Background(), database, id); err != nil {
		t.Errorf("bundle gone after failed copy: %v", err)
	}
}

func TestCopy_NotFound(t *testing.T) {
	database := openTestDB(t)
	cb := &recordingClipboard{}

	_, err := Copy(context.Background(), database, cb, CopyInput{ID: "missing"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Copy() error = %v, want NOT_FOUND", err)
	}
	if cb.text != "" {
		t.Error("clipboard written for a missing bundle")
	}
}
