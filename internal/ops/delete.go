package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	// Selected is the selected bundle after the delete; empty when the collection is empty
	// or nothing was selected
	Selected string `json:"selected"`
}

// Delete removes a bundle permanently. Deleting the selected bundle moves the selection to
// the most recently ingested remaining bundle.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	selected, err := db.Delete(ctx, database, id)
	if err != nil {
		return nil, err
	}
	slog.Info("deleted bundle", "id", id, "selected", selected)

	return &DeleteOutput{
		Deleted:  true,
		ID:       id,
		Selected: selected,
	}, nil
}
