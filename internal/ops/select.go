package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// SelectInput contains parameters for the Select operation.
type SelectInput struct {
	ID string // required
}

// SelectOutput contains the result of the Select and Selected operations.
// Bundle is nil when nothing is selected.
type SelectOutput struct {
	Bundle *bundle.Summary `json:"selected"`
}

// Select makes the given bundle the selected one.
func Select(ctx context.Context, database *sql.DB, input SelectInput) (*SelectOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.Select(ctx, database, id); err != nil {
		return nil, err
	}
	return Selected(ctx, database)
}

// Selected reports the selected bundle, if any.
func Selected(ctx context.Context, database *sql.DB) (*SelectOutput, error) {
	id, err := db.Selected(ctx, database)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return &SelectOutput{}, nil
	}
	b, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	s := b.Summary()
	return &SelectOutput{Bundle: &s}, nil
}
