package ops

import (
	"context"
	"database/sql"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID          string // empty means the selected bundle
	IncludeHTML *bool  // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	bundle.Summary
	Selected   bool           `json:"selected"`
	HTML       string         `json:"html,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Assets     []bundle.Asset `json:"assets"`
	Unresolved []string       `json:"unresolved,omitempty"`
}

// Fetch retrieves one bundle. Asset payloads are never included, only their metadata.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id, err := ResolveID(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	b, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	selected, err := db.Selected(ctx, database)
	if err != nil {
		return nil, err
	}

	assets := make([]bundle.Asset, 0, len(b.Assets))
	for _, name := range b.Assets.Names() {
		assets = append(assets, b.Assets[name])
	}

	output := &FetchOutput{
		Summary:    b.Summary(),
		Selected:   b.ID == selected,
		Notes:      b.Notes,
		Assets:     assets,
		Unresolved: bundle.UnresolvedReferences(b.HTML),
	}

	includeHTML := true
	if input.IncludeHTML != nil {
		includeHTML = *input.IncludeHTML
	}
	if includeHTML {
		output.HTML = b.HTML
	}

	return output, nil
}

// Document returns a bundle's self-contained HTML and the bundle it belongs to.
// It is the "transient reference" used by preview frames and downloads.
func Document(ctx context.Context, database *sql.DB, id string) (*bundle.Bundle, error) {
	id, err := ResolveID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return db.GetByID(ctx, database, id)
}
