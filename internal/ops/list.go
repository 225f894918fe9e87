package ops

import (
	"context"
	"database/sql"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListItem is a bundle summary plus whether it is the selected bundle.
type ListItem struct {
	bundle.Summary
	Selected bool `json:"selected"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ListItem `json:"items"`
	Selected   string     `json:"selected,omitempty"`
	Pagination Pagination `json:"pagination"`
	Sort       string     `json:"sort"`
}

// List returns the collection in ingestion order with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := max(input.Offset, 0)

	summaries, total, err := db.ListSummaries(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}
	selected, err := db.Selected(ctx, database)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, len(summaries))
	for i, s := range summaries {
		items[i] = ListItem{Summary: s, Selected: s.ID == selected}
	}

	return &ListOutput{
		Items:    items,
		Selected: selected,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "ingested_asc",
	}, nil
}
