package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// MaxQueryLength bounds search queries.
const MaxQueryLength = 200

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string // required
	Limit int    // default: 20, max: 100
}

// SearchResultItem is a matching bundle with its fuzzy score.
type SearchResultItem struct {
	ListItem
	Score int `json:"score"`
	// MatchedIndexes are byte offsets into Name that matched the query
	MatchedIndexes []int `json:"matched_indexes"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Sort  string             `json:"sort"` // "relevance"
}

// nameSource exposes bundle names to the fuzzy matcher.
type nameSource []bundle.Summary

func (s nameSource) String(i int) string { return s[i].Name }
func (s nameSource) Len() int            { return len(s) }

// Search fuzzy-matches the query against bundle display names.
// Results are ranked best match first.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}
	limit := clampLimit(input.Limit, DefaultSearchLimit, MaxSearchLimit)

	summaries, _, err := db.ListSummaries(ctx, database, 0, 0)
	if err != nil {
		return nil, err
	}
	selected, err := db.Selected(ctx, database)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, nameSource(summaries))

	items := make([]SearchResultItem, 0, min(len(matches), limit))
	for _, m := range matches {
		if len(items) == limit {
			break
		}
		s := summaries[m.Index]
		items = append(items, SearchResultItem{
			ListItem:       ListItem{Summary: s, Selected: s.ID == selected},
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
	}

	return &SearchOutput{
		Items: items,
		Total: len(matches),
		Sort:  "relevance",
	}, nil
}
