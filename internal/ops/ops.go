package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit   = 20
	MaxListLimit       = 100
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampLimit applies a default and an upper bound to a requested page size.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// ResolveID turns an addressing parameter into a bundle ID.
// An explicit id is used as-is; an empty id addresses the selected bundle.
// Rules:
// - id is trimmed; existence is checked by the operation that uses it
// - empty id with nothing selected → ErrInvalidRequest
func ResolveID(ctx context.Context, database *sql.DB, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id != "" {
		return id, nil
	}

	selected, err := db.Selected(ctx, database)
	if err != nil {
		return "", err
	}
	if selected == "" {
		return "", errors.NewInvalidRequest("no id given and no bundle is selected")
	}
	return selected, nil
}
