package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
)

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Cleared int    `json:"cleared"`
	Message string `json:"message"`
}

// Clear removes every bundle and clears the selection.
func Clear(ctx context.Context, database *sql.DB) (*ClearOutput, error) {
	count, err := db.Clear(ctx, database)
	if err != nil {
		return nil, err
	}
	slog.Info("cleared collection", "bundles", count)

	return &ClearOutput{
		Cleared: count,
		Message: formatClearMessage(count),
	}, nil
}

// formatClearMessage creates a human-readable message for the clear result.
func formatClearMessage(count int) string {
	if count == 0 {
		return "Collection was already empty"
	}

	word := "bundle"
	if count > 1 {
		word = "bundles"
	}

	return fmt.Sprintf("Removed %d %s", count, word)
}
