package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.PreviewError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const summaryColumns = `id, name, source_name, width, height, asset_count, notes IS NOT NULL AND notes != '', created_at`

// InsertAndSelect stores a bundle with all of its assets and makes it the selected bundle.
// Everything happens in one transaction, so readers never observe a partial bundle.
func InsertAndSelect(ctx context.Context, db *sql.DB, b *bundle.Bundle) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bundles (id, name, source_name, html, width, height, notes, asset_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.SourceName, b.HTML, b.Width, b.Height, toNullString(b.Notes), len(b.Assets), b.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (bundle_id, name, mime_type, size, data_uri) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, name := range b.Assets.Names() {
		a := b.Assets[name]
		if _, err := stmt.ExecContext(ctx, b.ID, a.Name, a.MimeType, a.Size, a.DataURI); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := setSelection(ctx, tx, b.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a bundle with its document and assets.
func GetByID(ctx context.Context, db *sql.DB, id string) (*bundle.Bundle, error) {
	var (
		b     bundle.Bundle
		notes sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, source_name, html, width, height, notes, created_at
		FROM bundles
		WHERE id = ?
	`, id).Scan(&b.ID, &b.Name, &b.SourceName, &b.HTML, &b.Width, &b.Height, &notes, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	b.Notes = notes.String

	b.Assets, err = listAssets(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func listAssets(ctx context.Context, db *sql.DB, bundleID string) (bundle.Assets, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, mime_type, size, data_uri FROM assets WHERE bundle_id = ? ORDER BY name
	`, bundleID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	assets := make(bundle.Assets)
	for rows.Next() {
		var a bundle.Asset
		if err := rows.Scan(&a.Name, &a.MimeType, &a.Size, &a.DataURI); err != nil {
			return nil, errors.NewInternal(err)
		}
		assets[a.Name] = a
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return assets, nil
}

// ListSummaries returns bundles in ingestion order along with the total count.
// A limit of zero or less returns every bundle from offset on.
func ListSummaries(ctx context.Context, db *sql.DB, limit, offset int) ([]bundle.Summary, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bundles`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM bundles
		ORDER BY created_at ASC, rowid ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []bundle.Summary
	for rows.Next() {
		var s bundle.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.SourceName, &s.Width, &s.Height, &s.AssetCount, &s.HasNotes, &s.CreatedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return summaries, total, nil
}

// Delete removes a bundle and its assets. If it was selected, the selection moves to the
// most recently ingested remaining bundle, or is cleared when none remain.
// It returns the selected bundle ID after the delete ("" when nothing is selected).
func Delete(ctx context.Context, db *sql.DB, id string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	selected, err := selectedID(ctx, tx)
	if err != nil {
		return "", err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM bundles WHERE id = ?`, id)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return "", errors.NewNotFound(id)
	}

	if selected == id {
		selected = ""
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM bundles ORDER BY created_at DESC, rowid DESC LIMIT 1
		`).Scan(&selected)
		if err != nil && err != sql.ErrNoRows {
			return "", errors.NewInternal(err)
		}
		if err := setSelection(ctx, tx, selected); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.NewInternal(err)
	}
	return selected, nil
}

// Clear removes every bundle and clears the selection. It returns how many were removed.
func Clear(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `DELETE FROM bundles`)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if err := setSelection(ctx, tx, ""); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(count), nil
}

// Select points the selection at id. The bundle must exist.
func Select(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM bundles WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return errors.NewNotFound(id)
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := setSelection(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Selected returns the selected bundle ID, or "" when nothing is selected.
func Selected(ctx context.Context, db *sql.DB) (string, error) {
	var id sql.NullString
	err := db.QueryRowContext(ctx, `SELECT bundle_id FROM selection WHERE id = 1`).Scan(&id)
	if err != nil && err != sql.ErrNoRows {
		return "", errors.NewInternal(err)
	}
	return id.String, nil
}

func selectedID(ctx context.Context, tx *sql.Tx) (string, error) {
	var id sql.NullString
	err := tx.QueryRowContext(ctx, `SELECT bundle_id FROM selection WHERE id = 1`).Scan(&id)
	if err != nil && err != sql.ErrNoRows {
		return "", errors.NewInternal(err)
	}
	return id.String, nil
}

// setSelection writes the singleton pointer; an empty id clears it.
func setSelection(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO selection (id, bundle_id) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET bundle_id = excluded.bundle_id
	`, toNullString(id))
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// toNullString maps "" to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
