package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file inside the base directory.
const FileName = "preview.db"

// Init initializes the SQLite database at baseDir/preview.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.preview.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Exported documents land here unless allowed_paths says otherwise
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the DSN apply to every pooled connection. foreign_keys drives the
	// asset cascade and the selection ON DELETE SET NULL.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: bundles, their assets, and the selection pointer
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS bundles (
		  id          TEXT PRIMARY KEY,
		  name        TEXT NOT NULL,
		  source_name TEXT NOT NULL,
		  html        TEXT NOT NULL,
		  width       INTEGER NOT NULL CHECK (width > 0),
		  height      INTEGER NOT NULL CHECK (height > 0),
		  notes       TEXT,
		  asset_count INTEGER NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bundles_created
		ON bundles(created_at);

		CREATE TABLE IF NOT EXISTS assets (
		  bundle_id TEXT NOT NULL REFERENCES bundles(id) ON DELETE CASCADE,
		  name      TEXT NOT NULL,
		  mime_type TEXT NOT NULL,
		  size      INTEGER NOT NULL,
		  data_uri  TEXT NOT NULL,
		  PRIMARY KEY (bundle_id, name)
		);

		CREATE TABLE IF NOT EXISTS selection (
		  id        INTEGER PRIMARY KEY CHECK (id = 1),
		  bundle_id TEXT REFERENCES bundles(id) ON DELETE SET NULL
		);

		INSERT OR IGNORE INTO selection (id, bundle_id) VALUES (1, NULL);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
