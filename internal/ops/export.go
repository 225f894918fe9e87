package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID   string // empty means the selected bundle
	Path string // optional, default: ~/.preview/exports/<name>.html
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a bundle's document verbatim to <name>.html.
// The write goes to a temp file first and is renamed into place, so an existing file is
// only replaced by a complete one.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	b, err := Document(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, ExportFilename(b.Name))
	}

	// Default paths are validated too: the name is user-controlled
	if err := ValidatePath(exportPath, cfg); err != nil {
		return nil, err
	}

	if err := writeFileAtomic(exportPath, []byte(b.HTML)); err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewExportFailed(exportPath, err)
	}

	slog.Info("exported bundle", "id", b.ID, "path", exportPath, "bytes", len(b.HTML))

	return &ExportOutput{
		ID:         b.ID,
		Path:       exportPath,
		Bytes:      len(b.HTML),
		ExportedAt: time.Now().UnixMilli(),
	}, nil
}

// writeFileAtomic writes data to a random temp name next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	// The original file survives any failure below
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}

	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Windows refuses to rename over an existing file; keep the original instead of
		// a non-atomic delete+rename.
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return fmt.Errorf("failed to finalize export: %w", err)
	}

	success = true
	return nil
}
