package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	Path string // required, must end in .zip
}

// IngestBytesInput contains parameters for ingesting an archive already in memory.
type IngestBytesInput struct {
	Filename string // required, must end in .zip; drives name and size inference
	Data     []byte
}

// IngestOutput contains the result of ingesting one archive.
type IngestOutput struct {
	bundle.Summary
	Selected         bool                  `json:"selected"`
	DimensionSources []string              `json:"dimension_sources"`
	Skipped          []bundle.SkippedEntry `json:"skipped,omitempty"`
	Unresolved       []string              `json:"unresolved,omitempty"`
}

// Ingest reads a .zip archive from disk, turns it into a self-contained bundle and adds it
// to the collection as the selected bundle.
func Ingest(ctx context.Context, database *sql.DB, cfg *config.Config, input IngestInput) (*IngestOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := checkArchiveName(input.Path); err != nil {
		return nil, err
	}

	data, err := readArchive(input.Path, cfg)
	if err != nil {
		return nil, err
	}

	return ingest(ctx, database, cfg, filepath.Base(input.Path), data)
}

// IngestBytes is Ingest for an uploaded archive.
func IngestBytes(ctx context.Context, database *sql.DB, cfg *config.Config, input IngestBytesInput) (*IngestOutput, error) {
	if strings.TrimSpace(input.Filename) == "" {
		return nil, errors.NewInvalidRequest("filename is required")
	}
	if err := checkArchiveName(input.Filename); err != nil {
		return nil, err
	}
	return ingest(ctx, database, cfg, bundle.Basename(input.Filename), input.Data)
}

// ingest is the all-or-nothing pipeline shared by every entry point:
// extract → infer over the pre-rewrite text → inline → insert and select.
func ingest(ctx context.Context, database *sql.DB, cfg *config.Config, filename string, data []byte) (*IngestOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	// A started archive runs to completion or failure.
	ctx = context.WithoutCancel(ctx)

	ex, err := bundle.Extract(ctx, data, bundle.ExtractOptions{
		Source:   filename,
		MaxBytes: cfg.MaxArchiveBytes,
		Workers:  cfg.AssetWorkers,
		Logger:   slog.Default(),
	})
	if err != nil {
		return nil, err
	}

	inference := bundle.InferDetailed(ex.Document, bundle.ArchiveHint(filename, ex.DocumentName))
	html := bundle.InlineReferences(ex.Document, ex.Assets)

	now := time.Now()
	id, err := bundle.NewID(inference.Name, now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	b := bundle.New(id, ex, inference.Metadata, html, filename, now)
	if err := db.InsertAndSelect(ctx, database, b); err != nil {
		return nil, err
	}

	slog.Info("ingested bundle",
		"id", b.ID, "source", filename, "name", b.Name,
		"width", b.Width, "height", b.Height, "assets", len(b.Assets), "skipped", len(ex.Skipped))

	return &IngestOutput{
		Summary:          b.Summary(),
		Selected:         true,
		DimensionSources: inference.Sources,
		Skipped:          ex.Skipped,
		Unresolved:       bundle.UnresolvedReferences(html),
	}, nil
}

// checkArchiveName enforces the single accepted container type.
func checkArchiveName(name string) error {
	if !strings.EqualFold(filepath.Ext(name), bundle.ArchiveExt) {
		return errors.NewInvalidContainerFormat(name, "only "+bundle.ArchiveExt+" archives are accepted")
	}
	return nil
}

// readArchive loads an archive from disk, refusing symlinks and oversized files before
// reading them into memory.
func readArchive(path string, cfg *config.Config) ([]byte, error) {
	file, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open archive: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidContainerFormat(path, "is a directory")
	}

	var limit int64
	if cfg != nil {
		limit = cfg.MaxArchiveBytes
	}
	if limit > 0 && info.Size() > limit {
		return nil, errors.NewArchiveTooLarge(limit, info.Size())
	}

	// The file may grow after Stat; Extract rejects anything past the limit.
	var r io.Reader = file
	if limit > 0 {
		r = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInvalidContainerFormat(path, err.Error())
	}
	return data, nil
}

// IngestBatchInput contains parameters for the IngestBatch operation.
type IngestBatchInput struct {
	Paths []string // required
}

// ItemError is a failed batch item reported as a notice rather than a returned error.
type ItemError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// IngestItem is the outcome of one archive in a batch.
type IngestItem struct {
	Path   string        `json:"path"`
	Bundle *IngestOutput `json:"bundle,omitempty"`
	Error  *ItemError    `json:"error,omitempty"`
}

// IngestBatchOutput contains the result of the IngestBatch operation.
type IngestBatchOutput struct {
	Items    []IngestItem `json:"items"`
	Ingested int          `json:"ingested"`
	Failed   int          `json:"failed"`
}

// IngestBatch ingests archives strictly one after another. A failing archive becomes a
// per-item error and never stops the rest of the batch.
func IngestBatch(ctx context.Context, database *sql.DB, cfg *config.Config, input IngestBatchInput) (*IngestBatchOutput, error) {
	if len(input.Paths) == 0 {
		return nil, errors.NewInvalidRequest("at least one path is required")
	}

	out := &IngestBatchOutput{Items: make([]IngestItem, 0, len(input.Paths))}
	for _, path := range input.Paths {
		result, err := Ingest(ctx, database, cfg, IngestInput{Path: path})
		item := IngestItem{Path: path, Bundle: result}
		if err != nil {
			item.Error = ItemErrorFrom(err)
			slog.Warn("ingest failed", "path", path, "code", item.Error.Code, "error", item.Error.Message)
			out.Failed++
		} else {
			out.Ingested++
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// ItemErrorFrom converts any error into a notice. Unstructured errors become INTERNAL.
func ItemErrorFrom(err error) *ItemError {
	perr, ok := errors.As(err)
	if !ok {
		perr = errors.NewInternal(err)
	}
	return &ItemError{Code: perr.Code, Message: perr.Message}
}
