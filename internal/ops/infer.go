package ops

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/bundle"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// InferInput contains parameters for the Infer operation.
// Exactly one of Path or HTML is used; Path wins when both are set.
type InferInput struct {
	Path     string // .html document or .zip archive on disk
	HTML     string // raw document text
	Filename string // filename hint when HTML is given directly
}

// InferOutput contains the result of the Infer operation.
type InferOutput struct {
	bundle.Metadata
	Sources  []string `json:"sources"`
	Document string   `json:"document,omitempty"` // archive entry used, for .zip input
}

// Infer runs metadata inference without storing anything.
func Infer(ctx context.Context, cfg *config.Config, input InferInput) (*InferOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		if strings.TrimSpace(input.HTML) == "" {
			return nil, errors.NewInvalidRequest("path or html is required")
		}
		inf := bundle.InferDetailed(input.HTML, input.Filename)
		return &InferOutput{Metadata: inf.Metadata, Sources: inf.Sources}, nil
	}

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case bundle.ArchiveExt:
		data, err := readArchive(path, cfg)
		if err != nil {
			return nil, err
		}
		opts := bundle.ExtractOptions{Source: name, Logger: slog.Default()}
		if cfg != nil {
			opts.MaxBytes, opts.Workers = cfg.MaxArchiveBytes, cfg.AssetWorkers
		}
		ex, err := bundle.Extract(context.WithoutCancel(ctx), data, opts)
		if err != nil {
			return nil, err
		}
		inf := bundle.InferDetailed(ex.Document, bundle.ArchiveHint(name, ex.DocumentName))
		return &InferOutput{Metadata: inf.Metadata, Sources: inf.Sources, Document: ex.DocumentName}, nil

	case bundle.DocumentExt, ".htm":
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		inf := bundle.InferDetailed(doc, name)
		return &InferOutput{Metadata: inf.Metadata, Sources: inf.Sources}, nil

	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot infer from %s: expected .html or .zip", name))
	}
}

func readDocument(path string) (string, error) {
	file, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return "", err
		}
		return "", errors.NewInternal(fmt.Errorf("failed to open document: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}
