package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// resourceForkDir is the folder macOS Archive Utility adds next to every entry.
const resourceForkDir = "__MACOSX"

const defaultWorkers = 4

// ExtractOptions tunes a single Extract call.
type ExtractOptions struct {
	Source   string // archive name used in errors and logs
	MaxBytes int64  // 0 means unlimited
	Workers  int    // concurrent asset encoders, defaults to 4
	Logger   *slog.Logger
}

// SkippedEntry records an asset dropped because its bytes could not be read.
type SkippedEntry struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// Extracted is the raw result of opening an archive, before references are rewritten.
type Extracted struct {
	DocumentName string
	Document     string
	Assets       Assets
	Skipped      []SkippedEntry
	Notes        string
}

type encoded struct {
	asset Asset
	notes string
	err   error
}

// Extract opens a zip archive, picks the primary document and encodes every other entry
// as a data URI keyed by basename.
//
// The first entry ending in .html is the document; later ones are treated as assets.
// Directories, dot-files and __MACOSX entries are ignored. An unreadable asset is skipped and
// reported in Skipped; an archive without a document fails with NO_DOCUMENT_FOUND.
func Extract(ctx context.Context, data []byte, opts ExtractOptions) (*Extracted, error) {
	source := opts.Source
	if source == "" {
		source = "archive"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, errors.NewArchiveTooLarge(opts.MaxBytes, int64(len(data)))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewInvalidContainerFormat(source, err.Error())
	}

	var doc *zip.File
	var candidates []*zip.File
	for _, f := range zr.File {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("extract")
		}
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if isIgnoredEntry(f.Name) {
			continue
		}
		if doc == nil && IsDocumentName(f.Name) {
			doc = f
			continue
		}
		candidates = append(candidates, f)
	}

	if doc == nil {
		return nil, errors.NewNoDocumentFound(source)
	}

	raw, err := readEntry(doc)
	if err != nil {
		return nil, errors.NewInvalidContainerFormat(source, fmt.Sprintf("read %s: %v", doc.Name, err))
	}

	// Each worker writes only its own slot; the map is built after Wait.
	results := make([]encoded, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = encodeEntry(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.NewCancelled("extract")
	}

	ex := &Extracted{
		DocumentName: doc.Name,
		Document:     string(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))),
		Assets:       make(Assets, len(results)),
	}
	for i, r := range results {
		if r.err != nil {
			perr := errors.NewAssetReadFailure(candidates[i].Name, r.err)
			logger.Warn("skipping unreadable asset",
				"source", source, "entry", candidates[i].Name, "error", r.err)
			ex.Skipped = append(ex.Skipped, SkippedEntry{Entry: candidates[i].Name, Reason: perr.Message})
			continue
		}
		// Archive order decides basename collisions: the last entry wins.
		ex.Assets[r.asset.Name] = r.asset
		if ex.Notes == "" && r.notes != "" {
			ex.Notes = r.notes
		}
	}

	return ex, nil
}

// IsDocumentName reports whether an entry name ends in the document extension.
func IsDocumentName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), DocumentExt)
}

// Basename strips any directory part of an archive entry name.
func Basename(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

// isIgnoredEntry reports dot-files and archive metadata such as __MACOSX/.
func isIgnoredEntry(name string) bool {
	base := Basename(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, resourceForkDir) {
		return true
	}
	for _, part := range strings.Split(strings.ReplaceAll(name, "\\", "/"), "/") {
		if part == resourceForkDir {
			return true
		}
	}
	return false
}

func encodeEntry(f *zip.File) encoded {
	data, err := readEntry(f)
	if err != nil {
		return encoded{err: err}
	}
	name := Basename(f.Name)
	mimeType := MimeType(name, data)
	r := encoded{
		asset: Asset{
			Name:     name,
			MimeType: mimeType,
			Size:     len(data),
			DataURI:  EncodeDataURI(mimeType, data),
		},
	}
	if strings.EqualFold(path.Ext(name), ".md") {
		r.notes = string(data)
	}
	return r
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
