package bundle

import (
	"crypto/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// DocumentExt marks the primary document inside an archive.
	DocumentExt = ".html"

	// ArchiveExt is the only accepted container extension.
	ArchiveExt = ".zip"

	// DefaultWidth and DefaultHeight apply when no detector yields a dimension.
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Asset is one non-document file of an archive, embedded as a data URI.
type Asset struct {
	// Name is the basename; directory structure is discarded
	Name string `json:"name"`

	// MimeType is the resolved content type used in the data URI
	MimeType string `json:"mime_type"`

	// Size is the raw byte length before encoding
	Size int `json:"size"`

	// DataURI is "data:<mime>;base64,<payload>"
	DataURI string `json:"-"`
}

// Assets maps basename to Asset.
type Assets map[string]Asset

// Names returns the basenames in sorted order.
func (a Assets) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metadata is the presentation metadata inferred for a document.
type Metadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Bundle is one ingested, self-contained document with its inferred metadata.
// A Bundle is never mutated after New returns it.
type Bundle struct {
	// ID is "<slug>-<ULID>", unique within the collection
	ID string

	// Name is the inferred display name
	Name string

	// SourceName is the archive filename the bundle was ingested from
	SourceName string

	// HTML is the document with every asset reference inlined
	HTML string

	// Width and Height are the inferred pixel dimensions (always positive)
	Width  int
	Height int

	// Assets are owned exclusively by this bundle
	Assets Assets

	// Notes is the Markdown text of the first .md asset, if any
	Notes string

	// CreatedAt is the Unix millisecond timestamp of ingestion
	CreatedAt int64
}

// Summary is the listing view of a Bundle: everything except the document and asset bytes.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SourceName string `json:"source_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	AssetCount int    `json:"asset_count"`
	HasNotes   bool   `json:"has_notes"`
	CreatedAt  int64  `json:"created_at"`
}

// Summary returns the listing view of b.
func (b *Bundle) Summary() Summary {
	return Summary{
		ID:         b.ID,
		Name:       b.Name,
		SourceName: b.SourceName,
		Width:      b.Width,
		Height:     b.Height,
		AssetCount: len(b.Assets),
		HasNotes:   b.Notes != "",
		CreatedAt:  b.CreatedAt,
	}
}

// New assembles a Bundle from an extraction result and inferred metadata.
// html must already have its references inlined.
func New(id string, ex *Extracted, meta Metadata, html, sourceName string, now time.Time) *Bundle {
	assets := make(Assets, len(ex.Assets))
	for name, a := range ex.Assets {
		assets[name] = a
	}
	return &Bundle{
		ID:         id,
		Name:       meta.Name,
		SourceName: sourceName,
		HTML:       html,
		Width:      meta.Width,
		Height:     meta.Height,
		Assets:     assets,
		Notes:      ex.Notes,
		CreatedAt:  now.UnixMilli(),
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses anything outside [a-z0-9] to single dashes.
func Slug(s string) string {
	s = slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		s = "bundle"
	}
	return s
}

// NewID derives a bundle ID from the display name and the ingestion time.
// The ULID suffix keeps IDs unique even for identical names ingested in the same millisecond.
func NewID(name string, now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return Slug(name) + "-" + strings.ToLower(id.String()), nil
}
