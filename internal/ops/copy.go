package ops

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/atotto/clipboard"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// Clipboard receives copied documents.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard is the OS clipboard (xclip/xsel/wl-copy on Linux, pbcopy on macOS).
var SystemClipboard Clipboard = systemClipboard{}

// CopyInput contains parameters for the Copy operation.
type CopyInput struct {
	ID string // empty means the selected bundle
}

// CopyOutput contains the result of the Copy operation.
type CopyOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// Copy puts a bundle's document on the clipboard. A clipboard failure is reported as
// EXPORT_FAILED and leaves the collection untouched.
func Copy(ctx context.Context, database *sql.DB, cb Clipboard, input CopyInput) (*CopyOutput, error) {
	if cb == nil {
		cb = SystemClipboard
	}
	if clipboard.Unsupported && cb == SystemClipboard {
		return nil, errors.NewExportFailed("clipboard", errNoClipboard)
	}

	b, err := Document(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	if err := cb.WriteAll(b.HTML); err != nil {
		return nil, errors.NewExportFailed("clipboard", err)
	}

	return &CopyOutput{ID: b.ID, Name: b.Name, Bytes: len(b.HTML)}, nil
}

var errNoClipboard = stderrors.New("no clipboard utility available")
