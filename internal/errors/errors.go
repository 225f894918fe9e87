package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a preview error code.
type ErrorCode string

const (
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"          // 400
	ErrNotFound               ErrorCode = "NOT_FOUND"                // 404
	ErrFileNotFound           ErrorCode = "FILE_NOT_FOUND"           // 404
	ErrArchiveTooLarge        ErrorCode = "ARCHIVE_TOO_LARGE"        // 413
	ErrInvalidContainerFormat ErrorCode = "INVALID_CONTAINER_FORMAT" // 415
	ErrNoDocumentFound        ErrorCode = "NO_DOCUMENT_FOUND"        // 422
	ErrAssetReadFailure       ErrorCode = "ASSET_READ_FAILURE"       // 422 (per asset, never fatal)
	ErrCancelled              ErrorCode = "CANCELLED"                // 499
	ErrInternal               ErrorCode = "INTERNAL"                 // 500
	ErrExportFailed           ErrorCode = "EXPORT_FAILED"            // 502
)

// PreviewError represents a structured error with code, status, and details.
type PreviewError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PreviewError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PreviewError {
	return &PreviewError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a bundle cannot be found.
func NewNotFound(identifier string) *PreviewError {
	return &PreviewError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("bundle not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file on disk.
func NewFileNotFound(path string) *PreviewError {
	return &PreviewError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewArchiveTooLarge creates a 413 error when an archive exceeds the configured size.
func NewArchiveTooLarge(max, actual int64) *PreviewError {
	return &PreviewError{
		Code:    ErrArchiveTooLarge,
		Status:  413,
		Message: fmt.Sprintf("archive exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewInvalidContainerFormat creates a 415 error for input that is not a zip archive.
func NewInvalidContainerFormat(source, reason string) *PreviewError {
	return &PreviewError{
		Code:    ErrInvalidContainerFormat,
		Status:  415,
		Message: fmt.Sprintf("%s is not a zip archive: %s", source, reason),
		Details: map[string]any{"source": source},
	}
}

// NewNoDocumentFound creates a 422 error for an archive without an HTML document.
func NewNoDocumentFound(source string) *PreviewError {
	return &PreviewError{
		Code:    ErrNoDocumentFound,
		Status:  422,
		Message: fmt.Sprintf("no .html document found in %s", source),
		Details: map[string]any{"source": source},
	}
}

// NewAssetReadFailure creates a 422 error for a single unreadable asset.
// Callers record it and keep going; it never aborts an ingestion.
func NewAssetReadFailure(entry string, err error) *PreviewError {
	msg := fmt.Sprintf("could not read asset %s", entry)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &PreviewError{
		Code:    ErrAssetReadFailure,
		Status:  422,
		Message: msg,
		Details: map[string]any{"entry": entry},
	}
}

// NewCancelled creates a 499 error when an operation's context is done.
func NewCancelled(op string) *PreviewError {
	return &PreviewError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewExportFailed creates a 502 error when a clipboard or file export fails.
func NewExportFailed(target string, err error) *PreviewError {
	msg := fmt.Sprintf("%s export failed", target)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &PreviewError{
		Code:    ErrExportFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"target": target},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *PreviewError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &PreviewError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a PreviewError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PreviewError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// As returns the PreviewError in err's chain, if any.
func As(err error) (*PreviewError, bool) {
	var pErr *PreviewError
	if stderrors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}
