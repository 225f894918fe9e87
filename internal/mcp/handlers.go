package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db        *sql.DB
	cfg       *config.Config
	clipboard ops.Clipboard
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg, clipboard: ops.SystemClipboard}
}

// Request types for each tool

// IngestRequest represents the arguments for ingest.
type IngestRequest struct {
	Paths []string `json:"paths"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// FetchRequest represents the arguments for fetch.
type FetchRequest struct {
	ID          string `json:"id,omitempty"`
	IncludeHTML *bool  `json:"include_html,omitempty"`
}

// IDRequest represents the arguments for tools addressing one bundle.
type IDRequest struct {
	ID string `json:"id,omitempty"`
}

// ClearRequest represents the arguments for clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	ID   string `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

// InferRequest represents the arguments for infer.
type InferRequest struct {
	Path     string `json:"path,omitempty"`
	HTML     string `json:"html,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Handler implementations

// HandleIngest handles the ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IngestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.IngestBatch(ctx, h.db, h.cfg, ops.IngestBatchInput{Paths: input.Paths})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:          input.ID,
		IncludeHTML: input.IncludeHTML,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSelect handles the select tool call.
func (h *Handlers) HandleSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Select(ctx, h.db, ops.SelectInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSelected handles the selected tool call.
func (h *Handlers) HandleSelected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Selected(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClear handles the clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm must be true")), nil
	}

	result, err := ops.Clear(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		ID:   input.ID,
		Path: input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCopy handles the copy tool call.
func (h *Handlers) HandleCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Copy(ctx, h.db, h.clipboard, ops.CopyInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInfer handles the infer tool call.
func (h *Handlers) HandleInfer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InferRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Infer(ctx, h.cfg, ops.InferInput{
		Path:     input.Path,
		HTML:     input.HTML,
		Filename: input.Filename,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed: they can carry file paths or SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if perr, ok := errors.As(err); ok {
		message := perr.Message
		// Keep context added by wrapping, e.g. "paths[2]: ..."
		if wrapped := err.Error(); wrapped != perr.Error() && perr.Code != errors.ErrInternal {
			message = strings.Replace(wrapped, perr.Error(), perr.Message, 1)
		}
		errorObj := map[string]any{
			"code":    perr.Code,
			"message": message,
			"status":  perr.Status,
		}
		if perr.Code != errors.ErrInternal && perr.Details != nil {
			errorObj["details"] = perr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
