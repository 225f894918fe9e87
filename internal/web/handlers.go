package web

import (
	"database/sql"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/ops"
)

// uploadField is the multipart field carrying archives.
const uploadField = "files"

// documentPolicy lets a bundle's scripts run while denying it the UI's origin.
const documentPolicy = "sandbox allow-scripts; frame-ancestors 'self'"

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /bundles: the collection, optionally filtered by ?q=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, nil)
}

func (h *Handlers) renderList(w http.ResponseWriter, r *http.Request, notices []ops.IngestItem) {
	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := ListPageData{
		PageData: PageData{
			Title:   "Bundles",
			Version: h.renderer.version,
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Notices:    notices,
		Selected:   result.Selected,
	}

	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		found, err := ops.Search(r.Context(), h.db, ops.SearchInput{Query: query})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Query = query
		data.Results = found.Items
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, "list", data)
}

// HandleUpload handles POST /bundles: one or more .zip archives as multipart "files".
// Archives are ingested one after another; a failing archive becomes a notice and the rest
// still run.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("expected a multipart/form-data upload"))
		return
	}

	out := &ops.IngestBatchOutput{Items: make([]ops.IngestItem, 0)}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The stream itself is broken; keep what was ingested so far
			out.Items = append(out.Items, ops.IngestItem{
				Error: ops.ItemErrorFrom(errors.NewInvalidRequest("malformed upload: " + err.Error())),
			})
			out.Failed++
			break
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		item := h.ingestPart(r, part)
		part.Close()
		if item.Error != nil {
			out.Failed++
		} else {
			out.Ingested++
		}
		out.Items = append(out.Items, item)
	}

	if len(out.Items) == 0 {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("no files uploaded"))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderList(w, r, out.Items)
}

// ingestPart reads one uploaded file, never more than the archive limit plus one byte so an
// oversized upload is reported rather than buffered.
func (h *Handlers) ingestPart(r *http.Request, part *multipart.Part) ops.IngestItem {
	filename := part.FileName()
	item := ops.IngestItem{Path: filename}

	var src io.Reader = part
	if h.cfg.MaxArchiveBytes > 0 {
		src = io.LimitReader(part, h.cfg.MaxArchiveBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		item.Error = ops.ItemErrorFrom(errors.NewInvalidContainerFormat(filename, err.Error()))
		return item
	}

	result, err := ops.IngestBytes(r.Context(), h.db, h.cfg, ops.IngestBytesInput{Filename: filename, Data: data})
	if err != nil {
		item.Error = ops.ItemErrorFrom(err)
		return item
	}
	item.Bundle = result
	return item
}

// HandleDetail handles GET /bundles/{id}: the preview page.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	includeHTML := false
	b, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id"), IncludeHTML: &includeHTML})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, b)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   b.Name,
			Version: h.renderer.version,
		},
		Bundle: b,
		Notes:  h.renderer.renderNotes(b.Notes),
	})
}

// HandleDocument handles GET /bundles/{id}/document: the self-contained HTML for the
// preview frame. The sandbox policy gives it an opaque origin.
func (h *Handlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	b, err := ops.Document(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Security-Policy", documentPolicy)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, b.HTML)
}

// HandleDownload handles GET /bundles/{id}/download: the document as <name>.html.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	b, err := ops.Document(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Security-Policy", documentPolicy)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": ops.ExportFilename(b.Name),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(b.HTML)))
	_, _ = io.WriteString(w, b.HTML)
}

// HandleSelect handles POST /bundles/{id}/select.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Select(r.Context(), h.db, ops.SelectInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/bundles/"+r.PathValue("id"), http.StatusSeeOther)
}

// HandleDelete handles DELETE /bundles/{id} and POST /bundles/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/bundles", http.StatusSeeOther)
}

// HandleClear handles POST /bundles/clear: remove every bundle.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(`confirm parameter must be "true"`))
		return
	}

	result, err := ops.Clear(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/bundles", http.StatusSeeOther)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
