package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// TestFullWorkflow exercises the complete bundle lifecycle:
// ingest batch → list → search → select → fetch → export → delete → clear → fetch (not found)
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}

	spring := writeZip(t, dir, "spring.zip",
		"banner/index.html", bannerHTML,
		"banner/img/logo.png", "png",
		"banner/css/style.css", "body{}",
	)
	sky := writeZip(t, dir, "sky_160x600.zip", "index.html", "<p>sky</p>")
	broken := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0600))

	// 1. Ingest a batch with one bad archive
	batch, err := IngestBatch(ctx, database, cfg, IngestBatchInput{Paths: []string{spring, broken, sky}})
	require.NoError(t, err)
	require.Equal(t, 2, batch.Ingested)
	require.Equal(t, 1, batch.Failed)
	require.Equal(t, errors.ErrInvalidContainerFormat, batch.Items[1].Error.Code)
	springID := batch.Items[0].Bundle.ID
	skyID := batch.Items[2].Bundle.ID

	// 2. List in ingestion order, last ingested selected
	listOut, err := List(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Len(t, listOut.Items, 2)
	require.Equal(t, springID, listOut.Items[0].ID)
	require.Equal(t, skyID, listOut.Selected)

	// 3. Search
	searchOut, err := Search(ctx, database, SearchInput{Query: "spring"})
	require.NoError(t, err)
	require.Len(t, searchOut.Items, 1)
	require.Equal(t, springID, searchOut.Items[0].ID)

	// 4. Select the first bundle and fetch it implicitly
	_, err = Select(ctx, database, SelectInput{ID: springID})
	require.NoError(t, err)
	fetchOut, err := Fetch(ctx, database, FetchInput{})
	require.NoError(t, err)
	require.Equal(t, springID, fetchOut.ID)
	require.Equal(t, 300, fetchOut.Width)
	require.Contains(t, fetchOut.HTML, "data:image/png;base64,")

	// 5. Export
	exportPath := filepath.Join(dir, "spring.html")
	exportOut, err := Export(ctx, database, cfg, ExportInput{Path: exportPath})
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Equal(t, fetchOut.HTML, string(data))
	require.Equal(t, len(data), exportOut.Bytes)

	// 6. Delete the selected bundle: selection moves to the remaining one
	deleteOut, err := Delete(ctx, database, DeleteInput{ID: springID})
	require.NoError(t, err)
	require.Equal(t, skyID, deleteOut.Selected)

	// 7. Clear
	clearOut, err := Clear(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 1, clearOut.Cleared)

	// 8. Fetch - verify 404
	_, err = Fetch(ctx, database, FetchInput{ID: skyID})
	require.Error(t, err)
	perr, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrNotFound, perr.Code)
}
