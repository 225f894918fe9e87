package ops

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/config"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/db"
	"github.com/knutoleMRGN/HTML-preview-MRGN/internal/errors"
)

// exportConfig allows writes directly into dir.
func exportConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return cfg
}

func TestExport_HappyPath(t *testing.T) {
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))

	dir := t.TempDir()
	exportPath := filepath.Join(dir, "out.html")

	output, err := Export(context.Background(), database, exportConfig(dir), ExportInput{ID: id, Path: exportPath})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if output.Path != exportPath || output.ID != id {
		t.Errorf("Export() = %+v", output)
	}
	if output.ExportedAt == 0 {
		t.Error("ExportedAt should be set")
	}

	// The file is the stored document, byte for byte
	b, err := db.GetByID(context.Background(), database, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	got, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(got) != b.HTML {
		t.Error("exported file differs from the stored document")
	}
	if output.Bytes != len(got) {
		t.Errorf("Bytes = %d, want %d", output.Bytes, len(got))
	}

	// No temp files left behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestExport_DefaultPathUsesName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	database := openTestDB(t)
	mustIngest(t, database, "spring.zip", bannerZip(t))

	// No ID: exports the selected bundle
	output, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := filepath.Join(home, config.DirName, "exports", "Spring Sale (300×250).html")
	if output.Path != want {
		t.Errorf("Path = %q, want %q", output.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestExport_OverwritesExisting(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("rename over an existing file is refused on Windows")
	}
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))

	dir := t.TempDir()
	exportPath := filepath.Join(dir, "out.html")
	if err := os.WriteFile(exportPath, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Export(context.Background(), database, exportConfig(dir), ExportInput{ID: id, Path: exportPath}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	got, _ := os.ReadFile(exportPath)
	if string(got) == "old" {
		t.Error("existing file was not replaced")
	}
}

func TestExport_RejectsOutsideAllowedDirs(t *testing.T) {
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))

	exportPath := filepath.Join(t.TempDir(), "out.html")
	_, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{ID: id, Path: exportPath})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Export() error = %v, want INVALID_REQUEST", err)
	}
	if _, statErr := os.Stat(exportPath); !os.IsNotExist(statErr) {
		t.Error("file should not have been written")
	}
}

func TestExport_RejectsWrongExtension(t *testing.T) {
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))

	dir := t.TempDir()
	for _, name := range []string{"out.htm", "out.txt", "out"} {
		_, err := Export(context.Background(), database, exportConfig(dir), ExportInput{ID: id, Path: filepath.Join(dir, name)})
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("Export(%s) error = %v, want INVALID_REQUEST", name, err)
		}
	}
}

func TestExport_RefusesSymlinkDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	database := openTestDB(t)
	id := mustIngest(t, database, "spring.zip", bannerZip(t))

	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "victim.html")
	if err := os.WriteFile(target, []byte("keep"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "out.html")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	_, err := Export(context.Background(), database, exportConfig(dir), ExportInput{ID: id, Path: link})
	if err == nil {
		t.Fatal("Export through a symlink should fail")
	}
	got, _ := os.ReadFile(target)
	if string(got) != "keep" {
		t.Error("symlink target was modified")
	}
}

func TestExport_NotFound(t *testing.T) {
	database := openTestDB(t)
	dir := t.TempDir()

	_, err := Export(context.Background(), database, exportConfig(dir), ExportInput{ID: "missing", Path: filepath.Join(dir, "x.html")})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Export() error = %v, want NOT_FOUND", err)
	}
}

func TestExport_NothingSelected(t *testing.T) {
	database := openTestDB(t)

	_, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Export() error = %v, want INVALID_REQUEST", err)
	}
}

func TestWriteFileAtomic_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0700) })

	err := writeFileAtomic(filepath.Join(dir, "out.html"), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "permission") {
		t.Errorf("writeFileAtomic() error = %v, want permission error", err)
	}
}
