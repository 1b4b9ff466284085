package scratch

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"watersheds.shp":      ".shp",
		"Watersheds.SHP":      ".shp",
		"watersheds.shp.xml":  ".shp.xml",
		"WATERSHEDS.SHP.XML":  ".shp.xml",
		"logan.tif":           ".tif",
		"dir/logan.vrt":       ".vrt",
		"noextension":         "",
		"archive.tar.gz":      ".gz",
	}
	for name, want := range cases {
		if got := Extension(name); got != want {
			t.Errorf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUnzipFlattensAndFilters(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"nested/watersheds.shp": "shp",
		"watersheds.shx":        "shx",
		"watersheds.dbf":        "dbf",
		"readme.txt":            "skip me",
		".DS_Store":             "hidden",
	})

	dir, err := NewDir()
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Close()

	allowed := map[string]bool{".shp": true, ".shx": true, ".dbf": true}
	names, err := dir.Unzip(zipPath, allowed)
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, name := range names {
		got[name] = true
	}
	for _, want := range []string{"watersheds.shp", "watersheds.shx", "watersheds.dbf"} {
		if !got[want] {
			t.Errorf("missing extracted file %s in %v", want, names)
		}
		if _, err := os.Stat(dir.Join(want)); err != nil {
			t.Errorf("extracted file %s not on disk: %v", want, err)
		}
	}
	if got["readme.txt"] {
		t.Error("disallowed extension extracted")
	}
	if got[".DS_Store"] {
		t.Error("hidden entry extracted")
	}
	// The nested entry lands flat in the scratch root.
	if _, err := os.Stat(filepath.Join(dir.Path(), "nested")); !os.IsNotExist(err) {
		t.Error("zip directory structure was preserved")
	}
}

func TestUnzipNilAllowListTakesEverything(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"watersheds.shp": "shp",
		"readme.txt":     "keep me",
	})

	dir, err := NewDir()
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Close()

	names, err := dir.Unzip(zipPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("extracted %v, want both entries", names)
	}
}

func TestCopyIn(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logan.tif")
	if err := os.WriteFile(src, []byte("raster bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err := NewDir()
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Close()

	copied, err := dir.CopyIn(src)
	if err != nil {
		t.Fatal(err)
	}
	if copied != dir.Join("logan.tif") {
		t.Errorf("CopyIn returned %s", copied)
	}
	data, err := os.ReadFile(copied)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "raster bytes" {
		t.Errorf("copied content %q", data)
	}
}

func TestCloseRemovesEverything(t *testing.T) {
	dir, err := NewDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir.Join("leftover"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := dir.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Error("scratch directory survived Close")
	}
	// Second Close is a no-op.
	if err := dir.Close(); err != nil {
		t.Errorf("repeated Close failed: %v", err)
	}
}

func TestLocalStagerPassthrough(t *testing.T) {
	var s Stager = LocalStager{}
	path, err := s.StageLocalCopy("/data/logan.tif")
	if err != nil {
		t.Fatal(err)
	}
	if path != "/data/logan.tif" {
		t.Errorf("StageLocalCopy returned %s", path)
	}
	if err := s.Release(path); err != nil {
		t.Errorf("Release failed: %v", err)
	}
}
