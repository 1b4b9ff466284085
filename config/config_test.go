package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	raster := cfg.RasterAllowList()
	if !raster[".tif"] || !raster[".vrt"] {
		t.Errorf("raster allow list %v", cfg.RasterExtensions)
	}

	vec := cfg.VectorAllowList()
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj", ".shp.xml"} {
		if !vec[ext] {
			t.Errorf("vector allow list missing %s", ext)
		}
	}
	if vec[".txt"] {
		t.Error("vector allow list accepts .txt")
	}

	if cfg.NoDataTolerance != 1e-5 {
		t.Errorf("NoDataTolerance = %v", cfg.NoDataTolerance)
	}
	if cfg.Cache.Backend != "" {
		t.Errorf("caching enabled by default: %q", cfg.Cache.Backend)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsextract.yaml")
	doc := `
nodata_tolerance: 0.001
cache:
  backend: lru
  lru_size: 64
postgres:
  dsn: "host=localhost dbname=hsextract"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NoDataTolerance != 0.001 {
		t.Errorf("NoDataTolerance = %v", cfg.NoDataTolerance)
	}
	if cfg.Cache.Backend != "lru" || cfg.Cache.LRUSize != 64 {
		t.Errorf("cache config %+v", cfg.Cache)
	}
	if cfg.Postgres.DSN == "" {
		t.Error("postgres DSN not loaded")
	}
	// Fields absent from the file keep their defaults.
	if len(cfg.VectorExtensions) == 0 {
		t.Error("vector extensions lost on load")
	}
}

func TestLoadRejectsNonPositiveTolerance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsextract.yaml")
	if err := os.WriteFile(path, []byte("nodata_tolerance: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NoDataTolerance != Default().NoDataTolerance {
		t.Errorf("negative tolerance accepted: %v", cfg.NoDataTolerance)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing config file accepted")
	}
}
