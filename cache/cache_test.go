package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hydroshare/hsextract/config"
	"github.com/hydroshare/hsextract/meta"
)

func TestKeyStableForUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logan.tif")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	k1, err := Key(path)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := Key(path)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("key not stable: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "extract:") {
		t.Errorf("key %q missing namespace prefix", k1)
	}
}

func TestKeyChangesOnRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logan.tif")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	k1, err := Key(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("data plus more"), 0644); err != nil {
		t.Fatal(err)
	}
	// Size changed; mtime may or may not have ticked.
	k2, err := Key(path)
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k2 {
		t.Error("rewritten file kept its cache key")
	}

	// Same size, newer mtime.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	k3, err := Key(path)
	if err != nil {
		t.Fatal(err)
	}
	if k2 == k3 {
		t.Error("touched file kept its cache key")
	}
}

func TestLRURoundTrip(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "lru", LRUSize: 4})
	if err != nil {
		t.Fatal(err)
	}

	bundle := meta.NewBundle()
	bundle.Set(meta.KindTitle, meta.Attrs{"value": "Logan watershed"})
	bundle.HeaderDump = "netcdf f {\n}\n"

	c.Put("extract:test", bundle)
	got, ok := c.Get("extract:test")
	if !ok {
		t.Fatal("cached bundle not found")
	}
	if got.One(meta.KindTitle)["value"] != "Logan watershed" {
		t.Errorf("round-tripped title %v", got.One(meta.KindTitle))
	}
	if got.HeaderDump != bundle.HeaderDump {
		t.Error("header dump lost in the cache")
	}

	if _, ok := c.Get("extract:absent"); ok {
		t.Error("hit on an absent key")
	}
}

func TestDisabledBackend(t *testing.T) {
	c, err := New(config.CacheConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Error("empty backend must disable caching")
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := New(config.CacheConfig{Backend: "redis"}); err == nil {
		t.Error("unknown backend accepted")
	}
}
