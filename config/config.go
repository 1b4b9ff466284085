// Package config holds the extraction pipeline configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type CacheConfig struct {
	// Backend is "lru", "memcached" or "" for no caching.
	Backend     string `yaml:"backend"`
	LRUSize     int    `yaml:"lru_size"`
	MemcacheURI string `yaml:"memcache_uri"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Config is the configuration of the extraction pipeline: file-set
// allow lists, statistics tuning and the optional cache and store
// backends.
type Config struct {
	RasterExtensions []string `yaml:"raster_extensions"`
	VectorExtensions []string `yaml:"vector_extensions"`

	// NoDataTolerance is the absolute tolerance used when deciding
	// whether a computed band minimum is really the nodata sentinel.
	NoDataTolerance float64 `yaml:"nodata_tolerance"`

	Cache    CacheConfig    `yaml:"cache"`
	Postgres PostgresConfig `yaml:"postgres"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		RasterExtensions: []string{".tif", ".vrt"},
		VectorExtensions: []string{
			".shp", ".shx", ".dbf", ".prj", ".sbx", ".sbn",
			".cpg", ".xml", ".fbn", ".fbx", ".ain", ".aih",
			".atx", ".ixs", ".mxs", ".shp.xml",
		},
		NoDataTolerance: 1e-5,
		Cache:           CacheConfig{Backend: "", LRUSize: 1024},
	}
}

// Load reads a YAML configuration file, filling unset fields from the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %v", path, err)
	}
	if cfg.NoDataTolerance <= 0 {
		cfg.NoDataTolerance = Default().NoDataTolerance
	}
	return cfg, nil
}

// RasterAllowList returns the raster extension set keyed by extension.
func (c *Config) RasterAllowList() map[string]bool {
	return toSet(c.RasterExtensions)
}

// VectorAllowList returns the shapefile-family extension set.
func (c *Config) VectorAllowList() map[string]bool {
	return toSet(c.VectorExtensions)
}

func toSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return set
}
