// Package cache memoizes extraction results keyed by file identity,
// so re-crawling an unchanged file skips the driver work.
package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nci/gomemcache/memcache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hydroshare/hsextract/config"
	"github.com/hydroshare/hsextract/meta"
)

var logger zerolog.Logger = log.With().Str("component", "cache").Logger()

// Cache stores extraction bundles. Misses and backend failures are
// indistinguishable on purpose; the pipeline just re-extracts.
type Cache interface {
	Get(key string) (*meta.ExtractedBundle, bool)
	Put(key string, bundle *meta.ExtractedBundle)
}

// Key derives the cache key from the file's identity: path, size and
// mtime. Any rewrite of the file invalidates the key.
func Key(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	sum := xxhash.Sum64String(fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano()))
	return fmt.Sprintf("extract:%016x", sum), nil
}

// New builds the configured backend. An empty backend name disables
// caching (nil Cache).
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "lru":
		size := cfg.LRUSize
		if size <= 0 {
			size = 1024
		}
		c, err := lru.New[string, []byte](size)
		if err != nil {
			return nil, err
		}
		return &lruCache{c: c}, nil
	case "memcached":
		if cfg.MemcacheURI == "" {
			return nil, fmt.Errorf("memcached cache backend requires memcache_uri")
		}
		// lazy connection; errors surface per operation
		return &memcachedCache{mc: memcache.New(cfg.MemcacheURI)}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

type lruCache struct {
	c *lru.Cache[string, []byte]
}

func (l *lruCache) Get(key string) (*meta.ExtractedBundle, bool) {
	data, ok := l.c.Get(key)
	if !ok {
		return nil, false
	}
	return decode(data)
}

func (l *lruCache) Put(key string, bundle *meta.ExtractedBundle) {
	if data, err := json.Marshal(bundle); err == nil {
		l.c.Add(key, data)
	}
}

type memcachedCache struct {
	mc *memcache.Client
}

func (m *memcachedCache) Get(key string) (*meta.ExtractedBundle, bool) {
	item, err := m.mc.Get(key)
	if err != nil {
		return nil, false
	}
	return decode(item.Value)
}

func (m *memcachedCache) Put(key string, bundle *meta.ExtractedBundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return
	}
	// don't care about errors; memcache may not retain this anyway
	if err := m.mc.Set(&memcache.Item{Key: key, Value: data}); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("memcache set failed")
	}
}

func decode(data []byte) (*meta.ExtractedBundle, bool) {
	var bundle meta.ExtractedBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, false
	}
	return &bundle, true
}
