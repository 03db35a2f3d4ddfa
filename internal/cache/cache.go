package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// Cache stores raw evidence responses keyed by Key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from an operation kind and its inputs
func Key(kind string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "driverjobpost:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg. It returns nil when caching is
// disabled, a memory cache when no disk directory is set, and a layered
// memory+disk cache otherwise.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}

	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	if cfg.DiskDir == "" {
		return memory
	}

	return NewLayeredCache(memory, NewDiskCache(cfg.DiskDir, cfg.DiskTTL), cfg.MemoryTTL)
}
