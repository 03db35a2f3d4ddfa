package source

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/cache"
	"github.com/thomashgnt/driverjobpost/internal/model"
)

// Cached serves repeated evidence queries from a cache. Only non-empty,
// successful results are stored. Any capability left nil is not offered.
type Cached struct {
	search     DocumentSearcher
	structured StructuredSearcher
	fetcher    PageFetcher
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCached wraps the given capabilities with c
func NewCached(search DocumentSearcher, structured StructuredSearcher, fetcher PageFetcher, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		search:     search,
		structured: structured,
		fetcher:    fetcher,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

// Search implements DocumentSearcher
func (c *Cached) Search(ctx context.Context, q string, maxResults int, depth model.Depth) ([]model.Document, error) {
	key := cache.Key("search", q, strconv.Itoa(maxResults), string(depth))
	if data, found := c.cache.Get(key); found {
		var docs []model.Document
		if err := json.Unmarshal(data, &docs); err == nil {
			c.logger.Debug("evidence cache hit", zap.String("op", "search"), zap.String("query", q))
			return docs, nil
		}
	}

	docs, err := c.search.Search(ctx, q, maxResults, depth)
	if err != nil || len(docs) == 0 {
		return docs, err
	}
	c.store(key, docs)
	return docs, nil
}

// SearchStructured implements StructuredSearcher
func (c *Cached) SearchStructured(ctx context.Context, q string, shape Shape, depth model.Depth, out any) (bool, error) {
	schema, err := shape.JSON()
	if err != nil {
		return false, err
	}
	key := cache.Key("structured", q, schema, string(depth))
	if data, found := c.cache.Get(key); found {
		if err := json.Unmarshal(data, out); err == nil {
			c.logger.Debug("evidence cache hit", zap.String("op", "structured"), zap.String("query", q))
			return true, nil
		}
	}

	found, err := c.structured.SearchStructured(ctx, q, shape, depth, out)
	if err != nil || !found {
		return found, err
	}
	c.store(key, out)
	return true, nil
}

// Fetch implements PageFetcher
func (c *Cached) Fetch(ctx context.Context, url string, renderScripts bool) (string, bool, error) {
	key := cache.Key("fetch", url, strconv.FormatBool(renderScripts))
	if data, found := c.cache.Get(key); found {
		c.logger.Debug("evidence cache hit", zap.String("op", "fetch"), zap.String("url", url))
		return string(data), true, nil
	}

	content, ok, err := c.fetcher.Fetch(ctx, url, renderScripts)
	if err != nil || !ok {
		return content, ok, err
	}
	if err := c.cache.Set(key, []byte(content), c.ttl); err != nil {
		c.logger.Warn("evidence cache write failed", zap.Error(err))
	}
	return content, true, nil
}

func (c *Cached) store(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(key, data, c.ttl); err != nil {
		c.logger.Warn("evidence cache write failed", zap.Error(err))
	}
}
