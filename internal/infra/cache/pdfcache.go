// Package cache holds the optional Redis-backed cache for rendered PDF
// bytes. A cache hit skips only the render step; naming and persistence
// still run so every invocation yields a fresh artifact.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pdfexport/internal/infra/logging"
	"pdfexport/internal/layout"
)

// PDFCache caches rendered bytes keyed by document and layout. A nil
// *PDFCache is valid and always misses.
type PDFCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a PDFCache over rdb. Returns nil when rdb is nil so callers
// can pass the result around unconditionally.
func New(rdb *redis.Client, ttl time.Duration) *PDFCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PDFCache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key from the composed document and every layout
// parameter that affects the rendered bytes.
func Key(doc string, d layout.Descriptor) string {
	h := sha256.New()
	h.Write([]byte(doc))
	fmt.Fprintf(h, "|%s|%v|%v|%v", d.Paper.Name, d.Landscape, d.PrintBackground, d.Margin)
	fmt.Fprintf(h, "|%v|%s|%s", d.DisplayHeaderFooter, d.HeaderTemplate, d.FooterTemplate)
	return "pdfcache:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns cached bytes and whether the lookup hit. Redis trouble is a
// miss, never a request failure.
func (c *PDFCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err.Error())
		return nil, false
	}
	logging.Info("PDF cache hit", "key", key)
	return data, true
}

// Set stores rendered bytes under key for the configured TTL.
func (c *PDFCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err.Error())
	}
}
