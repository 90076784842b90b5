package minify

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pangolin/pkg/cache"
	"github.com/matzehuels/pangolin/pkg/observability"
)

const cacheKeyType = "minify"

// Cached wraps a Minifier with a cache keyed by input hash and backend.
// Cache errors are logged and otherwise ignored.
type Cached struct {
	Inner  Minifier
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// Name implements Minifier.
func (c *Cached) Name() string { return c.Inner.Name() }

// Lookup returns the cached result for src, if any.
func (c *Cached) Lookup(ctx context.Context, src string) (string, bool) {
	data, ok, err := c.Cache.Get(ctx, c.key(src))
	if err != nil {
		c.logger().Warn("cache read failed", "err", err)
		return "", false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return "", false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return string(data), true
}

// Minify implements Minifier.
func (c *Cached) Minify(ctx context.Context, src string) (string, error) {
	if out, ok := c.Lookup(ctx, src); ok {
		c.logger().Debug("minify cache hit", "backend", c.Inner.Name())
		return out, nil
	}

	out, err := c.Inner.Minify(ctx, src)
	if err != nil {
		return "", err
	}
	c.Store(ctx, src, out)
	return out, nil
}

// Store caches out as the minified form of src.
func (c *Cached) Store(ctx context.Context, src, out string) {
	if err := c.Cache.Set(ctx, c.key(src), []byte(out), c.TTL); err != nil {
		c.logger().Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(out))
}

func (c *Cached) key(src string) string {
	keyer := c.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return keyer.MinifyKey(cache.Hash([]byte(src)), c.Inner.Name())
}

func (c *Cached) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}
