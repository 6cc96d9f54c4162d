package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/metrics"
)

// Cache is the façade in front of one resource type's entry store. It is
// the only surface callers use: route handlers build a fingerprint, Lookup
// it, fetch from the provider on a miss, and Store the result.
//
// The cache is a performance optimization, never a hard dependency: storage
// failures degrade to a miss on the read path and a logged no-op on the
// write path, so callers can always fall through to live provider data.
//
// Cache is stateless between calls; all state lives in the store, whose
// per-row upsert atomicity is what makes concurrent writers safe. Two
// callers racing on the same fingerprint after a shared miss may both fetch
// upstream; the duplicate fetch is accepted, there is no request
// coalescing.
type Cache struct {
	resource string
	store    EntryStore
	logger   *zap.Logger
	now      func() time.Time
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithNow overrides the clock, primarily for tests.
func WithNow(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates a façade for one resource type. The resource name only
// feeds logs and metrics labels.
func NewCache(resource string, store EntryStore, logger *zap.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		resource: resource,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resource returns the resource type this cache fronts.
func (c *Cache) Resource() string {
	return c.resource
}

// Lookup fetches the entry for a fingerprint and applies the freshness rule
// under the given mode. Storage failures are logged and reported as a miss.
func (c *Cache) Lookup(ctx context.Context, fingerprint string, mode LookupMode) Result {
	entry, err := c.store.Get(ctx, fingerprint)
	if err != nil && !errors.Is(err, ErrNotFound) {
		c.logger.Warn("cache read degraded to miss",
			zap.String("resource", c.resource),
			zap.String("mode", mode.String()),
			zap.Error(err))
		metrics.StoreErrors.WithLabelValues(c.resource, "get").Inc()
		metrics.Lookups.WithLabelValues(c.resource, "miss").Inc()
		return Result{Outcome: OutcomeMiss}
	}

	result := Decide(entry, c.now(), mode)
	metrics.Lookups.WithLabelValues(c.resource, result.Outcome.String()).Inc()

	if result.Stale() {
		c.logger.Debug("serving stale cache entry",
			zap.String("resource", c.resource),
			zap.Duration("age", result.Age))
	}
	return result
}

// Store upserts a payload with the given TTL and reports success. A zero or
// negative TTL is rejected. Storage failures are logged, never returned.
func (c *Cache) Store(ctx context.Context, fingerprint string, payload []byte, ttl time.Duration) bool {
	return c.write(ctx, fingerprint, payload, StatusComplete, ttl)
}

// StoreFailure records a negative entry: the upstream fetch failed and
// should not be retried until the TTL passes. No payload is stored.
func (c *Cache) StoreFailure(ctx context.Context, fingerprint string, ttl time.Duration) bool {
	return c.write(ctx, fingerprint, nil, StatusFailed, ttl)
}

func (c *Cache) write(ctx context.Context, fingerprint string, payload []byte, status EntryStatus, ttl time.Duration) bool {
	if ttl <= 0 {
		c.logger.Warn("rejecting cache write with non-positive ttl",
			zap.String("resource", c.resource),
			zap.Duration("ttl", ttl))
		return false
	}

	now := c.now()
	entry := &CacheEntry{
		Fingerprint: fingerprint,
		Payload:     payload,
		Status:      status,
		WrittenAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	if err := c.store.Upsert(ctx, entry); err != nil {
		c.logger.Warn("cache write dropped",
			zap.String("resource", c.resource),
			zap.Error(err))
		metrics.StoreErrors.WithLabelValues(c.resource, "upsert").Inc()
		return false
	}
	return true
}

// Invalidate removes the entry for a fingerprint and reports whether one
// existed. Backs the user-facing "clear cache" action.
func (c *Cache) Invalidate(ctx context.Context, fingerprint string) bool {
	existed, err := c.store.Delete(ctx, fingerprint)
	if err != nil {
		c.logger.Warn("cache invalidation dropped",
			zap.String("resource", c.resource),
			zap.Error(err))
		metrics.StoreErrors.WithLabelValues(c.resource, "delete").Inc()
		return false
	}
	return existed
}
