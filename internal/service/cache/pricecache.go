// Package cache layers stock-data semantics over the generic cache service.
//
// Two namespaces carry the tiering contract: write_ahead holds remote-sourced
// rows that are not yet durable and may only be deleted after a successful
// commit; read_through is pure read acceleration with no durability meaning.
// A third namespace, search, caches symbol-search results.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	pkgcache "StockPulse/pkg/cache"
)

// Namespace identifies a cache class. Keys are laid out as
// {namespace}:{ticker}:{period}.
type Namespace string

const (
	WriteAhead  Namespace = "write_ahead"
	ReadThrough Namespace = "read_through"
	Search      Namespace = "search"
)

// Key builds the cache key for a (namespace, ticker, period) triple.
func Key(ns Namespace, ticker string, period models.Period) string {
	return fmt.Sprintf("%s:%s:%s", ns, ticker, period)
}

// ParseKey splits a namespaced key back into its parts.
func ParseKey(key string) (Namespace, string, models.Period, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed cache key %q", key)
	}
	return Namespace(parts[0]), parts[1], models.Period(parts[2]), nil
}

// PriceCache stores ordered PriceRow payloads per namespace with
// namespace-specific TTLs.
type PriceCache struct {
	svc            pkgcache.Service
	writeAheadTTL  time.Duration
	readThroughTTL time.Duration
	searchTTL      time.Duration
}

// Option configures a PriceCache.
type Option func(*PriceCache)

// WithTTLs overrides the per-namespace TTLs.
func WithTTLs(writeAhead, readThrough, search time.Duration) Option {
	return func(c *PriceCache) {
		if writeAhead > 0 {
			c.writeAheadTTL = writeAhead
		}
		if readThrough > 0 {
			c.readThroughTTL = readThrough
		}
		if search > 0 {
			c.searchTTL = search
		}
	}
}

// New creates a PriceCache over svc with default TTLs (24h write-ahead,
// 1h read-through, 5m search).
func New(svc pkgcache.Service, opts ...Option) *PriceCache {
	c := &PriceCache{
		svc:            svc,
		writeAheadTTL:  24 * time.Hour,
		readThroughTTL: time.Hour,
		searchTTL:      5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PriceCache) ttl(ns Namespace) time.Duration {
	switch ns {
	case WriteAhead:
		return c.writeAheadTTL
	case Search:
		return c.searchTTL
	default:
		return c.readThroughTTL
	}
}

// SaveRows stores rows under (ns, ticker, period), replacing any existing
// payload. Empty payloads are not stored.
func (c *PriceCache) SaveRows(ctx context.Context, ns Namespace, ticker string, period models.Period, rows []models.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}
	return c.svc.Set(ctx, Key(ns, ticker, period), rows, c.ttl(ns))
}

// GetRows loads rows for (ns, ticker, period). Returns pkg/cache.ErrCacheMiss
// when absent or expired; any other failure is marked ErrCacheUnavailable so
// callers can degrade instead of failing the request.
func (c *PriceCache) GetRows(ctx context.Context, ns Namespace, ticker string, period models.Period) ([]models.PriceRow, error) {
	var rows []models.PriceRow
	if err := c.svc.Get(ctx, Key(ns, ticker, period), &rows); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrCacheUnavailable, err)
	}
	return rows, nil
}

// AppendWriteAhead merges rows into the existing write-ahead entry for
// (ticker, period), de-duplicated by date with the new rows winning. The
// entry's TTL restarts so it survives until the next persistence sweep.
func (c *PriceCache) AppendWriteAhead(ctx context.Context, ticker string, period models.Period, rows []models.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}

	existing, err := c.GetRows(ctx, WriteAhead, ticker, period)
	if err != nil && !errors.Is(err, pkgcache.ErrCacheMiss) {
		return err
	}

	return c.SaveRows(ctx, WriteAhead, ticker, period, models.MergeRows(existing, rows))
}

// Delete removes the given fully-qualified cache keys.
func (c *PriceCache) Delete(ctx context.Context, keys ...string) error {
	return c.svc.Delete(ctx, keys...)
}

// PendingKeys lists all write-ahead keys awaiting persistence.
func (c *PriceCache) PendingKeys(ctx context.Context) ([]string, error) {
	return c.svc.Keys(ctx, string(WriteAhead)+":*")
}

// HasPending reports whether any write-ahead entry exists.
func (c *PriceCache) HasPending(ctx context.Context) (bool, error) {
	keys, err := c.PendingKeys(ctx)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

// GetRowsByKey loads a write-ahead payload by its fully-qualified key.
func (c *PriceCache) GetRowsByKey(ctx context.Context, key string) ([]models.PriceRow, error) {
	var rows []models.PriceRow
	if err := c.svc.Get(ctx, key, &rows); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrCacheUnavailable, err)
	}
	return rows, nil
}

// Summary reports per-namespace key counts.
func (c *PriceCache) Summary(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, 3)
	for _, ns := range []Namespace{WriteAhead, ReadThrough, Search} {
		keys, err := c.svc.Keys(ctx, string(ns)+":*")
		if err != nil {
			return nil, err
		}
		out[string(ns)] = len(keys)
	}
	return out, nil
}
