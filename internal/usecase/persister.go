package usecase

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	icache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/postgres"
)

// GroupResult reports the outcome of persisting one (ticker, period) group.
type GroupResult struct {
	Key    string        `json:"key"`
	Ticker string        `json:"ticker"`
	Period models.Period `json:"period"`
	Rows   int           `json:"rows"`
	Error  string        `json:"error,omitempty"`
}

// PersistResult summarizes one sweep over the write-ahead namespace.
type PersistResult struct {
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Groups    []GroupResult `json:"groups,omitempty"`
}

// Persister converts write-ahead cache entries into durable upserts. The
// write-ahead entry is deleted only after its transaction commits; a failed
// commit leaves the entry in place for the next sweep. Duplicate persistence
// is harmless because the upsert is idempotent.
type Persister struct {
	store   domrepo.PriceStore
	cache   *icache.PriceCache
	metrics domrepo.Metrics
	logger  *xlogger.Logger
}

// NewPersister creates the write-back persister.
func NewPersister(store domrepo.PriceStore, cache *icache.PriceCache, metrics domrepo.Metrics, logger *xlogger.Logger) *Persister {
	return &Persister{store: store, cache: cache, metrics: metrics, logger: logger}
}

// HasPending reports whether any write-ahead entry awaits persistence.
func (p *Persister) HasPending(ctx context.Context) (bool, error) {
	return p.cache.HasPending(ctx)
}

// PendingKeys lists the outstanding write-ahead keys.
func (p *Persister) PendingKeys(ctx context.Context) ([]string, error) {
	return p.cache.PendingKeys(ctx)
}

// Sweep enumerates all write-ahead entries and persists each (ticker,
// period) group in its own transaction. A failure in one group never aborts
// the others. Running the same sweep twice is safe.
func (p *Persister) Sweep(ctx context.Context) (*PersistResult, error) {
	started := time.Now()
	defer func() {
		p.metrics.RecordLatency("persist_sweep", time.Since(started).Seconds())
	}()

	keys, err := p.cache.PendingKeys(ctx)
	if err != nil {
		p.metrics.RecordError("pending_scan")
		return nil, err
	}

	result := &PersistResult{}
	if len(keys) == 0 {
		return result, nil
	}

	p.logger.Info("persisting pending write-ahead entries", xlogger.Int("groups", len(keys)))

	for _, key := range keys {
		gr := p.persistKey(ctx, key)
		result.Groups = append(result.Groups, gr)
		if gr.Error != "" {
			result.Failed++
		} else {
			result.Processed++
		}
	}

	return result, nil
}

// persistKey persists one write-ahead entry and, on commit success only,
// deletes it from the cache.
func (p *Persister) persistKey(ctx context.Context, key string) GroupResult {
	gr := GroupResult{Key: key}

	ns, ticker, period, err := icache.ParseKey(key)
	if err != nil || ns != icache.WriteAhead || !models.IsValidPeriod(period) {
		// A malformed key can never persist; drop it rather than retrying
		// forever.
		p.logger.Warn("dropping malformed write-ahead key", xlogger.String("key", key))
		_ = p.cache.Delete(ctx, key)
		gr.Error = "malformed key"
		return gr
	}
	gr.Ticker, gr.Period = ticker, period

	rows, err := p.cache.GetRowsByKey(ctx, key)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			// Expired or already persisted by a concurrent sweep.
			return gr
		}
		gr.Error = err.Error()
		p.metrics.RecordError("write_ahead_read")
		return gr
	}
	if len(rows) == 0 {
		_ = p.cache.Delete(ctx, key)
		return gr
	}

	n, err := p.store.UpsertBatch(ctx, ticker, period, rows)
	if err != nil {
		perr := &models.PersistenceConflictError{Ticker: ticker, Period: period, Err: err}
		gr.Error = perr.Error()
		kind := "persist"
		if postgres.IsConstraintViolation(err) {
			kind = "persist_conflict"
		}
		p.metrics.RecordError(kind)
		// The write-ahead entry stays for retry on the next sweep.
		p.logger.Error("persist group failed, retaining write-ahead entry",
			xlogger.String("key", key), xlogger.Error(perr))
		return gr
	}

	gr.Rows = n
	p.metrics.RecordRowsPersisted(string(period), n)

	if err := p.cache.Delete(ctx, key); err != nil {
		// The rows are durable; a lingering entry only causes a harmless
		// re-upsert next sweep.
		p.logger.Warn("write-ahead delete failed after commit",
			xlogger.String("key", key), xlogger.Error(err))
	}

	p.logger.Info("persisted write-ahead group",
		xlogger.String("ticker", ticker),
		xlogger.String("period", string(period)),
		xlogger.Int("rows", n))
	return gr
}
