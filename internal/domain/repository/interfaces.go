package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// PriceStore is the durable tier: canonical price rows keyed by
// (ticker, period, date).
type PriceStore interface {
	// RangeByTicker returns rows for ticker/period within [start, end],
	// ordered by date ascending. Bookkeeping columns (created_at,
	// updated_at) are never projected into the result.
	RangeByTicker(ctx context.Context, ticker string, period models.Period, start, end time.Time) ([]models.PriceRow, error)

	// UpsertBatch writes rows for one (ticker, period) group inside a
	// single transaction, insert-or-update on the natural key. Returns
	// the number of rows written. Idempotent.
	UpsertBatch(ctx context.Context, ticker string, period models.Period, rows []models.PriceRow) (int, error)

	// SearchSymbols returns stocks whose ticker or company name matches q.
	SearchSymbols(ctx context.Context, q string, limit int) ([]models.Stock, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error
}

// RemoteProvider fetches rows from the external data source. Implementations
// are expected to fail with an error mapping to RemoteUnavailableError on
// network, timeout, or rate-limit problems.
type RemoteProvider interface {
	Fetch(ctx context.Context, ticker string, period models.Period, start, end time.Time) ([]models.PriceRow, error)
}

// Metrics records operational counters for the data engine.
type Metrics interface {
	RecordCacheHit(namespace string)
	RecordCacheMiss(namespace string)
	RecordRemoteFetch(ticker string)
	RecordRowsPersisted(period string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
