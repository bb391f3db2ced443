package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/calendar"
	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	icache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
	xlogger "StockPulse/pkg/logger"
)

// Default lookback windows applied when the caller omits the date range.
const (
	defaultDailyLookback  = 30  // calendar days
	defaultWeeklyLookback = 180 // calendar days
	defaultHourlyLookback = 7   // calendar days
)

// DataAccess coordinates the tiered read path: read-through cache, durable
// store, then the remote provider for the residual gaps only. Remote-sourced
// rows are queued in the write-ahead cache for asynchronous persistence and
// returned immediately.
//
// Two concurrent calls for overlapping ranges may both fetch the same gap
// from the remote provider; the duplicate fetch is wasted work, not a
// correctness problem, because persistence is an idempotent upsert.
type DataAccess struct {
	store   domrepo.PriceStore
	remote  domrepo.RemoteProvider
	cache   *icache.PriceCache
	metrics domrepo.Metrics
	logger  *xlogger.Logger
	now     func() time.Time
}

// NewDataAccess creates the coordinator.
func NewDataAccess(store domrepo.PriceStore, remote domrepo.RemoteProvider, cache *icache.PriceCache, metrics domrepo.Metrics, logger *xlogger.Logger) *DataAccess {
	return &DataAccess{
		store:   store,
		remote:  remote,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the wall clock (used by tests).
func (da *DataAccess) SetClock(now func() time.Time) { da.now = now }

// GetStockDataParams describes one read request. Zero Start/End select the
// default lookback window for the period.
type GetStockDataParams struct {
	Ticker string
	Period models.Period
	Start  time.Time
	End    time.Time
}

// GetStockDataResult is the assembled answer. Partial is set when the rows
// cover a proper subset of the requested trading days (remote failures on
// some sub-ranges).
type GetStockDataResult struct {
	Ticker  string            `json:"ticker"`
	Period  models.Period     `json:"period"`
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Count   int               `json:"count"`
	Partial bool              `json:"partial"`
	Rows    []models.PriceRow `json:"rows"`
}

// GetStockData runs the tiered read path. It guarantees, absent permanent
// remote failure, one row per trading day in the normalized range. It fails
// with models.ErrDataUnavailable only when no tier yields any row.
func (da *DataAccess) GetStockData(ctx context.Context, p GetStockDataParams) (*GetStockDataResult, error) {
	started := da.now()
	defer func() {
		da.metrics.RecordLatency("get_stock_data", da.now().Sub(started).Seconds())
	}()

	ticker := strings.ToUpper(strings.TrimSpace(p.Ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}
	if !models.IsValidPeriod(p.Period) {
		return nil, fmt.Errorf("unsupported period %q", p.Period)
	}

	start, end := da.normalizeRange(p.Period, p.Start, p.End)
	result := &GetStockDataResult{Ticker: ticker, Period: p.Period, Start: start, End: end}
	if start.After(end) {
		return result, nil
	}

	if p.Period == models.PeriodHourly {
		return da.getHourly(ctx, result)
	}

	// Ranges with no trading days short-circuit before any tier is touched.
	required := calendar.RequiredDates(p.Period, start, end)
	if len(required) == 0 {
		da.logger.Debug("no trading days in requested range",
			xlogger.String("ticker", ticker),
			xlogger.String("period", string(p.Period)))
		return result, nil
	}

	// Tier 1: read-through cache. A payload covering every required date
	// answers the request outright.
	cached := da.cachedRows(ctx, ticker, p.Period)
	if covers(cached, required) {
		da.metrics.RecordCacheHit(string(icache.ReadThrough))
		result.Rows = models.FilterRange(cached, start, end)
		result.Count = len(result.Rows)
		return result, nil
	}
	da.metrics.RecordCacheMiss(string(icache.ReadThrough))

	// Tier 2: durable store. A failure here is fatal to the request; a
	// silently short row set would be returned as truth.
	durable, err := da.store.RangeByTicker(ctx, ticker, p.Period, start, end)
	if err != nil {
		da.metrics.RecordError("store_read")
		return nil, fmt.Errorf("durable store read: %w", err)
	}

	// Rows known from either tier count as covered; cached rows may hold
	// remote data that has not reached the store yet.
	known := models.MergeRows(durable, cached)

	// Tier 3: remote provider, for the residual gaps only.
	gaps := calendar.Missing(p.Period, start, end, models.RowDates(known))
	var remoteRows []models.PriceRow
	for _, gap := range gaps {
		if len(calendar.RequiredDates(p.Period, gap.Start, gap.End)) == 0 {
			continue
		}

		da.metrics.RecordRemoteFetch(ticker)
		rows, err := da.remote.Fetch(ctx, ticker, p.Period, gap.Start, gap.End)
		if err != nil {
			// One failed sub-range does not abort the rest of the answer.
			da.metrics.RecordError("remote_fetch")
			da.logger.Warn("remote fetch failed for sub-range",
				xlogger.String("ticker", ticker),
				xlogger.String("period", string(p.Period)),
				xlogger.String("from", gap.Start.Format(models.DateLayout)),
				xlogger.String("to", gap.End.Format(models.DateLayout)),
				xlogger.Error(err))
			continue
		}
		remoteRows = append(remoteRows, rows...)
	}

	merged := models.MergeRows(known, remoteRows)
	result.Rows = models.FilterRange(merged, start, end)
	result.Count = len(result.Rows)
	// Partial marks any proper subset of the required trading days, whether
	// a sub-range fetch failed or the upstream simply had no rows for it.
	result.Partial = result.Count < len(required)

	if len(result.Rows) == 0 {
		return nil, models.ErrDataUnavailable
	}

	// Only remote-sourced rows enter the write-ahead queue; durable rows
	// are durable already and must not be re-queued.
	if len(remoteRows) > 0 {
		if err := da.cache.AppendWriteAhead(ctx, ticker, p.Period, remoteRows); err != nil {
			da.metrics.RecordError("write_ahead")
			da.logger.Error("write-ahead cache update failed",
				xlogger.String("ticker", ticker), xlogger.Error(err))
		}
	}
	da.refreshReadThrough(ctx, ticker, p.Period, merged)

	if result.Partial {
		da.logger.Warn("returning partial result",
			xlogger.String("ticker", ticker),
			xlogger.String("period", string(p.Period)),
			xlogger.Int("rows", result.Count),
			xlogger.Int("required", len(required)))
	}

	return result, nil
}

// getHourly serves the hourly period. Hourly bars have no per-date gap
// detection; the request is a plain range query with remote fill when the
// store has nothing.
func (da *DataAccess) getHourly(ctx context.Context, result *GetStockDataResult) (*GetStockDataResult, error) {
	cached := da.cachedRows(ctx, result.Ticker, models.PeriodHourly)
	if len(cached) > 0 {
		da.metrics.RecordCacheHit(string(icache.ReadThrough))
		result.Rows = models.FilterRange(cached, result.Start, result.End)
		result.Count = len(result.Rows)
		if result.Count > 0 {
			return result, nil
		}
	} else {
		da.metrics.RecordCacheMiss(string(icache.ReadThrough))
	}

	durable, err := da.store.RangeByTicker(ctx, result.Ticker, models.PeriodHourly, result.Start, result.End.AddDate(0, 0, 1))
	if err != nil {
		da.metrics.RecordError("store_read")
		return nil, fmt.Errorf("durable store read: %w", err)
	}

	rows := durable
	if len(rows) == 0 {
		da.metrics.RecordRemoteFetch(result.Ticker)
		remote, err := da.remote.Fetch(ctx, result.Ticker, models.PeriodHourly, result.Start, result.End)
		if err != nil {
			da.metrics.RecordError("remote_fetch")
			return nil, models.ErrDataUnavailable
		}
		rows = remote
		if err := da.cache.AppendWriteAhead(ctx, result.Ticker, models.PeriodHourly, remote); err != nil {
			da.metrics.RecordError("write_ahead")
			da.logger.Error("write-ahead cache update failed",
				xlogger.String("ticker", result.Ticker), xlogger.Error(err))
		}
	}

	da.refreshReadThrough(ctx, result.Ticker, models.PeriodHourly, rows)
	result.Rows = models.FilterRange(rows, result.Start, result.End)
	result.Count = len(result.Rows)
	if result.Count == 0 {
		return nil, models.ErrDataUnavailable
	}
	return result, nil
}

// normalizeRange applies default lookbacks and clamps the end date to the
// latest fully elapsed period, so no request can ask for a candle that is
// still forming.
func (da *DataAccess) normalizeRange(period models.Period, start, end time.Time) (time.Time, time.Time) {
	latest := calendar.LatestCompletePeriodEnd(period, da.now())

	if end.IsZero() || models.Day(end).After(latest) {
		end = latest
	} else {
		end = models.Day(end)
	}

	if start.IsZero() {
		lookback := defaultDailyLookback
		switch period {
		case models.PeriodWeekly:
			lookback = defaultWeeklyLookback
		case models.PeriodHourly:
			lookback = defaultHourlyLookback
		}
		start = end.AddDate(0, 0, -lookback)
	} else {
		start = models.Day(start)
	}

	return start, end
}

// cachedRows reads the read-through namespace, degrading to a miss on any
// cache failure: caching is acceleration, never a correctness dependency.
func (da *DataAccess) cachedRows(ctx context.Context, ticker string, period models.Period) []models.PriceRow {
	rows, err := da.cache.GetRows(ctx, icache.ReadThrough, ticker, period)
	if err != nil {
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			da.metrics.RecordError("cache_read")
			da.logger.Warn("read-through cache unavailable, skipping tier",
				xlogger.String("ticker", ticker), xlogger.Error(err))
		}
		return nil
	}
	return rows
}

func (da *DataAccess) refreshReadThrough(ctx context.Context, ticker string, period models.Period, rows []models.PriceRow) {
	if err := da.cache.SaveRows(ctx, icache.ReadThrough, ticker, period, rows); err != nil {
		da.metrics.RecordError("cache_write")
		da.logger.Warn("read-through cache update failed",
			xlogger.String("ticker", ticker), xlogger.Error(err))
	}
}

// covers reports whether rows include every required date.
func covers(rows []models.PriceRow, required []time.Time) bool {
	if len(rows) == 0 {
		return false
	}
	dates := models.RowDates(rows)
	for _, d := range required {
		if _, ok := dates[d]; !ok {
			return false
		}
	}
	return true
}
