package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/postgres"
)

// PostgresPriceStore implements domain/repository.PriceStore using one table
// per period granularity, primary key (ticker, date).
type PostgresPriceStore struct {
	pool *postgres.Pool
}

// NewPostgresPriceStore creates a PostgresPriceStore.
func NewPostgresPriceStore(pool *postgres.Pool) *PostgresPriceStore {
	return &PostgresPriceStore{pool: pool}
}

// Compile-time interface check.
var _ domrepo.PriceStore = (*PostgresPriceStore)(nil)

func tableFor(period models.Period) (string, string, error) {
	switch period {
	case models.PeriodDaily:
		return "stock_prices_daily", "date", nil
	case models.PeriodWeekly:
		return "stock_prices_weekly", "date", nil
	case models.PeriodHourly:
		return "stock_prices_hourly", "hour_timestamp", nil
	default:
		return "", "", fmt.Errorf("unsupported period %q", period)
	}
}

// RangeByTicker returns rows within [start, end] ordered by date ascending.
// created_at/updated_at stay in the store; they are bookkeeping, not data.
func (s *PostgresPriceStore) RangeByTicker(ctx context.Context, ticker string, period models.Period, start, end time.Time) ([]models.PriceRow, error) {
	table, dateCol, err := tableFor(period)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT ticker, %[2]s, open, high, low, close, volume,
		       turnover, amplitude, price_change, price_change_percent, turnover_rate
		FROM %[1]s
		WHERE ticker = $1 AND %[2]s >= $2 AND %[2]s <= $3
		ORDER BY %[2]s ASC
	`, table, dateCol)

	rows, err := s.pool.Query(ctx, query, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query %s range: %w", table, err)
	}
	defer rows.Close()

	return scanPriceRows(rows)
}

// UpsertBatch writes all rows for one (ticker, period) group in a single
// transaction. Conflict target is the natural key; every mutable column is
// updated on conflict, so re-persisting identical rows is a no-op and
// revised rows overwrite in place.
func (s *PostgresPriceStore) UpsertBatch(ctx context.Context, ticker string, period models.Period, rows []models.PriceRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	table, dateCol, err := tableFor(period)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (
			ticker, %[2]s, open, high, low, close, volume,
			turnover, amplitude, price_change, price_change_percent, turnover_rate,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (ticker, %[2]s) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			turnover = EXCLUDED.turnover,
			amplitude = EXCLUDED.amplitude,
			price_change = EXCLUDED.price_change,
			price_change_percent = EXCLUDED.price_change_percent,
			turnover_rate = EXCLUDED.turnover_rate,
			updated_at = now()
	`, table, dateCol)

	for _, r := range rows {
		_, err := tx.Exec(ctx, query,
			ticker,
			r.Date,
			r.Open,
			r.High,
			r.Low,
			r.Close,
			r.Volume,
			r.Turnover,
			r.Amplitude,
			r.PriceChange,
			r.PriceChangePercent,
			r.TurnoverRate,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert %s row %s: %w", table, r.DateKey(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return len(rows), nil
}

// SearchSymbols matches tickers by prefix and company names by substring,
// case-insensitive, ticker-prefix matches first.
func (s *PostgresPriceStore) SearchSymbols(ctx context.Context, q string, limit int) ([]models.Stock, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ticker, company_name, exchange
		FROM stocks
		WHERE ticker ILIKE $1 || '%' OR company_name ILIKE '%' || $1 || '%'
		ORDER BY (ticker ILIKE $1 || '%') DESC, ticker ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search symbols: %w", err)
	}
	defer rows.Close()

	var stocks []models.Stock
	for rows.Next() {
		var st models.Stock
		if err := rows.Scan(&st.Ticker, &st.CompanyName, &st.Exchange); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		stocks = append(stocks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock rows: %w", err)
	}
	return stocks, nil
}

// Ping verifies connectivity.
func (s *PostgresPriceStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanPriceRows(rows pgx.Rows) ([]models.PriceRow, error) {
	var out []models.PriceRow

	for rows.Next() {
		var r models.PriceRow

		err := rows.Scan(
			&r.Ticker,
			&r.Date,
			&r.Open,
			&r.High,
			&r.Low,
			&r.Close,
			&r.Volume,
			&r.Turnover,
			&r.Amplitude,
			&r.PriceChange,
			&r.PriceChangePercent,
			&r.TurnoverRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return out, nil
}
