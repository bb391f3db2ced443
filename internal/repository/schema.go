package repository

import (
	"context"
	"fmt"

	"StockPulse/pkg/postgres"
)

var priceTableDDL = `
CREATE TABLE IF NOT EXISTS %s (
	ticker               VARCHAR(10)    NOT NULL,
	%s                   %s             NOT NULL,
	open                 NUMERIC(10,4)  NOT NULL,
	high                 NUMERIC(10,4)  NOT NULL,
	low                  NUMERIC(10,4)  NOT NULL,
	close                NUMERIC(10,4)  NOT NULL,
	volume               BIGINT,
	turnover             BIGINT,
	amplitude            NUMERIC(10,4),
	price_change         NUMERIC(10,4),
	price_change_percent NUMERIC(10,4),
	turnover_rate        NUMERIC(10,4),
	created_at           TIMESTAMPTZ    NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ    NOT NULL DEFAULT now(),
	PRIMARY KEY (ticker, %s)
)`

// InitSchema creates the price and stocks tables if absent. Range scans use
// the primary key (ticker, date); no extra index is needed.
func InitSchema(ctx context.Context, pool *postgres.Pool) error {
	stmts := []string{
		fmt.Sprintf(priceTableDDL, "stock_prices_daily", "date", "DATE", "date"),
		fmt.Sprintf(priceTableDDL, "stock_prices_weekly", "date", "DATE", "date"),
		fmt.Sprintf(priceTableDDL, "stock_prices_hourly", "hour_timestamp", "TIMESTAMPTZ", "hour_timestamp"),
		`CREATE TABLE IF NOT EXISTS stocks (
			ticker       VARCHAR(10)  PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			exchange     VARCHAR(10)  NOT NULL,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ  NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
