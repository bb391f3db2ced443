// Package provider decorates the external data source client with the
// bounded retry policy required on the only fallible external dependency.
package provider

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	xlogger "StockPulse/pkg/logger"
)

// RetryConfig bounds the retry loop around remote fetches.
type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryConfig mirrors the provider adapter's historical policy:
// three attempts with exponential backoff capped at ten seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

// Retrying wraps a RemoteProvider with exponential backoff and a fixed
// attempt cap. A final failure is surfaced as RemoteUnavailableError scoped
// to the requested sub-range.
type Retrying struct {
	inner  domrepo.RemoteProvider
	cfg    RetryConfig
	logger *xlogger.Logger
}

// NewRetrying creates a retrying provider decorator.
func NewRetrying(inner domrepo.RemoteProvider, cfg RetryConfig, logger *xlogger.Logger) *Retrying {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return &Retrying{inner: inner, cfg: cfg, logger: logger}
}

// Compile-time interface check.
var _ domrepo.RemoteProvider = (*Retrying)(nil)

func (r *Retrying) Fetch(ctx context.Context, ticker string, period models.Period, start, end time.Time) ([]models.PriceRow, error) {
	delay := r.cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		rows, err := r.inner.Fetch(ctx, ticker, period, start, end)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if attempt == r.cfg.Attempts {
			break
		}

		if r.logger != nil {
			r.logger.Warn("remote fetch failed, retrying",
				xlogger.String("ticker", ticker),
				xlogger.String("period", string(period)),
				xlogger.Int("attempt", attempt),
				xlogger.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return nil, &models.RemoteUnavailableError{
				Ticker: ticker, Period: period, Start: start, End: end, Err: ctx.Err(),
			}
		case <-time.After(delay):
		}

		delay *= 2
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	return nil, &models.RemoteUnavailableError{
		Ticker: ticker, Period: period, Start: start, End: end, Err: lastErr,
	}
}
