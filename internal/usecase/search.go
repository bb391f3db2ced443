package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	icache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
	xlogger "StockPulse/pkg/logger"
)

// SymbolSearch answers ticker/company lookups against the stocks table,
// accelerated by the search cache namespace.
type SymbolSearch struct {
	store  domrepo.PriceStore
	svc    pkgcache.Service
	ttl    time.Duration
	logger *xlogger.Logger
}

// NewSymbolSearch creates the search use case.
func NewSymbolSearch(store domrepo.PriceStore, svc pkgcache.Service, ttl time.Duration, logger *xlogger.Logger) *SymbolSearch {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SymbolSearch{store: store, svc: svc, ttl: ttl, logger: logger}
}

// Search returns up to limit matches for q.
func (s *SymbolSearch) Search(ctx context.Context, q string, limit int) ([]models.Stock, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("query required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	key := fmt.Sprintf("%s:%s:%d", icache.Search, strings.ToUpper(q), limit)

	cached, err := pkgcache.GetTyped[[]models.Stock](ctx, s.svc, key)
	if err == nil {
		return cached, nil
	} else if !errors.Is(err, pkgcache.ErrCacheMiss) {
		s.logger.Warn("search cache unavailable", xlogger.Error(err))
	}

	stocks, err := s.store.SearchSymbols(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search symbols: %w", err)
	}

	if err := s.svc.Set(ctx, key, stocks, s.ttl); err != nil {
		s.logger.Warn("search cache write failed", xlogger.Error(err))
	}
	return stocks, nil
}
