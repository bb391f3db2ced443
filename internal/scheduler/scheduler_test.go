package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	xlogger "StockPulse/pkg/logger"
)

type recordingStore struct {
	upserts int
}

func (s *recordingStore) RangeByTicker(context.Context, string, models.Period, time.Time, time.Time) ([]models.PriceRow, error) {
	return nil, nil
}

func (s *recordingStore) UpsertBatch(_ context.Context, _ string, _ models.Period, rows []models.PriceRow) (int, error) {
	s.upserts++
	return len(rows), nil
}

func (s *recordingStore) SearchSymbols(context.Context, string, int) ([]models.Stock, error) {
	return nil, nil
}

func (s *recordingStore) Ping(context.Context) error { return nil }

type silentMetrics struct{}

func (silentMetrics) RecordCacheHit(string)           {}
func (silentMetrics) RecordCacheMiss(string)          {}
func (silentMetrics) RecordRemoteFetch(string)        {}
func (silentMetrics) RecordRowsPersisted(string, int) {}
func (silentMetrics) RecordError(string)              {}
func (silentMetrics) RecordLatency(string, float64)   {}

func TestSchedulerTickRunsSweep(t *testing.T) {
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	store := &recordingStore{}
	pc := icache.New(mem)
	persister := usecase.NewPersister(store, pc, silentMetrics{}, logger)

	require.NoError(t, pc.AppendWriteAhead(context.Background(), "AAPL", models.PeriodDaily,
		[]models.PriceRow{{Ticker: "AAPL", Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)}}))

	s := New(persister, time.Minute, logger)
	require.NoError(t, s.Register())

	s.tick()
	assert.Equal(t, 1, store.upserts)

	has, err := persister.HasPending(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSchedulerStartStop(t *testing.T) {
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	persister := usecase.NewPersister(&recordingStore{}, icache.New(mem), silentMetrics{}, logger)

	s := New(persister, time.Hour, logger)
	require.NoError(t, s.Register())
	s.Start()
	s.Stop()
}
