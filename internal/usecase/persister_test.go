package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	icache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
)

func newPersisterFixture(t *testing.T) (*Persister, *fakeStore, *icache.PriceCache) {
	t.Helper()
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	store := newFakeStore()
	pc := icache.New(mem)
	p := NewPersister(store, pc, noopMetrics{}, testLogger(t))
	return p, store, pc
}

func TestSweepNothingPending(t *testing.T) {
	p, _, _ := newPersisterFixture(t)

	res, err := p.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Zero(t, res.Failed)
	assert.Empty(t, res.Groups)
}

func TestSweepPersistsAndDeletes(t *testing.T) {
	p, store, pc := newPersisterFixture(t)
	ctx := context.Background()

	rows := []models.PriceRow{
		priceRow("AAPL", 2024, time.January, 2, 185),
		priceRow("AAPL", 2024, time.January, 3, 184),
	}
	require.NoError(t, pc.AppendWriteAhead(ctx, "AAPL", models.PeriodDaily, rows))

	res, err := p.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, 2, res.Groups[0].Rows)

	// Rows reached the store and the write-ahead entry is gone.
	assert.Len(t, store.upserted[storeKey("AAPL", models.PeriodDaily)], 2)
	has, err := p.HasPending(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSweepRetainsEntryOnCommitFailure(t *testing.T) {
	p, store, pc := newPersisterFixture(t)
	ctx := context.Background()

	require.NoError(t, pc.AppendWriteAhead(ctx, "AAPL", models.PeriodDaily,
		[]models.PriceRow{priceRow("AAPL", 2024, time.January, 2, 185)}))
	store.upsertErr = errors.New("deadlock detected")

	res, err := p.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Groups, 1)
	assert.NotEmpty(t, res.Groups[0].Error)

	// The entry stays pending for the next sweep.
	has, err := p.HasPending(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	// Once the store recovers the same entry persists and clears.
	store.upsertErr = nil
	res, err = p.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	has, err = p.HasPending(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSweepIsolatesGroupFailures(t *testing.T) {
	p, store, pc := newPersisterFixture(t)
	ctx := context.Background()

	require.NoError(t, pc.AppendWriteAhead(ctx, "AAPL", models.PeriodDaily,
		[]models.PriceRow{priceRow("AAPL", 2024, time.January, 2, 185)}))
	require.NoError(t, pc.AppendWriteAhead(ctx, "MSFT", models.PeriodDaily,
		[]models.PriceRow{priceRow("MSFT", 2024, time.January, 2, 390)}))

	// Fail every upsert; both groups must be attempted regardless.
	store.upsertErr = errors.New("connection reset")

	res, err := p.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Groups, 2)
}

func TestSweepDropsMalformedKey(t *testing.T) {
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	pc := icache.New(mem)
	p := NewPersister(newFakeStore(), pc, noopMetrics{}, testLogger(t))
	ctx := context.Background()

	// A two-segment key can never map back to a (ticker, period) group.
	require.NoError(t, mem.Set(ctx, "write_ahead:BAD", "[]", time.Hour))

	res, err := p.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	// The malformed entry was dropped, not retried forever.
	has, err := p.HasPending(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSweepIdempotent(t *testing.T) {
	p, store, pc := newPersisterFixture(t)
	ctx := context.Background()

	rows := []models.PriceRow{priceRow("AAPL", 2024, time.January, 2, 185)}
	require.NoError(t, pc.AppendWriteAhead(ctx, "AAPL", models.PeriodDaily, rows))

	_, err := p.Sweep(ctx)
	require.NoError(t, err)

	// Re-queueing the same rows and sweeping again leaves one durable row.
	require.NoError(t, pc.AppendWriteAhead(ctx, "AAPL", models.PeriodDaily, rows))
	_, err = p.Sweep(ctx)
	require.NoError(t, err)

	assert.Len(t, store.rows[storeKey("AAPL", models.PeriodDaily)], 1)
}
