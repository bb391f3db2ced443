package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	xlogger "StockPulse/pkg/logger"
)

type stubStore struct {
	rows   []models.PriceRow
	stocks []models.Stock
}

func (s *stubStore) RangeByTicker(_ context.Context, _ string, _ models.Period, start, end time.Time) ([]models.PriceRow, error) {
	return models.FilterRange(s.rows, start, end), nil
}

func (s *stubStore) UpsertBatch(_ context.Context, _ string, _ models.Period, rows []models.PriceRow) (int, error) {
	return len(rows), nil
}

func (s *stubStore) SearchSymbols(context.Context, string, int) ([]models.Stock, error) {
	return s.stocks, nil
}

func (s *stubStore) Ping(context.Context) error { return nil }

type stubRemote struct{ err error }

func (r *stubRemote) Fetch(context.Context, string, models.Period, time.Time, time.Time) ([]models.PriceRow, error) {
	return nil, r.err
}

type stubMetrics struct{}

func (stubMetrics) RecordCacheHit(string)           {}
func (stubMetrics) RecordCacheMiss(string)          {}
func (stubMetrics) RecordRemoteFetch(string)        {}
func (stubMetrics) RecordRowsPersisted(string, int) {}
func (stubMetrics) RecordError(string)              {}
func (stubMetrics) RecordLatency(string, float64)   {}

func newTestHandler(t *testing.T, store *stubStore) (*StocksEchoHandler, *echo.Echo) {
	t.Helper()
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	pc := icache.New(mem)
	access := usecase.NewDataAccess(store, &stubRemote{err: errors.New("unreachable")}, pc, stubMetrics{}, logger)
	access.SetClock(func() time.Time {
		return time.Date(2024, time.January, 10, 15, 0, 0, 0, time.UTC)
	})
	persister := usecase.NewPersister(store, pc, stubMetrics{}, logger)
	search := usecase.NewSymbolSearch(store, mem, time.Minute, logger)

	h := NewStocksEchoHandler(logger, access, persister, search, pc, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func testStoreRows() []models.PriceRow {
	var rows []models.PriceRow
	for _, d := range []int{2, 3, 4} {
		c := decimal.NewFromInt(185)
		rows = append(rows, models.PriceRow{
			Ticker: "AAPL",
			Date:   time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC),
			Open:   c, High: c, Low: c, Close: c,
		})
	}
	return rows
}

func TestGetStocksOK(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{rows: testStoreRows()})

	rec := do(e, http.MethodGet, "/api/stocks?ticker=AAPL&period=daily&start=2024-01-02&end=2024-01-04")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusOK, body["status"])
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["count"])
	assert.Equal(t, "AAPL", data["ticker"])
}

func TestGetStocksMissingTicker(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{})

	rec := do(e, http.MethodGet, "/api/stocks?period=daily")
	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusBadRequest, body["status"])
}

func TestGetStocksInvalidPeriod(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{})

	rec := do(e, http.MethodGet, "/api/stocks?ticker=AAPL&period=monthly")
	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusBadRequest, body["status"])
}

func TestGetStocksNotFound(t *testing.T) {
	// Empty store and a failing remote leave no tier with data.
	_, e := newTestHandler(t, &stubStore{})

	rec := do(e, http.MethodGet, "/api/stocks?ticker=ZZZZ&period=daily&start=2024-01-02&end=2024-01-04")
	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusNotFound, body["status"])
}

func TestPendingEmpty(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{})

	rec := do(e, http.MethodGet, "/api/pending")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, false, data["pending"])
	assert.EqualValues(t, 0, data["count"])
}

func TestPersistNow(t *testing.T) {
	h, e := newTestHandler(t, &stubStore{})

	require.NoError(t, h.cache.AppendWriteAhead(context.Background(), "AAPL", models.PeriodDaily, testStoreRows()))

	rec := do(e, http.MethodPost, "/api/persist")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["processed"])
	assert.EqualValues(t, 0, data["failed"])
}

func TestSearch(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{stocks: []models.Stock{
		{Ticker: "AAPL", CompanyName: "Apple Inc.", Exchange: "NASDAQ"},
	}})

	rec := do(e, http.MethodGet, "/api/search?q=apple")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total"])
}

func TestSearchMissingQuery(t *testing.T) {
	_, e := newTestHandler(t, &stubStore{})

	rec := do(e, http.MethodGet, "/api/search")
	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusBadRequest, body["status"])
}

func TestCacheSummary(t *testing.T) {
	h, e := newTestHandler(t, &stubStore{})

	require.NoError(t, h.cache.AppendWriteAhead(context.Background(), "AAPL", models.PeriodDaily, testStoreRows()))

	rec := do(e, http.MethodGet, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["write_ahead"])
}
