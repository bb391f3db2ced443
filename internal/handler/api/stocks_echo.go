package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/postgres"
)

// StocksEchoHandler exposes the data engine over HTTP.
type StocksEchoHandler struct {
	logger    *xlogger.Logger
	access    *usecase.DataAccess
	persister *usecase.Persister
	search    *usecase.SymbolSearch
	cache     *icache.PriceCache
	pool      *postgres.Pool
}

func NewStocksEchoHandler(
	logger *xlogger.Logger,
	access *usecase.DataAccess,
	persister *usecase.Persister,
	search *usecase.SymbolSearch,
	cache *icache.PriceCache,
	pool *postgres.Pool,
) *StocksEchoHandler {
	return &StocksEchoHandler{
		logger:    logger,
		access:    access,
		persister: persister,
		search:    search,
		cache:     cache,
		pool:      pool,
	}
}

func (h *StocksEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stocks", h.GetStockData)
	g.GET("/pending", h.Pending)
	g.POST("/persist", h.PersistNow)
	g.GET("/search", h.Search)
	g.GET("/cache", h.CacheSummary)
	g.GET("/health", h.Health)
}

// GetStockData serves the tiered read path.
func (h *StocksEchoHandler) GetStockData(c echo.Context) error {
	req := &models.StockDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params := usecase.GetStockDataParams{
		Ticker: req.Ticker,
		Period: models.NormalizePeriod(req.Period),
		Start:  xhttp.ParseDateDefault(req.Start, time.Time{}),
		End:    xhttp.ParseDateDefault(req.End, time.Time{}),
	}

	res, err := h.access.GetStockData(c.Request().Context(), params)
	if err != nil {
		if errors.Is(err, models.ErrDataUnavailable) {
			return xhttp.AppErrorResponse(c,
				xhttp.NotFoundErrorf("no data available for %s", req.Ticker).WithError(err))
		}
		h.logger.Error("stock data usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Pending reports write-ahead entries awaiting persistence.
func (h *StocksEchoHandler) Pending(c echo.Context) error {
	ctx := c.Request().Context()
	keys, err := h.persister.PendingKeys(ctx)
	if err != nil {
		h.logger.Error("pending keys error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"pending": len(keys) > 0,
		"count":   len(keys),
		"keys":    keys,
	})
}

// PersistNow runs one synchronous write-back sweep, equivalent to a
// scheduler tick.
func (h *StocksEchoHandler) PersistNow(c echo.Context) error {
	res, err := h.persister.Sweep(c.Request().Context())
	if err != nil {
		h.logger.Error("persist sweep error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Search answers symbol lookups.
func (h *StocksEchoHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stocks, err := h.search.Search(c.Request().Context(), req.Q, req.Limit)
	if err != nil {
		h.logger.Error("symbol search error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, stocks, int64(len(stocks)))
}

// CacheSummary reports per-namespace key counts.
func (h *StocksEchoHandler) CacheSummary(c echo.Context) error {
	summary, err := h.cache.Summary(c.Request().Context())
	if err != nil {
		h.logger.Error("cache summary error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, summary)
}

// Health reports dependency reachability. The cache is reported but never
// fails the check; the engine degrades without it.
func (h *StocksEchoHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	status := map[string]string{"postgres": "ok", "cache": "ok"}
	healthy := true

	if err := h.pool.Ping(ctx); err != nil {
		status["postgres"] = err.Error()
		healthy = false
	}
	if _, err := h.cache.HasPending(ctx); err != nil {
		status["cache"] = err.Error()
	}

	if !healthy {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
	}
	return xhttp.SuccessResponse(c, status)
}
