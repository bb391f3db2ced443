package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
)

// bar is the wire shape of one candle from the market data API.
type bar struct {
	Date     string           `json:"date"`
	Open     decimal.Decimal  `json:"open"`
	High     decimal.Decimal  `json:"high"`
	Low      decimal.Decimal  `json:"low"`
	Close    decimal.Decimal  `json:"close"`
	Volume   *int64           `json:"volume"`
	Turnover *int64           `json:"turnover"`
	Change   *decimal.Decimal `json:"change"`
	ChangePC *decimal.Decimal `json:"change_percent"`
}

type barsResponse struct {
	Ticker string `json:"ticker"`
	Bars   []bar  `json:"bars"`
}

// HTTPProvider fetches candles from the external market data HTTP API. It
// carries no retry policy of its own; wrap it with Retrying.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewHTTPProvider creates the API client.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Compile-time interface check.
var _ domrepo.RemoteProvider = (*HTTPProvider)(nil)

// Fetch requests candles for ticker/period within [start, end]. The API
// treats both bounds as inclusive dates.
func (p *HTTPProvider) Fetch(ctx context.Context, ticker string, period models.Period, start, end time.Time) ([]models.PriceRow, error) {
	var resp barsResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/v1/bars",
		Headers: map[string]string{
			"Authorization": "Bearer " + p.apiKey,
		},
		QueryParams: map[string][]string{
			"ticker": {ticker},
			"period": {string(period)},
			"start":  {start.Format(models.DateLayout)},
			"end":    {end.Format(models.DateLayout)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	rows := make([]models.PriceRow, 0, len(resp.Bars))
	for _, b := range resp.Bars {
		date, err := time.Parse(models.DateLayout, b.Date)
		if err != nil {
			// Hourly bars carry a full timestamp.
			date, err = time.Parse(time.RFC3339, b.Date)
			if err != nil {
				return nil, fmt.Errorf("parse bar date %q: %w", b.Date, err)
			}
		}
		rows = append(rows, models.PriceRow{
			Ticker:             ticker,
			Date:               date.UTC(),
			Open:               b.Open,
			High:               b.High,
			Low:                b.Low,
			Close:              b.Close,
			Volume:             b.Volume,
			Turnover:           b.Turnover,
			PriceChange:        b.Change,
			PriceChangePercent: b.ChangePC,
		})
	}

	models.SortRows(rows)
	return rows, nil
}
