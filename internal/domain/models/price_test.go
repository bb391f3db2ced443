package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(ticker string, y int, m time.Month, d int, close float64) PriceRow {
	c := decimal.NewFromFloat(close)
	return PriceRow{
		Ticker: ticker,
		Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Open:   c,
		High:   c,
		Low:    c,
		Close:  c,
	}
}

func TestDayTruncation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-01-02 21:30 EST is 2024-01-03 02:30 UTC.
	ts := time.Date(2024, time.January, 2, 21, 30, 0, 0, ny)
	assert.Equal(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), Day(ts))
}

func TestMergeRowsFreshWins(t *testing.T) {
	base := []PriceRow{
		row("AAPL", 2024, time.January, 2, 185),
		row("AAPL", 2024, time.January, 3, 184),
	}
	fresh := []PriceRow{
		row("AAPL", 2024, time.January, 3, 190),
		row("AAPL", 2024, time.January, 4, 181),
	}

	merged := MergeRows(base, fresh)
	require.Len(t, merged, 3)
	assert.Equal(t, "2024-01-02", merged[0].DateKey())
	assert.Equal(t, "2024-01-03", merged[1].DateKey())
	assert.True(t, merged[1].Close.Equal(decimal.NewFromInt(190)), "fresh row must replace base")
	assert.Equal(t, "2024-01-04", merged[2].DateKey())
}

func TestMergeRowsEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeRows(nil, nil))

	only := []PriceRow{row("AAPL", 2024, time.January, 2, 185)}
	assert.Len(t, MergeRows(only, nil), 1)
	assert.Len(t, MergeRows(nil, only), 1)
}

func TestSortRows(t *testing.T) {
	rows := []PriceRow{
		row("AAPL", 2024, time.January, 4, 1),
		row("AAPL", 2024, time.January, 2, 2),
		row("AAPL", 2024, time.January, 3, 3),
	}
	SortRows(rows)
	assert.Equal(t, "2024-01-02", rows[0].DateKey())
	assert.Equal(t, "2024-01-04", rows[2].DateKey())
}

func TestFilterRange(t *testing.T) {
	rows := []PriceRow{
		row("AAPL", 2024, time.January, 2, 1),
		row("AAPL", 2024, time.January, 3, 2),
		row("AAPL", 2024, time.January, 8, 3),
	}

	got := FilterRange(rows,
		time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-03", got[0].DateKey())
	assert.Equal(t, "2024-01-08", got[1].DateKey())
}

func TestRowDates(t *testing.T) {
	rows := []PriceRow{
		row("AAPL", 2024, time.January, 2, 1),
		row("AAPL", 2024, time.January, 2, 1), // duplicate date collapses
		row("AAPL", 2024, time.January, 3, 2),
	}
	dates := RowDates(rows)
	assert.Len(t, dates, 2)
	_, ok := dates[time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)]
	assert.True(t, ok)
}

func TestNormalizePeriod(t *testing.T) {
	assert.Equal(t, PeriodDaily, NormalizePeriod(""))
	assert.Equal(t, PeriodDaily, NormalizePeriod("DAILY"))
	assert.Equal(t, PeriodWeekly, NormalizePeriod("weekly"))
	assert.Equal(t, PeriodHourly, NormalizePeriod("hourly"))
	assert.False(t, IsValidPeriod(Period("monthly")))
}
