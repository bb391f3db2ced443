package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// PriceRow is one OHLCV observation. Within a (ticker, period) series the
// date is the natural key; rows are immutable once correct and may only be
// replaced wholesale by an upsert.
type PriceRow struct {
	Ticker             string           `json:"ticker"`
	Date               time.Time        `json:"date"`
	Open               decimal.Decimal  `json:"open"`
	High               decimal.Decimal  `json:"high"`
	Low                decimal.Decimal  `json:"low"`
	Close              decimal.Decimal  `json:"close"`
	Volume             *int64           `json:"volume,omitempty"`
	Turnover           *int64           `json:"turnover,omitempty"`
	Amplitude          *decimal.Decimal `json:"amplitude,omitempty"`
	PriceChange        *decimal.Decimal `json:"price_change,omitempty"`
	PriceChangePercent *decimal.Decimal `json:"price_change_percent,omitempty"`
	TurnoverRate       *decimal.Decimal `json:"turnover_rate,omitempty"`
}

// DateKey returns the row date formatted as YYYY-MM-DD in UTC.
func (r PriceRow) DateKey() string {
	return r.Date.UTC().Format(DateLayout)
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SortRows orders rows by date ascending, in place.
func SortRows(rows []PriceRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

// MergeRows combines base and fresh, de-duplicated by date with fresh
// winning on conflict, returned sorted by date ascending.
func MergeRows(base, fresh []PriceRow) []PriceRow {
	byDate := make(map[string]PriceRow, len(base)+len(fresh))
	for _, r := range base {
		byDate[r.DateKey()] = r
	}
	for _, r := range fresh {
		byDate[r.DateKey()] = r
	}

	merged := make([]PriceRow, 0, len(byDate))
	for _, r := range byDate {
		merged = append(merged, r)
	}
	SortRows(merged)
	return merged
}

// FilterRange returns the rows whose UTC calendar date falls within
// [start, end], preserving order. Bounds and row dates are compared at
// day granularity, so an hourly row is kept when its day is in range.
func FilterRange(rows []PriceRow, start, end time.Time) []PriceRow {
	out := make([]PriceRow, 0, len(rows))
	for _, r := range rows {
		d := Day(r.Date)
		if d.Before(Day(start)) || d.After(Day(end)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RowDates returns the set of calendar dates covered by rows.
func RowDates(rows []PriceRow) map[time.Time]struct{} {
	dates := make(map[time.Time]struct{}, len(rows))
	for _, r := range rows {
		dates[Day(r.Date)] = struct{}{}
	}
	return dates
}
