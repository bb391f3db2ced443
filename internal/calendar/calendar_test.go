package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsTradingDay(t *testing.T) {
	cases := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"regular tuesday", date(2024, time.January, 2), true},
		{"saturday", date(2024, time.January, 6), false},
		{"sunday", date(2024, time.January, 7), false},
		{"new year", date(2024, time.January, 1), false},
		{"mlk day", date(2024, time.January, 15), false},
		{"good friday", date(2024, time.March, 29), false},
		{"juneteenth", date(2024, time.June, 19), false},
		{"juneteenth before adoption", date(2021, time.June, 18), true},
		{"independence day", date(2024, time.July, 4), false},
		{"thanksgiving", date(2024, time.November, 28), false},
		{"christmas", date(2024, time.December, 25), false},
		{"observed friday for saturday fourth", date(2026, time.July, 3), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTradingDay(tc.day))
		})
	}
}

func TestTradingDays(t *testing.T) {
	// Week of 2024-01-01: Monday is the New Year holiday.
	days := TradingDays(date(2024, time.January, 1), date(2024, time.January, 7))
	require.Len(t, days, 4)
	assert.Equal(t, date(2024, time.January, 2), days[0])
	assert.Equal(t, date(2024, time.January, 5), days[3])
}

func TestTradingDaysWeekendOnly(t *testing.T) {
	days := TradingDays(date(2024, time.January, 6), date(2024, time.January, 7))
	assert.Empty(t, days)
}

func TestPrevTradingDay(t *testing.T) {
	// Sunday rolls back to Friday.
	assert.Equal(t, date(2024, time.January, 5), PrevTradingDay(date(2024, time.January, 7)))
	// A holiday Monday rolls back across the year boundary.
	assert.Equal(t, date(2023, time.December, 29), PrevTradingDay(date(2024, time.January, 1)))
	// A trading day is its own answer.
	assert.Equal(t, date(2024, time.January, 3), PrevTradingDay(date(2024, time.January, 3)))
}

func TestWeekEnding(t *testing.T) {
	// Plain week: Wednesday maps to that week's Friday.
	assert.Equal(t, date(2024, time.January, 5), WeekEnding(date(2024, time.January, 3)))
	// Good Friday week: the ending backs up to Thursday.
	assert.Equal(t, date(2024, time.March, 28), WeekEnding(date(2024, time.March, 27)))
	// Friday itself.
	assert.Equal(t, date(2024, time.January, 12), WeekEnding(date(2024, time.January, 12)))
}

func TestWeekEndings(t *testing.T) {
	ends := WeekEndings(date(2024, time.March, 1), date(2024, time.March, 31))
	require.Equal(t, []time.Time{
		date(2024, time.March, 1),
		date(2024, time.March, 8),
		date(2024, time.March, 15),
		date(2024, time.March, 22),
		date(2024, time.March, 28), // Good Friday week closes Thursday
	}, ends)
}

func TestWeekEndingsWeekendOnlyRange(t *testing.T) {
	ends := WeekEndings(date(2024, time.January, 6), date(2024, time.January, 7))
	assert.Empty(t, ends)
}

func TestRequiredDates(t *testing.T) {
	start, end := date(2024, time.January, 2), date(2024, time.January, 12)

	daily := RequiredDates(models.PeriodDaily, start, end)
	assert.Len(t, daily, 9)

	weekly := RequiredDates(models.PeriodWeekly, start, end)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 5),
		date(2024, time.January, 12),
	}, weekly)
}

func TestLatestCompletePeriodEndDaily(t *testing.T) {
	// As of Monday 2024-01-08 the latest complete daily candle is Friday's.
	got := LatestCompletePeriodEnd(models.PeriodDaily, date(2024, time.January, 8))
	assert.Equal(t, date(2024, time.January, 5), got)

	// Mid-week: yesterday's candle is complete.
	got = LatestCompletePeriodEnd(models.PeriodDaily, date(2024, time.January, 10))
	assert.Equal(t, date(2024, time.January, 9), got)
}

func TestLatestCompletePeriodEndWeekly(t *testing.T) {
	// Mid-week: the current week has not closed, use the prior week's Friday.
	got := LatestCompletePeriodEnd(models.PeriodWeekly, date(2024, time.January, 10))
	assert.Equal(t, date(2024, time.January, 5), got)

	// On the closing Friday the week counts as complete.
	got = LatestCompletePeriodEnd(models.PeriodWeekly, date(2024, time.January, 12))
	assert.Equal(t, date(2024, time.January, 12), got)

	// Saturday still reports the week that just closed.
	got = LatestCompletePeriodEnd(models.PeriodWeekly, date(2024, time.January, 6))
	assert.Equal(t, date(2024, time.January, 5), got)
}
