// Package calendar answers trading-day questions for the US equity market.
// Everything here is a pure function over computed NYSE holiday rules; there
// is no I/O and no hidden state.
package calendar

import (
	"sync"
	"time"

	"StockPulse/internal/domain/models"
)

// closingWeekday is the canonical week-ending weekday for weekly candles.
const closingWeekday = time.Friday

// IsTradingDay reports whether d is an NYSE trading day.
func IsTradingDay(d time.Time) bool {
	d = models.Day(d)
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	_, holiday := holidaysFor(d.Year())[d]
	return !holiday
}

// TradingDays enumerates all trading days in [start, end], ascending.
func TradingDays(start, end time.Time) []time.Time {
	start, end = models.Day(start), models.Day(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// PrevTradingDay returns the latest trading day on or before d.
// Returns the zero time if none exists within a year (never in practice).
func PrevTradingDay(d time.Time) time.Time {
	d = models.Day(d)
	for i := 0; i < 366; i++ {
		if IsTradingDay(d) {
			return d
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Time{}
}

// WeekEnding returns the week-ending trading day for the week containing d:
// the last trading day on or before that week's canonical closing weekday.
// Returns the zero time for a week with no trading days.
func WeekEnding(d time.Time) time.Time {
	d = models.Day(d)
	// Roll forward to the closing weekday of this week.
	offset := (int(closingWeekday) - int(d.Weekday()) + 7) % 7
	closing := d.AddDate(0, 0, offset)
	monday := closing.AddDate(0, 0, -4)

	for day := closing; !day.Before(monday); day = day.AddDate(0, 0, -1) {
		if IsTradingDay(day) {
			return day
		}
	}
	return time.Time{}
}

// WeekEndings enumerates the distinct week-ending trading days covering
// [start, end], ascending. A week contributes its ending only when that
// ending falls inside the range.
func WeekEndings(start, end time.Time) []time.Time {
	start, end = models.Day(start), models.Day(end)
	var ends []time.Time
	seen := make(map[time.Time]struct{})
	for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
		we := WeekEnding(d)
		if we.IsZero() || we.Before(start) || we.After(end) {
			continue
		}
		if _, dup := seen[we]; dup {
			continue
		}
		seen[we] = struct{}{}
		ends = append(ends, we)
	}
	// The stride above starts from `start`; the final partial week can be
	// missed when the range does not divide evenly into weeks.
	if we := WeekEnding(end); !we.IsZero() && !we.Before(start) && !we.After(end) {
		if _, dup := seen[we]; !dup {
			ends = append(ends, we)
		}
	}
	return ends
}

// RequiredDates returns every date a complete series for period must cover
// inside [start, end]: trading days for daily/hourly, week-ending trading
// days for weekly.
func RequiredDates(period models.Period, start, end time.Time) []time.Time {
	if period == models.PeriodWeekly {
		return WeekEndings(start, end)
	}
	return TradingDays(start, end)
}

// LatestCompletePeriodEnd returns the end date of the latest fully elapsed
// period as of asOf. A daily candle is complete only after its trading day
// has passed; a weekly candle only once its week-ending trading day has
// passed or is asOf itself.
func LatestCompletePeriodEnd(period models.Period, asOf time.Time) time.Time {
	today := models.Day(asOf)

	switch period {
	case models.PeriodWeekly:
		we := WeekEnding(today)
		if !we.IsZero() && !we.After(today) {
			return we
		}
		// Current week has not closed yet: use the previous week.
		return WeekEnding(today.AddDate(0, 0, -7))
	default:
		// Daily and hourly candles for today are still forming.
		return PrevTradingDay(today.AddDate(0, 0, -1))
	}
}

// holidayCache memoizes per-year holiday tables.
var holidayCache = struct {
	mu    sync.Mutex
	years map[int]map[time.Time]struct{}
}{years: make(map[int]map[time.Time]struct{})}

func holidaysFor(year int) map[time.Time]struct{} {
	holidayCache.mu.Lock()
	defer holidayCache.mu.Unlock()
	if h, ok := holidayCache.years[year]; ok {
		return h
	}
	h := computeHolidays(year)
	holidayCache.years[year] = h
	return h
}

func computeHolidays(year int) map[time.Time]struct{} {
	set := make(map[time.Time]struct{}, 10)
	add := func(d time.Time) { set[d] = struct{}{} }

	// Fixed-date holidays shift to the nearest weekday when observed:
	// Saturday -> preceding Friday, Sunday -> following Monday.
	addObserved := func(month time.Month, day int) {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		switch d.Weekday() {
		case time.Saturday:
			d = d.AddDate(0, 0, -1)
		case time.Sunday:
			d = d.AddDate(0, 0, 1)
		}
		add(d)
	}

	addObserved(time.January, 1)
	add(nthWeekday(year, time.January, time.Monday, 3))  // MLK Day
	add(nthWeekday(year, time.February, time.Monday, 3)) // Washington's Birthday
	add(easter(year).AddDate(0, 0, -2))                  // Good Friday
	add(lastWeekday(year, time.May, time.Monday))        // Memorial Day
	if year >= 2022 {
		addObserved(time.June, 19) // Juneteenth
	}
	addObserved(time.July, 4)
	add(nthWeekday(year, time.September, time.Monday, 1))  // Labor Day
	add(nthWeekday(year, time.November, time.Thursday, 4)) // Thanksgiving
	addObserved(time.December, 25)

	return set
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// easter computes the Gregorian Easter Sunday (anonymous computus).
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
