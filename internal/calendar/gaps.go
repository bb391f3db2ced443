package calendar

import (
	"time"

	"StockPulse/internal/domain/models"
)

// Range is a closed date interval [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

// Missing computes the minimal set of contiguous sub-ranges of [start, end]
// not covered by covered. Contiguity is by trading-day adjacency (week-ending
// adjacency for weekly), so a gap spanning a weekend or holiday still
// coalesces into one remote call. The result is fully determined by the
// inputs.
func Missing(period models.Period, start, end time.Time, covered map[time.Time]struct{}) []Range {
	required := RequiredDates(period, start, end)
	if len(required) == 0 {
		return nil
	}

	var gaps []Range
	open := false
	var cur Range
	for _, d := range required {
		_, have := covered[d]
		switch {
		case !have && !open:
			cur = Range{Start: d, End: d}
			open = true
		case !have && open:
			cur.End = d
		case have && open:
			gaps = append(gaps, cur)
			open = false
		}
	}
	if open {
		gaps = append(gaps, cur)
	}
	return gaps
}
