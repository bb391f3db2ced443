package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
)

func coveredSet(days ...time.Time) map[time.Time]struct{} {
	set := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

func TestMissingSplitsAroundCoveredDays(t *testing.T) {
	// Week of 2024-01-08, Monday and Wednesday covered.
	start, end := date(2024, time.January, 8), date(2024, time.January, 12)
	covered := coveredSet(date(2024, time.January, 8), date(2024, time.January, 10))

	gaps := Missing(models.PeriodDaily, start, end, covered)
	require.Len(t, gaps, 2)
	assert.Equal(t, Range{Start: date(2024, time.January, 9), End: date(2024, time.January, 9)}, gaps[0])
	assert.Equal(t, Range{Start: date(2024, time.January, 11), End: date(2024, time.January, 12)}, gaps[1])
}

func TestMissingCoalescesAcrossWeekend(t *testing.T) {
	// Thursday covered; Friday through Tuesday missing is one gap because
	// the weekend days are not required.
	start, end := date(2024, time.January, 4), date(2024, time.January, 9)
	covered := coveredSet(date(2024, time.January, 4))

	gaps := Missing(models.PeriodDaily, start, end, covered)
	require.Len(t, gaps, 1)
	assert.Equal(t, date(2024, time.January, 5), gaps[0].Start)
	assert.Equal(t, date(2024, time.January, 9), gaps[0].End)
}

func TestMissingFullyCovered(t *testing.T) {
	start, end := date(2024, time.January, 2), date(2024, time.January, 5)
	covered := coveredSet(TradingDays(start, end)...)
	assert.Empty(t, Missing(models.PeriodDaily, start, end, covered))
}

func TestMissingNothingCovered(t *testing.T) {
	start, end := date(2024, time.January, 2), date(2024, time.January, 5)
	gaps := Missing(models.PeriodDaily, start, end, nil)
	require.Len(t, gaps, 1)
	assert.Equal(t, Range{Start: start, End: end}, gaps[0])
}

func TestMissingWeekly(t *testing.T) {
	// January 2024 week endings: 5, 12, 19, 26.
	start, end := date(2024, time.January, 1), date(2024, time.January, 31)
	covered := coveredSet(date(2024, time.January, 12), date(2024, time.January, 26))

	gaps := Missing(models.PeriodWeekly, start, end, covered)
	require.Len(t, gaps, 2)
	assert.Equal(t, Range{Start: date(2024, time.January, 5), End: date(2024, time.January, 5)}, gaps[0])
	assert.Equal(t, Range{Start: date(2024, time.January, 19), End: date(2024, time.January, 19)}, gaps[1])
}

func TestMissingEmptyRange(t *testing.T) {
	// Weekend-only range requires nothing.
	gaps := Missing(models.PeriodDaily, date(2024, time.January, 6), date(2024, time.January, 7), nil)
	assert.Empty(t, gaps)
}
