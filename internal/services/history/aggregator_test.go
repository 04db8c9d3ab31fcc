package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// day is a fixed Wednesday used as the reference for most tests.
var day = time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) int64 {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Unix()
}

func newTestAggregator(opts ...Option) *Aggregator {
	base := []Option{
		WithLocation(time.UTC),
		WithClock(func() time.Time { return day.Add(12 * time.Hour) }),
	}
	return New(models.ReadingCost, append(base, opts...)...)
}

func TestRecord_SumsWithinPeriods(t *testing.T) {
	a := newTestAggregator()

	_, ok := a.Record(10.0, at(1, 0))
	require.True(t, ok)
	_, ok = a.Record(5.0, at(1, 30))
	require.True(t, ok)

	totals, ok := a.Record(2.5, at(2, 0))
	require.True(t, ok)

	assert.InDelta(t, 17.5, totals.TotalToday, 1e-9)
	assert.InDelta(t, 17.5, totals.TotalWeek, 1e-9)
	assert.InDelta(t, 17.5, totals.TotalMonth, 1e-9)
	assert.Equal(t, "2024-03-13", totals.TodayLabel)
	assert.Equal(t, "Mar 11 - 17 Mar 2024", totals.WeekLabel)
	assert.Equal(t, "March 2024", totals.MonthLabel)
	assert.Equal(t, totals, a.Totals())
	assert.Equal(t, 3, a.Len())
}

func TestRecord_PeriodBoundaries(t *testing.T) {
	a := newTestAggregator()

	// Friday of the previous month.
	a.Record(1.0, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC).Unix())
	// Sunday of the previous week, same month.
	a.Record(2.0, time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC).Unix())
	// Monday of the current week.
	a.Record(4.0, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC).Unix())
	// Exactly midnight of the current day.
	totals, ok := a.Record(8.0, at(0, 0))
	require.True(t, ok)

	assert.InDelta(t, 8.0, totals.TotalToday, 1e-9)
	assert.InDelta(t, 12.0, totals.TotalWeek, 1e-9)
	assert.InDelta(t, 14.0, totals.TotalMonth, 1e-9)
}

func TestRecord_NewDayResetsToday(t *testing.T) {
	a := newTestAggregator()

	a.Record(3.0, at(23, 30))
	totals, ok := a.Record(1.0, at(24, 0))
	require.True(t, ok)

	assert.Equal(t, "2024-03-14", totals.TodayLabel)
	assert.InDelta(t, 1.0, totals.TotalToday, 1e-9)
	assert.InDelta(t, 4.0, totals.TotalWeek, 1e-9)
}

func TestRecord_RejectsNonPositive(t *testing.T) {
	for _, value := range []float64{0, -0.01, -42} {
		t.Run(fmt.Sprintf("%v", value), func(t *testing.T) {
			a := newTestAggregator()
			before, ok := a.Record(6.0, at(1, 0))
			require.True(t, ok)

			totals, ok := a.Record(value, at(1, 30))

			assert.False(t, ok)
			assert.Equal(t, before, totals)
			assert.Equal(t, before, a.Totals())
			assert.Equal(t, 1, a.Len())
		})
	}
}

func TestRecord_DuplicateTimestampsAreSummed(t *testing.T) {
	a := newTestAggregator()

	a.Record(2.0, at(5, 0))
	totals, ok := a.Record(2.0, at(5, 0))

	require.True(t, ok)
	assert.InDelta(t, 4.0, totals.TotalToday, 1e-9)
	assert.Equal(t, 2, a.Len())
}

func TestRecord_EvictsOldestAtCapacity(t *testing.T) {
	a := newTestAggregator(WithCapacity(3))

	for i := range 3 {
		a.Record(float64(i+1), at(i, 0))
	}
	require.Equal(t, 3, a.Len())

	totals, ok := a.Record(10.0, at(3, 0))
	require.True(t, ok)

	assert.Equal(t, 3, a.Len())
	snap := a.Recent(0)
	require.Len(t, snap, 3)
	assert.Equal(t, at(1, 0), snap[0].Timestamp)
	assert.Equal(t, at(3, 0), snap[2].Timestamp)
	// 2 + 3 + 10; the evicted 1.0 no longer contributes.
	assert.InDelta(t, 15.0, totals.TotalToday, 1e-9)
}

func TestRecord_NeverExceedsDefaultCapacity(t *testing.T) {
	a := newTestAggregator()
	start := day.AddDate(0, 0, -61)

	for i := range DefaultCapacity + 10 {
		a.Record(0.5, start.Add(time.Duration(i)*30*time.Minute).Unix())
	}

	assert.Equal(t, DefaultCapacity, a.Len())
	first := a.Recent(0)[0]
	assert.Equal(t, start.Add(10*30*time.Minute).Unix(), first.Timestamp)
}

func TestRecord_TotalsMonotonicWithinDay(t *testing.T) {
	a := newTestAggregator()
	var prev models.RollingTotals

	for slot := range 48 {
		totals, ok := a.Record(0.137, at(0, slot*30))
		require.True(t, ok)
		assert.GreaterOrEqual(t, totals.TotalToday, prev.TotalToday)
		assert.GreaterOrEqual(t, totals.TotalWeek, prev.TotalWeek)
		assert.GreaterOrEqual(t, totals.TotalMonth, prev.TotalMonth)
		prev = totals
	}
	assert.InDelta(t, 6.576, prev.TotalToday, 1e-9)
}

func TestRecord_RoundsToThreeDecimals(t *testing.T) {
	a := newTestAggregator()

	a.Record(0.1, at(1, 0))
	a.Record(0.2, at(1, 30))
	totals, _ := a.Record(0.0004, at(2, 0))

	assert.Equal(t, 0.3, totals.TotalToday)
}

func TestTotals_EmptyHistoryUsesClock(t *testing.T) {
	a := New(models.ReadingEnergy,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC) }),
	)

	totals := a.Totals()

	assert.Zero(t, totals.TotalToday)
	assert.Zero(t, totals.TotalWeek)
	assert.Zero(t, totals.TotalMonth)
	assert.Equal(t, "2024-12-31", totals.TodayLabel)
	assert.Equal(t, "Dec 30 - 05 Jan 2025", totals.WeekLabel)
	assert.Equal(t, "December 2024", totals.MonthLabel)
	assert.Equal(t, models.ReadingEnergy, a.Type())
}

func TestRecent(t *testing.T) {
	a := newTestAggregator()
	assert.Empty(t, a.Recent(5))

	for i, v := range []float64{1, 2, 3, 4} {
		a.Record(v, at(i, 0))
	}

	recent := a.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, models.Reading{Timestamp: at(3, 0), Value: 4}, recent[1])
	assert.Len(t, a.Recent(0), 4)
	assert.Len(t, a.Recent(10), 4)
}

func TestRecent_IsACopy(t *testing.T) {
	a := newTestAggregator()
	a.Record(1.0, at(1, 0))

	snap := a.Recent(0)
	snap[0].Value = 99

	assert.Equal(t, 1.0, a.Recent(1)[0].Value)
}

func TestValues(t *testing.T) {
	readings := []models.Reading{{Value: 1}, {Value: 2}, {Value: 3}, {Value: 4}}

	assert.Empty(t, Values(nil, 5))
	assert.Equal(t, []float64{3, 4}, Values(readings, 2))
	assert.Equal(t, []float64{1, 2, 3, 4}, Values(readings, 0))
	assert.Equal(t, []float64{1, 2, 3, 4}, Values(readings, 10))
}

func TestWithCapacity_IgnoresNonPositive(t *testing.T) {
	a := New(models.ReadingCost, WithCapacity(0))
	assert.Equal(t, DefaultCapacity, a.capacity)
}

func TestConcurrentAccess(t *testing.T) {
	a := newTestAggregator(WithCapacity(50))
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := range 200 {
			a.Record(1, at(0, i))
		}
	}()
	for range 200 {
		_ = a.Totals()
		_ = a.Recent(10)
		_ = a.Len()
	}
	<-done

	assert.Equal(t, 50, a.Len())
}
