// Package history keeps the bounded reading history of one sensor and
// derives its day, week and month totals.
package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/logger"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// DefaultCapacity is 30 days of half-hourly readings.
const DefaultCapacity = 2880

// totalsPrecision is the rounding applied to every rolling total.
const totalsPrecision = 3

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithCapacity bounds the history. Non-positive values keep the default.
func WithCapacity(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.capacity = n
		}
	}
}

// WithLocation sets the zone used to find local midnight.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock overrides the clock used for labels while the history is empty.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger.OrDiscard(l) }
}

// Aggregator owns the history for one reading type.
//
// Eviction is FIFO by position once capacity is reached; readings are not
// expired by age. Duplicate timestamps are kept and summed.
type Aggregator struct {
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
	history     []models.Reading
	totals      models.RollingTotals
	capacity    int
	readingType models.ReadingType
	recorded    bool
	mu          sync.RWMutex
}

// New creates an empty aggregator for t.
func New(t models.ReadingType, opts ...Option) *Aggregator {
	a := &Aggregator{
		readingType: t,
		capacity:    DefaultCapacity,
		loc:         time.Local,
		now:         time.Now,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.history = make([]models.Reading, 0, a.capacity)
	return a
}

// Type returns the reading type this aggregator tracks.
func (a *Aggregator) Type() models.ReadingType {
	return a.readingType
}

// Record appends a reading and recomputes the rolling totals, treating
// the reading's own timestamp as "now". Non-positive values are rejected:
// the history is left untouched and the current totals are returned with
// false.
func (a *Aggregator) Record(value float64, timestamp int64) (models.RollingTotals, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if value <= 0 {
		a.logger.Debug("rejecting non-positive reading",
			"type", a.readingType.String(), "timestamp", timestamp, "value", value)
		return a.currentTotalsLocked(), false
	}

	if len(a.history) >= a.capacity {
		evicted := a.history[0]
		copy(a.history, a.history[1:])
		a.history = a.history[:len(a.history)-1]
		a.logger.Debug("evicted oldest reading", "type", a.readingType.String(), "timestamp", evicted.Timestamp)
	}
	a.history = append(a.history, models.Reading{Timestamp: timestamp, Value: value})

	a.totals = a.computeLocked(time.Unix(timestamp, 0))
	a.recorded = true

	a.logger.Debug("recorded reading",
		"type", a.readingType.String(),
		"timestamp", timestamp,
		"value", value,
		"history", len(a.history),
		"total_today", a.totals.TotalToday,
	)
	return a.totals, true
}

// Totals returns the totals computed by the last Record. Before anything
// has been recorded the totals are zero and labelled from the clock.
func (a *Aggregator) Totals() models.RollingTotals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentTotalsLocked()
}

// Len returns the number of retained readings.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.history)
}

// Recent returns up to n of the newest readings, oldest first.
// n <= 0 returns the whole history.
func (a *Aggregator) Recent(n int) []models.Reading {
	a.mu.RLock()
	defer a.mu.RUnlock()
	start := 0
	if n > 0 && n < len(a.history) {
		start = len(a.history) - n
	}
	out := make([]models.Reading, len(a.history)-start)
	copy(out, a.history[start:])
	return out
}

func (a *Aggregator) currentTotalsLocked() models.RollingTotals {
	if a.recorded {
		return a.totals
	}
	return emptyTotals(PeriodsFor(a.now(), a.loc))
}

// computeLocked scans the whole history; at 2,880 entries a full pass is
// cheaper than keeping incremental sums correct across period rollovers.
func (a *Aggregator) computeLocked(now time.Time) models.RollingTotals {
	p := PeriodsFor(now, a.loc)
	dayStart, weekStart, monthStart := p.Day.Unix(), p.Week.Unix(), p.Month.Unix()

	var today, week, month float64
	for _, r := range a.history {
		if r.Timestamp >= dayStart {
			today += r.Value
		}
		if r.Timestamp >= weekStart {
			week += r.Value
		}
		if r.Timestamp >= monthStart {
			month += r.Value
		}
	}

	totals := emptyTotals(p)
	totals.TotalToday = models.Round(today, totalsPrecision)
	totals.TotalWeek = models.Round(week, totalsPrecision)
	totals.TotalMonth = models.Round(month, totalsPrecision)
	return totals
}

func emptyTotals(p Periods) models.RollingTotals {
	return models.RollingTotals{
		TodayLabel: p.DayLabel(),
		WeekLabel:  p.WeekLabel(),
		MonthLabel: p.MonthLabel(),
	}
}

// Values returns up to n of the newest reading values, oldest first.
// n <= 0 returns every value.
func Values(readings []models.Reading, n int) []float64 {
	if n > 0 && n < len(readings) {
		readings = readings[len(readings)-n:]
	}
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.Value
	}
	return out
}
