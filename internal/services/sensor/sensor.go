// Package sensor presents one reading type of the meter: it fetches the
// latest bucket, converts it for display and feeds the history.
package sensor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/logger"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services/history"
)

// ReadingSource yields the latest reading of a type, or nil when the
// provider has not published it yet.
type ReadingSource interface {
	GetReading(ctx context.Context, t models.ReadingType) (*models.Reading, error)
}

// Option customizes a Sensor.
type Option func(*Sensor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sensor) { s.logger = logger.OrDiscard(l) }
}

// WithClock overrides the clock used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Sensor) { s.now = now }
}

// Sensor couples a reading source with a history aggregator.
type Sensor struct {
	source        ReadingSource
	history       *history.Aggregator
	logger        *slog.Logger
	now           func() time.Time
	state         models.SensorState
	lastTimestamp int64
	recorded      bool
	mu            sync.RWMutex
}

// New creates a sensor for profile. A nil aggregator gets a default one.
func New(profile models.SensorProfile, source ReadingSource, agg *history.Aggregator, opts ...Option) *Sensor {
	s := &Sensor{
		source: source,
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if agg == nil {
		agg = history.New(profile.Type, history.WithLogger(s.logger))
	}
	s.history = agg
	s.state = models.SensorState{
		Profile: profile,
		Period:  models.PeriodHalfHourly,
		Totals:  agg.Totals().Scaled(profile),
	}
	return s
}

// Update fetches the latest reading. It returns the reading when it was
// new and recorded, nil when nothing new arrived, or the fetch error.
func (s *Sensor) Update(ctx context.Context) (*models.Reading, error) {
	profile := s.Profile()

	reading, err := s.source.GetReading(ctx, profile.Type)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastUpdated = s.now()

	if err != nil {
		s.state.Available = false
		s.state.LastError = err.Error()
		s.logger.Error("error updating sensor", "sensor", profile.Name, "error", err)
		return nil, err
	}
	s.state.LastError = ""

	if reading == nil {
		s.state.Available = false
		s.logger.Debug("no reading available", "sensor", profile.Name)
		return nil, nil
	}

	value := profile.Convert(reading.Value)
	s.state.NativeValue = &value
	s.state.LastReadingTime = reading.Time().UTC().Format(time.RFC3339)
	s.state.Available = true

	if s.recorded && reading.Timestamp == s.lastTimestamp {
		s.logger.Debug("reading already recorded", "sensor", profile.Name, "timestamp", reading.Timestamp)
		return nil, nil
	}

	totals, ok := s.history.Record(reading.Value, reading.Timestamp)
	if !ok {
		return nil, nil
	}
	s.lastTimestamp = reading.Timestamp
	s.recorded = true
	s.state.Totals = totals.Scaled(profile)

	s.logger.Info("sensor updated",
		"sensor", profile.Name,
		"value", value,
		"unit", profile.Unit,
		"total_today", s.state.Totals.TotalToday,
	)
	return reading, nil
}

// State returns a copy of the current presentation state.
func (s *Sensor) State() models.SensorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	if state.NativeValue != nil {
		v := *state.NativeValue
		state.NativeValue = &v
	}
	return state
}

// Profile returns the sensor's presentation profile.
func (s *Sensor) Profile() models.SensorProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile
}

// History returns the aggregator backing this sensor.
func (s *Sensor) History() *history.Aggregator {
	return s.history
}
