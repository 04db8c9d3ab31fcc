// Package services provides service orchestration for the TUI and the
// HTTP API.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/config"
	"github.com/j-veylop/manx-utilities-tui/internal/db"
	"github.com/j-veylop/manx-utilities-tui/internal/logger"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services/history"
	"github.com/j-veylop/manx-utilities-tui/internal/services/meter"
	"github.com/j-veylop/manx-utilities-tui/internal/services/sensor"
)

type (
	// SensorUpdatedEvent is emitted after every sensor update, successful
	// or not. Reading is set only when a new bucket was recorded.
	SensorUpdatedEvent struct {
		Reading *models.Reading
		State   models.SensorState
		Type    models.ReadingType
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}

	// PollCompletedEvent is emitted after each refresh of all sensors.
	PollCompletedEvent struct {
		At       time.Time
		Duration time.Duration
		Failed   int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SensorUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()         {}
func (PollCompletedEvent) isServiceEvent() {}

// pruneInterval spaces out journal retention passes.
const pruneInterval = 24 * time.Hour

// Source is the reading provider the manager polls.
type Source interface {
	sensor.ReadingSource
	Close() error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger shared by the manager and its components.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger.OrDiscard(l) }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithSource replaces the meter client.
func WithSource(s Source) Option {
	return func(m *Manager) { m.source = s }
}

// WithClock overrides the clock for sensors, history labels and events.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLocation sets the zone used for day, week and month boundaries.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

// Manager owns the poll loop, the sensors and the journal.
type Manager struct {
	cfg      *config.Config
	source   Source
	notifier Notifier
	database *db.DB
	logger   *slog.Logger
	now      func() time.Time
	loc      *time.Location
	sensors  []*sensor.Sensor
	byType   map[models.ReadingType]*sensor.Sensor

	ctx    context.Context
	cancel context.CancelFunc

	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	wg          sync.WaitGroup

	lastPoll          PollCompletedEvent
	lastPrune         time.Time
	budgetNotifiedDay string

	mu        sync.RWMutex
	refreshMu sync.Mutex
	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager wires the reading client, sensors and journal from cfg.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		logger:   logger.Discard(),
		now:      time.Now,
		loc:      time.Local,
		stopChan: make(chan struct{}),
		byType:   make(map[models.ReadingType]*sensor.Sensor),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.notifier == nil {
		if cfg.NotificationsEnabled {
			m.notifier = DesktopNotifier{}
		} else {
			m.notifier = noopNotifier{}
		}
	}

	if m.source == nil {
		m.source = meter.NewClient(cfg.MeterConfig(),
			meter.WithLogger(m.logger.With("component", "meter")),
			meter.WithClock(m.now),
		)
	}

	if cfg.JournalEnabled() {
		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		m.database = database
	}

	for _, t := range models.ReadingTypes {
		profile := models.ProfileFor(t)
		agg := history.New(t,
			history.WithCapacity(cfg.HistoryCapacity),
			history.WithLocation(m.loc),
			history.WithClock(m.now),
			history.WithLogger(m.logger.With("component", "history", "type", t.String())),
		)
		s := sensor.New(profile, m.source, agg,
			sensor.WithLogger(m.logger.With("component", "sensor")),
			sensor.WithClock(m.now),
		)
		m.sensors = append(m.sensors, s)
		m.byType[t] = s
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	return m, nil
}

// Start launches the poll loop: one refresh immediately, then one per
// poll interval. Calling Start again has no effect.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.pollLoop()
	})
}

func (m *Manager) pollLoop() {
	defer m.wg.Done()

	_ = m.Refresh(m.ctx)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Refresh(m.ctx)
		case <-m.stopChan:
			return
		}
	}
}

// Refresh updates every sensor once. Concurrent calls are serialized.
// The returned error joins the per-sensor failures.
func (m *Manager) Refresh(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	start := m.now()
	var errs []error

	for _, s := range m.sensors {
		profile := s.Profile()
		wasAvailable := s.State().Available

		reading, err := s.Update(ctx)
		state := s.State()

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", profile.Type, err))
			m.journalFailure(ctx, profile.Type, err)
			m.broadcast(ErrorEvent{Service: profile.Type.String(), Error: err})
			if wasAvailable {
				m.notify(profile.Name+" unavailable", err.Error())
			}
		}

		if reading != nil {
			m.journalReading(ctx, profile, reading)
			if profile.Type == models.ReadingCost {
				m.checkBudget(state.Totals)
			}
		}

		m.broadcast(SensorUpdatedEvent{Type: profile.Type, State: state, Reading: reading})
	}

	m.pruneJournal(ctx)

	done := PollCompletedEvent{At: m.now(), Duration: m.now().Sub(start), Failed: len(errs)}
	m.mu.Lock()
	m.lastPoll = done
	m.mu.Unlock()
	m.broadcast(done)

	m.logger.Debug("poll completed", "failed", done.Failed, "duration", done.Duration)
	return errors.Join(errs...)
}

// checkBudget notifies once per day when the cost total reaches the budget.
func (m *Manager) checkBudget(totals models.RollingTotals) {
	budget := m.cfg.DailyCostBudget
	if budget <= 0 || totals.TotalToday < budget {
		return
	}

	m.mu.Lock()
	already := m.budgetNotifiedDay == totals.TodayLabel
	m.budgetNotifiedDay = totals.TodayLabel
	m.mu.Unlock()
	if already {
		return
	}

	m.notify("Daily electricity budget reached",
		fmt.Sprintf("Spent £%.2f today, budget is £%.2f", totals.TotalToday, budget))
}

func (m *Manager) notify(title, message string) {
	if err := m.notifier.Notify(title, message); err != nil {
		m.logger.Warn("failed to send notification", "title", title, "error", err)
	}
}

func (m *Manager) journalReading(ctx context.Context, profile models.SensorProfile, reading *models.Reading) {
	if m.database == nil {
		return
	}
	entry := &models.JournalEntry{
		Type:        profile.Type,
		Timestamp:   reading.Timestamp,
		Value:       reading.Value,
		NativeValue: profile.Convert(reading.Value),
		RecordedAt:  m.now(),
	}
	if _, err := m.database.InsertReading(ctx, entry); err != nil {
		m.logger.Error("failed to journal reading", "type", profile.Type.String(), "error", err)
	}
}

func (m *Manager) journalFailure(ctx context.Context, t models.ReadingType, cause error) {
	if m.database == nil {
		return
	}
	kind, status := meter.Classify(cause)
	failure := &models.FetchFailure{
		Type:       t,
		Kind:       kind,
		StatusCode: status,
		Message:    cause.Error(),
		OccurredAt: m.now(),
	}
	// The poll context may already be cancelled on shutdown.
	if err := m.database.InsertFetchFailure(context.WithoutCancel(ctx), failure); err != nil {
		m.logger.Error("failed to journal fetch failure", "type", t.String(), "error", err)
	}
}

// pruneJournal drops journal rows older than the retention, at most once
// per pruneInterval. The caller holds refreshMu.
func (m *Manager) pruneJournal(ctx context.Context) {
	retention := m.cfg.JournalRetention
	if m.database == nil || retention <= 0 {
		return
	}
	now := m.now()
	if !m.lastPrune.IsZero() && now.Sub(m.lastPrune) < pruneInterval {
		return
	}
	m.lastPrune = now

	removed, err := m.database.PruneBefore(ctx, now.Add(-retention))
	if err != nil {
		m.logger.Error("failed to prune journal", "error", err)
		return
	}
	if removed == 0 {
		return
	}
	m.logger.Info("pruned journal", "removed", removed, "retention", retention)
	if err := m.database.Vacuum(); err != nil {
		m.logger.Warn("failed to vacuum journal", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// States returns a snapshot of every sensor state in display order.
func (m *Manager) States() []models.SensorState {
	states := make([]models.SensorState, len(m.sensors))
	for i, s := range m.sensors {
		states[i] = s.State()
	}
	return states
}

// State returns the current state of a reading type.
func (m *Manager) State(t models.ReadingType) (models.SensorState, bool) {
	s, ok := m.byType[t]
	if !ok {
		return models.SensorState{}, false
	}
	return s.State(), true
}

// History returns up to limit of the newest readings of a type.
func (m *Manager) History(t models.ReadingType, limit int) []models.Reading {
	s, ok := m.byType[t]
	if !ok {
		return nil
	}
	return s.History().Recent(limit)
}

// LastPoll returns the most recent completed refresh, zero before the first.
func (m *Manager) LastPoll() PollCompletedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastPoll
}

// Config returns the configuration the manager was built from.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// JournalStats summarizes the journal, or returns nil when it is disabled.
func (m *Manager) JournalStats(ctx context.Context) (*models.JournalStats, error) {
	if m.database == nil {
		return nil, nil
	}
	return m.database.Stats(ctx)
}

// JournalReadings returns the journal count, latest entry and up to limit
// recent entries of a type.
func (m *Manager) JournalReadings(ctx context.Context, t models.ReadingType, limit int) (*models.JournalReadings, error) {
	if m.database == nil {
		return nil, models.ErrJournalDisabled
	}

	count, err := m.database.CountReadings(ctx, t)
	if err != nil {
		return nil, err
	}
	latest, err := m.database.LatestReading(ctx, t)
	if err != nil {
		return nil, err
	}
	recent, err := m.database.RecentReadings(ctx, t, limit)
	if err != nil {
		return nil, err
	}

	return &models.JournalReadings{Type: t, Count: count, Latest: latest, Recent: recent}, nil
}

// JournalFailures returns up to limit recent fetch failures, newest first.
func (m *Manager) JournalFailures(ctx context.Context, limit int) ([]models.FetchFailure, error) {
	if m.database == nil {
		return nil, models.ErrJournalDisabled
	}
	return m.database.RecentFetchFailures(ctx, limit)
}

// Close stops the poll loop and releases the client session and journal.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.cancel()
		m.wg.Wait()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.source.Close(); err != nil {
			errs = append(errs, err)
		}

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
