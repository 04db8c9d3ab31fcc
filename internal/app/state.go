// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/config"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for loading notifications.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the UI's copy of service data, shared by every tab.
type State struct {
	lastUpdated   time.Time
	lastPoll      time.Time
	config        *config.Config
	journal       *models.JournalStats
	history       map[models.ReadingType][]models.Reading
	sensors       []models.SensorState
	notifications []Notification
	lastFailed    int
	seq           int
	loading       bool
	mu            sync.RWMutex
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		history: make(map[models.ReadingType][]models.Reading),
		loading: true,
	}
}

// SetSnapshot replaces the sensor data with a freshly loaded snapshot.
func (s *State) SetSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sensors = snap.Sensors
	s.history = make(map[models.ReadingType][]models.Reading, len(snap.History))
	for t, readings := range snap.History {
		s.history[t] = readings
	}
	s.journal = snap.Journal
	s.lastPoll = snap.LastPoll
	s.lastFailed = snap.Failed
	s.lastUpdated = time.Now()
}

// GetSensors returns a copy of the sensor states in display order.
func (s *State) GetSensors() []models.SensorState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sensors := make([]models.SensorState, len(s.sensors))
	copy(sensors, s.sensors)
	return sensors
}

// GetSensor returns the state of one reading type.
func (s *State) GetSensor(t models.ReadingType) (models.SensorState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sensor := range s.sensors {
		if sensor.Profile.Type == t {
			return sensor, true
		}
	}
	return models.SensorState{}, false
}

// GetHistory returns the retained readings of a type, oldest first.
func (s *State) GetHistory(t models.ReadingType) []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history[t]
}

// GetJournal returns the journal summary, nil when disabled.
func (s *State) GetJournal() *models.JournalStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.journal
}

// LastPoll returns when the sensors were last polled and how many failed.
func (s *State) LastPoll() (time.Time, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPoll, s.lastFailed
}

// SetConfig stores the running configuration for display.
func (s *State) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// GetConfig returns the running configuration.
func (s *State) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetLoading marks a refresh as in flight.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// IsLoading reports whether a refresh is in flight.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// GetLastUpdated returns the last time a snapshot was applied.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("n-%d", s.seq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.notifications[:0]
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all unexpired notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
