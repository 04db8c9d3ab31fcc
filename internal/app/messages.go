package app

import (
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services"
)

// Snapshot is a consistent copy of the service data the UI renders.
type Snapshot struct {
	LastPoll time.Time
	Journal  *models.JournalStats
	History  map[models.ReadingType][]models.Reading
	Sensors  []models.SensorState
	Failed   int
}

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// SnapshotLoadedMsg carries freshly loaded service data.
type SnapshotLoadedMsg struct {
	Snapshot Snapshot
}

// RefreshResultMsg reports the outcome of a manual refresh.
type RefreshResultMsg struct {
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
