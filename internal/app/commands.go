package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// refreshTimeout bounds a manual refresh of both sensors.
	refreshTimeout = 2 * time.Minute
)

// Services is the part of the service manager the UI uses.
type Services interface {
	States() []models.SensorState
	History(t models.ReadingType, limit int) []models.Reading
	LastPoll() services.PollCompletedEvent
	JournalStats(ctx context.Context) (*models.JournalStats, error)
	Refresh(ctx context.Context) error
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadSnapshot copies everything the tabs render out of the services.
func loadSnapshot(svc Services) Snapshot {
	snap := Snapshot{
		Sensors: svc.States(),
		History: make(map[models.ReadingType][]models.Reading, len(models.ReadingTypes)),
	}
	for _, t := range models.ReadingTypes {
		snap.History[t] = svc.History(t, 0)
	}
	poll := svc.LastPoll()
	snap.LastPoll = poll.At
	snap.Failed = poll.Failed

	// Journal stats are informational; a failing journal shows as absent.
	if stats, err := svc.JournalStats(context.Background()); err == nil {
		snap.Journal = stats
	}
	return snap
}

// loadSnapshotCmd returns a command that loads a snapshot.
func loadSnapshotCmd(svc Services) tea.Cmd {
	return func() tea.Msg {
		return SnapshotLoadedMsg{Snapshot: loadSnapshot(svc)}
	}
}

// refreshCmd polls the meter now and reports the outcome.
func refreshCmd(svc Services) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return RefreshResultMsg{Error: svc.Refresh(ctx)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(svc Services) tea.Cmd {
	ch, _ := svc.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}
