package app

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services"
)

func TestTickCmd(t *testing.T) {
	if tickCmd(time.Millisecond) == nil {
		t.Error("tickCmd returned nil")
	}
	msg := tickCmd(time.Millisecond)()
	if _, ok := msg.(TickMsg); !ok {
		t.Errorf("Expected TickMsg, got %T", msg)
	}
}

func TestNotifyCmds(t *testing.T) {
	tests := []struct {
		name     string
		cmd      func(string) AddNotificationMsg
		want     NotificationType
		duration time.Duration
	}{
		{"Success", func(s string) AddNotificationMsg { return notifySuccessCmd(s)().(AddNotificationMsg) }, NotificationSuccess, DefaultNotificationDuration},
		{"Error", func(s string) AddNotificationMsg { return notifyErrorCmd(s)().(AddNotificationMsg) }, NotificationError, LongNotificationDuration},
		{"Warning", func(s string) AddNotificationMsg { return notifyWarningCmd(s)().(AddNotificationMsg) }, NotificationWarning, DefaultNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.cmd("msg")
			if msg.Type != tt.want {
				t.Errorf("Type = %v, want %v", msg.Type, tt.want)
			}
			if msg.Message != "msg" {
				t.Errorf("Message = %q, want msg", msg.Message)
			}
			if msg.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", msg.Duration, tt.duration)
			}
		})
	}
}

func TestClearNotificationCmd(t *testing.T) {
	msg := clearNotificationCmd("n-1", time.Millisecond)()
	remove, ok := msg.(RemoveNotificationMsg)
	if !ok {
		t.Fatalf("Expected RemoveNotificationMsg, got %T", msg)
	}
	if remove.ID != "n-1" {
		t.Errorf("ID = %q, want n-1", remove.ID)
	}
}

func TestLoadSnapshot(t *testing.T) {
	svc := newFakeServices()
	snap := loadSnapshot(svc)

	if len(snap.Sensors) != 2 {
		t.Fatalf("Sensors = %d, want 2", len(snap.Sensors))
	}
	if len(snap.History[models.ReadingCost]) != 1 {
		t.Errorf("cost history = %d, want 1", len(snap.History[models.ReadingCost]))
	}
	if _, ok := snap.History[models.ReadingEnergy]; !ok {
		t.Error("energy history missing from snapshot")
	}
	if !snap.LastPoll.Equal(svc.lastPoll.At) || snap.Failed != 1 {
		t.Errorf("LastPoll = %v/%d, want %v/1", snap.LastPoll, snap.Failed, svc.lastPoll.At)
	}
	if snap.Journal == nil || snap.Journal.Readings != 3 {
		t.Errorf("Journal = %+v", snap.Journal)
	}
}

func TestLoadSnapshot_JournalErrorIsAbsent(t *testing.T) {
	svc := newFakeServices()
	svc.journalErr = errors.New("disk gone")

	if snap := loadSnapshot(svc); snap.Journal != nil {
		t.Errorf("Journal = %+v, want nil", snap.Journal)
	}
}

func TestRefreshCmd(t *testing.T) {
	svc := newFakeServices()
	svc.refreshErr = errors.New("boom")

	msg := refreshCmd(svc)()
	result, ok := msg.(RefreshResultMsg)
	if !ok {
		t.Fatalf("Expected RefreshResultMsg, got %T", msg)
	}
	if result.Error == nil || result.Error.Error() != "boom" {
		t.Errorf("Error = %v, want boom", result.Error)
	}
	if svc.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", svc.refreshes)
	}
}

func TestWaitForServiceEventCmd(t *testing.T) {
	ch := make(chan services.ServiceEvent, 1)
	ch <- services.PollCompletedEvent{Failed: 2}

	msg := waitForServiceEventCmd(ch)()
	event, ok := msg.(ServiceEventMsg)
	if !ok {
		t.Fatalf("Expected ServiceEventMsg, got %T", msg)
	}
	if poll, ok := event.Event.(services.PollCompletedEvent); !ok || poll.Failed != 2 {
		t.Errorf("Event = %#v", event.Event)
	}

	close(ch)
	if msg := waitForServiceEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel gave %T, want nil", msg)
	}
}

func TestSubscribeToServicesCmd(t *testing.T) {
	svc := newFakeServices()
	msg := subscribeToServicesCmd(svc)()
	sub, ok := msg.(SubscriptionEventMsg)
	if !ok {
		t.Fatalf("Expected SubscriptionEventMsg, got %T", msg)
	}
	if sub.Channel != svc.events {
		t.Error("subscription channel mismatch")
	}
}
