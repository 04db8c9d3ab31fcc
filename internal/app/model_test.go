package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil, nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabDashboard {
		t.Error("Default tab should be Dashboard")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tab slots, got %d", len(model.tabs))
	}

	state := NewState()
	if NewModel(nil, state).GetState() != state {
		t.Error("NewModel should keep the given state")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(newFakeServices(), nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}

	notifs := model.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].ID != LoadingNotificationID {
		t.Errorf("Init should show a loading notification, got %+v", notifs)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil, nil)

	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.IsReady() {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_TabSwitching(t *testing.T) {
	model := NewModel(nil, nil)

	model.Update(TabSwitchMsg{Tab: TabHistory})
	if model.GetActiveTab() != TabHistory {
		t.Errorf("ActiveTab = %v, want History", model.GetActiveTab())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if model.GetActiveTab() != TabInfo {
		t.Errorf("ActiveTab = %v, want Info", model.GetActiveTab())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.GetActiveTab() != TabDashboard {
		t.Errorf("tab should wrap to Dashboard, got %v", model.GetActiveTab())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.GetActiveTab() != TabInfo {
		t.Errorf("shift+tab should wrap to Info, got %v", model.GetActiveTab())
	}

	model.Update(TabSwitchMsg{Tab: TabID(42)})
	if model.GetActiveTab() != TabInfo {
		t.Error("invalid tab should be ignored")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil, nil)
	model.state.AddNotification(NotificationInfo, "stale", time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return the next tick")
	}
	if len(model.state.notifications) != 0 {
		t.Error("expired notifications should be cleared on tick")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil, nil)

	if view := model.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := model.View()
	if !strings.Contains(view, "Dashboard") {
		t.Error("View should show Dashboard tab")
	}
	if !strings.Contains(view, "Nothing to show.") {
		t.Error("View should show placeholder text without tabs")
	}
	if !strings.Contains(view, "polling") {
		t.Error("status bar should show polling before the first snapshot")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil, nil)
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Fatal("showHelp should be true")
	}
	if view := model.View(); !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("esc should close help")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !model.showHelp {
		t.Error("? should toggle help")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil, nil)

	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})
	if notifs := model.state.GetNotifications(); len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}

	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if view := model.View(); !strings.Contains(view, "Test Note") {
		t.Error("View should show notification")
	}

	id := model.state.GetNotifications()[0].ID
	model.Update(RemoveNotificationMsg{ID: id})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestModel_SnapshotLoaded(t *testing.T) {
	svc := newFakeServices()
	model := NewModel(svc, nil)
	model.Init()

	model.Update(SnapshotLoadedMsg{Snapshot: Snapshot{}})
	if !model.state.IsLoading() {
		t.Error("an unpolled snapshot should keep the loading state")
	}

	model.Update(SnapshotLoadedMsg{Snapshot: loadSnapshot(svc)})
	if model.state.IsLoading() {
		t.Error("a polled snapshot should end the loading state")
	}
	if len(model.state.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
	if _, ok := model.state.GetSensor(models.ReadingCost); !ok {
		t.Error("snapshot should be applied")
	}
}

func TestModel_RefreshKey(t *testing.T) {
	svc := newFakeServices()
	model := NewModel(svc, nil)

	// Blocked while the first poll is pending.
	if cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}); cmd != nil {
		t.Error("refresh should wait for the first poll")
	}

	model.state.SetLoading(false)
	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("refresh key should return a command")
	}
	if !model.state.IsLoading() {
		t.Error("refresh should mark loading")
	}
	if _, ok := cmd().(RefreshResultMsg); !ok {
		t.Error("refresh command should produce RefreshResultMsg")
	}
	if svc.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", svc.refreshes)
	}
}

func TestModel_RefreshResult(t *testing.T) {
	model := NewModel(newFakeServices(), nil)

	cmds := model.handleAppMsg(RefreshResultMsg{})
	if model.state.IsLoading() {
		t.Error("loading should end after a refresh")
	}
	if len(cmds) != 2 {
		t.Fatalf("cmds = %d, want notification and reload", len(cmds))
	}
	if msg := cmds[0]().(AddNotificationMsg); msg.Type != NotificationSuccess {
		t.Errorf("Type = %v, want success", msg.Type)
	}
	if _, ok := cmds[1]().(SnapshotLoadedMsg); !ok {
		t.Error("refresh should reload the snapshot")
	}

	err := errors.Join(errors.New("cost: boom"), errors.New("energy: bang"))
	cmds = model.handleAppMsg(RefreshResultMsg{Error: err})
	msg := cmds[0]().(AddNotificationMsg)
	if msg.Type != NotificationWarning {
		t.Errorf("Type = %v, want warning", msg.Type)
	}
	if msg.Message != "Poll failed: cost: boom; energy: bang" {
		t.Errorf("Message = %q", msg.Message)
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(newFakeServices(), nil)

	cmd := model.handleServiceEvent(services.PollCompletedEvent{At: time.Now()})
	if cmd == nil {
		t.Fatal("poll completion should reload the snapshot")
	}
	if _, ok := cmd().(SnapshotLoadedMsg); !ok {
		t.Error("expected SnapshotLoadedMsg")
	}

	cmd = model.handleServiceEvent(services.ErrorEvent{Service: "cost", Error: errors.New("down")})
	if cmd == nil {
		t.Fatal("error event should notify")
	}
	msg := cmd().(AddNotificationMsg)
	if msg.Type != NotificationError || msg.Message != "[cost] down" {
		t.Errorf("notification = %+v", msg)
	}

	if cmd := model.handleServiceEvent(services.ErrorEvent{Service: "cost", Error: context.Canceled}); cmd != nil {
		t.Error("cancellation should not notify")
	}

	state := models.SensorState{Profile: models.EnergyProfile}
	cmd = model.handleServiceEvent(services.SensorUpdatedEvent{Reading: &models.Reading{Timestamp: 1, Value: 1}, State: state})
	if cmd == nil {
		t.Fatal("new reading should notify")
	}
	if msg := cmd().(AddNotificationMsg); !strings.Contains(msg.Message, "Electricity Usage") {
		t.Errorf("Message = %q", msg.Message)
	}

	if cmd := model.handleServiceEvent(services.SensorUpdatedEvent{State: state}); cmd != nil {
		t.Error("update without a new reading should be silent")
	}
}

func TestModel_SubscriptionLoop(t *testing.T) {
	svc := newFakeServices()
	model := NewModel(svc, nil)

	cmds := model.handleAppMsg(SubscriptionEventMsg{Channel: svc.events})
	if model.eventChannel != svc.events || len(cmds) != 1 {
		t.Fatal("subscription should start waiting for events")
	}

	svc.events <- services.PollCompletedEvent{}
	msg := cmds[0]()
	if _, ok := msg.(ServiceEventMsg); !ok {
		t.Fatalf("Expected ServiceEventMsg, got %T", msg)
	}

	// Reload plus the next wait.
	if cmds := model.handleAppMsg(msg); len(cmds) != 2 {
		t.Errorf("cmds = %d, want 2", len(cmds))
	}
}

func TestModel_Quit(t *testing.T) {
	model := NewModel(nil, nil)
	cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil, nil)
	if _, cmd := model.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestRefreshFailureMessage(t *testing.T) {
	if got := refreshFailureMessage(errors.New("\n")); got != "Poll failed" {
		t.Errorf("got %q", got)
	}
	if got := refreshFailureMessage(errors.New("x")); got != "Poll failed: x" {
		t.Errorf("got %q", got)
	}
}

func TestTabID_String(t *testing.T) {
	tests := map[TabID]string{
		TabDashboard: "Dashboard",
		TabHistory:   "History",
		TabInfo:      "Info",
		TabID(999):   "Unknown",
	}
	for id, want := range tests {
		if got := id.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
}
