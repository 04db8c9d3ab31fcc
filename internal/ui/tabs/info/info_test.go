package info

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/app"
	"github.com/j-veylop/manx-utilities-tui/internal/config"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/version"
)

func testConfig() *config.Config {
	return &config.Config{
		Username:         "alice@example.com",
		APIEndpoint:      "https://api.example.com",
		CostResourceID:   "cost-1",
		EnergyResourceID: "energy-1",
		DatabasePath:     config.JournalDisabled,
		PollInterval:     30 * time.Minute,
		RequestTimeout:   30 * time.Second,
		HistoryCapacity:  2880,
		DailyCostBudget:  4.5,
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 60)

	view := m.View()
	if !strings.Contains(view, "Configuration not loaded") {
		t.Error("view should say configuration is missing")
	}
	if !strings.Contains(view, "Journal unavailable") {
		t.Error("view should say the journal is unavailable")
	}
	if !strings.Contains(view, version.Name) {
		t.Error("view should show the about card")
	}
}

func TestModel_ViewWithConfig(t *testing.T) {
	state := app.NewState()
	state.SetConfig(testConfig())
	m := New(state)
	m.SetSize(100, 60)

	view := m.View()
	for _, want := range []string{
		"https://api.example.com",
		"cost-1",
		"30m0s",
		"2880 readings",
		"£4.50",
		"a****@example.com",
		"Journal disabled (DATABASE_PATH=off)",
		"never",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "alice@") {
		t.Error("username should be masked")
	}
}

func TestModel_RevealUsername(t *testing.T) {
	state := app.NewState()
	state.SetConfig(testConfig())
	m := New(state)
	m.SetSize(100, 60)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	if view := m.View(); !strings.Contains(view, "alice@example.com") {
		t.Error("u should reveal the username")
	}
}

func TestModel_ViewJournal(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(app.Snapshot{
		Journal:  &models.JournalStats{Path: "/data/readings.db", Readings: 12, Failures: 2},
		LastPoll: time.Now(),
		Failed:   1,
	})
	m := New(state)
	m.SetSize(100, 60)

	view := m.View()
	for _, want := range []string{"/data/readings.db", "12", "1 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestMaskUsername(t *testing.T) {
	tests := map[string]string{
		"alice@example.com": "a****@example.com",
		"bo":                "b***",
		"x@y":               "x***@y",
	}
	for in, want := range tests {
		if got := maskUsername(in); got != want {
			t.Errorf("maskUsername(%q) = %q, want %q", in, got, want)
		}
	}
}
