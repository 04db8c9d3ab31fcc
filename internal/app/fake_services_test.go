package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services"
)

type fakeServices struct {
	refreshErr error
	journal    *models.JournalStats
	journalErr error
	history    map[models.ReadingType][]models.Reading
	events     chan services.ServiceEvent
	lastPoll   services.PollCompletedEvent
	states     []models.SensorState
	refreshes  int
	mu         sync.Mutex
}

func newFakeServices() *fakeServices {
	value := 1.23
	return &fakeServices{
		states: []models.SensorState{
			{Profile: models.CostProfile, NativeValue: &value, Available: true},
			{Profile: models.EnergyProfile},
		},
		history: map[models.ReadingType][]models.Reading{
			models.ReadingCost: {{Timestamp: 1710000000, Value: 123}},
		},
		lastPoll: services.PollCompletedEvent{At: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), Failed: 1},
		journal:  &models.JournalStats{Path: "/tmp/readings.db", Readings: 3},
		events:   make(chan services.ServiceEvent, 4),
	}
}

func (f *fakeServices) States() []models.SensorState { return f.states }

func (f *fakeServices) History(t models.ReadingType, _ int) []models.Reading {
	return f.history[t]
}

func (f *fakeServices) LastPoll() services.PollCompletedEvent { return f.lastPoll }

func (f *fakeServices) JournalStats(context.Context) (*models.JournalStats, error) {
	return f.journal, f.journalErr
}

func (f *fakeServices) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeServices) Subscribe() (chan services.ServiceEvent, tea.Cmd) {
	return f.events, nil
}
