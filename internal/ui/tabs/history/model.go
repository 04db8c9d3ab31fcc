// Package history provides the history tab for charting retained readings.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/app"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// timeRange selects how many buckets the chart covers.
type timeRange int

const (
	range24Hours timeRange = iota
	range7Days
	rangeAll
)

// String returns the display name of the range.
func (r timeRange) String() string {
	switch r {
	case range24Hours:
		return "24 hours"
	case range7Days:
		return "7 days"
	default:
		return "all retained"
	}
}

// buckets returns the number of half-hour readings in the range, 0 for all.
func (r timeRange) buckets() int {
	switch r {
	case range24Hours:
		return 48
	case range7Days:
		return 7 * 48
	default:
		return 0
	}
}

func (r timeRange) next() timeRange {
	return (r + 1) % (rangeAll + 1)
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleType  key.Binding
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleType: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cost/energy"),
		),
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state       *app.State
	keys        keyMap
	viewport    viewport.Model
	width       int
	height      int
	readingType models.ReadingType
	timeRange   timeRange
}

// New creates a new history model.
func New(state *app.State) *Model {
	return &Model{
		state:       state,
		keys:        defaultKeyMap(),
		viewport:    viewport.New(0, 0),
		readingType: models.ReadingCost,
		timeRange:   range24Hours,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.ToggleType):
		if m.readingType == models.ReadingCost {
			m.readingType = models.ReadingEnergy
		} else {
			m.readingType = models.ReadingCost
		}
		m.viewport.GotoTop()

	case key.Matches(keyMsg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.next()
		m.viewport.GotoTop()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(keyMsg)
		return m, cmd
	}

	return m, nil
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleType, m.keys.ToggleRange}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleType, m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
