// Package dashboard provides the sensor overview tab.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/manx-utilities-tui/internal/app"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/components"
)

// sparklinePoints is how many recent readings the card sparkline covers.
const sparklinePoints = 48

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Compact key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Compact: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stack cards"),
		),
	}
}

// Model represents the dashboard tab state.
type Model struct {
	state     *app.State
	keys      keyMap
	viewport  viewport.Model
	budgetBar components.BudgetBar
	width     int
	height    int
	stacked   bool
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		budgetBar: components.NewBudgetBar(30),
	}
}

// Init initializes the dashboard tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dashboard tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.Compact) {
		m.stacked = !m.stacked
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(keyMsg)
	return m, cmd
}

// SetSize sets the available size for the dashboard tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.budgetBar.SetWidth(m.cardWidth() - 30)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Compact, m.keys.Up, m.keys.Down}
}

// sideBySide reports whether both cards fit on one row.
func (m *Model) sideBySide() bool {
	return !m.stacked && m.width >= 2*minCardWidth+8
}

func (m *Model) cardWidth() int {
	if m.sideBySide() {
		return (m.width - 8) / 2
	}
	return max(min(m.width-6, 2*minCardWidth), minCardWidth)
}
