package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	"github.com/j-veylop/manx-utilities-tui/internal/services/history"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/components"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/styles"
)

const minCardWidth = 44

// View renders the dashboard tab.
func (m *Model) View() string {
	sensors := m.state.GetSensors()
	if len(sensors) == 0 {
		return styles.CenterBoth(styles.HelpStyle.Render("Waiting for the first poll..."), m.width, m.height)
	}

	cards := make([]string, 0, len(sensors))
	for _, s := range sensors {
		cards = append(cards, m.renderCard(s))
	}

	var body string
	if m.sideBySide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), body)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Manx Utilities")
	subtitle := styles.SubTitleStyle.Render("Half-hourly smart meter readings")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderCard(s models.SensorState) string {
	p := s.Profile
	accent := styles.AccentFor(p.Type.String())

	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(p.Name) +
		"  " + renderAvailability(s.Available)

	rows := []string{
		header,
		"",
		renderValue(s),
		styles.LabelStyle.Render("Last reading: ") + lastReading(s.LastReadingTime),
		"",
		renderTotal("Today", s.Totals.TodayLabel, s.Totals.TotalToday, p),
		renderTotal("Week", s.Totals.WeekLabel, s.Totals.TotalWeek, p),
		renderTotal("Month", s.Totals.MonthLabel, s.Totals.TotalMonth, p),
	}

	if p.Type == models.ReadingCost {
		if bar := m.renderBudget(s.Totals.TotalToday); bar != "" {
			rows = append(rows, "", bar)
		}
	}

	values := history.Values(m.state.GetHistory(p.Type), sparklinePoints)
	if spark := components.RenderSparkline(values, m.cardWidth()-6); spark != "" {
		rows = append(rows, "", lipgloss.NewStyle().Foreground(accent).Render(spark))
	}

	if s.LastError != "" {
		rows = append(rows, "", styles.ErrorTextStyle.Render(truncate(s.LastError, m.cardWidth()-6)))
	}

	return styles.CardStyle.
		Width(m.cardWidth()).
		BorderForeground(accent).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderBudget(spent float64) string {
	cfg := m.state.GetConfig()
	if cfg == nil || cfg.DailyCostBudget <= 0 {
		return ""
	}
	m.budgetBar.Set(spent, cfg.DailyCostBudget)
	return m.budgetBar.View()
}

func renderAvailability(available bool) string {
	if available {
		return styles.AvailabilityStyle(true).Render("● available")
	}
	return styles.AvailabilityStyle(false).Render("○ unavailable")
}

func renderValue(s models.SensorState) string {
	if !s.HasValue() {
		return styles.HelpStyle.Render("No reading yet")
	}
	return styles.BigValueStyle.Render(formatValue(*s.NativeValue, s.Profile)) +
		" " + styles.LabelStyle.Render(s.Profile.Unit)
}

func renderTotal(name, label string, total float64, p models.SensorProfile) string {
	caption := fmt.Sprintf("%-6s %s", name, label)
	return lipgloss.NewStyle().Width(34).Foreground(styles.TextSecondary).Render(caption) +
		formatValue(total, p)
}

func formatValue(v float64, p models.SensorProfile) string {
	if p.Type == models.ReadingCost {
		return fmt.Sprintf("£%.*f", p.Precision, v)
	}
	return fmt.Sprintf("%.*f", p.Precision, v)
}

func lastReading(ts string) string {
	if ts == "" {
		return "never"
	}
	return ts
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
