package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
	meterhistory "github.com/j-veylop/manx-utilities-tui/internal/services/history"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/components"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/styles"
)

// dailyBars is how many days the daily totals chart shows.
const dailyBars = 7

// View renders the history tab.
func (m *Model) View() string {
	readings := m.readings()
	if len(readings) == 0 {
		return m.renderEmpty()
	}

	profile := models.ProfileFor(m.readingType)

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(profile, readings),
		m.renderReadingsChart(profile, readings),
		m.renderDailyTotals(profile),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// readings returns the retained readings inside the selected range.
func (m *Model) readings() []models.Reading {
	all := m.state.GetHistory(m.readingType)
	if n := m.timeRange.buckets(); n > 0 && len(all) > n {
		return all[len(all)-n:]
	}
	return all
}

func (m *Model) renderEmpty() string {
	profile := models.ProfileFor(m.readingType)
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History: "+profile.Name),
		styles.HelpStyle.Render("No readings retained yet."),
		styles.HelpStyle.Render("Readings appear here as the meter publishes them."),
		"",
		styles.HelpStyle.Render("Press 'c' to switch between cost and energy."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(profile models.SensorProfile, readings []models.Reading) string {
	title := styles.TitleStyle.Render("History: " + profile.Name)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	first, last := readings[0].Time(), readings[len(readings)-1].Time()
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d readings: %s → %s",
		len(readings), first.Format("Jan 2 15:04"), last.Format("Jan 2 15:04")))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderReadingsChart(profile models.SensorProfile, readings []models.Reading) string {
	cardWidth := max(m.width-6, 40)

	values := make([]float64, len(readings))
	peak := readings[0]
	for i, r := range readings {
		values[i] = profile.Convert(r.Value)
		if r.Value > peak.Value {
			peak = r
		}
	}

	rows := []string{styles.CardTitleStyle.Render("Half-hourly " + strings.ToLower(profile.Name)), ""}

	chart := components.RenderLineChart(values, max(cardWidth-14, 30), 8,
		fmt.Sprintf("%s per 30 minutes", profile.Unit), chartColor(profile.Type))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "", fmt.Sprintf("  Peak: %s at %s",
		lipgloss.NewStyle().Bold(true).Foreground(styles.AccentFor(profile.Type.String())).
			Render(fmt.Sprintf("%.*f %s", profile.Precision, profile.Convert(peak.Value), profile.Unit)),
		peak.Time().Format("Mon Jan 2 15:04"),
	))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDailyTotals(profile models.SensorProfile) string {
	cardWidth := max(m.width-6, 40)

	rows := []string{styles.CardTitleStyle.Render("Daily totals"), ""}

	labels, totals := dailyTotals(m.state.GetHistory(m.readingType), profile, time.Local)
	if len(labels) > dailyBars {
		labels, totals = labels[len(labels)-dailyBars:], totals[len(totals)-dailyBars:]
	}

	format := fmt.Sprintf("%%.%df %s", profile.Precision, profile.Unit)
	chart := components.RenderBarChart(totals, labels, max(cardWidth-8, 30), format)
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// dailyTotals sums readings per calendar day in loc, oldest day first.
func dailyTotals(readings []models.Reading, profile models.SensorProfile, loc *time.Location) ([]string, []float64) {
	var labels []string
	var sums []float64
	for _, r := range readings {
		label := meterhistory.PeriodsFor(r.Time(), loc).DayLabel()
		if len(labels) == 0 || labels[len(labels)-1] != label {
			labels = append(labels, label)
			sums = append(sums, 0)
		}
		sums[len(sums)-1] += r.Value
	}
	for i := range sums {
		sums[i] = profile.Convert(sums[i])
	}
	return labels, sums
}

func chartColor(t models.ReadingType) asciigraph.AnsiColor {
	if t == models.ReadingCost {
		return asciigraph.Goldenrod
	}
	return asciigraph.DarkCyan
}
