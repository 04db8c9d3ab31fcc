package info

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/manx-utilities-tui/internal/config"
	"github.com/j-veylop/manx-utilities-tui/internal/ui/styles"
	"github.com/j-veylop/manx-utilities-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderJournalCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, journal and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	cfg := m.state.GetConfig()
	if cfg == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows,
		renderRow("API Endpoint", cfg.APIEndpoint),
		renderRow("Username", m.username(cfg.Username)),
		renderRow("Cost Resource", cfg.CostResourceID),
		renderRow("Energy Resource", cfg.EnergyResourceID),
		renderRow("Poll Interval", cfg.PollInterval.String()),
		renderRow("Request Timeout", cfg.RequestTimeout.String()),
		renderRow("History Size", fmt.Sprintf("%d readings", cfg.HistoryCapacity)),
		renderRow("Daily Budget", budget(cfg.DailyCostBudget)),
		renderRow("Notifications", onOff(cfg.NotificationsEnabled)),
		renderRow("HTTP API", orNone(cfg.HTTPAddr)),
		renderRow("Log File", orNone(cfg.LogFile)),
		renderRow("Env File", orNone(cfg.EnvFile)),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderJournalCard() string {
	rows := []string{styles.CardTitleStyle.Render("Journal"), ""}

	journal := m.state.GetJournal()
	cfg := m.state.GetConfig()
	switch {
	case journal != nil:
		rows = append(rows,
			renderRow("Database", journal.Path),
			renderRow("Readings", fmt.Sprintf("%d", journal.Readings)),
			renderRow("Failures", fmt.Sprintf("%d", journal.Failures)),
			renderRow("Oldest Bucket", formatUnix(journal.OldestEntry)),
			renderRow("Newest Bucket", formatUnix(journal.NewestEntry)),
		)
	case cfg != nil && !cfg.JournalEnabled():
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("Journal disabled (%s=%s)", config.EnvDatabasePath, config.JournalDisabled)))
	default:
		rows = append(rows, styles.HelpStyle.Render("Journal unavailable"))
	}

	at, failed := m.state.LastPoll()
	rows = append(rows, "")
	if at.IsZero() {
		rows = append(rows, renderRow("Last Poll", "never"))
	} else {
		status := styles.SuccessTextStyle.Render("ok")
		if failed > 0 {
			status = styles.WarningTextStyle.Render(fmt.Sprintf("%d failed", failed))
		}
		rows = append(rows, renderRow("Last Poll", at.Local().Format("2006-01-02 15:04:05")+" "+status))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.Name),
		"",
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) username(name string) string {
	if m.reveal || name == "" {
		return orNone(name)
	}
	return maskUsername(name)
}

// maskUsername keeps the first character and any email domain.
func maskUsername(name string) string {
	local, domain, hasDomain := strings.Cut(name, "@")
	masked := "***"
	if local != "" {
		masked = local[:1] + strings.Repeat("*", max(len(local)-1, 3))
	}
	if hasDomain {
		return masked + "@" + domain
	}
	return masked
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "none"
	}
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04")
}

func budget(v float64) string {
	if v <= 0 {
		return "none"
	}
	return fmt.Sprintf("£%.2f", v)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
