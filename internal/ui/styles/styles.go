// Package styles holds the shared lipgloss palette and styles.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Base colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Reading type colors
	Cost   = lipgloss.Color("214") // Amber
	Energy = lipgloss.Color("45")  // Cyan

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)
)

// DocStyle pads tab content.
var DocStyle = lipgloss.NewStyle().Padding(1, 2)

var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

var SubTitleStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Italic(true)

var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 2)

var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

var BigValueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(1, 2)

var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// AccentFor returns the color of a reading type by its wire name.
func AccentFor(readingType string) lipgloss.Color {
	if readingType == "cost" {
		return Cost
	}
	return Energy
}

// GetBudgetStyle colors spend relative to budget: green below 75%,
// yellow up to 100%, red beyond.
func GetBudgetStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 100:
		return ErrorTextStyle.Bold(true)
	case percent >= 75:
		return WarningTextStyle
	default:
		return SuccessTextStyle
	}
}

// AvailabilityStyle renders sensor availability.
func AvailabilityStyle(available bool) lipgloss.Style {
	if available {
		return SuccessTextStyle
	}
	return ErrorTextStyle
}

// CenterBoth centers content within a width x height box.
func CenterBoth(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
