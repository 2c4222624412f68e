package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"icu-workouts/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#2563EB") // Blue
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// zoneColors follow the usual Z1 grey to Z7 purple scale
var zoneColors = [analysis.NumZones]lipgloss.Color{
	"#9CA3AF",
	"#3B82F6",
	"#10B981",
	"#EAB308",
	"#F97316",
	"#EF4444",
	"#A855F7",
}

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondaryColor)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(18)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	trendUpStyle   = lipgloss.NewStyle().Foreground(secondaryColor)
	trendDownStyle = lipgloss.NewStyle().Foreground(errorColor)
	trendFlatStyle = lipgloss.NewStyle().Foreground(mutedColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(primaryColor).
				Foreground(textColor).
				Padding(0, 1)

	builderTextStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(primaryColor).
				PaddingLeft(1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	statusStyle  = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	successStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)

	progressFullStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// RenderMetric renders a label, a value and an optional trend marker
func RenderMetric(label, value, trend string) string {
	trendStyle := trendFlatStyle
	if trend != "" {
		switch []rune(trend)[0] {
		case '+', '↑':
			trendStyle = trendUpStyle
		case '-', '↓':
			trendStyle = trendDownStyle
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
		trendStyle.Render(" "+trend),
	)
}

// RenderZone renders a zone label in its zone color
func RenderZone(z analysis.ZoneType) string {
	idx := z.Index()
	if idx < 0 || idx >= len(zoneColors) {
		return z.String()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(zoneColors[idx]).Render(z.String())
}

// RenderProgressBar renders a bar filled to percent (0..1)
func RenderProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))

	return progressFullStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
