package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"icu-workouts/internal/analysis"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		renderSection("Navigation", []keyHelp{
			{"1", "Dashboard"},
			{"2", "Saved workouts"},
			{"3", "Refresh from intervals.icu"},
			{"?", "Help (this screen)"},
			{"q", "Quit"},
			{"esc", "Back / close help"},
		}),
		renderSection("Dashboard", []keyHelp{
			{"r", "Reload data"},
		}),
		renderSection("Saved Workouts", []keyHelp{
			{"j / down", "Move cursor down"},
			{"k / up", "Move cursor up"},
			{"pgdn", "Next page"},
			{"pgup", "Previous page"},
			{"enter", "Open workout"},
			{"d d", "Delete workout"},
			{"r", "Reload list"},
		}),
		renderSection("Workout Detail", []keyHelp{
			{"e", "Export as FIT file to the current directory"},
			{"r", "Reload"},
		}),
		renderSection("Refresh", []keyHelp{
			{"s / enter", "Start refresh"},
			{"d", "Back to dashboard when finished"},
		}),
		renderZonesHelp(),
		renderMetricsHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionTitleStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func renderZonesHelp() string {
	names := [analysis.NumZones]string{
		"Recovery", "Endurance", "Tempo", "Threshold", "VO2max", "Anaerobic", "Neuromuscular",
	}

	var zones []string
	for i, name := range names {
		zones = append(zones, RenderZone(analysis.ZoneType(i))+" "+mutedStyle.Render(name))
	}

	return "\n" + sectionTitleStyle.Render("Zones") + "\n  " + strings.Join(zones, "  ")
}

func renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionTitleStyle.Render("Metrics Explained"))
	lines = append(lines, "")

	metrics := []struct {
		name string
		desc string
	}{
		{"IF (Intensity Factor)", "Zone midpoint relative to FTP (cycling) or LTHR (other sports)."},
		{"TSS", "Hours x IF² x 100, summed over the intervals."},
		{"CTL (Fitness)", "Chronic training load - 42 day average of daily load."},
		{"ATL (Fatigue)", "Acute training load - 7 day average of daily load."},
		{"TSB (Form)", "Training stress balance = CTL - ATL. Positive = fresh."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
