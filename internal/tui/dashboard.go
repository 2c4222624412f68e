package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/service"
)

const loadTimeout = 30 * time.Second

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	svc     Services
	athlete *intervals.Athlete
	fitness *service.FitnessSummary
	loading bool
	err     error

	// profileErr is shown inline; the fitness card still renders without a profile
	profileErr error

	width  int
	height int
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(svc Services, width, height int) DashboardModel {
	return DashboardModel{
		svc:     svc,
		loading: true,
		width:   width,
		height:  height,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	athlete    *intervals.Athlete
	profileErr error
	fitness    *service.FitnessSummary
	err        error
}

func (m DashboardModel) loadData() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	var msg dashboardDataMsg
	msg.athlete, msg.profileErr = m.svc.Profiles.Athlete(ctx)
	msg.fitness, msg.err = m.svc.Fitness.Trend(ctx, service.DefaultDaysBehind, service.DefaultDaysAhead)
	return msg
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.athlete = msg.athlete
		m.profileErr = msg.profileErr
		m.fitness = msg.fitness
		m.err = msg.err
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "r" && !m.loading {
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderFitnessCard(), "  ", m.renderThresholdsCard())
	sections = append(sections, topRow)

	if m.fitness != nil && len(m.fitness.Trend) > 2 {
		sections = append(sections, m.renderChart())
	}

	help := "Press 'r' to reload, '3' to refresh from intervals.icu, '2' for saved workouts"
	if m.fitness != nil && !m.fitness.UpdatedAt.IsZero() {
		help = "Updated " + humanize.Time(m.fitness.UpdatedAt) + ". " + help
	}
	sections = append(sections, statusStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderFitnessCard() string {
	title := cardTitleStyle.Render("Training Load")
	if m.fitness == nil {
		return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, "No load data"))
	}

	cur := m.fitness.Current
	weekAgo := metricsOn(m.fitness.Trend, cur.Date.AddDate(0, 0, -7))

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", cur.CTL), delta(cur.CTL, weekAgo, func(f analysis.FitnessMetrics) float64 { return f.CTL })),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", cur.ATL), delta(cur.ATL, weekAgo, func(f analysis.FitnessMetrics) float64 { return f.ATL })),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.0f", cur.TSB), delta(cur.TSB, weekAgo, func(f analysis.FitnessMetrics) float64 { return f.TSB })),
		RenderMetric("Activities", fmt.Sprintf("%d", m.fitness.Activities), ""),
		RenderMetric("Completed load", fmt.Sprintf("%.0f", m.fitness.CompletedLoad), ""),
		RenderMetric("Planned load", fmt.Sprintf("%.0f", m.fitness.PlannedLoad), ""),
		"",
		mutedStyle.Render(m.fitness.Form),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderThresholdsCard() string {
	title := cardTitleStyle.Render("Thresholds")

	if m.athlete == nil {
		msg := "Athlete profile unavailable"
		if m.profileErr != nil {
			msg = errorStyle.Render(msg)
		}
		return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, msg))
	}

	profile := m.athlete.Profile()
	ride, rideErr := analysis.SelectZoneTable(profile, analysis.SportRide)
	run, runErr := analysis.SelectZoneTable(profile, analysis.SportRun)

	var lines []string
	if m.athlete.Name != "" {
		lines = append(lines, mutedStyle.Render(m.athlete.Name), "")
	}
	if rideErr == nil {
		lines = append(lines,
			RenderMetric("Cycling FTP", formatFTP(ride.FTP, m.athlete.Weight), ""),
			RenderMetric("Cycling LTHR", formatOptInt(ride.LTHR, "bpm"), ""),
		)
	} else {
		lines = append(lines, RenderMetric("Cycling", "no zones", ""))
	}
	if runErr == nil {
		lines = append(lines,
			RenderMetric("Running LTHR", formatOptInt(run.LTHR, "bpm"), ""),
			RenderMetric("Running max HR", formatOptInt(run.MaxHR, "bpm"), ""),
		)
	} else {
		lines = append(lines, RenderMetric("Running", "no zones", ""))
	}
	lines = append(lines,
		RenderMetric("Resting HR", formatOptFloat(m.athlete.RestingHR, "%.0f bpm"), ""),
		RenderMetric("Weight", formatOptFloat(m.athlete.Weight, "%.1f kg"), ""),
	)

	if fetched := m.svc.Profiles.FetchedAt(); !fetched.IsZero() {
		lines = append(lines, "", mutedStyle.Render("Fetched "+humanize.Time(fetched)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render("Fitness and Fatigue")

	ctl := make([]float64, 0, len(m.fitness.Trend))
	atl := make([]float64, 0, len(m.fitness.Trend))
	for _, day := range m.fitness.Trend {
		ctl = append(ctl, day.CTL)
		atl = append(atl, day.ATL)
	}

	width := 60
	if m.width > 20 {
		width = min(m.width-20, 100)
	}

	graph := asciigraph.PlotMany([][]float64{downsample(ctl, width), downsample(atl, width)},
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption("CTL (blue) and ATL (red), planned days included"),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

// metricsOn returns the trend entry for day, if any
func metricsOn(trend []analysis.FitnessMetrics, day time.Time) *analysis.FitnessMetrics {
	y, mo, d := day.Date()
	for i := range trend {
		ty, tm, td := trend[i].Date.Date()
		if ty == y && tm == mo && td == d {
			return &trend[i]
		}
	}
	return nil
}

func delta(cur float64, prev *analysis.FitnessMetrics, pick func(analysis.FitnessMetrics) float64) string {
	if prev == nil {
		return ""
	}
	return formatDelta(cur - pick(*prev))
}
