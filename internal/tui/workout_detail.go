package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/service"
)

// WorkoutDetailModel is the saved workout detail screen model
type WorkoutDetailModel struct {
	svc       Services
	workoutID string
	workout   *service.Workout
	profile   *analysis.AthleteProfile
	viewport  viewport.Model
	loading   bool
	err       error
	width     int
	height    int
	ready     bool
}

// NewWorkoutDetailModel creates a new workout detail model
func NewWorkoutDetailModel(svc Services, id string, width, height int) WorkoutDetailModel {
	m := WorkoutDetailModel{
		svc:       svc,
		workoutID: id,
		loading:   true,
		width:     width,
		height:    height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the detail screen
func (m WorkoutDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type workoutDetailLoadedMsg struct {
	workout *service.Workout
	profile *analysis.AthleteProfile
	err     error
}

func (m WorkoutDetailModel) loadDetail() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	w, err := m.svc.Workouts.Get(ctx, m.workoutID)
	if err != nil {
		return workoutDetailLoadedMsg{err: err}
	}

	// the profile only adds target ranges; the workout still renders without it
	profile, _ := m.svc.Profiles.Profile(ctx)
	return workoutDetailLoadedMsg{workout: w, profile: profile}
}

func (m WorkoutDetailModel) exportFIT() tea.Msg {
	name := m.workoutID + ".fit"
	f, err := os.Create(name)
	if err != nil {
		return StatusMsg(fmt.Sprintf("Export failed: %v", err))
	}

	if err := m.svc.Workouts.ExportFIT(context.Background(), m.workoutID, f); err != nil {
		f.Close()
		_ = os.Remove(name)
		return StatusMsg(fmt.Sprintf("Export failed: %v", err))
	}
	if err := f.Close(); err != nil {
		return StatusMsg(fmt.Sprintf("Export failed: %v", err))
	}
	return StatusMsg("Wrote " + name)
}

// Update handles messages
func (m WorkoutDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workoutDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.workout = msg.workout
		m.profile = msg.profile
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.workout != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		case "e":
			if m.workout != nil {
				return m, m.exportFIT
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail screen
func (m WorkoutDetailModel) View() string {
	if m.loading {
		return "\n  Loading workout..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  e: export FIT  r: reload")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m WorkoutDetailModel) renderContent() string {
	if m.workout == nil {
		return "No data"
	}

	sections := []string{
		m.renderSummary(),
		m.renderIntervals(),
	}
	if chart := m.renderIntensityChart(); chart != "" {
		sections = append(sections, chart)
	}
	sections = append(sections, m.renderBuilderText())

	return strings.Join(sections, "\n")
}

func (m WorkoutDetailModel) renderSummary() string {
	w := m.workout
	var lines []string

	lines = append(lines, cardTitleStyle.Render(w.Title))
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s, created %s", w.Sport, w.CreatedAt.Local().Format("Mon Jan 2 2006 15:04"))))
	if w.Description != "" {
		lines = append(lines, w.Description)
	}
	lines = append(lines, "")

	lines = append(lines,
		RenderMetric("Duration", analysis.FormatDuration(w.TotalSeconds), ""),
		RenderMetric("Estimated TSS", formatTSS(w.EstimatedTSS), ""),
		RenderMetric("Intensity factor", formatIF(w.EstimatedIF), ""),
		RenderMetric("Intervals", fmt.Sprintf("%d", len(w.Intervals)), ""),
	)
	if m.profile == nil {
		lines = append(lines, warningStyle.Render("Athlete profile unavailable, target ranges hidden"))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

func (m WorkoutDetailModel) renderIntervals() string {
	w := m.workout
	var lines []string

	lines = append(lines, sectionTitleStyle.Render("Intervals"))
	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-3s  %-24s  %8s  %4s  %-12s  %5s",
		"#", "Description", "Duration", "Zone", "Target", "IF")))

	var (
		setting  analysis.SportSetting
		hasZones bool
	)
	if m.profile != nil {
		s, err := analysis.SelectZoneTable(m.profile, w.Sport)
		setting, hasZones = s, err == nil
	}
	ts := analysis.ThresholdsFor(m.profile, w.Sport)
	discipline := analysis.Classify(w.Sport)

	for i, iv := range w.Intervals {
		target := "-"
		if hasZones {
			if r, ok := analysis.TargetRange(iv.Zone, w.Sport, setting); ok {
				target = r.String()
			}
		}

		ifValue := "-"
		if analysis.SupportsLoadEstimation(w.Sport) {
			ifValue = fmt.Sprintf("%.2f", analysis.EstimateIntervalIF(iv.Zone, discipline, ts).IF)
		}

		// zone is styled separately so its padding is applied to the plain label
		row := fmt.Sprintf("%-3d  %-24s  %8s  ", i+1, truncateName(iv.Label, 24), analysis.FormatDuration(iv.DurationSeconds))
		row += RenderZone(iv.Zone) + strings.Repeat(" ", max(0, 4-len(iv.Zone.String())))
		row += fmt.Sprintf("  %-12s  %5s", target, ifValue)
		lines = append(lines, tableRowStyle.Render(row))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

func (m WorkoutDetailModel) renderIntensityChart() string {
	w := m.workout
	if !analysis.SupportsLoadEstimation(w.Sport) {
		return ""
	}

	data := intensityProfile(w.Intervals, w.Sport, analysis.ThresholdsFor(m.profile, w.Sport))
	data = downsample(data, 60)
	if len(data) <= 2 {
		return ""
	}

	var lines []string
	lines = append(lines, sectionTitleStyle.Render("Intensity Profile (IF per minute)"))
	lines = append(lines, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(50),
		asciigraph.Precision(2),
	))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m WorkoutDetailModel) renderBuilderText() string {
	title := sectionTitleStyle.Render("Workout Builder Text")
	text := strings.TrimRight(m.workout.Text, "\n")
	if text == "" {
		text = mutedStyle.Render("No text rendered yet")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, builderTextStyle.Render(text))
}
