package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"icu-workouts/internal/intervals"
	"icu-workouts/internal/service"
)

// refresh stages, run one tea.Cmd at a time so progress can be drawn between them
const (
	stageProfile = iota
	stageFitness
	numStages
)

var stageLabels = [numStages]string{
	"Re-fetch athlete profile and zones",
	"Fetch activities and planned events",
}

// RefreshModel is the refresh screen model
type RefreshModel struct {
	svc     Services
	running bool
	stage   int
	done    bool
	err     error

	athlete     *intervals.Athlete
	fitness     *service.FitnessSummary
	lastFetched time.Time
}

// NewRefreshModel creates a new refresh model
func NewRefreshModel(svc Services) RefreshModel {
	return RefreshModel{svc: svc}
}

// Init initializes the refresh screen
func (m RefreshModel) Init() tea.Cmd {
	return m.loadLastFetched
}

type lastFetchedMsg time.Time

func (m RefreshModel) loadLastFetched() tea.Msg {
	if m.svc.Fitness == nil {
		return nil
	}
	t, err := m.svc.Fitness.LastFetched()
	if err != nil {
		return nil
	}
	return lastFetchedMsg(t)
}

// refreshStageMsg reports the outcome of one stage
type refreshStageMsg struct {
	stage   int
	athlete *intervals.Athlete
	fitness *service.FitnessSummary
	err     error
}

func (m RefreshModel) runStage(stage int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		msg := refreshStageMsg{stage: stage}
		switch stage {
		case stageProfile:
			if err := m.svc.Profiles.Invalidate(); err != nil {
				msg.err = err
				return msg
			}
			msg.athlete, msg.err = m.svc.Profiles.Athlete(ctx)
		case stageFitness:
			msg.fitness, msg.err = m.svc.Fitness.Trend(ctx, service.DefaultDaysBehind, service.DefaultDaysAhead)
		}
		return msg
	}
}

// Update handles messages
func (m RefreshModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lastFetchedMsg:
		m.lastFetched = time.Time(msg)
		return m, nil

	case refreshStageMsg:
		if msg.err != nil {
			m.running = false
			m.err = fmt.Errorf("%s: %w", strings.ToLower(stageLabels[msg.stage]), msg.err)
			return m, nil
		}
		if msg.athlete != nil {
			m.athlete = msg.athlete
		}
		if msg.fitness != nil {
			m.fitness = msg.fitness
			m.lastFetched = msg.fitness.UpdatedAt
		}

		m.stage = msg.stage + 1
		if m.stage < numStages {
			return m, m.runStage(m.stage)
		}
		m.running = false
		m.done = true
		return m, nil

	case tea.KeyMsg:
		if m.running {
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			m.running = true
			m.done = false
			m.err = nil
			m.stage = stageProfile
			m.athlete = nil
			m.fitness = nil
			return m, m.runStage(stageProfile)
		case "d":
			if m.done {
				return m, func() tea.Msg { return RefreshCompleteMsg{} }
			}
		}
	}
	return m, nil
}

// View renders the refresh screen
func (m RefreshModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Refresh from intervals.icu"))
	if m.lastFetched.IsZero() {
		sections = append(sections, mutedStyle.Render("  Activities never fetched"))
	} else {
		sections = append(sections, mutedStyle.Render("  Activities last fetched "+formatAge(m.lastFetched)))
	}
	sections = append(sections, m.renderStages())

	switch {
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
	case m.done:
		sections = append(sections, successStyle.Render("\n  Refresh complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 'd' or '1' to go to the dashboard"))
	case m.running:
		sections = append(sections, "\n"+statusStyle.Render("  This may take a moment..."))
	default:
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to start"))
	}

	sections = append(sections, m.renderRateLimit())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RefreshModel) renderStages() string {
	var lines []string
	lines = append(lines, "")

	for i, label := range stageLabels {
		marker := "  "
		switch {
		case i < m.stage || m.done:
			marker = successStyle.Render("✓ ")
		case m.running && i == m.stage:
			marker = warningStyle.Render("… ")
		case m.err != nil && i == m.stage:
			marker = errorStyle.Render("✗ ")
		}
		lines = append(lines, fmt.Sprintf("  %s%d. %s", marker, i+1, label))
	}

	if m.running || m.done {
		completed := m.stage
		if m.done {
			completed = numStages
		}
		lines = append(lines, "", "  "+RenderProgressBar(float64(completed)/numStages, 30))
	}

	return strings.Join(lines, "\n")
}

func (m RefreshModel) renderSummary() string {
	var lines []string
	lines = append(lines, "")

	if a := m.athlete; a != nil {
		name := a.Name
		if name == "" {
			name = a.ID
		}
		lines = append(lines, successStyle.Render(fmt.Sprintf("  Profile for %s with %d zone tables", name, len(a.SportSettings))))
	}
	if f := m.fitness; f != nil {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities, %.0f completed load, %.0f planned load", f.Activities, f.CompletedLoad, f.PlannedLoad)))
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  CTL %.0f  ATL %.0f  TSB %.0f  %s", f.Current.CTL, f.Current.ATL, f.Current.TSB, f.Form)))
	}

	return strings.Join(lines, "\n")
}

func (m RefreshModel) renderRateLimit() string {
	if m.svc.RateLimit == nil {
		return ""
	}
	remaining, resetsAt := m.svc.RateLimit.RateLimitStatus()
	line := fmt.Sprintf("  API budget: %d requests left, resets %s", remaining, formatAge(resetsAt))
	if n := m.svc.RateLimit.Throttled(); n > 0 {
		return "\n" + statusStyle.Render(line) + "\n" + warningStyle.Render(fmt.Sprintf("  Rate limited %d times this session", n))
	}
	return "\n" + statusStyle.Render(line)
}
