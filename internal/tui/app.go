// Package tui is the terminal dashboard for fitness, thresholds and saved workouts.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"icu-workouts/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenWorkouts
	ScreenWorkoutDetail
	ScreenRefresh
	ScreenHelp
)

// RateLimitReporter exposes the remaining intervals.icu request budget
type RateLimitReporter interface {
	RateLimitStatus() (remaining int, resetsAt time.Time)
	Throttled() int
}

// Services bundles what the screens read from
type Services struct {
	Profiles  *service.ProfileRetriever
	Workouts  *service.WorkoutService
	Fitness   *service.FitnessService
	RateLimit RateLimitReporter // optional
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard DashboardModel
	workouts  WorkoutsModel
	detail    WorkoutDetailModel
	refresh   RefreshModel
	help      HelpModel

	svc Services

	width  int
	height int

	status string
}

// NewApp creates a new App with all dependencies
func NewApp(svc Services) *App {
	return &App{
		screen:    ScreenDashboard,
		svc:       svc,
		dashboard: NewDashboardModel(svc, 0, 0),
		workouts:  NewWorkoutsModel(svc.Workouts),
		refresh:   NewRefreshModel(svc),
		help:      NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.screen != ScreenRefresh || !a.refresh.running {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.svc, a.width, a.height)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenWorkouts
				return a, a.workouts.Init()
			case "3":
				if a.screen != ScreenRefresh {
					a.screen = ScreenRefresh
					a.refresh = NewRefreshModel(a.svc)
					return a, a.refresh.Init()
				}
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
					a.screen = ScreenHelp
				}
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenWorkoutDetail:
					a.screen = ScreenWorkouts
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenWorkoutDetailMsg:
		a.screen = ScreenWorkoutDetail
		a.detail = NewWorkoutDetailModel(a.svc, msg.ID, a.width, a.height)
		return a, a.detail.Init()

	case StatusMsg:
		a.status = string(msg)
		return a, nil

	case RefreshCompleteMsg:
		a.screen = ScreenDashboard
		a.dashboard = NewDashboardModel(a.svc, a.width, a.height)
		return a, a.dashboard.Init()
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenWorkouts:
		var m tea.Model
		m, cmd = a.workouts.Update(msg)
		a.workouts = m.(WorkoutsModel)
	case ScreenWorkoutDetail:
		var m tea.Model
		m, cmd = a.detail.Update(msg)
		a.detail = m.(WorkoutDetailModel)
	case ScreenRefresh:
		var m tea.Model
		m, cmd = a.refresh.Update(msg)
		a.refresh = m.(RefreshModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenWorkouts:
		content = a.workouts.View()
	case ScreenWorkoutDetail:
		content = a.detail.View()
	case ScreenRefresh:
		content = a.refresh.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("intervals.icu Workouts"),
		a.renderNav(),
		content,
		a.renderFooter(),
	)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Workouts", ScreenWorkouts},
		{"3", "Refresh", ScreenRefresh},
		{"?", "Help", ScreenHelp},
	}

	active := a.screen
	if active == ScreenWorkoutDetail {
		active = ScreenWorkouts
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}
		label := "[" + item.key + "] " + item.label
		if active == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}
	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// RefreshCompleteMsg is sent when a refresh finishes
type RefreshCompleteMsg struct{}

// OpenWorkoutDetailMsg opens the detail screen for a saved workout
type OpenWorkoutDetailMsg struct {
	ID string
}

// StatusMsg sets the footer status line
type StatusMsg string
