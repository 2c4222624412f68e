package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/service"
)

// WorkoutsModel is the saved workouts list screen model
type WorkoutsModel struct {
	workouts *service.WorkoutService
	items    []service.Workout
	cursor   int
	offset   int
	total    int
	pageSize int
	loading  bool
	err      error

	// confirmDelete holds the ID awaiting a second 'd'
	confirmDelete string
}

// NewWorkoutsModel creates a new workouts list model
func NewWorkoutsModel(ws *service.WorkoutService) WorkoutsModel {
	return WorkoutsModel{
		workouts: ws,
		pageSize: 15,
		loading:  true,
	}
}

// Init initializes the workouts screen
func (m WorkoutsModel) Init() tea.Cmd {
	return m.loadPage
}

type workoutsLoadedMsg struct {
	items []service.Workout
	total int
	err   error
}

type workoutDeletedMsg struct {
	title string
	err   error
}

func (m WorkoutsModel) loadPage() tea.Msg {
	ctx := context.Background()

	items, err := m.workouts.List(ctx, m.pageSize, m.offset)
	if err != nil {
		return workoutsLoadedMsg{err: err}
	}
	total, err := m.workouts.Count(ctx)
	if err != nil {
		return workoutsLoadedMsg{err: err}
	}
	return workoutsLoadedMsg{items: items, total: total}
}

func (m WorkoutsModel) deleteSelected(w service.Workout) tea.Cmd {
	return func() tea.Msg {
		err := m.workouts.Delete(context.Background(), w.ID)
		return workoutDeletedMsg{title: w.Title, err: err}
	}
}

// Update handles messages
func (m WorkoutsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workoutsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.total = msg.total
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}

	case workoutDeletedMsg:
		status := StatusMsg("Deleted " + msg.title)
		if msg.err != nil {
			status = StatusMsg(fmt.Sprintf("Delete failed: %v", msg.err))
		}
		m.loading = true
		return m, tea.Batch(m.loadPage, func() tea.Msg { return status })

	case tea.KeyMsg:
		key := msg.String()
		if key != "d" {
			m.confirmDelete = ""
		}
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			} else if m.offset+len(m.items) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(0, m.offset-m.pageSize)
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "d":
			if m.cursor < len(m.items) {
				w := m.items[m.cursor]
				if m.confirmDelete == w.ID {
					m.confirmDelete = ""
					return m, m.deleteSelected(w)
				}
				m.confirmDelete = w.ID
			}
		case "enter":
			if m.cursor < len(m.items) {
				id := m.items[m.cursor].ID
				return m, func() tea.Msg {
					return OpenWorkoutDetailMsg{ID: id}
				}
			}
		}
	}
	return m, nil
}

// View renders the workouts list
func (m WorkoutsModel) View() string {
	if m.loading {
		return "\n  Loading workouts..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.items) == 0 {
		return "\n  No saved workouts. Generate one with 'icu-workouts generate' or POST /generate-workout."
	}

	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Saved Workouts (%d-%d of %d)",
		m.offset+1, m.offset+len(m.items), m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-15s  %-12s  %-25s  %8s  %5s  %5s",
		"Created", "Sport", "Title", "Duration", "TSS", "IF"))
	sections = append(sections, header)

	for i, w := range m.items {
		row := fmt.Sprintf("%-15s  %-12s  %-25s  %8s  %5s  %5s",
			truncateName(formatAge(w.CreatedAt), 15),
			truncateName(string(w.Sport), 12),
			truncateName(w.Title, 25),
			analysis.FormatDuration(w.TotalSeconds),
			formatTSS(w.EstimatedTSS),
			formatIF(w.EstimatedIF),
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render("> "+row))
		} else {
			sections = append(sections, tableRowStyle.Render("  "+row))
		}
	}

	var hint string
	if m.confirmDelete != "" {
		hint = warningStyle.Render("Press 'd' again to delete this workout")
	} else {
		hint = statusStyle.Render("↑/↓ navigate, enter details, d delete, pgup/pgdown page, r reload")
	}
	sections = append(sections, lipgloss.NewStyle().MarginTop(1).Render(hint))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
