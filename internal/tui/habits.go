package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"cadence/internal/store"
)

type habitsModel struct {
	store  *store.Store
	width  int
	height int

	habits []store.Habit
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formTitle  *string
	formTarget *string
	formWeekly *bool

	editingID string
}

func newHabitsModel(s *store.Store) habitsModel {
	title, target, weekly := "", "1", false
	return habitsModel{
		store:      s,
		formTitle:  &title,
		formTarget: &target,
		formWeekly: &weekly,
	}
}

func (m *habitsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m habitsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		habits, _ := m.store.ListHabits(true)
		return habitsDataMsg{habits: habits}
	}
}

func (m habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case habitsDataMsg:
		m.habits = msg.habits
		if m.cursor >= len(m.habits) {
			m.cursor = max(0, len(m.habits)-1)
		}
		return m, nil

	case habitToggleFailedMsg:
		// The optimistic flip did not stick; reload the real state.
		return m, tea.Batch(m.refresh(), func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Toggle error: %v", msg.err), isError: true}
		})

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m habitsModel) updateKeys(msg tea.KeyMsg) (habitsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.habits)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showForm("new")
	case key.Matches(msg, keys.Edit):
		if len(m.habits) > 0 {
			return m.showForm("edit")
		}
	case key.Matches(msg, keys.Pause):
		return m.togglePause()
	}
	return m, nil
}

// togglePause flips the habit optimistically so the list reacts at once;
// the write happens in the background and a failure rolls the view back.
func (m habitsModel) togglePause() (habitsModel, tea.Cmd) {
	if m.cursor >= len(m.habits) {
		return m, nil
	}
	h := m.habits[m.cursor]
	active := !h.Active
	m.habits[m.cursor].Active = active

	return m, func() tea.Msg {
		if err := m.store.SetHabitActive(h, active); err != nil {
			return habitToggleFailedMsg{err: err}
		}
		verb := "Paused"
		if active {
			verb = "Resumed"
		}
		return statusMsg{text: verb + " " + h.Title}
	}
}

func (m habitsModel) showForm(formType string) (habitsModel, tea.Cmd) {
	m.formType = formType
	if formType == "edit" {
		h := m.habits[m.cursor]
		*m.formTitle = h.Title
		*m.formTarget = strconv.FormatFloat(h.TargetValue, 'f', -1, 64)
		m.editingID = h.ID
	} else {
		*m.formTitle = ""
		*m.formTarget = "1"
		*m.formWeekly = false
	}

	fields := []huh.Field{
		huh.NewInput().Title("Title").Value(m.formTitle),
		huh.NewInput().Title("Target (1 = checkbox)").Value(m.formTarget).Validate(validTarget),
	}
	if formType == "new" {
		fields = append(fields, huh.NewConfirm().Title("Weekly habit?").Value(m.formWeekly))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func validTarget(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	if v <= 0 {
		return fmt.Errorf("target must be positive")
	}
	return nil
}

func (m habitsModel) updateForm(msg tea.Msg) (habitsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if *m.formTitle == "" {
			return m, m.refresh()
		}
		target, err := strconv.ParseFloat(*m.formTarget, 64)
		if err != nil || target <= 0 {
			target = 1
		}

		switch m.formType {
		case "new":
			targetType := store.TargetDaily
			if *m.formWeekly {
				targetType = store.TargetWeekly
			}
			if _, err := m.store.CreateHabit(*m.formTitle, store.CategoryCustom, targetType, target); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Create error: %v", err), isError: true}
				}
			}
		case "edit":
			if err := m.store.UpdateHabit(m.editingID, *m.formTitle, target); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Update error: %v", err), isError: true}
				}
			}
		}
		return m, m.refresh()
	}
	return m, cmd
}

func (m habitsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Habit")
		if m.formType == "edit" {
			title = titleStyle.Render("Edit Habit")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Habits")

	if len(m.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No habits yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-26s %-8s %-8s %-8s", "Title", "Target", "Cadence", "State"))
	rows = append(rows, header)

	for i, h := range m.habits {
		target := "check"
		if !h.Checkbox() {
			target = fmt.Sprintf("x%g", h.TargetValue)
		}
		state := successStyle.Render("active")
		if !h.Active {
			state = mutedStyle.Render("paused")
		}

		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-26s %-8s %-8s", cursor, h.Title, target, h.TargetType))+" "+state)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: pause/resume"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
