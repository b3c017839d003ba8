package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"cadence/internal/challenge"
	"cadence/internal/dateutil"
	"cadence/internal/store"
)

type challengeModel struct {
	store  *store.Store
	loc    *time.Location
	width  int
	height int

	state  *challenge.State
	habits []store.Habit
	now    time.Time

	formActive bool
	form       *huh.Form
	formType   string // "new", "log"

	formHabitID  *string
	formDuration *string
	formTarget   *string
	formMinutes  *string
}

func newChallengeModel(s *store.Store, loc *time.Location) challengeModel {
	habitID, duration, target, minutes := "", "30", "30", ""
	return challengeModel{
		store:        s,
		loc:          loc,
		now:          time.Now(),
		formHabitID:  &habitID,
		formDuration: &duration,
		formTarget:   &target,
		formMinutes:  &minutes,
	}
}

func (m *challengeModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m challengeModel) refresh() tea.Cmd {
	return func() tea.Msg {
		state, err := challenge.Load(m.store)
		if err != nil {
			state = nil
		}
		habits, _ := m.store.ListHabits(false)
		return challengeDataMsg{state: state, habits: habits}
	}
}

func (m challengeModel) update(msg tea.Msg) (challengeModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case challengeDataMsg:
		m.state = msg.state
		m.habits = msg.habits
		if m.state != nil {
			m.state.Evaluate(m.now, m.loc)
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, m.evaluate()

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

// evaluate re-derives the status every tick and persists the transition
// once the end boundary passes. Re-running it on an already-terminal state
// is a no-op.
func (m challengeModel) evaluate() tea.Cmd {
	if m.state == nil {
		return nil
	}
	prev := m.state.Status
	got := m.state.Evaluate(m.now, m.loc)
	if got == prev {
		return nil
	}
	state := m.state
	return func() tea.Msg {
		if err := state.Save(m.store); err != nil {
			return statusMsg{text: fmt.Sprintf("Challenge save error: %v", err), isError: true}
		}
		if got == challenge.StatusCompleted {
			return statusMsg{text: "Challenge completed! \a"}
		}
		return statusMsg{text: "Challenge over: target not met"}
	}
}

func (m challengeModel) updateKeys(msg tea.KeyMsg) (challengeModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.New):
		if m.state == nil || m.state.Status != challenge.StatusActive {
			return m.showNewForm()
		}
	case key.Matches(msg, keys.Right):
		if m.state != nil && m.state.Status == challenge.StatusActive {
			return m.showLogForm()
		}
	case key.Matches(msg, keys.Mark):
		return m.markToday(true)
	case key.Matches(msg, keys.Clear):
		return m.markToday(false)
	case key.Matches(msg, keys.Reset):
		if m.state != nil {
			return m.reset()
		}
	}
	return m, nil
}

func (m challengeModel) markToday(complete bool) (challengeModel, tea.Cmd) {
	if m.state == nil || m.state.Status != challenge.StatusActive {
		return m, nil
	}
	today := dateutil.Civil(m.now, m.loc)
	var err error
	if complete {
		err = m.state.MarkComplete(today)
	} else {
		err = m.state.MarkNotComplete(today)
	}
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Challenge error: %v", err), isError: true}
		}
	}
	return m, m.persist("Logged " + today)
}

func (m challengeModel) persist(okText string) tea.Cmd {
	state := m.state
	return func() tea.Msg {
		if err := state.Save(m.store); err != nil {
			return statusMsg{text: fmt.Sprintf("Challenge save error: %v", err), isError: true}
		}
		return statusMsg{text: okText}
	}
}

func (m challengeModel) reset() (challengeModel, tea.Cmd) {
	m.state = nil
	return m, func() tea.Msg {
		if err := challenge.Clear(m.store); err != nil {
			return statusMsg{text: fmt.Sprintf("Challenge reset error: %v", err), isError: true}
		}
		return statusMsg{text: "Challenge cleared"}
	}
}

func (m challengeModel) showNewForm() (challengeModel, tea.Cmd) {
	if len(m.habits) == 0 {
		return m, func() tea.Msg {
			return statusMsg{text: "No active habits to challenge", isError: true}
		}
	}
	*m.formHabitID = m.habits[0].ID
	*m.formDuration = "30"
	*m.formTarget = "30"
	m.formType = "new"

	options := make([]huh.Option[string], len(m.habits))
	for i, h := range m.habits {
		options[i] = huh.NewOption(h.Title, h.ID)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Habit").Options(options...).Value(m.formHabitID),
			huh.NewInput().Title("Days").Value(m.formDuration).Validate(validPositiveInt),
			huh.NewInput().Title("Minutes per day").Value(m.formTarget).Validate(validPositiveInt),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m challengeModel) showLogForm() (challengeModel, tea.Cmd) {
	*m.formMinutes = ""
	m.formType = "log"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Minutes today").Value(m.formMinutes).Validate(validNonNegative),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validPositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive whole number")
	}
	return nil
}

func validNonNegative(s string) error {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("must be zero or more minutes")
	}
	return nil
}

func (m challengeModel) updateForm(msg tea.Msg) (challengeModel, tea.Cmd) {
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
		switch m.formType {
		case "new":
			return m.startChallenge()
		case "log":
			minutes, err := strconv.ParseFloat(*m.formMinutes, 64)
			if err != nil || m.state == nil {
				return m, nil
			}
			today := dateutil.Civil(m.now, m.loc)
			if err := m.state.LogMinutes(today, minutes); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Challenge error: %v", err), isError: true}
				}
			}
			return m, m.persist(fmt.Sprintf("Logged %g minutes", minutes))
		}
	}
	return m, cmd
}

func (m challengeModel) startChallenge() (challengeModel, tea.Cmd) {
	duration, _ := strconv.Atoi(*m.formDuration)
	target, _ := strconv.ParseFloat(*m.formTarget, 64)

	var habit *store.Habit
	for i := range m.habits {
		if m.habits[i].ID == *m.formHabitID {
			habit = &m.habits[i]
			break
		}
	}
	if habit == nil {
		return m, nil
	}

	state, err := challenge.Begin(m.store, *habit, duration, target, m.now, m.loc)
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Challenge error: %v", err), isError: true}
		}
	}
	m.state = state
	return m, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Challenge started: %d days of %s", duration, habit.Title)}
	}
}

func (m challengeModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Challenge")
		if m.formType == "log" {
			title = titleStyle.Render("Log Minutes")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if m.state == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Challenge"),
			"",
			mutedStyle.Render("No challenge running. Press n to start one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	s := m.state
	title := titleStyle.Render(fmt.Sprintf("%d days of %s", s.DurationDays, s.HabitTitle))
	span := mutedStyle.Render(fmt.Sprintf("%s .. %s, %g min/day", s.StartDate, s.EndDate, s.TargetMinutes))

	var statusLine, countdown string
	switch s.Status {
	case challenge.StatusActive:
		countdown = countdownStyle.Width(w - 6).Render(formatCountdown(s.Remaining(m.now, m.loc)))
		statusLine = highlightStyle.Render("ACTIVE")
	case challenge.StatusCompleted:
		countdown = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Completed!")
		statusLine = successStyle.Bold(true).Render("COMPLETED")
	case challenge.StatusNotCompleted:
		countdown = errorStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Target not met")
		statusLine = errorStyle.Bold(true).Render("NOT COMPLETED")
	}

	progress := m.renderProgress()
	daily := m.renderDaily()

	var controls string
	if s.Status == challenge.StatusActive {
		controls = mutedStyle.Render("space: met target  x: zero  l: log minutes  r: reset")
	} else {
		controls = mutedStyle.Render("n: new challenge  r: clear")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			title, span, "", countdown, statusLine, "", progress, "", daily, "", controls,
		),
	)
}

func (m challengeModel) renderProgress() string {
	s := m.state
	met := s.DaysMet()
	var parts []string
	for _, d := range dateutil.Enumerate(s.StartDate, s.EndDate, s.DurationDays) {
		switch {
		case s.Daily[d] >= s.TargetMinutes:
			parts = append(parts, successStyle.Render("●"))
		case d == dateutil.Civil(m.now, m.loc) && s.Status == challenge.StatusActive:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d days", met, s.DurationDays))
	return strings.Join(parts, " ") + counter
}

func (m challengeModel) renderDaily() string {
	s := m.state
	today := dateutil.Civil(m.now, m.loc)

	var rows []string
	for _, d := range dateutil.Enumerate(s.StartDate, s.EndDate, s.DurationDays) {
		if d > today && s.Status == challenge.StatusActive {
			break
		}
		minutes, logged := s.Daily[d]
		line := fmt.Sprintf("%s  %5.0f min", d, minutes)
		switch {
		case minutes >= s.TargetMinutes:
			line = doneStyle.Render(line)
		case logged || d < today:
			line = missedStyle.Render(line)
		default:
			line = mutedStyle.Render(line)
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return ""
	}
	return strings.Join(rows, "\n")
}
