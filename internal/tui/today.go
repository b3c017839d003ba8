package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"cadence/internal/analytics"
	"cadence/internal/cache"
	"cadence/internal/dateutil"
	"cadence/internal/store"
)

// historyDays is how far back the today view prefetches logs, enough to
// cover the streak window shown next to each habit.
const historyDays = 40

type todayModel struct {
	store  *store.Store
	cache  *cache.LogCache
	loc    *time.Location
	width  int
	height int

	date   string
	habits []store.Habit
	log    store.DayLog // working copy of today's record
	cursor int
	window int

	formActive bool
	form       *huh.Form
	formNote   *string
}

func newTodayModel(s *store.Store, c *cache.LogCache, loc *time.Location) todayModel {
	note := ""
	return todayModel{
		store:    s,
		cache:    c,
		loc:      loc,
		date:     dateutil.Today(loc),
		log:      store.DayLog{Date: dateutil.Today(loc), HabitStatus: map[string]store.RawEntry{}},
		window:   s.RollingWindow(),
		formNote: &note,
	}
}

func (m *todayModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// setDate moves the view to a new civil date, usually on midnight rollover.
func (m *todayModel) setDate(date string) {
	m.date = date
	m.log = store.DayLog{Date: date, HabitStatus: map[string]store.RawEntry{}}
	m.cursor = 0
}

func (m todayModel) loadData() tea.Cmd {
	gen, since := m.cache.Begin()
	date := m.date
	return func() tea.Msg {
		habits, err := m.store.ListHabits(false)
		if err != nil {
			habits = nil
		}
		start, _ := dateutil.AddDays(date, -(historyDays - 1))
		// A failed fetch degrades to an empty range, never an error view.
		logs, err := m.store.GetLogsInRange(start, date)
		if err != nil {
			logs = nil
		}
		return todayDataMsg{habits: habits, gen: gen, since: since, logs: logs}
	}
}

func (m todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todayDataMsg:
		m.habits = msg.habits
		m.cache.ApplyRange(msg.gen, msg.since, msg.logs)
		if l, ok := m.cache.Get(m.date); ok {
			m.log = cloneLog(l)
		}
		if m.cursor >= len(m.habits) {
			m.cursor = max(0, len(m.habits)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m todayModel) updateKeys(msg tea.KeyMsg) (todayModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.habits)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Mark):
		return m.markSelected(analytics.StatusDone)
	case key.Matches(msg, keys.Skip):
		return m.markSelected(analytics.StatusSkip)
	case key.Matches(msg, keys.Clear):
		return m.clearSelected()
	case key.Matches(msg, keys.Increment):
		return m.adjustCount(1)
	case key.Matches(msg, keys.Decrement):
		return m.adjustCount(-1)
	case key.Matches(msg, keys.Mood):
		return m.cycleMood()
	case key.Matches(msg, keys.Note):
		return m.showNoteForm()
	}
	return m, nil
}

func (m todayModel) markSelected(st analytics.Status) (todayModel, tea.Cmd) {
	if m.cursor >= len(m.habits) {
		return m, nil
	}
	h := m.habits[m.cursor]
	entry := m.log.HabitStatus[h.ID]

	switch st {
	case analytics.StatusDone:
		// Marking an already-done habit toggles it back to unmarked.
		if analytics.Resolve(&entry) == analytics.StatusDone {
			delete(m.log.HabitStatus, h.ID)
		} else {
			m.log.HabitStatus[h.ID] = store.RawEntry{Status: string(analytics.StatusDone), Count: int(h.TargetValue)}
		}
	case analytics.StatusSkip:
		m.log.HabitStatus[h.ID] = store.RawEntry{Status: string(analytics.StatusSkip)}
	}
	return m, m.save()
}

func (m todayModel) clearSelected() (todayModel, tea.Cmd) {
	if m.cursor >= len(m.habits) {
		return m, nil
	}
	h := m.habits[m.cursor]
	if _, ok := m.log.HabitStatus[h.ID]; !ok {
		return m, nil
	}
	delete(m.log.HabitStatus, h.ID)
	return m, m.save()
}

// adjustCount moves a numeric habit's count and derives its status from the
// target: reaching the target marks done, dropping below unmarks.
func (m todayModel) adjustCount(delta int) (todayModel, tea.Cmd) {
	if m.cursor >= len(m.habits) {
		return m, nil
	}
	h := m.habits[m.cursor]
	if h.Checkbox() {
		return m, nil
	}

	entry := m.log.HabitStatus[h.ID]
	entry.Done = nil
	entry.Count += delta
	if entry.Count < 0 {
		entry.Count = 0
	}
	if float64(entry.Count) >= h.TargetValue {
		entry.Status = string(analytics.StatusDone)
	} else {
		entry.Status = string(analytics.StatusNone)
	}
	m.log.HabitStatus[h.ID] = entry
	return m, m.save()
}

func (m todayModel) cycleMood() (todayModel, tea.Cmd) {
	moods := append([]string{""}, store.Moods...)
	idx := 0
	for i, mood := range moods {
		if mood == m.log.Mood {
			idx = i
			break
		}
	}
	m.log.Mood = moods[(idx+1)%len(moods)]
	return m, m.save()
}

func (m todayModel) showNoteForm() (todayModel, tea.Cmd) {
	*m.formNote = m.log.Note
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Note for " + m.date).Value(m.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
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
		m.log.Note = *m.formNote
		return m, m.save()
	}
	return m, cmd
}

// save upserts the working copy. The saved record is echoed back as a
// logSavedMsg so the app can stamp it into the cache before any slower
// range read resolves.
func (m todayModel) save() tea.Cmd {
	log := cloneLog(m.log)
	log.UpdatedAt = time.Now().UTC()
	return func() tea.Msg {
		if err := m.store.UpsertLog(log); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return logSavedMsg{log: log}
	}
}

func cloneLog(l store.DayLog) store.DayLog {
	out := l
	out.HabitStatus = make(map[string]store.RawEntry, len(l.HabitStatus))
	for k, v := range l.HabitStatus {
		out.HabitStatus[k] = v
	}
	return out
}

func (m todayModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Note"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	percent := analytics.DayCompletionPercent(m.habits, &m.log)
	title := titleStyle.Render(m.date) + "  " + highlightStyle.Render(formatPercent(percent))

	if len(m.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No active habits. Add some on the Habits tab."),
		)
		return panelStyle.Width(w).Render(content)
	}

	snapshot := m.cache.Snapshot()
	snapshot[m.date] = m.log

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, h := range m.habits {
		entry, present := m.log.HabitStatus[h.ID]
		st := analytics.StatusNone
		if present {
			st = analytics.Resolve(&entry)
		}

		glyph := statusGlyph(st)
		switch st {
		case analytics.StatusDone:
			glyph = doneStyle.Render(glyph)
		case analytics.StatusSkip:
			glyph = skipStyle.Render(glyph)
		default:
			glyph = mutedStyle.Render(glyph)
		}

		count := ""
		if !h.Checkbox() {
			count = mutedStyle.Render(fmt.Sprintf(" %d/%g", entry.Count, h.TargetValue))
		}

		stats := analytics.StreakStats(h, snapshot, m.date, m.window)
		streak := ""
		if stats.Current > 0 {
			streak = successStyle.Render(fmt.Sprintf("  %d day streak", stats.Current))
		}

		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, glyph, h.Title))+count+streak)
	}

	rows = append(rows, "")
	mood := "none"
	if m.log.Mood != "" {
		mood = m.log.Mood
	}
	rows = append(rows, mutedStyle.Render("  Mood: ")+normalItemStyle.Render(mood))
	if m.log.Note != "" {
		rows = append(rows, mutedStyle.Render("  Note: ")+normalItemStyle.Render(m.log.Note))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: done  s: skip  x: clear  +/-: count  m: mood  o: note"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
