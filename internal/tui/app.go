package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cadence/internal/analytics"
	"cadence/internal/cache"
	"cadence/internal/dateutil"
	"cadence/internal/export"
	"cadence/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store *store.Store
	cache *cache.LogCache
	loc   *time.Location
	today string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	todayView todayModel
	habits    habitsModel
	stats     statsModel
	challenge challengeModel

	help   help.Model
	status string
}

func NewApp(s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	c := cache.NewLogCache()
	loc := s.GetProfile().Location()

	return App{
		store:      s,
		cache:      c,
		loc:        loc,
		today:      dateutil.Today(loc),
		activeView: viewToday,
		todayView:  newTodayModel(s, c, loc),
		habits:     newHabitsModel(s),
		stats:      newStatsModel(s, c, loc),
		challenge:  newChallengeModel(s, loc),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.todayView.loadData(),
		a.challenge.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.todayView.setSize(a.width, contentHeight)
		a.habits.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.challenge.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewToday
			return a, a.todayView.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHabits
			return a, a.habits.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewChallenge
			return a, a.challenge.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())

		// Midnight rollover: the civil date moved, so every derived view
		// is stale.
		if date := dateutil.Today(a.loc); date != a.today {
			a.today = date
			a.cache.Invalidate()
			a.todayView.setDate(date)
			a.stats.setDate(date)
			cmds = append(cmds, a.todayView.loadData(), a.stats.refresh())
		}

		// The challenge countdown always runs, whichever tab is showing.
		var cmd tea.Cmd
		a.challenge, cmd = a.challenge.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case logSavedMsg:
		// Stamp the write before any in-flight range read can land on it.
		a.cache.ApplyWrite(msg.log)
		a.status = "Saved " + msg.log.Date
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.todayView, cmd = a.todayView.update(msg)
	case viewHabits:
		a.habits, cmd = a.habits.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewChallenge:
		a.challenge, cmd = a.challenge.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.todayView.formActive
	case viewHabits:
		return a.habits.formActive
	case viewChallenge:
		return a.challenge.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.todayView.loadData()
	case viewHabits:
		return a.habits.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewChallenge:
		return a.challenge.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.todayView.view()
	case viewHabits:
		content = a.habits.view()
	case viewStats:
		content = a.stats.view()
	case viewChallenge:
		content = a.challenge.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("cadence")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Challenge countdown indicator in footer
	countdown := ""
	if s := a.challenge.state; s != nil && s.Status == "active" {
		countdown = successStyle.Render(" ◷ " + formatCountdown(s.Remaining(time.Now(), a.loc)))
	}

	left := footerStyle.Render(helpView)
	right := countdown + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON", "Report"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	window := a.store.RollingWindow()
	end := a.today
	return func() tea.Msg {
		start, err := dateutil.AddDays(end, -(window - 1))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		habits, err := a.store.ListHabits(true)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		logs, err := a.store.GetLogsInRange(start, end)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		logMap := analytics.LogMap(logs)

		home, _ := os.UserHomeDir()

		var path string
		switch format {
		case 0:
			path = filepath.Join(home, fmt.Sprintf("cadence-export-%s.csv", end))
			err = export.ToCSV(habits, logMap, start, end, path)
		case 1:
			path = filepath.Join(home, fmt.Sprintf("cadence-export-%s.json", end))
			err = export.ToJSON(habits, logMap, start, end, path)
		default:
			path = filepath.Join(home, fmt.Sprintf("cadence-report-%s.txt", end))
			err = export.ToReport(habits, logMap, start, end, window, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		return exportDoneMsg{path: path}
	}
}
