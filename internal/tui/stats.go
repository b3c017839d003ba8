package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cadence/internal/analytics"
	"cadence/internal/cache"
	"cadence/internal/dateutil"
	"cadence/internal/store"
)

type statsModel struct {
	store  *store.Store
	cache  *cache.LogCache
	loc    *time.Location
	width  int
	height int

	date     string
	window   int
	habits   []store.Habit
	overview analytics.Overview
	loaded   bool

	chart barchart.Model
}

func newStatsModel(s *store.Store, c *cache.LogCache, loc *time.Location) statsModel {
	return statsModel{
		store:  s,
		cache:  c,
		loc:    loc,
		date:   dateutil.Today(loc),
		window: s.RollingWindow(),
		chart:  barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *statsModel) setDate(date string) {
	m.date = date
}

func (m statsModel) refresh() tea.Cmd {
	gen, since := m.cache.Begin()
	date := m.date
	return func() tea.Msg {
		habits, err := m.store.ListHabits(false)
		if err != nil {
			habits = nil
		}
		// Fetch enough history for both the rolling window and the
		// current month's buckets.
		start, _ := dateutil.AddDays(date, -(historyDays - 1))
		if monthStart := date[:8] + "01"; monthStart < start {
			start = monthStart
		}
		logs, err := m.store.GetLogsInRange(start, date)
		if err != nil {
			logs = nil
		}
		return statsDataMsg{habits: habits, gen: gen, since: since, logs: logs}
	}
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.habits = msg.habits
		m.cache.ApplyRange(msg.gen, msg.since, msg.logs)
		m.overview = analytics.BuildOverview(m.habits, m.cache.Snapshot(), m.date, m.window)
		m.loaded = true
		m.buildChart()
		return m, nil
	case tea.KeyMsg:
		// Read-only view; nothing to do.
	}
	return m, nil
}

// buildChart draws the weekday averages in calendar order so the shape of
// the week is readable at a glance.
func (m *statsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	byName := make(map[string]analytics.WeekdayAverage, len(m.overview.Weekdays))
	for _, wa := range m.overview.Weekdays {
		byName[wa.Weekday] = wa
	}

	var bars []barchart.BarData
	for _, name := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		wa := byName[name]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if name == m.overview.BestWeekday {
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		} else if name == m.overview.WorstWeekday {
			style = lipgloss.NewStyle().Foreground(colorError)
		}
		bars = append(bars, barchart.BarData{
			Label: name[:3],
			Values: []barchart.BarValue{
				{Name: name, Value: wa.Average, Style: style},
			},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	if !m.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading stats..."))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ",
		mutedStyle.Render(fmt.Sprintf("last %d days ending %s", m.window, m.date)),
	)

	chartTitle := mutedStyle.Render("Completion by weekday (last 30 days)")
	chartView := m.chart.View()

	summary := m.renderSummary()
	table := m.renderHabitTable(w)
	buckets := m.renderMonthBuckets()

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartTitle, chartView, "", summary, "", buckets, "", table,
		),
	)
}

func (m statsModel) renderSummary() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("  Weekly average: %s", highlightStyle.Render(formatPercent(m.overview.WeeklyAverage))))
	if m.overview.BestWeekday != "" {
		parts = append(parts, fmt.Sprintf("  Best: %s  Worst: %s",
			successStyle.Render(m.overview.BestWeekday),
			errorStyle.Render(m.overview.WorstWeekday)))
	}
	if m.overview.MostConsistent != "" {
		parts = append(parts, fmt.Sprintf("  Most consistent: %s", highlightStyle.Render(m.overview.MostConsistent)))
	}
	return strings.Join(parts, "\n")
}

func (m statsModel) renderMonthBuckets() string {
	labels := []string{"early", "mid", "late", "end"}
	var parts []string
	for i, b := range m.overview.MonthBuckets {
		parts = append(parts, fmt.Sprintf("%s %s", mutedStyle.Render(labels[i]), formatPercent(b)))
	}
	return "  " + mutedStyle.Render("Month: ") + strings.Join(parts, "  ")
}

func (m statsModel) renderHabitTable(w int) string {
	if len(m.overview.Habits) == 0 {
		return mutedStyle.Render("  No active habits")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-26s %8s %8s %8s %6s", "Habit", "Streak", "Longest", "Missed", "Done")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 60))))

	for _, st := range m.overview.Habits {
		streak := fmt.Sprintf("%d", st.Current)
		if st.Current > 0 {
			streak = successStyle.Render(streak)
		}
		rows = append(rows, fmt.Sprintf("  %-26s %8s %8d %8d %5d%%",
			st.Title, streak, st.Longest, st.MissedDays, st.CompletionPercent))
	}
	return strings.Join(rows, "\n")
}
