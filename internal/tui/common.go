package tui

import (
	"fmt"
	"time"

	"cadence/internal/analytics"
	"cadence/internal/challenge"
	"cadence/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewHabits
	viewStats
	viewChallenge
)

var viewNames = []string{"Today", "Habits", "Stats", "Challenge"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// todayDataMsg carries a fresh habit list plus the log range fetched for
// the today view. gen/since are the cache markers captured when the fetch
// was issued.
type todayDataMsg struct {
	habits []store.Habit
	gen    uint64
	since  uint64
	logs   []store.DayLog
}

type statsDataMsg struct {
	habits []store.Habit
	gen    uint64
	since  uint64
	logs   []store.DayLog
}

type habitsDataMsg struct {
	habits []store.Habit
}

// logSavedMsg reports a successful upsert so the cache can absorb it.
type logSavedMsg struct {
	log store.DayLog
}

type habitToggleFailedMsg struct {
	err error
}

type challengeDataMsg struct {
	state  *challenge.State
	habits []store.Habit
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func statusGlyph(st analytics.Status) string {
	switch st {
	case analytics.StatusDone:
		return "[x]"
	case analytics.StatusSkip:
		return "[-]"
	default:
		return "[ ]"
	}
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
