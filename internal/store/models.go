package store

import "time"

// Habit categories.
const (
	CategoryCommon = "common"
	CategoryCustom = "custom"
)

// Habit target types.
const (
	TargetDaily  = "daily"
	TargetWeekly = "weekly"
)

// Moods that can be attached to a day log.
var Moods = []string{"happy", "angry", "rest"}

type Habit struct {
	ID          string
	Title       string
	Category    string // common, custom
	TargetType  string // daily, weekly
	TargetValue float64
	Active      bool
	Position    int
	CreatedAt   time.Time
}

// Checkbox reports whether the habit is a plain done/not-done habit rather
// than a numeric-target one.
func (h Habit) Checkbox() bool {
	return h.TargetValue <= 1
}

// RawEntry is the stored per-habit status for one day. Two formats coexist:
// the current {status, count} shape and a legacy {done: bool} shape written
// by earlier versions. Readers must go through analytics.Resolve rather than
// probing fields.
type RawEntry struct {
	Status string `json:"status,omitempty"`
	Count  int    `json:"count,omitempty"`
	Done   *bool  `json:"done,omitempty"` // legacy boolean format
}

// DayLog is the single record for one calendar date. A missing row means
// "no data" for that date; a present row with a habit absent from
// HabitStatus means "no data" for that habit.
type DayLog struct {
	Date        string // YYYY-MM-DD in the reference timezone
	UpdatedAt   time.Time
	HabitStatus map[string]RawEntry // habit ID -> raw entry
	Mood        string              // happy, angry, rest or empty
	Note        string
}

type Profile struct {
	Name     string
	Timezone string // IANA zone name, e.g. "Europe/Berlin"
}

type Setting struct {
	Key   string
	Value string
}
