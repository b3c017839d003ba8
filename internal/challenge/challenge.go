// Package challenge tracks the single optional "N days of M minutes"
// challenge. The state lives in one local settings slot, so it does not
// follow the user across devices; an absent slot means no challenge.
package challenge

import (
	"encoding/json"
	"fmt"
	"time"

	"cadence/internal/dateutil"
	"cadence/internal/store"
)

// Status of a challenge. There is no "not started": absence of a State
// record represents that.
type Status string

const (
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusNotCompleted Status = "not-completed"
)

// settingKey is the single settings slot holding the serialized state.
const settingKey = "challenge"

// maxChallengeDays bounds the evaluation walk over the challenge span.
const maxChallengeDays = 366

// State is the full challenge record. Everything needed to evaluate the
// outcome is in here; evaluation is a pure function of State plus the
// current time.
type State struct {
	HabitID       string             `json:"habitId"`
	HabitTitle    string             `json:"habitTitle"`
	DurationDays  int                `json:"durationDays"`
	TargetMinutes float64            `json:"targetMinutes"`
	StartDate     string             `json:"startDate"`
	EndDate       string             `json:"endDate"` // inclusive
	Daily         map[string]float64 `json:"daily"`   // date -> minutes logged
	Status        Status             `json:"status"`
}

// New creates an active challenge starting today. The habit must be active
// and both the duration and the minute target positive.
func New(h store.Habit, durationDays int, targetMinutes float64, today string) (*State, error) {
	if !h.Active {
		return nil, fmt.Errorf("habit %q is paused", h.Title)
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationDays)
	}
	if targetMinutes <= 0 {
		return nil, fmt.Errorf("minute target must be positive, got %v", targetMinutes)
	}
	end, err := dateutil.AddDays(today, durationDays-1)
	if err != nil {
		return nil, fmt.Errorf("start challenge: %w", err)
	}
	return &State{
		HabitID:       h.ID,
		HabitTitle:    h.Title,
		DurationDays:  durationDays,
		TargetMinutes: targetMinutes,
		StartDate:     today,
		EndDate:       end,
		Daily:         map[string]float64{},
		Status:        StatusActive,
	}, nil
}

// LogMinutes records the minutes for one day. Only an active challenge
// accepts entries; later writes for the same day replace earlier ones.
func (s *State) LogMinutes(date string, minutes float64) error {
	if s.Status != StatusActive {
		return fmt.Errorf("challenge is %s, not active", s.Status)
	}
	if minutes < 0 {
		return fmt.Errorf("minutes must not be negative, got %v", minutes)
	}
	if s.Daily == nil {
		s.Daily = map[string]float64{}
	}
	s.Daily[date] = minutes
	return nil
}

// MarkComplete logs the full minute target for the day.
func (s *State) MarkComplete(date string) error {
	return s.LogMinutes(date, s.TargetMinutes)
}

// MarkNotComplete logs zero minutes for the day.
func (s *State) MarkNotComplete(date string) error {
	return s.LogMinutes(date, 0)
}

// endExclusive is the first instant after the challenge's last day.
func (s *State) endExclusive(loc *time.Location) (time.Time, error) {
	return dateutil.EndOfDayExclusive(s.EndDate, loc)
}

// Evaluate derives the status from stored state and the current time. While
// now is before the end of the last day the challenge stays active no
// matter what the daily entries hold. Once the boundary has passed, the
// challenge completed only if every day of the span met the minute target;
// unlogged days fail. Calling it again with the same inputs is a no-op.
func (s *State) Evaluate(now time.Time, loc *time.Location) Status {
	boundary, err := s.endExclusive(loc)
	if err != nil {
		return s.Status
	}
	if now.Before(boundary) {
		s.Status = StatusActive
		return s.Status
	}

	s.Status = StatusCompleted
	for _, d := range dateutil.Enumerate(s.StartDate, s.EndDate, maxChallengeDays) {
		if s.Daily[d] < s.TargetMinutes {
			s.Status = StatusNotCompleted
			break
		}
	}
	return s.Status
}

// Remaining is the countdown to the end-of-challenge boundary, clamped at
// zero. Display only; it never drives a transition.
func (s *State) Remaining(now time.Time, loc *time.Location) time.Duration {
	boundary, err := s.endExclusive(loc)
	if err != nil {
		return 0
	}
	d := boundary.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// DaysMet counts the days of the span whose logged minutes reached the
// target.
func (s *State) DaysMet() int {
	met := 0
	for _, d := range dateutil.Enumerate(s.StartDate, s.EndDate, maxChallengeDays) {
		if s.Daily[d] >= s.TargetMinutes {
			met++
		}
	}
	return met
}

// Load reads the persisted challenge. An absent slot returns (nil, nil).
func Load(st *store.Store) (*State, error) {
	raw, ok, err := st.LookupSetting(settingKey)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if s.Daily == nil {
		s.Daily = map[string]float64{}
	}
	return &s, nil
}

// Save writes the challenge into its settings slot.
func (s *State) Save(st *store.Store) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	if err := st.SetSetting(settingKey, string(blob)); err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}

// Clear removes the challenge entirely. No terminal-state history is kept.
func Clear(st *store.Store) error {
	if err := st.DeleteSetting(settingKey); err != nil {
		return fmt.Errorf("clear challenge: %w", err)
	}
	return nil
}

// Begin starts a new challenge and persists it, refusing while another
// challenge is still active.
func Begin(st *store.Store, h store.Habit, durationDays int, targetMinutes float64, now time.Time, loc *time.Location) (*State, error) {
	existing, err := Load(st)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Evaluate(now, loc) == StatusActive {
		return nil, fmt.Errorf("a challenge for %q is already running", existing.HabitTitle)
	}
	s, err := New(h, durationDays, targetMinutes, dateutil.Civil(now, loc))
	if err != nil {
		return nil, err
	}
	if err := s.Save(st); err != nil {
		return nil, err
	}
	return s, nil
}
