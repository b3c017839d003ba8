package analytics

import "cadence/internal/store"

// Status is the canonical three-valued per-habit day status. "none" means
// the user has not evaluated the habit that day, which is distinct from
// "skip" (explicitly marked incomplete).
type Status string

const (
	StatusDone Status = "done"
	StatusSkip Status = "skip"
	StatusNone Status = "none"
)

// Resolve normalizes a stored entry into a canonical status. Entries come
// in two formats: the current {status, count} shape and a legacy
// {done: bool} shape. Every read of a stored status must go through here
// so both formats behave identically downstream.
func Resolve(e *store.RawEntry) Status {
	if e == nil {
		return StatusNone
	}
	switch Status(e.Status) {
	case StatusDone, StatusSkip, StatusNone:
		return Status(e.Status)
	}
	if e.Done != nil && *e.Done {
		return StatusDone
	}
	return StatusNone
}

// resolveFor resolves the status of one habit within one day's log. A nil
// log or an absent map entry both read as none.
func resolveFor(log *store.DayLog, habitID string) Status {
	if log == nil {
		return StatusNone
	}
	e, ok := log.HabitStatus[habitID]
	if !ok {
		return StatusNone
	}
	return Resolve(&e)
}
