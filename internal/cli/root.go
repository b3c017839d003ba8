package cli

import (
	"fmt"

	"cadence/internal/dateutil"
	"cadence/internal/store"
)

// Context carries the opened store into every command's Run.
type Context struct {
	Store *store.Store
}

// resolveRange fills in the default export range: the trailing rolling
// window ending today in the profile's timezone.
func (ctx *Context) resolveRange(from, to string) (start, end string, err error) {
	loc := ctx.Store.GetProfile().Location()

	end = to
	if end == "" {
		end = dateutil.Today(loc)
	} else if _, _, _, err := dateutil.Parse(end); err != nil {
		return "", "", err
	}

	start = from
	if start == "" {
		start, err = dateutil.AddDays(end, -(ctx.Store.RollingWindow() - 1))
		if err != nil {
			return "", "", err
		}
	} else if _, _, _, err := dateutil.Parse(start); err != nil {
		return "", "", err
	}

	if dateutil.Compare(start, end) > 0 {
		return "", "", fmt.Errorf("start %s is after end %s", start, end)
	}
	return start, end, nil
}

// findHabit resolves a habit by ID or, failing that, by exact title.
func (ctx *Context) findHabit(ref string) (*store.Habit, error) {
	if h, err := ctx.Store.GetHabit(ref); err == nil {
		return h, nil
	}
	habits, err := ctx.Store.ListHabits(true)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if h.Title == ref {
			return &h, nil
		}
	}
	return nil, fmt.Errorf("no habit with id or title %q", ref)
}
