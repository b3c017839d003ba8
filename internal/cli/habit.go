package cli

import (
	"fmt"

	"cadence/internal/analytics"
	"cadence/internal/dateutil"
	"cadence/internal/store"
)

type HabitListCmd struct {
	All bool `short:"a" help:"Include paused habits."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.ListHabits(c.All)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	loc := ctx.Store.GetProfile().Location()
	today := dateutil.Today(loc)
	window := ctx.Store.RollingWindow()
	start, _ := dateutil.AddDays(today, -(window - 1))
	logs, err := ctx.Store.GetLogsInRange(start, today)
	if err != nil {
		// Analytics degrade to "no data" on a failed fetch.
		logs = nil
	}
	logMap := analytics.LogMap(logs)

	fmt.Println("Habits:")
	for _, h := range habits {
		status := "active"
		if !h.Active {
			status = "paused"
		}
		target := fmt.Sprintf("%s x%g", h.TargetType, h.TargetValue)
		if h.Checkbox() {
			target = h.TargetType
		}
		stats := analytics.StreakStats(h, logMap, today, window)
		fmt.Printf("  [%s] %s (%s, %s) streak %d, longest %d, %d%%\n",
			status, h.Title, h.Category, target, stats.Current, stats.Longest, stats.CompletionPercent)
		fmt.Printf("      ID: %s\n", h.ID)
	}
	return nil
}

type HabitAddCmd struct {
	Title  string  `arg:"" help:"Habit title."`
	Target float64 `short:"t" help:"Target value; 1 means a plain checkbox." default:"1"`
	Weekly bool    `short:"w" help:"Track weekly instead of daily."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	targetType := store.TargetDaily
	if c.Weekly {
		targetType = store.TargetWeekly
	}
	h, err := ctx.Store.CreateHabit(c.Title, store.CategoryCustom, targetType, c.Target)
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (ID: %s)\n", h.Title, h.ID)
	return nil
}

type HabitPauseCmd struct {
	Habit  string `arg:"" help:"Habit ID or title."`
	Resume bool   `short:"r" help:"Resume instead of pause."`
}

func (c *HabitPauseCmd) Run(ctx *Context) error {
	h, err := ctx.findHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Store.SetHabitActive(*h, c.Resume); err != nil {
		return err
	}
	verb := "Paused"
	if c.Resume {
		verb = "Resumed"
	}
	fmt.Printf("%s habit: %s\n", verb, h.Title)
	return nil
}

type SeedCmd struct{}

func (c *SeedCmd) Run(ctx *Context) error {
	n, err := ctx.Store.SeedDefaultHabitsIfEmpty()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("Store already has habits; nothing seeded")
		return nil
	}
	fmt.Printf("Seeded %d default habits\n", n)
	return nil
}
