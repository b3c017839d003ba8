package cli

import (
	"fmt"

	"cadence/internal/analytics"
	"cadence/internal/export"
)

type ReportCmd struct {
	From string `help:"Start date (YYYY-MM-DD). Defaults to the rolling window."`
	To   string `help:"End date (YYYY-MM-DD). Defaults to today."`
	Out  string `short:"o" help:"Write the report to a file instead of stdout." type:"path"`
}

func (c *ReportCmd) Run(ctx *Context) error {
	start, end, err := ctx.resolveRange(c.From, c.To)
	if err != nil {
		return err
	}

	habits, err := ctx.Store.ListHabits(true)
	if err != nil {
		return err
	}
	logs, err := ctx.Store.GetLogsInRange(start, end)
	if err != nil {
		return err
	}

	window := ctx.Store.RollingWindow()
	if c.Out != "" {
		if err := export.ToReport(habits, analytics.LogMap(logs), start, end, window, c.Out); err != nil {
			return err
		}
		fmt.Printf("Wrote report to %s\n", c.Out)
		return nil
	}

	fmt.Print(export.Report(habits, analytics.LogMap(logs), start, end, window))
	return nil
}
