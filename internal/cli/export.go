package cli

import (
	"fmt"

	"cadence/internal/analytics"
	"cadence/internal/export"
)

type ExportCmd struct {
	Format string `short:"f" help:"Output format (csv|json)." enum:"csv,json" default:"csv"`
	From   string `help:"Start date (YYYY-MM-DD). Defaults to the rolling window."`
	To     string `help:"End date (YYYY-MM-DD). Defaults to today."`
	Out    string `short:"o" help:"Output file path." type:"path" required:""`
}

func (c *ExportCmd) Run(ctx *Context) error {
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
	logMap := analytics.LogMap(logs)

	switch c.Format {
	case "json":
		err = export.ToJSON(habits, logMap, start, end, c.Out)
	default:
		err = export.ToCSV(habits, logMap, start, end, c.Out)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %s..%s to %s\n", start, end, c.Out)
	return nil
}
