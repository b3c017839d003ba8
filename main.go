package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"cadence/internal/cli"
	"cadence/internal/store"
)

var CLI struct {
	Version kong.VersionFlag
	Db      string `help:"Database file path." type:"path"`

	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Export cli.ExportCmd `cmd:"" help:"Export logs as CSV or JSON."`
	Report cli.ReportCmd `cmd:"" help:"Print or write a text report."`
	Habit  struct {
		List  cli.HabitListCmd  `cmd:"" help:"List habits with streaks."`
		Add   cli.HabitAddCmd   `cmd:"" help:"Add a new habit."`
		Pause cli.HabitPauseCmd `cmd:"" help:"Pause or resume a habit."`
	} `cmd:"" help:"Manage habits."`
	Seed cli.SeedCmd `cmd:"" help:"Install the default habit set."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("cadence"),
		kong.Description("Habit tracking dashboard with streaks, stats and challenges"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	dbPath := CLI.Db
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := ctx.Run(&cli.Context{Store: s}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
