package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cadence/internal/challenge"
	"cadence/internal/refresh"
	"cadence/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	loc := ctx.Store.GetProfile().Location()

	// A coarse background evaluator persists the challenge outcome once per
	// minute, so a transition is not lost if the program dies before the
	// per-second UI tick gets to save it.
	runner := refresh.Start(context.Background(), time.Minute, func(_ context.Context, now time.Time) {
		state, err := challenge.Load(ctx.Store)
		if err != nil || state == nil {
			return
		}
		prev := state.Status
		if state.Evaluate(now, loc) != prev {
			state.Save(ctx.Store)
		}
	})
	defer runner.Stop()

	p := tea.NewProgram(tui.NewApp(ctx.Store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
