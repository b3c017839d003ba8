// Package refresh runs a periodic re-derivation task. The dashboard needs
// two of these: a coarse one that notices the civil date rolling over and a
// fine one that drives the challenge countdown.
package refresh

import (
	"context"
	"sync"
	"time"
)

// Runner invokes a function at a fixed interval until stopped. Stop is
// idempotent and waits for an in-progress invocation to return, so no work
// leaks past teardown.
type Runner struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Start launches the runner. The function receives a context that is
// cancelled on Stop, so a slow tick can bail out early.
func Start(ctx context.Context, interval time.Duration, fn func(context.Context, time.Time)) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				fn(ctx, now)
			}
		}
	}()
	return r
}

// Stop cancels the runner and waits for it to wind down.
func (r *Runner) Stop() {
	r.stopOnce.Do(r.cancel)
	<-r.done
}
