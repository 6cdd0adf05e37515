// Package jobs runs the engine's background loops: the periodic proposal
// sweep and time-based decay of stale vendor aliases.
package jobs

import (
	"context"
	"sync"
	"time"

	"expensematch/internal/logger"
	"expensematch/internal/services"
)

// Runner owns the background job goroutines. Start launches them and Stop
// waits for them to drain.
type Runner struct {
	proposals services.ProposalServicer
	aliases   services.AliasServicer

	generateInterval time.Duration
	decayInterval    time.Duration
	staleAfter       time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a job runner with the given intervals. An interval of
// zero disables that job.
func NewRunner(proposals services.ProposalServicer, aliases services.AliasServicer, generateInterval, decayInterval, staleAfter time.Duration) *Runner {
	return &Runner{
		proposals:        proposals,
		aliases:          aliases,
		generateInterval: generateInterval,
		decayInterval:    decayInterval,
		staleAfter:       staleAfter,
	}
}

// Start launches the background loops. Each loop runs once at startup and
// then on its ticker.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	if r.generateInterval > 0 {
		r.wg.Add(1)
		go r.loop(ctx, "proposal_sweep", r.generateInterval, func() {
			if err := r.proposals.GenerateSweep(); err != nil {
				logger.Get().Errorw("proposal sweep failed", "error", err)
			}
		})
	}

	if r.decayInterval > 0 {
		r.wg.Add(1)
		go r.loop(ctx, "alias_decay", r.decayInterval, func() {
			cutoff := time.Now().Add(-r.staleAfter)
			decayed, err := r.aliases.DecayStale(cutoff)
			if err != nil {
				logger.Get().Errorw("alias decay failed", "error", err)
				return
			}
			if decayed > 0 {
				logger.Get().Infow("decayed stale aliases", "count", decayed)
			}
		})
	}
}

// Stop cancels the loops and blocks until they exit.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, name string, interval time.Duration, run func()) {
	defer r.wg.Done()

	logger.Get().Infow("background job started", "job", name, "interval", interval)

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Get().Infow("background job stopped", "job", name)
			return
		case <-ticker.C:
			run()
		}
	}
}
