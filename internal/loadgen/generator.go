// Package loadgen drives batches of concurrent HEAD requests against a
// WebDAV server and folds their outcomes into shared run statistics.
package loadgen

import (
	"context"
	"fmt"
	"sync"

	"davload/internal/collector"
	"davload/internal/config"
	"davload/internal/ratelimit"
)

// Observer receives completion counts after each folded batch. Counts are
// telemetry only; the statistics invariants never depend on them.
type Observer interface {
	Observe(completed, total int)
}

// Generator owns the full lifecycle of one stress run: target construction,
// bounded dispatch, outcome classification and aggregation. Construct with
// New; the zero value is not usable.
type Generator struct {
	cfg     config.Run
	client  Client
	targets *Targets

	// Observer, Debug and Pacer are optional and may be set between New
	// and Run. A nil Pacer dispatches at full speed.
	Observer Observer
	Debug    *DebugLogger
	Pacer    *ratelimit.Pacer
}

// New validates cfg and prepares a generator. Configuration errors surface
// here, before any request is dispatched.
func New(cfg config.Run) (*Generator, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Generator{
		cfg:     cfg,
		client:  client,
		targets: NewTargets(cfg.BaseURL),
	}, nil
}

// Config returns the normalized configuration the generator runs with.
func (g *Generator) Config() config.Run {
	return g.cfg
}

// Run executes the load test until every request completes or ctx is
// cancelled. Requests go out in fully synchronized batches of at most
// Concurrency: batch N+1 starts only after every outcome of batch N has
// been folded. The returned summary covers the requests that actually ran,
// so a cancelled run reports partial results rather than none.
func (g *Generator) Run(ctx context.Context) *collector.Summary {
	defer g.client.Close()

	stats := collector.NewStats(g.cfg.Requests)

	completed := 0
	for completed < g.cfg.Requests && ctx.Err() == nil {
		n := g.cfg.Requests - completed
		if n > g.cfg.Concurrency {
			n = g.cfg.Concurrency
		}

		outcomes := g.runBatch(ctx, completed, n)
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				stats.RecordNetworkError(outcome.Latency)
			} else {
				stats.RecordStatus(outcome.StatusCode, outcome.Latency)
			}
		}
		completed += len(outcomes)

		if g.Observer != nil {
			g.Observer.Observe(completed, g.cfg.Requests)
		}

		// A short batch means pacing was interrupted by cancellation;
		// stop issuing batches rather than spin until ctx reports done.
		if len(outcomes) < n {
			break
		}
	}

	return stats.Finalize()
}

// runBatch dispatches up to n requests and waits for all of them. Each
// goroutine writes into its own slot, so the fold after Wait needs no
// further synchronization. The returned slice is shorter than n only when
// pacing is interrupted by cancellation; slots never dispatched are not
// counted as outcomes.
func (g *Generator) runBatch(ctx context.Context, base, n int) []Outcome {
	results := make([]Outcome, n)

	var wg sync.WaitGroup
	dispatched := 0
	for i := 0; i < n; i++ {
		if err := g.Pacer.Wait(ctx); err != nil {
			break
		}
		dispatched++

		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[slot] = Outcome{Err: fmt.Errorf("panic: %v", r)}
				}
			}()

			target := g.targets.Next()
			outcome := g.client.Head(ctx, target)
			g.Debug.LogOutcome(base+slot+1, target, outcome)
			results[slot] = outcome
		}(i)
	}
	wg.Wait()

	return results[:dispatched]
}
