// Package ratelimit paces request dispatch.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer spaces out request dispatches to a fixed requests-per-second
// rate. Pacing is a rate-shaping hint for the dispatch loop, never a
// correctness mechanism; a nil Pacer never waits.
type Pacer struct {
	limiter *rate.Limiter
}

// New creates a Pacer allowing rps dispatches per second with a burst
// of the same size. rps <= 0 returns nil, which disables pacing.
func New(rps int) *Pacer {
	if rps <= 0 {
		return nil
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), rps)}
}

// Wait blocks until the next dispatch is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
