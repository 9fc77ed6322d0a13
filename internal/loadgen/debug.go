package loadgen

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DebugLogger writes one line per request outcome in verbose mode. A nil
// *DebugLogger is valid and logs nothing, so callers never guard their
// log calls.
type DebugLogger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewDebugLogger(out io.Writer) *DebugLogger {
	return &DebugLogger{out: out}
}

// LogOutcome records the terminal state of request seq against target.
func (d *DebugLogger) LogOutcome(seq int, target string, outcome Outcome) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	latency := outcome.Latency.Round(time.Millisecond)
	if outcome.Err != nil {
		fmt.Fprintf(d.out, "[%d] HEAD %s -> %v (%s)\n", seq, target, outcome.Err, latency)
		return
	}
	fmt.Fprintf(d.out, "[%d] HEAD %s -> %d (%s)\n", seq, target, outcome.StatusCode, latency)
}
