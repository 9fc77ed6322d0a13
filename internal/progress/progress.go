// Package progress renders run telemetry on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// printEvery keeps the cadence at one progress line per thousand
// completed requests, so a 200k run does not flood slow terminals.
const printEvery = 1000

// Progress prints batch-completion telemetry. The progress line is
// rewritten in place with a carriage return so the final report starts
// on a clean line. Safe for concurrent use.
type Progress struct {
	quiet       bool
	output      io.Writer
	mu          sync.Mutex
	lastPrinted int
}

// New creates a Progress writing to stderr. quiet suppresses all output.
func New(quiet bool) *Progress {
	return &Progress{quiet: quiet, output: os.Stderr}
}

// SetOutput redirects output, for tests.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Observe reports that completed of total requests have reached a
// terminal state. Lines are throttled to one per printEvery requests;
// the final observation always prints.
func (p *Progress) Observe(completed, total int) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if completed < total && completed-p.lastPrinted < printEvery {
		return
	}
	p.lastPrinted = completed

	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}
	fmt.Fprintf(p.output, "\r\033[KProgress: %d/%d (%.1f%%)", completed, total, percent)
}

// Clear erases the in-place progress line.
func (p *Progress) Clear() {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.output, "\r\033[K")
}

// Printf prints a full line, clearing any in-place progress first.
func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.output, "\r\033[K"+format+"\n", args...)
}
