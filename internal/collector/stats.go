// Package collector aggregates request outcomes and produces run reports.
package collector

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// ErrorLabel is the sentinel status label for transport-level failures
// (DNS, connect, TLS, timeout). It is kept distinct from every numeric
// status-code label.
const ErrorLabel = "NetworkError"

// Stats accumulates outcomes for a single run. All recording methods
// are safe for concurrent use; an outcome is never dropped or counted
// twice.
type Stats struct {
	mu         sync.Mutex
	total      int
	successful int
	failed     int
	labels     map[string]int
	latency    *hdrhistogram.Histogram
	clock      Clock
	started    time.Time
}

// NewStats creates a Stats for a run of total configured requests and
// stamps the start time.
func NewStats(total int) *Stats {
	return NewStatsWithClock(total, RealClock{})
}

// NewStatsWithClock is NewStats with an injectable clock.
func NewStatsWithClock(total int, clock Clock) *Stats {
	return &Stats{
		total:   total,
		labels:  make(map[string]int),
		latency: hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3),
		clock:   clock,
		started: clock.Now(),
	}
}

// RecordStatus folds one completed HTTP exchange into the aggregate.
// Status codes in the 2xx range count as successful, everything else
// as failed; the code becomes the outcome's status label.
func (s *Stats) RecordStatus(code int, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code/100 == 2 {
		s.successful++
	} else {
		s.failed++
	}
	s.labels[strconv.Itoa(code)]++
	s.recordLatency(latency)
}

// RecordNetworkError folds one transport-level failure into the
// aggregate under ErrorLabel.
func (s *Stats) RecordNetworkError(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	s.labels[ErrorLabel]++
	s.recordLatency(latency)
}

func (s *Stats) recordLatency(d time.Duration) {
	// Only negative or absurdly large values are rejected; both are
	// fine to drop from the latency distribution.
	_ = s.latency.RecordValue(d.Microseconds())
}

// Completed returns the number of outcomes folded so far.
func (s *Stats) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successful + s.failed
}

// Successful returns the count of 2xx outcomes so far.
func (s *Stats) Successful() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successful
}

// Failed returns the count of non-2xx and transport-error outcomes so far.
func (s *Stats) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// StatusCounts returns a copy of the status-label counts.
func (s *Stats) StatusCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, len(s.labels))
	for label, n := range s.labels {
		counts[label] = n
	}
	return counts
}

// Finalize stamps the end time and derives the report summary.
// Requests/sec is computed against outcomes actually folded and left
// at zero when no time has elapsed. Safe to call on a partial run.
func (s *Stats) Finalize() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended := s.clock.Now()
	sum := &Summary{
		Started:       s.started,
		Ended:         ended,
		Duration:      ended.Sub(s.started),
		TotalRequests: s.total,
		Completed:     s.successful + s.failed,
		Successful:    s.successful,
		Failed:        s.failed,
		StatusCounts:  make(map[string]int, len(s.labels)),
		Latency:       latencyMetrics(s.latency),
	}
	for label, n := range s.labels {
		sum.StatusCounts[label] = n
	}
	if sum.Duration > 0 {
		sum.RequestsPerSec = float64(sum.Completed) / sum.Duration.Seconds()
	}
	return sum
}
