package collector

import (
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Summary is the finalized, read-only view of one run.
type Summary struct {
	Started        time.Time
	Ended          time.Time
	Duration       time.Duration
	TotalRequests  int // configured
	Completed      int // outcomes folded; equals TotalRequests on a full run
	Successful     int
	Failed         int
	RequestsPerSec float64 // 0 when Duration == 0
	StatusCounts   map[string]int
	Latency        DurationMetrics
}

// DurationMetrics holds response-time statistics.
type DurationMetrics struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
	P50 time.Duration
	P90 time.Duration
	P95 time.Duration
	P99 time.Duration
}

// Labels returns the status labels sorted ascending. Numeric codes are
// all three digits, so lexicographic order is numeric order, with the
// transport-error sentinel sorting after them.
func (s *Summary) Labels() []string {
	labels := make([]string, 0, len(s.StatusCounts))
	for label := range s.StatusCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func latencyMetrics(h *hdrhistogram.Histogram) DurationMetrics {
	if h.TotalCount() == 0 {
		return DurationMetrics{}
	}
	return DurationMetrics{
		Min: time.Duration(h.Min()) * time.Microsecond,
		Max: time.Duration(h.Max()) * time.Microsecond,
		Avg: time.Duration(h.Mean() * float64(time.Microsecond)),
		P50: time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P90: time.Duration(h.ValueAtQuantile(90)) * time.Microsecond,
		P95: time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99: time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
	}
}
