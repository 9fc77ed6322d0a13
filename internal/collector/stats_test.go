package collector

import (
	"sync"
	"testing"
	"time"
)

func TestStats_RecordStatus_Classification(t *testing.T) {
	tests := []struct {
		code    int
		success bool
	}{
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{199, false},
		{301, false},
		{401, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		s := NewStats(1)
		s.RecordStatus(tt.code, time.Millisecond)
		if got := s.Successful() == 1; got != tt.success {
			t.Errorf("code %d: classified success=%v, expected %v", tt.code, got, tt.success)
		}
	}
}

func TestStats_CountInvariants(t *testing.T) {
	s := NewStats(10)
	for i := 0; i < 4; i++ {
		s.RecordStatus(200, time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		s.RecordStatus(404, time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		s.RecordNetworkError(time.Millisecond)
	}

	if s.Completed() != 10 {
		t.Fatalf("expected 10 completed, got %d", s.Completed())
	}
	if s.Successful()+s.Failed() != s.Completed() {
		t.Errorf("successful(%d) + failed(%d) != completed(%d)",
			s.Successful(), s.Failed(), s.Completed())
	}

	labelSum := 0
	for _, n := range s.StatusCounts() {
		labelSum += n
	}
	if labelSum != s.Completed() {
		t.Errorf("label counts sum to %d, expected %d", labelSum, s.Completed())
	}
}

func TestStats_NetworkErrorSentinel(t *testing.T) {
	s := NewStats(2)
	s.RecordNetworkError(time.Millisecond)
	s.RecordNetworkError(2 * time.Millisecond)

	counts := s.StatusCounts()
	if counts[ErrorLabel] != 2 {
		t.Errorf("expected %s=2, got %d", ErrorLabel, counts[ErrorLabel])
	}
	if len(counts) != 1 {
		t.Errorf("expected a single sentinel label, got %v", counts)
	}
	if s.Successful() != 0 || s.Failed() != 2 {
		t.Errorf("expected 0 successful / 2 failed, got %d / %d", s.Successful(), s.Failed())
	}
}

func TestStats_ThreadSafety(t *testing.T) {
	s := NewStats(5000)
	var wg sync.WaitGroup
	numGoroutines := 100
	recordsPerGoroutine := 50

	// Hammer the aggregate from many goroutines; every record must land.
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < recordsPerGoroutine; j++ {
				if j%2 == 0 {
					s.RecordStatus(200, time.Millisecond)
				} else {
					s.RecordNetworkError(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()

	if s.Completed() != 5000 {
		t.Fatalf("expected 5000 outcomes, got %d (lost updates)", s.Completed())
	}
	if s.Successful() != 2500 || s.Failed() != 2500 {
		t.Errorf("expected 2500/2500 split, got %d/%d", s.Successful(), s.Failed())
	}

	counts := s.StatusCounts()
	if counts["200"] != 2500 {
		t.Errorf("expected 200=2500, got %d", counts["200"])
	}
	if counts[ErrorLabel] != 2500 {
		t.Errorf("expected %s=2500, got %d", ErrorLabel, counts[ErrorLabel])
	}
}

func TestStats_FinalizeComputesRates(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewStatsWithClock(100, clock)

	for i := 0; i < 100; i++ {
		s.RecordStatus(200, 10*time.Millisecond)
	}
	clock.Advance(2 * time.Second)

	sum := s.Finalize()
	if sum.Duration != 2*time.Second {
		t.Errorf("expected 2s duration, got %v", sum.Duration)
	}
	if sum.RequestsPerSec != 50.0 {
		t.Errorf("expected 50 rps, got %f", sum.RequestsPerSec)
	}
	if !sum.Ended.Equal(sum.Started.Add(2 * time.Second)) {
		t.Errorf("end timestamp %v does not match start %v + 2s", sum.Ended, sum.Started)
	}
}

func TestStats_FinalizeZeroDuration(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewStatsWithClock(5, clock)
	for i := 0; i < 5; i++ {
		s.RecordStatus(200, time.Millisecond)
	}

	sum := s.Finalize()
	if sum.Duration != 0 {
		t.Fatalf("expected zero duration, got %v", sum.Duration)
	}
	if sum.RequestsPerSec != 0 {
		t.Errorf("requests/sec must stay zero at zero duration, got %f", sum.RequestsPerSec)
	}
}

func TestStats_FinalizePartialRun(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewStatsWithClock(1000, clock)

	for i := 0; i < 120; i++ {
		s.RecordStatus(200, time.Millisecond)
	}
	clock.Advance(time.Second)

	sum := s.Finalize()
	if sum.TotalRequests != 1000 {
		t.Errorf("expected configured total 1000, got %d", sum.TotalRequests)
	}
	if sum.Completed != 120 {
		t.Errorf("expected 120 completed, got %d", sum.Completed)
	}
	// Rate reflects work actually done, not the configured total.
	if sum.RequestsPerSec != 120.0 {
		t.Errorf("expected 120 rps, got %f", sum.RequestsPerSec)
	}
}

func TestStats_LatencyMetrics(t *testing.T) {
	s := NewStats(3)
	s.RecordStatus(200, 10*time.Millisecond)
	s.RecordStatus(200, 20*time.Millisecond)
	s.RecordStatus(200, 30*time.Millisecond)

	sum := s.Finalize()

	// The histogram keeps 3 significant figures, so allow a little slack.
	within := func(got, want time.Duration) bool {
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		return diff <= time.Millisecond
	}
	if !within(sum.Latency.Min, 10*time.Millisecond) {
		t.Errorf("min %v, expected ~10ms", sum.Latency.Min)
	}
	if !within(sum.Latency.Max, 30*time.Millisecond) {
		t.Errorf("max %v, expected ~30ms", sum.Latency.Max)
	}
	if !within(sum.Latency.Avg, 20*time.Millisecond) {
		t.Errorf("avg %v, expected ~20ms", sum.Latency.Avg)
	}
	if !within(sum.Latency.P99, 30*time.Millisecond) {
		t.Errorf("p99 %v, expected ~30ms", sum.Latency.P99)
	}
}

func TestStats_FinalizeEmpty(t *testing.T) {
	s := NewStats(0)
	sum := s.Finalize()

	if sum.Completed != 0 {
		t.Errorf("expected 0 completed, got %d", sum.Completed)
	}
	if len(sum.StatusCounts) != 0 {
		t.Errorf("expected empty status counts, got %v", sum.StatusCounts)
	}
	if sum.Latency != (DurationMetrics{}) {
		t.Errorf("expected zero latency metrics, got %+v", sum.Latency)
	}
}

func TestSummary_LabelsSorted(t *testing.T) {
	sum := &Summary{StatusCounts: map[string]int{
		"500":      1,
		"200":      2,
		ErrorLabel: 3,
		"404":      4,
	}}

	labels := sum.Labels()
	expected := []string{"200", "404", "500", ErrorLabel}
	if len(labels) != len(expected) {
		t.Fatalf("expected %d labels, got %d", len(expected), len(labels))
	}
	for i, label := range expected {
		if labels[i] != label {
			t.Errorf("labels[%d] = %s, expected %s", i, labels[i], label)
		}
	}
}
