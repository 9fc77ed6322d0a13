package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// FormatText writes the run report in human-readable form. Status
// labels are listed in ascending label order.
func FormatText(w io.Writer, s *Summary) {
	if s.Completed == 0 {
		fmt.Fprintln(w, "No requests completed")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "davload - WebDAV Stress Test Results")
	fmt.Fprintln(w, "====================================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Started:        %s\n", s.Started.Format(time.RFC3339))
	fmt.Fprintf(w, "Ended:          %s\n", s.Ended.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:       %v\n", s.Duration.Round(time.Millisecond))
	if s.Completed < s.TotalRequests {
		fmt.Fprintf(w, "Requests Sent:  %s of %s\n",
			formatNumber(s.Completed), formatNumber(s.TotalRequests))
	} else {
		fmt.Fprintf(w, "Requests Sent:  %s\n", formatNumber(s.Completed))
	}
	fmt.Fprintf(w, "Successful:     %s\n", formatNumber(s.Successful))
	fmt.Fprintf(w, "Failed:         %s\n", formatNumber(s.Failed))
	if s.Duration > 0 {
		fmt.Fprintf(w, "Requests/sec:   %.1f\n", s.RequestsPerSec)
	} else {
		fmt.Fprintln(w, "Requests/sec:   n/a")
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Response Times:")
	fmt.Fprintf(w, "  Min:    %s\n", FormatDuration(s.Latency.Min))
	fmt.Fprintf(w, "  Avg:    %s\n", FormatDuration(s.Latency.Avg))
	fmt.Fprintf(w, "  P50:    %s\n", FormatDuration(s.Latency.P50))
	fmt.Fprintf(w, "  P90:    %s\n", FormatDuration(s.Latency.P90))
	fmt.Fprintf(w, "  P95:    %s\n", FormatDuration(s.Latency.P95))
	fmt.Fprintf(w, "  P99:    %s\n", FormatDuration(s.Latency.P99))
	fmt.Fprintf(w, "  Max:    %s\n", FormatDuration(s.Latency.Max))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Status Codes:")
	for _, label := range s.Labels() {
		fmt.Fprintf(w, "  %-12s %s\n", label+":", formatNumber(s.StatusCounts[label]))
	}
}

// FormatJSON writes the run report as one indented JSON object.
// requestsPerSec is omitted when the run had zero duration.
func FormatJSON(w io.Writer, s *Summary) {
	output := struct {
		StartedAt      string              `json:"startedAt"`
		EndedAt        string              `json:"endedAt"`
		Duration       string              `json:"duration"`
		TotalRequests  int                 `json:"totalRequests"`
		RequestsSent   int                 `json:"requestsSent"`
		Successful     int                 `json:"successful"`
		Failed         int                 `json:"failed"`
		RequestsPerSec float64             `json:"requestsPerSec,omitempty"`
		ResponseTimes  jsonDurationMetrics `json:"responseTimes"`
		StatusCounts   map[string]int      `json:"statusCounts"`
	}{
		StartedAt:      s.Started.Format(time.RFC3339),
		EndedAt:        s.Ended.Format(time.RFC3339),
		Duration:       s.Duration.Round(time.Millisecond).String(),
		TotalRequests:  s.TotalRequests,
		RequestsSent:   s.Completed,
		Successful:     s.Successful,
		Failed:         s.Failed,
		RequestsPerSec: s.RequestsPerSec,
		ResponseTimes:  toJSONDurationMetrics(s.Latency),
		StatusCounts:   s.StatusCounts,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output) // stdout errors are unrecoverable
}

type jsonDurationMetrics struct {
	Min string `json:"min"`
	Max string `json:"max"`
	Avg string `json:"avg"`
	P50 string `json:"p50"`
	P90 string `json:"p90"`
	P95 string `json:"p95"`
	P99 string `json:"p99"`
}

func toJSONDurationMetrics(d DurationMetrics) jsonDurationMetrics {
	return jsonDurationMetrics{
		Min: FormatDuration(d.Min),
		Max: FormatDuration(d.Max),
		Avg: FormatDuration(d.Avg),
		P50: FormatDuration(d.P50),
		P90: FormatDuration(d.P90),
		P95: FormatDuration(d.P95),
		P99: FormatDuration(d.P99),
	}
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

func formatNumber(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}
	return formatNumber(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
