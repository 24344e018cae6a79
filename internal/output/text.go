// Package output renders reports for the console and exports them as JSON.
package output

import (
	"fmt"
	"io"
	"time"

	"loadprobe/internal/report"
)

// FormatText writes a human-readable report. Styling is applied when styled
// is set; otherwise the output is plain text suitable for logs and pipes.
func FormatText(w io.Writer, r *report.Report, thresholds *report.ThresholdResults, styled bool) {
	p := painter(styled)
	s := r.Summary

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, p.paint(titleStyle, "loadprobe - Performance Report"))
	fmt.Fprintln(w, "==============================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Duration:       %v\n", secondsToDuration(s.TestDuration))
	fmt.Fprintf(w, "Total Requests: %s\n", formatNumber(s.TotalRequests))
	fmt.Fprintf(w, "Success Rate:   %s (%s / %s)\n",
		p.rate(s.SuccessRate, fmt.Sprintf("%.1f%%", s.SuccessRate)),
		formatNumber(s.SuccessfulRequests), formatNumber(s.TotalRequests))
	fmt.Fprintf(w, "Error Rate:     %.1f%%\n", s.ErrorRate)
	fmt.Fprintf(w, "Requests/sec:   %.1f\n", s.RequestsPerSecond)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, p.paint(headingStyle, "Response Times (successful requests):"))
	fmt.Fprintf(w, "  Min:    %s\n", report.FormatMillis(s.MinResponseTime))
	fmt.Fprintf(w, "  Avg:    %s\n", report.FormatMillis(s.AverageResponseTime))
	fmt.Fprintf(w, "  P50:    %s\n", report.FormatMillis(s.P50ResponseTime))
	fmt.Fprintf(w, "  P95:    %s\n", report.FormatMillis(s.P95ResponseTime))
	fmt.Fprintf(w, "  P99:    %s\n", report.FormatMillis(s.P99ResponseTime))
	fmt.Fprintf(w, "  Max:    %s\n", report.FormatMillis(s.MaxResponseTime))
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, p.paint(headingStyle, "By Endpoint:"))
	for _, path := range r.SortedEndpoints() {
		ep := r.EndpointBreakdown[path]
		fmt.Fprintf(w, "  %-24s %s reqs   avg=%s  p95=%s  success=%s\n",
			path, formatNumber(ep.Requests),
			report.FormatMillis(ep.AverageResponseTime),
			report.FormatMillis(ep.P95ResponseTime),
			p.rate(ep.SuccessRate, fmt.Sprintf("%.1f%%", ep.SuccessRate)))
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, p.paint(headingStyle, "Recommendations:"))
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  %s %s\n", p.paint(dimStyle, "-"), rec)
		}
	}

	if thresholds != nil && len(thresholds.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, p.paint(headingStyle, "Thresholds:"))
		for _, result := range thresholds.Results {
			symbol := p.paint(goodStyle, "✓")
			if !result.Passed {
				symbol = p.paint(badStyle, "✗")
			}
			fmt.Fprintf(w, "  %s %s < %s (actual: %s)\n",
				symbol, result.Name, result.Threshold, result.Actual)
		}
	}
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second)).Round(time.Millisecond)
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
