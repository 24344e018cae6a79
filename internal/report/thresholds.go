package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Thresholds defines pass/fail criteria for a run.
type Thresholds struct {
	ResponseTime *ResponseTimeThresholds `yaml:"responseTime"`
	ErrorRate    string                  `yaml:"errorRate"` // e.g. "1%"
}

// ResponseTimeThresholds defines latency limits over successful samples.
type ResponseTimeThresholds struct {
	Avg time.Duration `yaml:"avg"`
	P50 time.Duration `yaml:"p50"`
	P95 time.Duration `yaml:"p95"`
	P99 time.Duration `yaml:"p99"`
}

// ThresholdResult represents the outcome of a single threshold check.
type ThresholdResult struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
}

// ThresholdResults contains all threshold check results.
type ThresholdResults struct {
	Passed  bool              `json:"passed"`
	Results []ThresholdResult `json:"results"`
}

// Validate reports malformed thresholds before a run starts.
func (t *Thresholds) Validate() error {
	if t == nil || t.ErrorRate == "" {
		return nil
	}
	if _, err := parsePercentage(t.ErrorRate); err != nil {
		return fmt.Errorf("thresholds.errorRate: %w", err)
	}
	return nil
}

// Check evaluates all thresholds against a summary.
func (t *Thresholds) Check(s *Summary) *ThresholdResults {
	if t == nil {
		return &ThresholdResults{Passed: true, Results: nil}
	}

	results := &ThresholdResults{
		Passed:  true,
		Results: make([]ThresholdResult, 0),
	}

	if t.ResponseTime != nil {
		results.checkResponseTimes(t.ResponseTime, s)
	}

	if t.ErrorRate != "" {
		results.checkErrorRate(t.ErrorRate, s)
	}

	return results
}

func (r *ThresholdResults) checkResponseTimes(thresholds *ResponseTimeThresholds, s *Summary) {
	checks := []struct {
		name      string
		threshold time.Duration
		actualMs  float64
	}{
		{"response_time.avg", thresholds.Avg, s.AverageResponseTime},
		{"response_time.p50", thresholds.P50, s.P50ResponseTime},
		{"response_time.p95", thresholds.P95, s.P95ResponseTime},
		{"response_time.p99", thresholds.P99, s.P99ResponseTime},
	}

	for _, check := range checks {
		if check.threshold == 0 {
			continue
		}

		limitMs := float64(check.threshold) / float64(time.Millisecond)
		passed := check.actualMs < limitMs
		if !passed {
			r.Passed = false
		}

		r.Results = append(r.Results, ThresholdResult{
			Name:      check.name,
			Passed:    passed,
			Threshold: FormatMillis(limitMs),
			Actual:    FormatMillis(check.actualMs),
		})
	}
}

func (r *ThresholdResults) checkErrorRate(limit string, s *Summary) {
	thresholdRate, err := parsePercentage(limit)
	if err != nil {
		return
	}

	passed := s.ErrorRate < thresholdRate
	if !passed {
		r.Passed = false
	}

	r.Results = append(r.Results, ThresholdResult{
		Name:      "error_rate",
		Passed:    passed,
		Threshold: limit,
		Actual:    fmt.Sprintf("%.2f%%", s.ErrorRate),
	})
}

func parsePercentage(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("invalid percentage format: %s", s)
	}
	s = strings.TrimSuffix(s, "%")
	return strconv.ParseFloat(s, 64)
}

// FormatMillis formats a millisecond value for display.
func FormatMillis(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.0fµs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.1fms", ms)
	case ms < 60000:
		return fmt.Sprintf("%.2fs", ms/1000)
	default:
		d := time.Duration(ms * float64(time.Millisecond))
		return d.Round(time.Second).String()
	}
}

// Violations returns only the failed threshold results.
func (r *ThresholdResults) Violations() []ThresholdResult {
	violations := make([]ThresholdResult, 0)
	for _, result := range r.Results {
		if !result.Passed {
			violations = append(violations, result)
		}
	}
	return violations
}
