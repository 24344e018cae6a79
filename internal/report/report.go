// Package report computes summary statistics, per-endpoint breakdowns and
// recommendations from a run's samples.
package report

import (
	"errors"
	"sort"
	"time"

	"loadprobe/internal/core"
)

var (
	// ErrEmptyResult is returned when there are no samples at all.
	ErrEmptyResult = errors.New("no samples collected")
	// ErrNoSuccessfulSamples is returned when every sample failed, leaving
	// nothing to rank for percentiles.
	ErrNoSuccessfulSamples = errors.New("no successful samples collected")
)

// Summary contains aggregate statistics. Latency figures are milliseconds
// over successful samples only; rates are percentages over all samples.
type Summary struct {
	TotalRequests       int     `json:"totalRequests"`
	SuccessfulRequests  int     `json:"successfulRequests"`
	FailedRequests      int     `json:"failedRequests"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	MinResponseTime     float64 `json:"minResponseTime"`
	MaxResponseTime     float64 `json:"maxResponseTime"`
	P50ResponseTime     float64 `json:"p50ResponseTime"`
	P95ResponseTime     float64 `json:"p95ResponseTime"`
	P99ResponseTime     float64 `json:"p99ResponseTime"`
	SuccessRate         float64 `json:"successRate"`
	ErrorRate           float64 `json:"errorRate"`
	RequestsPerSecond   float64 `json:"requestsPerSecond"`
	TestDuration        float64 `json:"testDuration"` // seconds
}

// EndpointStats contains per-path statistics over all samples of that path,
// successes and failures alike.
type EndpointStats struct {
	Requests            int         `json:"requests"`
	AverageResponseTime float64     `json:"averageResponseTime"`
	P95ResponseTime     float64     `json:"p95ResponseTime"`
	SuccessRate         float64     `json:"successRate"`
	Methods             []string    `json:"methods"`
	StatusCodes         map[int]int `json:"statusCodes"`
}

// Report is an immutable view over one run's samples.
type Report struct {
	Summary           Summary                   `json:"summary"`
	EndpointBreakdown map[string]*EndpointStats `json:"endpointBreakdown"`
	TimeSeriesData    []core.Sample             `json:"timeSeriesData"`
	Recommendations   []string                  `json:"recommendations"`
}

// Generate builds a report, deriving the run duration from sample timestamps.
func Generate(samples []core.Sample) (*Report, error) {
	return GenerateWithDuration(samples, 0)
}

// GenerateWithDuration builds a report for a run that lasted testDuration.
// A zero duration is derived from the samples. Pure function; the input
// slice is not modified.
func GenerateWithDuration(samples []core.Sample, testDuration time.Duration) (*Report, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyResult
	}

	successTimes := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Successful() {
			successTimes = append(successTimes, s.ResponseTimeMs())
		}
	}
	if len(successTimes) == 0 {
		return nil, ErrNoSuccessfulSamples
	}
	sort.Float64s(successTimes)

	if testDuration <= 0 {
		testDuration = spanOf(samples)
	}

	summary := Summary{
		TotalRequests:       len(samples),
		SuccessfulRequests:  len(successTimes),
		FailedRequests:      len(samples) - len(successTimes),
		AverageResponseTime: mean(successTimes),
		MinResponseTime:     successTimes[0],
		MaxResponseTime:     successTimes[len(successTimes)-1],
		P50ResponseTime:     Percentile(successTimes, 0.50),
		P95ResponseTime:     Percentile(successTimes, 0.95),
		P99ResponseTime:     Percentile(successTimes, 0.99),
		TestDuration:        testDuration.Seconds(),
	}
	summary.SuccessRate = float64(summary.SuccessfulRequests) / float64(summary.TotalRequests) * 100
	summary.ErrorRate = 100 - summary.SuccessRate
	if testDuration > 0 {
		summary.RequestsPerSecond = float64(summary.TotalRequests) / testDuration.Seconds()
	}

	series := make([]core.Sample, len(samples))
	copy(series, samples)

	return &Report{
		Summary:           summary,
		EndpointBreakdown: Breakdown(samples),
		TimeSeriesData:    series,
		Recommendations:   Recommendations(summary.AverageResponseTime, summary.P95ResponseTime, summary.SuccessRate),
	}, nil
}

// Breakdown groups samples by endpoint path alone; two methods on the same
// path share one entry.
func Breakdown(samples []core.Sample) map[string]*EndpointStats {
	type group struct {
		times   []float64
		success int
		methods map[string]struct{}
		codes   map[int]int
	}
	groups := make(map[string]*group)

	for _, s := range samples {
		g, ok := groups[s.Endpoint]
		if !ok {
			g = &group{methods: make(map[string]struct{}), codes: make(map[int]int)}
			groups[s.Endpoint] = g
		}
		g.times = append(g.times, s.ResponseTimeMs())
		if s.Successful() {
			g.success++
		}
		g.methods[s.Method] = struct{}{}
		g.codes[s.StatusCode()]++
	}

	result := make(map[string]*EndpointStats, len(groups))
	for path, g := range groups {
		sort.Float64s(g.times)
		methods := make([]string, 0, len(g.methods))
		for m := range g.methods {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		result[path] = &EndpointStats{
			Requests:            len(g.times),
			AverageResponseTime: mean(g.times),
			P95ResponseTime:     Percentile(g.times, 0.95),
			SuccessRate:         float64(g.success) / float64(len(g.times)) * 100,
			Methods:             methods,
			StatusCodes:         g.codes,
		}
	}
	return result
}

// SortedEndpoints returns breakdown keys ordered by request count, busiest first.
func (r *Report) SortedEndpoints() []string {
	paths := make([]string, 0, len(r.EndpointBreakdown))
	for p := range r.EndpointBreakdown {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := r.EndpointBreakdown[paths[i]], r.EndpointBreakdown[paths[j]]
		if a.Requests != b.Requests {
			return a.Requests > b.Requests
		}
		return paths[i] < paths[j]
	})
	return paths
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// spanOf returns the wall-clock span from the first probe's dispatch to the
// last probe's completion.
func spanOf(samples []core.Sample) time.Duration {
	var first, last time.Time
	for _, s := range samples {
		if s.Timestamp.IsZero() {
			continue
		}
		started := s.Timestamp.Add(-s.ResponseTime)
		if first.IsZero() || started.Before(first) {
			first = started
		}
		if last.IsZero() || s.Timestamp.After(last) {
			last = s.Timestamp
		}
	}
	if first.IsZero() {
		return 0
	}
	return last.Sub(first)
}
