// Package core defines the fundamental types and interfaces for loadprobe.
package core

import (
	"context"
	"time"
)

// Endpoint describes one weighted catalog entry.
type Endpoint struct {
	Path        string `yaml:"path" json:"path"`
	Method      string `yaml:"method" json:"method"`
	Weight      int    `yaml:"weight" json:"weight"`
	Description string `yaml:"description" json:"description"`
}

// Sample is one observation of a single probe.
type Sample struct {
	WorkerID      int
	Endpoint      string
	Method        string
	ResponseTime  time.Duration
	Outcome       Outcome
	ContentLength int64
	Timestamp     time.Time
}

// StatusCode returns the HTTP status, or 0 when no response was received.
func (s Sample) StatusCode() int {
	return s.Outcome.Status()
}

// Successful reports whether the probe got a 2xx or 3xx response.
func (s Sample) Successful() bool {
	return s.Outcome.Successful()
}

// ResponseTimeMs returns the response time in fractional milliseconds.
func (s Sample) ResponseTimeMs() float64 {
	return float64(s.ResponseTime) / float64(time.Millisecond)
}

// Prober executes one timed request. Implementations never return an error;
// failures are encoded in the Sample's Outcome.
type Prober interface {
	Probe(ctx context.Context, ep Endpoint) Sample
}

// Selector picks the next endpoint to probe.
type Selector interface {
	Select() Endpoint
}

// Limiter throttles probe issuance.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Reporter is the interface drivers use to hand samples to a result set.
type Reporter interface {
	Report(Sample)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Sample)

func (f ReporterFunc) Report(s Sample) { f(s) }

// MultiReporter fans a sample out to several reporters in order.
func MultiReporter(reps ...Reporter) Reporter {
	return ReporterFunc(func(s Sample) {
		for _, r := range reps {
			r.Report(s)
		}
	})
}

type contextKey string

const workerIDContextKey contextKey = "workerID"

func ContextWithWorkerID(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, workerIDContextKey, workerID)
}

func WorkerIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(workerIDContextKey).(int); ok {
		return id
	}
	return 0
}
