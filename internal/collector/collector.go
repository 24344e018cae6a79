// Package collector accumulates the samples of one run.
package collector

import (
	"sync"
	"time"

	"loadprobe/internal/core"
)

// ResultSet is the append-only sample sequence owned by a single run.
// Every worker of the run reports into the same ResultSet; appends are
// serialised by a mutex so no sample is lost or duplicated.
type ResultSet struct {
	mu        sync.Mutex
	samples   []core.Sample
	failures  int
	clock     core.Clock
	startTime time.Time
	endTime   time.Time
}

// New creates an empty ResultSet and marks the run start.
func New() *ResultSet {
	return NewWithClock(core.RealClock{})
}

// NewWithClock creates a ResultSet using a custom clock (for testing).
func NewWithClock(clock core.Clock) *ResultSet {
	return &ResultSet{
		samples:   make([]core.Sample, 0, 256),
		clock:     clock,
		startTime: clock.Now(),
	}
}

// Report appends a sample. Thread-safe.
func (r *ResultSet) Report(s core.Sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	if !s.Successful() {
		r.failures++
	}
	r.mu.Unlock()
}

// Samples returns a copy of the collected samples in completion order.
func (r *ResultSet) Samples() []core.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]core.Sample, len(r.samples))
	copy(result, r.samples)
	return result
}

// Len returns the number of samples collected so far.
func (r *ResultSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Counts returns the total and failed sample counts.
func (r *ResultSet) Counts() (total, failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples), r.failures
}

// Close freezes the run's end time. Reports after Close are still kept.
func (r *ResultSet) Close() {
	r.mu.Lock()
	if r.endTime.IsZero() {
		r.endTime = r.clock.Now()
	}
	r.mu.Unlock()
}

// Duration returns the run duration.
// If the set is closed, returns the duration from start to end.
// If still running, returns the duration from start to now.
func (r *ResultSet) Duration() time.Duration {
	r.mu.Lock()
	end := r.endTime
	r.mu.Unlock()
	if !end.IsZero() {
		return end.Sub(r.startTime)
	}
	return r.clock.Since(r.startTime)
}

// StartTime returns when the run began.
func (r *ResultSet) StartTime() time.Time {
	return r.startTime
}
