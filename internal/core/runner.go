package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrMaxIterationsReached indicates the runner hit its iteration limit.
var ErrMaxIterationsReached = errors.New("max iterations reached")

// NullReporter discards all samples (used during warmup).
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Sample) {}

// RunnerConfig controls execution behavior.
type RunnerConfig struct {
	MaxIterations int     // 0 = unlimited
	WarmupIters   int     // iterations before samples count
	Limiter       Limiter // optional global rate cap
}

// Runner executes the select → probe → report cycle for one lane.
// A Runner is NOT safe for concurrent use; each worker goroutine must have its own Runner.
type Runner struct {
	prober    Prober
	selector  Selector
	reporter  Reporter
	workerID  int
	config    RunnerConfig
	iteration int
	reported  int
}

// NewRunner creates a Runner for a single lane.
func NewRunner(prober Prober, selector Selector, reporter Reporter, workerID int, config RunnerConfig) *Runner {
	return &Runner{
		prober:   prober,
		selector: selector,
		reporter: reporter,
		workerID: workerID,
		config:   config,
	}
}

// RunIteration probes one selected endpoint and reports the sample.
// Returns ErrMaxIterationsReached when the limit is hit, or the limiter's
// error if waiting for a token failed. A failed probe is not an error.
func (r *Runner) RunIteration(ctx context.Context) (Sample, error) {
	if r.config.MaxIterations > 0 && r.iteration >= r.config.MaxIterations {
		return Sample{}, ErrMaxIterationsReached
	}

	if r.config.Limiter != nil {
		if err := r.config.Limiter.Wait(ctx); err != nil {
			return Sample{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	rep := r.reporter
	if r.iteration < r.config.WarmupIters {
		rep = NullReporter
	}

	// An in-flight probe runs to completion; the client timeout bounds it and
	// the caller's loop-head check ends the run.
	ep := r.selector.Select()
	probeCtx := ContextWithWorkerID(context.WithoutCancel(ctx), r.workerID)
	sample := r.prober.Probe(probeCtx, ep)
	sample.WorkerID = r.workerID
	if sample.Endpoint == "" {
		sample.Endpoint = ep.Path
	}
	if sample.Method == "" {
		sample.Method = ep.Method
	}

	rep.Report(sample)
	if rep != NullReporter {
		r.reported++
	}
	r.iteration++
	return sample, nil
}

// Iteration returns the number of completed iterations.
func (r *Runner) Iteration() int {
	return r.iteration
}

// Reported returns how many samples reached the reporter (warmup excluded).
func (r *Runner) Reported() int {
	return r.reported
}

// IsWarmup returns true if still in warmup phase.
func (r *Runner) IsWarmup() bool {
	return r.iteration < r.config.WarmupIters
}

// WorkerID returns the lane identity used for samples and logging.
func (r *Runner) WorkerID() int {
	return r.workerID
}
