package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockReporter collects samples for testing
type mockReporter struct {
	samples []Sample
}

func (m *mockReporter) Report(s Sample) {
	m.samples = append(m.samples, s)
}

type failingLimiter struct{ err error }

func (l failingLimiter) Wait(context.Context) error { return l.err }

type countingLimiter struct{ calls int }

func (l *countingLimiter) Wait(context.Context) error {
	l.calls++
	return nil
}

var homeEndpoint = Endpoint{Path: "/", Method: "GET", Weight: 1}

func TestRunner_MaxIterations(t *testing.T) {
	prober := &ScriptedProber{}
	reporter := &mockReporter{}
	runner := NewRunner(prober, FixedSelector{homeEndpoint}, reporter, 1, RunnerConfig{
		MaxIterations: 3,
	})

	ctx := context.Background()
	for {
		_, err := runner.RunIteration(ctx)
		if errors.Is(err, ErrMaxIterationsReached) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	if runner.Iteration() != 3 {
		t.Errorf("expected 3 iterations, got %d", runner.Iteration())
	}
	if prober.Calls() != 3 {
		t.Errorf("expected 3 probes, got %d", prober.Calls())
	}
	if len(reporter.samples) != 3 {
		t.Errorf("expected 3 samples, got %d", len(reporter.samples))
	}
}

func TestRunner_WarmupExcludesSamples(t *testing.T) {
	reporter := &mockReporter{}
	runner := NewRunner(&ScriptedProber{}, FixedSelector{homeEndpoint}, reporter, 1, RunnerConfig{
		MaxIterations: 5,
		WarmupIters:   2,
	})

	ctx := context.Background()
	for {
		_, err := runner.RunIteration(ctx)
		if errors.Is(err, ErrMaxIterationsReached) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	if runner.Iteration() != 5 {
		t.Errorf("expected 5 iterations, got %d", runner.Iteration())
	}
	if len(reporter.samples) != 3 {
		t.Errorf("expected 3 samples (excluding warmup), got %d", len(reporter.samples))
	}
	if runner.Reported() != 3 {
		t.Errorf("expected Reported() = 3, got %d", runner.Reported())
	}
}

func TestRunner_IsWarmup(t *testing.T) {
	runner := NewRunner(&ScriptedProber{}, FixedSelector{homeEndpoint}, &mockReporter{}, 1, RunnerConfig{
		WarmupIters: 2,
	})
	ctx := context.Background()

	if !runner.IsWarmup() {
		t.Error("expected IsWarmup() to be true before warmup completes")
	}
	runner.RunIteration(ctx)
	if !runner.IsWarmup() {
		t.Error("expected IsWarmup() to be true during warmup (iteration 1)")
	}
	runner.RunIteration(ctx)
	if runner.IsWarmup() {
		t.Error("expected IsWarmup() to be false after warmup completes (iteration 2)")
	}
}

func TestRunner_FailedProbeIsNotAnError(t *testing.T) {
	prober := &ScriptedProber{Responses: []ScriptedResponse{{Status: 0, ResponseTime: 5 * time.Millisecond}}}
	reporter := &mockReporter{}
	runner := NewRunner(prober, FixedSelector{homeEndpoint}, reporter, 7, RunnerConfig{})

	sample, err := runner.RunIteration(context.Background())
	if err != nil {
		t.Fatalf("failed probe should not surface an error, got %v", err)
	}
	if sample.StatusCode() != 0 {
		t.Errorf("expected sentinel status 0, got %d", sample.StatusCode())
	}
	if sample.Outcome.Kind != OutcomeTransportFailure {
		t.Errorf("expected transport failure outcome, got %v", sample.Outcome.Kind)
	}
	if len(reporter.samples) != 1 {
		t.Fatalf("failed probe must still be reported, got %d samples", len(reporter.samples))
	}
	if reporter.samples[0].WorkerID != 7 {
		t.Errorf("expected worker 7, got %d", reporter.samples[0].WorkerID)
	}
}

func TestRunner_LimiterConsulted(t *testing.T) {
	limiter := &countingLimiter{}
	runner := NewRunner(&ScriptedProber{}, FixedSelector{homeEndpoint}, &mockReporter{}, 1, RunnerConfig{
		Limiter: limiter,
	})

	for i := 0; i < 4; i++ {
		if _, err := runner.RunIteration(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if limiter.calls != 4 {
		t.Errorf("expected limiter consulted 4 times, got %d", limiter.calls)
	}
}

func TestRunner_LimiterError(t *testing.T) {
	prober := &ScriptedProber{}
	runner := NewRunner(prober, FixedSelector{homeEndpoint}, &mockReporter{}, 1, RunnerConfig{
		Limiter: failingLimiter{err: context.Canceled},
	})

	_, err := runner.RunIteration(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
	if prober.Calls() != 0 {
		t.Error("no probe should be issued when the limiter fails")
	}
	if runner.Iteration() != 0 {
		t.Errorf("iteration should not advance, got %d", runner.Iteration())
	}
}

func TestRunner_WorkerIDPassedInContext(t *testing.T) {
	var got int
	prober := proberFunc(func(ctx context.Context, ep Endpoint) Sample {
		got = WorkerIDFromContext(ctx)
		return Sample{Outcome: Response(200)}
	})

	runner := NewRunner(prober, FixedSelector{homeEndpoint}, &mockReporter{}, 42, RunnerConfig{})
	runner.RunIteration(context.Background())

	if got != 42 {
		t.Errorf("expected worker 42 in context, got %d", got)
	}
}

func TestRunner_ProbeOutlivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var probeErr error
	prober := proberFunc(func(pctx context.Context, ep Endpoint) Sample {
		cancel()
		probeErr = pctx.Err()
		return Sample{Outcome: Response(200)}
	})
	rep := &mockReporter{}
	runner := NewRunner(prober, FixedSelector{homeEndpoint}, rep, 3, RunnerConfig{})

	sample, err := runner.RunIteration(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probeErr != nil {
		t.Errorf("probe context cancelled mid-request: %v", probeErr)
	}
	if !sample.Successful() || len(rep.samples) != 1 {
		t.Errorf("expected one successful sample, got %+v (%d reported)", sample, len(rep.samples))
	}
}

func TestRunner_FillsEndpointFromSelection(t *testing.T) {
	prober := proberFunc(func(ctx context.Context, ep Endpoint) Sample {
		return Sample{Outcome: Response(204)}
	})
	ep := Endpoint{Path: "/api/health", Method: "HEAD", Weight: 1}
	runner := NewRunner(prober, FixedSelector{ep}, &mockReporter{}, 1, RunnerConfig{})

	sample, _ := runner.RunIteration(context.Background())
	if sample.Endpoint != "/api/health" || sample.Method != "HEAD" {
		t.Errorf("expected endpoint and method from selection, got %s %s", sample.Method, sample.Endpoint)
	}
}

func TestNullReporter(t *testing.T) {
	NullReporter.Report(Sample{Endpoint: "/", Outcome: Response(200)})
}

func TestMultiReporter(t *testing.T) {
	a, b := &mockReporter{}, &mockReporter{}
	rep := MultiReporter(a, b)
	rep.Report(Sample{Endpoint: "/"})
	rep.Report(Sample{Endpoint: "/login"})

	if len(a.samples) != 2 || len(b.samples) != 2 {
		t.Errorf("expected both reporters to receive 2 samples, got %d and %d", len(a.samples), len(b.samples))
	}
}

func TestContextWithWorkerID(t *testing.T) {
	ctx := context.Background()
	if id := WorkerIDFromContext(ctx); id != 0 {
		t.Errorf("expected 0, got %d", id)
	}
	ctx = ContextWithWorkerID(ctx, 42)
	if id := WorkerIDFromContext(ctx); id != 42 {
		t.Errorf("expected 42, got %d", id)
	}
}

type proberFunc func(ctx context.Context, ep Endpoint) Sample

func (f proberFunc) Probe(ctx context.Context, ep Endpoint) Sample { return f(ctx, ep) }
