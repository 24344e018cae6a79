package driver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"loadprobe/internal/catalog"
	"loadprobe/internal/collector"
	"loadprobe/internal/core"
	"loadprobe/internal/driver"
	"loadprobe/internal/probe"
	"loadprobe/internal/ratelimit"
	"loadprobe/internal/report"
	"loadprobe/testserver"
)

// Integration tests drive real HTTP probes against the mock target.

func newDeps(t *testing.T, name string) (driver.Deps, *collector.ResultSet, *testserver.Server) {
	t.Helper()
	srv := testserver.NewServer()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	eps, err := catalog.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	sel, err := catalog.NewSelector(eps, nil)
	if err != nil {
		t.Fatal(err)
	}
	set := collector.New()
	logger, _ := test.NewNullLogger()
	return driver.Deps{
		Prober:   probe.New(ts.URL, 5*time.Second),
		Selector: sel,
		Reporter: set,
		Logger:   logger,
	}, set, srv
}

func TestIntegration_ValidationAllSucceed(t *testing.T) {
	deps, set, srv := newDeps(t, catalog.NameValidation)

	if err := driver.NewValidation(deps, 20).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	set.Close()

	r, err := report.GenerateWithDuration(set.Samples(), set.Duration())
	if err != nil {
		t.Fatal(err)
	}
	if r.Summary.TotalRequests != 20 || r.Summary.SuccessRate != 100 {
		t.Errorf("expected 20 successful requests, got %+v", r.Summary)
	}
	if srv.Requests() != 20 {
		t.Errorf("server saw %d requests, want 20", srv.Requests())
	}
	for path := range r.EndpointBreakdown {
		switch path {
		case "/", "/api/health", "/api/status", "/login":
		default:
			t.Errorf("validation catalog probed unexpected path %s", path)
		}
	}
}

func TestIntegration_ComprehensiveRecordsFailures(t *testing.T) {
	deps, set, _ := newDeps(t, catalog.NameComprehensive)
	s := driver.NewSequential(deps, 200)
	s.Delay = 0

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	codes := make(map[int]int)
	for _, sample := range set.Samples() {
		codes[sample.StatusCode()]++
	}
	if codes[200] == 0 {
		t.Error("expected some 200 responses")
	}
	if codes[401] == 0 {
		t.Errorf("expected 401s from protected endpoints, got %v", codes)
	}
	if codes[404] == 0 {
		t.Errorf("expected 404s from missing pages, got %v", codes)
	}
	if set.Len() != 200 {
		t.Errorf("failures must not stop the driver: got %d samples", set.Len())
	}
}

func TestIntegration_LoadAgainstServer(t *testing.T) {
	deps, set, srv := newDeps(t, catalog.NameDefault)
	l := driver.NewLoad(deps, 5, 500*time.Millisecond)
	l.ThinkMin, l.ThinkMax = 5*time.Millisecond, 15*time.Millisecond

	stats, err := l.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total() != set.Len() {
		t.Errorf("per-worker sum %d != result set %d", stats.Total(), set.Len())
	}
	if int64(set.Len()) != srv.Requests() {
		t.Errorf("result set %d != server requests %d", set.Len(), srv.Requests())
	}
	if set.Len() < 5 {
		t.Errorf("expected at least one sample per user, got %d", set.Len())
	}
}

func TestIntegration_RateLimitedLoad(t *testing.T) {
	deps, set, _ := newDeps(t, catalog.NameValidation)
	deps.Limiter = ratelimit.NewRateLimiter(20)
	l := driver.NewLoad(deps, 10, time.Second)
	l.ThinkMin, l.ThinkMax = 0, 0

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// burst of 20 plus ~20 over the second, with one in-flight probe per worker allowed past the deadline
	if set.Len() > 20+20+10+5 {
		t.Errorf("rate limit not honoured: %d samples in 1s at 20 rps", set.Len())
	}
}

func TestIntegration_MonitorFinalReport(t *testing.T) {
	deps, set, _ := newDeps(t, catalog.NameValidation)
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	m := driver.NewMonitor(deps, 50*time.Millisecond)
	m.Out = nil
	var final *report.Report
	m.OnStop = func(samples []core.Sample) error {
		r, err := report.Generate(samples)
		final = r
		return err
	}

	if err := m.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if final == nil {
		t.Fatal("expected a final report")
	}
	if final.Summary.TotalRequests != set.Len() {
		t.Errorf("final report covers %d samples, result set has %d", final.Summary.TotalRequests, set.Len())
	}
}

// slowTarget answers every request after delay.
func slowTarget(t *testing.T, delay time.Duration) driver.Deps {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	sel, err := catalog.NewSelector(catalog.Validation(), nil)
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	return driver.Deps{
		Prober:   probe.New(ts.URL, 5*time.Second),
		Selector: sel,
		Logger:   logger,
	}
}

func TestIntegration_SequentialCancelLetsInFlightProbeFinish(t *testing.T) {
	deps := slowTarget(t, 150*time.Millisecond)
	set := collector.New()
	deps.Reporter = set

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	s := driver.NewSequential(deps, 100)
	s.Delay = 0

	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if set.Len() == 0 {
		t.Fatal("expected samples before the deadline")
	}
	for _, sample := range set.Samples() {
		if !sample.Successful() {
			t.Errorf("cancellation recorded as a failure: %s %s", sample.Endpoint, sample.Outcome)
		}
	}
}

func TestIntegration_MonitorStoppedDuringFirstProbe(t *testing.T) {
	deps := slowTarget(t, 150*time.Millisecond)
	set := collector.New()
	deps.Reporter = set

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	m := driver.NewMonitor(deps, time.Second)
	m.Out = nil
	var final []core.Sample
	m.OnStop = func(samples []core.Sample) error {
		final = samples
		_, err := report.Generate(samples)
		return err
	}

	if err := m.Run(ctx); err != nil {
		t.Fatalf("expected a clean stop, got %v", err)
	}
	if len(final) != 1 || !final[0].Successful() {
		t.Errorf("expected the in-flight probe to finish successfully, got %+v", final)
	}
}
