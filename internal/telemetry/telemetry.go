// Package telemetry exposes probe results as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"loadprobe/internal/core"
)

// Recorder observes every sample and forwards it to the wrapped reporter.
type Recorder struct {
	next     core.Reporter
	registry *prometheus.Registry
	probes   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ core.Reporter = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry so repeated runs in
// one process never collide on metric registration.
func NewRecorder(next core.Reporter) *Recorder {
	r := &Recorder{
		next:     next,
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadprobe_probes_total",
			Help: "Probes issued, by endpoint path and outcome (status code or transport_failure).",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loadprobe_probe_duration_seconds",
			Help:    "Probe response time including body read.",
			Buckets: []float64{.005, .01, .025, .05, .1, .2, .5, 1, 2, 5, 10, 30},
		}, []string{"endpoint"}),
	}
	r.registry.MustRegister(r.probes, r.latency)
	return r
}

// Report records the sample then forwards it.
func (r *Recorder) Report(s core.Sample) {
	r.probes.WithLabelValues(s.Endpoint, outcomeLabel(s.Outcome)).Inc()
	r.latency.WithLabelValues(s.Endpoint).Observe(s.ResponseTime.Seconds())
	if r.next != nil {
		r.next.Report(s)
	}
}

// Registry returns the recorder's private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Router mounts /metrics and a liveness probe.
func (r *Recorder) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Method(http.MethodGet, "/metrics", r.Handler())
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve exposes Router on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func outcomeLabel(o core.Outcome) string {
	if o.Kind == core.OutcomeTransportFailure {
		return o.Kind.String()
	}
	return strconv.Itoa(o.StatusCode)
}
