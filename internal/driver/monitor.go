package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"loadprobe/internal/core"
)

// Monitor probes one endpoint per Interval until ctx is cancelled, printing a
// status line per probe with rolling figures over the last Window samples.
type Monitor struct {
	Deps
	Interval time.Duration
	Window   int
	Out      io.Writer
	// OnStop receives every sample the monitor collected. It runs exactly
	// once, after the loop exits, and its error becomes Run's result.
	OnStop func(samples []core.Sample) error
}

// NewMonitor returns a Monitor writing status lines to stdout.
func NewMonitor(deps Deps, interval time.Duration) *Monitor {
	return &Monitor{Deps: deps, Interval: interval, Window: DefaultWindow, Out: os.Stdout}
}

// Run loops until ctx is done. Cancellation is the normal way to stop a
// monitor, so it is not reported as an error.
func (m *Monitor) Run(ctx context.Context) (err error) {
	clock := m.clock()
	out := m.Out
	if out == nil {
		out = io.Discard
	}
	log := m.logger().WithFields(logrus.Fields{"driver": "monitor", "interval": m.Interval})

	var (
		mu        sync.Mutex
		collected []core.Sample
	)
	rep := core.MultiReporter(m.reporter(), core.ReporterFunc(func(s core.Sample) {
		mu.Lock()
		collected = append(collected, s)
		mu.Unlock()
	}))

	defer func() {
		mu.Lock()
		snapshot := make([]core.Sample, len(collected))
		copy(snapshot, collected)
		mu.Unlock()

		log.WithField("samples", len(snapshot)).Debug("monitor stopping")
		if m.OnStop != nil {
			if stopErr := m.OnStop(snapshot); stopErr != nil && err == nil {
				err = stopErr
			}
		}
	}()

	win := newWindow(m.Window)
	runner := m.runner(1, 0, rep)

	for {
		if ctx.Err() != nil {
			return nil
		}
		started := clock.Now()

		before := runner.Reported()
		sample, iterErr := runner.RunIteration(ctx)
		if iterErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return iterErr
		}
		if runner.Reported() > before {
			win.push(sample)
			avg, success := win.stats()
			fmt.Fprintln(out, statusLine(sample, avg, success))
		}

		wait := m.Interval - clock.Since(started)
		if wait < 0 {
			wait = 0
		}
		if err := clock.Sleep(ctx, wait); err != nil {
			return nil
		}
	}
}

func statusLine(s core.Sample, avgMs, successRate float64) string {
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("[%s] %-6s %-22s %-8s %8.1fms | rolling avg %7.1fms | success %5.1f%%",
		ts.Format("15:04:05"), s.Method, s.Endpoint, s.Outcome.String(), s.ResponseTimeMs(), avgMs, successRate)
}
