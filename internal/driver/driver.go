// Package driver implements the scheduling policies that turn a Prober and a
// Selector into a stream of samples: sequential, validation, concurrent load
// and continuous monitoring.
package driver

import (
	"github.com/sirupsen/logrus"

	"loadprobe/internal/core"
)

// Deps bundles the collaborators every driver needs.
type Deps struct {
	Prober   core.Prober
	Selector core.Selector
	Reporter core.Reporter
	Clock    core.Clock        // defaults to core.RealClock
	Limiter  core.Limiter      // optional global RPS cap
	Logger   logrus.FieldLogger // defaults to the standard logrus logger
	Warmup   int               // per-lane iterations whose samples are discarded
}

func (d Deps) clock() core.Clock {
	if d.Clock == nil {
		return core.RealClock{}
	}
	return d.Clock
}

func (d Deps) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

func (d Deps) reporter() core.Reporter {
	if d.Reporter == nil {
		return core.ReporterFunc(func(core.Sample) {})
	}
	return d.Reporter
}

func (d Deps) runner(workerID, maxIterations int, rep core.Reporter) *core.Runner {
	return core.NewRunner(d.Prober, d.Selector, rep, workerID, core.RunnerConfig{
		MaxIterations: maxIterations,
		WarmupIters:   d.Warmup,
		Limiter:       d.Limiter,
	})
}
