package driver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDelay is the pause between sequential probes.
const DefaultDelay = 10 * time.Millisecond

// Sequential probes Count endpoints one after another on a single lane.
type Sequential struct {
	Deps
	Count int
	Delay time.Duration
	// OnProgress is invoked every ceil(Count/10) samples and on completion.
	OnProgress func(done, total int)
	// Name labels log lines; "quick" or "cambridge" from the CLI.
	Name string
}

// NewSequential returns a Sequential driver with the default inter-probe delay.
func NewSequential(deps Deps, count int) *Sequential {
	return &Sequential{Deps: deps, Count: count, Delay: DefaultDelay, Name: "quick"}
}

// NewValidation returns the fixed-count validation driver. The caller is
// expected to build deps.Selector over the validation catalog.
func NewValidation(deps Deps, count int) *Sequential {
	s := NewSequential(deps, count)
	s.Name = "cambridge"
	return s
}

// Run issues Count probes. It returns ctx.Err() if cancelled before finishing.
func (s *Sequential) Run(ctx context.Context) error {
	if s.Count <= 0 {
		return nil
	}
	clock := s.clock()
	log := s.logger().WithFields(logrus.Fields{"driver": s.Name, "count": s.Count})
	log.Debug("sequential run starting")

	step := (s.Count + 9) / 10
	runner := s.runner(1, s.Count+s.Warmup, s.reporter())

	for runner.Reported() < s.Count {
		if err := ctx.Err(); err != nil {
			return err
		}
		sample, err := runner.RunIteration(ctx)
		if err != nil {
			return err
		}
		if !sample.Successful() {
			log.WithFields(logrus.Fields{
				"endpoint": sample.Endpoint,
				"outcome":  sample.Outcome,
			}).Debug("probe failed")
		}

		done := runner.Reported()
		if s.OnProgress != nil && done > 0 && (done%step == 0 || done == s.Count) {
			s.OnProgress(done, s.Count)
		}

		if done < s.Count {
			if err := clock.Sleep(ctx, s.Delay); err != nil {
				return err
			}
		}
	}

	log.Debug("sequential run complete")
	return nil
}
