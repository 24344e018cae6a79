package driver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"loadprobe/internal/collector"
	"loadprobe/internal/core"
)

var (
	testStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	healthEP  = core.Endpoint{Path: "/api/health", Method: "GET", Weight: 1}
)

type proberFunc func(ctx context.Context, ep core.Endpoint) core.Sample

func (f proberFunc) Probe(ctx context.Context, ep core.Endpoint) core.Sample { return f(ctx, ep) }

type fixture struct {
	clock  *core.FakeClock
	set    *collector.ResultSet
	prober *core.ScriptedProber
	hook   *test.Hook
	deps   Deps
}

func newFixture(responses ...core.ScriptedResponse) *fixture {
	clock := core.NewFakeClock(testStart)
	set := collector.NewWithClock(clock)
	prober := &core.ScriptedProber{Responses: responses, Clock: clock}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &fixture{
		clock:  clock,
		set:    set,
		prober: prober,
		hook:   hook,
		deps: Deps{
			Prober:   prober,
			Selector: core.FixedSelector{Endpoint: healthEP},
			Reporter: set,
			Clock:    clock,
			Logger:   logger,
		},
	}
}
