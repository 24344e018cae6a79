package driver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"loadprobe/internal/core"
)

// Default think-time bounds between a load worker's probes.
const (
	DefaultThinkMin = 500 * time.Millisecond
	DefaultThinkMax = 2000 * time.Millisecond
)

// Load runs Users concurrent workers until Duration elapses. Each worker
// checks the deadline at the top of its loop; a probe already in flight when
// the deadline passes is allowed to finish and is recorded.
type Load struct {
	Deps
	Users         int
	Duration      time.Duration
	ThinkMin      time.Duration
	ThinkMax      time.Duration
	MaxIterations int // per worker, 0 = until deadline

	active atomic.Int32
	rngMu  sync.Mutex
	rng    *rand.Rand
}

// LoadStats reports how many samples each worker contributed.
type LoadStats struct {
	PerWorker []int
	Panics    int
}

// Total returns the sum of per-worker sample counts.
func (s LoadStats) Total() int {
	total := 0
	for _, n := range s.PerWorker {
		total += n
	}
	return total
}

// NewLoad returns a Load driver with the default think-time range.
func NewLoad(deps Deps, users int, duration time.Duration) *Load {
	return &Load{
		Deps:     deps,
		Users:    users,
		Duration: duration,
		ThinkMin: DefaultThinkMin,
		ThinkMax: DefaultThinkMax,
	}
}

// Run spawns the workers and blocks until every one of them has exited.
func (l *Load) Run(ctx context.Context) (LoadStats, error) {
	if l.Users <= 0 {
		return LoadStats{}, fmt.Errorf("load: users must be positive, got %d", l.Users)
	}
	if l.Duration <= 0 && l.MaxIterations <= 0 {
		return LoadStats{}, errors.New("load: duration must be positive")
	}

	clock := l.clock()
	deadline := clock.Now().Add(l.Duration)
	if l.Duration <= 0 {
		deadline = time.Time{}
	}

	log := l.logger().WithFields(logrus.Fields{"driver": "load", "users": l.Users, "duration": l.Duration})
	log.Debug("spawning workers")

	stats := LoadStats{PerWorker: make([]int, l.Users)}
	var panics atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < l.Users; i++ {
		workerID := i + 1
		wg.Add(1)
		l.active.Add(1)
		go func(id int, count *int) {
			defer func() {
				l.active.Add(-1)
				wg.Done()
			}()
			defer l.recoverPanic(log, id, &panics)
			l.work(ctx, id, deadline, count)
		}(workerID, &stats.PerWorker[i])
	}

	wg.Wait()
	stats.Panics = int(panics.Load())
	log.WithField("samples", stats.Total()).Debug("all workers finished")
	return stats, nil
}

// ActiveWorkers returns the number of workers still running.
func (l *Load) ActiveWorkers() int {
	return int(l.active.Load())
}

func (l *Load) work(ctx context.Context, id int, deadline time.Time, count *int) {
	clock := l.clock()
	runner := l.runner(id, l.MaxIterations+l.maxWarmup(), l.reporter())
	log := l.logger().WithField("worker", id)

	for {
		if !deadline.IsZero() && !clock.Now().Before(deadline) {
			return
		}
		if ctx.Err() != nil {
			return
		}

		_, err := runner.RunIteration(ctx)
		*count = runner.Reported()
		if err != nil {
			if !errors.Is(err, core.ErrMaxIterationsReached) && ctx.Err() == nil {
				log.WithError(err).Warn("worker stopped")
			}
			return
		}

		if err := clock.Sleep(ctx, l.think()); err != nil {
			return
		}
	}
}

func (l *Load) maxWarmup() int {
	if l.MaxIterations == 0 {
		return 0
	}
	return l.Warmup
}

func (l *Load) think() time.Duration {
	if l.ThinkMax <= l.ThinkMin {
		return l.ThinkMin
	}
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return l.ThinkMin + time.Duration(l.rng.Int63n(int64(l.ThinkMax-l.ThinkMin)))
}

// recoverPanic keeps one worker's panic from taking down the run.
func (l *Load) recoverPanic(log logrus.FieldLogger, workerID int, panics *atomic.Int32) {
	if r := recover(); r != nil {
		panics.Add(1)
		log.WithField("worker", workerID).Errorf("worker panicked: %v", r)
	}
}
