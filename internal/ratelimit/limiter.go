// Package ratelimit caps the global probe rate across all workers of a run.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"loadprobe/internal/core"
)

var _ core.Limiter = (*RateLimiter)(nil)

// RateLimiter is a token bucket shared by every worker of a run. A rate of
// zero lets every probe through.
type RateLimiter struct {
	mu     sync.RWMutex
	bucket *rate.Limiter

	waits     atomic.Int64
	throttled atomic.Int64
}

// NewRateLimiter caps probes at rps per second with a burst of one second's
// worth of tokens.
func NewRateLimiter(rps int) *RateLimiter {
	return &RateLimiter{bucket: rate.NewLimiter(rate.Limit(rps), burstFor(rps))}
}

// Wait blocks until a probe may be issued or ctx is done. A wait that found
// the bucket empty counts as throttled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.RLock()
	bucket := r.bucket
	r.mu.RUnlock()

	r.waits.Add(1)
	if bucket.Limit() == 0 {
		return ctx.Err()
	}
	if bucket.Tokens() < 1 {
		r.throttled.Add(1)
	}
	return bucket.Wait(ctx)
}

// SetRate changes the cap at runtime; 0 disables it.
func (r *RateLimiter) SetRate(rps int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bucket.SetLimit(rate.Limit(rps))
	r.bucket.SetBurst(burstFor(rps))
}

// Rate returns the current cap in probes per second.
func (r *RateLimiter) Rate() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(r.bucket.Limit())
}

// Waits returns how many probes asked for a token.
func (r *RateLimiter) Waits() int64 { return r.waits.Load() }

// Throttled returns how many probes had to wait for the bucket to refill.
func (r *RateLimiter) Throttled() int64 { return r.throttled.Load() }

// Fields describes the effective cap and its effect for run logs.
func (r *RateLimiter) Fields() logrus.Fields {
	r.mu.RLock()
	burst := r.bucket.Burst()
	r.mu.RUnlock()
	return logrus.Fields{
		"rps":       r.Rate(),
		"burst":     burst,
		"waits":     r.Waits(),
		"throttled": r.Throttled(),
	}
}

func burstFor(rps int) int {
	if rps < 1 {
		return 1
	}
	return rps
}
