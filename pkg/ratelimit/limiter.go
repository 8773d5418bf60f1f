package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter defines the interface for pacing requests
type Limiter interface {
	// Next draws the delay the following Wait will sleep
	Next() time.Duration
	// Wait blocks for one drawn delay or until ctx is done
	Wait(ctx context.Context) error
}

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pacer sleeps a uniformly random duration in [min, max] after each
// attempted download.
type Pacer struct {
	min   time.Duration
	max   time.Duration
	sleep SleepFunc
	rng   *rand.Rand
	mu    sync.Mutex
}

// NewPacer creates a pacer drawing delays from [min, max]. A max below min is
// treated as min.
func NewPacer(min, max time.Duration) *Pacer {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}

	return &Pacer{
		min:   min,
		max:   max,
		sleep: Sleep,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithSleep replaces the sleep function, mostly for tests
func (p *Pacer) WithSleep(fn SleepFunc) *Pacer {
	p.sleep = fn
	return p
}

// WithSeed makes the delay sequence deterministic
func (p *Pacer) WithSeed(seed uint64) *Pacer {
	p.mu.Lock()
	p.rng = rand.New(rand.NewPCG(seed, seed))
	p.mu.Unlock()
	return p
}

// Next draws a delay uniformly from [min, max]
func (p *Pacer) Next() time.Duration {
	if p.max == p.min {
		return p.min
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.min + time.Duration(p.rng.Int64N(int64(p.max-p.min)+1))
}

// Wait sleeps for one drawn delay. It returns ctx.Err() if the context ends
// first.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.sleep(ctx, p.Next())
}

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
