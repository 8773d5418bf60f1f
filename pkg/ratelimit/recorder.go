package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Recorder is a SleepFunc source that records requested delays instead of
// sleeping. Use it in tests:
//
//	rec := ratelimit.NewRecorder()
//	pacer := ratelimit.NewPacer(0, 3*time.Second).WithSleep(rec.Sleep)
type Recorder struct {
	delays []time.Duration
	mu     sync.Mutex
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Sleep records d and returns immediately
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

// Count returns how many sleeps were requested
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delays)
}

// Delays returns a copy of the recorded delays
func (r *Recorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}
