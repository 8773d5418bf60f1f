package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerNextWithinBounds(t *testing.T) {
	pacer := NewPacer(0, 3*time.Second).WithSeed(42)

	seenNonZero := false
	for i := 0; i < 1000; i++ {
		d := pacer.Next()
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 3*time.Second)
		if d > 0 {
			seenNonZero = true
		}
	}
	assert.True(t, seenNonZero)
}

func TestPacerBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max time.Duration
		wantMin  time.Duration
		wantMax  time.Duration
	}{
		{"default range", 0, 3 * time.Second, 0, 3 * time.Second},
		{"fixed delay", time.Second, time.Second, time.Second, time.Second},
		{"max below min", 2 * time.Second, time.Second, 2 * time.Second, 2 * time.Second},
		{"negative min", -time.Second, time.Second, 0, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pacer := NewPacer(tt.min, tt.max).WithSeed(1)
			for i := 0; i < 200; i++ {
				d := pacer.Next()
				assert.GreaterOrEqual(t, d, tt.wantMin)
				assert.LessOrEqual(t, d, tt.wantMax)
			}
		})
	}

	assert.Equal(t, time.Second, NewPacer(time.Second, time.Second).Next())
}

func TestPacerSeedIsDeterministic(t *testing.T) {
	a := NewPacer(0, time.Second).WithSeed(7)
	b := NewPacer(0, time.Second).WithSeed(7)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestPacerWaitUsesSleepFunc(t *testing.T) {
	rec := NewRecorder()
	pacer := NewPacer(500*time.Millisecond, 500*time.Millisecond).WithSleep(rec.Sleep)

	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))

	assert.Equal(t, 2, rec.Count())
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, rec.Delays())
}

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	require.NoError(t, Sleep(context.Background(), 0))
}

func TestSleepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPacerImplementsLimiter(t *testing.T) {
	var _ Limiter = NewPacer(0, time.Second)
}
