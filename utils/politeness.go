package utils

import (
	"context"
	"math/rand"
	"time"
)

// Pacer enforces the politeness pause between page requests: a uniformly
// random delay in [Min, Max]. It is not a token bucket; callers pause once
// after each successful page.
type Pacer struct {
	min   time.Duration
	max   time.Duration
	rnd   func(n int64) int64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a Pacer. If max < min the range collapses to min.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{
		min:   min,
		max:   max,
		rnd:   rand.Int63n,
		sleep: sleepContext,
	}
}

// WithSleep replaces the sleep function; tests use it to record pauses.
// Cancellation is still reported once the replacement returns.
func (p *Pacer) WithSleep(sleep func(time.Duration)) *Pacer {
	p.sleep = func(ctx context.Context, d time.Duration) error {
		sleep(d)
		return ctx.Err()
	}
	return p
}

// Delay draws the next pause without sleeping.
func (p *Pacer) Delay() time.Duration {
	span := int64(p.max - p.min)
	if span <= 0 {
		return p.min
	}
	return p.min + time.Duration(p.rnd(span+1))
}

// Pause sleeps for a freshly drawn delay and returns it. It returns early
// with the context's error if ctx is cancelled first.
func (p *Pacer) Pause(ctx context.Context) (time.Duration, error) {
	d := p.Delay()
	if d <= 0 {
		return 0, ctx.Err()
	}
	return d, p.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
