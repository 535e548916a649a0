package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerDelayWithinRange(t *testing.T) {
	min, max := 1500*time.Millisecond, 3500*time.Millisecond
	p := NewPacer(min, max)

	for i := 0; i < 200; i++ {
		d := p.Delay()
		assert.GreaterOrEqual(t, d, min)
		assert.LessOrEqual(t, d, max)
	}
}

func TestPacerPauseSleepsDrawnDelay(t *testing.T) {
	var slept []time.Duration
	p := NewPacer(time.Second, 2*time.Second).WithSleep(func(d time.Duration) {
		slept = append(slept, d)
	})

	got, err := p.Pause(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{got}, slept)
}

func TestPacerCollapsedRange(t *testing.T) {
	p := NewPacer(2*time.Second, time.Second)
	assert.Equal(t, 2*time.Second, p.Delay())
}

func TestPacerZeroRangeDoesNotSleep(t *testing.T) {
	calls := 0
	p := NewPacer(0, 0).WithSleep(func(time.Duration) { calls++ })

	d, err := p.Pause(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
	assert.Zero(t, calls)
}

func TestPacerPauseStopsOnCancel(t *testing.T) {
	p := NewPacer(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	_, err := p.Pause(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
}
