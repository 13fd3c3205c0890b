// Package ramp moves a value between two points in evenly timed steps.
package ramp

import (
	"context"
	"time"

	"uwbdistance-go/x/mathx"
)

// Tick waits for d and reports whether to continue.
type Tick func(d time.Duration) bool

// Sleep is a Tick that waits on a timer and stops when ctx is done.
func Sleep(ctx context.Context) Tick {
	return func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}
}

// Linear calls set with values from from to to over d, in the given number of
// steps. Intermediate values never leave [min(from,to), max(from,to)] and the
// last call is always to, unless tick cancels first. steps <= 1 or d <= 0
// snaps to to. It reports whether the ramp completed.
func Linear(from, to int64, d time.Duration, steps int, tick Tick, set func(int64)) bool {
	if steps <= 1 || d <= 0 {
		set(to)
		return true
	}
	lo, hi := mathx.Min(from, to), mathx.Max(from, to)
	delta := to - from
	n := int64(steps)
	stepDur := mathx.Max(d/time.Duration(steps), time.Millisecond)

	cur, acc := from, int64(0)
	for i := 1; i < steps; i++ {
		if !tick(stepDur) {
			return false
		}
		acc += delta
		if inc := acc / n; inc != 0 {
			acc -= inc * n
			cur = mathx.Clamp(cur+inc, lo, hi)
			set(cur)
		}
	}
	if !tick(stepDur) {
		return false
	}
	set(to)
	return true
}
