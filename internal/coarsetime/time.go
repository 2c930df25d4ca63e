// Package coarsetime provides a clock that is cheaper to read than time.Now.
//
// The current time is refreshed every 50ms by a background goroutine,
// started on first use. Pools use it to stamp connection release times,
// where that resolution is plenty.
package coarsetime

import (
	"sync"
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var (
	now   atomic.Pointer[time.Time]
	start sync.Once
)

func run() {
	t := time.Now()
	now.Store(&t)

	ticker := time.NewTicker(tick)
	go func() {
		for range ticker.C {
			t := time.Now()
			now.Store(&t)
		}
	}()
}

// Now returns the current time, at most one tick old.
func Now() time.Time {
	start.Do(run)
	return *now.Load()
}

// Since returns the time elapsed since t, measured with Now.
// It never returns a negative duration.
func Since(t time.Time) time.Duration {
	d := Now().Sub(t)
	if d < 0 {
		return 0
	}
	return d
}
