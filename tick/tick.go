// Package tick supplies the relay's 1 ms time base as a flag that is set by
// a timer and consumed by the main loop.
package tick

import (
	"context"
	"sync/atomic"
	"time"
)

// Interval is the nominal period between ticks.
const Interval = time.Millisecond

// Flag is set once per interval and cleared by the consumer. Ticks that
// arrive before the previous one was taken coalesce.
type Flag struct {
	set atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.set.Store(true) }

// Take clears the flag and reports whether it was raised.
func (f *Flag) Take() bool { return f.set.Swap(false) }

// Run raises f every interval until ctx is done.
func Run(ctx context.Context, interval time.Duration, f *Flag) {
	if interval <= 0 {
		interval = Interval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			f.Set()
		}
	}
}
