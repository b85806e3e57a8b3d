// Package irq models the split between interrupt context and the main loop.
//
// Engine state shared with an edge handler is touched by the main loop only
// between Disable and Restore. Critical sections are short, bracket a single
// state hand-off, and never contain a bit-time wait.
package irq

// State is the interrupt mask state saved by Disable.
type State uintptr

// Mask brackets critical sections shared with interrupt context.
type Mask interface {
	// Disable masks the edge handler and returns the previous mask state.
	Disable() State

	// Restore returns the mask to a state saved by Disable. A handler that
	// became pending while masked runs before Restore returns.
	Restore(State)
}
