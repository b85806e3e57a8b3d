//go:build tinygo

package irq

import "runtime/interrupt"

// Hardware masks interrupts on the CPU.
type Hardware struct{}

// Disable masks all interrupts and returns the previous state.
func (Hardware) Disable() State {
	return State(interrupt.Disable())
}

// Restore restores a state saved by Disable.
func (Hardware) Restore(s State) {
	interrupt.Restore(interrupt.State(s))
}
