package line

import "time"

// Line is the capability interface over one open-drain clock + data link.
//
// Set*High releases the wire so the pull-up (or another party) determines
// its level. Set*Low actively drives it low. The read methods return the
// resolved level of the wire, true meaning high.
//
// Implementations are stateless with respect to the protocol; they only map
// the six primitives onto pins.
type Line interface {
	SetClockHigh()
	SetClockLow()
	Clock() bool

	SetDataHigh()
	SetDataLow()
	Data() bool
}

// ClockSensor is implemented by bindings that can observe the clock wire
// through an input independent of the pin they drive. The host-role engine
// uses it to detect the computer inhibiting the line before each bit; lines
// without it fall back to [Line.Clock].
type ClockSensor interface {
	SenseClock() bool
}

// SenseClock reads the clock through l's independent sensor if it has one.
func SenseClock(l Line) bool {
	if s, ok := l.(ClockSensor); ok {
		return s.SenseClock()
	}
	return l.Clock()
}

// Release drives both wires to idle-high.
func Release(l Line) {
	l.SetDataHigh()
	l.SetClockHigh()
}

// Idle reports whether both wires read high.
func Idle(l Line) bool {
	return l.Clock() && l.Data()
}

// Waiter provides the short fixed delays that pace bit-times.
//
// Wait must not yield to other work: the peer samples the wires on a
// microsecond budget, so implementations either spin or use a hardware timer.
type Waiter interface {
	Wait(d time.Duration)
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func(d time.Duration)

// Wait calls f(d).
func (f WaiterFunc) Wait(d time.Duration) { f(d) }

// Spin busy-waits on the monotonic clock.
type Spin struct{}

// Wait spins until d has elapsed.
func (Spin) Wait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// NoWait returns immediately. It is used where the far end of the line is
// simulated and reacts synchronously.
type NoWait struct{}

// Wait does nothing.
func (NoWait) Wait(time.Duration) {}
