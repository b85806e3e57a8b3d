// Package line defines the capability interface the protocol engines use to
// drive a two-wire synchronous link, and the delay primitive that paces each
// bit-time.
//
// # Bindings
//
// A binding maps [Line] onto physical pins. The relay uses two of them, one
// per port; they differ only in which pins they touch and are chosen once at
// startup:
//
//   - [github.com/ardnew/softps2/line/gpio] drives Linux GPIO lines via periph.io
//   - [github.com/ardnew/softps2/line/sim] is an in-memory wired-AND bus used by
//     tests and the -sim mode of the relay command
//
// TinyGo firmware binds machine pins directly; see examples/tinygo.
//
// # Timing
//
// Bit timing is expressed as fixed waits:
//
//	ClockLow = 40µs   width of each generated clock pulse
//	Setup    = 15µs   data setup/hold margin around a pulse
//
// A [Waiter] must implement these as uninterruptible delays. [Spin] does so
// on a hosted OS; [NoWait] is for simulation.
package line

import "time"

// Bit timing for generated clock pulses.
const (
	ClockLow = 40 * time.Microsecond
	Setup    = 15 * time.Microsecond
)
