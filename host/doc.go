// Package host implements the engine for the port wired to the computer.
//
// On this port the relay stands in for the peripheral, so it owns the clock
// in both directions. [Engine.Send] and [Engine.Recv] are self-timed
// bit-bang routines: each pulse is ~40µs low with ~15µs setup margins,
// produced by a [github.com/ardnew/softps2/line.Waiter] that must not yield.
//
// The computer keeps control of the link even so. Holding the clock low
// inhibits the relay mid-frame, and pulling data low with the clock released
// requests that the relay clock in a command instead. Both are checked before
// every bit of a send.
//
//	e := host.New(port.New(port.RoleHost, pcLine), line.Spin{})
//	e.Init()
//	if v, err := e.Recv(); err == nil {
//	    // command from the computer
//	}
//	if err := e.Send(0xFA); errors.Is(err, pkg.ErrInhibited) {
//	    // push the byte back and retry later
//	}
package host
