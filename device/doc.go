// Package device implements the engine for the port wired to the real
// peripheral.
//
// On this port the relay stands in for the computer, but the peripheral
// generates the clock in both directions. All bit handling therefore happens
// in [Engine.Edge], invoked once per clock transition from interrupt context
// (or the hosted [github.com/ardnew/softps2/irq.Controller]).
//
// # Receiving
//
// The first falling edge on an idle port arms a receive. Each edge shifts
// the data level in; after eleven edges the frame is checked and, if the
// stop bit is present and parity is odd, its byte is queued on the port's
// Inbound queue. Bad frames are counted and dropped.
//
// # Sending
//
// [Engine.Send] loads the frame, inhibits the clock and drives the start
// bit, then releases the clock after two fixed delays. The peripheral then
// clocks the remaining bits out, one per edge, and acknowledges with a final
// pulse. A receive in progress always wins: Send refuses to start, and the
// caller pushes the byte back for a later attempt.
//
// # Stuck bus
//
// Every edge re-arms a guard countdown. [Engine.Tick] decrements it once per
// millisecond and, on expiry, releases both wires and discards the partial
// frame.
package device
