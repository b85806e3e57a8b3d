// Package relay is the main loop that joins the two ports.
//
// Each call to [Relay.Poll] performs, in order:
//
//  1. clock in a command from the computer, if one was requested
//  2. send one pending byte to the computer, pushing it back on failure
//  3. hand one pending byte to the peripheral's transmit path, pushing it
//     back if the port is receiving or still sending
//  4. advance the peripheral port's bus guard on a millisecond tick
//  5. move one byte from the computer to the peripheral queue, and one
//     from the peripheral to the computer queue, reporting each
//
// Failed frames are counted but never reported; only bytes that reach the
// opposite queue are passed to the [report.Reporter].
package relay
