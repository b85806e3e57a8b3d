// Package port holds the per-port protocol state shared by the engines and
// the relay supervisor.
package port

import (
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/ring"
)

// DefaultGuard is the stuck-bus guard interval in 1 ms ticks.
const DefaultGuard = 10

// Role names which side of the relay a port faces.
type Role uint8

// Port roles.
const (
	RoleDevice Role = iota // faces the real peripheral
	RoleHost               // faces the computer
)

// String returns the role name used in logs.
func (r Role) String() string {
	switch r {
	case RoleDevice:
		return "device"
	case RoleHost:
		return "host"
	default:
		return "unknown"
	}
}

// Port is the state of one physical port. It is created once at startup
// and lives for the process lifetime.
//
// Recv, Send and Timeout of the device-facing port are written by the edge
// handler; the main loop touches them only inside a critical section.
type Port struct {
	Role Role
	Line line.Line

	// Recv accumulates incoming bits behind a marker bit; 0 means idle.
	Recv uint16

	// Send holds the bits still to be clocked out; 0 means idle.
	Send uint16

	// Timeout counts down 1 ms ticks; 0 means no frame outstanding.
	Timeout uint8

	// Inbound carries decoded bytes from the wire; Outbound carries bytes
	// waiting to be encoded onto it.
	Inbound  ring.Buffer
	Outbound ring.Buffer

	// EventLow and EventHigh are reserved for priority signalling and are
	// never filled by the relay.
	EventLow  ring.Buffer
	EventHigh ring.Buffer
}

// New returns an idle port of the given role bound to l.
func New(role Role, l line.Line) *Port {
	return &Port{Role: role, Line: l}
}

// Idle reports whether no frame is in progress in either direction.
func (p *Port) Idle() bool {
	return p.Recv == 0 && p.Send == 0
}

// ResetShift abandons any frame in progress.
func (p *Port) ResetShift() {
	p.Recv = 0
	p.Send = 0
	p.Timeout = 0
}

// Reset returns the port to its startup state: no frame in progress and
// every queue empty. The line is not touched.
func (p *Port) Reset() {
	p.ResetShift()
	p.Inbound.Reset()
	p.Outbound.Reset()
	p.EventLow.Reset()
	p.EventHigh.Reset()
}

// Init runs the power-on sequence for either role: inhibit the clock, idle
// the data wire, reset state, then release the clock.
func (p *Port) Init() {
	p.Line.SetClockLow()
	p.Line.SetDataHigh()
	p.Reset()
	p.Line.SetClockHigh()
}
