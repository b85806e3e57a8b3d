package device

import (
	"github.com/ardnew/softps2/frame"
	"github.com/ardnew/softps2/irq"
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/port"
)

const (
	// recvMarker is loaded into an idle receive register on the first
	// falling edge. It walks down one bit per edge and reaches bit 0 after
	// the eleventh, with the sampled bits stacked above it.
	recvMarker = 0x800

	// ackSlot trails an outgoing frame. The edge that would clock it out is
	// the peripheral's acknowledge pulse and ends the transmission.
	ackSlot = 1 << frame.Bits
)

// Counters tallies what the edge handler has seen.
type Counters struct {
	Frames   uint32 // frames received and queued
	Parity   uint32 // frames dropped for bad parity
	Framing  uint32 // frames dropped for a missing stop bit
	Overflow uint32 // good frames dropped because Inbound was full
	Sent     uint32 // frames clocked out to the peripheral
	Timeouts uint32 // frames abandoned by the bus guard
}

// Engine drives the port wired to the real peripheral. The peripheral
// generates every clock pulse; the engine reacts to falling edges in
// [Engine.Edge], which must be attached to the port's interrupt source.
type Engine struct {
	port  *port.Port
	mask  irq.Mask
	wait  line.Waiter
	guard uint8
	count Counters
}

// New returns an engine for p. Shared state is guarded by m; w paces the
// request-to-send sequence.
func New(p *port.Port, m irq.Mask, w line.Waiter) *Engine {
	return &Engine{port: p, mask: m, wait: w, guard: port.DefaultGuard}
}

// Port returns the port driven by the engine.
func (e *Engine) Port() *port.Port { return e.port }

// SetGuard sets the stuck-bus guard interval in ticks. Zero selects
// [port.DefaultGuard].
func (e *Engine) SetGuard(ticks uint8) {
	if ticks == 0 {
		ticks = port.DefaultGuard
	}
	s := e.mask.Disable()
	e.guard = ticks
	e.mask.Restore(s)
}

// Init resets the port and runs the power-on line sequence.
func (e *Engine) Init() {
	s := e.mask.Disable()
	e.port.Init()
	e.mask.Restore(s)
	pkg.LogDebug(pkg.ComponentDevice, "port initialized", "guard", e.guard)
}

// Edge is the clock-change handler. It runs in interrupt context, once per
// clock transition; rising edges are ignored.
func (e *Engine) Edge() {
	p := e.port
	l := p.Line
	if l.Clock() {
		return
	}
	p.Timeout = e.guard

	if p.Recv == 0 {
		switch {
		case p.Send == 1:
			// acknowledge pulse
			p.Send = 0
			p.Timeout = 0
			e.count.Sent++
		case p.Send != 0:
			if p.Send&1 != 0 {
				l.SetDataHigh()
			} else {
				l.SetDataLow()
			}
			p.Send >>= 1
		default:
			p.Recv = recvMarker
		}
	}
	if p.Recv == 0 {
		return
	}

	p.Recv >>= 1
	if l.Data() {
		p.Recv |= recvMarker
	}
	if p.Recv&1 == 0 {
		return
	}

	// eleven bits in: stop at bit 11, parity at 10, data at 9..2
	if p.Recv&recvMarker == 0 {
		e.count.Framing++
	} else if v, err := frame.Check(p.Recv >> 2); err != nil {
		e.count.Parity++
	} else if !p.Inbound.Put(v) {
		e.count.Overflow++
	} else {
		e.count.Frames++
	}
	p.Recv = 0
	p.Timeout = 0
}

// Send starts clocking v out to the peripheral and returns once the line
// has been handed over; the bits follow on the peripheral's clock edges.
//
// Send returns [pkg.ErrContention] if a receive is in progress and
// [pkg.ErrBusy] if the previous frame has not been fully clocked. In both
// cases nothing is driven and the caller should retry later.
func (e *Engine) Send(v byte) error {
	p := e.port
	l := p.Line

	s := e.mask.Disable()
	if p.Recv != 0 {
		e.mask.Restore(s)
		return pkg.ErrContention
	}
	if p.Send != 0 {
		e.mask.Restore(s)
		return pkg.ErrBusy
	}
	p.Send = frame.Encode(v) | ackSlot
	l.SetClockLow() // inhibit; the edge this raises clocks out the start bit
	l.SetDataLow()
	e.mask.Restore(s)

	e.wait.Wait(line.ClockLow)
	e.wait.Wait(line.ClockLow)
	l.SetClockHigh()
	return nil
}

// Sending reports whether a frame is still being clocked out. Send fails
// with [pkg.ErrBusy] until it returns false.
func (e *Engine) Sending() bool {
	s := e.mask.Disable()
	defer e.mask.Restore(s)
	return e.port.Send != 0
}

// Receive removes the next decoded byte from the inbound queue.
func (e *Engine) Receive() (byte, bool) {
	s := e.mask.Disable()
	v, ok := e.port.Inbound.Get()
	e.mask.Restore(s)
	return v, ok
}

// Tick advances the stuck-bus guard by one millisecond. When the guard
// expires with a frame still in progress, both wires are released and the
// port returns to idle; Tick then reports true.
func (e *Engine) Tick() bool {
	p := e.port
	s := e.mask.Disable()
	defer e.mask.Restore(s)

	switch {
	case p.Timeout == 0:
		return false
	case p.Timeout > 1:
		p.Timeout--
		return false
	}
	p.ResetShift()
	line.Release(p.Line)
	e.count.Timeouts++
	return true
}

// State returns the shift registers and guard countdown.
func (e *Engine) State() (recv, send uint16, timeout uint8) {
	s := e.mask.Disable()
	defer e.mask.Restore(s)
	return e.port.Recv, e.port.Send, e.port.Timeout
}

// Counters returns a snapshot of the edge handler's tallies.
func (e *Engine) Counters() Counters {
	s := e.mask.Disable()
	defer e.mask.Restore(s)
	return e.count
}
