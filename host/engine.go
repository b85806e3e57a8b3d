package host

import (
	"github.com/ardnew/softps2/frame"
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/port"
)

const (
	// maxPulses bounds a receive that never sees its stop bit.
	maxPulses = 100

	// stopSlot is the pulse index at which the stop bit is expected; the
	// pulses before it carry data and parity.
	stopSlot = frame.DataBits + 1
)

// Engine drives the port wired to the computer. The relay stands in for the
// peripheral here and so generates every clock pulse itself, busy-waiting
// through each bit-time. Its methods block for the length of a frame and
// must only be called from the main loop.
type Engine struct {
	port *port.Port
	wait line.Waiter
}

// New returns an engine for p, pacing bits with w.
func New(p *port.Port, w line.Waiter) *Engine {
	return &Engine{port: p, wait: w}
}

// Port returns the port driven by the engine.
func (e *Engine) Port() *port.Port { return e.port }

// Init resets the port and runs the power-on line sequence.
func (e *Engine) Init() {
	e.port.Init()
	pkg.LogDebug(pkg.ComponentHost, "port initialized")
}

// Send clocks one frame carrying v to the computer.
//
// Before each bit the clock is checked twice: through the independent
// sensor (the computer inhibiting the line) and on the driven pin after the
// setup delay (the computer pulling it low to request a send of its own).
// Either aborts the frame with [pkg.ErrInhibited]; the computer discards the
// partial frame and the caller must resend v.
func (e *Engine) Send(v byte) error {
	l := e.port.Line
	bits := frame.Encode(v)

	i := 0
	for ; i < frame.Bits; i++ {
		if !line.SenseClock(l) {
			break
		}
		if bits&1 != 0 {
			l.SetDataHigh()
		} else {
			l.SetDataLow()
		}
		bits >>= 1
		e.wait.Wait(line.Setup)
		if !l.Clock() {
			break
		}
		l.SetClockLow()
		e.wait.Wait(line.ClockLow)
		l.SetClockHigh()
		e.wait.Wait(line.Setup)
	}
	l.SetDataHigh()

	if i != frame.Bits {
		pkg.LogDebug(pkg.ComponentHost, "send inhibited", "byte", v, "bits", i)
		return pkg.ErrInhibited
	}
	return nil
}

// Recv clocks in one frame if the computer has requested to send (data low
// with the clock released). It returns [pkg.ErrIdle] when no request is
// pending, [pkg.ErrFraming] when the stop bit does not arrive in its slot
// and [pkg.ErrParity] when parity fails. The acknowledge pulse is generated
// whenever a frame was clocked, good or bad.
func (e *Engine) Recv() (byte, error) {
	l := e.port.Line
	if l.Data() || !l.Clock() {
		return 0, pkg.ErrIdle
	}

	var bits uint16
	i := 0
	for ; i < maxPulses; i++ {
		l.SetClockLow()
		e.wait.Wait(line.ClockLow)
		l.SetClockHigh()
		e.wait.Wait(line.Setup)
		e.wait.Wait(line.Setup)
		if i < stopSlot {
			bits >>= 1
			if l.Data() {
				bits |= 1 << frame.DataBits
			}
		} else if l.Data() {
			break
		}
	}

	// acknowledge
	l.SetClockLow()
	l.SetDataLow()
	e.wait.Wait(line.ClockLow)
	l.SetDataHigh()
	l.SetClockHigh()

	if i != stopSlot {
		pkg.LogDebug(pkg.ComponentHost, "framing error", "pulses", i)
		return 0, pkg.ErrFraming
	}
	v, err := frame.Check(bits)
	if err != nil {
		pkg.LogDebug(pkg.ComponentHost, "parity error", "bits", bits)
		return 0, err
	}
	return v, nil
}
