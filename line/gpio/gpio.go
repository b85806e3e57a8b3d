// Package gpio binds a [line.Line] to Linux GPIO pins through periph.io.
//
// Each wire is emulated as open-drain: SetHigh turns the pin into a pulled-up
// input, SetLow turns it into an output driving low. Reads return the
// resolved level of the wire.
//
// Timing is best effort. Watch delivers edges from a userspace goroutine, and
// a peripheral clocks each bit for roughly 30 to 50 microseconds, so
// scheduler or kernel latency can miss an edge and corrupt a frame. Such
// frames surface as parity or framing errors, or as a bus timeout. Use the
// TinyGo build in examples/tinygo/rp2040 where the edge handler must keep up
// with the wire.
package gpio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/pkg"
)

var (
	_ line.Line        = (*Line)(nil)
	_ line.ClockSensor = (*Line)(nil)
)

// edgePoll bounds each WaitForEdge so Watch notices cancellation.
const edgePoll = 50 * time.Millisecond

var (
	hostOnce sync.Once
	hostErr  error

	// initHost loads the periph.io host drivers.
	initHost = func() error {
		_, err := host.Init()
		return err
	}
)

// Line is one port's clock and data pins, plus an optional clock sense
// input.
type Line struct {
	clock gpio.PinIO
	data  gpio.PinIO
	sense gpio.PinIO

	onClockLow func()

	mu  sync.Mutex
	err error
}

// New binds clock and data, which must be distinct pins, and releases both
// wires. sense may be nil.
func New(clock, data, sense gpio.PinIO) (*Line, error) {
	if clock == nil || data == nil {
		return nil, fmt.Errorf("clock and data pins required: %w", pkg.ErrInvalidParameter)
	}
	l := &Line{clock: clock, data: data, sense: sense}
	if err := clock.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("configure %s: %w", clock, err)
	}
	if err := data.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s: %w", data, err)
	}
	if sense != nil {
		if err := sense.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure %s: %w", sense, err)
		}
	}
	pkg.LogDebug(pkg.ComponentLine, "pins bound", "line", l.String())
	return l, nil
}

// Open loads the host drivers and binds the named pins. An empty sense name
// binds no sense input.
func Open(clock, data, sense string) (*Line, error) {
	hostOnce.Do(func() { hostErr = initHost() })
	if hostErr != nil {
		return nil, fmt.Errorf("periph host init: %w", hostErr)
	}
	c, err := byName(clock)
	if err != nil {
		return nil, err
	}
	d, err := byName(data)
	if err != nil {
		return nil, err
	}
	var s gpio.PinIO
	if sense != "" {
		if s, err = byName(sense); err != nil {
			return nil, err
		}
	}
	return New(c, d, s)
}

func byName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found: %w", name, pkg.ErrInvalidParameter)
	}
	return p, nil
}

// OnClockLow registers fn to run after each SetClockLow. Pins driven as
// outputs do not report their own edges, so the device-role port uses this
// to raise its interrupt when it pulls the clock itself.
func (l *Line) OnClockLow(fn func()) {
	l.onClockLow = fn
}

// SetClockHigh releases the clock wire.
func (l *Line) SetClockHigh() {
	l.check("release clock", l.clock.In(gpio.PullUp, gpio.BothEdges))
}

// SetClockLow drives the clock wire low.
func (l *Line) SetClockLow() {
	l.check("drive clock", l.clock.Out(gpio.Low))
	if l.onClockLow != nil {
		l.onClockLow()
	}
}

// Clock reads the clock wire.
func (l *Line) Clock() bool { return l.clock.Read() == gpio.High }

// SetDataHigh releases the data wire.
func (l *Line) SetDataHigh() {
	l.check("release data", l.data.In(gpio.PullUp, gpio.NoEdge))
}

// SetDataLow drives the data wire low.
func (l *Line) SetDataLow() {
	l.check("drive data", l.data.Out(gpio.Low))
}

// Data reads the data wire.
func (l *Line) Data() bool { return l.data.Read() == gpio.High }

// SenseClock reads the clock through the sense input, or through the clock
// pin if none is bound.
func (l *Line) SenseClock() bool {
	if l.sense == nil {
		return l.Clock()
	}
	return l.sense.Read() == gpio.High
}

// Watch calls raise for every clock edge until ctx is done.
func (l *Line) Watch(ctx context.Context, raise func()) {
	for ctx.Err() == nil {
		if l.clock.WaitForEdge(edgePoll) {
			raise()
		}
	}
}

// Err returns the first pin error seen since the line was bound.
func (l *Line) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Line) check(op string, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	first := l.err == nil
	if first {
		l.err = fmt.Errorf("%s: %w", op, err)
	}
	l.mu.Unlock()
	if first {
		pkg.LogError(pkg.ComponentLine, "pin operation failed", "op", op, "line", l.String(), "error", err)
	}
}

// Halt releases both wires and stops every pin.
func (l *Line) Halt() error {
	var result error
	for _, p := range []gpio.PinIO{l.clock, l.data, l.sense} {
		if p == nil {
			continue
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			result = multierror.Append(result, fmt.Errorf("release %s: %w", p, err))
		}
		if err := p.Halt(); err != nil {
			result = multierror.Append(result, fmt.Errorf("halt %s: %w", p, err))
		}
	}
	return result
}

// String names the bound pins.
func (l *Line) String() string {
	if l.sense == nil {
		return fmt.Sprintf("clock=%s data=%s", l.clock.Name(), l.data.Name())
	}
	return fmt.Sprintf("clock=%s data=%s sense=%s", l.clock.Name(), l.data.Name(), l.sense.Name())
}
