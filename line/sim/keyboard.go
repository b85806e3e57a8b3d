package sim

import (
	"sync"

	"github.com/ardnew/softps2/frame"
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/pkg"
)

// Ack is the byte a keyboard returns after accepting a command.
const Ack = 0xFA

// Keyboard is a scripted peripheral. It owns the clock: every bit in either
// direction is paced by pulses it generates.
type Keyboard struct {
	end  *End
	wait line.Waiter

	// AutoAck makes Poll answer every accepted command with [Ack].
	AutoAck bool

	mu       sync.Mutex
	commands []byte
	frames   [][frame.Bits]bool
	errors   int
}

// NewKeyboard attaches a keyboard to bus.
func NewKeyboard(bus *Bus, w line.Waiter) *Keyboard {
	return &Keyboard{end: bus.End("keyboard"), wait: w}
}

// End returns the keyboard's connection to the bus.
func (k *Keyboard) End() *End { return k.end }

// Type clocks one well-formed frame carrying v.
func (k *Keyboard) Type(v byte) error {
	levels := frame.Levels(frame.Encode(v))
	return k.Clock(levels[:])
}

// Clock sends arbitrary levels, one per clock pulse, with data valid before
// each falling edge. Short or corrupt sequences are used to provoke framing,
// parity and timeout handling on the other end. It returns
// [pkg.ErrInhibited] without clocking if the clock is being held low.
func (k *Keyboard) Clock(levels []bool) error {
	if !k.end.Clock() {
		return pkg.ErrInhibited
	}
	for _, l := range levels {
		if l {
			k.end.SetDataHigh()
		} else {
			k.end.SetDataLow()
		}
		k.wait.Wait(line.Setup)
		k.end.SetClockLow()
		k.wait.Wait(line.ClockLow)
		k.end.SetClockHigh()
		k.wait.Wait(line.Setup)
	}
	k.end.SetDataHigh()
	return nil
}

// Poll reads a command if the other end has requested to send (clock
// released, data held low). It returns false when no request is pending.
// With AutoAck set, an accepted command is answered with [Ack].
func (k *Keyboard) Poll() (byte, bool, error) {
	if !k.end.Clock() || k.end.Data() {
		return 0, false, nil
	}
	var levels [frame.Bits]bool // levels[0] is the start bit, already low
	for i := 1; i < frame.Bits; i++ {
		k.end.SetClockLow()
		k.wait.Wait(line.ClockLow)
		k.end.SetClockHigh()
		k.wait.Wait(line.Setup)
		levels[i] = k.end.Data()
	}
	// acknowledge slot
	k.end.SetDataLow()
	k.end.SetClockLow()
	k.wait.Wait(line.ClockLow)
	k.end.SetClockHigh()
	k.end.SetDataHigh()

	v, err := frame.Decode(frame.FromLevels(levels))
	k.mu.Lock()
	k.frames = append(k.frames, levels)
	if err != nil {
		k.errors++
	} else {
		k.commands = append(k.commands, v)
	}
	k.mu.Unlock()
	if err != nil {
		return 0, true, err
	}
	if k.AutoAck {
		k.wait.Wait(line.ClockLow)
		if err := k.Type(Ack); err != nil {
			return v, true, err
		}
	}
	return v, true, nil
}

// Commands returns the commands accepted so far.
func (k *Keyboard) Commands() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]byte(nil), k.commands...)
}

// Frames returns the raw levels of every command frame read, including
// rejected ones.
func (k *Keyboard) Frames() [][frame.Bits]bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([][frame.Bits]bool(nil), k.frames...)
}

// Errors returns the number of command frames that failed to decode.
func (k *Keyboard) Errors() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.errors
}
