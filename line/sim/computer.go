package sim

import (
	"sync"
	"time"

	"github.com/ardnew/softps2/frame"
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/pkg"
)

// RequestHold is how long the computer inhibits the clock before a
// request-to-send.
const RequestHold = 100 * time.Microsecond

type computerMode uint8

const (
	modeIdle computerMode = iota
	modeReceive
	modeSend
)

// Computer is a scripted computer. The other end generates the clock, so the
// computer reacts to falling edges: it samples data while receiving and
// presents the next bit while sending.
type Computer struct {
	end  *End
	wait line.Waiter

	mu           sync.Mutex
	mode         computerMode
	rx           [frame.Bits]bool
	tx           []bool
	index        int
	inhibitAfter int
	received     []byte
	errors       int
}

// NewComputer attaches a computer to bus.
func NewComputer(bus *Bus, w line.Waiter) *Computer {
	c := &Computer{end: bus.End("computer"), wait: w, inhibitAfter: -1}
	bus.Watch(c.edge)
	return c
}

// End returns the computer's connection to the bus.
func (c *Computer) End() *End { return c.end }

// Inhibit holds the clock low, which forbids the other end from sending.
func (c *Computer) Inhibit() {
	c.mu.Lock()
	c.mode = modeIdle
	c.index = 0
	c.mu.Unlock()
	c.end.SetClockLow()
}

// Release lets the clock float high again.
func (c *Computer) Release() {
	c.end.SetClockHigh()
}

// InhibitAfter makes the computer inhibit the line once n bits of the next
// incoming frame have been sampled. A negative n disables it.
func (c *Computer) InhibitAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inhibitAfter = n
}

// Send issues a request-to-send and stages v. The bits are presented as the
// other end clocks them.
func (c *Computer) Send(v byte) error {
	levels := frame.Levels(frame.Encode(v))
	return c.SendLevels(levels[:])
}

// SendLevels is Send with arbitrary levels; levels[0] is the start bit and
// must be low. Bits past the end of levels read high.
func (c *Computer) SendLevels(levels []bool) error {
	if len(levels) == 0 || levels[0] {
		return pkg.ErrInvalidParameter
	}
	c.mu.Lock()
	busy := c.mode != modeIdle
	c.mu.Unlock()
	if busy {
		return pkg.ErrBusy
	}

	c.end.SetClockLow()
	c.wait.Wait(RequestHold)
	c.end.SetDataLow()

	c.mu.Lock()
	c.mode = modeSend
	c.tx = append(c.tx[:0], levels...)
	c.index = 1
	c.mu.Unlock()

	c.end.SetClockHigh()
	return nil
}

// Sending reports whether a staged frame has not been fully clocked yet.
func (c *Computer) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == modeSend
}

// edge follows the clock driven by the other end.
func (c *Computer) edge(clock bool) {
	if clock || c.end.HoldsClock() {
		return
	}
	c.mu.Lock()
	inhibit := false
	switch c.mode {
	case modeSend:
		if c.index < len(c.tx) && c.index < frame.Bits {
			c.present(c.tx[c.index])
		} else {
			c.end.SetDataHigh()
		}
		c.index++
		if c.index > frame.Bits {
			c.mode = modeIdle
		}
	case modeIdle:
		if c.end.Data() {
			break
		}
		c.mode = modeReceive
		c.index = 0
		fallthrough
	case modeReceive:
		c.rx[c.index] = c.end.Data()
		c.index++
		if c.index == c.inhibitAfter {
			inhibit = true
			c.inhibitAfter = -1
			c.mode = modeIdle
			c.index = 0
			break
		}
		if c.index == frame.Bits {
			c.finishReceive()
		}
	}
	c.mu.Unlock()
	if inhibit {
		c.end.SetClockLow()
	}
}

// present drives one data bit; c.mu is held.
func (c *Computer) present(level bool) {
	if level {
		c.end.SetDataHigh()
	} else {
		c.end.SetDataLow()
	}
}

// finishReceive decodes the sampled frame; c.mu is held.
func (c *Computer) finishReceive() {
	c.mode = modeIdle
	c.index = 0
	v, err := frame.Decode(frame.FromLevels(c.rx))
	if err != nil {
		c.errors++
		return
	}
	c.received = append(c.received, v)
}

// Received returns the bytes decoded so far.
func (c *Computer) Received() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.received...)
}

// Errors returns the number of frames that failed to decode.
func (c *Computer) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}
