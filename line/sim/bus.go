package sim

import (
	"sync"

	"github.com/ardnew/softps2/line"
)

var _ line.Line = (*End)(nil)

// Bus is an open-drain clock + data pair. Each wire reads high unless at
// least one attached End drives it low.
type Bus struct {
	mu       sync.Mutex
	ends     []*End
	watchers []func(clock bool)
	clock    bool
	data     bool
	edges    int
}

// NewBus returns an idle bus with both wires pulled high.
func NewBus() *Bus {
	return &Bus{clock: true, data: true}
}

// End attaches a new party to the bus.
func (b *Bus) End(name string) *End {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := &End{bus: b, name: name}
	b.ends = append(b.ends, e)
	return e
}

// Watch registers fn to be called after every clock transition with the new
// clock level. Watchers run synchronously on the goroutine that caused the
// transition, in registration order.
func (b *Bus) Watch(fn func(clock bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watchers = append(b.watchers, fn)
}

// Clock returns the resolved clock level.
func (b *Bus) Clock() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock
}

// Data returns the resolved data level.
func (b *Bus) Data() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Edges returns the number of clock transitions seen so far.
func (b *Bus) Edges() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.edges
}

func (b *Bus) drive(set func()) {
	b.mu.Lock()
	set()
	clock, data := true, true
	for _, e := range b.ends {
		clock = clock && !e.clockLow
		data = data && !e.dataLow
	}
	b.data = data
	if clock == b.clock {
		b.mu.Unlock()
		return
	}
	b.clock = clock
	b.edges++
	watchers := b.watchers
	b.mu.Unlock()

	for _, fn := range watchers {
		fn(clock)
	}
}

// End is one party's connection to a Bus. It implements [line.Line].
type End struct {
	bus      *Bus
	name     string
	clockLow bool
	dataLow  bool
}

// Name returns the name given to the End when it was attached.
func (e *End) Name() string { return e.name }

func (e *End) SetClockHigh() { e.bus.drive(func() { e.clockLow = false }) }
func (e *End) SetClockLow()  { e.bus.drive(func() { e.clockLow = true }) }
func (e *End) Clock() bool   { return e.bus.Clock() }
func (e *End) SetDataHigh()  { e.bus.drive(func() { e.dataLow = false }) }
func (e *End) SetDataLow()   { e.bus.drive(func() { e.dataLow = true }) }
func (e *End) Data() bool    { return e.bus.Data() }

// HoldsClock reports whether this End is driving the clock low.
func (e *End) HoldsClock() bool {
	e.bus.mu.Lock()
	defer e.bus.mu.Unlock()
	return e.clockLow
}

// HoldsData reports whether this End is driving the data wire low.
func (e *End) HoldsData() bool {
	e.bus.mu.Lock()
	defer e.bus.mu.Unlock()
	return e.dataLow
}
