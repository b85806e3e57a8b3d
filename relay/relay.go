package relay

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/ardnew/softps2/device"
	"github.com/ardnew/softps2/host"
	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/report"
	"github.com/ardnew/softps2/tick"
)

// Stats counts relay traffic and recovered faults.
type Stats struct {
	ToDevice uint32 // bytes moved computer to peripheral
	ToHost   uint32 // bytes moved peripheral to computer
	Parity   uint32 // frames discarded for bad parity, either port
	Framing  uint32 // frames discarded for a missing stop bit, either port
	Retries  uint32 // sends pushed back for a later attempt
	Timeouts uint32 // frames abandoned by the bus guard
	Dropped  uint32 // bytes lost to a full queue
}

// Relay moves bytes between the computer-facing host engine and the
// peripheral-facing device engine. All methods except Run and Stats must be
// called from one goroutine.
type Relay struct {
	host   *host.Engine
	device *device.Engine
	sink   report.Reporter
	tick   tick.Flag

	mutex   sync.Mutex
	running bool
	stats   Stats
}

// New returns a relay between h and d. Each relayed byte is passed to sink,
// which may be nil.
func New(h *host.Engine, d *device.Engine, sink report.Reporter) *Relay {
	if sink == nil {
		sink = report.Func(func(report.Direction, byte) {})
	}
	return &Relay{host: h, device: d, sink: sink}
}

// Init runs the power-on sequence on both ports.
func (r *Relay) Init() {
	r.host.Init()
	r.device.Init()
}

// Tick returns the flag that paces the bus guard. Setting it once per
// millisecond is the caller's job unless Run drives it.
func (r *Relay) Tick() *tick.Flag { return &r.tick }

// Poll runs one main-loop iteration and reports whether any byte moved or
// was attempted.
func (r *Relay) Poll() bool {
	ticked := r.tick.Take()
	active := r.exchange()
	if ticked && r.device.Tick() {
		r.count(func(s *Stats) { s.Timeouts++ })
		pkg.LogInfo(pkg.ComponentRelay, "bus timeout, port reset", "err", pkg.ErrBusTimeout)
	}
	return r.forward() || active
}

// exchange services the wires: a command from the computer, one byte to the
// computer and one byte to the peripheral.
func (r *Relay) exchange() bool {
	hp := r.host.Port()
	dp := r.device.Port()
	active := false

	switch v, err := r.host.Recv(); {
	case err == nil:
		active = true
		if !hp.Inbound.Put(v) {
			r.drop("host inbound", v)
		}
	case errors.Is(err, pkg.ErrParity):
		active = true
		r.count(func(s *Stats) { s.Parity++ })
	case errors.Is(err, pkg.ErrFraming):
		active = true
		r.count(func(s *Stats) { s.Framing++ })
	}

	if v, ok := hp.Outbound.Get(); ok {
		active = true
		if err := r.host.Send(v); err != nil {
			hp.Outbound.Unget(v)
			r.retry(pkg.ComponentHost, v, err)
		}
	}

	// the previous frame is still on the wire; not a retry
	if r.device.Sending() {
		return active
	}
	if v, ok := dp.Outbound.Get(); ok {
		active = true
		if err := r.device.Send(v); err != nil {
			dp.Outbound.Unget(v)
			r.retry(pkg.ComponentDevice, v, err)
		}
	}
	return active
}

// forward moves at most one byte each way between the ports' queues.
func (r *Relay) forward() bool {
	hp := r.host.Port()
	dp := r.device.Port()
	active := false

	if v, ok := hp.Inbound.Get(); ok {
		active = true
		if dp.Outbound.Put(v) {
			r.count(func(s *Stats) { s.ToDevice++ })
			r.sink.Report(report.ToDevice, v)
		} else {
			r.drop("device outbound", v)
		}
	}

	if v, ok := r.device.Receive(); ok {
		active = true
		if hp.Outbound.Put(v) {
			r.count(func(s *Stats) { s.ToHost++ })
			r.sink.Report(report.ToHost, v)
		} else {
			r.drop("host outbound", v)
		}
	}
	return active
}

func (r *Relay) retry(c pkg.Component, v byte, err error) {
	r.count(func(s *Stats) { s.Retries++ })
	if !pkg.IsRetryable(err) {
		pkg.LogWarn(c, "unexpected send failure", "byte", v, "error", err)
		return
	}
	pkg.LogDebug(c, "send deferred", "byte", v, "status", pkg.StatusOf(err).String())
}

func (r *Relay) drop(queue string, v byte) {
	r.count(func(s *Stats) { s.Dropped++ })
	pkg.LogWarn(pkg.ComponentQueue, "byte dropped", "queue", queue, "byte", v, "err", pkg.ErrOverflow)
}

func (r *Relay) count(fn func(*Stats)) {
	r.mutex.Lock()
	fn(&r.stats)
	r.mutex.Unlock()
}

// Stats returns the relay counters merged with the device engine's.
func (r *Relay) Stats() Stats {
	r.mutex.Lock()
	s := r.stats
	r.mutex.Unlock()

	c := r.device.Counters()
	s.Parity += c.Parity
	s.Framing += c.Framing
	s.Dropped += c.Overflow
	return s
}

// IsRunning reports whether Run is active.
func (r *Relay) IsRunning() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.running
}

// Run polls until ctx is done, raising the tick flag every interval. It
// returns [pkg.ErrAlreadyRunning] if the relay is already running and nil
// once ctx is cancelled.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	r.mutex.Lock()
	if r.running {
		r.mutex.Unlock()
		return pkg.ErrAlreadyRunning
	}
	r.running = true
	r.mutex.Unlock()

	defer func() {
		r.mutex.Lock()
		r.running = false
		r.mutex.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go tick.Run(ctx, interval, &r.tick)

	pkg.LogInfo(pkg.ComponentRelay, "relay started")
	for {
		select {
		case <-ctx.Done():
			pkg.LogInfo(pkg.ComponentRelay, "relay stopped")
			return nil
		default:
		}
		if !r.Poll() {
			runtime.Gosched()
		}
	}
}
