//go:build !tinygo

package irq

import "sync"

// Controller is the hosted stand-in for a pin-change interrupt vector.
//
// One handler is attached. Raise runs it synchronously when unmasked; when
// masked (a main-loop critical section or the handler itself is running) the
// request is latched and the handler runs once on Restore, like a hardware
// pending flag. Raise may be called from any goroutine. Critical sections do
// not nest: calling Disable while the same goroutine holds the mask blocks.
type Controller struct {
	mu      sync.Mutex
	cond    sync.Cond
	masked  bool
	pending bool
	handler func()
	raised  uint64
}

// NewController returns a controller that dispatches to handler.
func NewController(handler func()) *Controller {
	c := &Controller{handler: handler}
	c.cond.L = &c.mu
	return c
}

// Attach replaces the handler.
func (c *Controller) Attach(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Disable waits until no handler is running, then masks the handler.
func (c *Controller) Disable() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.masked {
		c.cond.Wait()
	}
	c.masked = true
	return 0
}

// Restore unmasks the handler, first running it if an edge was latched.
func (c *Controller) Restore(State) {
	c.mu.Lock()
	c.service()
	c.masked = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Raise signals an edge.
func (c *Controller) Raise() {
	c.mu.Lock()
	c.raised++
	if c.masked {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.masked = true
	c.pending = true
	c.service()
	c.masked = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Raised returns the number of edges signalled so far.
func (c *Controller) Raised() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raised
}

// service runs the handler while edges are pending. c.mu is held on entry
// and exit but released around the handler; c.masked stays set throughout.
func (c *Controller) service() {
	for c.pending {
		c.pending = false
		h := c.handler
		if h == nil {
			continue
		}
		c.mu.Unlock()
		h()
		c.mu.Lock()
	}
}
