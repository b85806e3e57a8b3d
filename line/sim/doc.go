// Package sim provides an in-memory open-drain bus and scripted peers that
// speak the two-wire protocol from the far side of each relay port.
//
// A [Bus] resolves every wire as the wired-AND of its attached [End]s and
// notifies watchers on each clock transition, which is how a simulated edge
// reaches the relay's interrupt controller:
//
//	bus := sim.NewBus()
//	relayEnd := bus.End("relay")
//	bus.Watch(func(clock bool) { ctrl.Raise() })
//
// [Keyboard] plays the real peripheral on the device-facing bus: it generates
// clock pulses to type bytes and to read commands. [Computer] plays the
// computer on the host-facing bus: it samples bytes clocked by the relay and
// issues commands through request-to-send.
//
// Everything runs synchronously on the calling goroutine; with a
// [line.NoWait] waiter a whole exchange completes inside one call.
package sim
