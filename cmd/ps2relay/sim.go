package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardnew/softps2/config"
	"github.com/ardnew/softps2/device"
	"github.com/ardnew/softps2/host"
	"github.com/ardnew/softps2/irq"
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/line/sim"
	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/port"
	"github.com/ardnew/softps2/relay"
	"github.com/ardnew/softps2/report"
)

// Component identifier for the simulated peers.
const componentSim pkg.Component = "sim"

var (
	// computerScript is sent once at startup: reset, then enable scanning.
	computerScript = []byte{0xFF, 0xF4}

	// keyboardScript types "hi" in scan code set 2, make and break.
	keyboardScript = []byte{0x33, 0xF0, 0x33, 0x43, 0xF0, 0x43}
)

const (
	peerPoll    = time.Millisecond
	typingDelay = 250 * time.Millisecond
)

// simulated binds both ports to simulated buses with a scripted keyboard
// and computer on the far ends.
func simulated(cfg *config.Config, sink report.Reporter) *wiring {
	devBus := sim.NewBus()
	ctrl := irq.NewController(nil)
	dev := device.New(port.New(port.RoleDevice, devBus.End("relay")), ctrl, line.NoWait{})
	dev.SetGuard(cfg.Guard())
	ctrl.Attach(dev.Edge)
	devBus.Watch(func(bool) { ctrl.Raise() })
	kb := sim.NewKeyboard(devBus, line.NoWait{})
	kb.AutoAck = true

	hostBus := sim.NewBus()
	h := host.New(port.New(port.RoleHost, hostBus.End("relay")), line.NoWait{})
	pc := sim.NewComputer(hostBus, line.NoWait{})

	var wg sync.WaitGroup
	return &wiring{
		relay: relay.New(h, dev, sink),
		start: func(ctx context.Context) {
			wg.Add(2)
			go func() {
				defer wg.Done()
				runKeyboard(ctx, kb, keyboardScript)
			}()
			go func() {
				defer wg.Done()
				runComputer(ctx, pc, computerScript)
			}()
		},
		stop: func() error {
			wg.Wait()
			pkg.LogInfo(componentSim, "simulation finished",
				"keyboard_commands", len(kb.Commands()),
				"keyboard_errors", kb.Errors(),
				"computer_received", len(pc.Received()),
				"computer_errors", pc.Errors())
			return nil
		},
	}
}

// runKeyboard answers commands and types script, one byte per typingDelay.
func runKeyboard(ctx context.Context, kb *sim.Keyboard, script []byte) {
	t := time.NewTicker(peerPoll)
	defer t.Stop()
	next := time.Now().Add(typingDelay)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if v, ok, err := kb.Poll(); ok {
				pkg.LogDebug(componentSim, "keyboard command", "byte", v, "error", err)
			}
			if len(script) == 0 || now.Before(next) {
				continue
			}
			switch err := kb.Type(script[0]); {
			case err == nil:
				script = script[1:]
				next = now.Add(typingDelay)
			case !errors.Is(err, pkg.ErrInhibited):
				pkg.LogWarn(componentSim, "keyboard type failed", "error", err)
			}
		}
	}
}

// runComputer sends script as the line allows and logs what it receives.
func runComputer(ctx context.Context, pc *sim.Computer, script []byte) {
	t := time.NewTicker(peerPoll)
	defer t.Stop()
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if rx := pc.Received(); len(rx) > seen {
				for _, v := range rx[seen:] {
					pkg.LogDebug(componentSim, "computer received", "byte", v)
				}
				seen = len(rx)
			}
			if len(script) == 0 || pc.Sending() {
				continue
			}
			switch err := pc.Send(script[0]); {
			case err == nil:
				script = script[1:]
			case !errors.Is(err, pkg.ErrBusy):
				pkg.LogWarn(componentSim, "computer send failed", "error", err)
			}
		}
	}
}
