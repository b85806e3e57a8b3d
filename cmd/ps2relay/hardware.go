package main

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/softps2/config"
	"github.com/ardnew/softps2/device"
	"github.com/ardnew/softps2/host"
	"github.com/ardnew/softps2/irq"
	"github.com/ardnew/softps2/line"
	"github.com/ardnew/softps2/line/gpio"
	"github.com/ardnew/softps2/port"
	"github.com/ardnew/softps2/relay"
	"github.com/ardnew/softps2/report"
)

// hardware binds both ports to GPIO pins. The peripheral port's clock edges
// are watched on a goroutine that raises the edge handler; the handler is
// also raised whenever the relay pulls that clock low itself.
func hardware(cfg *config.Config, sink report.Reporter) (*wiring, error) {
	devLine, err := gpio.Open(cfg.Device.Clock, cfg.Device.Data, cfg.Device.Sense)
	if err != nil {
		return nil, fmt.Errorf("device port: %w", err)
	}
	hostLine, err := gpio.Open(cfg.Host.Clock, cfg.Host.Data, cfg.Host.Sense)
	if err != nil {
		return nil, multierror.Append(fmt.Errorf("host port: %w", err), devLine.Halt())
	}

	ctrl := irq.NewController(nil)
	dev := device.New(port.New(port.RoleDevice, devLine), ctrl, line.Spin{})
	dev.SetGuard(cfg.Guard())
	ctrl.Attach(dev.Edge)
	devLine.OnClockLow(ctrl.Raise)

	h := host.New(port.New(port.RoleHost, hostLine), line.Spin{})

	done := make(chan struct{})
	return &wiring{
		relay: relay.New(h, dev, sink),
		start: func(ctx context.Context) {
			go func() {
				defer close(done)
				devLine.Watch(ctx, ctrl.Raise)
			}()
		},
		stop: func() error {
			<-done
			var result error
			for _, l := range []*gpio.Line{devLine, hostLine} {
				if err := l.Err(); err != nil {
					result = multierror.Append(result, err)
				}
				if err := l.Halt(); err != nil {
					result = multierror.Append(result, err)
				}
			}
			return result
		},
	}, nil
}
