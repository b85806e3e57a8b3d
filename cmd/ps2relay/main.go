// Command ps2relay relays a PS/2 keyboard or mouse to a computer through
// two bit-banged ports, printing every byte that crosses.
//
// Usage:
//
//	ps2relay -config relay.json
//	ps2relay -device-clock GPIO17 -device-data GPIO27 -host-clock GPIO22 -host-data GPIO23
//	ps2relay -sim -v
//
// With -sim the ports are wired to a simulated keyboard and computer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/softps2/capture"
	"github.com/ardnew/softps2/config"
	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/pkg/prof"
	"github.com/ardnew/softps2/relay"
	"github.com/ardnew/softps2/report"
	"github.com/ardnew/softps2/tick"
)

// Component identifier for command logging.
const componentMain pkg.Component = "main"

type options struct {
	configPath  string
	verbose     bool
	jsonOut     bool
	sim         bool
	cpuProfile  string
	heapProfile string

	deviceClock, deviceData        string
	hostClock, hostData, hostSense string
	guardMS, baud                  int
	logPort, capturePath           string
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "JSON configuration file")
	fs.BoolVar(&o.verbose, "v", false, "Enable verbose logging")
	fs.BoolVar(&o.jsonOut, "json", false, "Output logs as JSON")
	fs.BoolVar(&o.sim, "sim", false, "Relay between a simulated keyboard and computer")
	fs.StringVar(&o.cpuProfile, "cpuprofile", "", "Write a CPU profile (needs -tags profile)")
	fs.StringVar(&o.heapProfile, "heapprofile", "", "Write a heap profile on exit (needs -tags profile)")
	fs.StringVar(&o.deviceClock, "device-clock", "", "Clock pin of the peripheral port")
	fs.StringVar(&o.deviceData, "device-data", "", "Data pin of the peripheral port")
	fs.StringVar(&o.hostClock, "host-clock", "", "Clock pin of the computer port")
	fs.StringVar(&o.hostData, "host-data", "", "Data pin of the computer port")
	fs.StringVar(&o.hostSense, "host-sense", "", "Optional clock sense pin of the computer port")
	fs.IntVar(&o.guardMS, "guard", 0, "Stuck-bus guard in milliseconds")
	fs.StringVar(&o.logPort, "log-port", "", "Serial port for relay lines (default stdout)")
	fs.IntVar(&o.baud, "baud", 0, "Baud rate of -log-port")
	fs.StringVar(&o.capturePath, "capture", "", "Record relayed bytes to a CSV file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// loadConfig reads the configuration file, if any, and overlays every flag
// set on the command line.
func loadConfig(fs *flag.FlagSet, o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device-clock":
			cfg.Device.Clock = o.deviceClock
		case "device-data":
			cfg.Device.Data = o.deviceData
		case "host-clock":
			cfg.Host.Clock = o.hostClock
		case "host-data":
			cfg.Host.Data = o.hostData
		case "host-sense":
			cfg.Host.Sense = o.hostSense
		case "guard":
			cfg.GuardMS = o.guardMS
		case "log-port":
			cfg.LogPort = o.logPort
		case "baud":
			cfg.LogBaud = o.baud
		case "capture":
			cfg.CapturePath = o.capturePath
		}
	})
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if o.jsonOut {
		cfg.LogFormat = "json"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !o.sim && (cfg.Device.Empty() || cfg.Host.Empty()) {
		return nil, fmt.Errorf("pins for both ports are required without -sim: %w", pkg.ErrInvalidParameter)
	}
	return cfg, nil
}

// sinks opens the debug line output and the optional capture. The returned
// closer releases both.
func sinks(cfg *config.Config, stdout io.Writer) (report.Reporter, func() error, error) {
	var closers []io.Closer
	out := stdout
	if cfg.LogPort != "" {
		p, err := report.OpenSerial(cfg.LogPort, cfg.LogBaud)
		if err != nil {
			return nil, nil, err
		}
		out = p
		closers = append(closers, p)
	}
	rs := report.Multi{report.NewWriter(out), report.Log{}}
	if cfg.CapturePath != "" {
		c, err := capture.Create(cfg.CapturePath)
		if err != nil {
			return nil, nil, multierror.Append(err, closeAll(closers))
		}
		rs = append(rs, c)
		closers = append(closers, c)
	}
	return rs, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []io.Closer) error {
	var result error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// wiring is a relay bound to its ports, with whatever must run beside it
// and be released after it.
type wiring struct {
	relay *relay.Relay
	start func(ctx context.Context)
	stop  func() error
}

func run(ctx context.Context, args []string, stdout io.Writer) (re error) {
	fs := flag.NewFlagSet("ps2relay", flag.ContinueOnError)
	o, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(fs, o)
	if err != nil {
		return err
	}
	if err := cfg.Apply(); err != nil {
		return err
	}

	if o.cpuProfile != "" {
		if err := prof.StartCPU(o.cpuProfile); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer func() {
			if err := prof.StopCPU(); err != nil {
				re = multierror.Append(re, err)
			}
		}()
	}
	if o.heapProfile != "" {
		defer func() {
			if err := prof.Write(prof.ProfileHeap, o.heapProfile); err != nil {
				re = multierror.Append(re, err)
			}
		}()
	}

	sink, closeSinks, err := sinks(cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSinks(); err != nil {
			re = multierror.Append(re, err)
		}
	}()

	var w *wiring
	if o.sim {
		w = simulated(cfg, sink)
	} else if w, err = hardware(cfg, sink); err != nil {
		return err
	}
	defer func() {
		if err := w.stop(); err != nil {
			re = multierror.Append(re, err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.relay.Init()
	w.start(ctx)
	pkg.LogInfo(componentMain, "relaying", "sim", o.sim, "guard_ms", cfg.GuardMS)
	if err := w.relay.Run(ctx, tick.Interval); err != nil {
		return err
	}

	s := w.relay.Stats()
	pkg.LogInfo(componentMain, "relay finished",
		"to_device", s.ToDevice,
		"to_host", s.ToHost,
		"parity", s.Parity,
		"framing", s.Framing,
		"retries", s.Retries,
		"timeouts", s.Timeouts,
		"dropped", s.Dropped)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		pkg.LogError(componentMain, "relay failed", "error", err)
		os.Exit(1)
	}
}
