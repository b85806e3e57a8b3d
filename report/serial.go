//go:build !tinygo

package report

import (
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/ardnew/softps2/pkg"
)

// Port is the minimal stream a sink needs. A [serial.Port] satisfies it.
type Port interface {
	io.Writer
	io.Closer
}

// Opener opens the named serial device; tests replace it.
type Opener func(path string, mode *serial.Mode) (serial.Port, error)

// OpenSerial opens the debug sink's serial device at baud 8N1.
func OpenSerial(path string, baud int) (Port, error) {
	return openSerial(serial.Open, path, baud)
}

func openSerial(open Opener, path string, baud int) (Port, error) {
	if path == "" {
		return nil, fmt.Errorf("serial sink: empty path: %w", pkg.ErrInvalidParameter)
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial sink %s: %w", path, err)
	}
	pkg.LogInfo(pkg.ComponentRelay, "debug sink opened", "port", path, "baud", baud)
	return port, nil
}
