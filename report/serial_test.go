//go:build !tinygo

package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/ardnew/softps2/pkg"
)

type fakePort struct {
	serial.Port
	buf    bytes.Buffer
	closed bool
}

func (p *fakePort) Write(b []byte) (int, error) { return p.buf.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

func TestOpenSerial(t *testing.T) {
	fake := &fakePort{}
	var gotPath string
	var gotMode *serial.Mode
	open := func(path string, mode *serial.Mode) (serial.Port, error) {
		gotPath, gotMode = path, mode
		return fake, nil
	}

	p, err := openSerial(open, "/dev/ttyACM0", 0)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", gotPath)
	assert.Equal(t, DefaultBaudRate, gotMode.BaudRate)
	assert.Equal(t, 8, gotMode.DataBits)

	NewWriter(p).Report(ToHost, 0x41)
	assert.Equal(t, "H    <- 41 D\r\n", fake.buf.String())
	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}

func TestOpenSerialErrors(t *testing.T) {
	_, err := openSerial(nil, "", 9600)
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)

	boom := errors.New("no such device")
	_, err = openSerial(func(string, *serial.Mode) (serial.Port, error) { return nil, boom }, "/dev/null0", 9600)
	assert.ErrorIs(t, err, boom)
}
