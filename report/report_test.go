package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendLine(t *testing.T) {
	tests := []struct {
		name string
		dir  Direction
		v    byte
		want string
	}{
		{"to device", ToDevice, 0x1B, "H 1B ->    D\r\n"},
		{"to host", ToHost, 0x41, "H    <- 41 D\r\n"},
		{"to host low nibble", ToHost, 0x0a, "H    <- 0A D\r\n"},
		{"to device high byte", ToDevice, 0xFA, "H FA ->    D\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendLine(nil, tt.dir, tt.v)))
		})
	}
}

func TestDirectionNames(t *testing.T) {
	assert.Equal(t, "computer→peripheral", ToDevice.String())
	assert.Equal(t, "peripheral→computer", ToHost.String())
	assert.Equal(t, "unknown", Direction(7).String())
	assert.Equal(t, "pc>kbd", ToDevice.Channel())
	assert.Equal(t, "kbd>pc", ToHost.Channel())
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "peripheral→computer 41", Event{Dir: ToHost, Byte: 0x41}.String())
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Report(ToDevice, 0xED)
	w.Report(ToHost, 0xFA)
	assert.Equal(t, "H ED ->    D\r\nH    <- FA D\r\n", buf.String())
	assert.Zero(t, w.Dropped())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestWriterDropsOnError(t *testing.T) {
	w := NewWriter(failingWriter{})
	w.Report(ToHost, 0x41)
	w.Report(ToHost, 0x42)
	assert.Equal(t, uint64(2), w.Dropped())
}

func TestMultiAndRecorder(t *testing.T) {
	var a, b Recorder
	calls := 0
	m := Multi{&a, &b, Func(func(Direction, byte) { calls++ })}
	m.Report(ToHost, 0x41)
	m.Report(ToDevice, 0xED)

	want := []Event{{ToHost, 0x41}, {ToDevice, 0xED}}
	assert.Equal(t, want, a.Events())
	assert.Equal(t, want, b.Events())
	assert.Equal(t, 2, calls)
}
