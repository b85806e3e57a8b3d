// Package report is the relay's debug log sink: one notification per byte
// successfully moved between the two ports.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/ardnew/softps2/pkg"
)

// DefaultBaudRate is the sink's serial speed when none is configured.
const DefaultBaudRate = 115200

// Direction is the way a relayed byte travelled.
type Direction uint8

// Relay directions.
const (
	ToDevice Direction = iota // computer to peripheral
	ToHost                    // peripheral to computer
)

// String returns the direction with an arrow between the two parties.
func (d Direction) String() string {
	switch d {
	case ToDevice:
		return "computer→peripheral"
	case ToHost:
		return "peripheral→computer"
	default:
		return "unknown"
	}
}

// Channel returns a short ASCII name for the direction, used in captures.
func (d Direction) Channel() string {
	switch d {
	case ToDevice:
		return "pc>kbd"
	case ToHost:
		return "kbd>pc"
	default:
		return "unknown"
	}
}

// Reporter receives relay notifications. Report is called from the main
// loop and must not block for long.
type Reporter interface {
	Report(d Direction, v byte)
}

// Func adapts a function to the Reporter interface.
type Func func(d Direction, v byte)

// Report calls f(d, v).
func (f Func) Report(d Direction, v byte) { f(d, v) }

// Multi fans one notification out to several reporters in order.
type Multi []Reporter

// Report forwards to every reporter.
func (m Multi) Report(d Direction, v byte) {
	for _, r := range m {
		r.Report(d, v)
	}
}

// Event is one recorded notification.
type Event struct {
	Dir  Direction
	Byte byte
}

// String renders the event as "<direction> <hex>".
func (e Event) String() string {
	return fmt.Sprintf("%s %02X", e.Dir, e.Byte)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Report appends the event.
func (r *Recorder) Report(d Direction, v byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Dir: d, Byte: v})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Log reports through the structured logger at info level.
type Log struct{}

// Report logs the event.
func (Log) Report(d Direction, v byte) {
	pkg.LogInfo(pkg.ComponentRelay, "relayed", "dir", d.String(), "byte", hexByte(v))
}

const hexDigits = "0123456789ABCDEF"

func hexByte(v byte) string {
	return string([]byte{hexDigits[v>>4], hexDigits[v&0x0f]})
}

// AppendLine appends the sink's text rendering of one event to buf:
//
//	H 1B ->    D    computer to peripheral
//	H    <- 41 D    peripheral to computer
func AppendLine(buf []byte, d Direction, v byte) []byte {
	hi, lo := hexDigits[v>>4], hexDigits[v&0x0f]
	switch d {
	case ToDevice:
		buf = append(buf, 'H', ' ', hi, lo, ' ', '-', '>', ' ', ' ', ' ', ' ', 'D')
	default:
		buf = append(buf, 'H', ' ', ' ', ' ', ' ', '<', '-', ' ', hi, lo, ' ', 'D')
	}
	return append(buf, '\r', '\n')
}

// Writer renders notifications as text lines onto a byte stream. The stream
// is best-effort: a failed write is logged and the line dropped.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	buf     []byte
	dropped uint64
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 16)}
}

// Report writes one line.
func (r *Writer) Report(d Direction, v byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = AppendLine(r.buf[:0], d, v)
	if _, err := r.w.Write(r.buf); err != nil {
		r.dropped++
		pkg.LogWarn(pkg.ComponentRelay, "debug sink write failed", "error", err, "dropped", r.dropped)
	}
}

// Dropped returns the number of lines that could not be written.
func (r *Writer) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
