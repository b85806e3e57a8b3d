// Package capture records relayed bytes to a CSV file for offline analysis.
//
// Each row holds the nanoseconds since the capture started, the channel
// ("pc>kbd" or "kbd>pc") and the bytes in hex.
package capture

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/report"
)

var header = []string{"Nanoseconds", "Channel", "Hex Bytes"}

var _ report.Reporter = (*Recorder)(nil)

// Recorder writes one CSV row per relayed byte. It implements
// [report.Reporter].
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	out    *csv.Writer
	closer io.Closer
	failed bool
}

// New starts a capture on w and writes the header row.
func New(w io.Writer) (*Recorder, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	r := &Recorder{now: time.Now, out: cw}
	r.start = r.now()
	return r, nil
}

// Create starts a capture in a new file at path.
func Create(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}
	r, err := New(f)
	if err != nil {
		return nil, multierror.Append(fmt.Errorf("write capture header: %w", err), f.Close())
	}
	r.closer = f
	pkg.LogInfo(pkg.ComponentCapture, "capture started", "path", path)
	return r, nil
}

// Report appends a row for v. After the first write error the recorder
// stops writing and logs once.
func (r *Recorder) Report(d report.Direction, v byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed {
		return
	}
	err := r.out.Write([]string{
		strconv.FormatInt(r.now().Sub(r.start).Nanoseconds(), 10),
		d.Channel(),
		hex.EncodeToString([]byte{v}),
	})
	r.out.Flush()
	if err == nil {
		err = r.out.Error()
	}
	if err != nil {
		r.failed = true
		pkg.LogError(pkg.ComponentCapture, "capture write failed", "error", err)
	}
}

// Close flushes the capture and closes the file it was created on.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out.Flush()
	var result error
	if err := r.out.Error(); err != nil {
		result = multierror.Append(result, err)
	}
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		r.closer = nil
	}
	return result
}

// Record is one decoded capture row.
type Record struct {
	Offset  time.Duration
	Channel string
	Bytes   []byte
}

// Read decodes a capture stream.
func Read(in io.Reader) ([]Record, error) {
	rows, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, errors.New("no header found")
	}
	if len(rows[0]) != len(header) || rows[0][0] != header[0] || rows[0][1] != header[1] || rows[0][2] != header[2] {
		return nil, fmt.Errorf("invalid header: %v", rows[0])
	}
	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d: %d fields", i+1, len(row))
		}
		ns, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		data, err := hex.DecodeString(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, Record{Offset: time.Duration(ns), Channel: row[1], Bytes: data})
	}
	return records, nil
}

// Decode reads the capture file at path.
func Decode(path string) (records []Record, re error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()
	return Read(f)
}
