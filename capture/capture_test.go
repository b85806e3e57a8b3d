package capture

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/softps2/report"
)

func TestRecordAndRead(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(&buf)
	require.NoError(t, err)

	base := time.Unix(1000, 0)
	r.start = base
	offsets := []time.Duration{time.Millisecond, 3 * time.Millisecond}
	i := 0
	r.now = func() time.Time { d := offsets[i]; i++; return base.Add(d) }

	r.Report(report.ToDevice, 0xED)
	r.Report(report.ToHost, 0xFA)
	require.NoError(t, r.Close())

	got, err := Read(&buf)
	require.NoError(t, err)
	want := []Record{
		{Offset: time.Millisecond, Channel: "pc>kbd", Bytes: []byte{0xED}},
		{Offset: 3 * time.Millisecond, Channel: "kbd>pc", Bytes: []byte{0xFA}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateAndDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.csv")
	r, err := Create(path)
	require.NoError(t, err)
	r.Report(report.ToHost, 0x41)
	require.NoError(t, r.Close())

	got, err := Decode(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kbd>pc", got[0].Channel)
	assert.Equal(t, []byte{0x41}, got[0].Bytes)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad header", "a,b,c\n"},
		{"bad offset", "Nanoseconds,Channel,Hex Bytes\nsoon,kbd>pc,41\n"},
		{"bad hex", "Nanoseconds,Channel,Hex Bytes\n10,kbd>pc,zz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewBufferString(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
