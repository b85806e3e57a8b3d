package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/softps2/capture"
	"github.com/ardnew/softps2/config"
	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/report"
)

func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o, err := parseFlags(fs, args)
	require.NoError(t, err)
	return loadConfig(fs, o)
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"device": {"clock": "GPIO17", "data": "GPIO27"},
		"host": {"clock": "GPIO22", "data": "GPIO23"},
		"guard_ms": 20
	}`), 0o600))

	cfg, err := parse(t, "-config", path, "-host-sense", "GPIO24", "-baud", "9600", "-v")
	require.NoError(t, err)
	assert.Equal(t, "GPIO17", cfg.Device.Clock)
	assert.Equal(t, "GPIO24", cfg.Host.Sense)
	assert.Equal(t, 20, cfg.GuardMS, "unset flags keep file values")
	assert.Equal(t, 9600, cfg.LogBaud)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestPinsRequiredWithoutSim(t *testing.T) {
	_, err := parse(t)
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)

	cfg, err := parse(t, "-sim", "-guard", "5")
	require.NoError(t, err)
	assert.Equal(t, uint8(5), cfg.Guard())
}

func TestInvalidGuardRejected(t *testing.T) {
	_, err := parse(t, "-sim", "-guard", "300")
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
}

func TestSinksCapture(t *testing.T) {
	cfg := config.Default()
	cfg.CapturePath = filepath.Join(t.TempDir(), "relay.csv")

	var out bytes.Buffer
	sink, closeSinks, err := sinks(cfg, &out)
	require.NoError(t, err)
	sink.Report(report.ToHost, 0x41)
	require.NoError(t, closeSinks())

	assert.Equal(t, "H    <- 41 D\r\n", out.String())
	records, err := capture.Decode(cfg.CapturePath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte{0x41}, records[0].Bytes)
}

func TestRunSimulated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-sim", "-guard", "10"}, &out))

	// the reset command reaches the keyboard and its acknowledge comes back
	assert.Contains(t, out.String(), "H FF ->    D\r\n")
	assert.Contains(t, out.String(), "H    <- FA D\r\n")
}
