package pkg

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLog points the package logger at a buffer and restores the previous
// logger and level when the test ends.
func captureLog(t *testing.T, level slog.Level, format LogFormat) *bytes.Buffer {
	t.Helper()
	logger, prev := DefaultLogger, GetLogLevel()
	t.Cleanup(func() {
		SetLogger(logger)
		SetLogLevel(prev)
	})
	var buf bytes.Buffer
	SetLogOutput(&buf, format)
	SetLogLevel(level)
	return &buf
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel(GetLogLevel())

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		SetLogLevel(level)
		assert.Equal(t, level, GetLogLevel())
	}
}

func TestDefaultLevelSuppressesChatter(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn, LogFormatText)

	LogDebug(ComponentRelay, "send deferred")
	LogInfo(ComponentRelay, "relay started")
	assert.Empty(t, buf.String())

	LogWarn(ComponentQueue, "byte dropped", "queue", "host outbound")
	assert.Contains(t, buf.String(), "byte dropped")
	assert.Contains(t, buf.String(), "component=queue")
	assert.Contains(t, buf.String(), "queue=\"host outbound\"")
}

func TestLevelChangeAppliesToInstalledLogger(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn, LogFormatText)

	LogInfo(ComponentHost, "before")
	SetLogLevel(slog.LevelInfo)
	LogInfo(ComponentHost, "after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(Component, string, ...any)
		want string
	}{
		{"debug", LogDebug, "level=DEBUG"},
		{"info", LogInfo, "level=INFO"},
		{"warn", LogWarn, "level=WARN"},
		{"error", LogError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t, slog.LevelDebug, LogFormatText)
			tt.log(ComponentDevice, tt.name+" message", "byte", 0xFA)

			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, tt.name+" message")
			assert.Contains(t, out, "component=device")
			assert.Contains(t, out, "byte=250")
		})
	}
}

func TestSetLogOutputJSON(t *testing.T) {
	buf := captureLog(t, slog.LevelInfo, LogFormatJSON)

	LogInfo(ComponentRelay, "relay started")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "relay started", rec["msg"])
	assert.Equal(t, "relay", rec["component"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestSetLogger(t *testing.T) {
	captureLog(t, slog.LevelWarn, LogFormatText)

	// A caller-supplied handler filters by its own level.
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	LogDebug(ComponentLine, "edge")
	assert.Contains(t, buf.String(), "component=line")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.name)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidParameter))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    LogFormat
		wantErr bool
	}{
		{"", LogFormatText, false},
		{"text", LogFormatText, false},
		{"json", LogFormatJSON, false},
		{"yaml", LogFormatText, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogFormat(tt.name)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidParameter))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
