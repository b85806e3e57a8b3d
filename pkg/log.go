package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

// Relay component identifiers.
const (
	ComponentDevice  Component = "device"
	ComponentHost    Component = "host"
	ComponentRelay   Component = "relay"
	ComponentLine    Component = "line"
	ComponentQueue   Component = "queue"
	ComponentCapture Component = "capture"
	ComponentConfig  Component = "config"
)

// LogFormat specifies the output format for logging.
type LogFormat int

// Log format options.
const (
	LogFormatText LogFormat = iota // Text format (default)
	LogFormatJSON                  // JSON format
)

var (
	// DefaultLogger receives every LogDebug/Info/Warn/Error call.
	DefaultLogger *slog.Logger

	// logLevel is shared by every handler built by this package, so
	// SetLogLevel takes effect without rebuilding the logger.
	logLevel = new(slog.LevelVar)

	logMutex sync.RWMutex
)

func init() {
	logLevel.Set(slog.LevelWarn)
	DefaultLogger = slog.New(newHandler(os.Stderr, LogFormatText))
}

func newHandler(w io.Writer, format LogFormat) slog.Handler {
	opts := &slog.HandlerOptions{Level: logLevel}
	if format == LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetLogLevel sets the minimum level for the package logger.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// GetLogLevel returns the minimum level for the package logger.
func GetLogLevel() slog.Level {
	return logLevel.Level()
}

// SetLogger replaces the package logger. Its handler applies its own level.
func SetLogger(logger *slog.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	DefaultLogger = logger
}

// SetLogOutput directs the package logger to w in the given format, filtered
// by the level set with SetLogLevel.
func SetLogOutput(w io.Writer, format LogFormat) {
	SetLogger(slog.New(newHandler(w, format)))
}

// SetLogFormat is SetLogOutput on standard error.
func SetLogFormat(format LogFormat) {
	SetLogOutput(os.Stderr, format)
}

// logAt tags the record with its component. Disabled levels return before
// the attribute slice is built; LogDebug sits on the relay's hot path.
func logAt(level slog.Level, component Component, msg string, args []any) {
	logMutex.RLock()
	logger := DefaultLogger
	logMutex.RUnlock()
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.Log(ctx, level, msg, append([]any{"component", string(component)}, args...)...)
}

// LogDebug logs at debug level.
func LogDebug(component Component, msg string, args ...any) {
	logAt(slog.LevelDebug, component, msg, args)
}

// LogInfo logs at info level.
func LogInfo(component Component, msg string, args ...any) {
	logAt(slog.LevelInfo, component, msg, args)
}

// LogWarn logs at warn level.
func LogWarn(component Component, msg string, args ...any) {
	logAt(slog.LevelWarn, component, msg, args)
}

// LogError logs at error level.
func LogError(component Component, msg string, args ...any) {
	logAt(slog.LevelError, component, msg, args)
}

// ParseLogLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log level %q: %w", name, ErrInvalidParameter)
	}
	return level, nil
}

// ParseLogFormat converts a format name (text, json) to a LogFormat.
func ParseLogFormat(name string) (LogFormat, error) {
	switch name {
	case "", "text":
		return LogFormatText, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return LogFormatText, fmt.Errorf("log format %q: %w", name, ErrInvalidParameter)
	}
}
