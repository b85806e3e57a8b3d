// Package pkg provides shared utilities for the softps2 relay.
//
// This package contains common functionality used by both protocol engines
// and the relay supervisor, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for frame and bus errors
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with relay-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentRelay, "bus timeout", "port", "device")
//
// # Errors
//
// Frame and bus errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrParity) {
//	    // Frame dropped, nothing delivered
//	}
package pkg
