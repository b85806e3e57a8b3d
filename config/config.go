// Package config loads the relay's settings from a JSON file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardnew/softps2/pkg"
	"github.com/ardnew/softps2/report"
)

// MaxFileSize bounds the size of a configuration file.
const MaxFileSize = 1 << 20

// Pins names the GPIO lines of one port. Sense is an optional second input
// wired to the clock, read before each bit the relay clocks out.
type Pins struct {
	Clock string `json:"clock"`
	Data  string `json:"data"`
	Sense string `json:"sense,omitempty"`
}

// Empty reports whether no pin is named.
func (p Pins) Empty() bool {
	return p.Clock == "" && p.Data == "" && p.Sense == ""
}

func (p Pins) validate(port string) error {
	if p.Empty() {
		return nil
	}
	if p.Clock == "" || p.Data == "" {
		return fmt.Errorf("%s port needs both clock and data pins: %w", port, pkg.ErrInvalidParameter)
	}
	if p.Clock == p.Data {
		return fmt.Errorf("%s port clock and data share pin %q: %w", port, p.Clock, pkg.ErrInvalidParameter)
	}
	return nil
}

// Config holds every relay setting.
type Config struct {
	// Device is the port wired to the peripheral.
	Device Pins `json:"device"`
	// Host is the port wired to the computer.
	Host Pins `json:"host"`

	// GuardMS is the stuck-bus guard in milliseconds.
	GuardMS int `json:"guard_ms"`

	// LogPort is the serial device receiving relay lines; empty means
	// standard output.
	LogPort string `json:"log_port,omitempty"`
	LogBaud int    `json:"log_baud"`

	// CapturePath, when set, records every relayed byte as CSV.
	CapturePath string `json:"capture_path,omitempty"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		GuardMS:   10,
		LogBaud:   report.DefaultBaudRate,
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Load reads the file at path over the defaults and validates the result.
// The file must have a .json extension and no unknown fields.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pkg.LogDebug(pkg.ComponentConfig, "config loaded", "path", cleanPath)
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.GuardMS < 1 || c.GuardMS > 255 {
		return fmt.Errorf("guard_ms must be between 1 and 255, got %d: %w", c.GuardMS, pkg.ErrInvalidParameter)
	}
	if c.LogBaud <= 0 {
		return fmt.Errorf("log_baud must be positive, got %d: %w", c.LogBaud, pkg.ErrInvalidParameter)
	}
	if err := c.Device.validate("device"); err != nil {
		return err
	}
	if err := c.Host.validate("host"); err != nil {
		return err
	}
	if _, err := pkg.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := pkg.ParseLogFormat(c.LogFormat); err != nil {
		return err
	}
	return nil
}

// Guard returns GuardMS as a tick count.
func (c *Config) Guard() uint8 {
	return uint8(c.GuardMS)
}

// Apply configures the package logger from LogLevel and LogFormat.
func (c *Config) Apply() error {
	level, err := pkg.ParseLogLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := pkg.ParseLogFormat(c.LogFormat)
	if err != nil {
		return err
	}
	pkg.SetLogFormat(format)
	pkg.SetLogLevel(level)
	return nil
}
