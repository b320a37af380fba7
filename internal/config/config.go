// Package config loads the session configuration for marker-score.
//
// A Config is assembled once, in this order, and then treated as read-only:
//
//  1. Default() values
//  2. An optional YAML file
//  3. MARKER_* environment variables
//  4. Command-line flags (applied by the caller)
//
// Validate must pass before the configuration is handed to any component.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/marker-score/internal/detection"
	"gopkg.in/yaml.v3"
)

// CameraConfig selects the capture device for live mode.
type CameraConfig struct {
	Device int `yaml:"device" json:"device"`
}

// DashboardConfig controls the live web dashboard.
type DashboardConfig struct {
	// Addr is the listen address, e.g. ":8080". Empty disables the dashboard.
	Addr string `yaml:"addr" json:"addr"`
}

// SnapshotConfig controls saving annotated frames to disk.
type SnapshotConfig struct {
	// Dir is the output directory. Empty disables snapshots.
	Dir string `yaml:"dir" json:"dir"`

	// Every saves one frame per this many ticks (>= 1).
	Every int `yaml:"every" json:"every"`
}

// Config is the complete, immutable configuration for one session.
type Config struct {
	// Width and Height are the frame dimensions every source delivers.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	// BlurSigma applies a Gaussian pre-blur to each frame when > 0.
	BlurSigma float64 `yaml:"blur_sigma" json:"blur_sigma"`

	Detection detection.Params `yaml:"detection" json:"detection"`
	Camera    CameraConfig     `yaml:"camera" json:"camera"`
	Dashboard DashboardConfig  `yaml:"dashboard" json:"dashboard"`
	Snapshots SnapshotConfig   `yaml:"snapshots" json:"snapshots"`

	// DatabaseURL enables the PostgreSQL tick log when non-empty.
	DatabaseURL string `yaml:"database_url" json:"-"`

	// LogLevel is "info" or "debug".
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Width:     640,
		Height:    480,
		Detection: detection.DefaultParams(),
		Snapshots: SnapshotConfig{Every: 30},
		LogLevel:  "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (if non-empty) and
// the environment. The result is not yet validated, so that callers can apply
// flag overrides first.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides cfg from MARKER_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	str("MARKER_LOG_LEVEL", &cfg.LogLevel)
	str("MARKER_DASHBOARD_ADDR", &cfg.Dashboard.Addr)
	str("MARKER_DATABASE_URL", &cfg.DatabaseURL)
	num("MARKER_STRIDE", &cfg.Detection.Stride)
	num("MARKER_THRESHOLD", &cfg.Detection.Threshold)
	num("MARKER_CAMERA_DEVICE", &cfg.Camera.Device)

	var model string
	str("MARKER_MODEL", &model)
	if model != "" {
		cfg.Detection.Model = detection.ColorModel(strings.ToLower(model))
	}

	return errors.Join(errs...)
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("blur_sigma must be >= 0, got %g", c.BlurSigma)
	}
	if c.Snapshots.Dir != "" && c.Snapshots.Every < 1 {
		return fmt.Errorf("snapshots.every must be >= 1, got %d", c.Snapshots.Every)
	}
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	return nil
}

// Debug reports whether debug logging was requested.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
