package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/marker-score/internal/detection"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.Detection.Model != detection.ModelRGB {
		t.Errorf("Model: got %s, want rgb", cfg.Detection.Model)
	}
	if cfg.Detection.Stride != 5 || cfg.Detection.Threshold != 15 {
		t.Errorf("Stride/Threshold: got %d/%d, want 5/15", cfg.Detection.Stride, cfg.Detection.Threshold)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marker.yaml")
	content := `
width: 320
height: 240
detection:
  model: hsv
  stride: 3
  hsv:
    hue_min: 280
    hue_max: 320
    sat_min: 0.25
    val_min: 0.5
dashboard:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("size: got %dx%d, want 320x240", cfg.Width, cfg.Height)
	}
	if cfg.Detection.Model != detection.ModelHSV {
		t.Errorf("Model: got %s, want hsv", cfg.Detection.Model)
	}
	if cfg.Detection.Stride != 3 {
		t.Errorf("Stride: got %d, want 3", cfg.Detection.Stride)
	}
	// Unset keys keep their defaults
	if cfg.Detection.Threshold != 15 {
		t.Errorf("Threshold: got %d, want default 15", cfg.Detection.Threshold)
	}
	if cfg.Detection.RGB.RedMin != 150 {
		t.Errorf("RGB.RedMin: got %d, want default 150", cfg.Detection.RGB.RedMin)
	}
	if cfg.Detection.HSV.HueMin != 280 || cfg.Detection.HSV.SatMin != 0.25 {
		t.Errorf("HSV: got %+v", cfg.Detection.HSV)
	}
	if cfg.Dashboard.Addr != ":9090" {
		t.Errorf("Dashboard.Addr: got %q", cfg.Dashboard.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("width: [not a number"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail for malformed YAML")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MARKER_STRIDE", "7")
	t.Setenv("MARKER_THRESHOLD", "20")
	t.Setenv("MARKER_MODEL", "HSV")
	t.Setenv("MARKER_LOG_LEVEL", "debug")
	t.Setenv("MARKER_DASHBOARD_ADDR", ":8081")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Detection.Stride != 7 || cfg.Detection.Threshold != 20 {
		t.Errorf("Stride/Threshold: got %d/%d, want 7/20", cfg.Detection.Stride, cfg.Detection.Threshold)
	}
	if cfg.Detection.Model != detection.ModelHSV {
		t.Errorf("Model: got %s, want hsv", cfg.Detection.Model)
	}
	if !cfg.Debug() {
		t.Error("Debug() should be true for log level debug")
	}
	if cfg.Dashboard.Addr != ":8081" {
		t.Errorf("Dashboard.Addr: got %q", cfg.Dashboard.Addr)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	env := map[string]string{"MARKER_STRIDE": "five", "MARKER_CAMERA_DEVICE": "x"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := applyEnv(&cfg, lookup); err == nil {
		t.Error("applyEnv should fail for non-numeric values")
	}
	if cfg.Detection.Stride != 5 {
		t.Errorf("Stride changed to %d on parse error", cfg.Detection.Stride)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Height = -1 }, true},
		{"negative blur", func(c *Config) { c.BlurSigma = -1 }, true},
		{"snapshots without interval", func(c *Config) { c.Snapshots = SnapshotConfig{Dir: "out", Every: 0} }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"bad stride", func(c *Config) { c.Detection.Stride = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate: got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
