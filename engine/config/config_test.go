package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.Postproc.DoubleTapTime.Duration != 250*time.Millisecond {
		t.Errorf("expected 250ms double tap, got %v", cfg.Postproc.DoubleTapTime)
	}
}

func TestLoadFromReader(t *testing.T) {
	src := `
[graphics]
width = 1024
height = 768
rotation = 90

[[input]]
name = "table"
provider = "tuio"
args = "0.0.0.0:3333"

[[input]]
provider = "mouse"

[postproc]
retain_time = "100ms"
jitter_distance = 0.004
jitter_ignore_devices = ["mouse"]

[[postproc.ignore]]
x1 = 0.0
y1 = 0.0
x2 = 0.1
y2 = 0.1
`
	cfg, err := LoadFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Graphics.Width != 1024 || cfg.Graphics.Rotation != 90 {
		t.Errorf("expected 1024 wide rotated 90, got %d %d", cfg.Graphics.Width, cfg.Graphics.Rotation)
	}
	if cfg.Graphics.Title != "grovetouch" {
		t.Errorf("expected default title to survive, got %q", cfg.Graphics.Title)
	}
	if len(cfg.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(cfg.Inputs))
	}
	if cfg.Inputs[0].Args != "0.0.0.0:3333" {
		t.Errorf("expected tuio args, got %q", cfg.Inputs[0].Args)
	}
	if cfg.Inputs[1].Name != "mouse" {
		t.Errorf("expected unnamed input to take its provider name, got %q", cfg.Inputs[1].Name)
	}
	if cfg.Postproc.RetainTime.Duration != 100*time.Millisecond {
		t.Errorf("expected 100ms retain, got %v", cfg.Postproc.RetainTime)
	}
	if len(cfg.Postproc.Ignore) != 1 || cfg.Postproc.Ignore[0].X2 != 0.1 {
		t.Errorf("expected one ignore zone, got %v", cfg.Postproc.Ignore)
	}
}

func TestLoadKeepsDefaultInputs(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader("[graphics]\nfps = 30\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0].Provider != "mouse" {
		t.Errorf("expected default mouse input, got %v", cfg.Inputs)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"rotation", "[graphics]\nrotation = 45\n"},
		{"negative distance", "[postproc]\nretain_distance = -1.0\n"},
		{"missing provider", "[[input]]\nname = \"x\"\n"},
		{"duplicate input", "[[input]]\nprovider = \"mouse\"\n[[input]]\nprovider = \"mouse\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tc.src))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[postproc]\nretain_time = \"soon\"\n"))
	if err == nil {
		t.Fatalf("expected an error for a bad duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROVE_TOUCH_FPS", "120")
	t.Setenv("GROVE_TOUCH_ROTATION", "180")
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Graphics.FPS != 120 || cfg.Graphics.Rotation != 180 {
		t.Errorf("expected fps 120 rotation 180, got %d %d", cfg.Graphics.FPS, cfg.Graphics.Rotation)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Graphics.Width != 800 {
		t.Errorf("expected defaults, got width %d", cfg.Graphics.Width)
	}
}
