package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Graphics Graphics `toml:"graphics"`
	Inputs   []Input  `toml:"input"`
	Postproc Postproc `toml:"postproc"`
	Record   Record   `toml:"record"`
}

type Graphics struct {
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	Rotation    int    `toml:"rotation"`
	FPS         int    `toml:"fps"` // 0 runs unpaced
	VSync       bool   `toml:"vsync"`
	Title       string `toml:"title"`
	ShowTouches bool   `toml:"show_touches"`
}

// Input declares one provider instance: Provider is the factory id and Args
// its provider specific argument string.
type Input struct {
	Name     string `toml:"name"`
	Provider string `toml:"provider"`
	Args     string `toml:"args"`
}

type Postproc struct {
	Coalesce            bool     `toml:"coalesce"`
	DoubleTapTime       Duration `toml:"double_tap_time"`
	DoubleTapDistance   float64  `toml:"double_tap_distance"`
	RetainTime          Duration `toml:"retain_time"`
	RetainDistance      float64  `toml:"retain_distance"`
	JitterDistance      float64  `toml:"jitter_distance"`
	JitterIgnoreDevices []string `toml:"jitter_ignore_devices"`
	Ignore              []Zone   `toml:"ignore"`
}

// Zone is a normalized rectangle in which new touches are ignored.
type Zone struct {
	X1 float64 `toml:"x1"`
	Y1 float64 `toml:"y1"`
	X2 float64 `toml:"x2"`
	Y2 float64 `toml:"y2"`
}

type Record struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Session string `toml:"session"`
}

func DefaultConfig() *Config {
	return &Config{
		Graphics: Graphics{
			Width:       800,
			Height:      600,
			FPS:         60,
			VSync:       true,
			Title:       "grovetouch",
			ShowTouches: true,
		},
		Inputs: []Input{
			{Name: "mouse", Provider: "mouse"},
		},
		Postproc: Postproc{
			Coalesce:          true,
			DoubleTapTime:     Duration{250 * time.Millisecond},
			DoubleTapDistance: 0.02,
			RetainDistance:    0.05,
			JitterDistance:    0,
		},
		Record: Record{
			Path:    "touches.db",
			Session: "default",
		},
	}
}

// Validate reports the first invalid value found. Inputs without a name
// take their provider id.
func (c *Config) Validate() error {
	g := c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("graphics size %dx%d: %w", g.Width, g.Height, ErrInvalid)
	}
	switch g.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("graphics rotation %d: %w", g.Rotation, ErrInvalid)
	}
	if g.FPS < 0 {
		return fmt.Errorf("graphics fps %d: %w", g.FPS, ErrInvalid)
	}
	p := c.Postproc
	for name, v := range map[string]float64{
		"double_tap_distance": p.DoubleTapDistance,
		"retain_distance":     p.RetainDistance,
		"jitter_distance":     p.JitterDistance,
	} {
		if v < 0 {
			return fmt.Errorf("postproc %s %v: %w", name, v, ErrInvalid)
		}
	}
	for i, z := range p.Ignore {
		if z.X2 < z.X1 || z.Y2 < z.Y1 {
			return fmt.Errorf("postproc ignore zone %d: %w", i, ErrInvalid)
		}
	}
	seen := map[string]bool{}
	for i, in := range c.Inputs {
		if in.Provider == "" {
			return fmt.Errorf("input %d has no provider: %w", i, ErrInvalid)
		}
		if in.Name == "" {
			c.Inputs[i].Name = in.Provider
		}
		if seen[c.Inputs[i].Name] {
			return fmt.Errorf("input name %q repeated: %w", c.Inputs[i].Name, ErrInvalid)
		}
		seen[c.Inputs[i].Name] = true
	}
	if c.Record.Enabled && c.Record.Path == "" {
		return fmt.Errorf("record enabled without path: %w", ErrInvalid)
	}
	return nil
}
