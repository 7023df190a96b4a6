package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// LoadFromFile reads configuration from path. A missing file yields the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes TOML on top of DefaultConfig. A config that lists
// [[input]] entries replaces the default inputs.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Inputs = nil
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if !md.IsDefined("input") {
		cfg.Inputs = DefaultConfig().Inputs
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GROVE_TOUCH_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graphics.FPS = n
		}
	}
	if v := os.Getenv("GROVE_TOUCH_ROTATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graphics.Rotation = n
		}
	}
}
