package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.ParticleCount != 25 {
		t.Errorf("expected 25 particles, got %d", cfg.ParticleCount)
	}
	if cfg.DisplayWidth != 5 || cfg.DisplayHeight != 5 {
		t.Errorf("expected 5x5 display, got %dx%d", cfg.DisplayWidth, cfg.DisplayHeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero particles", func(c *Config) { c.ParticleCount = 0 }},
		{"negative grid", func(c *Config) { c.GridWidth = -1 }},
		{"zero spacing", func(c *Config) { c.CellSpacing = 0 }},
		{"zero timestep", func(c *Config) { c.Timestep = 0 }},
		{"zero projection iterations", func(c *Config) { c.ProjectionIterations = 0 }},
		{"overrelaxation too low", func(c *Config) { c.Overrelaxation = 1.0 }},
		{"overrelaxation too high", func(c *Config) { c.Overrelaxation = 2.0 }},
		{"blend below range", func(c *Config) { c.FlipPicBlend = -0.1 }},
		{"blend above range", func(c *Config) { c.FlipPicBlend = 1.1 }},
		{"radius too large", func(c *Config) { c.ParticleRadius = 0.5 }},
		{"separation exceeds cell", func(c *Config) { c.MinSeparation = 1.5 }},
		{"zero collision iterations", func(c *Config) { c.CollisionIterations = 0 }},
		{"zero damping", func(c *Config) { c.Damping = 0 }},
		{"zero display", func(c *Config) { c.DisplayWidth = 0 }},
		{"bad render mode", func(c *Config) { c.RenderMode = "sparkle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("microbit")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("microbit preset should validate: %v", err)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAllValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a := GetPreset("microbit")
	a.Gravity = 123
	b := GetPreset("microbit")
	if b.Gravity == 123 {
		t.Error("mutating a preset copy leaked into the shared table")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.ParticleCount = 42
	cfg.FlipPicBlend = 0.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ParticleCount != 42 {
		t.Errorf("expected 42 particles, got %d", loaded.ParticleCount)
	}
	if loaded.FlipPicBlend != 0.5 {
		t.Errorf("expected blend 0.5, got %f", loaded.FlipPicBlend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
