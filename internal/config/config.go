package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultParticleCount  = 25
	DefaultGridWidth      = 5
	DefaultGridHeight     = 5
	DefaultCellSpacing    = 1.0
	DefaultGravity        = 1.0 // one g, in grid units per tick squared
	DefaultTimestep       = 0.6
	DefaultProjectionIter = 10
	DefaultOverrelaxation = 1.9
	DefaultFlipPicBlend   = 0.8
	DefaultParticleRadius = 0.2
	DefaultCollisionIter  = 8
	DefaultDamping        = 0.99
)

// Config holds every tunable of the simulation and its display mapping.
// It is loaded once at startup; the core never reconfigures at runtime.
type Config struct {
	ParticleCount int     `yaml:"particle_count"`
	GridWidth     int     `yaml:"grid_width"`  // interior fluid cells, excluding the solid ring
	GridHeight    int     `yaml:"grid_height"` // interior fluid cells, excluding the solid ring
	CellSpacing   float64 `yaml:"cell_spacing"`

	Gravity              float64 `yaml:"gravity"` // magnitude, pulls toward the bottom display row
	Timestep             float64 `yaml:"timestep"`
	ProjectionIterations int     `yaml:"projection_iterations"`
	Overrelaxation       float64 `yaml:"overrelaxation"`
	FlipPicBlend         float64 `yaml:"flip_pic_blend"` // 0 = pure PIC, 1 = pure FLIP
	ParticleRadius       float64 `yaml:"particle_radius"`
	MinSeparation        float64 `yaml:"min_separation"`
	CollisionIterations  int     `yaml:"collision_iterations"`
	Damping              float64 `yaml:"damping"`

	// Collision and wall policies, both visible tunables: zeroing relative
	// velocity on contact produces the "stacking" look, bouncing walls keep
	// more energy in the pool.
	ZeroContactVelocity bool `yaml:"zero_contact_velocity"`
	BounceWalls         bool `yaml:"bounce_walls"`

	DisplayWidth  int    `yaml:"display_width"`
	DisplayHeight int    `yaml:"display_height"`
	RenderMode    string `yaml:"render_mode"` // "occupancy" or "density"
}

func DefaultConfig() *Config {
	return &Config{
		ParticleCount:        DefaultParticleCount,
		GridWidth:            DefaultGridWidth,
		GridHeight:           DefaultGridHeight,
		CellSpacing:          DefaultCellSpacing,
		Gravity:              DefaultGravity,
		Timestep:             DefaultTimestep,
		ProjectionIterations: DefaultProjectionIter,
		Overrelaxation:       DefaultOverrelaxation,
		FlipPicBlend:         DefaultFlipPicBlend,
		ParticleRadius:       DefaultParticleRadius,
		MinSeparation:        2 * DefaultParticleRadius,
		CollisionIterations:  DefaultCollisionIter,
		Damping:              DefaultDamping,
		DisplayWidth:         5,
		DisplayHeight:        5,
		RenderMode:           "occupancy",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate is the single fail-fast gate: a simulation is never constructed
// from a config that fails here, and nothing is re-checked per tick.
func (c *Config) Validate() error {
	if c.ParticleCount <= 0 {
		return fmt.Errorf("particle_count must be positive, got %d", c.ParticleCount)
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.GridWidth, c.GridHeight)
	}
	if c.CellSpacing <= 0 {
		return fmt.Errorf("cell_spacing must be positive, got %f", c.CellSpacing)
	}
	if c.Timestep <= 0 {
		return fmt.Errorf("timestep must be positive, got %f", c.Timestep)
	}
	if c.ProjectionIterations <= 0 {
		return fmt.Errorf("projection_iterations must be positive, got %d", c.ProjectionIterations)
	}
	if c.Overrelaxation <= 1 || c.Overrelaxation >= 2 {
		return fmt.Errorf("overrelaxation must lie in (1,2), got %f", c.Overrelaxation)
	}
	if c.FlipPicBlend < 0 || c.FlipPicBlend > 1 {
		return fmt.Errorf("flip_pic_blend must lie in [0,1], got %f", c.FlipPicBlend)
	}
	if c.ParticleRadius <= 0 || c.ParticleRadius >= c.CellSpacing/2 {
		return fmt.Errorf("particle_radius must lie in (0, cell_spacing/2), got %f", c.ParticleRadius)
	}
	if c.MinSeparation < 0 || c.MinSeparation > c.CellSpacing {
		// The collision pass only inspects neighboring cell buckets, so the
		// separation distance cannot exceed one cell.
		return fmt.Errorf("min_separation must lie in [0, cell_spacing], got %f", c.MinSeparation)
	}
	if c.CollisionIterations < 1 {
		return fmt.Errorf("collision_iterations must be at least 1, got %d", c.CollisionIterations)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		return fmt.Errorf("damping must lie in (0,1], got %f", c.Damping)
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("display dimensions must be positive, got %dx%d", c.DisplayWidth, c.DisplayHeight)
	}
	if c.RenderMode != "occupancy" && c.RenderMode != "density" {
		return fmt.Errorf("render_mode must be occupancy or density, got %q", c.RenderMode)
	}
	return nil
}
