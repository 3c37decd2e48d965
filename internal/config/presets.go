package config

// Presets are named starting points tuned by hand. They mirror the hardware
// target (microbit) and a few variations that exaggerate one tunable each.
var Presets = map[string]*Config{
	"microbit": DefaultConfig(),
	"dambreak": {
		ParticleCount:        96,
		GridWidth:            16,
		GridHeight:           8,
		CellSpacing:          1.0,
		Gravity:              2.0,
		Timestep:             0.3,
		ProjectionIterations: 30,
		Overrelaxation:       1.9,
		FlipPicBlend:         0.9,
		ParticleRadius:       0.2,
		MinSeparation:        0.4,
		CollisionIterations:  4,
		Damping:              1.0,
		DisplayWidth:         16,
		DisplayHeight:        8,
		RenderMode:           "density",
	},
	"syrup": {
		ParticleCount:        25,
		GridWidth:            5,
		GridHeight:           5,
		CellSpacing:          1.0,
		Gravity:              1.0,
		Timestep:             0.6,
		ProjectionIterations: 20,
		Overrelaxation:       1.5,
		FlipPicBlend:         0.1, // almost pure PIC: heavily damped
		ParticleRadius:       0.2,
		MinSeparation:        0.4,
		CollisionIterations:  8,
		Damping:              0.95,
		DisplayWidth:         5,
		DisplayHeight:        5,
		RenderMode:           "occupancy",
	},
	"splashy": {
		ParticleCount:        25,
		GridWidth:            5,
		GridHeight:           5,
		CellSpacing:          1.0,
		Gravity:              1.0,
		Timestep:             0.6,
		ProjectionIterations: 10,
		Overrelaxation:       1.9,
		FlipPicBlend:         1.0, // pure FLIP: lively, noisy
		ParticleRadius:       0.2,
		MinSeparation:        0.4,
		CollisionIterations:  8,
		Damping:              1.0,
		BounceWalls:          true,
		DisplayWidth:         5,
		DisplayHeight:        5,
		RenderMode:           "density",
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	clone := *cfg
	return &clone
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
