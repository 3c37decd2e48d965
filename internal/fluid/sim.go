package fluid

import (
	"errors"
	"math"

	"github.com/smoroz/ledfluid/internal/config"
)

// Phase tracks the simulation lifecycle. A zero-value Simulation is
// PhaseUninitialized and refuses to tick.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseTicking
)

// ErrNotReady is returned by Tick on a simulation that was not built
// through New.
var ErrNotReady = errors.New("fluid: simulation not initialized")

// Simulation owns the grid, the particle arena and the collision buckets,
// all allocated once in New. Tick performs no allocation.
type Simulation struct {
	cfg      config.Config
	grid     *Grid
	parts    *ParticleSet
	collider *collider

	phase     Phase
	tickCount uint64
	simTime   float64

	// Current external acceleration. Defaults to straight-down gravity;
	// SetTilt redirects it.
	forceX, forceY float64
}

// New validates the config, allocates every buffer and seeds the particles
// at rest in a block at the top-left of the interior.
func New(cfg *config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		cfg:  *cfg,
		grid: NewGrid(cfg.GridWidth, cfg.GridHeight, cfg.CellSpacing),
	}
	s.parts = NewParticleSet(cfg.ParticleCount)
	s.collider = newCollider(s.grid, cfg.ParticleCount, cfg.MinSeparation,
		cfg.CollisionIterations, cfg.ZeroContactVelocity)
	s.seed()
	s.forceX, s.forceY = 0, cfg.Gravity
	s.phase = PhaseReady
	return s, nil
}

func (s *Simulation) seed() {
	h := s.cfg.CellSpacing
	step := s.cfg.MinSeparation
	if step <= 0 {
		step = 2 * s.cfg.ParticleRadius
	}
	s.parts.SeedBlock(1.5*h, 1.5*h, s.cfg.GridWidth, step)
}

// Tick advances the simulation by one fixed step. The pipeline order is
// load-bearing: external forces are applied to particle velocities after
// the grid transfer, so a force only influences the pressure solve on the
// following tick. An optional dt overrides the configured timestep for
// this tick only.
func (s *Simulation) Tick(dtOverride ...float64) error {
	if s.phase == PhaseUninitialized {
		return ErrNotReady
	}
	dt := s.cfg.Timestep
	if len(dtOverride) > 0 {
		dt = dtOverride[0]
	}

	g, ps := s.grid, s.parts

	g.ResetFields()
	g.ClassifyFromParticles(ps)
	ParticlesToGrid(g, ps)
	g.Snapshot()
	Project(g, s.cfg.ProjectionIterations, s.cfg.Overrelaxation)
	GridToParticles(g, ps, s.cfg.FlipPicBlend)

	ApplyForces(ps, s.forceX, s.forceY, s.cfg.Damping, dt)
	Advect(ps, dt)
	s.collider.Resolve(ps)
	ClampToBounds(ps, g, s.cfg.ParticleRadius, s.cfg.BounceWalls)

	s.tickCount++
	s.simTime += dt
	s.phase = PhaseTicking
	return nil
}

// SetTilt redirects the external acceleration. tx and ty are direction
// components in [-1, 1]; they are scaled by the configured gravity
// magnitude and clamped. SetTilt(0, 1) restores straight-down gravity.
func (s *Simulation) SetTilt(tx, ty float64) {
	s.forceX = clamp(tx, -1, 1) * s.cfg.Gravity
	s.forceY = clamp(ty, -1, 1) * s.cfg.Gravity
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// Reset reseeds the particles, zeroes the grid and returns the simulation
// to PhaseReady with tick count zero. The tilt set previously is kept.
func (s *Simulation) Reset() {
	s.grid.ResetFields()
	s.seed()
	s.tickCount = 0
	s.simTime = 0
	s.phase = PhaseReady
}

func (s *Simulation) Phase() Phase { return s.phase }

func (s *Simulation) TickCount() uint64 { return s.tickCount }

func (s *Simulation) Time() float64 { return s.simTime }

func (s *Simulation) Grid() *Grid { return s.grid }

func (s *Simulation) Particles() *ParticleSet { return s.parts }

func (s *Simulation) Config() config.Config { return s.cfg }

// KineticEnergy sums 1/2 v^2 over all particles with unit mass.
func (s *Simulation) KineticEnergy() float64 {
	var e float64
	for i := range s.parts.VX {
		e += 0.5 * (s.parts.VX[i]*s.parts.VX[i] + s.parts.VY[i]*s.parts.VY[i])
	}
	return e
}

// MaxSpeed returns the largest particle speed.
func (s *Simulation) MaxSpeed() float64 {
	var m float64
	for i := range s.parts.VX {
		sp := math.Hypot(s.parts.VX[i], s.parts.VY[i])
		if sp > m {
			m = sp
		}
	}
	return m
}
