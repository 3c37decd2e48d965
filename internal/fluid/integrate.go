package fluid

import "math"

// ApplyForces adds the external force impulse (fx*dt, fy*dt) to every
// particle and applies velocity damping. Runs unconditionally every tick.
func ApplyForces(ps *ParticleSet, fx, fy, damping, dt float64) {
	for i := range ps.VX {
		ps.VX[i] = (ps.VX[i] + fx*dt) * damping
		ps.VY[i] = (ps.VY[i] + fy*dt) * damping
	}
}

// Advect moves every particle by its velocity. Must run after the grid
// transfer so positions are advanced with post-projection velocities.
func Advect(ps *ParticleSet, dt float64) {
	for i := range ps.X {
		ps.X[i] += ps.VX[i] * dt
		ps.Y[i] += ps.VY[i] * dt
	}
}

// collider resolves particle-particle overlap with per-cell bucketing so
// the pair search stays near-linear. All index buffers are allocated once;
// each pass is a counting sort into the same arrays.
type collider struct {
	grid       *Grid
	minSep     float64
	iterations int
	zeroRelVel bool

	cellStart []int // len numCells+1, prefix offsets into order
	order     []int // particle indices grouped by cell
}

func newCollider(g *Grid, particleCount int, minSep float64, iterations int, zeroRelVel bool) *collider {
	return &collider{
		grid:       g,
		minSep:     minSep,
		iterations: iterations,
		zeroRelVel: zeroRelVel,
		cellStart:  make([]int, g.Width*g.Height+1),
		order:      make([]int, particleCount),
	}
}

func (c *collider) cellOf(x, y float64) int {
	g := c.grid
	col := int(math.Floor(x / g.Spacing))
	row := int(math.Floor(y / g.Spacing))
	if col < 0 {
		col = 0
	} else if col >= g.Width {
		col = g.Width - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.Height {
		row = g.Height - 1
	}
	return row*g.Width + col
}

func (c *collider) rebuildBuckets(ps *ParticleSet) {
	for i := range c.cellStart {
		c.cellStart[i] = 0
	}
	for i := 0; i < ps.Len(); i++ {
		c.cellStart[c.cellOf(ps.X[i], ps.Y[i])+1]++
	}
	for i := 1; i < len(c.cellStart); i++ {
		c.cellStart[i] += c.cellStart[i-1]
	}
	// Fill back to front, decrementing each cell's end offset as we go.
	// Afterwards cellStart[cell+1] is the start of cell and cellStart[cell+2]
	// its end, which is exactly what bucket reads.
	for i := ps.Len() - 1; i >= 0; i-- {
		cell := c.cellOf(ps.X[i], ps.Y[i])
		c.cellStart[cell+1]--
		c.order[c.cellStart[cell+1]] = i
	}
}

// bucket returns the particle indices currently binned into a cell.
func (c *collider) bucket(cell int) []int {
	return c.order[c.cellStart[cell+1]:c.endOf(cell)]
}

func (c *collider) endOf(cell int) int {
	if cell+2 < len(c.cellStart) {
		return c.cellStart[cell+2]
	}
	return len(c.order)
}

// Resolve pushes overlapping particle pairs apart symmetrically along the
// separating axis, half the overlap each. With zeroRelVel set, the relative
// velocity along that axis is removed as well.
func (c *collider) Resolve(ps *ParticleSet) {
	if c.minSep <= 0 {
		return
	}
	g := c.grid
	minSepSq := c.minSep * c.minSep

	for pass := 0; pass < c.iterations; pass++ {
		c.rebuildBuckets(ps)
		for row := 0; row < g.Height; row++ {
			for col := 0; col < g.Width; col++ {
				cell := row*g.Width + col
				home := c.bucket(cell)
				for bi, i := range home {
					// Same-bucket pairs, each visited once.
					for _, j := range home[bi+1:] {
						c.separate(ps, i, j, minSepSq)
					}
					// Forward neighbor cells only, so cross-bucket pairs
					// are also visited exactly once.
					c.separateAgainst(ps, i, col+1, row, minSepSq)
					c.separateAgainst(ps, i, col-1, row+1, minSepSq)
					c.separateAgainst(ps, i, col, row+1, minSepSq)
					c.separateAgainst(ps, i, col+1, row+1, minSepSq)
				}
			}
		}
	}
}

func (c *collider) separateAgainst(ps *ParticleSet, i, col, row int, minSepSq float64) {
	g := c.grid
	if col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return
	}
	for _, j := range c.bucket(row*g.Width + col) {
		c.separate(ps, i, j, minSepSq)
	}
}

func (c *collider) separate(ps *ParticleSet, i, j int, minSepSq float64) {
	dx := ps.X[j] - ps.X[i]
	dy := ps.Y[j] - ps.Y[i]
	distSq := dx*dx + dy*dy
	if distSq >= minSepSq || distSq <= 1e-12 {
		return
	}

	dist := math.Sqrt(distSq)
	s := 0.5 * (c.minSep - dist) / dist
	pushX := dx * s
	pushY := dy * s

	ps.X[i] -= pushX
	ps.Y[i] -= pushY
	ps.X[j] += pushX
	ps.Y[j] += pushY

	if c.zeroRelVel {
		nx, ny := dx/dist, dy/dist
		rel := (ps.VX[j]-ps.VX[i])*nx + (ps.VY[j]-ps.VY[i])*ny
		ps.VX[i] += 0.5 * rel * nx
		ps.VY[i] += 0.5 * rel * ny
		ps.VX[j] -= 0.5 * rel * nx
		ps.VY[j] -= 0.5 * rel * ny
	}
}

// ClampToBounds confines every particle to the open interior minus the
// particle radius. The perpendicular velocity component is zeroed, or
// negated when the bounce policy is on. NaN coordinates collapse onto the
// low bound with zero velocity; the tick never halts on bad numbers.
func ClampToBounds(ps *ParticleSet, g *Grid, radius float64, bounce bool) {
	min := g.Spacing + radius
	maxX := float64(g.Width-1)*g.Spacing - radius
	maxY := float64(g.Height-1)*g.Spacing - radius

	for i := range ps.X {
		if math.IsNaN(ps.X[i]) {
			ps.X[i], ps.VX[i] = min, 0
		}
		if math.IsNaN(ps.Y[i]) {
			ps.Y[i], ps.VY[i] = min, 0
		}
		if math.IsNaN(ps.VX[i]) {
			ps.VX[i] = 0
		}
		if math.IsNaN(ps.VY[i]) {
			ps.VY[i] = 0
		}

		if ps.X[i] < min {
			ps.X[i] = min
			ps.VX[i] = wallVelocity(ps.VX[i], bounce)
		} else if ps.X[i] > maxX {
			ps.X[i] = maxX
			ps.VX[i] = wallVelocity(ps.VX[i], bounce)
		}
		if ps.Y[i] < min {
			ps.Y[i] = min
			ps.VY[i] = wallVelocity(ps.VY[i], bounce)
		} else if ps.Y[i] > maxY {
			ps.Y[i] = maxY
			ps.VY[i] = wallVelocity(ps.VY[i], bounce)
		}
	}
}

func wallVelocity(v float64, bounce bool) float64 {
	if bounce {
		return -v
	}
	return 0
}
