package fluid

import "math"

// CellType classifies a grid cell for the projection pass.
type CellType uint8

const (
	CellSolid CellType = iota
	CellAir
	CellFluid
)

// Grid is a fixed-size MAC grid. Horizontal velocity u lives on the left
// face of each cell, vertical velocity v on the top face; row 0 is the top
// of the domain and y grows downward. All buffers are flat row-major
// (idx = row*Width + col) and allocated exactly once.
type Grid struct {
	Width, Height int     // cell counts, including the one-cell solid ring
	Spacing       float64 // world units per cell

	u, v         []float64
	uw, vw       []float64 // splat weight accumulators
	prevU, prevV []float64 // snapshot taken after P2G, before projection
	p            []float64 // pressure-correction accumulator
	solid        []float64 // 0 for SOLID, 1 for open; fixed after construction
	cells        []CellType
}

// NewGrid allocates a grid for an interiorW x interiorH fluid domain and
// surrounds it with a permanently SOLID one-cell ring.
func NewGrid(interiorW, interiorH int, spacing float64) *Grid {
	w, h := interiorW+2, interiorH+2
	n := w * h
	g := &Grid{
		Width:   w,
		Height:  h,
		Spacing: spacing,
		u:       make([]float64, n),
		v:       make([]float64, n),
		uw:      make([]float64, n),
		vw:      make([]float64, n),
		prevU:   make([]float64, n),
		prevV:   make([]float64, n),
		p:       make([]float64, n),
		solid:   make([]float64, n),
		cells:   make([]CellType, n),
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := g.idx(col, row)
			if col == 0 || col == w-1 || row == 0 || row == h-1 {
				g.solid[i] = 0
				g.cells[i] = CellSolid
			} else {
				g.solid[i] = 1
				g.cells[i] = CellAir
			}
		}
	}
	return g
}

func (g *Grid) idx(col, row int) int { return row*g.Width + col }

// TypeAt reports the classification of the cell at (col, row).
func (g *Grid) TypeAt(col, row int) CellType {
	return g.cells[g.idx(col, row)]
}

// ResetFields zeroes every per-tick buffer and resets the interior
// classification to AIR. The solid ring keeps its SOLID tag; classification
// must reflect current particle occupancy, never history.
func (g *Grid) ResetFields() {
	for i := range g.u {
		g.u[i] = 0
		g.v[i] = 0
		g.uw[i] = 0
		g.vw[i] = 0
		g.p[i] = 0
		if g.solid[i] == 0 {
			g.cells[i] = CellSolid
		} else {
			g.cells[i] = CellAir
		}
	}
}

// ClassifyFromParticles marks every non-SOLID cell containing at least one
// particle as FLUID.
func (g *Grid) ClassifyFromParticles(ps *ParticleSet) {
	for i := 0; i < ps.Len(); i++ {
		col := int(math.Floor(ps.X[i] / g.Spacing))
		row := int(math.Floor(ps.Y[i] / g.Spacing))
		if col < 0 || col >= g.Width || row < 0 || row >= g.Height {
			continue
		}
		ci := g.idx(col, row)
		if g.cells[ci] != CellSolid {
			g.cells[ci] = CellFluid
		}
	}
}

// stencil locates the bilinear stencil for a point in shifted cell
// coordinates, clamping out-of-range points onto the valid node range so
// sampling never reads outside the grid.
func (g *Grid) stencil(fx, fy float64) (cx, cy int, dx, dy float64) {
	cx = int(math.Floor(fx))
	cy = int(math.Floor(fy))
	if cx < 0 {
		cx, fx = 0, 0
	} else if cx > g.Width-2 {
		cx, fx = g.Width-2, float64(g.Width-1)
	}
	if cy < 0 {
		cy, fy = 0, 0
	} else if cy > g.Height-2 {
		cy, fy = g.Height-2, float64(g.Height-1)
	}
	dx = fx - float64(cx)
	dy = fy - float64(cy)
	if dx < 0 {
		dx = 0
	} else if dx > 1 {
		dx = 1
	}
	if dy < 0 {
		dy = 0
	} else if dy > 1 {
		dy = 1
	}
	return cx, cy, dx, dy
}

// uStencil and vStencil apply the MAC stagger: u nodes sit at integer x and
// half-integer y, v nodes at half-integer x and integer y.
func (g *Grid) uStencil(x, y float64) (int, int, float64, float64) {
	return g.stencil(x/g.Spacing, y/g.Spacing-0.5)
}

func (g *Grid) vStencil(x, y float64) (int, int, float64, float64) {
	return g.stencil(x/g.Spacing-0.5, y/g.Spacing)
}

func (g *Grid) splat(field, weights []float64, cx, cy int, dx, dy, val float64) {
	i00 := g.idx(cx, cy)
	i10 := i00 + 1
	i01 := i00 + g.Width
	i11 := i01 + 1

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	field[i00] += val * w00
	field[i10] += val * w10
	field[i01] += val * w01
	field[i11] += val * w11
	weights[i00] += w00
	weights[i10] += w10
	weights[i01] += w01
	weights[i11] += w11
}

func (g *Grid) sample(field []float64, cx, cy int, dx, dy float64) float64 {
	i00 := g.idx(cx, cy)
	i10 := i00 + 1
	i01 := i00 + g.Width
	i11 := i01 + 1

	return field[i00]*(1-dx)*(1-dy) +
		field[i10]*dx*(1-dy) +
		field[i01]*(1-dx)*dy +
		field[i11]*dx*dy
}

// SplatU accumulates a particle's horizontal velocity onto the four nearest
// u nodes, tracking weights for the later normalization pass.
func (g *Grid) SplatU(x, y, vel float64) {
	cx, cy, dx, dy := g.uStencil(x, y)
	g.splat(g.u, g.uw, cx, cy, dx, dy, vel)
}

// SplatV accumulates a particle's vertical velocity onto the four nearest
// v nodes.
func (g *Grid) SplatV(x, y, vel float64) {
	cx, cy, dx, dy := g.vStencil(x, y)
	g.splat(g.v, g.vw, cx, cy, dx, dy, vel)
}

// Normalize divides accumulated momentum by accumulated weight. Nodes that
// received no contribution keep their value untouched; there is no division
// by zero.
func (g *Grid) Normalize() {
	for i := range g.u {
		if g.uw[i] > 0 {
			g.u[i] /= g.uw[i]
		}
		if g.vw[i] > 0 {
			g.v[i] /= g.vw[i]
		}
	}
}

// ZeroSolidFaces forces every face touching a SOLID cell to zero flow.
func (g *Grid) ZeroSolidFaces() {
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			i := g.idx(col, row)
			if g.cells[i] != CellSolid {
				continue
			}
			g.u[i] = 0
			g.v[i] = 0
			if col < g.Width-1 {
				g.u[i+1] = 0
			}
			if row < g.Height-1 {
				g.v[i+g.Width] = 0
			}
		}
	}
}

// Snapshot copies the current velocity field into the pre-projection
// buffers used by the FLIP delta.
func (g *Grid) Snapshot() {
	copy(g.prevU, g.u)
	copy(g.prevV, g.v)
}

// SampleU interpolates the current horizontal velocity at a world position.
func (g *Grid) SampleU(x, y float64) float64 {
	cx, cy, dx, dy := g.uStencil(x, y)
	return g.sample(g.u, cx, cy, dx, dy)
}

// SampleV interpolates the current vertical velocity at a world position.
func (g *Grid) SampleV(x, y float64) float64 {
	cx, cy, dx, dy := g.vStencil(x, y)
	return g.sample(g.v, cx, cy, dx, dy)
}

// SamplePrevU interpolates the snapshot field at a world position.
func (g *Grid) SamplePrevU(x, y float64) float64 {
	cx, cy, dx, dy := g.uStencil(x, y)
	return g.sample(g.prevU, cx, cy, dx, dy)
}

// SamplePrevV interpolates the snapshot field at a world position.
func (g *Grid) SamplePrevV(x, y float64) float64 {
	cx, cy, dx, dy := g.vStencil(x, y)
	return g.sample(g.prevV, cx, cy, dx, dy)
}

func (g *Grid) divergence(i int) float64 {
	return g.u[i+1] - g.u[i] + g.v[i+g.Width] - g.v[i]
}

// DivergenceSum returns the sum of absolute divergence over FLUID cells.
func (g *Grid) DivergenceSum() float64 {
	var sum float64
	for row := 1; row < g.Height-1; row++ {
		for col := 1; col < g.Width-1; col++ {
			i := g.idx(col, row)
			if g.cells[i] == CellFluid {
				sum += math.Abs(g.divergence(i))
			}
		}
	}
	return sum
}

// FluidCellCount returns the number of cells currently classified FLUID.
func (g *Grid) FluidCellCount() int {
	count := 0
	for _, c := range g.cells {
		if c == CellFluid {
			count++
		}
	}
	return count
}
