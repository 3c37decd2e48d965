package fluid

import (
	"math"
	"testing"
)

func TestProjectReducesDivergence(t *testing.T) {
	g := NewGrid(5, 5, 1.0)
	g.ResetFields()

	// Fill the interior with fluid and give it a strongly divergent field.
	ps := NewParticleSet(25)
	for i := range ps.X {
		ps.X[i] = 1.5 + float64(i%5)
		ps.Y[i] = 1.5 + float64(i/5)
	}
	g.ClassifyFromParticles(ps)
	for row := 1; row < g.Height-1; row++ {
		for col := 1; col < g.Width-1; col++ {
			i := g.idx(col, row)
			g.u[i] = float64(col) * 0.5
			g.v[i] = float64(row) * -0.3
		}
	}
	g.ZeroSolidFaces()

	before := g.DivergenceSum()
	if before == 0 {
		t.Fatal("test field is not divergent")
	}

	Project(g, 10, 1.9)

	after := g.DivergenceSum()
	if after >= before {
		t.Errorf("divergence did not decrease: before %g, after %g", before, after)
	}
	if after > before*0.5 {
		t.Errorf("divergence barely decreased: before %g, after %g", before, after)
	}
}

func TestProjectPreservesZeroField(t *testing.T) {
	g := NewGrid(5, 5, 1.0)
	g.ResetFields()
	ps := NewParticleSet(4)
	ps.X[0], ps.Y[0] = 2.5, 2.5
	ps.X[1], ps.Y[1] = 3.5, 2.5
	ps.X[2], ps.Y[2] = 2.5, 3.5
	ps.X[3], ps.Y[3] = 3.5, 3.5
	g.ClassifyFromParticles(ps)

	Project(g, 10, 1.9)

	for i := range g.u {
		if g.u[i] != 0 || g.v[i] != 0 {
			t.Fatalf("projection moved a zero field at node %d: u=%g v=%g", i, g.u[i], g.v[i])
		}
	}
}

func TestProjectSkipsNonFluidCells(t *testing.T) {
	g := NewGrid(5, 5, 1.0)
	g.ResetFields()
	// No particles anywhere: every interior cell is AIR. A divergent field
	// over AIR cells must pass through untouched.
	i := g.idx(3, 3)
	g.u[i+1] = 1.0

	Project(g, 10, 1.9)

	if g.u[i+1] != 1.0 {
		t.Errorf("projection modified an AIR cell face: got %g, want 1", g.u[i+1])
	}
}

func TestProjectFixedIterationsTerminates(t *testing.T) {
	// A fully walled-in fluid cell has no open neighbor and must be skipped
	// without dividing by zero.
	g := NewGrid(1, 1, 1.0)
	g.ResetFields()
	ps := NewParticleSet(1)
	ps.X[0], ps.Y[0] = 1.5, 1.5
	g.ClassifyFromParticles(ps)
	i := g.idx(1, 1)
	g.u[i+1] = 2.0

	Project(g, 10, 1.9)

	if math.IsNaN(g.p[i]) || math.IsInf(g.p[i], 0) {
		t.Errorf("walled-in cell produced non-finite pressure %g", g.p[i])
	}
}
