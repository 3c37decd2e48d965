package fluid

// ParticleSet is a fixed-capacity arena of fluid particles in struct-of-
// arrays form. The count is set once at construction and never changes;
// nothing here appends, removes, or reallocates.
type ParticleSet struct {
	X, Y   []float64
	VX, VY []float64
}

func NewParticleSet(n int) *ParticleSet {
	return &ParticleSet{
		X:  make([]float64, n),
		Y:  make([]float64, n),
		VX: make([]float64, n),
		VY: make([]float64, n),
	}
}

func (ps *ParticleSet) Len() int { return len(ps.X) }

// SeedBlock places the particles at rest in a rectangular fill block,
// cols wide, row by row from the top-left origin.
func (ps *ParticleSet) SeedBlock(originX, originY float64, cols int, step float64) {
	if cols < 1 {
		cols = 1
	}
	for i := range ps.X {
		ps.X[i] = originX + float64(i%cols)*step
		ps.Y[i] = originY + float64(i/cols)*step
		ps.VX[i] = 0
		ps.VY[i] = 0
	}
}
