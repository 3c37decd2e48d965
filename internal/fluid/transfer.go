package fluid

// ParticlesToGrid splats every particle velocity onto the staggered grid
// using the accumulate-then-normalize protocol, then zeroes faces adjacent
// to SOLID cells. ResetFields and ClassifyFromParticles must already have
// run this tick.
func ParticlesToGrid(g *Grid, ps *ParticleSet) {
	for i := 0; i < ps.Len(); i++ {
		g.SplatU(ps.X[i], ps.Y[i], ps.VX[i])
		g.SplatV(ps.X[i], ps.Y[i], ps.VY[i])
	}
	g.Normalize()
	g.ZeroSolidFaces()
}

// GridToParticles transfers the projected grid velocities back onto the
// particles. blend mixes the FLIP update (particle velocity plus the
// change the projection made to the grid) with the PIC update (the grid
// velocity sampled directly): blend=1 is pure FLIP, blend=0 pure PIC.
// The FLIP delta is taken against the snapshot made right after P2G.
func GridToParticles(g *Grid, ps *ParticleSet, blend float64) {
	for i := 0; i < ps.Len(); i++ {
		x, y := ps.X[i], ps.Y[i]

		picX := g.SampleU(x, y)
		picY := g.SampleV(x, y)
		flipX := ps.VX[i] + picX - g.SamplePrevU(x, y)
		flipY := ps.VY[i] + picY - g.SamplePrevV(x, y)

		ps.VX[i] = blend*flipX + (1-blend)*picX
		ps.VY[i] = blend*flipY + (1-blend)*picY
	}
}
