package fluid

// Project relaxes the divergence of every FLUID cell toward zero with a
// fixed number of Gauss-Seidel sweeps in row-major order. SOLID neighbors
// contribute no flow; a fluid cell walled in on all four sides is skipped.
// The iteration count is fixed so a tick has a bounded worst-case cost;
// there is no convergence test and no error path.
func Project(g *Grid, iterations int, overrelaxation float64) {
	w := g.Width
	for n := 0; n < iterations; n++ {
		for row := 1; row < g.Height-1; row++ {
			for col := 1; col < w-1; col++ {
				i := g.idx(col, row)
				if g.cells[i] != CellFluid {
					continue
				}

				sLeft := g.solid[i-1]
				sRight := g.solid[i+1]
				sUp := g.solid[i-w]
				sDown := g.solid[i+w]
				open := sLeft + sRight + sUp + sDown
				if open == 0 {
					continue
				}

				div := g.divergence(i)
				corr := overrelaxation * -div / open

				g.p[i] += corr
				g.u[i] -= corr * sLeft
				g.u[i+1] += corr * sRight
				g.v[i] -= corr * sUp
				g.v[i+w] += corr * sDown
			}
		}
	}
}
