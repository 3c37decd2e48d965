package render

import (
	"fmt"
	"math"

	"github.com/smoroz/ledfluid/internal/fluid"
)

// Mode selects how per-cell particle counts quantize to LED levels.
type Mode uint8

const (
	// ModeOccupancy lights a cell at full intensity when any particle is
	// inside it. This is the hardware display behavior.
	ModeOccupancy Mode = iota
	// ModeDensity scales intensity with the particle count, saturating at
	// MaxIntensity.
	ModeDensity
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "occupancy":
		return ModeOccupancy, nil
	case "density":
		return ModeDensity, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

func (m Mode) String() string {
	if m == ModeDensity {
		return "density"
	}
	return "occupancy"
}

// Renderer maps simulation state onto a Frame. Every call rewrites the
// whole frame from scratch, so rendering the same state twice produces
// identical output and stale pixels cannot survive.
type Renderer struct {
	mode   Mode
	counts []int
	frame  *Frame
}

func NewRenderer(width, height int, mode Mode) *Renderer {
	return &Renderer{
		mode:   mode,
		counts: make([]int, width*height),
		frame:  NewFrame(width, height),
	}
}

// Render produces the frame for the simulation's current state. The
// returned frame is owned by the renderer and overwritten on the next
// call; callers that keep it must Clone.
func (r *Renderer) Render(sim *fluid.Simulation) *Frame {
	g := sim.Grid()
	ps := sim.Particles()
	f := r.frame

	for i := range r.counts {
		r.counts[i] = 0
	}

	// The displayable interior spans one cell in from each wall. Scale it
	// onto the display so non-square configurations map proportionally.
	interiorW := float64(g.Width-2) * g.Spacing
	interiorH := float64(g.Height-2) * g.Spacing
	scaleX := float64(f.Width) / interiorW
	scaleY := float64(f.Height) / interiorH

	for i := 0; i < ps.Len(); i++ {
		col := int(math.Floor((ps.X[i] - g.Spacing) * scaleX))
		row := int(math.Floor((ps.Y[i] - g.Spacing) * scaleY))
		if col < 0 || col >= f.Width || row < 0 || row >= f.Height {
			continue
		}
		r.counts[row*f.Width+col]++
	}

	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			f.set(col, row, r.quantize(r.counts[row*f.Width+col]))
		}
	}
	return f
}

func (r *Renderer) quantize(count int) uint8 {
	if count <= 0 {
		return 0
	}
	if r.mode == ModeOccupancy {
		return MaxIntensity
	}
	level := count * 3
	if level > MaxIntensity {
		return MaxIntensity
	}
	return uint8(level)
}
