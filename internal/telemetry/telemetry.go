package telemetry

import (
	"fmt"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/smoroz/ledfluid/internal/fluid"
)

// TickStats is one row of per-tick measurements.
type TickStats struct {
	Tick          uint64  `csv:"tick"`
	Time          float64 `csv:"time"`
	FluidCells    int     `csv:"fluid_cells"`
	DivergenceSum float64 `csv:"divergence_sum"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed"`
	MeanDepth     float64 `csv:"mean_depth"`
}

// Capture measures the simulation's current state. The grid fields reflect
// the post-projection state of the tick that just ran.
func Capture(sim *fluid.Simulation) TickStats {
	g := sim.Grid()
	ps := sim.Particles()

	var depth float64
	for i := 0; i < ps.Len(); i++ {
		depth += ps.Y[i]
	}
	if ps.Len() > 0 {
		depth /= float64(ps.Len())
	}

	return TickStats{
		Tick:          sim.TickCount(),
		Time:          sim.Time(),
		FluidCells:    g.FluidCellCount(),
		DivergenceSum: g.DivergenceSum(),
		KineticEnergy: sim.KineticEnergy(),
		MaxSpeed:      sim.MaxSpeed(),
		MeanDepth:     depth,
	}
}

// Collector accumulates per-tick rows for later summary and export.
type Collector struct {
	rows []TickStats
}

func NewCollector(capacity int) *Collector {
	if capacity < 0 {
		capacity = 0
	}
	return &Collector{rows: make([]TickStats, 0, capacity)}
}

func (c *Collector) Record(sim *fluid.Simulation) {
	c.rows = append(c.rows, Capture(sim))
}

func (c *Collector) Rows() []TickStats { return c.rows }

func (c *Collector) Len() int { return len(c.rows) }

// EnergySeries returns the kinetic energy of every recorded tick, in order.
func (c *Collector) EnergySeries() []float64 {
	out := make([]float64, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.KineticEnergy
	}
	return out
}

// DepthSeries returns the mean particle depth of every recorded tick.
func (c *Collector) DepthSeries() []float64 {
	out := make([]float64, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.MeanDepth
	}
	return out
}

// Summary aggregates a whole run.
type Summary struct {
	Ticks            int
	EnergyMean       float64
	EnergyStdDev     float64
	EnergyMax        float64
	DivergenceMean   float64
	DivergenceMax    float64
	MaxSpeedObserved float64
	FinalDepth       float64
}

// Summarize reduces the recorded rows to run-level aggregates. An empty
// collector yields a zero summary.
func (c *Collector) Summarize() Summary {
	if len(c.rows) == 0 {
		return Summary{}
	}

	energy := c.EnergySeries()
	div := make([]float64, len(c.rows))
	maxSpeed := 0.0
	for i, r := range c.rows {
		div[i] = r.DivergenceSum
		maxSpeed = math.Max(maxSpeed, r.MaxSpeed)
	}

	return Summary{
		Ticks:            len(c.rows),
		EnergyMean:       stat.Mean(energy, nil),
		EnergyStdDev:     stat.StdDev(energy, nil),
		EnergyMax:        floats.Max(energy),
		DivergenceMean:   stat.Mean(div, nil),
		DivergenceMax:    floats.Max(div),
		MaxSpeedObserved: maxSpeed,
		FinalDepth:       c.rows[len(c.rows)-1].MeanDepth,
	}
}

// WriteCSV dumps every recorded row to path with a header line.
func (c *Collector) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(c.rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
