package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smoroz/ledfluid/internal/config"
	"github.com/smoroz/ledfluid/internal/fluid"
)

func runSim(t *testing.T, ticks int) (*fluid.Simulation, *Collector) {
	t.Helper()
	sim, err := fluid.New(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollector(ticks)
	for i := 0; i < ticks; i++ {
		if err := sim.Tick(); err != nil {
			t.Fatal(err)
		}
		c.Record(sim)
	}
	return sim, c
}

func TestCapture(t *testing.T) {
	sim, _ := runSim(t, 5)
	s := Capture(sim)

	if s.Tick != 5 {
		t.Errorf("tick = %d, want 5", s.Tick)
	}
	if s.FluidCells <= 0 {
		t.Errorf("fluid cells = %d, want > 0", s.FluidCells)
	}
	if s.MeanDepth <= 0 {
		t.Errorf("mean depth = %g, want > 0", s.MeanDepth)
	}
}

func TestCollectorSeries(t *testing.T) {
	_, c := runSim(t, 20)

	if c.Len() != 20 {
		t.Fatalf("recorded %d rows, want 20", c.Len())
	}
	energy := c.EnergySeries()
	depth := c.DepthSeries()
	if len(energy) != 20 || len(depth) != 20 {
		t.Fatalf("series lengths %d and %d, want 20", len(energy), len(depth))
	}
	// The block falls during the first ticks, so depth must increase.
	if depth[5] <= depth[0] {
		t.Errorf("mean depth did not increase while falling: %g -> %g", depth[0], depth[5])
	}
}

func TestSummarize(t *testing.T) {
	_, c := runSim(t, 50)
	s := c.Summarize()

	if s.Ticks != 50 {
		t.Errorf("ticks = %d, want 50", s.Ticks)
	}
	if s.EnergyMax < s.EnergyMean {
		t.Errorf("energy max %g below mean %g", s.EnergyMax, s.EnergyMean)
	}
	if s.MaxSpeedObserved <= 0 {
		t.Errorf("max speed = %g, want > 0", s.MaxSpeedObserved)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	c := NewCollector(0)
	s := c.Summarize()
	if s.Ticks != 0 || s.EnergyMean != 0 {
		t.Errorf("empty summary = %+v, want zero value", s)
	}
}

func TestWriteCSV(t *testing.T) {
	_, c := runSim(t, 10)
	path := filepath.Join(t.TempDir(), "run.csv")

	if err := c.WriteCSV(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 11 {
		t.Fatalf("csv has %d lines, want header plus 10 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,time,fluid_cells") {
		t.Errorf("unexpected header %q", lines[0])
	}
}
