package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/smoroz/ledfluid/internal/config"
	"github.com/smoroz/ledfluid/internal/fluid"
	"github.com/smoroz/ledfluid/internal/render"
	"github.com/smoroz/ledfluid/internal/storage"
	"github.com/smoroz/ledfluid/internal/stream"
	"github.com/smoroz/ledfluid/internal/telemetry"
	"github.com/smoroz/ledfluid/internal/viz"
)

var (
	configFile string
	preset     string

	// run flags
	ticks   int
	csvOut  string
	verbose bool
	save    bool
	dataDir string

	// overrides applied on top of the loaded config
	gravity   float64
	timestep  float64
	blend     float64
	particles int
	mode      string

	// live / serve flags
	frameRate int
	addr      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledfluid",
		Short: "FLIP fluid simulation on an LED intensity matrix",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "named preset configuration")
	rootCmd.PersistentFlags().Float64Var(&gravity, "gravity", -1, "gravity magnitude override")
	rootCmd.PersistentFlags().Float64Var(&timestep, "dt", -1, "timestep override")
	rootCmd.PersistentFlags().Float64Var(&blend, "blend", -1, "flip/pic blend override (0..1)")
	rootCmd.PersistentFlags().IntVar(&particles, "particles", -1, "particle count override")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "render mode override (occupancy|density)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ledfluid", "run data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and print a telemetry summary",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 300, "number of ticks to simulate")
	runCmd.Flags().StringVar(&csvOut, "out", "", "write per-tick telemetry csv to this path")
	runCmd.Flags().BoolVar(&verbose, "v", false, "print the final frame")
	runCmd.Flags().BoolVar(&save, "save", false, "persist the run under the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "ticks per second")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to browsers over websockets",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8470", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 30, "ticks per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, presetsCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective config: preset or file as the base,
// defaults otherwise, then flag overrides on top.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (try the presets command)", preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if gravity >= 0 {
		cfg.Gravity = gravity
	}
	if timestep > 0 {
		cfg.Timestep = timestep
	}
	if blend >= 0 {
		cfg.FlipPicBlend = blend
	}
	if particles > 0 {
		cfg.ParticleCount = particles
	}
	if mode != "" {
		cfg.RenderMode = mode
	}
	return cfg, cfg.Validate()
}

func buildSim() (*config.Config, *fluid.Simulation, *render.Renderer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	sim, err := fluid.New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := render.ParseMode(cfg.RenderMode)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, sim, render.NewRenderer(cfg.DisplayWidth, cfg.DisplayHeight, m), nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, sim, renderer, err := buildSim()
	if err != nil {
		return err
	}

	collector := telemetry.NewCollector(ticks)
	for i := 0; i < ticks; i++ {
		if err := sim.Tick(); err != nil {
			return err
		}
		collector.Record(sim)
	}

	s := collector.Summarize()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ticks\t%d\n", s.Ticks)
	fmt.Fprintf(w, "energy mean\t%.4f\n", s.EnergyMean)
	fmt.Fprintf(w, "energy stddev\t%.4f\n", s.EnergyStdDev)
	fmt.Fprintf(w, "energy max\t%.4f\n", s.EnergyMax)
	fmt.Fprintf(w, "divergence mean\t%.4f\n", s.DivergenceMean)
	fmt.Fprintf(w, "divergence max\t%.4f\n", s.DivergenceMax)
	fmt.Fprintf(w, "max speed\t%.4f\n", s.MaxSpeedObserved)
	fmt.Fprintf(w, "final depth\t%.4f\n", s.FinalDepth)
	w.Flush()

	if series := collector.EnergySeries(); len(series) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Width(60),
			asciigraph.Height(10),
			asciigraph.Caption("kinetic energy")))
	}

	if verbose {
		fmt.Println()
		fmt.Println(renderer.Render(sim))
	}

	if csvOut != "" {
		if err := collector.WriteCSV(csvOut); err != nil {
			return err
		}
		fmt.Printf("\ntelemetry written to %s\n", csvOut)
	}

	if save {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		id, err := store.Save(preset, cfg, collector)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun saved as %s\n", id)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	_, sim, renderer, err := buildSim()
	if err != nil {
		return err
	}
	return viz.Run(sim, renderer, frameRate)
}

func runServe(cmd *cobra.Command, args []string) error {
	_, sim, renderer, err := buildSim()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv := stream.NewServer(sim, renderer, frameRate, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "name\tgrid\tparticles\tblend\tmode")
	for _, name := range names {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%.2f\t%s\n",
			name, c.GridWidth, c.GridHeight, c.ParticleCount, c.FlipPicBlend, c.RenderMode)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "id\twhen\tpreset\tticks\tenergy mean\tfinal depth")
	for _, r := range runs {
		name := r.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.4f\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), name,
			r.Summary.Ticks, r.Summary.EnergyMean, r.Summary.FinalDepth)
	}
	return w.Flush()
}
