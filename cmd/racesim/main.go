package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/racesim/internal/config"
	"github.com/san-kum/racesim/internal/physics"
	"github.com/san-kum/racesim/internal/refresh"
	"github.com/san-kum/racesim/internal/storage"
	"github.com/san-kum/racesim/internal/telemetry"
	"github.com/san-kum/racesim/internal/track"
	"github.com/san-kum/racesim/internal/viz"
	"github.com/san-kum/racesim/internal/worker"
)

var (
	dataDir    string
	dt         float64
	trackName  string
	configFile string
	refreshMs  int
	seriesName string
)

// main registers the racesim commands and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "racesim",
		Short: "electric race car lap simulation lab",
		RunE:  runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".racesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a lap headless and save the result",
		RunE:  runHeadless,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a lap with a live terminal view",
		RunE:  runLive,
	}

	for _, c := range []*cobra.Command{rootCmd, runCmd, liveCmd} {
		c.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
		c.Flags().StringVar(&trackName, "track", config.DefaultTrack, "track preset name or YAML file path")
		c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	}
	liveCmd.Flags().IntVar(&refreshMs, "refresh", config.DefaultRefreshMs, "plot refresh period (ms)")
	rootCmd.Flags().IntVar(&refreshMs, "refresh", config.DefaultRefreshMs, "plot refresh period (ms)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&seriesName, "series", "", "plot a single series instead of the default set")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run samples to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	tracksCmd := &cobra.Command{
		Use:   "tracks",
		Short: "list built-in track presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range track.ListPresets() {
				t := track.Preset(name)
				fmt.Printf("%-10s %d segments, %.0f m\n", name, len(t.Segments), t.Length())
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, tracksCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers CLI flags over an optional config file over defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("track") {
		cfg.Track = trackName
	}
	if cmd.Flags().Changed("refresh") {
		cfg.RefreshMs = refreshMs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveTrack treats the track setting as a preset name first, then as a
// YAML file path.
func resolveTrack(name string) (*track.Track, error) {
	if t := track.Preset(name); t != nil {
		return t, nil
	}
	if _, err := os.Stat(name); err == nil {
		return track.Load(name)
	}
	return nil, fmt.Errorf("unknown track %q (presets: %v)", name, track.ListPresets())
}

// stepLimiter caps the number of steps so a misconfigured run terminates.
type stepLimiter struct {
	inner     worker.Stepper
	remaining int
}

func (l *stepLimiter) Step() (telemetry.Record, bool, error) {
	rec, done, err := l.inner.Step()
	l.remaining--
	if l.remaining <= 0 {
		done = true
	}
	return rec, done, err
}

// pacedStepper slows the live view down to wall-clock time: one simulated
// timestep per dt of real time. Headless runs skip it and go flat out.
type pacedStepper struct {
	inner worker.Stepper
	delay time.Duration
}

func (p *pacedStepper) Step() (telemetry.Record, bool, error) {
	time.Sleep(p.delay)
	return p.inner.Step()
}

// newRun builds the shared store, engine, and worker for one simulation run.
// The store is constructed here and handed to both the worker (writer) and
// whichever consumer the command wires up (reader).
func newRun(cfg *config.Config) (*telemetry.Store, *worker.Worker, *physics.Engine, *track.Track, error) {
	trk, err := resolveTrack(cfg.Track)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	eng, err := physics.NewEngine(cfg.Car, trk, cfg.Dt)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ts := telemetry.NewStore()
	w := worker.New(ts, &stepLimiter{inner: eng, remaining: cfg.MaxSteps})
	return ts, w, eng, trk, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ts, w, eng, trk, err := newRun(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s...\n", trk.Name)
	start := time.Now()
	w.Start()
	w.Wait()
	elapsed := time.Since(start)

	outcome := "stopped"
	switch {
	case eng.Distance() >= trk.Length():
		outcome = "finished"
	case eng.Battery().RemainingJ() <= 0:
		outcome = "battery_flat"
	}
	energyUsed := cfg.Car.BatteryCapacityJ - eng.Battery().RemainingJ()

	runID, err := st.Save(trk.Name, cfg.Dt, energyUsed, outcome, ts)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("outcome: %s\n", outcome)
	fmt.Printf("samples: %d\n", ts.Len())
	fmt.Printf("lap time: %.2f s\n", eng.Elapsed())
	fmt.Printf("distance: %.1f m\n", eng.Distance())
	fmt.Printf("energy used: %.0f J (%.1f%% of pack)\n",
		energyUsed, 100*(1-eng.Battery().StateOfCharge()))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	trk, err := resolveTrack(cfg.Track)
	if err != nil {
		return err
	}
	eng, err := physics.NewEngine(cfg.Car, trk, cfg.Dt)
	if err != nil {
		return err
	}
	ts := telemetry.NewStore()
	paced := &pacedStepper{
		inner: &stepLimiter{inner: eng, remaining: cfg.MaxSteps},
		delay: time.Duration(cfg.Dt * float64(time.Second)),
	}
	w := worker.New(ts, paced)

	ticker := refresh.NewTicker(cfg.RefreshPeriod())
	m := viz.NewModel(ts, w, ticker, trk.Name)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}

	w.Stop()
	ticker.Stop()
	w.Wait()
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRACK\tTIME\tLAP\tSAMPLES\tOUTCOME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\n",
			run.ID,
			run.Track,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.LapTimeS,
			run.Samples,
			run.Outcome,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	columns, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("track: %s\n", meta.Track)
	fmt.Printf("samples: %d\n\n", meta.Samples)

	selected := []telemetry.Series{
		telemetry.SeriesVelocity,
		telemetry.SeriesTrackMaxVelocity,
		telemetry.SeriesMotorPower,
		telemetry.SeriesBatteryPower,
	}
	if seriesName != "" {
		selected = []telemetry.Series{telemetry.Series(seriesName)}
	}

	for _, name := range selected {
		data, ok := columns[name]
		if !ok || len(data) < 2 {
			fmt.Printf("no data for series %q\n", name)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(string(name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	columns, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	names := telemetry.AllSeries()
	n := 0
	for _, name := range names {
		if len(columns[name]) > n {
			n = len(columns[name])
		}
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := make([]string, len(names))
	for i, name := range names {
		header[i] = string(name)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(names))
	for i := 0; i < n; i++ {
		for j, name := range names {
			col := columns[name]
			if i < len(col) {
				row[j] = strconv.FormatFloat(col[i], 'f', 6, 64)
			} else {
				row[j] = "0"
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	columns, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, columns)
}
