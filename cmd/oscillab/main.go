package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/oscillab/internal/config"
	"github.com/san-kum/oscillab/internal/integrators"
	"github.com/san-kum/oscillab/internal/metrics"
	"github.com/san-kum/oscillab/internal/modal"
	"github.com/san-kum/oscillab/internal/montecarlo"
	"github.com/san-kum/oscillab/internal/osc"
	"github.com/san-kum/oscillab/internal/sim"
	"github.com/san-kum/oscillab/internal/storage"
	"github.com/san-kum/oscillab/internal/viz"
)

var (
	dataDir      string
	dt           float64
	duration     float64
	nMasses      int
	massVal      float64
	stiffness    float64
	modeIndex    int
	amplitude    float64
	displaceMass int
	displacement float64
	configFile   string
	frameRate    int
	seed         int64
	walkStart    int
	walkSteps    int
	meetStartA   int
	meetStartB   int
	meetFrom     int
	meetTo       int
	meetIncr     int
	trials       int
	combined     bool
	exportPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "oscillab",
		Short: "coupled-oscillator normal-mode lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".oscillab", "data directory")

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "derive eigenfrequencies and mode shapes",
		RunE:  showModes,
	}
	addChainFlags(modesCmd)

	runCmd := &cobra.Command{
		Use:   "run [mode|system]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addChainFlags(runCmd)
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&combined, "combined", false, "all masses on one graph")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportPath, "out", "", "output file (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live [mode|system]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addChainFlags(liveCmd)
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	walkCmd := &cobra.Command{
		Use:   "walk",
		Short: "random-walk return-probability study",
		RunE:  runWalk,
	}
	walkCmd.Flags().IntVar(&walkStart, "start", -2, "starting position")
	walkCmd.Flags().IntVar(&walkSteps, "steps", 100, "maximum step count")
	walkCmd.Flags().IntVar(&trials, "trials", 10000, "trials per step count")
	walkCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	meetCmd := &cobra.Command{
		Use:   "meet",
		Short: "two-walker meeting-probability study",
		RunE:  runMeet,
	}
	meetCmd.Flags().IntVar(&meetStartA, "start-a", -2, "first walker's starting position")
	meetCmd.Flags().IntVar(&meetStartB, "start-b", 12, "second walker's starting position")
	meetCmd.Flags().IntVar(&meetFrom, "from", 100, "smallest step count")
	meetCmd.Flags().IntVar(&meetTo, "to", 1000, "largest step count")
	meetCmd.Flags().IntVar(&meetIncr, "incr", 50, "step-count increment")
	meetCmd.Flags().IntVar(&trials, "trials", 10000, "trials per step count")
	meetCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	mcintCmd := &cobra.Command{
		Use:   "mcint",
		Short: "Monte Carlo integration convergence study",
		RunE:  runMCInt,
	}
	mcintCmd.Flags().IntVar(&trials, "trials", 100, "trials per sample size")
	mcintCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	rootCmd.AddCommand(modesCmd, runCmd, listCmd, plotCmd, exportCmd, liveCmd, walkCmd, meetCmd, mcintCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&nMasses, "masses", config.DefaultMasses, "number of masses")
	cmd.Flags().Float64Var(&massVal, "mass", config.DefaultMass, "mass of each particle")
	cmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "spring constant")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&modeIndex, "mode", 1, "mode index, 1-based (mode runs)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "mode-shape amplitude (mode runs)")
	cmd.Flags().IntVar(&displaceMass, "displace-mass", 1, "mass index to displace, 1-based (system runs)")
	cmd.Flags().Float64Var(&displacement, "displacement", 1.0, "initial displacement (system runs)")
}

func applyConfig(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// CLI flags override config values.
	if !cmd.Flags().Changed("dt") {
		dt = cfg.Dt
	}
	if !cmd.Flags().Changed("time") {
		duration = cfg.Duration
	}
	if !cmd.Flags().Changed("masses") {
		nMasses = cfg.Chain.Masses
	}
	if !cmd.Flags().Changed("mass") {
		massVal = cfg.Chain.Mass
	}
	if !cmd.Flags().Changed("stiffness") {
		stiffness = cfg.Chain.Stiffness
	}
	if !cmd.Flags().Changed("mode") {
		modeIndex = cfg.InitState.Mode
	}
	if !cmd.Flags().Changed("amplitude") {
		amplitude = cfg.InitState.Amplitude
	}
	if !cmd.Flags().Changed("displace-mass") {
		displaceMass = cfg.InitState.DisplaceMass
	}
	if !cmd.Flags().Changed("displacement") {
		displacement = cfg.InitState.Displacement
	}
	return nil
}

func buildChain() (*osc.System, error) {
	return osc.NewUniformChain(nMasses, massVal, stiffness)
}

// setup resolves the run kind into an acceleration model and initial state.
func setup(kind string, sys *osc.System) (integrators.Acceleration, osc.State, error) {
	switch kind {
	case "mode":
		ms, err := modal.Decompose(sys)
		if err != nil {
			return nil, nil, err
		}
		if modeIndex < 1 || modeIndex > ms.Len() {
			return nil, nil, fmt.Errorf("mode index %d out of range 1..%d", modeIndex, ms.Len())
		}
		m := ms.Mode(modeIndex - 1)
		acc, err := integrators.NewScalarMode(m.Omega, sys.Dim())
		if err != nil {
			return nil, nil, err
		}
		return acc, m.Shape.Scale(amplitude), nil

	case "system":
		if displaceMass < 1 || displaceMass > sys.Dim() {
			return nil, nil, fmt.Errorf("mass index %d out of range 1..%d", displaceMass, sys.Dim())
		}
		x0 := osc.Zeros(sys.Dim())
		x0[displaceMass-1] = displacement
		return integrators.NewMatrixMode(sys), x0, nil
	}
	return nil, nil, fmt.Errorf("unknown run kind %q (want mode or system)", kind)
}

func showModes(cmd *cobra.Command, args []string) error {
	sys, err := buildChain()
	if err != nil {
		return err
	}

	ms, err := modal.Decompose(sys)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tOMEGA^2\tOMEGA (rad/s)\tFREQ (Hz)\tPERIOD (s)")
	for i := 0; i < ms.Len(); i++ {
		m := ms.Mode(i)
		period := math.Inf(1)
		if m.Omega > 0 {
			period = 2 * math.Pi / m.Omega
		}
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.6f\n",
			i+1, m.Omega2, m.Omega, m.Omega/(2*math.Pi), period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for i := 0; i < ms.Len(); i++ {
		fmt.Println(viz.ModeShapePlot(ms.Mode(i), i))
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if err := applyConfig(cmd); err != nil {
		return err
	}

	sys, err := buildChain()
	if err != nil {
		return err
	}
	acc, x0, err := setup(args[0], sys)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New(acc)
	s.AddMetric(metrics.NewEnergy(sys))
	s.AddMetric(metrics.NewEnergyDrift(sys))

	fmt.Printf("running %s simulation...\n", args[0])
	start := time.Now()

	result, err := s.Run(context.Background(), x0, osc.Zeros(sys.Dim()), sim.Config{Dt: dt, Duration: duration})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Kind:      args[0],
		Dt:        dt,
		Duration:  duration,
		Masses:    nMasses,
		Mass:      massVal,
		Stiffness: stiffness,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tDURATION\tDT\tMASSES\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.4f\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Masses,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d\n\n", len(traj))

	if combined {
		fmt.Println(viz.CombinedPlot(traj))
	} else {
		fmt.Println(viz.TrajectoryPlot(traj))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if exportPath != "" {
		return st.ExportFile(args[0], exportPath)
	}
	return st.Export(args[0], os.Stdout)
}

func runLive(cmd *cobra.Command, args []string) error {
	sys, err := buildChain()
	if err != nil {
		return err
	}
	_, x0, err := setup(args[0], sys)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("oscillab · %s run · %d masses", args[0], sys.Dim())
	return viz.RunLive(viz.NewLive(sys, x0, osc.Zeros(sys.Dim()), dt, frameRate, title))
}

func runWalk(cmd *cobra.Command, args []string) error {
	curve, err := montecarlo.NewWalker(seed).ReturnCurve(walkStart, walkSteps, trials)
	if err != nil {
		return err
	}

	fmt.Printf("return-to-origin probability from %d (%d trials per point)\n\n", walkStart, trials)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tP(RETURN)")
	for i, p := range curve {
		fmt.Fprintf(w, "%d\t%.4f\n", i+1, p)
	}
	return w.Flush()
}

func runMeet(cmd *cobra.Command, args []string) error {
	curve, err := montecarlo.NewWalker(seed).MeetingCurve(meetStartA, meetStartB, meetFrom, meetTo, meetIncr, trials)
	if err != nil {
		return err
	}

	fmt.Printf("meeting probability for walkers from %d and %d (%d trials per point)\n\n",
		meetStartA, meetStartB, trials)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tP(MEET)")
	for _, p := range curve {
		fmt.Fprintf(w, "%d\t%.4f\n", p.Steps, p.Probability)
	}
	return w.Flush()
}

func runMCInt(cmd *cobra.Command, args []string) error {
	it := montecarlo.NewIntegrator(seed)
	sizes := []int{10, 100, 1000, 10000}

	studies := []struct {
		name  string
		f     montecarlo.Integrand
		a, b  float64
		exact float64
	}{
		{"cos(x)", math.Cos, -math.Pi, math.Pi, 0},
		{"x^2*cos(x)", func(x float64) float64 { return x * x * math.Cos(x) }, -math.Pi / 2, math.Pi / 2, math.Pi*math.Pi/2 - 4},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FUNC\tN\tESTIMATE\tEXACT\t|ERROR|\tSTDDEV")
	for _, study := range studies {
		points, err := it.Convergence(study.f, study.a, study.b, study.exact, sizes, trials)
		if err != nil {
			return err
		}
		for _, p := range points {
			fmt.Fprintf(w, "%s\t%d\t%.6f\t%.6f\t%.6f\t%.6f\n",
				study.name, p.N, p.Mean, study.exact, p.AbsError, p.StdDev)
		}
	}
	return w.Flush()
}
