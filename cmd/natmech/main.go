package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/motionlab/natmech/internal/config"
	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/model"
	"github.com/motionlab/natmech/internal/scenario"
	"github.com/motionlab/natmech/internal/sim"
	"github.com/spf13/cobra"
)

var (
	dt        float64
	duration  float64
	segments  int
	length    float64
	mass      float64
	alpha     float64
	beta      float64
	normalize bool
	// Config file
	configFile string
	// Preset name
	preset string
	// Plot variable for run
	plotVar string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "natmech",
		Short: "rigid multibody simulation in natural coordinates",
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().IntVar(&segments, "segments", config.DefaultSegments, "number of segments (chain)")
	runCmd.Flags().Float64Var(&length, "length", config.DefaultLength, "segment length")
	runCmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "segment mass")
	runCmd.Flags().Float64Var(&alpha, "alpha", 0.0, "position stabilization gain")
	runCmd.Flags().Float64Var(&beta, "beta", 0.0, "velocity stabilization gain")
	runCmd.Flags().BoolVar(&normalize, "normalize", true, "renormalize direction vectors each step")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&plotVar, "plot", "drift", "variable to plot: drift, energy, none")

	checkCmd := &cobra.Command{
		Use:   "check [scenario]",
		Short: "check a scenario's initial state against its constraints",
		Args:  cobra.ExactArgs(1),
		RunE:  checkScenario,
	}
	checkCmd.Flags().IntVar(&segments, "segments", config.DefaultSegments, "number of segments (chain)")
	checkCmd.Flags().Float64Var(&length, "length", config.DefaultLength, "segment length")
	checkCmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "segment mass")
	checkCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [scenario]",
		Short: "run a simulation and write the trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	exportCSVCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	exportCSVCmd.Flags().IntVar(&segments, "segments", config.DefaultSegments, "number of segments (chain)")
	exportCSVCmd.Flags().Float64Var(&length, "length", config.DefaultLength, "segment length")
	exportCSVCmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "segment mass")
	exportCSVCmd.Flags().Float64Var(&alpha, "alpha", 0.0, "position stabilization gain")
	exportCSVCmd.Flags().Float64Var(&beta, "beta", 0.0, "velocity stabilization gain")
	exportCSVCmd.Flags().BoolVar(&normalize, "normalize", true, "renormalize direction vectors each step")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenario.List() {
				fmt.Println(name)
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, checkCmd, exportCSVCmd, scenariosCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset, config file and CLI flags, in
// increasing priority, into one scenario configuration.
func resolveConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scenario = name

	if preset != "" {
		p := config.GetPreset(name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Scenario = name
	}

	if f := cmd.Flags(); f != nil {
		if f.Changed("dt") {
			cfg.Dt = dt
		}
		if f.Changed("time") {
			cfg.Duration = duration
		}
		if f.Changed("segments") {
			cfg.Segments = segments
		}
		if f.Changed("length") {
			cfg.Length = length
		}
		if f.Changed("mass") {
			cfg.Mass = mass
		}
		if f.Changed("alpha") {
			cfg.Stabilization.Alpha = alpha
		}
		if f.Changed("beta") {
			cfg.Stabilization.Beta = beta
		}
		if f.Changed("normalize") {
			cfg.Normalize = normalize
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func simOptions(cfg *config.Config) sim.Options {
	opt := sim.Options{
		Dt:                   cfg.Dt,
		Steps:                int(cfg.Duration / cfg.Dt),
		NormalizeUnitVectors: cfg.Normalize,
	}
	if cfg.Stabilization.Alpha != 0 || cfg.Stabilization.Beta != 0 {
		opt.Stabilization = &model.Stabilization{
			Alpha: cfg.Stabilization.Alpha,
			Beta:  cfg.Stabilization.Beta,
		}
	}
	return opt
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m, q0, qdot0, err := scenario.Build(cfg)
	if err != nil {
		return err
	}
	if err := m.ValidateInitialState(q0, 1e-9); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Scenario)
	start := time.Now()

	result, err := sim.Integrate(m, q0, qdot0, simOptions(cfg))
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("segments: %d  coordinates: %d  constraints: %d\n",
		m.NbSegments(), m.NbQ(), m.NbHolonomicConstraints())
	fmt.Printf("steps: %d\n", len(result.Times)-1)
	fmt.Printf("final drift: %.3e\n", result.Drift[len(result.Drift)-1])

	switch plotVar {
	case "drift":
		graph := asciigraph.Plot(result.Drift,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("constraint drift (max residual)"),
		)
		fmt.Println(graph)
	case "energy":
		energy, err := totalEnergy(m, result)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total mechanical energy"),
		)
		fmt.Println(graph)
	case "none":
	default:
		return fmt.Errorf("unknown plot variable: %s", plotVar)
	}

	return nil
}

func totalEnergy(m *model.Model, result *sim.Result) ([]float64, error) {
	b := linalg.NewDense()
	n := m.NbQ()
	energy := make([]float64, len(result.States))
	for i := range result.States {
		q, qdot := result.State(i)
		pe, err := m.PotentialEnergy(b.Const(n, 1, q))
		if err != nil {
			return nil, err
		}
		ke, err := m.KineticEnergy(b.Const(n, 1, qdot))
		if err != nil {
			return nil, err
		}
		// potential energy is the gravity work function m g.r, so the
		// conserved mechanical energy is ke - pe
		energy[i] = linalg.Floats(ke)[0] - linalg.Floats(pe)[0]
	}
	return energy, nil
}

func checkScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m, q0, _, err := scenario.Build(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "scenario\t%s\n", cfg.Scenario)
	fmt.Fprintf(w, "segments\t%d\n", m.NbSegments())
	fmt.Fprintf(w, "joints\t%d\n", m.NbJoints())
	fmt.Fprintf(w, "coordinates\t%d\n", m.NbQ())
	fmt.Fprintf(w, "rigid-body constraints\t%d\n", 6*m.NbSegments())
	fmt.Fprintf(w, "joint constraints\t%d\n", m.NbJointConstraints())
	if err := w.Flush(); err != nil {
		return err
	}

	if err := m.ValidateInitialState(q0, 1e-9); err != nil {
		return err
	}
	fmt.Println("initial state satisfies all constraints")

	for _, warning := range m.OrientationWarnings(q0) {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m, q0, qdot0, err := scenario.Build(cfg)
	if err != nil {
		return err
	}

	result, err := sim.Integrate(m, q0, qdot0, simOptions(cfg))
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	n := m.NbQ()
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	header = append(header, "drift")
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		q, _ := result.State(i)
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range q {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		row = append(row, strconv.FormatFloat(result.Drift[i], 'e', 3, 64))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
