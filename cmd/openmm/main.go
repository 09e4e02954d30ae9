package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/chryswoods/openmm/internal/config"
	"github.com/chryswoods/openmm/internal/engine"
	"github.com/chryswoods/openmm/internal/export"
	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/metrics"
	"github.com/chryswoods/openmm/internal/minimize"
	"github.com/chryswoods/openmm/internal/stream"
	"github.com/chryswoods/openmm/internal/system"
	"github.com/chryswoods/openmm/internal/tui"
)

var (
	configFile string
	chainLen   int
	dup        int
	csvPath    string
	jsonPath   string
	svgPath    string
	maxRows    int
	// minimize flags
	maxIter   int
	stepSize  float64
	tolerance float64
	speed     int
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "openmm",
		Short: "molecular mechanics force evaluation",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "engine config file (yaml)")
	rootCmd.PersistentFlags().IntVar(&chainLen, "chain", 0, "use a generated n-particle chain instead of a system file")
	rootCmd.PersistentFlags().IntVar(&dup, "dup", 0, "override duplication factor for the pairwise path")

	runCmd := &cobra.Command{
		Use:   "run [system.yaml]",
		Short: "evaluate forces once and report per-particle results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runForces,
	}
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write per-particle forces to CSV")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write per-particle forces to JSON")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write a force-field snapshot to SVG")
	runCmd.Flags().IntVar(&maxRows, "rows", 10, "per-particle rows to print")

	validateCmd := &cobra.Command{
		Use:   "validate [system.yaml]",
		Short: "check topology fan-in against provisioned map levels",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validateTopology,
	}

	minimizeCmd := &cobra.Command{
		Use:   "minimize [system.yaml]",
		Short: "steepest-descent relaxation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMinimize,
	}
	minimizeCmd.Flags().IntVar(&maxIter, "iters", 500, "iteration budget")
	minimizeCmd.Flags().Float64Var(&stepSize, "step", 1e-5, "displacement per unit force")
	minimizeCmd.Flags().Float64Var(&tolerance, "tol", 10.0, "convergence threshold on max |F|")

	liveCmd := &cobra.Command{
		Use:   "live [system.yaml]",
		Short: "relaxation with live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&maxIter, "iters", 2000, "iteration budget")
	liveCmd.Flags().Float64Var(&stepSize, "step", 1e-5, "displacement per unit force")
	liveCmd.Flags().Float64Var(&tolerance, "tol", 10.0, "convergence threshold on max |F|")
	liveCmd.Flags().IntVar(&speed, "speed", 5, "iterations per frame")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the default engine config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd, minimizeCmd, liveCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadInputs(args []string) (*system.System, *config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if dup > 0 {
		cfg.Duplication = dup
	}

	var sys *system.System
	switch {
	case len(args) == 1:
		loaded, err := system.Load(args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load system: %w", err)
		}
		sys = loaded
	case chainLen > 0:
		sys = system.Chain(chainLen)
	default:
		return nil, nil, fmt.Errorf("need a system file or --chain n")
	}

	return sys, cfg, nil
}

func runForces(cmd *cobra.Command, args []string) error {
	sys, cfg, err := loadInputs(args)
	if err != nil {
		return err
	}
	if sys.Positions == nil {
		return fmt.Errorf("system has no positions")
	}

	eng, err := engine.New(sys, cfg)
	if err != nil {
		return describeConfigError(err)
	}

	force := stream.Vec3Buffer(eng.ParticleCount())
	start := time.Now()
	if err := eng.Forces(sys.Positions, force); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("particles: %d   bonded terms: %d   duplication: %d\n",
		eng.ParticleCount(), eng.TermCount(), cfg.Duplication)
	fmt.Printf("evaluated in %v\n\n", elapsed)

	printForceTable(force, maxRows)

	net := metrics.NewNetForce()
	net.Observe(force)
	fmt.Printf("\nmetrics:\n")
	fmt.Printf("  net_force: %.3e\n", net.Value())
	fmt.Printf("  max_force: %.6f\n", metrics.MaxMagnitude(force))

	if n := eng.ParticleCount(); n > 1 {
		profile := make([]float64, n)
		for p := 0; p < n; p++ {
			fx, fy, fz := force[p*3], force[p*3+1], force[p*3+2]
			profile[p] = math.Sqrt(fx*fx + fy*fy + fz*fz)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(profile, asciigraph.Height(8), asciigraph.Caption("|F| by particle")))
	}

	if csvPath != "" {
		if err := writeCSV(csvPath, force); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", csvPath)
	}
	if jsonPath != "" {
		if err := writeJSON(jsonPath, force); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonPath)
	}
	if svgPath != "" {
		svg := export.ForceFieldSVG(sys.Positions, force, 800, 600, 1e-3)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	return nil
}

func validateTopology(cmd *cobra.Command, args []string) error {
	sys, cfg, err := loadInputs(args)
	if err != nil {
		return err
	}

	reports, err := engine.Validate(sys, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("particles: %d   bonded terms: %d\n\n", sys.ParticleCount(),
		sys.TermCount())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "role\tfan-in\tlevels\tstatus")
	failed := false
	for _, r := range reports {
		status := okStyle.Render("ok")
		if !r.OK() {
			status = failStyle.Render(fmt.Sprintf("overflow by %d", r.FanIn-r.Levels))
			failed = true
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.Role, r.FanIn, r.Levels, status)
	}
	w.Flush()

	if failed {
		fmt.Println(dimStyle.Render("\nraise the offending role's level count in the engine config"))
		return fmt.Errorf("topology exceeds provisioned inverse map capacity")
	}
	return nil
}

func runMinimize(cmd *cobra.Command, args []string) error {
	sys, cfg, err := loadInputs(args)
	if err != nil {
		return err
	}
	if sys.Positions == nil {
		return fmt.Errorf("system has no positions")
	}

	eng, err := engine.New(sys, cfg)
	if err != nil {
		return describeConfigError(err)
	}

	opt := minimize.DefaultOptions()
	opt.MaxIterations = maxIter
	opt.StepSize = stepSize
	opt.Tolerance = tolerance

	fmt.Printf("relaxing %d particles...\n", eng.ParticleCount())
	start := time.Now()
	result, err := minimize.Run(eng, sys.Positions, opt)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("iterations: %d\n", result.Iterations)
	if result.Converged {
		fmt.Println(okStyle.Render("converged"))
	} else {
		fmt.Println(failStyle.Render("did not converge"))
	}

	if len(result.MaxForce) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(result.MaxForce, asciigraph.Height(10), asciigraph.Caption("max |F| per iteration")))
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sys, cfg, err := loadInputs(args)
	if err != nil {
		return err
	}
	if sys.Positions == nil {
		return fmt.Errorf("system has no positions")
	}

	eng, err := engine.New(sys, cfg)
	if err != nil {
		return describeConfigError(err)
	}

	opt := minimize.DefaultOptions()
	opt.MaxIterations = maxIter
	opt.StepSize = stepSize
	opt.Tolerance = tolerance

	stepper := minimize.NewStepper(eng, sys.Positions, opt)
	p := tea.NewProgram(tui.NewLive(stepper, speed))
	_, err = p.Run()
	return err
}

// describeConfigError keeps capacity overflows actionable at the CLI.
func describeConfigError(err error) error {
	var cfgErr *invmap.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("%w\n%s", err,
			dimStyle.Render(fmt.Sprintf("role %s needs at least %d levels; run validate for the full report",
				cfgErr.Role, cfgErr.FanIn)))
	}
	return err
}

func printForceTable(force []float64, rows int) {
	n := len(force) / 3
	if rows > n {
		rows = n
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "particle\tfx\tfy\tfz")
	for p := 0; p < rows; p++ {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\n", p, force[p*3], force[p*3+1], force[p*3+2])
	}
	if rows < n {
		fmt.Fprintf(w, "...\t(%d more)\t\t\n", n-rows)
	}
	w.Flush()
}

func writeCSV(path string, force []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"particle", "fx", "fy", "fz"}); err != nil {
		return err
	}
	for p := 0; p*3 < len(force); p++ {
		row := []string{
			strconv.Itoa(p),
			strconv.FormatFloat(force[p*3], 'g', -1, 64),
			strconv.FormatFloat(force[p*3+1], 'g', -1, 64),
			strconv.FormatFloat(force[p*3+2], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, force []float64) error {
	type row struct {
		Particle int     `json:"particle"`
		Fx       float64 `json:"fx"`
		Fy       float64 `json:"fy"`
		Fz       float64 `json:"fz"`
	}
	rows := make([]row, len(force)/3)
	for p := range rows {
		rows[p] = row{Particle: p, Fx: force[p*3], Fy: force[p*3+1], Fz: force[p*3+2]}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
