package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/compute"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/storage"
	"github.com/san-kum/nbody/internal/viz"
)

func newRunCmd() *cobra.Command {
	var (
		opts        simOptions
		duration    float64
		sampleEvery int
		ensemble    int
		parallel    int
		noSave      bool
		noValidate  bool
		monitorAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if err := r.validate(); err != nil {
				return err
			}
			if err := checkMemory(r.cfg.Globals.Particles * max(1, ensemble)); err != nil {
				return err
			}

			simCfg := sim.Config{
				Steps:         r.cfg.Steps,
				Seed:          r.cfg.Seed,
				SampleEvery:   sampleEvery,
				ValidateState: !noValidate,
			}
			if cmd.Flags().Changed("duration") {
				simCfg.Steps = 0
				simCfg.Duration = duration
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if ensemble > 1 {
				return runEnsemble(ctx, r, simCfg, ensemble, parallel)
			}
			return runSingle(ctx, r, simCfg, !noSave, monitorAddr)
		},
	}

	opts.register(cmd)
	cmd.Flags().Float64Var(&duration, "duration", 0, "simulated duration (overrides --steps)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "record metrics every n steps (0 disables)")
	cmd.Flags().IntVar(&ensemble, "ensemble", 1, "number of independently seeded runs")
	cmd.Flags().IntVar(&parallel, "parallel", -1, "ensemble runs at once (-1 for no limit)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip NaN/Inf checks of particle state")
	cmd.Flags().StringVar(&monitorAddr, "monitor", "", "serve progress over HTTP at this address while running")
	return cmd
}

// newSimulator attaches the standard metric set. Total energy is quadratic in
// the particle count, so drift is only evaluated on sampled steps.
func newSimulator(stage *compute.Stage, every int) *sim.Simulator {
	s := sim.New(stage)
	s.AddMetric(metrics.NewKineticEnergy())
	s.AddMetric(metrics.NewEnergyDrift(max(1, every)))
	s.AddMetric(metrics.NewCenterOfMassDrift())
	s.AddMetric(metrics.NewStability(stabilityRadius(stage)))
	return s
}

// stabilityRadius is ten times the initial extent of the cluster.
func stabilityRadius(stage *compute.Stage) float64 {
	var r float64
	for _, p := range stage.Position() {
		r = max(r, float64(p.XYZ().Length()))
	}
	if r == 0 {
		r = 1
	}
	return 10 * r
}

func runSingle(ctx context.Context, r *resolved, simCfg sim.Config, save bool, monitorAddr string) error {
	b, err := r.backend()
	if err != nil {
		return err
	}

	setup := r.setup(b)
	stage, err := sim.Prepare(setup)
	if err != nil {
		return err
	}
	defer stage.Cleanup()

	s := newSimulator(stage, simCfg.SampleEvery)

	st := storage.New(dataDir)
	defer st.Close()

	mon, stopMonitor, err := startMonitor(monitorAddr, st)
	if err != nil {
		return err
	}
	defer stopMonitor()
	if mon != nil {
		total := simCfg.Steps
		if total == 0 {
			total = sim.StepsFor(simCfg.Duration, stage.Prefs().Timestep)
		}
		progress := mon.CreateProgress(r.params.Name, total)
		defer mon.CompleteProgress(progress)
		s.AddObserver(progress)
	}

	slog.Info("running simulation",
		"component", "cli",
		"type", r.params.Name,
		"backend", b.Name(),
		"particles", stage.Particles(),
	)
	start := time.Now()

	result, runErr := s.Run(ctx, simCfg)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		slog.Warn("simulation interrupted", "component", "cli", "steps", result.StepsTaken)
	}

	fmt.Println(viz.PrefsPanel(stage.Prefs()))
	fmt.Println(viz.MetricsPanel(result.Metrics))
	fmt.Println(viz.KeyValue("steps", result.StepsTaken))
	fmt.Println(viz.KeyValue("elapsed", time.Since(start).Round(time.Millisecond)))

	if !save {
		return nil
	}

	runID, err := st.Save(storage.Run{
		Name:      r.params.Name,
		Generator: r.params.Generator(),
		Backend:   b.Name(),
		Seed:      r.cfg.Seed,
		Prefs:     stage.Prefs(),
		Result:    result,
		Position:  stage.Position(),
		Velocity:  stage.Velocity(),
	})
	if err != nil {
		return err
	}
	fmt.Println(viz.KeyValue("run id", runID))
	return nil
}

// runEnsemble runs independently seeded members on the CPU backend. The CUDA
// backend holds process-wide device buffers and cannot serve concurrent stages.
func runEnsemble(ctx context.Context, r *resolved, simCfg sim.Config, n, parallel int) error {
	base := r.setup(nil)

	e := sim.NewEnsemble(func(seed int64) (*sim.Simulator, error) {
		setup := base
		setup.Backend = compute.NewCPUBackend()
		setup.Seed = seed
		stage, err := sim.Prepare(setup)
		if err != nil {
			return nil, err
		}
		return newSimulator(stage, simCfg.SampleEvery), nil
	}, n, r.cfg.Seed)
	e.SetLimit(parallel)

	slog.Info("running ensemble", "component", "cli", "members", n, "type", r.params.Name)

	results, err := e.Run(ctx, simCfg)
	if err != nil {
		return err
	}

	for i, res := range results {
		fmt.Println(viz.Title.Render(fmt.Sprintf("seed %d", r.cfg.Seed+int64(i))))
		fmt.Println(viz.MetricsPanel(res.Metrics))
	}
	return nil
}

func newLiveCmd() *cobra.Command {
	var (
		opts          simOptions
		stepsPerFrame int
		theme         string
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if err := r.validate(); err != nil {
				return err
			}
			if err := checkMemory(r.cfg.Globals.Particles); err != nil {
				return err
			}

			b, err := r.backend()
			if err != nil {
				return err
			}

			m, err := viz.NewLive(r.setup(b), stepsPerFrame)
			if err != nil {
				return err
			}
			defer m.Close()
			m.SetTheme(viz.GetTheme(theme))

			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "integration steps per rendered frame")
	cmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	return cmd
}
