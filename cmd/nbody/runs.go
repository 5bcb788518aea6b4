package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/analysis"
	"github.com/san-kum/nbody/internal/export"
	"github.com/san-kum/nbody/internal/storage"
	"github.com/san-kum/nbody/internal/viz"
)

func openStore() *storage.Store {
	return storage.New(dataDir)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()

			runs, err := st.List()
			if err != nil {
				return err
			}
			fmt.Print(viz.RunTable(runs))
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()

			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			p, err := st.LoadPrefs(args[0])
			if err != nil {
				return err
			}

			fmt.Println(viz.Title.Render(meta.ID))
			fmt.Println(viz.KeyValue("name", meta.Name))
			fmt.Println(viz.KeyValue("generator", meta.Generator))
			fmt.Println(viz.KeyValue("backend", meta.Backend))
			fmt.Println(viz.KeyValue("seed", meta.Seed))
			fmt.Println(viz.KeyValue("steps", meta.Steps))
			fmt.Println(viz.KeyValue("time", fmt.Sprintf("%.4g", meta.Time)))
			fmt.Println(viz.KeyValue("timestamp", meta.Timestamp.Format("2006-01-02 15:04:05")))
			fmt.Println(viz.PrefsPanel(p))
			fmt.Println(viz.MetricsPanel(meta.Metrics))
			return nil
		},
	}
}

func newPlotCmd() *cobra.Command {
	var (
		metric string
		width  int
		height int
		view   bool
	)

	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded metric, or the final particles with --particles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()

			if view {
				pos, _, err := st.LoadParticles(args[0])
				if err != nil {
					return err
				}
				cv := viz.NewCanvas(width/2, height)
				cam := viz.NewCamera()
				cam.Fit(pos)
				viz.RenderParticles(cv, pos, cam)
				fmt.Print(cv.String())
				return nil
			}

			history, err := st.LoadHistory(args[0])
			if err != nil {
				return err
			}
			out, err := viz.EnergyPlot(history, metric, width, height)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "kinetic_energy", "metric to plot")
	cmd.Flags().IntVar(&width, "width", 70, "plot width")
	cmd.Flags().IntVar(&height, "height", 15, "plot height")
	cmd.Flags().BoolVar(&view, "particles", false, "draw final particle positions")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata, prefs, and history as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()
			return st.ExportJSON(os.Stdout, args[0])
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "find the dominant oscillation period of a recorded metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()

			history, err := st.LoadHistory(args[0])
			if err != nil {
				return err
			}
			series := viz.Series(history, metric)

			// Samples are evenly spaced in simulated time.
			interval := 1.0
			if len(history) > 1 {
				interval = history[1].Time - history[0].Time
			}

			peak, err := analysis.Dominant(series, interval)
			if err != nil {
				return fmt.Errorf("%s: %w", metric, err)
			}

			fmt.Println(viz.Title.Render(metric))
			fmt.Println(viz.KeyValue("samples", len(series)))
			fmt.Println(viz.KeyValue("frequency", fmt.Sprintf("%.6g", peak.Frequency)))
			fmt.Println(viz.KeyValue("period", fmt.Sprintf("%.6g", peak.Period)))
			fmt.Println(viz.KeyValue("power", fmt.Sprintf("%.6g", peak.Power)))
			fmt.Println(viz.Sparkline(analysis.PowerSpectrum(series), 40))
			return nil
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "kinetic_energy", "metric to analyze")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	var (
		out    string
		metric string
		scale  float64
	)

	cmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "write the final particles, or a metric with --metric, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()

			var doc string
			if metric != "" {
				history, err := st.LoadHistory(args[0])
				if err != nil {
					return err
				}
				doc = export.SeriesToSVG(viz.Series(history, metric), 800, 400, "#00ccff")
				if doc == "" {
					return fmt.Errorf("metric %q has too few samples", metric)
				}
			} else {
				pos, _, err := st.LoadParticles(args[0])
				if err != nil {
					return err
				}
				cv := viz.NewCanvas(100, 50)
				cam := viz.NewCamera()
				cam.Fit(pos)
				viz.RenderParticles(cv, pos, cam)
				doc = export.CanvasToSVG(cv, scale, "#ff9ff3")
			}

			if out == "" {
				out = args[0] + ".svg"
			}
			if err := os.WriteFile(out, []byte(doc), 0644); err != nil {
				return err
			}
			slog.Info("snapshot written", "component", "cli", "path", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <run_id>.svg)")
	cmd.Flags().StringVar(&metric, "metric", "", "plot this metric instead of particles")
	cmd.Flags().Float64Var(&scale, "scale", 4, "pixels per dot")
	return cmd
}
