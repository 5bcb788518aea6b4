package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/viz"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "encode and decode the 16-byte simulation parameter record",
	}
	cmd.AddCommand(newPrefsEncodeCmd(), newPrefsDecodeCmd())
	return cmd
}

func newPrefsEncodeCmd() *cobra.Command {
	var (
		opts   simOptions
		out    string
		asHex  bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "write the parameter record for a configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			// An explicit particle count goes into the record as given; the
			// staging fallback for small counts does not apply here.
			particles := r.cfg.Globals.Particles
			if cmd.Flags().Changed("particles") {
				if opts.particles < 0 {
					return fmt.Errorf("particles must be non-negative, got %d", opts.particles)
				}
				particles = opts.particles
			}

			p := r.params.Prefs(particles)
			if err := p.Validate(); err != nil {
				if strict {
					return err
				}
				slog.Warn("encoding invalid parameters", "component", "cli", "error", err)
			}

			if out == "" {
				return writePrefs(cmd.OutOrStdout(), p, asHex)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writePrefs(f, p, asHex); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "write hex instead of raw bytes")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on invalid parameters")
	return cmd
}

func writePrefs(w io.Writer, p prefs.Prefs, asHex bool) error {
	if !asHex {
		return p.Encode(w)
	}
	raw, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(raw))
	return err
}

func newPrefsDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "decode a parameter record (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			p, err := prefs.Decode(r)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), viz.PrefsPanel(p))
			if err := p.Validate(); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), viz.StatusError.Render(err.Error()))
			}
			return nil
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list presets and simulation types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, viz.Title.Render("Presets"))
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				p, _ := cfg.Select(cfg.Selected)
				fmt.Fprintf(w, "  %-8s %6d particles  %-10s %d steps\n", name, cfg.Globals.Particles, p.Name, cfg.Steps)
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, viz.Title.Render("Simulation types"))
			for i, p := range config.DefaultParameters {
				fmt.Fprintf(w, "  %d %-10s %-7s dt=%-7.4g softening=%-6.3g damping=%.3g\n",
					i, p.Name, p.Generator(), p.Timestep, p.Softening, p.Damping)
			}
			return nil
		},
	}
}
