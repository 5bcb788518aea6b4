package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/nbody/internal/compute"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/sim"
)

// simOptions are the flags shared by every command that builds a simulation.
type simOptions struct {
	preset     string
	simType    string
	particles  int
	backend    string
	multiplier int
	steps      int
	seed       int64
	timestep   float32
	damping    float32
	softening  float32
}

func (o *simOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.preset, "preset", "", "use preset configuration")
	f.StringVar(&o.simType, "type", "", "simulation type name or index")
	f.IntVar(&o.particles, "particles", 0, "number of particles")
	f.StringVar(&o.backend, "backend", config.DefaultBackend, "compute backend (auto, cpu, cuda)")
	f.IntVar(&o.multiplier, "multiplier", config.DefaultMultiplier, "workgroup size multiplier")
	f.IntVar(&o.steps, "steps", config.DefaultSteps, "integration steps")
	f.Int64Var(&o.seed, "seed", 0, "random seed")
	f.Float32Var(&o.timestep, "timestep", 0, "override timestep")
	f.Float32Var(&o.damping, "damping", 0, "override damping")
	f.Float32Var(&o.softening, "softening", 0, "override softening length")
}

// resolved is a configuration after presets, file, environment and flags.
type resolved struct {
	cfg    *config.Config
	index  int
	params config.Parameters
}

// resolve layers preset, config file, NBODY_* environment and flags, in that
// order. Only flags the user set override the layers below.
func (o *simOptions) resolve(cmd *cobra.Command) (*resolved, error) {
	cfg := config.DefaultConfig()
	if o.preset != "" {
		cfg = config.GetPreset(o.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.ApplyEnv()

	f := cmd.Flags()
	if f.Changed("particles") {
		cfg.Globals.SetParticles(o.particles)
	}
	if f.Changed("backend") {
		cfg.Backend = o.backend
	}
	if f.Changed("multiplier") {
		cfg.Multiplier = o.multiplier
	}
	if f.Changed("steps") {
		cfg.Steps = o.steps
	}
	if f.Changed("seed") {
		cfg.Seed = o.seed
	}

	index := cfg.Selected
	if o.simType != "" {
		i, ok := cfg.Lookup(o.simType)
		if !ok {
			n, err := strconv.Atoi(o.simType)
			if err != nil {
				return nil, fmt.Errorf("unknown simulation type: %s", o.simType)
			}
			i = n
		}
		index = i
	}

	params, err := cfg.Select(index)
	if err != nil {
		return nil, err
	}
	if f.Changed("timestep") {
		params.Timestep = o.timestep
	}
	if f.Changed("damping") {
		params.Damping = o.damping
	}
	if f.Changed("softening") {
		params.Softening = o.softening
	}

	return &resolved{cfg: cfg, index: index, params: params}, nil
}

// backend resolves the configured backend, makes it the process default,
// and releases it at exit.
func (r *resolved) backend() (compute.Backend, error) {
	b, err := compute.ByName(r.cfg.Backend)
	if err != nil {
		return nil, err
	}
	compute.SetBackend(b)
	atexit.Register(b.Cleanup)

	slog.Debug("backend selected", "component", "cli", "backend", b.Name(), "workgroup", b.WorkgroupWidth())
	return b, nil
}

func (r *resolved) setup(b compute.Backend) sim.Setup {
	return sim.Setup{
		Backend:    b,
		Globals:    r.cfg.Globals,
		Parameters: r.params,
		Multiplier: r.cfg.Multiplier,
		Seed:       r.cfg.Seed,
	}
}

// validate checks the record the stage will be given before any buffers
// are allocated.
func (r *resolved) validate() error {
	return r.params.Prefs(r.cfg.Globals.Particles).Validate()
}
