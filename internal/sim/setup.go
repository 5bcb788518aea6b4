package sim

import (
	"fmt"

	"github.com/san-kum/nbody/internal/compute"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/generator"
)

// Setup describes how to build a stage and its initial conditions.
type Setup struct {
	Backend    compute.Backend
	Globals    config.Globals
	Parameters config.Parameters
	Multiplier int
	Seed       int64
}

// Prepare acquires a stage for s and fills its read-side buffers from the
// parameter set's generator.
func Prepare(s Setup) (*compute.Stage, error) {
	stage := compute.NewStage(s.Backend)
	stage.SetMultiplier(s.Multiplier)
	stage.SetGlobals(s.Globals)
	stage.SetParameters(s.Parameters)

	if err := stage.Acquire(); err != nil {
		return nil, err
	}

	gen := generator.New(s.Seed)
	gen.SetGlobals(s.Globals)
	gen.SetParameters(s.Parameters)
	if err := gen.Acquire(s.Parameters.Generator(), stage.Position(), stage.Velocity()); err != nil {
		stage.Cleanup()
		return nil, fmt.Errorf("generate %s: %w", s.Parameters.Generator(), err)
	}
	return stage, nil
}
