// Package compute provides the backends that run the N-body integration
// kernel and the Stage that owns their buffers.
//
// The package automatically selects the best available backend:
//
//   - CUDA: GPU kernel sharing the 16-byte prefs record with the device
//   - CPU: tiled goroutine implementation of the same kernel
//
// # Stage
//
// A Stage holds two position and two velocity buffers plus a parameter
// buffer carrying the encoded [prefs.Prefs]. Each Step reads one side,
// writes the other, then swaps:
//
//	stage := compute.NewStage(compute.GetBackend())
//	stage.SetGlobals(cfg.Globals)
//	stage.SetParameters(params)
//	if err := stage.Acquire(); err != nil { ... }
//	err := stage.Step()
//
// Build with CUDA support:
//
//	./build_cuda.sh
//
// The particle count must be a multiple of the workgroup size, which is the
// backend's workgroup width times the stage multiplier.
package compute
