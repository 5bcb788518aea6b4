package main

import (
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/mem"

	"github.com/san-kum/nbody/internal/vec"
)

// stageBytes is the host memory a stage needs: two position and two
// velocity buffers.
func stageBytes(particles int) uint64 {
	return 4 * uint64(vec.Float4Size) * uint64(particles)
}

// checkMemory fails when the stage buffers cannot fit in available memory.
// If memory cannot be queried the check is skipped.
func checkMemory(particles int) error {
	need := stageBytes(particles)

	vm, err := mem.VirtualMemory()
	if err != nil {
		slog.Debug("memory check skipped", "component", "cli", "error", err)
		return nil
	}
	if need > vm.Available {
		return fmt.Errorf("%d particles need %d bytes, %d available", particles, need, vm.Available)
	}

	slog.Debug("memory check", "component", "cli", "need", need, "available", vm.Available)
	return nil
}
