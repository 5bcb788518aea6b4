package compute

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/nbody/internal/vec"
)

var (
	ErrUnknownBackend    = errors.New("compute: unknown backend")
	ErrUnavailable       = errors.New("compute: backend not available")
	ErrWorkgroupMismatch = errors.New("compute: particle count is not a multiple of the workgroup size")
	ErrNotStaged         = errors.New("compute: stage resources not acquired")
	ErrBufferMismatch    = errors.New("compute: buffer lengths do not match the particle count")
)

// Buffers is one side of the double-buffered particle state.
type Buffers struct {
	Position []vec.Float4
	Velocity []vec.Float4
}

// Backend runs the integration kernel. Integrate receives the encoded
// parameter record exactly as a device would see it in its parameter buffer
// and writes the advanced state from src into dst.
type Backend interface {
	Name() string
	Available() bool
	WorkgroupWidth() int
	Integrate(params []byte, dst, src Buffers) error
	Cleanup()
}

var (
	mu            sync.Mutex
	activeBackend Backend
)

func init() {
	// Auto-select best available backend (CUDA if available, else CPU)
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if activeBackend != nil && activeBackend != b {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	mu.Lock()
	defer mu.Unlock()
	return activeBackend
}

func AutoSelectBackend() Backend {
	cuda := NewCUDABackend()
	if cuda.Available() {
		return cuda
	}
	return NewCPUBackend()
}

// ByName resolves "auto", "cpu" or "cuda".
func ByName(name string) (Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelectBackend(), nil
	case "cpu":
		return NewCPUBackend(), nil
	case "cuda":
		cuda := NewCUDABackend()
		if !cuda.Available() {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, cuda.Name())
		}
		return cuda, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

func logger() *slog.Logger {
	return slog.Default().With("component", "compute")
}
