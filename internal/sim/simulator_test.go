package sim

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/nbody/internal/compute"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/vec"
)

func newTestStage(t *testing.T, n int, p prefs.Prefs) *compute.Stage {
	t.Helper()
	stage := compute.NewStage(compute.NewCPUBackend())
	stage.SetGlobals(config.Globals{Particles: n})
	stage.SetPrefs(p.WithParticles(uint32(n)))
	if err := stage.Acquire(); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	for i := range stage.Position() {
		f := float64(i)
		stage.Position()[i] = vec.Float4{float32(math.Cos(f)), float32(math.Sin(f)), float32(f) * 0.01, 1}
		stage.Velocity()[i] = vec.Float4{0, 0, 0, 1}
	}
	return stage
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(f Frame) {
	m.count++
	m.sum += float64(f.Step)
}
func (m *testMetric) Value() float64 { return float64(m.count) }
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorRun(t *testing.T) {
	stage := newTestStage(t, 64, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 0.1})
	s := New(stage)

	result, err := s.Run(context.Background(), Config{Steps: 10, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if math.Abs(result.Time-0.1) > 1e-6 {
		t.Errorf("expected t=0.1, got %v", result.Time)
	}
}

func TestSimulatorStepsFromDuration(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.25, Damping: 1, SofteningSqr: 1})
	s := New(stage)

	result, err := s.Run(context.Background(), Config{Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 4 {
		t.Errorf("expected 4 steps, got %d", result.StepsTaken)
	}
}

func TestSimulatorStepsFromInexactDuration(t *testing.T) {
	tests := []struct {
		dt       float32
		duration float64
		want     int
	}{
		{0.016, 1.6, 100},
		{0.016, 0.16, 10},
		{0.1, 0.3, 3},
		{0.25, 1.0, 4},
	}

	for _, tt := range tests {
		if got := StepsFor(tt.duration, tt.dt); got != tt.want {
			t.Errorf("StepsFor(%v, %v) = %d, want %d", tt.duration, tt.dt, got, tt.want)
		}

		stage := newTestStage(t, 32, prefs.Prefs{Timestep: tt.dt, Damping: 1, SofteningSqr: 1})
		result, err := New(stage).Run(context.Background(), Config{Duration: tt.duration})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if result.StepsTaken != tt.want {
			t.Errorf("dt=%v duration=%v: expected %d steps, got %d", tt.dt, tt.duration, tt.want, result.StepsTaken)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})
	s := New(stage)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no steps or duration", Config{}},
		{"negative steps", Config{Steps: -1}},
		{"negative duration", Config{Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorRejectsInvalidPrefs(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})
	stage.SetPrefs(prefs.Prefs{Timestep: -1, Damping: 1, SofteningSqr: 1})

	_, err := New(stage).Run(context.Background(), Config{Steps: 1})
	if !errors.Is(err, prefs.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestSimulatorNotStaged(t *testing.T) {
	stage := compute.NewStage(compute.NewCPUBackend())
	_, err := New(stage).Run(context.Background(), Config{Steps: 1})
	if !errors.Is(err, compute.ErrNotStaged) {
		t.Errorf("expected ErrNotStaged, got %v", err)
	}
}

func TestSimulatorMetricsAndHistory(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})
	s := New(stage)
	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), Config{Steps: 20, SampleEvery: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// initial frame plus one per step
	if result.Metrics["test"] != 21 {
		t.Errorf("expected 21 observations, got %v", result.Metrics["test"])
	}
	if len(result.History) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(result.History))
	}
	if result.History[4].Step != 20 {
		t.Errorf("last sample at step %d, want 20", result.History[4].Step)
	}
}

func TestSimulatorObserver(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})
	s := New(stage)

	var last Frame
	s.AddObserver(ObserverFunc(func(f Frame) { last = f }))

	if _, err := s.Run(context.Background(), Config{Steps: 3}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if last.Step != 3 || len(last.Position) != 32 {
		t.Errorf("unexpected last frame step=%d n=%d", last.Step, len(last.Position))
	}
	if &last.Position[0] != &stage.Position()[0] {
		t.Error("observer did not see the read side of the stage")
	}
}

func TestSimulatorCanceled(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})
	s := New(stage)

	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	s.AddObserver(ObserverFunc(func(f Frame) {
		steps = f.Step
		if f.Step == 2 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, Config{Steps: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 2 || steps != 2 {
		t.Errorf("expected partial result after 2 steps, got %+v", result)
	}
}

func TestSimulatorDetectsInvalidState(t *testing.T) {
	stage := newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})
	stage.Velocity()[5] = vec.Float4{float32(math.Inf(1)), 0, 0, 1}

	result, err := New(stage).Run(context.Background(), Config{Steps: 10, ValidateState: true})

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidState) || simErr.Step != 1 {
		t.Errorf("unexpected error %v", err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected 1 step, got %d", result.StepsTaken)
	}
}

func TestEnsemble(t *testing.T) {
	var built atomic.Int32
	build := func(seed int64) (*Simulator, error) {
		built.Add(1)
		return New(newTestStage(t, 32, prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 1})), nil
	}

	e := NewEnsemble(build, 3, 100)
	e.SetLimit(2)
	results, err := e.Run(context.Background(), Config{Steps: 5})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 || built.Load() != 3 {
		t.Fatalf("expected 3 results, got %d (built %d)", len(results), built.Load())
	}
	for i, r := range results {
		if r.StepsTaken != 5 {
			t.Errorf("member %d took %d steps", i, r.StepsTaken)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEnsemble(func(seed int64) (*Simulator, error) { return nil, boom }, 2, 0)

	if _, err := e.Run(context.Background(), Config{Steps: 1}); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
