package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/nbody/internal/compute"
)

type Simulator struct {
	stage     *compute.Stage
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New wraps an acquired stage.
func New(stage *compute.Stage) *Simulator {
	return &Simulator{
		stage:     stage,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default().With("component", "sim"),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Stage() *compute.Stage  { return s.stage }

// Run advances the stage. On cancellation or an invalid state it returns the
// partial result together with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	steps, err := s.validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Metrics: make(map[string]float64),
		History: make([]Sample, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	dt := float64(s.stage.Prefs().Timestep)
	t := 0.0

	frame := s.frame(0, t)
	s.observe(frame)
	if cfg.SampleEvery > 0 {
		result.History = append(result.History, s.sample(frame))
	}

	s.logger.Debug("run started", "steps", steps, "dt", dt, "particles", s.stage.Particles())

	var runErr error
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if err := s.stage.Step(); err != nil {
			runErr = &SimulationError{Step: i, Time: t, Particle: -1, Wrapped: err}
			break
		}
		t += dt
		result.StepsTaken = i
		result.Time = t

		frame = s.frame(i, t)
		if cfg.ValidateState {
			if p := firstInvalid(frame); p >= 0 {
				runErr = &SimulationError{Step: i, Time: t, Particle: p, Wrapped: ErrInvalidState}
				break
			}
		}

		s.observe(frame)
		if cfg.SampleEvery > 0 && i%cfg.SampleEvery == 0 {
			result.History = append(result.History, s.sample(frame))
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		s.logger.Warn("run stopped", "step", result.StepsTaken, "error", runErr)
	} else {
		s.logger.Debug("run finished", "steps", result.StepsTaken, "time", result.Time)
	}
	return result, runErr
}

func (s *Simulator) validateConfig(cfg Config) (int, error) {
	if !s.stage.IsStaged() {
		return 0, compute.ErrNotStaged
	}
	p := s.stage.Prefs()
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if cfg.Steps < 0 {
		return 0, fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Steps > 0 {
		return cfg.Steps, nil
	}
	if cfg.Duration <= 0 {
		return 0, fmt.Errorf("%w: need steps or a positive duration", ErrInvalidConfig)
	}
	return StepsFor(cfg.Duration, p.Timestep), nil
}

// StepsFor is the number of steps of size timestep that cover duration,
// rounded to the nearest step.
func StepsFor(duration float64, timestep float32) int {
	if timestep <= 0 || duration <= 0 {
		return 0
	}
	return int(math.Round(duration / float64(timestep)))
}

func (s *Simulator) frame(step int, t float64) Frame {
	return Frame{
		Step:     step,
		Time:     t,
		Prefs:    s.stage.Prefs(),
		Position: s.stage.Position(),
		Velocity: s.stage.Velocity(),
	}
}

func (s *Simulator) observe(f Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnStep(f)
	}
}

func (s *Simulator) sample(f Frame) Sample {
	values := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		values[m.Name()] = m.Value()
	}
	return Sample{Step: f.Step, Time: f.Time, Metrics: values}
}

func firstInvalid(f Frame) int {
	for i := range f.Position {
		if !f.Position[i].IsFinite() || !f.Velocity[i].IsFinite() {
			return i
		}
	}
	return -1
}
