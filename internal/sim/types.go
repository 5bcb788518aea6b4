package sim

import (
	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/vec"
)

// Frame is the read side of the stage after a step.
type Frame struct {
	Step     int
	Time     float64
	Prefs    prefs.Prefs
	Position []vec.Float4
	Velocity []vec.Float4
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

type Config struct {
	// Steps to run. When zero, Duration/timestep steps are run.
	Steps    int
	Duration float64
	Seed     int64
	// SampleEvery records metric values every n steps; zero disables history.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         300,
		SampleEvery:   10,
		ValidateState: true,
	}
}

type Sample struct {
	Step    int                `json:"step"`
	Time    float64            `json:"time"`
	Metrics map[string]float64 `json:"metrics"`
}

type Result struct {
	StepsTaken int
	Time       float64
	Metrics    map[string]float64
	History    []Sample
}
