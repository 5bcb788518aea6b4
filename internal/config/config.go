package config

import (
	"fmt"
	"os"

	"github.com/san-kum/nbody/internal/prefs"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBackend    = "auto"
	DefaultMultiplier = 1
	DefaultSteps      = 300
	DefaultLogLevel   = "info"
)

// Generator configurations for initial conditions.
const (
	ConfigRandom = "random"
	ConfigShell  = "shell"
	ConfigExpand = "expand"
)

type Config struct {
	Globals    Globals       `yaml:"globals"`
	Parameters []Parameters  `yaml:"parameters"`
	Selected   int           `yaml:"selected"`
	Backend    string        `yaml:"backend"`
	Multiplier int           `yaml:"multiplier"`
	Steps      int           `yaml:"steps"`
	Seed       int64         `yaml:"seed"`
	Logging    LoggingConfig `yaml:"logging"`
}

// Globals are shared by every simulation type.
type Globals struct {
	Particles int `yaml:"particles"`
	TexRes    int `yaml:"tex_res"`
	Channels  int `yaml:"channels"`
}

// Parameters describe one simulation type.
type Parameters struct {
	Name          string  `yaml:"name"`
	Config        string  `yaml:"config"`
	Timestep      float32 `yaml:"timestep"`
	ClusterScale  float32 `yaml:"cluster_scale"`
	VelocityScale float32 `yaml:"velocity_scale"`
	Softening     float32 `yaml:"softening"`
	Damping       float32 `yaml:"damping"`
	PointSize     float32 `yaml:"point_size"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func DefaultConfig() *Config {
	params := make([]Parameters, len(DefaultParameters))
	copy(params, DefaultParameters)
	return &Config{
		Globals: Globals{
			Particles: prefs.DefaultParticles,
			TexRes:    prefs.DefaultTexRes,
			Channels:  prefs.DefaultChannels,
		},
		Parameters: params,
		Backend:    DefaultBackend,
		Multiplier: DefaultMultiplier,
		Steps:      DefaultSteps,
		Logging:    LoggingConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// normalize applies the same fallbacks as the setters to values read from disk.
func (c *Config) normalize() {
	c.Globals.SetParticles(c.Globals.Particles)
	c.Globals.SetChannels(c.Globals.Channels)
	c.Globals.SetTexRes(c.Globals.TexRes)
	if c.Multiplier == 0 {
		c.Multiplier = DefaultMultiplier
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Steps <= 0 {
		c.Steps = DefaultSteps
	}
	if len(c.Parameters) == 0 {
		c.Parameters = append(c.Parameters, DefaultParameters...)
	}
	for i := range c.Parameters {
		if c.Parameters[i].PointSize <= 0 {
			c.Parameters[i].PointSize = prefs.DefaultPointSize
		}
	}
}

// SetParticles keeps n when it exceeds the minimum particle count and falls
// back to the default otherwise.
func (g *Globals) SetParticles(n int) {
	if n > prefs.MinParticles {
		g.Particles = n
		return
	}
	g.Particles = prefs.DefaultParticles
}

func (g *Globals) SetChannels(n int) {
	if n == 0 {
		n = prefs.DefaultChannels
	}
	g.Channels = n
}

func (g *Globals) SetTexRes(n int) {
	if n == 0 {
		n = prefs.DefaultTexRes
	}
	g.TexRes = n
}

// Select returns the parameters of simulation type i.
func (c *Config) Select(i int) (Parameters, error) {
	if i < 0 || i >= len(c.Parameters) {
		return Parameters{}, fmt.Errorf("simulation type %d out of range [0,%d)", i, len(c.Parameters))
	}
	return c.Parameters[i], nil
}

// Lookup returns the index of the simulation type with the given name.
func (c *Config) Lookup(name string) (int, bool) {
	for i, p := range c.Parameters {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Prefs combines the globals with simulation type i into the kernel record.
// The softening length is squared on the way in.
func (c *Config) Prefs(i int) (prefs.Prefs, error) {
	p, err := c.Select(i)
	if err != nil {
		return prefs.Prefs{}, err
	}
	return p.Prefs(c.Globals.Particles), nil
}

func (p Parameters) Prefs(particles int) prefs.Prefs {
	return prefs.FromSoftening(p.Timestep, p.Damping, p.Softening, uint32(particles))
}

// Generator returns the initial-condition configuration, defaulting to shell.
func (p Parameters) Generator() string {
	switch p.Config {
	case ConfigRandom, ConfigExpand:
		return p.Config
	default:
		return ConfigShell
	}
}
