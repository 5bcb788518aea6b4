package config

import "sort"

// DefaultParameters is the built-in list of simulation types.
var DefaultParameters = []Parameters{
	{Name: "random", Config: ConfigRandom, Timestep: 0.016, ClusterScale: 1.54, VelocityScale: 8.0, Softening: 0.1, Damping: 1.0, PointSize: 1.0},
	{Name: "shell", Config: ConfigShell, Timestep: 0.016, ClusterScale: 0.68, VelocityScale: 20.0, Softening: 0.1, Damping: 1.0, PointSize: 0.8},
	{Name: "collision", Config: ConfigShell, Timestep: 0.0006, ClusterScale: 0.16, VelocityScale: 1000.0, Softening: 1.0, Damping: 1.0, PointSize: 0.07},
	{Name: "disk", Config: ConfigShell, Timestep: 0.0019, ClusterScale: 0.32, VelocityScale: 276.0, Softening: 1.0, Damping: 1.0, PointSize: 0.07},
	{Name: "spiral", Config: ConfigShell, Timestep: 0.0016, ClusterScale: 0.32, VelocityScale: 272.0, Softening: 0.145, Damping: 1.0, PointSize: 0.08},
	{Name: "expand", Config: ConfigExpand, Timestep: 0.016, ClusterScale: 6.04, VelocityScale: 0.0, Softening: 1.0, Damping: 1.0, PointSize: 0.76},
}

var Presets = map[string]*Config{
	"small": {
		Globals:    Globals{Particles: 2048, TexRes: 64, Channels: 4},
		Parameters: DefaultParameters,
		Selected:   1,
		Steps:      200,
	},
	"default": {
		Globals:    Globals{Particles: 8192, TexRes: 64, Channels: 4},
		Parameters: DefaultParameters,
		Selected:   0,
		Steps:      300,
	},
	"large": {
		Globals:    Globals{Particles: 32768, TexRes: 64, Channels: 4},
		Parameters: DefaultParameters,
		Selected:   3,
		Steps:      500,
	},
	"galaxy": {
		Globals:    Globals{Particles: 16384, TexRes: 64, Channels: 4},
		Parameters: DefaultParameters,
		Selected:   4,
		Steps:      1000,
	},
}

// GetPreset returns a copy of the named preset with defaults filled in, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Globals = p.Globals
	cfg.Parameters = append([]Parameters(nil), p.Parameters...)
	cfg.Selected = p.Selected
	cfg.Steps = p.Steps
	cfg.normalize()
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
