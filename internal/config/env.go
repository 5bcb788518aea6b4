package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file and preset values.
const (
	EnvParticles  = "NBODY_PARTICLES"
	EnvBackend    = "NBODY_BACKEND"
	EnvMultiplier = "NBODY_MULTIPLIER"
	EnvSteps      = "NBODY_STEPS"
	EnvSeed       = "NBODY_SEED"
	EnvLogLevel   = "NBODY_LOG_LEVEL"
	EnvLogJSON    = "NBODY_LOG_JSON"
)

// LoadDotenv loads the given .env files into the process environment.
// Missing files are not an error.
func LoadDotenv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "component", "config", "error", err)
	}
}

// ApplyEnv overrides c with any NBODY_* variables that are set.
func (c *Config) ApplyEnv() {
	if n, ok := envInt(EnvParticles); ok {
		c.Globals.SetParticles(n)
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if n, ok := envInt(EnvMultiplier); ok && n > 0 {
		c.Multiplier = n
	}
	if n, ok := envInt(EnvSteps); ok && n > 0 {
		c.Steps = n
	}
	if v := os.Getenv(EnvSeed); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = seed
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		c.Logging.JSON = v == "true" || v == "1"
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring malformed environment value", "component", "config", "key", key, "value", v)
		return 0, false
	}
	return n, true
}
