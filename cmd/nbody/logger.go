package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/config"
)

// initLogger installs the default slog handler. Flags win over NBODY_LOG_*.
// Logs go to stderr so command output on stdout stays clean.
func initLogger(cmd *cobra.Command) error {
	lc := config.LoggingConfig{Level: logLevel, JSON: logJSON}

	env := &config.Config{Logging: lc}
	env.ApplyEnv()
	if !cmd.Flags().Changed("log-level") {
		lc.Level = env.Logging.Level
	}
	if !cmd.Flags().Changed("log-json") {
		lc.JSON = env.Logging.JSON
	}

	opts := &slog.HandlerOptions{Level: parseLogLevel(lc.Level)}

	var handler slog.Handler
	if lc.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Debug("logger initialized",
		"component", "logger",
		"level", lc.Level,
		"json_format", lc.JSON,
	)
	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
