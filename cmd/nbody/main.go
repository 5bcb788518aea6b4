package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/nbody/internal/config"
)

var (
	dataDir    string
	configFile string
	envFile    string
	logLevel   string
	logJSON    bool
)

// main registers the commands and runs the root command. Exit goes through
// atexit so compute backends are released on every path.
func main() {
	rootCmd := &cobra.Command{
		Use:           "nbody",
		Short:         "gravitational n-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotenv(dotenvFiles()...)
			return initLogger(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbody", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "dotenv file (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newListCmd(),
		newShowCmd(),
		newPlotCmd(),
		newExportCmd(),
		newAnalyzeCmd(),
		newSnapshotCmd(),
		newServeCmd(),
		newPresetsCmd(),
		newPrefsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func dotenvFiles() []string {
	if envFile != "" {
		return []string{envFile}
	}
	return nil
}
