package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchkit/pkg/config"
	"github.com/benchkit/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "benchkit",
	Short: "A command benchmarking tool",
	Long: `benchkit measures the wall-clock time and memory cost of shell commands
over repeated iterations using a nested measurement stack.

Results are reported as text and JSON, and can optionally be persisted to a
database, uploaded to object storage, and exported as OpenTelemetry traces.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	binName := BinName()
	rootCmd.Example = `  # Measure a command for 10 iterations
  ` + binName + ` run -n 10 -- sort large.txt

  # Name the benchmark and skip two warmup iterations
  ` + binName + ` run --name sort-bench --warmup 2 -- sort large.txt

  # List stored runs
  ` + binName + ` history

  # Show one stored run
  ` + binName + ` history run-1756123456-42`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
