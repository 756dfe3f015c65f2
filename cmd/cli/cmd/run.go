package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benchkit/internal/report"
	"github.com/benchkit/internal/repository"
	"github.com/benchkit/internal/runner"
	"github.com/benchkit/internal/storage"
	"github.com/benchkit/pkg/model"
	"github.com/benchkit/pkg/telemetry"
)

var (
	runName       string
	runIterations int
	runWarmup     int
	runNoSave     bool
	runNoUpload   bool
)

// runCmd measures a shell command.
var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Measure a shell command over repeated iterations",
	Long: `Run executes the given command warmup+iterations times and measures the
elapsed time and memory delta of every measured iteration on a nested
measurement stack. The report is printed, written as JSON, and optionally
persisted, uploaded and exported as traces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBenchmark,
}

func init() {
	runCmd.Flags().StringVar(&runName, "name", "", "Benchmark name (defaults to the command's first word)")
	runCmd.Flags().IntVarP(&runIterations, "iterations", "n", 0, "Number of measured iterations (overrides config)")
	runCmd.Flags().IntVar(&runWarmup, "warmup", -1, "Number of unmeasured warmup iterations (overrides config)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Skip persisting the run to the database")
	runCmd.Flags().BoolVar(&runNoUpload, "no-upload", false, "Skip uploading the report to object storage")

	rootCmd.AddCommand(runCmd)
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	command := strings.Join(args, " ")

	name := runName
	if name == "" {
		name = filepath.Base(args[0])
	}

	iterations := runIterations
	if iterations <= 0 {
		iterations = cfg.Benchmark.Iterations
	}
	warmup := runWarmup
	if warmup < 0 {
		warmup = cfg.Benchmark.Warmup
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			log.Warn("Received signal %v, cancelling run...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		log.Warn("Telemetry init failed: %v", err)
	} else {
		defer shutdown(context.Background())
	}

	log.Info("Benchmarking %q (%d iterations, %d warmup)", command, iterations, warmup)

	r := runner.New(runner.WithLogger(log))
	run, runErr := r.Run(ctx, name, command, iterations, warmup)
	if run == nil {
		return runErr
	}

	formatter := report.NewFormatter()
	formatter.Format(run, log)

	if err := cfg.EnsureOutputDir(); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	reportPath, err := formatter.WriteJSON(run, cfg.Report.OutputDir)
	if err != nil {
		return err
	}
	log.Info("Report written to %s", reportPath)

	if cfg.Database.Enabled && !runNoSave {
		if err := saveRun(ctx, run); err != nil {
			log.Error("Failed to persist run: %v", err)
		} else {
			log.Info("Run %s saved to %s database", run.RunUUID, cfg.Database.Type)
		}
	}

	if !runNoUpload && cfg.Storage.Type != "" {
		if err := uploadReport(ctx, run, reportPath); err != nil {
			log.Error("Failed to upload report: %v", err)
		}
	}

	if telemetry.Enabled() {
		replay := report.NewTraceReplay(nil)
		if err := replay.Replay(ctx, run); err != nil {
			log.Warn("Trace export failed: %v", err)
		}
	}

	return runErr
}

func saveRun(ctx context.Context, run *model.Run) error {
	db, err := repository.NewGormDB(&cfg.Database)
	if err != nil {
		return err
	}
	repos := repository.NewRepositories(db, cfg.Database.Type)
	defer repos.Close()

	return repos.Run.SaveRun(ctx, run)
}

func uploadReport(ctx context.Context, run *model.Run, reportPath string) error {
	store, err := storage.NewStore(&cfg.Storage)
	if err != nil {
		return err
	}

	key := storage.RunKey(run.RunUUID, filepath.Base(reportPath))
	if err := store.PutFile(ctx, key, reportPath); err != nil {
		return err
	}
	GetLogger().Info("Report uploaded to %s", store.URL(key))
	return nil
}
