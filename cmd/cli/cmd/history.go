package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchkit/internal/report"
	"github.com/benchkit/internal/repository"
)

var (
	historyName  string
	historyLimit int
)

// historyCmd lists or shows stored runs.
var historyCmd = &cobra.Command{
	Use:   "history [run-uuid]",
	Short: "List stored benchmark runs, or show one run in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled {
			return fmt.Errorf("database is disabled; enable it in the configuration to use history")
		}

		db, err := repository.NewGormDB(&cfg.Database)
		if err != nil {
			return err
		}
		repos := repository.NewRepositories(db, cfg.Database.Type)
		defer repos.Close()

		if len(args) == 1 {
			return showRun(cmd, repos, args[0])
		}
		return listRuns(cmd, repos)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyName, "name", "", "Only list runs with this benchmark name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")

	rootCmd.AddCommand(historyCmd)
}

func listRuns(cmd *cobra.Command, repos *repository.Repositories) error {
	runs, err := repos.Run.ListRuns(cmd.Context(), historyName, historyLimit)
	if err != nil {
		return err
	}

	log := GetLogger()
	if len(runs) == 0 {
		log.Info("No stored runs")
		return nil
	}

	log.Info("%-28s %-20s %-10s %-5s %s", "RUN UUID", "NAME", "STATUS", "N", "CREATED")
	for _, run := range runs {
		log.Info("%-28s %-20s %-10s %-5d %s",
			run.RunUUID, run.Name, run.Status.String(), run.Iterations,
			run.CreateTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showRun(cmd *cobra.Command, repos *repository.Repositories, runUUID string) error {
	run, err := repos.Run.GetRunByUUID(cmd.Context(), runUUID)
	if err != nil {
		return err
	}

	report.NewFormatter().Format(run, GetLogger())
	return nil
}
