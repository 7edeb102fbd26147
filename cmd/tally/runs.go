package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/muudzo/tally/internal/common"
	"github.com/muudzo/tally/internal/model"
	"github.com/muudzo/tally/internal/report"
	"github.com/muudzo/tally/internal/storage"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect reconciliation run history",
		RunE:  runListRuns,
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to list")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one stored run with its match results",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowRun,
	}
	cmd.AddCommand(show)

	return cmd
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-20s  %-20s  %8s  %6s\n",
		"ID", "STARTED", "SOURCE", "TARGET", "MATCHED", "RATE")
	for _, run := range runs {
		fmt.Printf("%-36s  %-19s  %-20s  %-20s  %8d  %5.1f%%\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			truncateName(run.SourceFile, 20),
			truncateName(run.TargetFile, 20),
			run.Summary.MatchedCount,
			run.Summary.MatchRate*100)
	}

	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	store, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, results, err := store.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s -> %s)\n\n", run.ID, run.SourceFile, run.TargetFile)
	fmt.Println(report.RenderSummary(run.Summary))

	if len(results) > 0 {
		gen := report.NewGenerator()
		if err := gen.WriteResults(os.Stdout, results); err != nil {
			return err
		}
	}

	return nil
}

func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	path := viper.GetString("storage.path")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: storage.path is not set and the home directory is unavailable: %v",
				common.ErrMissingConfig, err)
		}
		path = filepath.Join(home, ".local", "share", "tally", "tally.db")
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not open run history at %s", path), err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func saveRun(ctx context.Context, run *model.ReconciliationRun, results []model.MatchResult) error {
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return store.SaveRun(ctx, run, results)
}

func truncateName(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}
