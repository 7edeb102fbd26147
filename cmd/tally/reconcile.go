package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/muudzo/tally/internal/common"
	"github.com/muudzo/tally/internal/engine"
	"github.com/muudzo/tally/internal/matcher"
	"github.com/muudzo/tally/internal/model"
	"github.com/muudzo/tally/internal/normalize"
	"github.com/muudzo/tally/internal/parser"
	"github.com/muudzo/tally/internal/report"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <source-file> <target-file>",
		Short: "Reconcile two transaction files",
		Long: `Reconcile pairs the transactions in two files. Formats are auto-detected
(bank CSV, OFX/QFX, ZIPIT, Ecocash) unless overridden.

Examples:
  # Reconcile a bank statement against an Ecocash export
  tally reconcile statement.csv ecocash_export.csv

  # Force formats and export CSV reports
  tally reconcile --source-format ofx --target-format zipit stmt.qfx zipit.txt --export ./reports`,
		Args: cobra.ExactArgs(2),
		RunE: runReconcile,
	}

	cmd.Flags().String("source-format", "", "source file format (bank, ofx, zipit, ecocash; default: auto-detect)")
	cmd.Flags().String("target-format", "", "target file format (default: auto-detect)")
	cmd.Flags().Float64("confidence-threshold", 0, "minimum score for an automatic match (default from config)")
	cmd.Flags().Float64("review-threshold", 0, "minimum score to suggest a manual review (default from config)")
	cmd.Flags().String("export", "", "directory to export CSV reports into")
	cmd.Flags().BoolP("dry-run", "d", false, "skip saving the run to history")

	_ = viper.BindPFlag("reconcile.confidence_threshold", cmd.Flags().Lookup("confidence-threshold"))
	_ = viper.BindPFlag("reconcile.manual_review_threshold", cmd.Flags().Lookup("review-threshold"))

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sourcePath, targetPath := args[0], args[1]

	sourceFormat, _ := cmd.Flags().GetString("source-format")
	targetFormat, _ := cmd.Flags().GetString("target-format")
	exportDir, _ := cmd.Flags().GetString("export")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	startedAt := time.Now()

	sources, err := loadTransactions(sourcePath, sourceFormat)
	if err != nil {
		return err
	}
	targets, err := loadTransactions(targetPath, targetFormat)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return common.NewUserError(fmt.Sprintf("no usable transactions in %s", sourcePath), nil)
	}

	scorer := matcher.NewScorerWithConfig(matcherConfig())

	// The bar tracks the fuzzy stage, whose size is only known after the
	// exact-reference stage has consumed its matches, so the total comes
	// from the progress callback.
	bar := progressbar.NewOptions(0,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Matching transactions..."),
	)

	eng, err := engine.NewWithConfig(scorer, engine.Config{
		ConfidenceThreshold:   viper.GetFloat64("reconcile.confidence_threshold"),
		ManualReviewThreshold: viper.GetFloat64("reconcile.manual_review_threshold"),
		OnProgress: func(done, total int) {
			if bar.GetMax() != total {
				bar.ChangeMax(total)
			}
			_ = bar.Set(done)
		},
	})
	if err != nil {
		return err
	}

	results, summary, err := eng.Reconcile(ctx, sources, targets)
	if err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	fmt.Println(report.RenderSummary(summary))

	gen := report.NewGenerator()
	if exportDir != "" {
		if err := gen.Export(exportDir, results, summary); err != nil {
			return fmt.Errorf("failed to export reports: %w", err)
		}
		fmt.Printf("Reports written to %s\n", exportDir)
	}

	if !dryRun {
		run := &model.ReconciliationRun{
			ID:          uuid.NewString(),
			SourceFile:  filepath.Base(sourcePath),
			TargetFile:  filepath.Base(targetPath),
			StartedAt:   startedAt,
			CompletedAt: time.Now(),
			Summary:     summary,
		}
		if err := saveRun(ctx, run, results); err != nil {
			// History is best-effort; the reconciliation itself succeeded.
			slog.Warn("Failed to save run history", "error", err)
		} else {
			fmt.Printf("Run saved as %s\n", run.ID)
		}
	}

	return nil
}

// loadTransactions parses a file (auto-detecting the format unless one is
// forced), then normalizes and validates the rows.
func loadTransactions(path, format string) ([]model.NormalizedTransaction, error) {
	var (
		p   parser.Parser
		err error
	)
	if format != "" {
		p, err = parser.ByType(format)
	} else {
		p, err = parser.ForFile(path)
	}
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not detect the format of %s", path), err)
	}

	rows, err := p.Parse(path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not read %s as %s", path, p.Name()), err)
	}

	pipeline := normalize.NewPipeline(sourceForParser(p.Name()))
	normalized := pipeline.Process(rows)

	validator := normalize.NewValidator()
	valid, invalid := validator.ValidateBatch(normalized)
	if len(invalid) > 0 {
		rep := validator.Report()
		slog.Warn("Excluded invalid transactions",
			"file", filepath.Base(path),
			"count", len(invalid),
			"errors", rep.TotalErrors)
	}

	return valid, nil
}

func sourceForParser(name string) model.Source {
	switch name {
	case "ecocash":
		return model.SourceEcocash
	case "zipit":
		return model.SourceZipit
	default:
		return model.SourceBankStatement
	}
}

func matcherConfig() matcher.Config {
	cfg := matcher.DefaultConfig()
	cfg.AmountPercentageTolerance = viper.GetFloat64("matcher.amount_percentage_tolerance")
	cfg.DateWindowDays = viper.GetInt("matcher.date_window_days")
	cfg.TextThreshold = viper.GetFloat64("matcher.text_threshold")
	if abs, err := decimal.NewFromString(viper.GetString("matcher.amount_absolute_tolerance")); err == nil {
		cfg.AmountAbsoluteTolerance = abs
	}
	return cfg
}
