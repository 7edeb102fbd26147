// Package report renders reconciliation output for humans and exports it for
// spreadsheets. It only ever reads the engine's results; it never mutates them.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/muudzo/tally/internal/model"
)

// Generator writes reconciliation reports.
type Generator struct {
	generatedAt time.Time
}

// NewGenerator creates a report generator stamped with the current time.
func NewGenerator() *Generator {
	return &Generator{generatedAt: time.Now()}
}

var matchHeader = []string{
	"Source Date", "Source Amount", "Source Reference", "Source Description",
	"Target Date", "Target Amount", "Target Reference", "Target Description",
	"Confidence", "Status", "Matched By",
}

// WriteResults writes match results as CSV.
func (g *Generator) WriteResults(w io.Writer, results []model.MatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(matchHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.Source.TransactionDate.Format("2006-01-02"),
			r.Source.Amount.String(),
			r.Source.Reference,
			truncate(r.Source.Description, 50),
			r.Target.TransactionDate.Format("2006-01-02"),
			r.Target.Amount.String(),
			r.Target.Reference,
			truncate(r.Target.Description, 50),
			fmt.Sprintf("%.0f%%", r.Score.Total()*100),
			string(r.Status),
			r.MatchedBy,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the run summary as a metric/value CSV.
func (g *Generator) WriteSummary(w io.Writer, summary model.ReconciliationSummary) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Metric", "Value"},
		{"Total Source Transactions", fmt.Sprintf("%d", summary.TotalSourceTransactions)},
		{"Total Target Transactions", fmt.Sprintf("%d", summary.TotalTargetTransactions)},
		{"Matched Count", fmt.Sprintf("%d", summary.MatchedCount)},
		{"Unmatched Source Count", fmt.Sprintf("%d", summary.UnmatchedSourceCount)},
		{"Unmatched Target Count", fmt.Sprintf("%d", summary.UnmatchedTargetCount)},
		{"Manual Review Count", fmt.Sprintf("%d", summary.ManualReviewCount)},
		{"Match Rate", fmt.Sprintf("%.1f%%", summary.MatchRate*100)},
		{"Total Matched Amount", summary.TotalMatchedAmount.StringFixed(2)},
		{"Total Unmatched Amount", summary.TotalUnmatchedAmount.StringFixed(2)},
		{"Report Generated", g.generatedAt.Format("2006-01-02 15:04:05")},
	}

	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export writes one CSV per match status plus the summary into dir. Statuses
// with no results produce no file.
func (g *Generator) Export(dir string, results []model.MatchResult, summary model.ReconciliationSummary) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	byStatus := make(map[model.MatchStatus][]model.MatchResult)
	for _, r := range results {
		byStatus[r.Status] = append(byStatus[r.Status], r)
	}

	files := []struct {
		status model.MatchStatus
		name   string
	}{
		{model.StatusMatched, "matched.csv"},
		{model.StatusManualReview, "manual_review.csv"},
		{model.StatusPartial, "partial.csv"},
	}
	for _, f := range files {
		group := byStatus[f.status]
		if len(group) == 0 {
			continue
		}
		if err := g.writeFile(filepath.Join(dir, f.name), func(w io.Writer) error {
			return g.WriteResults(w, group)
		}); err != nil {
			return err
		}
	}

	return g.writeFile(filepath.Join(dir, "summary.csv"), func(w io.Writer) error {
		return g.WriteSummary(w, summary)
	})
}

func (g *Generator) writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
