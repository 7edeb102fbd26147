package report

import (
	"fmt"
	"strings"

	"github.com/muudzo/tally/internal/cli"
	"github.com/muudzo/tally/internal/model"
)

// RenderSummary formats a run summary for the terminal.
func RenderSummary(summary model.ReconciliationSummary) string {
	var b strings.Builder

	b.WriteString(cli.TitleStyle.Render("Reconciliation Summary"))
	b.WriteString("\n")

	line := func(label string, value string) {
		b.WriteString(fmt.Sprintf("  %-28s %s\n", label, value))
	}

	line("Source transactions:", fmt.Sprintf("%d", summary.TotalSourceTransactions))
	line("Target transactions:", fmt.Sprintf("%d", summary.TotalTargetTransactions))
	line("Matched:", cli.SuccessStyle.Render(fmt.Sprintf("%d", summary.MatchedCount)))
	line("Manual review:", cli.WarningStyle.Render(fmt.Sprintf("%d", summary.ManualReviewCount)))
	line("Unmatched sources:", renderUnmatched(summary.UnmatchedSourceCount))
	line("Unmatched targets:", renderUnmatched(summary.UnmatchedTargetCount))
	line("Match rate:", cli.BoldStyle.Render(fmt.Sprintf("%.1f%%", summary.MatchRate*100)))
	line("Matched amount:", summary.TotalMatchedAmount.StringFixed(2))
	line("Unmatched amount:", summary.TotalUnmatchedAmount.StringFixed(2))

	return b.String()
}

func renderUnmatched(count int) string {
	s := fmt.Sprintf("%d", count)
	if count > 0 {
		return cli.ErrorStyle.Render(s)
	}
	return cli.SubtleStyle.Render(s)
}
