// Package engine implements the staged reconciliation engine that pairs
// transactions from two independently sourced lists.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/muudzo/tally/internal/common"
	"github.com/muudzo/tally/internal/matcher"
	"github.com/muudzo/tally/internal/model"
)

// Config holds the engine thresholds.
type Config struct {
	// ConfidenceThreshold is the minimum composite score for an automatic match.
	ConfidenceThreshold float64
	// ManualReviewThreshold is the minimum composite score to surface a
	// candidate pairing to a human at all.
	ManualReviewThreshold float64
	// OnProgress, when set, is called after each source is processed in the
	// fuzzy stage. Used by the CLI for progress feedback.
	OnProgress func(done, total int)
}

// DefaultConfig returns the default engine thresholds.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold:   0.85,
		ManualReviewThreshold: 0.50,
	}
}

// Engine orchestrates staged matching over two full transaction sets.
//
// Stage 1 pairs transactions by exact reference in O(n); the remaining
// records go through a greedy fuzzy scan that scores every surviving
// source/target pair. Matching is deterministic: sources are processed in
// input order and ties go to the first-encountered candidate.
type Engine struct {
	scorer *matcher.Scorer
	config Config
}

// New creates an engine with default thresholds.
func New(scorer *matcher.Scorer) (*Engine, error) {
	return NewWithConfig(scorer, DefaultConfig())
}

// NewWithConfig creates an engine with custom thresholds. Construction fails
// fast on thresholds outside [0,1] or a manual-review threshold above the
// confidence threshold; a bad configuration is never silently defaulted.
func NewWithConfig(scorer *matcher.Scorer, config Config) (*Engine, error) {
	if config.ConfidenceThreshold < 0 || config.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("%w: confidence threshold %v outside [0,1]",
			common.ErrInvalidConfig, config.ConfidenceThreshold)
	}
	if config.ManualReviewThreshold < 0 || config.ManualReviewThreshold > 1 {
		return nil, fmt.Errorf("%w: manual review threshold %v outside [0,1]",
			common.ErrInvalidConfig, config.ManualReviewThreshold)
	}
	if config.ManualReviewThreshold > config.ConfidenceThreshold {
		return nil, fmt.Errorf("%w: manual review threshold %v above confidence threshold %v",
			common.ErrInvalidConfig, config.ManualReviewThreshold, config.ConfidenceThreshold)
	}

	return &Engine{
		scorer: scorer,
		config: config,
	}, nil
}

// Reconcile runs full reconciliation between source and target transactions
// and returns the match results plus an aggregate summary. Each call is
// self-contained; the engine keeps no state between runs.
//
// Cancellation is coarse-grained: the context is checked between whole-source
// iterations, never mid-scan.
func (e *Engine) Reconcile(ctx context.Context, sources, targets []model.NormalizedTransaction) ([]model.MatchResult, model.ReconciliationSummary, error) {
	slog.Info("Starting reconciliation",
		"sources", len(sources),
		"targets", len(targets))

	matchedSources := make(map[string]bool)
	matchedTargets := make(map[string]bool)

	results, err := e.exactReferenceStage(ctx, sources, targets, matchedSources, matchedTargets)
	if err != nil {
		return nil, model.ReconciliationSummary{}, err
	}

	remainingSources := unmatched(sources, matchedSources)
	remainingTargets := unmatched(targets, matchedTargets)

	fuzzyResults, err := e.fuzzyStage(ctx, remainingSources, remainingTargets, matchedSources, matchedTargets)
	if err != nil {
		return nil, model.ReconciliationSummary{}, err
	}
	results = append(results, fuzzyResults...)

	summary := buildSummary(sources, targets, matchedSources, matchedTargets, results)

	slog.Info("Reconciliation complete",
		"matched", summary.MatchedCount,
		"manual_review", summary.ManualReviewCount,
		"match_rate", summary.MatchRate)

	return results, summary, nil
}

// exactReferenceStage pairs sources and targets whose cleaned references are
// identical, gated on a near-exact amount. Accepted pairs are removed from
// further consideration on both sides.
func (e *Engine) exactReferenceStage(ctx context.Context, sources, targets []model.NormalizedTransaction, matchedSources, matchedTargets map[string]bool) ([]model.MatchResult, error) {
	// First target wins a reference; later duplicates are skipped, not errors.
	targetByRef := make(map[string]model.NormalizedTransaction, len(targets))
	for _, t := range targets {
		if t.Reference == "" {
			continue
		}
		ref := strings.ToUpper(t.Reference)
		if _, dup := targetByRef[ref]; dup {
			slog.Warn("Duplicate target reference, keeping first occurrence",
				"reference", ref,
				"target_id", t.ID)
			continue
		}
		targetByRef[ref] = t
	}

	var results []model.MatchResult
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if source.Reference == "" {
			continue
		}

		target, ok := targetByRef[strings.ToUpper(source.Reference)]
		if !ok || matchedTargets[target.ID] {
			continue
		}

		// The reference agrees, but the amount still has to back it up.
		score := e.scorer.Score(source, target)
		if score.AmountScore < 0.95 {
			continue
		}

		results = append(results, model.MatchResult{
			Source:    source,
			Target:    target,
			Score:     score,
			Status:    model.StatusMatched,
			MatchedBy: model.MatchedByExactReference,
		})
		matchedSources[source.ID] = true
		matchedTargets[target.ID] = true
		delete(targetByRef, strings.ToUpper(source.Reference))
	}

	slog.Info("Exact reference stage complete", "matches", len(results))
	return results, nil
}

// fuzzyStage greedily assigns each remaining source its best-scoring target.
// A confident match consumes the target; a manual-review suggestion does not,
// so one target may be suggested to several sources and a human resolves the
// conflict. Sources whose best candidate misses the manual-review threshold
// produce no result and surface only through the summary counts.
func (e *Engine) fuzzyStage(ctx context.Context, sources, targets []model.NormalizedTransaction, matchedSources, matchedTargets map[string]bool) ([]model.MatchResult, error) {
	var results []model.MatchResult
	consumed := make(map[string]bool)

	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var best *model.MatchResult
		bestScore := 0.0

		for _, target := range targets {
			if consumed[target.ID] {
				continue
			}

			score := e.scorer.Score(source, target)
			total := score.Total()

			// Strict greater-than keeps the first-encountered candidate on ties.
			if total > bestScore && total >= e.config.ManualReviewThreshold {
				bestScore = total
				best = &model.MatchResult{
					Source:    source,
					Target:    target,
					Score:     score,
					MatchedBy: model.MatchedByFuzzy,
				}
			}
		}

		if best != nil {
			if bestScore >= e.config.ConfidenceThreshold {
				best.Status = model.StatusMatched
				matchedSources[source.ID] = true
				matchedTargets[best.Target.ID] = true
				consumed[best.Target.ID] = true
			} else {
				best.Status = model.StatusManualReview
			}
			results = append(results, *best)
		}

		if e.config.OnProgress != nil {
			e.config.OnProgress(i+1, len(sources))
		}
	}

	slog.Info("Fuzzy stage complete", "candidates", len(results))
	return results, nil
}

// buildSummary computes the aggregate statistics once from the final match set.
func buildSummary(sources, targets []model.NormalizedTransaction, matchedSources, matchedTargets map[string]bool, results []model.MatchResult) model.ReconciliationSummary {
	matchedAmount := decimal.Zero
	unmatchedAmount := decimal.Zero
	for _, s := range sources {
		if matchedSources[s.ID] {
			matchedAmount = matchedAmount.Add(s.Amount)
		} else {
			unmatchedAmount = unmatchedAmount.Add(s.Amount)
		}
	}

	reviewCount := 0
	for _, r := range results {
		if r.Status == model.StatusManualReview {
			reviewCount++
		}
	}

	matchRate := 0.0
	if len(sources) > 0 {
		matchRate = float64(len(matchedSources)) / float64(len(sources))
	}

	return model.ReconciliationSummary{
		TotalSourceTransactions: len(sources),
		TotalTargetTransactions: len(targets),
		MatchedCount:            len(matchedSources),
		UnmatchedSourceCount:    len(sources) - len(matchedSources),
		UnmatchedTargetCount:    len(targets) - len(matchedTargets),
		ManualReviewCount:       reviewCount,
		MatchRate:               matchRate,
		TotalMatchedAmount:      matchedAmount,
		TotalUnmatchedAmount:    unmatchedAmount,
	}
}

// unmatched filters transactions whose IDs are not yet in the matched set,
// preserving order.
func unmatched(txns []model.NormalizedTransaction, matched map[string]bool) []model.NormalizedTransaction {
	remaining := make([]model.NormalizedTransaction, 0, len(txns))
	for _, t := range txns {
		if !matched[t.ID] {
			remaining = append(remaining, t)
		}
	}
	return remaining
}
