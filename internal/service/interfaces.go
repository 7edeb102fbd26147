// Package service defines the interfaces between the application layers.
package service

import (
	"context"

	"github.com/muudzo/tally/internal/model"
)

// Storage is the contract for the run-history persistence layer. The matching
// core never reads from storage; runs are written after the fact for audit.
type Storage interface {
	SaveRun(ctx context.Context, run *model.ReconciliationRun, results []model.MatchResult) error
	ListRuns(ctx context.Context, limit int) ([]model.ReconciliationRun, error)
	GetRun(ctx context.Context, id string) (*model.ReconciliationRun, []model.MatchResult, error)
	Migrate(ctx context.Context) error
	Close() error
}
