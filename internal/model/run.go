package model

import "time"

// ReconciliationRun is the audit record of one completed reconcile call: the
// input files, when it ran, and its summary. Match results are stored
// alongside it but owned by the run.
type ReconciliationRun struct {
	ID          string
	SourceFile  string
	TargetFile  string
	StartedAt   time.Time
	CompletedAt time.Time
	Summary     ReconciliationSummary
}
