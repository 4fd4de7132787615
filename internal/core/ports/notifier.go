package ports

import (
	"context"
	"time"
)

// Notifier defines the interface for sending notifications to external systems
type Notifier interface {
	// NotifyBatchSummary reports the outcome of a batch scoring run
	NotifyBatchSummary(ctx context.Context, summary BatchSummary) error
}

// BatchSummary aggregates one batch scoring run.
type BatchSummary struct {
	RunID     string
	Source    string
	Started   time.Time
	Duration  time.Duration
	Scored    int
	Accepted  int
	Rejected  int
	Labelled  int // rows with an observed outcome
	Agreed    int // labelled rows where the recommendation matched
	MeanFinal float64
}

// RejectRate returns Rejected/Scored, or 0 for an empty run.
func (s BatchSummary) RejectRate() float64 {
	if s.Scored == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(s.Scored)
}

// Agreement returns Agreed/Labelled, or 0 when nothing was labelled.
func (s BatchSummary) Agreement() float64 {
	if s.Labelled == 0 {
		return 0
	}
	return float64(s.Agreed) / float64(s.Labelled)
}
