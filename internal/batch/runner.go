package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/core/domain"
	"github.com/hive-corporation/creditrisk/internal/core/ports"
)

// Runner scores every applicant of a source, in order, and hands each result
// to a writer. A notifier, when set, receives the run summary.
type Runner struct {
	source   ports.ApplicantSource
	writer   ports.ResultWriter
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewRunner(source ports.ApplicantSource, writer ports.ResultWriter, notifier ports.Notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{source: source, writer: writer, notifier: notifier, logger: logger}
}

// Run performs one batch. A failed notification is logged but does not fail
// the run.
func (r *Runner) Run(ctx context.Context) (ports.BatchSummary, error) {
	summary := ports.BatchSummary{
		RunID:   uuid.NewString(),
		Source:  r.source.Name(),
		Started: time.Now(),
	}
	log := r.logger.With("run_id", summary.RunID, "source", summary.Source)

	log.Info("📥 fetching applicants")
	applicants, err := r.source.FetchApplicants(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch applicants from %s: %w", summary.Source, err)
	}
	log.Info("✅ applicants fetched", "count", len(applicants))

	var total float64
	for _, a := range applicants {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		timer := metrics.StartTimer("batch")
		ev := domain.EvaluateRecord(a.Attributes)
		ev.Clamped = a.Clamped
		timer.ObserveDuration()

		for _, f := range a.Clamped {
			metrics.RecordClamped(f)
		}
		metrics.RecordResult(ev.Result, ev.Decision)
		metrics.RecordRequest("batch", "success")
		metrics.RecordBatchRow(summary.Source, "scored")

		if len(a.Clamped) > 0 {
			log.Debug("clamped out-of-range attributes", "applicant", a.ID, "fields", a.Clamped)
		}

		if err := r.writer.Write(a, ev); err != nil {
			return summary, err
		}

		summary.Scored++
		total += ev.Result.FinalProbability
		if ev.Decision.Recommendation == domain.Reject {
			summary.Rejected++
		} else {
			summary.Accepted++
		}
		if agree, labelled := a.Agrees(ev.Decision.Recommendation); labelled {
			summary.Labelled++
			if agree {
				summary.Agreed++
			}
		}
	}

	if err := r.writer.Flush(); err != nil {
		return summary, fmt.Errorf("failed to flush results: %w", err)
	}

	if summary.Scored > 0 {
		summary.MeanFinal = total / float64(summary.Scored)
	}
	summary.Duration = time.Since(summary.Started)

	attrs := []any{
		"scored", summary.Scored,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
		"mean_final_pct", domain.Percent(summary.MeanFinal).StringFixed(2),
		"duration", summary.Duration,
	}
	if summary.Labelled > 0 {
		attrs = append(attrs, "labelled", summary.Labelled, "agreement_pct", domain.Percent(summary.Agreement()).StringFixed(2))
	}
	log.Info("🏁 batch scoring finished", attrs...)

	if r.notifier != nil {
		if err := r.notifier.NotifyBatchSummary(ctx, summary); err != nil {
			log.Error("❌ failed to send batch summary", "error", err)
		} else {
			log.Info("✅ batch summary sent")
		}
	}

	return summary, nil
}
