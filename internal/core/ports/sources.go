package ports

import (
	"context"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// ApplicantSource yields applicant records for batch scoring. Sources are
// read-only: nothing is written back.
type ApplicantSource interface {
	FetchApplicants(ctx context.Context) ([]domain.Applicant, error)
	Name() string
}

// ResultWriter receives scored applicants, in source order.
type ResultWriter interface {
	Write(a domain.Applicant, ev domain.Evaluation) error
	Flush() error
}
