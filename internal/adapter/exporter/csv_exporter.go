package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// CSVExporter writes one row per scored applicant. The header is written
// before the first row.
type CSVExporter struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSVExporter(w io.Writer) *CSVExporter {
	return &CSVExporter{w: csv.NewWriter(w)}
}

// Header returns the column names, in output order.
func Header() []string {
	cols := []string{"id"}
	for _, m := range domain.SubModels {
		cols = append(cols, string(m.Name))
	}
	return append(cols, "FinalPercentage", "Recommendation", "DisplayedPercentage", "Observed", "Clamped")
}

// Write appends the row for a and its evaluation.
func (e *CSVExporter) Write(a domain.Applicant, ev domain.Evaluation) error {
	if !e.wroteHeader {
		if err := e.w.Write(Header()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.wroteHeader = true
	}

	row := []string{a.ID}
	for _, p := range ev.Result.SubScores() {
		row = append(row, domain.Percent(p).StringFixed(2))
	}

	clamped := make([]string, len(a.Clamped))
	for i, f := range a.Clamped {
		clamped[i] = string(f)
	}

	row = append(row,
		ev.Decision.FinalPercentage.StringFixed(2),
		string(ev.Decision.Recommendation),
		ev.Decision.DisplayedPercentage.StringFixed(2),
		string(a.Observed),
		strings.Join(clamped, ";"),
	)

	if err := e.w.Write(row); err != nil {
		return fmt.Errorf("failed to write row %s: %w", a.ID, err)
	}
	return nil
}

// Flush writes any buffered rows and reports the first write error.
func (e *CSVExporter) Flush() error {
	e.w.Flush()
	return e.w.Error()
}
