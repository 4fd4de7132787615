package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// ReportExporter renders an evaluation as the three-section text report:
// sub-score percentages, the final prediction and the recommendation.
type ReportExporter struct {
	// Explain adds each sub-score's bias and per-attribute contributions.
	Explain bool
}

func NewReportExporter(explain bool) *ReportExporter {
	return &ReportExporter{Explain: explain}
}

// Export writes the report for ev to w.
func (e *ReportExporter) Export(w io.Writer, ev domain.Evaluation) error {
	var b strings.Builder

	b.WriteString("Subscale Feature Percentages\n")
	for i, p := range ev.Result.SubScores() {
		m := domain.SubModels[i]
		fmt.Fprintf(&b, "  %-20s %7s%%\n", m.Name.Label(), domain.Percent(p).StringFixed(2))
		if e.Explain {
			e.writeContributions(&b, m, ev.Attributes)
		}
	}

	b.WriteString("\nFinal Percentage Output\n")
	fmt.Fprintf(&b, "  %-20s %7s%%\n", "Final Prediction", ev.Decision.FinalPercentage.StringFixed(2))

	b.WriteString("\nRecommendation\n")
	fmt.Fprintf(&b, "  %s\n", ev.Decision.Recommendation)
	fmt.Fprintf(&b, "  %s\n", ev.Decision.Message())

	if len(ev.Clamped) > 0 {
		names := make([]string, len(ev.Clamped))
		for i, f := range ev.Clamped {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, "\nClamped to range: %s\n", strings.Join(names, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (e *ReportExporter) writeContributions(b *strings.Builder, m domain.SubModel, r domain.AttributeRecord) {
	fmt.Fprintf(b, "      %-36s %+9.4f\n", "bias", m.Bias)
	for _, c := range m.Contributions(r) {
		fmt.Fprintf(b, "      %-36s %+9.4f  (%d * %g)\n", c.Field, c.Amount, c.Value, c.Weight)
	}
	fmt.Fprintf(b, "      %-36s %+9.4f\n", "linear", m.Linear(r))
}
