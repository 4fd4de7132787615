package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

func TestReportExporter_Defaults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportExporter(false).Export(&buf, domain.EvaluateRecord(domain.DefaultRecord())))

	out := buf.String()
	for _, want := range []string{
		"Subscale Feature Percentages",
		"Credit History         93.12%",
		"Credit Frequency       56.81%",
		"Negative Activity      53.09%",
		"Usage                  53.53%",
		"Stability              97.59%",
		"Final Prediction       91.60%",
		"Recommendation\n  Reject\n  Probability of Default: 91.60%",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "bias")
	assert.NotContains(t, out, "Clamped")

	sections := []string{"Subscale Feature Percentages", "Final Percentage Output", "Recommendation"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		assert.Greater(t, idx, last, s)
		last = idx
	}
}

func TestReportExporter_ExplainAndClamped(t *testing.T) {
	ev, err := domain.Evaluate(map[string]int{"ExternalRiskEstimate": 90, "PercentTradesNeverDelq": 100, "NumTotalTrades": 500})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewReportExporter(true).Export(&buf, ev))

	out := buf.String()
	assert.Contains(t, out, "bias")
	assert.Contains(t, out, "ExternalRiskEstimate")
	assert.Contains(t, out, "(90 * -0.1033)")
	assert.Contains(t, out, "Accept\n  Probability of Non-Default:")
	assert.Contains(t, out, "Clamped to range: NumTotalTrades")
}
