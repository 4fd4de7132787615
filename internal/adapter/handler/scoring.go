package handler

import (
	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// evaluate applies the input rules to raw, scores it and records the
// outcome under transport.
func evaluate(transport string, raw map[string]int) (domain.Evaluation, error) {
	timer := metrics.StartTimer(transport)
	defer timer.ObserveDuration()

	ev, err := domain.Evaluate(raw)
	if err != nil {
		metrics.RecordRequest(transport, "invalid")
		return domain.Evaluation{}, err
	}

	for _, f := range ev.Clamped {
		metrics.RecordClamped(f)
	}
	metrics.RecordResult(ev.Result, ev.Decision)
	metrics.RecordRequest(transport, "success")

	return ev, nil
}
