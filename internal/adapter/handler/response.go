package handler

import (
	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// ScoreRequest is the body of POST /api/v1/score and the payload of the gRPC
// Score method.
type ScoreRequest struct {
	Attributes map[string]int `json:"attributes"`
	Explain    bool           `json:"explain,omitempty"`
}

// SubScoreView is one sub-score as returned to callers.
type SubScoreView struct {
	Name        domain.SubScore `json:"name"`
	Label       string          `json:"label"`
	Probability float64         `json:"probability"`
	Percentage  string          `json:"percentage"`

	// Set only when an explanation was requested.
	Bias          *float64              `json:"bias,omitempty"`
	Linear        *float64              `json:"linear,omitempty"`
	Contributions []domain.Contribution `json:"contributions,omitempty"`
}

// ScoreResponse is the scoring result returned by both APIs.
type ScoreResponse struct {
	RequestID           string                 `json:"request_id"`
	Attributes          domain.AttributeRecord `json:"attributes"`
	Clamped             []domain.Field         `json:"clamped,omitempty"`
	SubScores           []SubScoreView         `json:"sub_scores"`
	FinalProbability    float64                `json:"final_probability"`
	FinalPercentage     string                 `json:"final_percentage"`
	Recommendation      domain.Recommendation  `json:"recommendation"`
	DisplayedLabel      string                 `json:"displayed_label"`
	DisplayedPercentage string                 `json:"displayed_percentage"`
	Message             string                 `json:"message"`
}

func newScoreResponse(requestID string, ev domain.Evaluation, explain bool) ScoreResponse {
	probs := ev.Result.SubScores()
	views := make([]SubScoreView, len(probs))
	for i, p := range probs {
		m := domain.SubModels[i]
		views[i] = SubScoreView{
			Name:        m.Name,
			Label:       m.Name.Label(),
			Probability: p,
			Percentage:  domain.Percent(p).StringFixed(2),
		}
		if explain {
			bias, linear := m.Bias, m.Linear(ev.Attributes)
			views[i].Bias = &bias
			views[i].Linear = &linear
			views[i].Contributions = m.Contributions(ev.Attributes)
		}
	}

	return ScoreResponse{
		RequestID:           requestID,
		Attributes:          ev.Attributes,
		Clamped:             ev.Clamped,
		SubScores:           views,
		FinalProbability:    ev.Result.FinalProbability,
		FinalPercentage:     ev.Decision.FinalPercentage.StringFixed(2),
		Recommendation:      ev.Decision.Recommendation,
		DisplayedLabel:      ev.Decision.DisplayedLabel,
		DisplayedPercentage: ev.Decision.DisplayedPercentage.StringFixed(2),
		Message:             ev.Decision.Message(),
	}
}

// SchemaResponse describes the accepted input.
type SchemaResponse struct {
	Fields          []domain.FieldSpec `json:"fields"`
	UnusedFields    []domain.Field     `json:"unused_fields"`
	RejectThreshold float64            `json:"reject_threshold"`
}

func newSchemaResponse() SchemaResponse {
	return SchemaResponse{
		Fields:          domain.Schema,
		UnusedFields:    domain.UnusedFields(),
		RejectThreshold: domain.RejectThreshold,
	}
}

// Evaluation rebuilds the domain view of a response, for rendering on the
// client side. The decision is re-derived from the returned probability.
func (r ScoreResponse) Evaluation() domain.Evaluation {
	var res domain.ScoreResult
	for _, s := range r.SubScores {
		switch s.Name {
		case domain.CreditHistory:
			res.CreditHistory = s.Probability
		case domain.CreditFrequency:
			res.CreditFrequency = s.Probability
		case domain.NegativeActivity:
			res.NegativeActivity = s.Probability
		case domain.Usage:
			res.Usage = s.Probability
		case domain.Stability:
			res.Stability = s.Probability
		}
	}
	res.FinalProbability = r.FinalProbability

	return domain.Evaluation{
		Attributes: r.Attributes,
		Clamped:    r.Clamped,
		Result:     res,
		Decision:   domain.Decide(res),
	}
}
