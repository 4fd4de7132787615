package domain

import "math"

// Logistic maps any real x into (0, 1). Large negative x saturates toward 0
// and large positive x toward 1; neither direction produces NaN.
func Logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SubScore names one of the first-stage risk facets.
type SubScore string

const (
	CreditHistory    SubScore = "CreditHistory"
	CreditFrequency  SubScore = "CreditFrequency"
	NegativeActivity SubScore = "NegativeActivity"
	Usage            SubScore = "Usage"
	Stability        SubScore = "Stability"
)

// Label is the display caption of the sub-score.
func (s SubScore) Label() string {
	switch s {
	case CreditHistory:
		return "Credit History"
	case CreditFrequency:
		return "Credit Frequency"
	case NegativeActivity:
		return "Negative Activity"
	case Usage:
		return "Usage"
	case Stability:
		return "Stability"
	}
	return string(s)
}

// Term is one weighted attribute of a linear combination.
type Term struct {
	Field  Field
	Weight float64
}

// SubModel is bias + Σ weight·field, passed through Logistic.
type SubModel struct {
	Name  SubScore
	Bias  float64
	Terms []Term
}

// Linear returns the pre-logistic value of the combination for r.
// Fields missing from r count as zero.
func (m SubModel) Linear(r AttributeRecord) float64 {
	x := m.Bias
	for _, t := range m.Terms {
		x += t.Weight * float64(r[t.Field])
	}
	return x
}

// Probability returns Logistic(Linear(r)).
func (m SubModel) Probability(r AttributeRecord) float64 {
	return Logistic(m.Linear(r))
}

// Contribution is the share one term adds to a linear combination.
type Contribution struct {
	Field  Field   `json:"field"`
	Value  int     `json:"value"`
	Weight float64 `json:"weight"`
	Amount float64 `json:"amount"`
}

// Contributions breaks Linear(r) into its weighted terms, in table order.
func (m SubModel) Contributions(r AttributeRecord) []Contribution {
	out := make([]Contribution, 0, len(m.Terms))
	for _, t := range m.Terms {
		v := r[t.Field]
		out = append(out, Contribution{
			Field:  t.Field,
			Value:  v,
			Weight: t.Weight,
			Amount: t.Weight * float64(v),
		})
	}
	return out
}

// References reports whether f appears in any of the model's terms.
func (m SubModel) References(f Field) bool {
	for _, t := range m.Terms {
		if t.Field == f {
			return true
		}
	}
	return false
}

// SubModels are the first-stage combinations in evaluation order. Changing a
// coefficient here is a model update and needs the regression baselines in
// scoring_test.go recomputed.
var SubModels = [...]SubModel{
	{
		Name: CreditHistory,
		Bias: 8.2710,
		Terms: []Term{
			{ExternalRiskEstimate, -0.1033},
			{MSinceOldestTradeOpen, -0.0014},
			{AverageMinFile, -0.0060},
		},
	},
	{
		Name: CreditFrequency,
		Bias: -0.2177,
		Terms: []Term{
			{MSinceMostRecentTradeOpen, -0.0019},
			{NumTradesOpeninLast12M, 0.0366},
			{NumInqLast6M, 0.3950},
			{NumInqLast6Mexcl7days, -0.2311},
		},
	},
	{
		Name: NegativeActivity,
		Bias: 0.2638,
		Terms: []Term{
			{NumTrades60Ever2DerogPubRec, 0.1593},
			{NumTrades90Ever2DerogPubRec, 0.0276},
			{MSinceMostRecentDelq, -0.0109},
		},
	},
	{
		Name: Usage,
		Bias: -1.4799,
		Terms: []Term{
			{NetFractionRevolvingBurden, 0.0240},
			{NetFractionInstallBurden, 0.0024},
			{NumRevolvingTradesWBalance, 0.0087},
			{NumInstallTradesWBalance, -0.0175},
			{NumBank2NatlTradesWHighUtilization, -0.0974},
			{PercentTradesWBalance, 0.0108},
		},
	},
	{
		Name: Stability,
		Bias: 4.7294,
		Terms: []Term{
			{NumSatisfactoryTrades, -0.0119},
			{NumTotalTrades, -0.0008},
			{PercentTradesNeverDelq, -0.0519},
			{PercentInstallTrades, 0.0131},
		},
	},
}

// FinalModel combines the five sub-score probabilities.
var FinalModel = struct {
	Bias    float64
	Weights [len(SubModels)]float64
}{
	Bias:    -4.6816,
	Weights: [len(SubModels)]float64{3.1742, 2.1591, 0.3973, 1.6336, 1.8478},
}

// ScoreResult holds the output of one scoring call.
type ScoreResult struct {
	CreditHistory    float64
	CreditFrequency  float64
	NegativeActivity float64
	Usage            float64
	Stability        float64
	FinalProbability float64
}

// SubScores returns the five sub-score probabilities in SubModels order.
func (s ScoreResult) SubScores() [len(SubModels)]float64 {
	return [len(SubModels)]float64{
		s.CreditHistory,
		s.CreditFrequency,
		s.NegativeActivity,
		s.Usage,
		s.Stability,
	}
}

// Get returns the probability of the named sub-score.
func (s ScoreResult) Get(name SubScore) float64 {
	for i, m := range SubModels {
		if m.Name == name {
			return s.SubScores()[i]
		}
	}
	return 0
}

// FinalPercentage is FinalProbability on a 0-100 scale.
func (s ScoreResult) FinalPercentage() float64 {
	return s.FinalProbability * 100
}

// Score runs r through the two-stage model. It performs no range checks:
// callers are expected to pass a record that satisfies Validate.
func Score(r AttributeRecord) ScoreResult {
	var p [len(SubModels)]float64
	for i, m := range SubModels {
		p[i] = m.Probability(r)
	}

	x := FinalModel.Bias
	for i, w := range FinalModel.Weights {
		x += w * p[i]
	}

	return ScoreResult{
		CreditHistory:    p[0],
		CreditFrequency:  p[1],
		NegativeActivity: p[2],
		Usage:            p[3],
		Stability:        p[4],
		FinalProbability: Logistic(x),
	}
}

// UnusedFields returns schema fields that no sub-model references.
func UnusedFields() []Field {
	var out []Field
	for _, s := range Schema {
		used := false
		for _, m := range SubModels {
			if m.References(s.Name) {
				used = true
				break
			}
		}
		if !used {
			out = append(out, s.Name)
		}
	}
	return out
}
