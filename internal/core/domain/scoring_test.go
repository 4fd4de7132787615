package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogistic(t *testing.T) {
	assert.Equal(t, 0.5, Logistic(0))

	for _, x := range []float64{-30, -5, -1, -0.25, 0.25, 1, 5, 30} {
		y := Logistic(x)
		assert.Greater(t, y, 0.0, "x=%v", x)
		assert.Less(t, y, 1.0, "x=%v", x)
		assert.InDelta(t, 1-Logistic(x), Logistic(-x), 1e-12, "symmetry at x=%v", x)
	}
}

func TestLogistic_Saturates(t *testing.T) {
	lo := Logistic(-1000)
	hi := Logistic(1000)

	assert.False(t, math.IsNaN(lo))
	assert.False(t, math.IsNaN(hi))
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestLogistic_Monotonic(t *testing.T) {
	prev := Logistic(-20)
	for x := -19.5; x <= 20; x += 0.5 {
		cur := Logistic(x)
		assert.Greater(t, cur, prev, "x=%v", x)
		prev = cur
	}
}

func TestSubModel_LinearAtDefaults(t *testing.T) {
	r := DefaultRecord()

	tests := []struct {
		name   SubScore
		linear float64
		prob   float64
	}{
		{CreditHistory, 2.606, 0.9312},
		{CreditFrequency, 0.2741, 0.5681},
		{NegativeActivity, 0.1237, 0.5309},
		{Usage, 0.1413, 0.5353},
		{Stability, 3.6994, 0.9759},
	}

	for i, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			m := SubModels[i]
			require.Equal(t, tt.name, m.Name)
			assert.InDelta(t, tt.linear, m.Linear(r), 1e-9)
			assert.InDelta(t, tt.prob, m.Probability(r), 5e-5)
		})
	}
}

func TestScore_Defaults(t *testing.T) {
	res := Score(DefaultRecord())

	assert.InDelta(t, 0.9312467326, res.CreditHistory, 1e-9)
	assert.InDelta(t, 0.5680991708, res.CreditFrequency, 1e-9)
	assert.InDelta(t, 0.5308856265, res.NegativeActivity, 1e-9)
	assert.InDelta(t, 0.5352663431, res.Usage, 1e-9)
	assert.InDelta(t, 0.9758588476, res.Stability, 1e-9)
	assert.InDelta(t, 0.9160208240, res.FinalProbability, 1e-9)
	assert.Equal(t, "91.60", Percent(res.FinalProbability).StringFixed(2))
}

func TestScore_LowRiskApplicant(t *testing.T) {
	r := DefaultRecord()
	for f, v := range map[Field]int{
		ExternalRiskEstimate:               90,
		PercentTradesNeverDelq:             100,
		NumInqLast6M:                       0,
		NumInqLast6Mexcl7days:              0,
		NetFractionRevolvingBurden:         0,
		NumTrades60Ever2DerogPubRec:        0,
		NumTrades90Ever2DerogPubRec:        0,
		MSinceMostRecentDelq:               100,
		PercentTradesWBalance:              0,
		NumBank2NatlTradesWHighUtilization: 5,
	} {
		r = r.With(f, v)
	}

	res := Score(r)

	assert.InDelta(t, 0.1180870405, res.FinalProbability, 1e-9)
	assert.Equal(t, Accept, Decide(res).Recommendation)
}

func TestScore_Deterministic(t *testing.T) {
	r := DefaultRecord()
	first := Score(r)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Score(r))
	}
}

func TestScore_FieldOrderIndependent(t *testing.T) {
	forward := make(AttributeRecord)
	for _, s := range Schema {
		forward[s.Name] = s.Max
	}
	backward := make(AttributeRecord)
	for i := len(Schema) - 1; i >= 0; i-- {
		backward[Schema[i].Name] = Schema[i].Max
	}

	assert.Equal(t, Score(forward), Score(backward))
}

func TestScore_BoundsAcrossRange(t *testing.T) {
	lo := make(AttributeRecord)
	hi := make(AttributeRecord)
	for _, s := range Schema {
		lo[s.Name] = s.Min
		hi[s.Name] = s.Max
	}

	for name, r := range map[string]AttributeRecord{"min": lo, "max": hi, "default": DefaultRecord()} {
		t.Run(name, func(t *testing.T) {
			res := Score(r)
			for i, p := range res.SubScores() {
				assert.Greater(t, p, 0.0, SubModels[i].Name)
				assert.Less(t, p, 1.0, SubModels[i].Name)
			}
			assert.Greater(t, res.FinalProbability, 0.0)
			assert.Less(t, res.FinalProbability, 1.0)
		})
	}
}

func TestScore_OutOfRangeStillScores(t *testing.T) {
	r := DefaultRecord().With(ExternalRiskEstimate, 10_000)

	res := Score(r)

	assert.False(t, math.IsNaN(res.FinalProbability))
	assert.Less(t, res.CreditHistory, 1e-6)
}

func TestScore_SingleFieldIsolation(t *testing.T) {
	base := DefaultRecord()
	baseline := Score(base)

	for _, spec := range Schema {
		t.Run(string(spec.Name), func(t *testing.T) {
			bumped := Score(base.With(spec.Name, base[spec.Name]+1))

			changed := 0
			for i, m := range SubModels {
				if bumped.SubScores()[i] != baseline.SubScores()[i] {
					changed++
					assert.True(t, m.References(spec.Name), "%s moved without referencing %s", m.Name, spec.Name)
				}
			}

			if spec.Name == MaxDelq2PublicRecLast12M || spec.Name == MaxDelqEver {
				assert.Equal(t, 0, changed)
				assert.Equal(t, baseline, bumped)
				return
			}
			assert.Equal(t, 1, changed)
			assert.NotEqual(t, baseline.FinalProbability, bumped.FinalProbability)
		})
	}
}

func TestUnusedFields(t *testing.T) {
	assert.Equal(t, []Field{MaxDelq2PublicRecLast12M, MaxDelqEver}, UnusedFields())
}

func TestSubModels_ReferenceSchemaFields(t *testing.T) {
	seen := map[Field]SubScore{}
	for _, m := range SubModels {
		for _, term := range m.Terms {
			_, ok := Lookup(term.Field)
			assert.True(t, ok, "%s references %s outside the schema", m.Name, term.Field)

			prev, dup := seen[term.Field]
			assert.False(t, dup, "%s shared by %s and %s", term.Field, prev, m.Name)
			seen[term.Field] = m.Name
		}
	}
}

func TestContributions_SumToLinear(t *testing.T) {
	r := DefaultRecord()
	for _, m := range SubModels {
		sum := m.Bias
		for _, c := range m.Contributions(r) {
			sum += c.Amount
		}
		assert.InDelta(t, m.Linear(r), sum, 1e-12, m.Name)
	}
}

func TestScoreResult_Get(t *testing.T) {
	res := Score(DefaultRecord())

	assert.Equal(t, res.Usage, res.Get(Usage))
	assert.Equal(t, res.CreditHistory, res.Get(CreditHistory))
	assert.Equal(t, 0.0, res.Get(SubScore("Nope")))
}

func TestSubScore_Label(t *testing.T) {
	assert.Equal(t, "Negative Activity", NegativeActivity.Label())
	assert.Equal(t, "Other", SubScore("Other").Label())
}
