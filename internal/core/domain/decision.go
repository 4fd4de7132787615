package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recommendation is the binary outcome shown to the applicant reviewer.
type Recommendation string

const (
	Accept Recommendation = "Accept"
	Reject Recommendation = "Reject"
)

// RejectThreshold is the final percentage at or above which an applicant is rejected.
const RejectThreshold = 50.0

var hundred = decimal.NewFromInt(100)

// Decision is the rendered outcome of a ScoreResult.
type Decision struct {
	Recommendation Recommendation
	// FinalPercentage is the probability of default, rounded to two places.
	FinalPercentage decimal.Decimal
	// DisplayedLabel and DisplayedPercentage describe the figure shown next to
	// the recommendation: default probability on Reject, non-default on Accept.
	DisplayedLabel      string
	DisplayedPercentage decimal.Decimal
}

// Message renders the decision the way the results tab prints it.
func (d Decision) Message() string {
	return fmt.Sprintf("%s: %s%%", d.DisplayedLabel, d.DisplayedPercentage.StringFixed(2))
}

// Decide derives the recommendation from s. The threshold is applied to the
// unrounded percentage; exactly 50 is a Reject.
func Decide(s ScoreResult) Decision {
	final := s.FinalPercentage()
	rounded := Percent(s.FinalProbability)

	if final >= RejectThreshold {
		return Decision{
			Recommendation:      Reject,
			FinalPercentage:     rounded,
			DisplayedLabel:      "Probability of Default",
			DisplayedPercentage: rounded,
		}
	}

	return Decision{
		Recommendation:      Accept,
		FinalPercentage:     rounded,
		DisplayedLabel:      "Probability of Non-Default",
		DisplayedPercentage: decimal.NewFromFloat(100 - final).Round(2),
	}
}

// Percent converts a probability to a percentage rounded to two places.
func Percent(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Mul(hundred).Round(2)
}
