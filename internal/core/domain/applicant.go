package domain

import "strings"

// Outcome is an observed repayment label carried alongside historical
// applicant data ("Good"/"Bad" in HELOC-style datasets).
type Outcome string

const (
	OutcomeUnknown Outcome = ""
	OutcomeGood    Outcome = "Good"
	OutcomeBad     Outcome = "Bad"
)

// ParseOutcome maps a label to an Outcome, ignoring case. Anything else is
// OutcomeUnknown.
func ParseOutcome(s string) Outcome {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good":
		return OutcomeGood
	case "bad":
		return OutcomeBad
	}
	return OutcomeUnknown
}

// Applicant is a record read by a batch source.
type Applicant struct {
	ID         string
	Attributes AttributeRecord
	Clamped    []Field // fields the source had to force into range
	Observed   Outcome // optional
}

// Agrees reports whether the recommendation matches the observed outcome.
// The second value is false when there is no label to compare against.
func (a Applicant) Agrees(rec Recommendation) (bool, bool) {
	switch a.Observed {
	case OutcomeGood:
		return rec == Accept, true
	case OutcomeBad:
		return rec == Reject, true
	}
	return false, false
}
