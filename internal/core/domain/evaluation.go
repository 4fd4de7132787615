package domain

// Evaluation bundles everything produced for one applicant: the record that
// was actually scored, which inputs were clamped, the probabilities and the
// resulting decision.
type Evaluation struct {
	Attributes AttributeRecord
	Clamped    []Field
	Result     ScoreResult
	Decision   Decision
}

// Evaluate normalizes raw input and scores it.
func Evaluate(raw map[string]int) (Evaluation, error) {
	r, clamped, err := Normalize(raw)
	if err != nil {
		return Evaluation{}, err
	}
	ev := EvaluateRecord(r)
	ev.Clamped = clamped
	return ev, nil
}

// EvaluateRecord scores an already normalized record.
func EvaluateRecord(r AttributeRecord) Evaluation {
	res := Score(r)
	return Evaluation{
		Attributes: r,
		Result:     res,
		Decision:   Decide(res),
	}
}
