package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown attribute")
	ErrMissingField = errors.New("missing attribute")
)

// Field names an applicant attribute.
type Field string

const (
	ExternalRiskEstimate               Field = "ExternalRiskEstimate"
	MSinceOldestTradeOpen              Field = "MSinceOldestTradeOpen"
	AverageMinFile                     Field = "AverageMinFile"
	MSinceMostRecentTradeOpen          Field = "MSinceMostRecentTradeOpen"
	NumTradesOpeninLast12M             Field = "NumTradesOpeninLast12M"
	NumInqLast6M                       Field = "NumInqLast6M"
	NumInqLast6Mexcl7days              Field = "NumInqLast6Mexcl7days"
	NumTrades60Ever2DerogPubRec        Field = "NumTrades60Ever2DerogPubRec"
	NumTrades90Ever2DerogPubRec        Field = "NumTrades90Ever2DerogPubRec"
	MSinceMostRecentDelq               Field = "MSinceMostRecentDelq"
	MaxDelq2PublicRecLast12M           Field = "MaxDelq2PublicRecLast12M"
	MaxDelqEver                        Field = "MaxDelqEver"
	NetFractionRevolvingBurden         Field = "NetFractionRevolvingBurden"
	NetFractionInstallBurden           Field = "NetFractionInstallBurden"
	NumRevolvingTradesWBalance         Field = "NumRevolvingTradesWBalance"
	NumInstallTradesWBalance           Field = "NumInstallTradesWBalance"
	NumBank2NatlTradesWHighUtilization Field = "NumBank2NatlTradesWHighUtilization"
	PercentTradesWBalance              Field = "PercentTradesWBalance"
	NumSatisfactoryTrades              Field = "NumSatisfactoryTrades"
	NumTotalTrades                     Field = "NumTotalTrades"
	PercentTradesNeverDelq             Field = "PercentTradesNeverDelq"
	PercentInstallTrades               Field = "PercentInstallTrades"
)

// Group is the form section a field is collected under.
type Group string

const (
	GroupCreditHistory    Group = "Credit History"
	GroupCreditFrequency  Group = "Credit Frequency"
	GroupNegativeActivity Group = "Negative Activity"
	GroupUsage            Group = "Usage"
	GroupStability        Group = "Stability"
)

// FieldSpec describes how a field is collected: its caption, section,
// inclusive valid range and the value the form starts from.
type FieldSpec struct {
	Name    Field  `json:"name"`
	Label   string `json:"label"`
	Group   Group  `json:"group"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Default int    `json:"default"`
}

// Clamp forces v into [Min, Max].
func (s FieldSpec) Clamp(v int) int {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Contains reports whether v lies in [Min, Max].
func (s FieldSpec) Contains(v int) bool {
	return v >= s.Min && v <= s.Max
}

// Schema lists every collected field in form order.
var Schema = []FieldSpec{
	{ExternalRiskEstimate, "External Risk Estimate", GroupCreditHistory, 0, 100, 50},
	{MSinceOldestTradeOpen, "Months Since Oldest Trade Open", GroupCreditHistory, 0, 850, 100},
	{AverageMinFile, "Average Months In File", GroupCreditHistory, 0, 400, 60},

	{MSinceMostRecentTradeOpen, "Months Since Most Recent Trade Open", GroupCreditFrequency, 0, 400, 10},
	{NumTradesOpeninLast12M, "Number of Trades Open in Last 12 Months", GroupCreditFrequency, 0, 20, 5},
	{NumInqLast6M, "Number of Inquiries Last 6 Months", GroupCreditFrequency, 0, 70, 2},
	{NumInqLast6Mexcl7days, "Number of Inquiries Last 6 Months excluding last 7 days", GroupCreditFrequency, 0, 70, 2},

	{NumTrades60Ever2DerogPubRec, "Number of Trades 60+ Ever Derogatory/Public Records", GroupNegativeActivity, 0, 20, 1},
	{NumTrades90Ever2DerogPubRec, "Number of Trades 90+ Ever Derogatory/Public Records", GroupNegativeActivity, 0, 20, 1},
	{MSinceMostRecentDelq, "Months Since Most Recent Delinquency", GroupNegativeActivity, 0, 100, 30},
	{MaxDelq2PublicRecLast12M, "Max Delinquency in Public Records Last 12 Months", GroupNegativeActivity, 0, 12, 0},
	{MaxDelqEver, "Max Delinquency Ever", GroupNegativeActivity, 1, 10, 1},

	{NetFractionRevolvingBurden, "Net Fraction Revolving Burden", GroupUsage, 0, 250, 50},
	{NetFractionInstallBurden, "Net Fraction Installment Burden", GroupUsage, 0, 500, 50},
	{NumRevolvingTradesWBalance, "Number of Revolving Trades with Balance", GroupUsage, 0, 35, 5},
	{NumInstallTradesWBalance, "Number of Installment Trades with Balance", GroupUsage, 0, 25, 5},
	{NumBank2NatlTradesWHighUtilization, "Number of Bank/National Trades with High Utilization", GroupUsage, 0, 20, 2},
	{PercentTradesWBalance, "Percent of Trades with Balance", GroupUsage, 0, 100, 50},

	{NumSatisfactoryTrades, "Number of Satisfactory Trades", GroupStability, 0, 80, 20},
	{NumTotalTrades, "Total Number of Trades", GroupStability, 0, 110, 20},
	{PercentTradesNeverDelq, "Percent of Trades Never Delinquent", GroupStability, 0, 100, 20},
	{PercentInstallTrades, "Percent of Installment Trades", GroupStability, 0, 100, 20},
}

var schemaIndex = func() map[Field]FieldSpec {
	idx := make(map[Field]FieldSpec, len(Schema))
	for _, s := range Schema {
		idx[s.Name] = s
	}
	return idx
}()

// Lookup returns the spec for name.
func Lookup(name Field) (FieldSpec, bool) {
	s, ok := schemaIndex[name]
	return s, ok
}

// ParseField resolves a raw attribute name against the schema.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := schemaIndex[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// AttributeRecord holds one applicant's attribute values keyed by field.
// Treat it as a value: the helpers below never modify the receiver.
type AttributeRecord map[Field]int

// DefaultRecord returns a record with every field at its form default.
func DefaultRecord() AttributeRecord {
	r := make(AttributeRecord, len(Schema))
	for _, s := range Schema {
		r[s.Name] = s.Default
	}
	return r
}

// With returns a copy of r with field set to v.
func (r AttributeRecord) With(field Field, v int) AttributeRecord {
	out := r.Clone()
	out[field] = v
	return out
}

// Clone returns an independent copy of r.
func (r AttributeRecord) Clone() AttributeRecord {
	out := make(AttributeRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Validate checks that every schema field is present and in range and that
// no field outside the schema is set.
func (r AttributeRecord) Validate() error {
	for f := range r {
		if _, ok := schemaIndex[f]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	for _, s := range Schema {
		v, ok := r[s.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, s.Name)
		}
		if !s.Contains(v) {
			return fmt.Errorf("%s=%d outside [%d, %d]", s.Name, v, s.Min, s.Max)
		}
	}
	return nil
}

// Fields returns the record's field names sorted alphabetically.
func (r AttributeRecord) Fields() []Field {
	fields := make([]Field, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Normalize applies the form rules to raw input: fields left out take their
// default and values outside the valid range are clamped. Names outside the
// schema are rejected. The clamped fields are returned in schema order.
func Normalize(raw map[string]int) (AttributeRecord, []Field, error) {
	r := DefaultRecord()
	touched := make(map[Field]bool)
	for name, v := range raw {
		f, err := ParseField(name)
		if err != nil {
			return nil, nil, err
		}
		c := schemaIndex[f].Clamp(v)
		if c != v {
			touched[f] = true
		}
		r[f] = c
	}

	var clamped []Field
	for _, s := range Schema {
		if touched[s.Name] {
			clamped = append(clamped, s.Name)
		}
	}
	return r, clamped, nil
}

// LookupFold is Lookup with case-insensitive matching, for sources whose
// column names drift in capitalisation (e.g. "AverageMInFile").
func LookupFold(name string) (FieldSpec, bool) {
	if s, ok := schemaIndex[Field(name)]; ok {
		return s, true
	}
	for _, s := range Schema {
		if strings.EqualFold(string(s.Name), name) {
			return s, true
		}
	}
	return FieldSpec{}, false
}
