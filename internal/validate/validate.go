// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate transforms raw user input into usable values.
//
// Each validator takes the user's input as a string, checks it against
// a constraint, and returns a typed value. Failures are reported as
// *Error so the CLI can render what was expected against what was
// received.
package validate

import (
	"strconv"
	"strings"
	"time"

	"github.com/daveshawley/familytree/pkg/types"
)

// Error reports a user input value that failed validation.
type Error struct {
	// Message names the failed constraint.
	Message string

	// Cause is the underlying parse error, when there is one.
	Cause error

	// Expected and Actual describe the mismatch for display.
	Expected string
	Actual   string
}

func (e *Error) Error() string {
	var rest []string
	if e.Cause != nil {
		rest = append(rest, "cause="+e.Cause.Error())
	}
	if e.Expected != "" {
		rest = append(rest, "expected="+e.Expected)
	}
	if e.Actual != "" {
		rest = append(rest, "actual="+e.Actual)
	}
	if len(rest) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(rest, ",")
}

func (e *Error) Unwrap() error { return e.Cause }

// Age validates a floating point number of years. Values ending in
// "/12" are treated as months (e.g. "3/12" is a quarter year), matching
// how ages of infants appear in census records.
func Age(value string) (float64, error) {
	years, err := strconv.ParseFloat(value, 64)
	if err == nil {
		return years, nil
	}
	if idx := strings.Index(value, "/12"); idx >= 0 {
		months, merr := strconv.ParseFloat(value[:idx], 64)
		if merr == nil {
			return months / 12.0, nil
		}
	}
	return 0, &Error{Message: "invalid age", Cause: err, Actual: value}
}

// Date returns a validator that parses input against the given layout.
func Date(layout string) func(string) (time.Time, error) {
	return func(value string) (time.Time, error) {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			return time.Time{}, &Error{Message: "invalid date", Cause: err, Expected: layout, Actual: value}
		}
		return parsed, nil
	}
}

// Gender validates a gender value, accepting single-letter shorthand.
func Gender(value string) (types.Gender, error) {
	switch strings.ToLower(value) {
	case "m", "male":
		return types.GenderMale, nil
	case "f", "female":
		return types.GenderFemale, nil
	}
	return "", &Error{Message: "invalid gender", Expected: "male|female", Actual: value}
}

// YesNo validates a yes/no value.
func YesNo(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, &Error{Message: "invalid answer", Expected: "yes|no", Actual: value}
}

// validFamilyRelations is the canonical set of relations a census-style
// record may assert between a person and the head of house.
var validFamilyRelations = map[string]struct{}{
	"daughter":        {},
	"daughter in law": {},
	"head of house":   {},
	"husband":         {},
	"son":             {},
	"son in law":      {},
	"wife":            {},
}

// relationAbbreviations maps the shorthand used in transcriptions to
// canonical relation names.
var relationAbbreviations = map[string]string{
	"d/o": "daughter",
	"h/o": "husband",
	"s/o": "son",
	"w/o": "wife",
	"dil": "daughter in law",
	"sil": "son in law",
}

// FamilialRelation validates and canonicalizes a familial relation.
// Hyphens collapse to spaces, runs of whitespace collapse to one space,
// and common abbreviations (d/o, s/o, w/o, h/o, dil, sil) expand to
// their full forms.
func FamilialRelation(value string) (string, error) {
	normalized := strings.Join(
		strings.Fields(strings.ReplaceAll(strings.ToLower(value), "-", " ")),
		" ",
	)

	if full, ok := relationAbbreviations[normalized]; ok {
		normalized = full
	}

	if _, ok := validFamilyRelations[normalized]; !ok {
		return "", &Error{Message: "invalid relation", Expected: "familial relationship", Actual: value}
	}
	return normalized, nil
}

// RelationKind validates a relation type for direct assertion.
// Only parent_of and spouse_of may be asserted; the other kinds are
// inference output.
func RelationKind(value string) (types.RelationType, error) {
	rel := types.RelationType(strings.ToLower(strings.TrimSpace(value)))
	if !rel.Assertable() {
		return "", &Error{Message: "invalid relation kind", Expected: "parent_of|spouse_of", Actual: value}
	}
	return rel, nil
}
