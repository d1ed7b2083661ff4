// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FactType categorizes an atomic piece of genealogical information.
type FactType string

const (
	FactBirth      FactType = "birth"
	FactDeath      FactType = "death"
	FactMarriage   FactType = "marriage"
	FactResidence  FactType = "residence"
	FactOccupation FactType = "occupation"
	FactRelation   FactType = "relation"
)

// FactOrigin distinguishes user-asserted facts from conclusions the
// inference engine derived. Asserted facts are never overwritten by
// derived ones.
type FactOrigin string

const (
	OriginAsserted FactOrigin = "asserted"
	OriginDerived  FactOrigin = "derived"
)

// Fact is an atomic statement about a person, carrying its provenance.
type Fact struct {
	// ID is the opaque identifier assigned by the storage layer.
	ID string `json:"id" yaml:"id"`

	// Type categorizes the fact.
	Type FactType `json:"type" yaml:"type"`

	// PersonID identifies the subject of the fact.
	PersonID string `json:"person_id" yaml:"person_id"`

	// Content is the statement itself, in the recorder's words.
	Content string `json:"content" yaml:"content"`

	// Date and Place locate the fact, when known. Dates are free-form.
	Date  string `json:"date,omitempty" yaml:"date,omitempty"`
	Place string `json:"place,omitempty" yaml:"place,omitempty"`

	// SourceID cites the source justifying the fact. Empty for derived
	// facts, whose justification is the Rule field instead.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// Confidence is a value between 0.0 and 1.0.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Origin is "asserted" or "derived".
	Origin FactOrigin `json:"origin" yaml:"origin"`

	// Rule names the inference rule that produced a derived fact.
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`

	// Batch groups facts asserted in the same ingestion run.
	Batch string `json:"batch,omitempty" yaml:"batch,omitempty"`

	// Created records when the fact entered the store.
	Created time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// IdentifyingData returns the fields that determine a fact's identity
// hash. Origin is included so a derived conclusion never collides with
// an assertion of the same statement.
func (f Fact) IdentifyingData() map[string]any {
	return map[string]any{
		"type":      string(f.Type),
		"person_id": f.PersonID,
		"content":   f.Content,
		"date":      f.Date,
		"place":     f.Place,
		"origin":    string(f.Origin),
	}
}

// RelationType identifies a directed relationship between two persons.
// ParentOf and SpouseOf are assertable; the remaining kinds only appear
// as inference output.
type RelationType string

const (
	RelParentOf RelationType = "parent_of"
	RelSpouseOf RelationType = "spouse_of"

	RelSiblingOf      RelationType = "sibling_of"
	RelGrandparentOf  RelationType = "grandparent_of"
	RelAncestorOf     RelationType = "ancestor_of"
	RelAuntUncleOf    RelationType = "aunt_uncle_of"
	RelCousinOf       RelationType = "cousin_of"
	RelParentInLawOf  RelationType = "parent_in_law_of"
	RelSiblingInLawOf RelationType = "sibling_in_law_of"
)

// Assertable reports whether users may record this relation kind
// directly. Everything else is inference output only.
func (r RelationType) Assertable() bool {
	return r == RelParentOf || r == RelSpouseOf
}

// Relation is a directed edge between two persons, identified by their
// opaque IDs. Rule is empty for asserted relations and names the
// deriving inference rule otherwise.
type Relation struct {
	FromID string       `json:"from_id" yaml:"from_id"`
	ToID   string       `json:"to_id" yaml:"to_id"`
	Type   RelationType `json:"type" yaml:"type"`
	Rule   string       `json:"rule,omitempty" yaml:"rule,omitempty"`
}
