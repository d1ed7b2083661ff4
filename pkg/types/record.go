// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RecordFile is the unit of bulk ingestion: persons, facts, and
// relations transcribed from a single source document. Ingestion reads
// these from YAML files in the records directory.
type RecordFile struct {
	// Source describes the document the records were transcribed from.
	// When present it is stored before any facts that cite it.
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// SourceID cites an already stored source instead of an inline one.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// Persons lists the individuals mentioned by the document.
	Persons []Person `json:"persons" yaml:"persons"`

	// Facts lists statements about the persons. Facts without a
	// SourceID inherit the file-level source.
	Facts []Fact `json:"facts" yaml:"facts"`

	// Relations lists parent/spouse edges between the persons.
	Relations []Relation `json:"relations" yaml:"relations"`
}
