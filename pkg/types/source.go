// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceType categorizes the document or testimony a source represents.
type SourceType string

const (
	SourceCensus      SourceType = "census"
	SourceCertificate SourceType = "certificate"
	SourceBook        SourceType = "book"
	SourceInterview   SourceType = "interview"
	SourceWebsite     SourceType = "website"
)

// Source records why something exists in the information model: the
// document or testimony that justifies a person or fact. Tracking why we
// believe something is almost as important as the what.
type Source struct {
	// ID is the opaque identifier assigned by the storage layer.
	ID string `json:"id" yaml:"id"`

	// Type categorizes the source document.
	Type SourceType `json:"type" yaml:"type"`

	// Authority is the institution that issued or holds the source
	// (e.g. "US Census Bureau").
	Authority string `json:"authority,omitempty" yaml:"authority,omitempty"`

	// Author is the person who produced the source, when known.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Title identifies the source document.
	Title string `json:"title" yaml:"title"`

	// Created records when the source entered the store.
	Created time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}
