// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared across the familytree
// storage, inference, and CLI layers.
package types

import (
	"strings"
	"time"
)

// Gender is the recorded gender of a person.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Person is a tracked individual. The zero ID means the storage layer
// will derive one from the identifying fields; callers must treat IDs as
// opaque strings and compare them only for equality.
type Person struct {
	// ID is the opaque identifier assigned by the storage layer.
	ID string `json:"id" yaml:"id"`

	// FirstName, MiddleName, and LastName hold the recorded name parts.
	FirstName  string `json:"first_name" yaml:"first_name"`
	MiddleName string `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	LastName   string `json:"last_name" yaml:"last_name"`

	// Gender is "male" or "female".
	Gender Gender `json:"gender,omitempty" yaml:"gender,omitempty"`

	// BirthDate and DeathDate are free-form date strings. Genealogical
	// dates are frequently partial ("about 1850") so they are not parsed.
	BirthDate string `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty" yaml:"death_date,omitempty"`

	// Created records when the person entered the store.
	Created time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// DisplayName joins the non-empty name parts with spaces.
func (p Person) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// IdentifyingData returns the fields that determine a person's identity
// hash. Two person records with the same identifying data receive the
// same opaque ID.
func (p Person) IdentifyingData() map[string]any {
	return map[string]any{
		"first_name":  p.FirstName,
		"middle_name": p.MiddleName,
		"last_name":   p.LastName,
		"gender":      string(p.Gender),
		"birth_date":  p.BirthDate,
	}
}
