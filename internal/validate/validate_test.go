// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daveshawley/familytree/pkg/types"
)

func TestAge(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"whole years", "42", 42, false},
		{"fractional years", "2.5", 2.5, false},
		{"months", "3/12", 0.25, false},
		{"one month", "1/12", 1.0 / 12.0, false},
		{"garbage", "elderly", 0, true},
		{"garbage months", "x/12", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Age(tt.input)
			if tt.wantErr {
				var verr *Error
				require.Error(t, err)
				assert.True(t, errors.As(err, &verr))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDate(t *testing.T) {
	validator := Date("2006-01-02")

	got, err := validator("1923-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1923, 6, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = validator("June 1st")
	var verr *Error
	require.Error(t, err)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "2006-01-02", verr.Expected)
	assert.NotNil(t, verr.Cause)
}

func TestGender(t *testing.T) {
	for input, want := range map[string]types.Gender{
		"m": types.GenderMale, "M": types.GenderMale, "male": types.GenderMale,
		"f": types.GenderFemale, "Female": types.GenderFemale,
	} {
		got, err := Gender(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := Gender("unknown")
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "male|female", verr.Expected)
}

func TestYesNo(t *testing.T) {
	for _, input := range []string{"y", "Y", "yes", "YES"} {
		got, err := YesNo(input)
		require.NoError(t, err)
		assert.True(t, got, "input %q", input)
	}
	for _, input := range []string{"n", "no", "No"} {
		got, err := YesNo(input)
		require.NoError(t, err)
		assert.False(t, got, "input %q", input)
	}

	_, err := YesNo("maybe")
	assert.Error(t, err)
}

func TestFamilialRelation(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"daughter", "daughter", false},
		{"Head of House", "head of house", false},
		{"head-of-house", "head of house", false},
		{"son  in   law", "son in law", false},
		{"d/o", "daughter", false},
		{"S/O", "son", false},
		{"w/o", "wife", false},
		{"h/o", "husband", false},
		{"DIL", "daughter in law", false},
		{"sil", "son in law", false},
		{"lodger", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := FamilialRelation(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelationKind(t *testing.T) {
	got, err := RelationKind(" Parent_Of ")
	require.NoError(t, err)
	assert.Equal(t, types.RelParentOf, got)

	got, err = RelationKind("spouse_of")
	require.NoError(t, err)
	assert.Equal(t, types.RelSpouseOf, got)

	_, err = RelationKind("sibling_of")
	assert.Error(t, err, "derived kinds must not be assertable")
}

func TestErrorString(t *testing.T) {
	err := &Error{Message: "invalid gender", Expected: "male|female", Actual: "robot"}
	assert.Equal(t, "invalid gender: expected=male|female,actual=robot", err.Error())

	bare := &Error{Message: "invalid age"}
	assert.Equal(t, "invalid age", bare.Error())
}
