package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceComponents(t *testing.T) {
	testCases := []struct {
		name         string
		reference    string
		expectedType string
		expectedID   string
		expectedOK   bool
	}{
		{
			name:         "relative reference",
			reference:    "Observation/42",
			expectedType: "Observation",
			expectedID:   "42",
			expectedOK:   true,
		},
		{
			name:       "local reference",
			reference:  "urn:uuid:0c2a95a8-3b5c-4f1a-9f41-cbd7b5cfab0d",
			expectedOK: false,
		},
		{
			name:       "absolute url",
			reference:  "https://fhir.example.com/Patient/7",
			expectedOK: false,
		},
		{
			name:       "empty",
			reference:  "",
			expectedOK: false,
		},
		{
			name:       "missing id",
			reference:  "Patient/",
			expectedOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resourceType, id, ok := ReferenceComponents(tc.reference)
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedType, resourceType)
			assert.Equal(t, tc.expectedID, id)
		})
	}
}

func TestIsLocalReference(t *testing.T) {
	assert.True(t, IsLocalReference("urn:uuid:abc"))
	assert.False(t, IsLocalReference("Observation/abc"))
}

func TestFormatReference(t *testing.T) {
	assert.Equal(t, "Encounter/9", FormatReference("Encounter", "9"))
}

func TestLocalID(t *testing.T) {
	assert.Equal(t, "abc", LocalID("urn:uuid:abc"))
	assert.Equal(t, "Observation/abc", LocalID("Observation/abc"))
}
