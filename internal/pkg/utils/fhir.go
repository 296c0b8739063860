package utils

import (
	"fmt"
	"strings"

	"labreport-service/internal/pkg/constvars"
)

// FormatReference renders a relative FHIR reference like "Observation/42".
func FormatReference(resourceType, id string) string {
	return fmt.Sprintf("%s/%s", resourceType, id)
}

// ReferenceComponents splits a relative reference into resource type and id.
// Local references and absolute URLs yield ok=false.
func ReferenceComponents(reference string) (resourceType, id string, ok bool) {
	if reference == "" || IsLocalReference(reference) {
		return "", "", false
	}
	if strings.Contains(reference, "://") {
		return "", "", false
	}
	parts := strings.Split(reference, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IsLocalReference reports whether the reference points inside the bundle.
func IsLocalReference(reference string) bool {
	return strings.HasPrefix(reference, constvars.FhirLocalReferencePrefix)
}

// LocalID strips the local reference prefix, returning the bare id.
func LocalID(reference string) string {
	return strings.TrimPrefix(reference, constvars.FhirLocalReferencePrefix)
}
