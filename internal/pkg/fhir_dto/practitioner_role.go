package fhir_dto

type PractitionerRole struct {
	ResourceType string            `json:"resourceType,omitempty"`
	ID           string            `json:"id,omitempty"`
	Active       bool              `json:"active,omitempty"`
	Practitioner Reference         `json:"practitioner,omitempty"`
	Organization Reference         `json:"organization,omitempty"`
	Code         []CodeableConcept `json:"code,omitempty"`
	Specialty    []CodeableConcept `json:"specialty,omitempty"`
	Location     []Reference       `json:"location,omitempty"`
	Period       *Period           `json:"period,omitempty"`
}
