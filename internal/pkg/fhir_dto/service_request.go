package fhir_dto

type ServiceRequest struct {
	ResourceType       string            `json:"resourceType"`
	ID                 string            `json:"id,omitempty"`
	Identifier         []Identifier      `json:"identifier,omitempty"`
	Status             string            `json:"status,omitempty"`
	Intent             string            `json:"intent,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Code               CodeableConcept   `json:"code,omitempty"`
	Subject            Reference         `json:"subject"`
	Encounter          *Reference        `json:"encounter,omitempty"`
	Requester          *Reference        `json:"requester,omitempty"`
	OccurrenceDateTime string            `json:"occurrenceDateTime,omitempty"`
	Note               []Annotation      `json:"note,omitempty"`
}
