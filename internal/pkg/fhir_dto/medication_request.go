package fhir_dto

type MedicationRequest struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id,omitempty"`
	Identifier                []Identifier     `json:"identifier,omitempty"`
	Status                    string           `json:"status,omitempty"`
	Intent                    string           `json:"intent,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	Subject                   Reference        `json:"subject"`
	Encounter                 *Reference       `json:"encounter,omitempty"`
	Requester                 *Reference       `json:"requester,omitempty"`
	AuthoredOn                string           `json:"authoredOn,omitempty"`
	Note                      []Annotation     `json:"note,omitempty"`
}
