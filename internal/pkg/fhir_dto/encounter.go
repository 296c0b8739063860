package fhir_dto

// Encounter doubles as a visit. A visit is an Encounter without partOf; a
// clinical encounter points at its visit through partOf.
type Encounter struct {
	ResourceType string                 `json:"resourceType"`
	ID           string                 `json:"id,omitempty"`
	Identifier   []Identifier           `json:"identifier,omitempty"`
	Status       string                 `json:"status"`
	Class        Coding                 `json:"class,omitempty"`
	Type         []CodeableConcept      `json:"type,omitempty"`
	Subject      Reference              `json:"subject"`
	Participant  []EncounterParticipant `json:"participant,omitempty"`
	Period       *Period                `json:"period,omitempty"`
	Location     []EncounterLocation    `json:"location,omitempty"`
	PartOf       *Reference             `json:"partOf,omitempty"`
}

type EncounterParticipant struct {
	Type       []CodeableConcept `json:"type,omitempty"`
	Period     *Period           `json:"period,omitempty"`
	Individual *Reference        `json:"individual,omitempty"`
}

type EncounterLocation struct {
	Location Reference `json:"location"`
	Status   string    `json:"status,omitempty"`
}

// IsVisit reports whether the encounter stands on its own rather than
// hanging off a parent visit.
func (e *Encounter) IsVisit() bool {
	return e.PartOf == nil || e.PartOf.Reference == ""
}
