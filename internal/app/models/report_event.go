package models

// ReportIngestedEvent is the fire-and-forget message published after a
// bundle was fully persisted.
type ReportIngestedEvent struct {
	RequestID      string   `json:"request_id"`
	ReportID       string   `json:"report_id"`
	EncounterID    string   `json:"encounter_id"`
	ObservationIDs []string `json:"observation_ids"`
	PatientID      string   `json:"patient_id"`
}
