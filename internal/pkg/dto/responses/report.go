package responses

// IngestBundleResponse reports the identifiers assigned during a successful
// bundle ingestion, in the order the observations were persisted.
type IngestBundleResponse struct {
	ReportID       string   `json:"report_id"`
	EncounterID    string   `json:"encounter_id"`
	ObservationIDs []string `json:"observation_ids"`
}
