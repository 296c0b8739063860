package models

import "time"

// IngestionRecord is the journal document written to mongo for every bundle
// ingestion attempt that passed validation, successful or not.
type IngestionRecord struct {
	RequestID      string    `bson:"request_id" json:"request_id"`
	BundleHash     string    `bson:"bundle_hash,omitempty" json:"bundle_hash,omitempty"`
	UserID         string    `bson:"user_id" json:"user_id"`
	Stage          string    `bson:"stage" json:"stage"`
	Outcome        string    `bson:"outcome" json:"outcome"`
	ReportID       string    `bson:"report_id,omitempty" json:"report_id,omitempty"`
	EncounterID    string    `bson:"encounter_id,omitempty" json:"encounter_id,omitempty"`
	ObservationIDs []string  `bson:"observation_ids,omitempty" json:"observation_ids,omitempty"`
	ErrorMessage   string    `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
