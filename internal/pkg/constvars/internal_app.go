package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_SESSION_DATA_KEY         ContextKey = "session_data"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "LABRPT_SVC_"
)

const (
	MongoCollectionIngestionJournal = "ingestion_journal"
)

const (
	IngestionStageValidating             = "validating"
	IngestionStageResolvingPatient       = "resolving_patient"
	IngestionStageResolvingOrder         = "resolving_order"
	IngestionStageResolvingEncounter     = "resolving_encounter"
	IngestionStagePersistingObservations = "persisting_observations"
	IngestionStageRewritingReferences    = "rewriting_references"
	IngestionStagePersistingReport       = "persisting_report"
	IngestionStageDone                   = "done"
)

const (
	IngestionOutcomeSucceeded = "succeeded"
	IngestionOutcomeFailed    = "failed"
)
