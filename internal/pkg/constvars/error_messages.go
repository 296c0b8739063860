package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"oneof":    "must be one of [%s]",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"base64":   "must be a valid base64 string",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"

	ErrClientBundleMissingReport      = "the bundle does not contain a diagnostic report"
	ErrClientBundleMissingResults     = "a finalized report needs at least one result or an attached document"
	ErrClientInvalidPatientReference  = "the report does not reference a known patient"
	ErrClientPatientMismatch          = "one of the results belongs to a different patient than the report"
	ErrClientInvalidResultReference   = "one of the report results could not be found"
	ErrClientInvalidOrderReference    = "the referenced order could not be found"
	ErrClientInvalidEncounterReference = "the referenced encounter could not be found"
	ErrClientUnsupportedReferenceKind = "the bundle references a resource type that is not supported"

	ErrClientContactAdministrator = "the service is misconfigured, please contact your administrator"
)

// Error messages for developers
const (
	ErrDevInvalidInput    = "invalid input"
	ErrDevCannotParseJSON = "cannot parse JSON"

	ErrDevCreateHTTPRequest = "failed to create HTTP request"
	ErrDevSendHTTPRequest   = "failed to send HTTP request"

	// Validation messages
	ErrDevValidationFailed      = "validation failed"
	ErrDevInvalidRequestPayload = "invalid request payload"

	// Bundle ingestion messages
	ErrDevBundleMissingReport          = "bundle has no diagnostic report entry"
	ErrDevBundleMissingResults         = "non-draft report has neither results nor presentedForm"
	ErrDevInvalidPatientReference      = "report subject is missing or unresolvable"
	ErrDevPatientReferenceMismatch     = "observation subject does not match report subject"
	ErrDevInvalidResultReference       = "report result reference is unresolvable"
	ErrDevInvalidOrderReference        = "report basedOn reference is unresolvable"
	ErrDevInvalidEncounterReference    = "report encounter reference is unresolvable"
	ErrDevUnsupportedReferenceKind     = "reference targets an unsupported resource kind"
	ErrDevUnprocessableConfiguration   = "ingestion configuration is incomplete"
	ErrDevUnidentifiedProvider         = "authenticated user has no provider registration"
	ErrDevReferenceMapMissingEntry     = "local reference has no entry in the reference map"

	// FHIR client messages
	ErrDevFHIRCreateResource   = "failed to create FHIR resource"
	ErrDevFHIRUpdateResource   = "failed to update FHIR resource"
	ErrDevFHIRGetResource      = "failed to get FHIR resource"
	ErrDevFHIRSearchResource   = "failed to search FHIR resources"
	ErrDevFHIRDecodeResponse   = "failed to decode FHIR response"
	ErrDevFHIRMarshalResource  = "failed to marshal FHIR resource"

	// Authentication messages
	ErrDevAuthSigningMethod  = "unexpected signing method"
	ErrDevAuthTokenInvalid   = "invalid token"
	ErrDevAuthTokenExpired   = "token expired"
	ErrDevAuthTokenMissing   = "token missing"
	ErrDevAuthInvalidSession = "invalid session"
	ErrDevAuthGenerateToken  = "failed to generate token"

	// Database messages
	ErrDevDBFailedToInsertDocument = "failed to insert document into database"
	ErrDevDBFailedToFindDocument   = "failed when do find document on database"
	ErrDevDBConnectionFailed       = "failed to connect to database"

	// Redis messages
	ErrDevRedisStoreSession = "failed to store session data into redis"
	ErrDevRedisGetSession   = "failed to get session data from redis"
	ErrDevRedisDeleteKey    = "failed to delete key from redis"

	// Storage messages
	ErrDevStorageUploadObject = "failed to upload object to storage"

	// Messaging messages
	ErrDevMessagingPublish = "failed to publish message to broker"

	// Server messages
	ErrDevServerInternalError    = "internal server error"
	ErrDevServerBadRequest       = "bad request"
	ErrDevServerNotFound         = "resource not found"
	ErrDevServerDeadlineExceeded = "deadline exceeded"
)
