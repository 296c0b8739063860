package exceptions

import (
	"fmt"
	"labreport-service/internal/pkg/constvars"
)

var (
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCreateHTTPRequest)
	}
	ErrSendHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSendHTTPRequest)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}

	// Bundle ingestion
	ErrBundleMissingReport = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientBundleMissingReport, constvars.ErrDevBundleMissingReport)
	}
	ErrBundleMissingResultsOrAttachment = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientBundleMissingResults, constvars.ErrDevBundleMissingResults)
	}
	ErrInvalidPatientReference = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientInvalidPatientReference, constvars.ErrDevInvalidPatientReference)
	}
	ErrPatientReferenceMismatch = func(err error, localID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientPatientMismatch, fmt.Sprintf("%s (entry %s)", constvars.ErrDevPatientReferenceMismatch, localID))
	}
	ErrInvalidResultReference = func(err error, reference string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientInvalidResultReference, fmt.Sprintf("%s (%s)", constvars.ErrDevInvalidResultReference, reference))
	}
	ErrInvalidOrderReference = func(err error, reference string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientInvalidOrderReference, fmt.Sprintf("%s (%s)", constvars.ErrDevInvalidOrderReference, reference))
	}
	ErrInvalidEncounterReference = func(err error, reference string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientInvalidEncounterReference, fmt.Sprintf("%s (%s)", constvars.ErrDevInvalidEncounterReference, reference))
	}
	ErrUnsupportedReferenceKind = func(err error, reference string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientUnsupportedReferenceKind, fmt.Sprintf("%s (%s)", constvars.ErrDevUnsupportedReferenceKind, reference))
	}
	ErrUnprocessableConfiguration = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientContactAdministrator, fmt.Sprintf("%s (%s)", constvars.ErrDevUnprocessableConfiguration, key))
	}
	ErrUnidentifiedProvider = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientContactAdministrator, constvars.ErrDevUnidentifiedProvider)
	}
	ErrReferenceMapInvariant = func(err error, localID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s (%s)", constvars.ErrDevReferenceMapMissingEntry, localID))
	}

	ErrResourceNotFound = func(err error, resourceType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientCannotProcessRequest, fmt.Sprintf("%s (%s)", constvars.ErrDevServerNotFound, resourceType))
	}

	// FHIR client
	ErrCreateFHIRResource = func(err error, resourceType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s (%s)", constvars.ErrDevFHIRCreateResource, resourceType))
	}
	ErrUpdateFHIRResource = func(err error, resourceType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s (%s)", constvars.ErrDevFHIRUpdateResource, resourceType))
	}
	ErrGetFHIRResource = func(err error, resourceType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s (%s)", constvars.ErrDevFHIRGetResource, resourceType))
	}
	ErrSearchFHIRResource = func(err error, resourceType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s (%s)", constvars.ErrDevFHIRSearchResource, resourceType))
	}
	ErrDecodeResponse = func(err error, resourceType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s (%s)", constvars.ErrDevFHIRDecodeResponse, resourceType))
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevFHIRMarshalResource)
	}

	// Auth
	ErrTokenMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevAuthTokenMissing)
	}
	ErrTokenInvalidOrExpired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenInvalid)
	}
	ErrTokenGenerate = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevAuthGenerateToken)
	}
	ErrInvalidSession = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthInvalidSession)
	}

	// Redis
	ErrRedisStoreSession = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisStoreSession)
	}
	ErrRedisGetSession = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisGetSession)
	}
	ErrRedisDeleteKey = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteKey)
	}

	// Mongo DB
	ErrMongoDBInsertDocument = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertDocument)
	}
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindDocument)
	}

	// Object storage
	ErrStorageUploadObject = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevStorageUploadObject)
	}

	// Messaging
	ErrMessagingPublish = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMessagingPublish)
	}
)
