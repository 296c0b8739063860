package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"labreport-service/internal/app/config"
	"labreport-service/internal/app/contracts"
	"labreport-service/internal/app/models"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/dto/requests"
	"labreport-service/internal/pkg/dto/responses"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
	"labreport-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type reportUsecase struct {
	PatientClient           contracts.PatientFhirClient
	ObservationClient       contracts.ObservationFhirClient
	EncounterClient         contracts.EncounterFhirClient
	DiagnosticReportClient  contracts.DiagnosticReportFhirClient
	ServiceRequestClient    contracts.ServiceRequestFhirClient
	MedicationRequestClient contracts.MedicationRequestFhirClient
	PractitionerRoleClient  contracts.PractitionerRoleFhirClient
	JournalRepository       contracts.IngestionJournalRepository
	EventPublisher          contracts.ReportEventPublisher
	Storage                 contracts.Storage
	InternalConfig          *config.InternalConfig
	Log                     *zap.Logger
}

func NewReportUsecase(
	patientClient contracts.PatientFhirClient,
	observationClient contracts.ObservationFhirClient,
	encounterClient contracts.EncounterFhirClient,
	diagnosticReportClient contracts.DiagnosticReportFhirClient,
	serviceRequestClient contracts.ServiceRequestFhirClient,
	medicationRequestClient contracts.MedicationRequestFhirClient,
	practitionerRoleClient contracts.PractitionerRoleFhirClient,
	journalRepository contracts.IngestionJournalRepository,
	eventPublisher contracts.ReportEventPublisher,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	log *zap.Logger,
) contracts.ReportUsecase {
	return &reportUsecase{
		PatientClient:           patientClient,
		ObservationClient:       observationClient,
		EncounterClient:         encounterClient,
		DiagnosticReportClient:  diagnosticReportClient,
		ServiceRequestClient:    serviceRequestClient,
		MedicationRequestClient: medicationRequestClient,
		PractitionerRoleClient:  practitionerRoleClient,
		JournalRepository:       journalRepository,
		EventPublisher:          eventPublisher,
		Storage:                 storage,
		InternalConfig:          internalConfig,
		Log:                     log,
	}
}

// IngestBundle runs the whole pipeline: validate, resolve, provision an
// encounter, persist observations members-first, then persist the report.
// No writes happen before validation passes; once writing starts the call
// fails fast and the journal records how far it got.
func (uc *reportUsecase) IngestBundle(ctx context.Context, session *models.Session, request *requests.IngestBundleRequest) (*responses.IngestBundleResponse, error) {
	requestID := utils.GetRequestID(ctx)
	bundleHash := hashBundle(request)

	index, err := buildBundleIndex(request)
	if err != nil {
		return nil, err
	}

	resolver := newReferenceResolver(
		index,
		uc.PatientClient,
		uc.ObservationClient,
		uc.EncounterClient,
		uc.ServiceRequestClient,
		uc.MedicationRequestClient,
	)

	validator := newBundleValidator(resolver)
	patient, err := validator.Validate(ctx, index)
	if err != nil {
		return nil, err
	}

	stage := constvars.IngestionStageResolvingOrder
	var order *resolvedOrder
	if len(index.Report.BasedOn) > 0 && index.Report.BasedOn[0].Reference != "" {
		order, err = resolver.ResolveOrder(ctx, index.Report.BasedOn[0].Reference)
		if err != nil {
			uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
			return nil, err
		}
	}

	stage = constvars.IngestionStageResolvingEncounter
	provisioner := newEncounterProvisioner(uc.EncounterClient, uc.PractitionerRoleClient, uc.InternalConfig.Ingestion, uc.Log)
	encounter, err := provisioner.Provision(ctx, session, resolver, patient, index.Report, order)
	if err != nil {
		uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
		return nil, err
	}
	encounterRef := utils.FormatReference(constvars.ResourceEncounter, encounter.ID)
	patientRef := utils.FormatReference(constvars.ResourcePatient, patient.ID)

	stage = constvars.IngestionStagePersistingObservations
	entries, err := collectEmbeddedObservations(index)
	if err != nil {
		uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
		return nil, err
	}
	entries = sortObservationsByDepth(entries, index.Aliases)

	refMap := make(map[string]string, len(entries))
	observationIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		observation := entry.Observation
		observation.ID = ""
		observation.Subject = fhir_dto.Reference{Reference: patientRef}
		observation.Encounter = &fhir_dto.Reference{Reference: encounterRef}
		if order != nil {
			observation.BasedOn = append(observation.BasedOn, fhir_dto.Reference{Reference: order.Reference})
		}

		if err := rewriteMemberReferences(observation, index.Aliases, refMap); err != nil {
			uc.logInvariantViolation(requestID, entry.LocalID, err)
			uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
			return nil, err
		}

		created, err := uc.ObservationClient.CreateObservation(ctx, observation)
		if err != nil {
			uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
			return nil, err
		}

		refMap[entry.LocalID] = utils.FormatReference(constvars.ResourceObservation, created.ID)
		observationIDs = append(observationIDs, created.ID)
	}

	stage = constvars.IngestionStageRewritingReferences
	report := index.Report
	if err := rewriteResultReferences(report, index.Aliases, refMap); err != nil {
		uc.logInvariantViolation(requestID, index.ReportLocal, err)
		uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
		return nil, err
	}

	stage = constvars.IngestionStagePersistingReport
	if err := uc.offloadPresentedForms(ctx, report); err != nil {
		uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
		return nil, err
	}

	report.ID = ""
	report.Subject = fhir_dto.Reference{Reference: patientRef}
	report.Encounter = &fhir_dto.Reference{Reference: encounterRef}
	if order != nil {
		report.BasedOn = []fhir_dto.Reference{{Reference: order.Reference}}
	}

	createdReport, err := uc.DiagnosticReportClient.CreateDiagnosticReport(ctx, report)
	if err != nil {
		uc.journalFailure(ctx, session, requestID, bundleHash, stage, err)
		return nil, err
	}

	uc.journalSuccess(ctx, session, requestID, bundleHash, createdReport.ID, encounter.ID, observationIDs)
	uc.publishIngested(ctx, requestID, createdReport.ID, encounter.ID, patient.ID, observationIDs)

	uc.Log.Info("Bundle ingested",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReportIDKey, createdReport.ID),
		zap.String(constvars.LoggingEncounterIDKey, encounter.ID),
		zap.Int("observation_count", len(observationIDs)),
	)

	return &responses.IngestBundleResponse{
		ReportID:       createdReport.ID,
		EncounterID:    encounter.ID,
		ObservationIDs: observationIDs,
	}, nil
}

func (uc *reportUsecase) GetReportByID(ctx context.Context, reportID string) (*fhir_dto.DiagnosticReport, error) {
	report, err := uc.DiagnosticReportClient.FindDiagnosticReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, exceptions.ErrResourceNotFound(nil, constvars.ResourceDiagnosticReport)
	}
	return report, nil
}

func (uc *reportUsecase) GetReportResults(ctx context.Context, reportID string) ([]fhir_dto.Observation, error) {
	report, err := uc.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	results := make([]fhir_dto.Observation, 0, len(report.Result))
	for _, result := range report.Result {
		resourceType, id, ok := utils.ReferenceComponents(result.Reference)
		if !ok || resourceType != constvars.ResourceObservation {
			continue
		}
		observation, err := uc.ObservationClient.FindObservationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if observation != nil {
			results = append(results, *observation)
		}
	}
	return results, nil
}

// GetIngestionRecords exposes the mongo journal for a given request id, so
// a failed ingest can be traced to the stage it died in.
func (uc *reportUsecase) GetIngestionRecords(ctx context.Context, requestID string) ([]models.IngestionRecord, error) {
	return uc.JournalRepository.FindIngestionRecordsByRequestID(ctx, requestID)
}

// collectEmbeddedObservations gathers the report's embedded result
// observations plus every embedded observation reachable through hasMember,
// deduplicated, in bundle entry order.
func collectEmbeddedObservations(index *bundleIndex) ([]observationEntry, error) {
	needed := make(map[string]*fhir_dto.Observation)

	var collect func(reference string) error
	collect = func(reference string) error {
		canonical, ok := index.Aliases[reference]
		if !ok {
			return nil
		}
		if _, done := needed[canonical]; done {
			return nil
		}
		resource := index.Resources[canonical]
		if resource.Header.ResourceType != constvars.ResourceObservation {
			return nil
		}
		observation := new(fhir_dto.Observation)
		if err := json.Unmarshal(resource.Raw, observation); err != nil {
			return exceptions.ErrCannotParseJSON(err)
		}
		needed[canonical] = observation
		for _, member := range observation.HasMember {
			if err := collect(member.Reference); err != nil {
				return err
			}
		}
		return nil
	}

	for _, result := range index.Report.Result {
		if err := collect(result.Reference); err != nil {
			return nil, err
		}
	}

	entries := make([]observationEntry, 0, len(needed))
	for _, localID := range index.EntryOrder {
		if observation, ok := needed[localID]; ok {
			entries = append(entries, observationEntry{LocalID: localID, Observation: observation})
		}
	}
	return entries, nil
}

// offloadPresentedForms moves inline base64 attachments into object storage
// and replaces them with the object URL. Attachments already carrying a URL
// pass through untouched.
func (uc *reportUsecase) offloadPresentedForms(ctx context.Context, report *fhir_dto.DiagnosticReport) error {
	for i, attachment := range report.PresentedForm {
		if attachment.Data == "" {
			continue
		}
		extension := ".bin"
		if attachment.ContentType == constvars.MIMEApplicationPDF {
			extension = ".pdf"
		}
		objectName := utils.GenerateObjectName("presented-forms", utils.GetRequestID(ctx), extension)
		url, err := uc.Storage.UploadBase64Object(ctx, []byte(attachment.Data), attachment.ContentType, objectName)
		if err != nil {
			return err
		}
		report.PresentedForm[i].Url = url
		report.PresentedForm[i].Data = ""
	}
	return nil
}

func (uc *reportUsecase) journalSuccess(ctx context.Context, session *models.Session, requestID, bundleHash, reportID, encounterID string, observationIDs []string) {
	record := &models.IngestionRecord{
		RequestID:      requestID,
		BundleHash:     bundleHash,
		UserID:         sessionUserID(session),
		Stage:          constvars.IngestionStageDone,
		Outcome:        constvars.IngestionOutcomeSucceeded,
		ReportID:       reportID,
		EncounterID:    encounterID,
		ObservationIDs: observationIDs,
		CreatedAt:      time.Now(),
	}
	if err := uc.JournalRepository.InsertIngestionRecord(ctx, record); err != nil {
		uc.Log.Warn("Failed to journal ingestion outcome",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}

func (uc *reportUsecase) journalFailure(ctx context.Context, session *models.Session, requestID, bundleHash, stage string, cause error) {
	record := &models.IngestionRecord{
		RequestID:    requestID,
		BundleHash:   bundleHash,
		UserID:       sessionUserID(session),
		Stage:        stage,
		Outcome:      constvars.IngestionOutcomeFailed,
		ErrorMessage: cause.Error(),
		CreatedAt:    time.Now(),
	}
	if err := uc.JournalRepository.InsertIngestionRecord(ctx, record); err != nil {
		uc.Log.Warn("Failed to journal ingestion outcome",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}

// publishIngested is fire and forget: a broker outage never fails a call
// whose resources are already persisted.
func (uc *reportUsecase) publishIngested(ctx context.Context, requestID, reportID, encounterID, patientID string, observationIDs []string) {
	event := &models.ReportIngestedEvent{
		RequestID:      requestID,
		ReportID:       reportID,
		EncounterID:    encounterID,
		ObservationIDs: observationIDs,
		PatientID:      patientID,
	}
	if err := uc.EventPublisher.PublishReportIngested(ctx, event); err != nil {
		uc.Log.Warn("Failed to publish report ingested event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReportIDKey, reportID),
			zap.Error(err),
		)
	}
}

func (uc *reportUsecase) logInvariantViolation(requestID, localID string, err error) {
	uc.Log.Error(fmt.Sprintf("Reference map invariant violated: %s", err.Error()),
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingLocalIDKey, localID),
	)
}

// hashBundle fingerprints the submitted entries so resubmissions of the same
// document are recognizable in the journal.
func hashBundle(request *requests.IngestBundleRequest) string {
	raw, err := json.Marshal(request.Entry)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func sessionUserID(session *models.Session) string {
	if session == nil {
		return ""
	}
	return session.UserID
}
