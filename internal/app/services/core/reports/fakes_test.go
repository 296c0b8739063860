package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"labreport-service/internal/app/config"
	"labreport-service/internal/app/models"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/dto/requests"
	"labreport-service/internal/pkg/fhir_dto"

	"go.uber.org/zap"
)

type fakePatientClient struct {
	patients map[string]*fhir_dto.Patient
	err      error
}

func (f *fakePatientClient) FindPatientByID(ctx context.Context, patientID string) (*fhir_dto.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.patients[patientID], nil
}

type fakeObservationClient struct {
	existing  map[string]*fhir_dto.Observation
	created   []*fhir_dto.Observation
	createErr error
	nextID    int
}

func (f *fakeObservationClient) CreateObservation(ctx context.Context, request *fhir_dto.Observation) (*fhir_dto.Observation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	snapshot := *request
	snapshot.HasMember = append([]fhir_dto.Reference(nil), request.HasMember...)
	snapshot.ID = fmt.Sprintf("obs-%d", f.nextID)
	f.created = append(f.created, &snapshot)
	return &snapshot, nil
}

func (f *fakeObservationClient) FindObservationByID(ctx context.Context, observationID string) (*fhir_dto.Observation, error) {
	return f.existing[observationID], nil
}

type fakeEncounterClient struct {
	existing  map[string]*fhir_dto.Encounter
	active    []fhir_dto.Encounter
	todays    []fhir_dto.Encounter
	created   []*fhir_dto.Encounter
	createErr error
	nextID    int
}

func (f *fakeEncounterClient) CreateEncounter(ctx context.Context, request *fhir_dto.Encounter) (*fhir_dto.Encounter, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	snapshot := *request
	snapshot.ID = fmt.Sprintf("enc-%d", f.nextID)
	f.created = append(f.created, &snapshot)
	return &snapshot, nil
}

func (f *fakeEncounterClient) FindEncounterByID(ctx context.Context, encounterID string) (*fhir_dto.Encounter, error) {
	return f.existing[encounterID], nil
}

func (f *fakeEncounterClient) FindActiveEncountersByPatient(ctx context.Context, patientID string) ([]fhir_dto.Encounter, error) {
	return f.active, nil
}

func (f *fakeEncounterClient) FindEncountersByPatientTypeAndDate(ctx context.Context, patientID, typeCode string, date time.Time) ([]fhir_dto.Encounter, error) {
	return f.todays, nil
}

type fakeDiagnosticReportClient struct {
	existing  map[string]*fhir_dto.DiagnosticReport
	created   *fhir_dto.DiagnosticReport
	createErr error
}

func (f *fakeDiagnosticReportClient) CreateDiagnosticReport(ctx context.Context, request *fhir_dto.DiagnosticReport) (*fhir_dto.DiagnosticReport, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	snapshot := *request
	snapshot.Result = append([]fhir_dto.Reference(nil), request.Result...)
	snapshot.ID = "report-1"
	f.created = &snapshot
	return &snapshot, nil
}

func (f *fakeDiagnosticReportClient) FindDiagnosticReportByID(ctx context.Context, reportID string) (*fhir_dto.DiagnosticReport, error) {
	return f.existing[reportID], nil
}

type fakeServiceRequestClient struct {
	orders map[string]*fhir_dto.ServiceRequest
}

func (f *fakeServiceRequestClient) FindServiceRequestByID(ctx context.Context, serviceRequestID string) (*fhir_dto.ServiceRequest, error) {
	return f.orders[serviceRequestID], nil
}

type fakeMedicationRequestClient struct {
	orders map[string]*fhir_dto.MedicationRequest
}

func (f *fakeMedicationRequestClient) FindMedicationRequestByID(ctx context.Context, medicationRequestID string) (*fhir_dto.MedicationRequest, error) {
	return f.orders[medicationRequestID], nil
}

type fakePractitionerRoleClient struct {
	roles []fhir_dto.PractitionerRole
	err   error
}

func (f *fakePractitionerRoleClient) FindPractitionerRolesByPractitioner(ctx context.Context, practitionerID string) ([]fhir_dto.PractitionerRole, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.roles, nil
}

type fakeJournalRepository struct {
	records []models.IngestionRecord
}

func (f *fakeJournalRepository) InsertIngestionRecord(ctx context.Context, record *models.IngestionRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeJournalRepository) FindIngestionRecordsByRequestID(ctx context.Context, requestID string) ([]models.IngestionRecord, error) {
	var matched []models.IngestionRecord
	for _, record := range f.records {
		if record.RequestID == requestID {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

type fakeEventPublisher struct {
	events []*models.ReportIngestedEvent
	err    error
}

func (f *fakeEventPublisher) PublishReportIngested(ctx context.Context, event *models.ReportIngestedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeStorage struct {
	uploads []string
	err     error
}

func (f *fakeStorage) UploadBase64Object(ctx context.Context, encodedData []byte, contentType, objectName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, objectName)
	return "https://storage.local/lab-reports/" + objectName, nil
}

// testDeps bundles every fake the usecase needs so individual tests only
// touch the ones they care about.
type testDeps struct {
	patients           *fakePatientClient
	observations       *fakeObservationClient
	encounters         *fakeEncounterClient
	diagnosticReports  *fakeDiagnosticReportClient
	serviceRequests    *fakeServiceRequestClient
	medicationRequests *fakeMedicationRequestClient
	practitionerRoles  *fakePractitionerRoleClient
	journal            *fakeJournalRepository
	publisher          *fakeEventPublisher
	storage            *fakeStorage
}

func newTestDeps() *testDeps {
	return &testDeps{
		patients:           &fakePatientClient{patients: map[string]*fhir_dto.Patient{}},
		observations:       &fakeObservationClient{existing: map[string]*fhir_dto.Observation{}},
		encounters:         &fakeEncounterClient{existing: map[string]*fhir_dto.Encounter{}},
		diagnosticReports:  &fakeDiagnosticReportClient{existing: map[string]*fhir_dto.DiagnosticReport{}},
		serviceRequests:    &fakeServiceRequestClient{orders: map[string]*fhir_dto.ServiceRequest{}},
		medicationRequests: &fakeMedicationRequestClient{orders: map[string]*fhir_dto.MedicationRequest{}},
		practitionerRoles:  &fakePractitionerRoleClient{roles: []fhir_dto.PractitionerRole{{ID: "role-1"}}},
		journal:            &fakeJournalRepository{},
		publisher:          &fakeEventPublisher{},
		storage:            &fakeStorage{},
	}
}

func testInternalConfig() *config.InternalConfig {
	return &config.InternalConfig{
		Ingestion: config.AppIngestion{
			LabEncounterTypeCode:          "LAB",
			DefaultVisitTypeCode:          "OUTPATIENT",
			VisitNominalDurationInMinutes: 15,
		},
	}
}

func newTestUsecase(deps *testDeps) *reportUsecase {
	usecase := NewReportUsecase(
		deps.patients,
		deps.observations,
		deps.encounters,
		deps.diagnosticReports,
		deps.serviceRequests,
		deps.medicationRequests,
		deps.practitionerRoles,
		deps.journal,
		deps.publisher,
		deps.storage,
		testInternalConfig(),
		zap.NewNop(),
	)
	return usecase.(*reportUsecase)
}

func testSession() *models.Session {
	return &models.Session{
		SessionID:      "session-1",
		UserID:         "user-1",
		PractitionerID: "practitioner-1",
		LocationID:     "location-1",
		LocationName:   "Main Lab",
	}
}

func mustRaw(resource interface{}) json.RawMessage {
	raw, err := json.Marshal(resource)
	if err != nil {
		panic(err)
	}
	return raw
}

func bundleEntry(fullUrl string, resource interface{}) requests.IngestBundleEntry {
	return requests.IngestBundleEntry{
		FullUrl:  fullUrl,
		Resource: mustRaw(resource),
	}
}

func bundleRequest(entries ...requests.IngestBundleEntry) *requests.IngestBundleRequest {
	return &requests.IngestBundleRequest{
		ResourceType: "Bundle",
		Type:         "collection",
		Entry:        entries,
	}
}

func localRef(id string) string {
	return constvars.FhirLocalReferencePrefix + id
}
