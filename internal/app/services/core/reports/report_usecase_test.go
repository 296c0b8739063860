package reports

import (
	"context"
	"testing"

	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestBundle(t *testing.T) {
	ctx := context.Background()

	t.Run("Panel With Members Persisted Members First", func(t *testing.T) {
		deps := newTestDeps()
		deps.patients.patients["patient-1"] = &fhir_dto.Patient{ID: "patient-1"}
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "final",
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
				Result:       []fhir_dto.Reference{{Reference: localRef("panel")}},
			}),
			bundleEntry(localRef("panel"), &fhir_dto.Observation{
				ResourceType: constvars.ResourceObservation,
				Status:       constvars.ObservationStatusFinal,
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
				HasMember: []fhir_dto.Reference{
					{Reference: localRef("leaf-a")},
					{Reference: localRef("leaf-b")},
				},
			}),
			bundleEntry(localRef("leaf-a"), &fhir_dto.Observation{
				ResourceType: constvars.ResourceObservation,
				Status:       constvars.ObservationStatusFinal,
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
			}),
			bundleEntry(localRef("leaf-b"), &fhir_dto.Observation{
				ResourceType: constvars.ResourceObservation,
				Status:       constvars.ObservationStatusFinal,
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
			}),
		)

		response, err := usecase.IngestBundle(ctx, testSession(), request)
		require.NoError(t, err)

		assert.Equal(t, "report-1", response.ReportID)
		assert.Len(t, response.ObservationIDs, 3)

		require.Len(t, deps.observations.created, 3)
		panel := deps.observations.created[2]
		require.Len(t, panel.HasMember, 2, "panel should be persisted last")
		assert.Equal(t, "Observation/obs-1", panel.HasMember[0].Reference)
		assert.Equal(t, "Observation/obs-2", panel.HasMember[1].Reference)

		require.NotNil(t, deps.diagnosticReports.created)
		assert.Equal(t, "Observation/obs-3", deps.diagnosticReports.created.Result[0].Reference, "report result should point at the persisted panel")

		for _, created := range deps.observations.created {
			assert.Equal(t, "Patient/patient-1", created.Subject.Reference)
			assert.Equal(t, deps.diagnosticReports.created.Encounter.Reference, created.Encounter.Reference, "all resources share one encounter")
		}
	})

	t.Run("No Writes Before Validation Passes", func(t *testing.T) {
		deps := newTestDeps()
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "final",
				Subject:      fhir_dto.Reference{Reference: "Patient/ghost"},
				Result:       []fhir_dto.Reference{{Reference: localRef("obs-a")}},
			}),
			bundleEntry(localRef("obs-a"), &fhir_dto.Observation{
				ResourceType: constvars.ResourceObservation,
				Status:       constvars.ObservationStatusFinal,
				Subject:      fhir_dto.Reference{Reference: "Patient/ghost"},
			}),
		)

		_, err := usecase.IngestBundle(ctx, testSession(), request)

		require.Error(t, err)
		assert.Empty(t, deps.observations.created)
		assert.Empty(t, deps.encounters.created)
		assert.Nil(t, deps.diagnosticReports.created)
	})

	t.Run("Order Reference Stamped On Persisted Resources", func(t *testing.T) {
		deps := newTestDeps()
		deps.patients.patients["patient-1"] = &fhir_dto.Patient{ID: "patient-1"}
		deps.serviceRequests.orders["sr-1"] = &fhir_dto.ServiceRequest{ID: "sr-1"}
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "final",
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
				BasedOn:      []fhir_dto.Reference{{Reference: "ServiceRequest/sr-1"}},
				Result:       []fhir_dto.Reference{{Reference: localRef("obs-a")}},
			}),
			bundleEntry(localRef("obs-a"), &fhir_dto.Observation{
				ResourceType: constvars.ResourceObservation,
				Status:       constvars.ObservationStatusFinal,
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
			}),
		)

		_, err := usecase.IngestBundle(ctx, testSession(), request)
		require.NoError(t, err)

		require.Len(t, deps.observations.created, 1)
		require.Len(t, deps.observations.created[0].BasedOn, 1)
		assert.Equal(t, "ServiceRequest/sr-1", deps.observations.created[0].BasedOn[0].Reference)
		assert.Equal(t, "ServiceRequest/sr-1", deps.diagnosticReports.created.BasedOn[0].Reference)
	})

	t.Run("Inline PresentedForm Offloaded To Object Storage", func(t *testing.T) {
		deps := newTestDeps()
		deps.patients.patients["patient-1"] = &fhir_dto.Patient{ID: "patient-1"}
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "final",
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
				PresentedForm: []fhir_dto.Attachment{
					{ContentType: constvars.MIMEApplicationPDF, Data: "JVBERi0xLjQ="},
				},
			}),
		)

		_, err := usecase.IngestBundle(ctx, testSession(), request)
		require.NoError(t, err)

		require.Len(t, deps.storage.uploads, 1)
		form := deps.diagnosticReports.created.PresentedForm[0]
		assert.Empty(t, form.Data, "inline payload must not reach the FHIR server")
		assert.Contains(t, form.Url, "https://storage.local/")
	})

	t.Run("Journal And Event Emitted On Success", func(t *testing.T) {
		deps := newTestDeps()
		deps.patients.patients["patient-1"] = &fhir_dto.Patient{ID: "patient-1"}
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "registered",
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
			}),
		)

		response, err := usecase.IngestBundle(ctx, testSession(), request)
		require.NoError(t, err)

		require.Len(t, deps.journal.records, 1)
		record := deps.journal.records[0]
		assert.Equal(t, constvars.IngestionOutcomeSucceeded, record.Outcome)
		assert.Equal(t, constvars.IngestionStageDone, record.Stage)
		assert.Equal(t, "user-1", record.UserID)
		assert.Equal(t, response.ReportID, record.ReportID)
		assert.NotEmpty(t, record.BundleHash, "journal records the bundle fingerprint")

		require.Len(t, deps.publisher.events, 1)
		assert.Equal(t, response.ReportID, deps.publisher.events[0].ReportID)
		assert.Equal(t, "patient-1", deps.publisher.events[0].PatientID)
	})

	t.Run("Publish Failure Does Not Fail The Call", func(t *testing.T) {
		deps := newTestDeps()
		deps.patients.patients["patient-1"] = &fhir_dto.Patient{ID: "patient-1"}
		deps.publisher.err = assert.AnError
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "registered",
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
			}),
		)

		response, err := usecase.IngestBundle(ctx, testSession(), request)

		require.NoError(t, err)
		assert.NotEmpty(t, response.ReportID)
	})

	t.Run("Persist Failure Journaled With Stage", func(t *testing.T) {
		deps := newTestDeps()
		deps.patients.patients["patient-1"] = &fhir_dto.Patient{ID: "patient-1"}
		deps.observations.createErr = assert.AnError
		usecase := newTestUsecase(deps)

		request := bundleRequest(
			bundleEntry(localRef("report"), &fhir_dto.DiagnosticReport{
				ResourceType: constvars.ResourceDiagnosticReport,
				Status:       "final",
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
				Result:       []fhir_dto.Reference{{Reference: localRef("obs-a")}},
			}),
			bundleEntry(localRef("obs-a"), &fhir_dto.Observation{
				ResourceType: constvars.ResourceObservation,
				Status:       constvars.ObservationStatusFinal,
				Subject:      fhir_dto.Reference{Reference: "Patient/patient-1"},
			}),
		)

		_, err := usecase.IngestBundle(ctx, testSession(), request)

		require.Error(t, err)
		require.Len(t, deps.journal.records, 1)
		assert.Equal(t, constvars.IngestionOutcomeFailed, deps.journal.records[0].Outcome)
		assert.Equal(t, constvars.IngestionStagePersistingObservations, deps.journal.records[0].Stage)
	})
}

func TestGetReportByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		deps := newTestDeps()
		deps.diagnosticReports.existing["report-1"] = &fhir_dto.DiagnosticReport{ID: "report-1"}
		usecase := newTestUsecase(deps)

		report, err := usecase.GetReportByID(ctx, "report-1")
		require.NoError(t, err)
		assert.Equal(t, "report-1", report.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		deps := newTestDeps()
		usecase := newTestUsecase(deps)

		_, err := usecase.GetReportByID(ctx, "ghost")

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
	})
}

func TestGetReportResults(t *testing.T) {
	ctx := context.Background()

	deps := newTestDeps()
	deps.diagnosticReports.existing["report-1"] = &fhir_dto.DiagnosticReport{
		ID: "report-1",
		Result: []fhir_dto.Reference{
			{Reference: "Observation/obs-1"},
			{Reference: "Observation/obs-gone"},
		},
	}
	deps.observations.existing["obs-1"] = &fhir_dto.Observation{ID: "obs-1"}
	usecase := newTestUsecase(deps)

	results, err := usecase.GetReportResults(ctx, "report-1")

	require.NoError(t, err)
	require.Len(t, results, 1, "missing observations are skipped, not fatal")
	assert.Equal(t, "obs-1", results[0].ID)
}
