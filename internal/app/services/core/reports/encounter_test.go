package reports

import (
	"context"
	"testing"
	"time"

	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvisioner(deps *testDeps) *encounterProvisioner {
	return newEncounterProvisioner(
		deps.encounters,
		deps.practitionerRoles,
		testInternalConfig().Ingestion,
		zap.NewNop(),
	)
}

func indexWithReport(t *testing.T, report *fhir_dto.DiagnosticReport, extra ...interface{}) *bundleIndex {
	t.Helper()
	entries := bundleRequest(bundleEntry(localRef("report"), report))
	for i, resource := range extra {
		entries.Entry = append(entries.Entry, bundleEntry(localRef("extra-"+string(rune('a'+i))), resource))
	}
	index, err := buildBundleIndex(entries)
	require.NoError(t, err)
	return index
}

func TestEncounterProvisioner(t *testing.T) {
	ctx := context.Background()
	patient := &fhir_dto.Patient{ID: "patient-1"}

	t.Run("Embedded Encounter Is Always Created Fresh", func(t *testing.T) {
		deps := newTestDeps()
		report := &fhir_dto.DiagnosticReport{
			ResourceType: constvars.ResourceDiagnosticReport,
			Status:       "final",
			Encounter:    &fhir_dto.Reference{Reference: localRef("extra-a")},
		}
		embedded := &fhir_dto.Encounter{
			ResourceType: constvars.ResourceEncounter,
			ID:           "client-side-id",
			Status:       constvars.EncounterStatusInProgress,
		}
		index := indexWithReport(t, report, embedded)
		resolver := newTestResolver(deps, index)

		encounter, err := newTestProvisioner(deps).Provision(ctx, testSession(), resolver, patient, report, nil)

		require.NoError(t, err)
		require.Len(t, deps.encounters.created, 1)
		assert.Equal(t, "enc-1", encounter.ID, "client-supplied id must not survive")
		assert.Equal(t, "Patient/patient-1", encounter.Subject.Reference)
	})

	t.Run("Indirect Encounter Must Exist", func(t *testing.T) {
		deps := newTestDeps()
		report := &fhir_dto.DiagnosticReport{
			ResourceType: constvars.ResourceDiagnosticReport,
			Status:       "final",
			Encounter:    &fhir_dto.Reference{Reference: "Encounter/ghost"},
		}
		index := indexWithReport(t, report)
		resolver := newTestResolver(deps, index)

		_, err := newTestProvisioner(deps).Provision(ctx, testSession(), resolver, patient, report, nil)

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, constvars.ErrDevInvalidEncounterReference)
		assert.Empty(t, deps.encounters.created, "a missing indirect encounter must not trigger creation")
	})

	t.Run("Indirect Encounter Is Reused As Is", func(t *testing.T) {
		deps := newTestDeps()
		deps.encounters.existing["enc-existing"] = &fhir_dto.Encounter{
			ResourceType: constvars.ResourceEncounter,
			ID:           "enc-existing",
			Status:       constvars.EncounterStatusInProgress,
		}
		report := &fhir_dto.DiagnosticReport{
			ResourceType: constvars.ResourceDiagnosticReport,
			Status:       "final",
			Encounter:    &fhir_dto.Reference{Reference: "Encounter/enc-existing"},
		}
		index := indexWithReport(t, report)
		resolver := newTestResolver(deps, index)

		encounter, err := newTestProvisioner(deps).Provision(ctx, testSession(), resolver, patient, report, nil)

		require.NoError(t, err)
		assert.Equal(t, "enc-existing", encounter.ID)
		assert.Empty(t, deps.encounters.created)
	})
}

func TestDefaultLabEncounterPolicy(t *testing.T) {
	ctx := context.Background()
	patient := &fhir_dto.Patient{ID: "patient-1"}

	reportWithoutEncounter := &fhir_dto.DiagnosticReport{
		ResourceType: constvars.ResourceDiagnosticReport,
		Status:       "final",
	}

	provision := func(deps *testDeps, order *resolvedOrder) (*fhir_dto.Encounter, error) {
		index := indexWithReport(t, reportWithoutEncounter)
		resolver := newTestResolver(deps, index)
		return newTestProvisioner(deps).Provision(ctx, testSession(), resolver, patient, reportWithoutEncounter, order)
	}

	t.Run("Order Visit Wins", func(t *testing.T) {
		deps := newTestDeps()
		deps.encounters.existing["enc-visit"] = &fhir_dto.Encounter{
			ResourceType: constvars.ResourceEncounter,
			ID:           "enc-visit",
			Status:       constvars.EncounterStatusInProgress,
		}

		encounter, err := provision(deps, &resolvedOrder{
			Reference:    "ServiceRequest/sr-1",
			EncounterRef: "Encounter/enc-visit",
		})

		require.NoError(t, err)
		require.NotNil(t, encounter.PartOf)
		assert.Equal(t, "Encounter/enc-visit", encounter.PartOf.Reference)
	})

	t.Run("Order Encounter Resolves To Its Parent Visit", func(t *testing.T) {
		deps := newTestDeps()
		deps.encounters.existing["enc-child"] = &fhir_dto.Encounter{
			ResourceType: constvars.ResourceEncounter,
			ID:           "enc-child",
			Status:       constvars.EncounterStatusInProgress,
			PartOf:       &fhir_dto.Reference{Reference: "Encounter/enc-visit"},
		}
		deps.encounters.existing["enc-visit"] = &fhir_dto.Encounter{
			ResourceType: constvars.ResourceEncounter,
			ID:           "enc-visit",
			Status:       constvars.EncounterStatusInProgress,
		}

		encounter, err := provision(deps, &resolvedOrder{
			Reference:    "ServiceRequest/sr-1",
			EncounterRef: "Encounter/enc-child",
		})

		require.NoError(t, err)
		assert.Equal(t, "Encounter/enc-visit", encounter.PartOf.Reference)
	})

	t.Run("Active Visit Reused", func(t *testing.T) {
		deps := newTestDeps()
		deps.encounters.active = []fhir_dto.Encounter{
			{
				ResourceType: constvars.ResourceEncounter,
				ID:           "enc-child",
				Status:       constvars.EncounterStatusInProgress,
				PartOf:       &fhir_dto.Reference{Reference: "Encounter/other"},
			},
			{
				ResourceType: constvars.ResourceEncounter,
				ID:           "enc-active-visit",
				Status:       constvars.EncounterStatusInProgress,
			},
		}

		encounter, err := provision(deps, nil)

		require.NoError(t, err)
		assert.Equal(t, "Encounter/enc-active-visit", encounter.PartOf.Reference, "first active visit should be picked, skipping child encounters")
	})

	t.Run("Todays Latest Visit Of Default Type Reused", func(t *testing.T) {
		deps := newTestDeps()
		deps.encounters.todays = []fhir_dto.Encounter{
			{
				ResourceType: constvars.ResourceEncounter,
				ID:           "enc-morning",
				Status:       constvars.EncounterStatusFinished,
				Period:       &fhir_dto.Period{Start: time.Now().Add(-4 * time.Hour).Format(time.RFC3339)},
			},
			{
				ResourceType: constvars.ResourceEncounter,
				ID:           "enc-noon",
				Status:       constvars.EncounterStatusFinished,
				Period:       &fhir_dto.Period{Start: time.Now().Add(-1 * time.Hour).Format(time.RFC3339)},
			},
		}

		encounter, err := provision(deps, nil)

		require.NoError(t, err)
		assert.Equal(t, "Encounter/enc-noon", encounter.PartOf.Reference)
	})

	t.Run("Visit Created In Absentia", func(t *testing.T) {
		deps := newTestDeps()

		encounter, err := provision(deps, nil)

		require.NoError(t, err)
		require.Len(t, deps.encounters.created, 2, "the visit and the lab encounter should both be created")

		visit := deps.encounters.created[0]
		assert.True(t, visit.IsVisit())
		assert.Equal(t, constvars.EncounterStatusInProgress, visit.Status)
		require.NotNil(t, visit.Period)
		assert.NotEmpty(t, visit.Period.End, "in-absentia visit carries a nominal duration")

		assert.Equal(t, "Encounter/"+visit.ID, encounter.PartOf.Reference)
		assert.Equal(t, "Practitioner/practitioner-1", encounter.Participant[0].Individual.Reference)
		assert.Equal(t, "Location/location-1", encounter.Location[0].Location.Reference)
	})

	t.Run("Missing Lab Encounter Type Code", func(t *testing.T) {
		deps := newTestDeps()
		index := indexWithReport(t, reportWithoutEncounter)
		resolver := newTestResolver(deps, index)
		provisioner := newEncounterProvisioner(deps.encounters, deps.practitionerRoles, testInternalConfig().Ingestion, zap.NewNop())
		provisioner.ingestionConfig.LabEncounterTypeCode = ""

		_, err := provisioner.Provision(ctx, testSession(), resolver, patient, reportWithoutEncounter, nil)

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, constvars.ErrDevUnprocessableConfiguration)
	})

	t.Run("Session Without Location", func(t *testing.T) {
		deps := newTestDeps()
		index := indexWithReport(t, reportWithoutEncounter)
		resolver := newTestResolver(deps, index)
		session := testSession()
		session.LocationID = ""

		_, err := newTestProvisioner(deps).Provision(ctx, session, resolver, patient, reportWithoutEncounter, nil)

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, constvars.ErrDevUnprocessableConfiguration)
	})

	t.Run("Caller Without Provider Registration", func(t *testing.T) {
		deps := newTestDeps()
		deps.practitionerRoles.roles = nil
		index := indexWithReport(t, reportWithoutEncounter)
		resolver := newTestResolver(deps, index)

		_, err := newTestProvisioner(deps).Provision(ctx, testSession(), resolver, patient, reportWithoutEncounter, nil)

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, constvars.ErrDevUnidentifiedProvider)
	})
}
