package contracts

import (
	"context"
	"time"

	"labreport-service/internal/pkg/fhir_dto"
)

type EncounterFhirClient interface {
	CreateEncounter(ctx context.Context, request *fhir_dto.Encounter) (*fhir_dto.Encounter, error)
	FindEncounterByID(ctx context.Context, encounterID string) (*fhir_dto.Encounter, error)
	FindActiveEncountersByPatient(ctx context.Context, patientID string) ([]fhir_dto.Encounter, error)
	FindEncountersByPatientTypeAndDate(ctx context.Context, patientID, typeCode string, date time.Time) ([]fhir_dto.Encounter, error)
}
