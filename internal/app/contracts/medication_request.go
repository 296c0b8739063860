package contracts

import (
	"context"
	"labreport-service/internal/pkg/fhir_dto"
)

type MedicationRequestFhirClient interface {
	FindMedicationRequestByID(ctx context.Context, medicationRequestID string) (*fhir_dto.MedicationRequest, error)
}
