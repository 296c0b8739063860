package contracts

import (
	"context"
	"labreport-service/internal/pkg/fhir_dto"
)

type ObservationFhirClient interface {
	CreateObservation(ctx context.Context, request *fhir_dto.Observation) (*fhir_dto.Observation, error)
	FindObservationByID(ctx context.Context, observationID string) (*fhir_dto.Observation, error)
}
