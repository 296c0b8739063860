package contracts

import (
	"context"
	"labreport-service/internal/pkg/fhir_dto"
)

type ServiceRequestFhirClient interface {
	FindServiceRequestByID(ctx context.Context, serviceRequestID string) (*fhir_dto.ServiceRequest, error)
}
