package contracts

import (
	"context"
	"labreport-service/internal/pkg/fhir_dto"
)

type PractitionerRoleFhirClient interface {
	FindPractitionerRolesByPractitioner(ctx context.Context, practitionerID string) ([]fhir_dto.PractitionerRole, error)
}
