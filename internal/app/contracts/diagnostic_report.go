package contracts

import (
	"context"
	"labreport-service/internal/pkg/fhir_dto"
)

type DiagnosticReportFhirClient interface {
	CreateDiagnosticReport(ctx context.Context, request *fhir_dto.DiagnosticReport) (*fhir_dto.DiagnosticReport, error)
	FindDiagnosticReportByID(ctx context.Context, reportID string) (*fhir_dto.DiagnosticReport, error)
}
