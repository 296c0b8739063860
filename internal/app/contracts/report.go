package contracts

import (
	"context"

	"labreport-service/internal/app/models"
	"labreport-service/internal/pkg/dto/requests"
	"labreport-service/internal/pkg/dto/responses"
	"labreport-service/internal/pkg/fhir_dto"
)

type ReportUsecase interface {
	IngestBundle(ctx context.Context, session *models.Session, request *requests.IngestBundleRequest) (*responses.IngestBundleResponse, error)
	GetReportByID(ctx context.Context, reportID string) (*fhir_dto.DiagnosticReport, error)
	GetReportResults(ctx context.Context, reportID string) ([]fhir_dto.Observation, error)
	GetIngestionRecords(ctx context.Context, requestID string) ([]models.IngestionRecord, error)
}

type IngestionJournalRepository interface {
	InsertIngestionRecord(ctx context.Context, record *models.IngestionRecord) error
	FindIngestionRecordsByRequestID(ctx context.Context, requestID string) ([]models.IngestionRecord, error)
}

type ReportEventPublisher interface {
	PublishReportIngested(ctx context.Context, event *models.ReportIngestedEvent) error
}
