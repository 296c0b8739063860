package routers

import (
	"labreport-service/internal/app/delivery/http/middlewares"
	"labreport-service/internal/app/services/core/reports"

	"github.com/go-chi/chi/v5"
)

func attachReportRoutes(router chi.Router, mw *middlewares.Middlewares, reportController *reports.ReportController) {
	router.With(mw.SessionAuth).Post("/bundle", reportController.IngestBundle)
	router.With(mw.SessionAuth).Get("/ingestions/{requestID}", reportController.GetIngestionRecords)
	router.Get("/{reportID}", reportController.GetReportByID)
	router.Get("/{reportID}/results", reportController.GetReportResults)
}
