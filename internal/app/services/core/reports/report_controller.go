package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/dto/requests"
	"labreport-service/internal/pkg/dto/responses"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ReportController struct {
	Log            *zap.Logger
	ReportUsecase  contracts.ReportUsecase
	SessionService contracts.SessionService
	Validator      *validator.Validate
}

func NewReportController(logger *zap.Logger, reportUsecase contracts.ReportUsecase, sessionService contracts.SessionService) *ReportController {
	return &ReportController{
		Log:            logger,
		ReportUsecase:  reportUsecase,
		SessionService: sessionService,
		Validator:      validator.New(),
	}
}

func (ctrl *ReportController) IngestBundle(w http.ResponseWriter, r *http.Request) {
	request := new(requests.IngestBundleRequest)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	if err := ctrl.Validator.Struct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	sessionData, _ := r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(string)
	session, err := ctrl.SessionService.ParseSessionData(r.Context(), sessionData)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var response *responses.IngestBundleResponse
	err = utils.LogOperation(ctrl.Log, "IngestBundle", utils.GetRequestID(r.Context()), func() error {
		var err error
		response, err = ctrl.ReportUsecase.IngestBundle(ctx, session, request)
		return err
	})
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.ReportIngestedSuccess, response)
}

func (ctrl *ReportController) GetReportByID(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := ctrl.ReportUsecase.GetReportByID(ctx, reportID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ReportGetSuccess, report)
}

func (ctrl *ReportController) GetIngestionRecords(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := ctrl.ReportUsecase.GetIngestionRecords(ctx, requestID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ReportIngestionsGetSuccess, records)
}

func (ctrl *ReportController) GetReportResults(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	results, err := ctrl.ReportUsecase.GetReportResults(ctx, reportID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ReportResultsGetSuccess, results)
}
