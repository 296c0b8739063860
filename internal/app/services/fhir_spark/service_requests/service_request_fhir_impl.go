package service_requests

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
)

type serviceRequestFhirClient struct {
	BaseUrl string
}

func NewServiceRequestFhirClient(baseUrl string) contracts.ServiceRequestFhirClient {
	return &serviceRequestFhirClient{
		BaseUrl: baseUrl + constvars.ResourceServiceRequest,
	}
}

// FindServiceRequestByID returns (nil, nil) when the service request does not exist.
func (c *serviceRequestFhirClient) FindServiceRequestByID(ctx context.Context, serviceRequestID string) (*fhir_dto.ServiceRequest, error) {
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s", c.BaseUrl, serviceRequestID), nil)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == constvars.StatusNotFound || resp.StatusCode == constvars.StatusGone {
		return nil, nil
	}

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourceServiceRequest)
		}

		var outcome fhir_dto.OperationOutcome
		err = json.Unmarshal(bodyBytes, &outcome)
		if err != nil {
			return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourceServiceRequest)
		}

		if len(outcome.Issue) > 0 {
			fhirErrorIssue := fmt.Errorf(outcome.Issue[0].Diagnostics)
			return nil, exceptions.ErrGetFHIRResource(fhirErrorIssue, constvars.ResourceServiceRequest)
		}
	}

	serviceRequestFhir := new(fhir_dto.ServiceRequest)
	err = json.NewDecoder(resp.Body).Decode(&serviceRequestFhir)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceServiceRequest)
	}

	return serviceRequestFhir, nil
}
