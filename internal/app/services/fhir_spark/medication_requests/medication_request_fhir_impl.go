package medication_requests

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

type medicationRequestFhirClient struct {
	BaseUrl string
}

func NewMedicationRequestFhirClient(baseUrl string) contracts.MedicationRequestFhirClient {
	return &medicationRequestFhirClient{
		BaseUrl: baseUrl + constvars.ResourceMedicationRequest,
	}
}

// FindMedicationRequestByID returns (nil, nil) when the medication request does not exist.
func (c *medicationRequestFhirClient) FindMedicationRequestByID(ctx context.Context, medicationRequestID string) (*fhir_dto.MedicationRequest, error) {
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s", c.BaseUrl, medicationRequestID), nil)
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
			return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourceMedicationRequest)
		}

		var outcome fhir_dto.OperationOutcome
		err = json.Unmarshal(bodyBytes, &outcome)
		if err != nil {
			return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourceMedicationRequest)
		}

		if len(outcome.Issue) > 0 {
			fhirErrorIssue := fmt.Errorf(outcome.Issue[0].Diagnostics)
			return nil, exceptions.ErrGetFHIRResource(fhirErrorIssue, constvars.ResourceMedicationRequest)
		}
	}

	medicationRequestFhir := new(fhir_dto.MedicationRequest)
	err = json.NewDecoder(resp.Body).Decode(&medicationRequestFhir)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceMedicationRequest)
	}

	return medicationRequestFhir, nil
}
