package encounters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
)

type encounterFhirClient struct {
	BaseUrl string
}

func NewEncounterFhirClient(baseUrl string) contracts.EncounterFhirClient {
	return &encounterFhirClient{
		BaseUrl: baseUrl + constvars.ResourceEncounter,
	}
}

func (c *encounterFhirClient) CreateEncounter(ctx context.Context, request *fhir_dto.Encounter) (*fhir_dto.Encounter, error) {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, c.BaseUrl, bytes.NewBuffer(requestJSON))
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

	if resp.StatusCode != constvars.StatusCreated {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, exceptions.ErrCreateFHIRResource(err, constvars.ResourceEncounter)
		}

		var outcome fhir_dto.OperationOutcome
		err = json.Unmarshal(bodyBytes, &outcome)
		if err != nil {
			return nil, exceptions.ErrCreateFHIRResource(err, constvars.ResourceEncounter)
		}

		if len(outcome.Issue) > 0 {
			fhirErrorIssue := fmt.Errorf(outcome.Issue[0].Diagnostics)
			return nil, exceptions.ErrCreateFHIRResource(fhirErrorIssue, constvars.ResourceEncounter)
		}
	}

	encounterFhir := new(fhir_dto.Encounter)
	err = json.NewDecoder(resp.Body).Decode(&encounterFhir)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceEncounter)
	}

	return encounterFhir, nil
}

// FindEncounterByID returns (nil, nil) when the encounter does not exist.
func (c *encounterFhirClient) FindEncounterByID(ctx context.Context, encounterID string) (*fhir_dto.Encounter, error) {
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s", c.BaseUrl, encounterID), nil)
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
			return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourceEncounter)
		}

		var outcome fhir_dto.OperationOutcome
		err = json.Unmarshal(bodyBytes, &outcome)
		if err != nil {
			return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourceEncounter)
		}

		if len(outcome.Issue) > 0 {
			fhirErrorIssue := fmt.Errorf(outcome.Issue[0].Diagnostics)
			return nil, exceptions.ErrGetFHIRResource(fhirErrorIssue, constvars.ResourceEncounter)
		}
	}

	encounterFhir := new(fhir_dto.Encounter)
	err = json.NewDecoder(resp.Body).Decode(&encounterFhir)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceEncounter)
	}

	return encounterFhir, nil
}

func (c *encounterFhirClient) FindActiveEncountersByPatient(ctx context.Context, patientID string) ([]fhir_dto.Encounter, error) {
	url := fmt.Sprintf("%s?%s=%s/%s&%s=%s",
		c.BaseUrl,
		constvars.FhirSearchParamSubject, constvars.ResourcePatient, patientID,
		constvars.FhirSearchParamStatus, constvars.EncounterStatusInProgress,
	)
	return c.searchEncounters(ctx, url)
}

func (c *encounterFhirClient) FindEncountersByPatientTypeAndDate(ctx context.Context, patientID, typeCode string, date time.Time) ([]fhir_dto.Encounter, error) {
	day := date.Format("2006-01-02")
	url := fmt.Sprintf("%s?%s=%s/%s&%s=%s&%s=ge%s&%s=le%s",
		c.BaseUrl,
		constvars.FhirSearchParamSubject, constvars.ResourcePatient, patientID,
		constvars.FhirSearchParamType, typeCode,
		constvars.FhirSearchParamDate, day,
		constvars.FhirSearchParamDate, day,
	)
	return c.searchEncounters(ctx, url)
}

func (c *encounterFhirClient) searchEncounters(ctx context.Context, url string) ([]fhir_dto.Encounter, error) {
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
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

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, exceptions.ErrSearchFHIRResource(err, constvars.ResourceEncounter)
		}

		var outcome fhir_dto.OperationOutcome
		err = json.Unmarshal(bodyBytes, &outcome)
		if err != nil {
			return nil, exceptions.ErrSearchFHIRResource(err, constvars.ResourceEncounter)
		}

		if len(outcome.Issue) > 0 {
			fhirErrorIssue := fmt.Errorf(outcome.Issue[0].Diagnostics)
			return nil, exceptions.ErrSearchFHIRResource(fhirErrorIssue, constvars.ResourceEncounter)
		}
	}

	var result fhir_dto.Bundle
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceEncounter)
	}

	encountersFhir := make([]fhir_dto.Encounter, 0, len(result.Entry))
	for _, entry := range result.Entry {
		var encounter fhir_dto.Encounter
		err := json.Unmarshal(entry.Resource, &encounter)
		if err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		encountersFhir = append(encountersFhir, encounter)
	}

	return encountersFhir, nil
}
