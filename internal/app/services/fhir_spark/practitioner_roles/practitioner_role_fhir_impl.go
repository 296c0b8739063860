package practitioner_roles

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

type practitionerRoleFhirClient struct {
	BaseUrl string
}

func NewPractitionerRoleFhirClient(baseUrl string) contracts.PractitionerRoleFhirClient {
	return &practitionerRoleFhirClient{
		BaseUrl: baseUrl + constvars.ResourcePractitionerRole,
	}
}

func (c *practitionerRoleFhirClient) FindPractitionerRolesByPractitioner(ctx context.Context, practitionerID string) ([]fhir_dto.PractitionerRole, error) {
	url := fmt.Sprintf("%s?%s=%s/%s",
		c.BaseUrl,
		constvars.FhirSearchParamPractitioner, constvars.ResourcePractitioner, practitionerID,
	)
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
			return nil, exceptions.ErrSearchFHIRResource(err, constvars.ResourcePractitionerRole)
		}

		var outcome fhir_dto.OperationOutcome
		err = json.Unmarshal(bodyBytes, &outcome)
		if err != nil {
			return nil, exceptions.ErrSearchFHIRResource(err, constvars.ResourcePractitionerRole)
		}

		if len(outcome.Issue) > 0 {
			fhirErrorIssue := fmt.Errorf(outcome.Issue[0].Diagnostics)
			return nil, exceptions.ErrSearchFHIRResource(fhirErrorIssue, constvars.ResourcePractitionerRole)
		}
	}

	var result fhir_dto.Bundle
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourcePractitionerRole)
	}

	rolesFhir := make([]fhir_dto.PractitionerRole, 0, len(result.Entry))
	for _, entry := range result.Entry {
		var role fhir_dto.PractitionerRole
		err := json.Unmarshal(entry.Resource, &role)
		if err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		rolesFhir = append(rolesFhir, role)
	}

	return rolesFhir, nil
}
