package reports

import (
	"encoding/json"

	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/dto/requests"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
	"labreport-service/internal/pkg/utils"
)

// bundleResource is one decoded bundle entry. LocalID is the canonical key
// the rest of the pipeline uses: the entry's fullUrl when present, otherwise
// the relative "Type/id" form.
type bundleResource struct {
	LocalID string
	Header  fhir_dto.ResourceHeader
	Raw     json.RawMessage
}

// bundleIndex gives the pipeline random access into the inbound bundle.
// Aliases maps every way a resource can be referenced (fullUrl, "Type/id")
// to its canonical LocalID, so lookups never depend on which spelling the
// sender used.
type bundleIndex struct {
	Report      *fhir_dto.DiagnosticReport
	ReportLocal string
	Resources   map[string]bundleResource
	Aliases     map[string]string
	EntryOrder  []string
}

func buildBundleIndex(request *requests.IngestBundleRequest) (*bundleIndex, error) {
	index := &bundleIndex{
		Resources:  make(map[string]bundleResource),
		Aliases:    make(map[string]string),
		EntryOrder: make([]string, 0, len(request.Entry)),
	}

	for _, entry := range request.Entry {
		var header fhir_dto.ResourceHeader
		if err := json.Unmarshal(entry.Resource, &header); err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}

		localID := entry.FullUrl
		if localID == "" && header.ID != "" {
			localID = utils.FormatReference(header.ResourceType, header.ID)
		}
		if localID == "" {
			continue
		}

		resource := bundleResource{
			LocalID: localID,
			Header:  header,
			Raw:     entry.Resource,
		}
		index.Resources[localID] = resource
		index.Aliases[localID] = localID
		if header.ID != "" {
			index.Aliases[utils.FormatReference(header.ResourceType, header.ID)] = localID
		}
		index.EntryOrder = append(index.EntryOrder, localID)

		if header.ResourceType == constvars.ResourceDiagnosticReport && index.Report == nil {
			report := new(fhir_dto.DiagnosticReport)
			if err := json.Unmarshal(entry.Resource, report); err != nil {
				return nil, exceptions.ErrCannotParseJSON(err)
			}
			index.Report = report
			index.ReportLocal = localID
		}
	}

	if index.Report == nil {
		return nil, exceptions.ErrBundleMissingReport(nil)
	}

	return index, nil
}

// lookup resolves a reference string to an embedded bundle resource.
func (idx *bundleIndex) lookup(reference string) (bundleResource, bool) {
	canonical, ok := idx.Aliases[reference]
	if !ok {
		return bundleResource{}, false
	}
	resource, ok := idx.Resources[canonical]
	return resource, ok
}
