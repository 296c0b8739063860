package requests

import "encoding/json"

// IngestBundleRequest is the inbound envelope for the bundle ingestion
// endpoint. Entries keep their resources raw; the usecase classifies and
// decodes them by resourceType.
type IngestBundleRequest struct {
	ResourceType string              `json:"resourceType" validate:"required,oneof=Bundle"`
	Type         string              `json:"type,omitempty"`
	Entry        []IngestBundleEntry `json:"entry" validate:"required,min=1,dive"`
}

type IngestBundleEntry struct {
	FullUrl  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource" validate:"required"`
}
