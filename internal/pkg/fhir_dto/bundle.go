package fhir_dto

import "encoding/json"

// Bundle is the generic envelope used both for inbound document bundles and
// for search responses coming back from the FHIR server. Entries keep their
// resources raw so each caller decodes only the types it cares about.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type,omitempty"`
	Total        int           `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullUrl  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

// ResourceHeader carries the two fields every FHIR resource starts with,
// enough to classify a raw bundle entry before a full decode.
type ResourceHeader struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id,omitempty"`
}
