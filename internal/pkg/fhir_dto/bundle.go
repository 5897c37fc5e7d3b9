package fhir_dto

import "encoding/json"

type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type,omitempty"`
	Total        int           `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullUrl  string               `json:"fullUrl,omitempty"`
	Resource json.RawMessage      `json:"resource,omitempty"`
	Request  *BundleEntryRequest  `json:"request,omitempty"`
	Response *BundleEntryResponse `json:"response,omitempty"`
}

type BundleEntryRequest struct {
	Method      string `json:"method,omitempty"`
	Url         string `json:"url,omitempty"`
	IfNoneExist string `json:"ifNoneExist,omitempty"`
}

type BundleEntryResponse struct {
	Status   string `json:"status,omitempty"`
	Location string `json:"location,omitempty"`
	Etag     string `json:"etag,omitempty"`
}
