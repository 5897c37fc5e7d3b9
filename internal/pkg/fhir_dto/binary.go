package fhir_dto

type Binary struct {
	ID           string `json:"id,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Meta         *Meta  `json:"meta,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	Data         string `json:"data,omitempty"`
}
