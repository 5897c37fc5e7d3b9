package fhir_dto

type Composition struct {
	ID           string               `json:"id,omitempty"`
	ResourceType string               `json:"resourceType,omitempty"`
	Meta         *Meta                `json:"meta,omitempty"`
	Identifier   *Identifier          `json:"identifier,omitempty"`
	Status       string               `json:"status,omitempty"`
	Type         CodeableConcept      `json:"type,omitempty"`
	Subject      *Reference           `json:"subject,omitempty"`
	Encounter    *Reference           `json:"encounter,omitempty"`
	Date         string               `json:"date,omitempty"`
	Author       []Reference          `json:"author,omitempty"`
	Title        string               `json:"title,omitempty"`
	Section      []CompositionSection `json:"section,omitempty"`
}

type CompositionSection struct {
	Title string      `json:"title,omitempty"`
	Code  *CodeableConcept `json:"code,omitempty"`
	Entry []Reference `json:"entry,omitempty"`
}
