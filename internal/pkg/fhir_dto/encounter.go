package fhir_dto

type Encounter struct {
	ID           string            `json:"id,omitempty"`
	ResourceType string            `json:"resourceType,omitempty"`
	Meta         *Meta             `json:"meta,omitempty"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Status       string            `json:"status,omitempty"`
	Class        *Coding           `json:"class,omitempty"`
	Type         []CodeableConcept `json:"type,omitempty"`
	Subject      *Reference        `json:"subject,omitempty"`
	Period       *Period           `json:"period,omitempty"`
	ServiceProvider *Reference     `json:"serviceProvider,omitempty"`
}
