package fhir_dto

type DocumentReference struct {
	ID           string                     `json:"id,omitempty"`
	ResourceType string                     `json:"resourceType,omitempty"`
	Meta         *Meta                      `json:"meta,omitempty"`
	Identifier   []Identifier               `json:"identifier,omitempty"`
	Status       string                     `json:"status,omitempty"`
	Type         CodeableConcept            `json:"type,omitempty"`
	Category     []CodeableConcept          `json:"category,omitempty"`
	Subject      *Reference                 `json:"subject,omitempty"`
	Date         string                     `json:"date,omitempty"`
	Author       []Reference                `json:"author,omitempty"`
	Description  string                     `json:"description,omitempty"`
	Content      []DocumentReferenceContent `json:"content,omitempty"`
	Context      *DocumentReferenceContext  `json:"context,omitempty"`
}

type DocumentReferenceContent struct {
	Attachment Attachment `json:"attachment"`
	Format     *Coding    `json:"format,omitempty"`
}

type DocumentReferenceContext struct {
	Encounter []Reference `json:"encounter,omitempty"`
	Period    *Period     `json:"period,omitempty"`
}
