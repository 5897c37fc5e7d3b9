package fhir_dto

type Appointment struct {
	ID           string                   `json:"id,omitempty"`
	ResourceType string                   `json:"resourceType,omitempty"`
	Meta         *Meta                    `json:"meta,omitempty"`
	Identifier   []Identifier             `json:"identifier,omitempty"`
	Status       string                   `json:"status,omitempty"`
	Description  string                   `json:"description,omitempty"`
	Start        string                   `json:"start,omitempty"`
	End          string                   `json:"end,omitempty"`
	Participant  []AppointmentParticipant `json:"participant,omitempty"`
}

type AppointmentParticipant struct {
	Actor    *Reference `json:"actor,omitempty"`
	Required string     `json:"required,omitempty"`
	Status   string     `json:"status,omitempty"`
}
