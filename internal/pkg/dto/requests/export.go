package requests

type ExportDocument struct {
	TenantID   string `json:"tenant_id" validate:"required"`
	PatientID  string `json:"patient_id" validate:"required_without=DocumentID"`
	DocumentID string `json:"document_id" validate:"required_without=PatientID"`
}

type ExportEncounter struct {
	TenantID    string `json:"tenant_id" validate:"required"`
	PatientID   string `json:"patient_id" validate:"required"`
	EncounterID string `json:"encounter_id" validate:"required"`
}
