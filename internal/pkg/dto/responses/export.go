package responses

import "time"

// PatientMapping records how a source patient was resolved against the
// target store. Failures are values, never errors.
type PatientMapping struct {
	SourcePatientID string `json:"source_patient_id"`
	TargetPatientID string `json:"target_patient_id,omitempty"`
	Action          string `json:"action"`
	Error           string `json:"error,omitempty"`
}

// DuplicateCheckResult reports whether a document was already exported. The
// target patient id of the first match lets the orchestrator short-circuit
// without re-deriving the mapping.
type DuplicateCheckResult struct {
	IsDuplicate     bool   `json:"is_duplicate"`
	TargetPatientID string `json:"target_patient_id,omitempty"`
}

// ExportResult is the terminal outcome of one orchestrated document export.
type ExportResult struct {
	Success                   bool           `json:"success"`
	SourceDocumentID          string         `json:"source_document_id,omitempty"`
	TargetBinaryID            string         `json:"target_binary_id,omitempty"`
	TargetDocumentReferenceID string         `json:"target_document_reference_id,omitempty"`
	TargetCompositionID       string         `json:"target_composition_id,omitempty"`
	SourcePatientID           string         `json:"source_patient_id,omitempty"`
	TargetPatientID           string         `json:"target_patient_id,omitempty"`
	EncounterID               string         `json:"encounter_id,omitempty"`
	Error                     string         `json:"error,omitempty"`
	Metadata                  ExportMetadata `json:"metadata"`
}

type ExportMetadata struct {
	ExportTimestamp time.Time       `json:"export_timestamp"`
	PatientMapping  *PatientMapping `json:"patient_mapping,omitempty"`
	DuplicateCheck  string          `json:"duplicate_check,omitempty"`
	Vendor          string          `json:"vendor,omitempty"`
	ContentType     string          `json:"content_type,omitempty"`
	OriginalSize    int             `json:"original_size,omitempty"`
	Steps           []string        `json:"steps,omitempty"`
}

// EncounterExportResult is the outcome of a bulk encounter export.
type EncounterExportResult struct {
	Success             bool                `json:"success"`
	SourceEncounterID   string              `json:"source_encounter_id"`
	TargetEncounterID   string              `json:"target_encounter_id,omitempty"`
	TargetPatientID     string              `json:"target_patient_id,omitempty"`
	TargetCompositionID string              `json:"target_composition_id,omitempty"`
	CreatedResources    map[string][]string `json:"created_resources,omitempty"`
	SkippedResources    int                 `json:"skipped_resources,omitempty"`
	Error               string              `json:"error,omitempty"`
}

// ExportEvent is the fire-and-forget completion event published per export.
type ExportEvent struct {
	SourceDocumentID string          `json:"source_document_id"`
	TenantID         string          `json:"tenant_id"`
	PatientID        string          `json:"patient_id,omitempty"`
	Status           string          `json:"status"`
	Error            string          `json:"error,omitempty"`
	Metadata         *ExportMetadata `json:"metadata,omitempty"`
}
