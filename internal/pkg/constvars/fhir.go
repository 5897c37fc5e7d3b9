package constvars

const (
	ResourcePatient           = "Patient"
	ResourceDocumentReference = "DocumentReference"
	ResourceBinary            = "Binary"
	ResourceComposition       = "Composition"
	ResourceEncounter         = "Encounter"
	ResourceCondition         = "Condition"
	ResourceMedicationRequest = "MedicationRequest"
	ResourceAppointment       = "Appointment"
	ResourceBundle            = "Bundle"
)

const (
	FhirBundleTypeBatch         = "batch"
	FhirBundleTypeBatchResponse = "batch-response"
	FhirBundleTypeSearchset     = "searchset"
)

const (
	FhirDocumentStatusCurrent  = "current"
	FhirCompositionStatusFinal = "final"
)

// LOINC code for discharge summary notes, shared by every vendor search.
const (
	LoincSystem                 = "http://loinc.org"
	LoincDischargeSummaryCode   = "18842-5"
	DischargeSummaryDisplayName = "Discharge summary"
)

// Identifier and tag systems owned by the sync engine. The correlation tag
// attached under CorrelationTagSystem is the sole provenance link between a
// target resource and its vendor origin.
const (
	SourcePatientIdentifierSystem = "urn:synclinic:source-patient-id"
	CorrelationTagSystem          = "urn:synclinic:correlation-tag"
	SourceIdentifierSystem        = "urn:synclinic:source-id"
)

const (
	FhirGenderMale    = "male"
	FhirGenderFemale  = "female"
	FhirGenderOther   = "other"
	FhirGenderUnknown = "unknown"

	FhirBirthDateLayout = "2006-01-02"
)

const (
	CompositionSectionConditions   = "Conditions"
	CompositionSectionMedications  = "Medication Orders"
	CompositionSectionAppointments = "Appointments"
	CompositionSectionDocuments    = "Clinical Documents"
)
