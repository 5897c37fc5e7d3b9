package utils

import (
	"strings"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/fhir_dto"
	"time"
)

// CleanString strips NUL characters and trims surrounding whitespace. Vendor
// payloads occasionally carry NUL-padded fixed-width fields which the target
// store rejects.
func CleanString(input string) string {
	return strings.TrimSpace(strings.ReplaceAll(input, "\x00", ""))
}

func cleanStringSlice(input []string) []string {
	sanitized := make([]string, len(input))
	for i, v := range input {
		sanitized[i] = CleanString(v)
	}
	return sanitized
}

// ValidGender maps an arbitrary gender string onto the FHIR administrative
// gender enum, defaulting to "unknown".
func ValidGender(input string) string {
	switch strings.ToLower(CleanString(input)) {
	case constvars.FhirGenderMale:
		return constvars.FhirGenderMale
	case constvars.FhirGenderFemale:
		return constvars.FhirGenderFemale
	case constvars.FhirGenderOther:
		return constvars.FhirGenderOther
	default:
		return constvars.FhirGenderUnknown
	}
}

// ValidBirthDate returns the cleaned date when it parses as YYYY-MM-DD and
// an empty string otherwise, so malformed dates are omitted rather than sent.
func ValidBirthDate(input string) string {
	cleaned := CleanString(input)
	if cleaned == "" {
		return ""
	}
	if _, err := time.Parse(constvars.FhirBirthDateLayout, cleaned); err != nil {
		return ""
	}
	return cleaned
}

// SanitizePatient walks every string field of a patient payload, stripping
// NUL characters and whitespace, and normalizes gender and birth date.
func SanitizePatient(patient *fhir_dto.Patient) {
	if patient == nil {
		return
	}

	patient.Gender = ValidGender(patient.Gender)
	patient.BirthDate = ValidBirthDate(patient.BirthDate)

	for i := range patient.Name {
		patient.Name[i].Use = CleanString(patient.Name[i].Use)
		patient.Name[i].Text = CleanString(patient.Name[i].Text)
		patient.Name[i].Family = CleanString(patient.Name[i].Family)
		patient.Name[i].Given = cleanStringSlice(patient.Name[i].Given)
		patient.Name[i].Prefix = cleanStringSlice(patient.Name[i].Prefix)
	}
	for i := range patient.Telecom {
		patient.Telecom[i].System = CleanString(patient.Telecom[i].System)
		patient.Telecom[i].Value = CleanString(patient.Telecom[i].Value)
		patient.Telecom[i].Use = CleanString(patient.Telecom[i].Use)
	}
	for i := range patient.Address {
		patient.Address[i].Use = CleanString(patient.Address[i].Use)
		patient.Address[i].Line = cleanStringSlice(patient.Address[i].Line)
		patient.Address[i].City = CleanString(patient.Address[i].City)
		patient.Address[i].State = CleanString(patient.Address[i].State)
		patient.Address[i].PostalCode = CleanString(patient.Address[i].PostalCode)
		patient.Address[i].Country = CleanString(patient.Address[i].Country)
	}
	for i := range patient.Identifier {
		patient.Identifier[i].Use = CleanString(patient.Identifier[i].Use)
		patient.Identifier[i].System = CleanString(patient.Identifier[i].System)
		patient.Identifier[i].Value = CleanString(patient.Identifier[i].Value)
	}
}
