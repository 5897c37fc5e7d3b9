package utils

import (
	"testing"

	"synclinic-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "hello", CleanString("  hello \x00 "))
	assert.Equal(t, "", CleanString("\x00\x00"))
	assert.Equal(t, "a b", CleanString("a b"))
}

func TestValidGender(t *testing.T) {
	assert.Equal(t, "male", ValidGender("Male"))
	assert.Equal(t, "female", ValidGender(" female "))
	assert.Equal(t, "other", ValidGender("other"))
	assert.Equal(t, "unknown", ValidGender("M"))
	assert.Equal(t, "unknown", ValidGender(""))
}

func TestValidBirthDate(t *testing.T) {
	assert.Equal(t, "1980-02-29", ValidBirthDate("1980-02-29"))
	assert.Equal(t, "", ValidBirthDate("02/29/1980"))
	assert.Equal(t, "", ValidBirthDate("1981-02-29"))
	assert.Equal(t, "", ValidBirthDate(""))
}

func TestSanitizePatient(t *testing.T) {
	patient := &fhir_dto.Patient{
		Gender:    "FEMALE",
		BirthDate: "not-a-date",
		Name: []fhir_dto.HumanName{
			{Family: " Doe\x00", Given: []string{" Jane "}},
		},
		Address: []fhir_dto.Address{
			{City: "Spring\x00field", Line: []string{" 1 Main St "}},
		},
		Identifier: []fhir_dto.Identifier{
			{System: " urn:mrn ", Value: "123\x00"},
		},
	}

	SanitizePatient(patient)

	assert.Equal(t, "female", patient.Gender)
	assert.Equal(t, "", patient.BirthDate)
	assert.Equal(t, "Doe", patient.Name[0].Family)
	assert.Equal(t, "Jane", patient.Name[0].Given[0])
	assert.Equal(t, "Springfield", patient.Address[0].City)
	assert.Equal(t, "1 Main St", patient.Address[0].Line[0])
	assert.Equal(t, "urn:mrn", patient.Identifier[0].System)
	assert.Equal(t, "123", patient.Identifier[0].Value)
}

func TestSanitizePatientNil(t *testing.T) {
	assert.NotPanics(t, func() { SanitizePatient(nil) })
}
