package utils

import (
	"testing"

	"synclinic-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
)

func TestBuildCorrelationTag(t *testing.T) {
	tag := BuildCorrelationTag("cerner", "doc-123")
	assert.Equal(t, "original-cerner-id-doc-123", tag)

	// Same inputs must always produce the same tag.
	assert.Equal(t, tag, BuildCorrelationTag("cerner", "doc-123"))
	assert.NotEqual(t, tag, BuildCorrelationTag("epic", "doc-123"))
	assert.NotEqual(t, tag, BuildCorrelationTag("cerner", "doc-124"))
}

func TestBuildConditionalIdentifier(t *testing.T) {
	assert.Equal(t, "identifier=original-epic-id|enc-9", BuildConditionalIdentifier("epic", "enc-9"))
}

func TestBuildConditionalTag(t *testing.T) {
	assert.Equal(t, "_tag=urn:synclinic:correlation-tag|original-cerner-id-doc-1", BuildConditionalTag("cerner", "doc-1"))
}

func TestBuildSourceIdentifierSystem(t *testing.T) {
	system := BuildSourceIdentifierSystem("cerner")
	assert.Equal(t, "original-cerner-id", system)

	// The conditional clause must be expressible as system|value.
	assert.Equal(t, "identifier="+system+"|abc", BuildConditionalIdentifier("cerner", "abc"))
}

func TestParseResourceLocation(t *testing.T) {
	t.Run("plain reference", func(t *testing.T) {
		parsed, err := ParseResourceLocation("Patient/42")
		assert.NoError(t, err)
		assert.Equal(t, "Patient", parsed.ResourceType)
		assert.Equal(t, "42", parsed.ID)
	})

	t.Run("absolute url with history", func(t *testing.T) {
		parsed, err := ParseResourceLocation("https://fhir.example.com/r4/DocumentReference/abc/_history/3")
		assert.NoError(t, err)
		assert.Equal(t, "DocumentReference", parsed.ResourceType)
		assert.Equal(t, "abc", parsed.ID)
	})

	t.Run("base path segments are not resource types", func(t *testing.T) {
		parsed, err := ParseResourceLocation("/fhir/Encounter/enc-1")
		assert.NoError(t, err)
		assert.Equal(t, "Encounter", parsed.ResourceType)
		assert.Equal(t, "enc-1", parsed.ID)
	})

	t.Run("rejects empty and malformed input", func(t *testing.T) {
		_, err := ParseResourceLocation("")
		assert.Error(t, err)

		_, err = ParseResourceLocation("just-an-id")
		assert.Error(t, err)

		_, err = ParseResourceLocation("lowercase/42")
		assert.Error(t, err)
	})
}

func TestFindTagCode(t *testing.T) {
	meta := &fhir_dto.Meta{
		Tag: []fhir_dto.Coding{
			{System: "urn:other", Code: "original-cerner-id-doc-1"},
			{System: "urn:synclinic:correlation-tag", Code: "original-cerner-id-doc-1"},
		},
	}

	assert.True(t, FindTagCode(meta, "urn:synclinic:correlation-tag", "original-cerner-id-doc-1"))
	assert.False(t, FindTagCode(meta, "urn:synclinic:correlation-tag", "original-cerner-id-doc-2"))
	assert.False(t, FindTagCode(nil, "urn:synclinic:correlation-tag", "original-cerner-id-doc-1"))
}
