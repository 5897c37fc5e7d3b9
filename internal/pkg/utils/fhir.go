package utils

import (
	"fmt"
	"strings"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/fhir_dto"
)

// BuildCorrelationTag derives the stable provenance tag for a resource that
// originated in a vendor system. Same vendor and source id always produce the
// same tag, which is what makes retries and duplicate detection safe.
func BuildCorrelationTag(vendor, sourceID string) string {
	return fmt.Sprintf("original-%s-id-%s", vendor, sourceID)
}

// BuildConditionalIdentifier is the ifNoneExist clause value for conditional
// creates: identifier=original-<vendor>-id|<sourceId>.
func BuildConditionalIdentifier(vendor, sourceID string) string {
	return fmt.Sprintf("identifier=original-%s-id|%s", vendor, sourceID)
}

// BuildSourceIdentifierSystem is the identifier system a conditionally
// created resource carries so BuildConditionalIdentifier can match it.
func BuildSourceIdentifierSystem(vendor string) string {
	return fmt.Sprintf("original-%s-id", vendor)
}

// BuildConditionalTag is the ifNoneExist clause for resource types without an
// identifier search parameter, matching on the correlation tag instead.
func BuildConditionalTag(vendor, sourceID string) string {
	return fmt.Sprintf("_tag=%s|%s", constvars.CorrelationTagSystem, BuildCorrelationTag(vendor, sourceID))
}

// ParsedResourceLocation is the typed result of parsing a Location header or
// a FHIR reference string.
type ParsedResourceLocation struct {
	ResourceType string
	ID           string
}

// ParseResourceLocation extracts (resourceType, id) from strings of the form
// "[base/]ResourceType/id[/_history/n]". It returns an error instead of
// guessing when the shape does not match.
func ParseResourceLocation(location string) (*ParsedResourceLocation, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return nil, fmt.Errorf("empty resource location")
	}

	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "_history" {
			parts = parts[:i]
			break
		}
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("resource location %q has no type/id segment", location)
	}

	resourceType := parts[len(parts)-2]
	id := parts[len(parts)-1]
	if resourceType == "" || id == "" {
		return nil, fmt.Errorf("resource location %q has empty type or id", location)
	}
	if !isFhirResourceTypeName(resourceType) {
		return nil, fmt.Errorf("resource location %q has invalid type segment %q", location, resourceType)
	}
	return &ParsedResourceLocation{ResourceType: resourceType, ID: id}, nil
}

// FHIR resource type names are ASCII alphabetic and start with an uppercase
// letter. This keeps base-URL path segments out of the parsed result.
func isFhirResourceTypeName(s string) bool {
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// FindTagCode reports whether the resource meta carries the given tag code
// under the sync engine's tag system.
func FindTagCode(meta *fhir_dto.Meta, system, code string) bool {
	if meta == nil {
		return false
	}
	for _, tag := range meta.Tag {
		if tag.System == system && tag.Code == code {
			return true
		}
	}
	return false
}

// ReferenceForPatient renders a relative patient reference.
func ReferenceForPatient(patientID string) string {
	return "Patient/" + patientID
}

// ReferenceForEncounter renders a relative encounter reference.
func ReferenceForEncounter(encounterID string) string {
	return "Encounter/" + encounterID
}
