package encounters

import (
	"context"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var sectionTitleByResource = map[string]string{
	constvars.ResourceCondition:         constvars.CompositionSectionConditions,
	constvars.ResourceMedicationRequest: constvars.CompositionSectionMedications,
	constvars.ResourceAppointment:       constvars.CompositionSectionAppointments,
	constvars.ResourceDocumentReference: constvars.CompositionSectionDocuments,
}

// compositionMerger maintains the per-encounter summary Composition. Merging
// is append-only: existing section entries are never removed or reordered,
// and a reference already present in a section is not added twice, so
// repeated exports leave the composition unchanged.
type compositionMerger struct {
	log *zap.Logger
}

func newCompositionMerger(logger *zap.Logger) *compositionMerger {
	return &compositionMerger{log: logger}
}

func (m *compositionMerger) Merge(ctx context.Context, client contracts.TargetFHIRClient, vendor, sourceEncounterID, targetPatientID, targetEncounterID string, created map[string][]string) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	compositionSourceID := sourceEncounterID + "-composition"
	tag := utils.BuildCorrelationTag(vendor, compositionSourceID)

	m.log.Info("compositionMerger.Merge called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEncounterIDKey, sourceEncounterID),
		zap.String(constvars.LoggingTagKey, tag),
	)

	existing, err := m.findExisting(ctx, client, tag)
	if err != nil {
		return "", err
	}

	if existing == nil {
		composition := &fhir_dto.Composition{
			ResourceType: constvars.ResourceComposition,
			Status:       constvars.FhirCompositionStatusFinal,
			Title:        "Encounter Summary",
			Subject:      &fhir_dto.Reference{Reference: utils.ReferenceForPatient(targetPatientID)},
			Encounter:    &fhir_dto.Reference{Reference: utils.ReferenceForEncounter(targetEncounterID)},
			Identifier: &fhir_dto.Identifier{
				System: utils.BuildSourceIdentifierSystem(vendor),
				Value:  compositionSourceID,
			},
			Meta: &fhir_dto.Meta{
				Tag: []fhir_dto.Coding{{System: constvars.CorrelationTagSystem, Code: tag}},
			},
		}
		mergeSections(composition, created)

		raw, err := client.CreateResource(ctx, constvars.ResourceComposition, composition)
		if err != nil {
			return "", err
		}
		createdComposition := fhir_dto.Composition{}
		if err := json.Unmarshal(raw, &createdComposition); err != nil {
			return "", err
		}
		return createdComposition.ID, nil
	}

	mergeSections(existing, created)
	if _, err := client.UpdateResource(ctx, constvars.ResourceComposition, existing.ID, existing); err != nil {
		return "", err
	}
	return existing.ID, nil
}

func (m *compositionMerger) findExisting(ctx context.Context, client contracts.TargetFHIRClient, tag string) (*fhir_dto.Composition, error) {
	bundle, err := client.SearchByTag(ctx, constvars.ResourceComposition, tag)
	if err != nil {
		return nil, err
	}

	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		composition := new(fhir_dto.Composition)
		if err := json.Unmarshal(entry.Resource, composition); err != nil {
			continue
		}
		if utils.FindTagCode(composition.Meta, constvars.CorrelationTagSystem, tag) {
			return composition, nil
		}
	}
	return nil, nil
}

func mergeSections(composition *fhir_dto.Composition, created map[string][]string) {
	for resourceType, ids := range created {
		title, ok := sectionTitleByResource[resourceType]
		if !ok {
			continue
		}
		section := findOrCreateSection(composition, title)
		for _, id := range ids {
			reference := resourceType + "/" + id
			if !sectionHasReference(section, reference) {
				section.Entry = append(section.Entry, fhir_dto.Reference{Reference: reference})
			}
		}
	}
}

func findOrCreateSection(composition *fhir_dto.Composition, title string) *fhir_dto.CompositionSection {
	for i := range composition.Section {
		if composition.Section[i].Title == title {
			return &composition.Section[i]
		}
	}
	composition.Section = append(composition.Section, fhir_dto.CompositionSection{Title: title})
	return &composition.Section[len(composition.Section)-1]
}

func sectionHasReference(section *fhir_dto.CompositionSection, reference string) bool {
	for _, entry := range section.Entry {
		if entry.Reference == reference {
			return true
		}
	}
	return false
}
