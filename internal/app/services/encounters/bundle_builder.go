package encounters

import (
	"fmt"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// batchBundleBuilder accumulates conditional-create entries for one batch
// submission. Resources without a source id are skipped, not guessed at: a
// conditional create without an identifier clause would duplicate on retry.
type batchBundleBuilder struct {
	vendor  string
	log     *zap.Logger
	entries []fhir_dto.BundleEntry
	types   []string
	skipped int
}

func newBatchBundleBuilder(vendor string, logger *zap.Logger) *batchBundleBuilder {
	return &batchBundleBuilder{vendor: vendor, log: logger}
}

func (b *batchBundleBuilder) Add(resourceType, sourceID string, resource interface{}) {
	if sourceID == "" {
		b.skipped++
		b.log.Warn("batchBundleBuilder skipping resource without source id",
			zap.String(constvars.LoggingVendorKey, b.vendor),
			zap.String(constvars.LoggingResourceKey, resourceType),
		)
		return
	}

	payload, err := json.Marshal(resource)
	if err != nil {
		b.skipped++
		b.log.Warn("batchBundleBuilder skipping unmarshalable resource",
			zap.String(constvars.LoggingResourceKey, resourceType),
			zap.Error(err),
		)
		return
	}

	b.entries = append(b.entries, fhir_dto.BundleEntry{
		Resource: payload,
		Request: &fhir_dto.BundleEntryRequest{
			Method:      constvars.MethodPost,
			Url:         resourceType,
			IfNoneExist: utils.BuildConditionalIdentifier(b.vendor, sourceID),
		},
	})
	b.types = append(b.types, resourceType)
}

func (b *batchBundleBuilder) Len() int {
	return len(b.entries)
}

func (b *batchBundleBuilder) Skipped() int {
	return b.skipped
}

func (b *batchBundleBuilder) Build() *fhir_dto.Bundle {
	return &fhir_dto.Bundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeBatch,
		Entry:        b.entries,
	}
}

// Attribute maps the batch response back onto the submitted entry order and
// returns the created (or matched) ids grouped by resource type.
func (b *batchBundleBuilder) Attribute(response *fhir_dto.Bundle) map[string][]string {
	created := make(map[string][]string)
	if response == nil {
		return created
	}

	for i, entry := range response.Entry {
		if i >= len(b.types) {
			break
		}
		resourceType := b.types[i]

		id, err := idFromBatchEntry(&entry, resourceType)
		if err != nil {
			b.log.Warn("batchBundleBuilder could not attribute response entry",
				zap.String(constvars.LoggingResourceKey, resourceType),
				zap.Error(err),
			)
			continue
		}
		created[resourceType] = append(created[resourceType], id)
	}
	return created
}

func idFromBatchEntry(entry *fhir_dto.BundleEntry, resourceType string) (string, error) {
	if entry.Response != nil && entry.Response.Location != "" {
		parsed, err := utils.ParseResourceLocation(entry.Response.Location)
		if err == nil && parsed.ResourceType == resourceType {
			return parsed.ID, nil
		}
	}
	if len(entry.Resource) > 0 {
		envelope := struct {
			ID string `json:"id"`
		}{}
		if err := json.Unmarshal(entry.Resource, &envelope); err == nil && envelope.ID != "" {
			return envelope.ID, nil
		}
	}
	return "", fmt.Errorf("batch response entry for %s has no resource id", resourceType)
}
