package exports

import (
	"context"
	"errors"
	"testing"

	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsDuplicateFindsTaggedDocument(t *testing.T) {
	detector := NewDuplicateDetector(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	existing, err := json.Marshal(fhir_dto.DocumentReference{
		ID:           "target-doc-1",
		ResourceType: constvars.ResourceDocumentReference,
		Subject:      &fhir_dto.Reference{Reference: "Patient/target-pat-1"},
		Meta: &fhir_dto.Meta{Tag: []fhir_dto.Coding{{
			System: constvars.CorrelationTagSystem,
			Code:   "original-cerner-id-doc-1",
		}}},
	})
	require.NoError(t, err)

	client := &fakeTargetClient{
		searchByTag: func(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error) {
			assert.Equal(t, constvars.ResourceDocumentReference, resourceType)
			assert.Equal(t, "original-cerner-id-doc-1", tagCode)
			bundle := emptyBundle()
			bundle.Entry = []fhir_dto.BundleEntry{{Resource: existing}}
			return bundle, nil
		},
	}

	result := detector.IsDuplicate(context.Background(), tenantCtx, constvars.VendorCerner, "doc-1", client)
	assert.True(t, result.IsDuplicate)
	assert.Equal(t, "target-pat-1", result.TargetPatientID)
}

func TestIsDuplicateFailsOpenOnSearchError(t *testing.T) {
	detector := NewDuplicateDetector(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	client := &fakeTargetClient{
		searchByTag: func(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error) {
			return nil, errors.New("target store unavailable")
		},
	}

	result := detector.IsDuplicate(context.Background(), tenantCtx, constvars.VendorCerner, "doc-1", client)
	assert.False(t, result.IsDuplicate, "a failed duplicate search must treat the document as new")
}

func TestIsDuplicateIgnoresOtherTags(t *testing.T) {
	detector := NewDuplicateDetector(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	other, err := json.Marshal(fhir_dto.DocumentReference{
		ID:           "target-doc-2",
		ResourceType: constvars.ResourceDocumentReference,
		Meta: &fhir_dto.Meta{Tag: []fhir_dto.Coding{{
			System: constvars.CorrelationTagSystem,
			Code:   "original-cerner-id-doc-other",
		}}},
	})
	require.NoError(t, err)

	client := &fakeTargetClient{
		searchByTag: func(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error) {
			bundle := emptyBundle()
			bundle.Entry = []fhir_dto.BundleEntry{{Resource: other}}
			return bundle, nil
		},
	}

	result := detector.IsDuplicate(context.Background(), tenantCtx, constvars.VendorCerner, "doc-1", client)
	assert.False(t, result.IsDuplicate)
}
