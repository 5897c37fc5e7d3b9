package exports

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReconcileFindsExistingPatient(t *testing.T) {
	reconciler := NewPatientReconciler(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	existing, err := json.Marshal(fhir_dto.Patient{
		ID:           "target-pat-1",
		ResourceType: constvars.ResourcePatient,
		Identifier: []fhir_dto.Identifier{{
			System: constvars.SourcePatientIdentifierSystem,
			Value:  "src-pat-1",
		}},
	})
	require.NoError(t, err)

	var createCalled bool
	client := &fakeTargetClient{
		searchResource: func(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error) {
			assert.Equal(t, constvars.ResourcePatient, resourceType)
			assert.Equal(t, constvars.SourcePatientIdentifierSystem+"|src-pat-1", query.Get("identifier"))
			bundle := emptyBundle()
			bundle.Entry = []fhir_dto.BundleEntry{{Resource: existing}}
			return bundle, nil
		},
		createResource: func(ctx context.Context, resourceType string, body interface{}) (json.RawMessage, error) {
			createCalled = true
			return nil, errors.New("create must not happen for an existing mapping")
		},
	}

	sourcePatient, err := json.Marshal(fhir_dto.Patient{ID: "src-pat-1", ResourceType: constvars.ResourcePatient})
	require.NoError(t, err)
	adapter := &fakeAdapter{
		fetchResource: func(resourceType, resourceID string) (*contracts.VendorResponse, error) {
			return &contracts.VendorResponse{Resource: sourcePatient}, nil
		},
	}

	mapping := reconciler.Reconcile(context.Background(), adapter, client, "src-pat-1", tenantCtx)
	assert.Equal(t, constvars.PatientMappingFound, mapping.Action)
	assert.Equal(t, "target-pat-1", mapping.TargetPatientID)
	assert.Equal(t, "src-pat-1", mapping.SourcePatientID)
	assert.False(t, createCalled)
}

func TestReconcileSourceFetchFailureWinsOverExistingMapping(t *testing.T) {
	reconciler := NewPatientReconciler(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	existing, err := json.Marshal(fhir_dto.Patient{
		ID:           "target-pat-1",
		ResourceType: constvars.ResourcePatient,
		Identifier: []fhir_dto.Identifier{{
			System: constvars.SourcePatientIdentifierSystem,
			Value:  "src-pat-9",
		}},
	})
	require.NoError(t, err)

	client := &fakeTargetClient{
		searchResource: func(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error) {
			bundle := emptyBundle()
			bundle.Entry = []fhir_dto.BundleEntry{{Resource: existing}}
			return bundle, nil
		},
	}
	adapter := &fakeAdapter{
		fetchResource: func(resourceType, resourceID string) (*contracts.VendorResponse, error) {
			return nil, errors.New("vendor timeout")
		},
	}

	// The source fetch comes first: a mapping in the target store must not
	// mask an unfetchable source patient.
	mapping := reconciler.Reconcile(context.Background(), adapter, client, "src-pat-9", tenantCtx)
	assert.Equal(t, constvars.PatientMappingFailed, mapping.Action)
	assert.Empty(t, mapping.TargetPatientID)
	assert.Contains(t, mapping.Error, "vendor timeout")
}

func TestReconcileCreatesShadowPatient(t *testing.T) {
	reconciler := NewPatientReconciler(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	sourcePatient, err := json.Marshal(fhir_dto.Patient{
		ID:           "src-pat-1",
		ResourceType: constvars.ResourcePatient,
		Gender:       "FEMALE",
		Name:         []fhir_dto.HumanName{{Family: "Doe\x00"}},
	})
	require.NoError(t, err)

	adapter := &fakeAdapter{
		fetchResource: func(resourceType, resourceID string) (*contracts.VendorResponse, error) {
			assert.Equal(t, constvars.ResourcePatient, resourceType)
			assert.Equal(t, "src-pat-1", resourceID)
			return &contracts.VendorResponse{Resource: sourcePatient}, nil
		},
	}

	var createdBody fhir_dto.Patient
	client := &fakeTargetClient{
		createResource: func(ctx context.Context, resourceType string, body interface{}) (json.RawMessage, error) {
			payload, err := json.Marshal(body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(payload, &createdBody))
			return json.Marshal(fhir_dto.Patient{ID: "target-pat-9", ResourceType: constvars.ResourcePatient})
		},
	}

	mapping := reconciler.Reconcile(context.Background(), adapter, client, "src-pat-1", tenantCtx)
	assert.Equal(t, constvars.PatientMappingCreated, mapping.Action)
	assert.Equal(t, "target-pat-9", mapping.TargetPatientID)

	// Created patient carries the source identifier and sanitized fields.
	require.Len(t, createdBody.Identifier, 1)
	assert.Equal(t, constvars.SourcePatientIdentifierSystem, createdBody.Identifier[0].System)
	assert.Equal(t, "src-pat-1", createdBody.Identifier[0].Value)
	assert.Equal(t, "female", createdBody.Gender)
	assert.Equal(t, "Doe", createdBody.Name[0].Family)
}

func TestReconcileVendorAuthFailure(t *testing.T) {
	reconciler := NewPatientReconciler(zap.NewNop())
	tenantCtx := &requests.TenantContext{TenantID: "tenant-1"}

	adapter := &fakeAdapter{
		fetchResource: func(resourceType, resourceID string) (*contracts.VendorResponse, error) {
			return nil, nil
		},
	}
	client := &fakeTargetClient{}

	mapping := reconciler.Reconcile(context.Background(), adapter, client, "src-pat-1", tenantCtx)
	assert.Equal(t, constvars.PatientMappingFailed, mapping.Action)
	assert.NotEmpty(t, mapping.Error)
}
