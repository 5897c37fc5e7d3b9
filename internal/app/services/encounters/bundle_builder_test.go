package encounters

import (
	"testing"

	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBatchBundleBuilderConditionalEntries(t *testing.T) {
	builder := newBatchBundleBuilder(constvars.VendorCerner, zap.NewNop())

	builder.Add(constvars.ResourceCondition, "cond-1", fhir_dto.Condition{ResourceType: constvars.ResourceCondition})
	builder.Add(constvars.ResourceMedicationRequest, "med-1", fhir_dto.MedicationRequest{ResourceType: constvars.ResourceMedicationRequest})
	builder.Add(constvars.ResourceAppointment, "appt-1", fhir_dto.Appointment{ResourceType: constvars.ResourceAppointment})

	bundle := builder.Build()
	require.Len(t, bundle.Entry, 3)
	assert.Equal(t, constvars.FhirBundleTypeBatch, bundle.Type)

	assert.Equal(t, "POST", bundle.Entry[0].Request.Method)
	assert.Equal(t, constvars.ResourceCondition, bundle.Entry[0].Request.Url)
	assert.Equal(t, "identifier=original-cerner-id|cond-1", bundle.Entry[0].Request.IfNoneExist)
	assert.Equal(t, "identifier=original-cerner-id|med-1", bundle.Entry[1].Request.IfNoneExist)
	assert.Equal(t, "identifier=original-cerner-id|appt-1", bundle.Entry[2].Request.IfNoneExist)
}

func TestBatchBundleBuilderSkipsMissingSourceID(t *testing.T) {
	builder := newBatchBundleBuilder(constvars.VendorCerner, zap.NewNop())

	builder.Add(constvars.ResourceCondition, "", fhir_dto.Condition{ResourceType: constvars.ResourceCondition})
	builder.Add(constvars.ResourceCondition, "cond-1", fhir_dto.Condition{ResourceType: constvars.ResourceCondition})

	assert.Equal(t, 1, builder.Len())
	assert.Equal(t, 1, builder.Skipped())
}

func TestBatchBundleBuilderAttribution(t *testing.T) {
	builder := newBatchBundleBuilder(constvars.VendorCerner, zap.NewNop())
	builder.Add(constvars.ResourceCondition, "cond-1", fhir_dto.Condition{ResourceType: constvars.ResourceCondition})
	builder.Add(constvars.ResourceMedicationRequest, "med-1", fhir_dto.MedicationRequest{ResourceType: constvars.ResourceMedicationRequest})
	builder.Add(constvars.ResourceAppointment, "appt-1", fhir_dto.Appointment{ResourceType: constvars.ResourceAppointment})

	response := &fhir_dto.Bundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeBatchResponse,
		Entry: []fhir_dto.BundleEntry{
			{Response: &fhir_dto.BundleEntryResponse{Status: "201 Created", Location: "Condition/c-9"}},
			{Response: &fhir_dto.BundleEntryResponse{Status: "200 OK", Location: "https://target/fhir/MedicationRequest/m-3/_history/2"}},
			{Response: &fhir_dto.BundleEntryResponse{Status: "201 Created", Location: "Appointment/a-7"}},
		},
	}

	created := builder.Attribute(response)
	assert.Equal(t, []string{"c-9"}, created[constvars.ResourceCondition])
	assert.Equal(t, []string{"m-3"}, created[constvars.ResourceMedicationRequest])
	assert.Equal(t, []string{"a-7"}, created[constvars.ResourceAppointment])
}

func TestBatchBundleBuilderAttributionSkipsUnparsable(t *testing.T) {
	builder := newBatchBundleBuilder(constvars.VendorCerner, zap.NewNop())
	builder.Add(constvars.ResourceCondition, "cond-1", fhir_dto.Condition{ResourceType: constvars.ResourceCondition})

	response := &fhir_dto.Bundle{
		Entry: []fhir_dto.BundleEntry{
			{Response: &fhir_dto.BundleEntryResponse{Status: "400 Bad Request"}},
		},
	}

	created := builder.Attribute(response)
	assert.Empty(t, created[constvars.ResourceCondition])
}
