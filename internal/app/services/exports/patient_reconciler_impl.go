package exports

import (
	"context"
	"net/url"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type patientReconciler struct {
	log *zap.Logger
}

func NewPatientReconciler(logger *zap.Logger) contracts.PatientReconciler {
	return &patientReconciler{log: logger}
}

// Reconcile resolves the source patient against the target store, creating a
// shadow patient when none exists yet. Resolution never returns an error:
// every failure mode is a mapping value with Action "failed", so the
// orchestrator decides what a missing patient means for the export.
func (r *patientReconciler) Reconcile(ctx context.Context, adapter contracts.VendorAdapter, client contracts.TargetFHIRClient, sourcePatientID string, tenantCtx *requests.TenantContext) *responses.PatientMapping {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	r.log.Info("patientReconciler.Reconcile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, tenantCtx.TenantID),
		zap.String(constvars.LoggingPatientIDKey, sourcePatientID),
	)

	mapping := &responses.PatientMapping{SourcePatientID: sourcePatientID}

	// The source record must be fetchable before any mapping is honored: an
	// unreachable vendor fails the reconciliation even when the target store
	// already holds a shadow patient.
	vendorResp, err := adapter.FetchResource(ctx, constvars.ResourcePatient, sourcePatientID)
	if err != nil {
		mapping.Action = constvars.PatientMappingFailed
		mapping.Error = err.Error()
		return mapping
	}
	if vendorResp == nil {
		mapping.Action = constvars.PatientMappingFailed
		mapping.Error = "no usable response from vendor for the source patient"
		return mapping
	}
	if vendorResp.Outcome != nil {
		mapping.Action = constvars.PatientMappingFailed
		mapping.Error = "vendor could not provide the source patient"
		return mapping
	}

	if targetID := r.findExisting(ctx, client, sourcePatientID); targetID != "" {
		mapping.TargetPatientID = targetID
		mapping.Action = constvars.PatientMappingFound
		return mapping
	}

	sourcePatient := fhir_dto.Patient{}
	if err := json.Unmarshal(vendorResp.Resource, &sourcePatient); err != nil {
		mapping.Action = constvars.PatientMappingFailed
		mapping.Error = "source patient payload is not decodable"
		return mapping
	}

	targetID, createErr := r.createShadowPatient(ctx, adapter, client, &sourcePatient, sourcePatientID)
	if createErr != nil {
		r.log.Error("patientReconciler.Reconcile shadow patient create failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, sourcePatientID),
			zap.Error(createErr),
		)
		mapping.Action = constvars.PatientMappingFailed
		mapping.Error = createErr.Error()
		return mapping
	}

	mapping.TargetPatientID = targetID
	mapping.Action = constvars.PatientMappingCreated
	return mapping
}

// findExisting searches the target store for a patient already carrying the
// source id under the engine's identifier system.
func (r *patientReconciler) findExisting(ctx context.Context, client contracts.TargetFHIRClient, sourcePatientID string) string {
	query := url.Values{}
	query.Set("identifier", constvars.SourcePatientIdentifierSystem+"|"+sourcePatientID)

	bundle, err := client.SearchResource(ctx, constvars.ResourcePatient, query)
	if err != nil {
		return ""
	}

	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		patient := fhir_dto.Patient{}
		if err := json.Unmarshal(entry.Resource, &patient); err != nil {
			continue
		}
		for _, identifier := range patient.Identifier {
			if identifier.System == constvars.SourcePatientIdentifierSystem && identifier.Value == sourcePatientID {
				return patient.ID
			}
		}
	}
	return ""
}

func (r *patientReconciler) createShadowPatient(ctx context.Context, adapter contracts.VendorAdapter, client contracts.TargetFHIRClient, sourcePatient *fhir_dto.Patient, sourcePatientID string) (string, error) {
	utils.SanitizePatient(sourcePatient)

	shadow := fhir_dto.Patient{
		ResourceType: constvars.ResourcePatient,
		Active:       true,
		Name:         sourcePatient.Name,
		Telecom:      sourcePatient.Telecom,
		Gender:       sourcePatient.Gender,
		BirthDate:    sourcePatient.BirthDate,
		Address:      sourcePatient.Address,
		Identifier: []fhir_dto.Identifier{
			{
				System: constvars.SourcePatientIdentifierSystem,
				Value:  sourcePatientID,
			},
		},
		Meta: &fhir_dto.Meta{
			Tag: []fhir_dto.Coding{
				{
					System: constvars.CorrelationTagSystem,
					Code:   utils.BuildCorrelationTag(adapter.Vendor(), sourcePatientID),
				},
			},
		},
	}

	raw, err := client.CreateResource(ctx, constvars.ResourcePatient, shadow)
	if err != nil {
		return "", err
	}

	created := fhir_dto.Patient{}
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}
