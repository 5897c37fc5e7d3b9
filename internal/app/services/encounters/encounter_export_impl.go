package encounters

import (
	"context"
	"net/url"
	"sync"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	encounterUsecaseInstance contracts.EncounterExportUsecase
	onceEncounterUsecase     sync.Once
)

type encounterExportUsecase struct {
	tenants    contracts.TenantUsecase
	factory    contracts.VendorAdapterFactory
	clients    contracts.TargetClientProvider
	reconciler contracts.PatientReconciler
	merger     *compositionMerger
	log        *zap.Logger
}

func NewEncounterExportUsecase(
	tenants contracts.TenantUsecase,
	factory contracts.VendorAdapterFactory,
	clients contracts.TargetClientProvider,
	reconciler contracts.PatientReconciler,
	logger *zap.Logger,
) contracts.EncounterExportUsecase {
	onceEncounterUsecase.Do(func() {
		encounterUsecaseInstance = &encounterExportUsecase{
			tenants:    tenants,
			factory:    factory,
			clients:    clients,
			reconciler: reconciler,
			merger:     newCompositionMerger(logger),
			log:        logger,
		}
	})
	return encounterUsecaseInstance
}

// ExportEncounter copies one encounter and its clinical context onto the
// target store. The encounter itself is created first so every related
// resource in the follow-up batch can reference it; all writes are
// conditional creates keyed on the source ids.
func (u *encounterExportUsecase) ExportEncounter(ctx context.Context, tenantCtx *requests.TenantContext, request *requests.ExportEncounter) *responses.EncounterExportResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	u.log.Info("encounterExportUsecase.ExportEncounter called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, tenantCtx.TenantID),
		zap.String(constvars.LoggingEncounterIDKey, request.EncounterID),
	)

	result := &responses.EncounterExportResult{SourceEncounterID: request.EncounterID}

	config, err := u.tenants.ResolveSyncConfig(ctx, tenantCtx.TenantID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	adapter, err := u.factory.GetAdapter(ctx, tenantCtx)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	client := u.clients.ClientFor(config.TargetBaseURL)

	sourceEncounter, err := u.fetchSourceEncounter(ctx, adapter, request.EncounterID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	mapping := u.reconciler.Reconcile(ctx, adapter, client, request.PatientID, tenantCtx)
	if mapping.Action == constvars.PatientMappingFailed {
		result.Error = "patient reconciliation failed: " + mapping.Error
		return result
	}
	result.TargetPatientID = mapping.TargetPatientID

	targetEncounterID, err := u.writeEncounter(ctx, client, config.Vendor, sourceEncounter, mapping.TargetPatientID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.TargetEncounterID = targetEncounterID

	builder := newBatchBundleBuilder(config.Vendor, u.log)
	u.collectRelatedResources(ctx, adapter, request, builder, mapping.TargetPatientID, targetEncounterID)
	result.SkippedResources = builder.Skipped()

	created := map[string][]string{}
	if builder.Len() > 0 {
		response, err := client.SubmitBatch(ctx, builder.Build())
		if err != nil {
			result.Error = err.Error()
			return result
		}
		created = builder.Attribute(response)
	}
	result.CreatedResources = created

	compositionID, err := u.merger.Merge(ctx, client, config.Vendor, request.EncounterID, mapping.TargetPatientID, targetEncounterID, created)
	if err != nil {
		u.log.Warn("encounterExportUsecase.ExportEncounter composition merge failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEncounterIDKey, request.EncounterID),
			zap.Error(err),
		)
	} else {
		result.TargetCompositionID = compositionID
	}

	result.Success = true
	u.log.Info("encounterExportUsecase.ExportEncounter succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEncounterIDKey, request.EncounterID),
		zap.Int(constvars.LoggingCountKey, builder.Len()),
		zap.Int("skipped", builder.Skipped()),
	)
	return result
}

func (u *encounterExportUsecase) fetchSourceEncounter(ctx context.Context, adapter contracts.VendorAdapter, encounterID string) (*fhir_dto.Encounter, error) {
	vendorResp, err := adapter.FetchResource(ctx, constvars.ResourceEncounter, encounterID)
	if err != nil {
		return nil, err
	}
	if vendorResp == nil {
		return nil, errVendorAuth
	}
	if vendorResp.Outcome != nil {
		return nil, errEncounterNotFound
	}

	encounter := new(fhir_dto.Encounter)
	if err := json.Unmarshal(vendorResp.Resource, encounter); err != nil {
		return nil, err
	}
	return encounter, nil
}

// writeEncounter conditionally creates the target encounter before the
// related-resource batch so those resources can reference it by id.
func (u *encounterExportUsecase) writeEncounter(ctx context.Context, client contracts.TargetFHIRClient, vendor string, source *fhir_dto.Encounter, targetPatientID string) (string, error) {
	target := fhir_dto.Encounter{
		ResourceType: constvars.ResourceEncounter,
		Status:       source.Status,
		Class:        source.Class,
		Type:         source.Type,
		Period:       source.Period,
		Subject:      &fhir_dto.Reference{Reference: utils.ReferenceForPatient(targetPatientID)},
		Identifier: []fhir_dto.Identifier{{
			System: utils.BuildSourceIdentifierSystem(vendor),
			Value:  source.ID,
		}},
		Meta: &fhir_dto.Meta{
			Tag: []fhir_dto.Coding{{
				System: constvars.CorrelationTagSystem,
				Code:   utils.BuildCorrelationTag(vendor, source.ID),
			}},
		},
	}

	payload, err := json.Marshal(target)
	if err != nil {
		return "", err
	}

	bundle := &fhir_dto.Bundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeBatch,
		Entry: []fhir_dto.BundleEntry{{
			Resource: payload,
			Request: &fhir_dto.BundleEntryRequest{
				Method:      constvars.MethodPost,
				Url:         constvars.ResourceEncounter,
				IfNoneExist: utils.BuildConditionalIdentifier(vendor, source.ID),
			},
		}},
	}

	response, err := client.SubmitBatch(ctx, bundle)
	if err != nil {
		return "", err
	}
	if response == nil || len(response.Entry) == 0 {
		return "", errEncounterNotAttributed
	}
	return idFromBatchEntry(&response.Entry[0], constvars.ResourceEncounter)
}

// collectRelatedResources pulls the encounter's conditions and medication
// orders plus the patient's appointments from the vendor and rewrites them
// for the target store. A failed vendor search drops that resource type from
// the batch rather than failing the export.
func (u *encounterExportUsecase) collectRelatedResources(ctx context.Context, adapter contracts.VendorAdapter, request *requests.ExportEncounter, builder *batchBundleBuilder, targetPatientID, targetEncounterID string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	vendor := adapter.Vendor()
	patientRef := &fhir_dto.Reference{Reference: utils.ReferenceForPatient(targetPatientID)}
	encounterRef := &fhir_dto.Reference{Reference: utils.ReferenceForEncounter(targetEncounterID)}

	encounterQuery := url.Values{}
	encounterQuery.Set("encounter", request.EncounterID)
	patientQuery := url.Values{}
	patientQuery.Set("patient", request.PatientID)

	if bundle, err := adapter.SearchResource(ctx, constvars.ResourceCondition, encounterQuery); err != nil {
		u.log.Warn("encounterExportUsecase condition search failed",
			zap.String(constvars.LoggingRequestIDKey, requestID), zap.Error(err))
	} else {
		for _, entry := range bundle.Entry {
			condition := new(fhir_dto.Condition)
			if err := json.Unmarshal(entry.Resource, condition); err != nil || condition.ResourceType != constvars.ResourceCondition {
				continue
			}
			sourceID := condition.ID
			condition.ID = ""
			condition.Subject = patientRef
			condition.Encounter = encounterRef
			condition.Recorder = nil
			stampProvenance(&condition.Meta, &condition.Identifier, vendor, sourceID)
			builder.Add(constvars.ResourceCondition, sourceID, condition)
		}
	}

	if bundle, err := adapter.SearchResource(ctx, constvars.ResourceMedicationRequest, encounterQuery); err != nil {
		u.log.Warn("encounterExportUsecase medication request search failed",
			zap.String(constvars.LoggingRequestIDKey, requestID), zap.Error(err))
	} else {
		for _, entry := range bundle.Entry {
			medication := new(fhir_dto.MedicationRequest)
			if err := json.Unmarshal(entry.Resource, medication); err != nil || medication.ResourceType != constvars.ResourceMedicationRequest {
				continue
			}
			sourceID := medication.ID
			medication.ID = ""
			medication.Subject = patientRef
			medication.Encounter = encounterRef
			medication.Requester = nil
			medication.MedicationReference = nil
			stampProvenance(&medication.Meta, &medication.Identifier, vendor, sourceID)
			builder.Add(constvars.ResourceMedicationRequest, sourceID, medication)
		}
	}

	if bundle, err := adapter.SearchResource(ctx, constvars.ResourceAppointment, patientQuery); err != nil {
		u.log.Warn("encounterExportUsecase appointment search failed",
			zap.String(constvars.LoggingRequestIDKey, requestID), zap.Error(err))
	} else {
		for _, entry := range bundle.Entry {
			appointment := new(fhir_dto.Appointment)
			if err := json.Unmarshal(entry.Resource, appointment); err != nil || appointment.ResourceType != constvars.ResourceAppointment {
				continue
			}
			sourceID := appointment.ID
			appointment.ID = ""
			appointment.Participant = []fhir_dto.AppointmentParticipant{{
				Actor:  patientRef,
				Status: "accepted",
			}}
			stampProvenance(&appointment.Meta, &appointment.Identifier, vendor, sourceID)
			builder.Add(constvars.ResourceAppointment, sourceID, appointment)
		}
	}
}

// stampProvenance replaces vendor identifiers and tags with the engine's own
// source identifier and correlation tag.
func stampProvenance(meta **fhir_dto.Meta, identifiers *[]fhir_dto.Identifier, vendor, sourceID string) {
	*identifiers = []fhir_dto.Identifier{{
		System: utils.BuildSourceIdentifierSystem(vendor),
		Value:  sourceID,
	}}
	*meta = &fhir_dto.Meta{
		Tag: []fhir_dto.Coding{{
			System: constvars.CorrelationTagSystem,
			Code:   utils.BuildCorrelationTag(vendor, sourceID),
		}},
	}
}
