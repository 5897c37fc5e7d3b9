package exports

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	stepLocateSource     = "LOCATE_SOURCE"
	stepCheckDuplicate   = "CHECK_DUPLICATE"
	stepReconcilePatient = "RECONCILE_PATIENT"
	stepDownloadBinary   = "DOWNLOAD_BINARY"
	stepTransform        = "TRANSFORM"
	stepArchiveBinary    = "ARCHIVE_BINARY"
	stepWriteBinary      = "WRITE_BINARY"
	stepWriteDocumentRef = "WRITE_DOCUMENT_REF"
	stepWriteComposition = "WRITE_COMPOSITION"
	stepDone             = "DONE"
)

var (
	exportUsecaseInstance contracts.ExportUsecase
	onceExportUsecase     sync.Once
)

type exportUsecase struct {
	tenants     contracts.TenantUsecase
	factory     contracts.VendorAdapterFactory
	clients     contracts.TargetClientProvider
	duplicates  contracts.DuplicateDetector
	reconciler  contracts.PatientReconciler
	transformer contracts.BinaryTransformer
	archive     contracts.ObjectStorage
	events      contracts.EventPublisher
	log         *zap.Logger
}

func NewExportUsecase(
	tenants contracts.TenantUsecase,
	factory contracts.VendorAdapterFactory,
	clients contracts.TargetClientProvider,
	duplicates contracts.DuplicateDetector,
	reconciler contracts.PatientReconciler,
	transformer contracts.BinaryTransformer,
	archive contracts.ObjectStorage,
	events contracts.EventPublisher,
	logger *zap.Logger,
) contracts.ExportUsecase {
	onceExportUsecase.Do(func() {
		exportUsecaseInstance = &exportUsecase{
			tenants:     tenants,
			factory:     factory,
			clients:     clients,
			duplicates:  duplicates,
			reconciler:  reconciler,
			transformer: transformer,
			archive:     archive,
			events:      events,
			log:         logger,
		}
	})
	return exportUsecaseInstance
}

// ExportDocument drives one document through the export pipeline. The result
// is always a value; every failure mode ends with Success false, an Error
// string and the steps that were reached, never a panic or a partial write
// that a retry could not repair.
func (u *exportUsecase) ExportDocument(ctx context.Context, tenantCtx *requests.TenantContext, request *requests.ExportDocument) *responses.ExportResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	u.log.Info("exportUsecase.ExportDocument called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, tenantCtx.TenantID),
		zap.String(constvars.LoggingPatientIDKey, request.PatientID),
		zap.String(constvars.LoggingDocumentIDKey, request.DocumentID),
	)

	result := &responses.ExportResult{
		Metadata: responses.ExportMetadata{ExportTimestamp: time.Now().UTC()},
	}

	config, err := u.tenants.ResolveSyncConfig(ctx, tenantCtx.TenantID)
	if err != nil {
		return u.fail(ctx, tenantCtx, result, err.Error())
	}
	result.Metadata.Vendor = config.Vendor

	adapter, err := u.factory.GetAdapter(ctx, tenantCtx)
	if err != nil {
		return u.fail(ctx, tenantCtx, result, err.Error())
	}
	client := u.clients.ClientFor(config.TargetBaseURL)

	// LOCATE_SOURCE
	result.Metadata.Steps = append(result.Metadata.Steps, stepLocateSource)
	sourceDoc, err := u.locateSource(ctx, adapter, request)
	if err != nil {
		return u.fail(ctx, tenantCtx, result, err.Error())
	}
	result.SourceDocumentID = sourceDoc.ID
	result.SourcePatientID = sourceDoc.SourcePatientID
	result.EncounterID = sourceDoc.SourceEncounterID

	// CHECK_DUPLICATE
	result.Metadata.Steps = append(result.Metadata.Steps, stepCheckDuplicate)
	duplicate := u.duplicates.IsDuplicate(ctx, tenantCtx, config.Vendor, sourceDoc.ID, client)
	if duplicate.IsDuplicate {
		u.log.Info("exportUsecase.ExportDocument document already exported",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDocumentIDKey, sourceDoc.ID),
		)
		result.Success = true
		result.TargetPatientID = duplicate.TargetPatientID
		result.Metadata.DuplicateCheck = constvars.DuplicateCheckDuplicate
		result.Metadata.Steps = append(result.Metadata.Steps, stepDone)
		u.publishEvent(ctx, tenantCtx, result)
		return result
	}
	result.Metadata.DuplicateCheck = constvars.DuplicateCheckNew

	// RECONCILE_PATIENT
	result.Metadata.Steps = append(result.Metadata.Steps, stepReconcilePatient)
	mapping := u.reconciler.Reconcile(ctx, adapter, client, sourceDoc.SourcePatientID, tenantCtx)
	result.Metadata.PatientMapping = mapping
	if mapping.Action == constvars.PatientMappingFailed {
		return u.fail(ctx, tenantCtx, result, fmt.Sprintf("patient reconciliation failed: %s", mapping.Error))
	}
	result.TargetPatientID = mapping.TargetPatientID

	// DOWNLOAD_BINARY + TRANSFORM
	result.Metadata.Steps = append(result.Metadata.Steps, stepDownloadBinary, stepTransform)
	transformed, err := u.transformer.Transform(ctx, adapter, sourceDoc)
	if err != nil {
		return u.fail(ctx, tenantCtx, result, err.Error())
	}
	result.Metadata.ContentType = transformed.ContentType
	result.Metadata.OriginalSize = transformed.OriginalSize

	// ARCHIVE_BINARY never fails the export.
	result.Metadata.Steps = append(result.Metadata.Steps, stepArchiveBinary)
	u.archiveBinary(ctx, tenantCtx, config.Vendor, sourceDoc.ID, transformed)

	// WRITE_BINARY
	result.Metadata.Steps = append(result.Metadata.Steps, stepWriteBinary)
	binaryID, err := u.writeBinary(ctx, client, config.Vendor, sourceDoc.ID, transformed)
	if err != nil {
		return u.fail(ctx, tenantCtx, result, err.Error())
	}
	result.TargetBinaryID = binaryID

	// WRITE_DOCUMENT_REF
	result.Metadata.Steps = append(result.Metadata.Steps, stepWriteDocumentRef)
	docRefID, err := u.writeDocumentReference(ctx, client, config.Vendor, sourceDoc, mapping.TargetPatientID, binaryID, transformed)
	if err != nil {
		return u.fail(ctx, tenantCtx, result, err.Error())
	}
	result.TargetDocumentReferenceID = docRefID

	// WRITE_COMPOSITION only applies to encounter-linked documents.
	if sourceDoc.SourceEncounterID != "" {
		result.Metadata.Steps = append(result.Metadata.Steps, stepWriteComposition)
		compositionID, err := u.writeComposition(ctx, client, config.Vendor, sourceDoc, mapping.TargetPatientID, docRefID)
		if err != nil {
			u.log.Warn("exportUsecase.ExportDocument composition write failed, export still succeeds",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingDocumentIDKey, sourceDoc.ID),
				zap.Error(err),
			)
		} else {
			result.TargetCompositionID = compositionID
		}
	}

	result.Success = true
	result.Metadata.Steps = append(result.Metadata.Steps, stepDone)
	u.log.Info("exportUsecase.ExportDocument succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDocumentIDKey, sourceDoc.ID),
		zap.Strings(constvars.LoggingStepsKey, result.Metadata.Steps),
	)
	u.publishEvent(ctx, tenantCtx, result)
	return result
}

func (u *exportUsecase) locateSource(ctx context.Context, adapter contracts.VendorAdapter, request *requests.ExportDocument) (*responses.SourceDocument, error) {
	if request.DocumentID != "" {
		vendorResp, err := adapter.FetchResource(ctx, constvars.ResourceDocumentReference, request.DocumentID)
		if err != nil {
			return nil, err
		}
		if vendorResp == nil {
			return nil, fmt.Errorf("no usable response from vendor for document %s", request.DocumentID)
		}
		if vendorResp.Outcome != nil {
			return nil, fmt.Errorf("No discharge summary found")
		}
		doc := fhir_dto.DocumentReference{}
		if err := json.Unmarshal(vendorResp.Resource, &doc); err != nil {
			return nil, err
		}
		source := adapter.ParseDocumentReference(&doc)
		if source.SourcePatientID == "" {
			source.SourcePatientID = request.PatientID
		}
		if source.SourcePatientID == "" {
			return nil, fmt.Errorf("source document %s has no patient id", source.ID)
		}
		return source, nil
	}

	documents, err := adapter.SearchDischargeSummaries(ctx, request.PatientID)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("No discharge summary found")
	}

	// The most recent note wins when the vendor returns several.
	selected := documents[0]
	for _, doc := range documents[1:] {
		if doc.Date > selected.Date {
			selected = doc
		}
	}
	source := adapter.ParseDocumentReference(&selected)
	if source.SourcePatientID == "" {
		source.SourcePatientID = request.PatientID
	}
	return source, nil
}

func (u *exportUsecase) archiveBinary(ctx context.Context, tenantCtx *requests.TenantContext, vendor, documentID string, transformed *responses.TransformedBinary) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	objectName := fmt.Sprintf("%s/%s/%s", tenantCtx.TenantID, vendor, documentID)

	if err := u.archive.PutObject(ctx, objectName, transformed.Data, transformed.ContentType); err != nil {
		u.log.Warn("exportUsecase.archiveBinary archive write failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectKey, objectName),
			zap.Error(err),
		)
	}
}

// writeBinary submits a conditional create keyed on the correlation tag:
// Binary carries no identifier, so a retried export that already wrote the
// payload matches the tag instead of creating an orphan.
func (u *exportUsecase) writeBinary(ctx context.Context, client contracts.TargetFHIRClient, vendor, documentID string, transformed *responses.TransformedBinary) (string, error) {
	binary := fhir_dto.Binary{
		ResourceType: constvars.ResourceBinary,
		ContentType:  transformed.ContentType,
		Data:         base64.StdEncoding.EncodeToString(transformed.Data),
		Meta: &fhir_dto.Meta{
			Tag: []fhir_dto.Coding{{
				System: constvars.CorrelationTagSystem,
				Code:   utils.BuildCorrelationTag(vendor, documentID),
			}},
		},
	}

	payload, err := json.Marshal(binary)
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
				Url:         constvars.ResourceBinary,
				IfNoneExist: utils.BuildConditionalTag(vendor, documentID),
			},
		}},
	}

	response, err := client.SubmitBatch(ctx, bundle)
	if err != nil {
		return "", err
	}
	return resourceIDFromBatchEntry(response, 0, constvars.ResourceBinary)
}

// writeDocumentReference submits a conditional create so a concurrent or
// retried export of the same document collapses onto one target resource.
func (u *exportUsecase) writeDocumentReference(ctx context.Context, client contracts.TargetFHIRClient, vendor string, sourceDoc *responses.SourceDocument, targetPatientID, binaryID string, transformed *responses.TransformedBinary) (string, error) {
	docRef := fhir_dto.DocumentReference{
		ResourceType: constvars.ResourceDocumentReference,
		Status:       constvars.FhirDocumentStatusCurrent,
		Date:         sourceDoc.Date,
		Type: fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{
				System:  constvars.LoincSystem,
				Code:    constvars.LoincDischargeSummaryCode,
				Display: constvars.DischargeSummaryDisplayName,
			}},
		},
		Subject: &fhir_dto.Reference{Reference: utils.ReferenceForPatient(targetPatientID)},
		Identifier: []fhir_dto.Identifier{{
			System: utils.BuildSourceIdentifierSystem(vendor),
			Value:  sourceDoc.ID,
		}},
		Meta: &fhir_dto.Meta{
			Tag: []fhir_dto.Coding{{
				System: constvars.CorrelationTagSystem,
				Code:   utils.BuildCorrelationTag(vendor, sourceDoc.ID),
			}},
		},
		Content: []fhir_dto.DocumentReferenceContent{{
			Attachment: fhir_dto.Attachment{
				ContentType: transformed.ContentType,
				Url:         constvars.ResourceBinary + "/" + binaryID,
				Size:        int64(transformed.OriginalSize),
			},
		}},
	}

	payload, err := json.Marshal(docRef)
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
				Url:         constvars.ResourceDocumentReference,
				IfNoneExist: utils.BuildConditionalIdentifier(vendor, sourceDoc.ID),
			},
		}},
	}

	response, err := client.SubmitBatch(ctx, bundle)
	if err != nil {
		return "", err
	}
	return resourceIDFromBatchEntry(response, 0, constvars.ResourceDocumentReference)
}

func (u *exportUsecase) writeComposition(ctx context.Context, client contracts.TargetFHIRClient, vendor string, sourceDoc *responses.SourceDocument, targetPatientID, docRefID string) (string, error) {
	compositionSourceID := sourceDoc.ID + "-composition"
	composition := fhir_dto.Composition{
		ResourceType: constvars.ResourceComposition,
		Status:       constvars.FhirCompositionStatusFinal,
		Title:        constvars.DischargeSummaryDisplayName,
		Date:         sourceDoc.Date,
		Type: fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{
				System:  constvars.LoincSystem,
				Code:    constvars.LoincDischargeSummaryCode,
				Display: constvars.DischargeSummaryDisplayName,
			}},
		},
		Subject: &fhir_dto.Reference{Reference: utils.ReferenceForPatient(targetPatientID)},
		Identifier: &fhir_dto.Identifier{
			System: utils.BuildSourceIdentifierSystem(vendor),
			Value:  compositionSourceID,
		},
		Meta: &fhir_dto.Meta{
			Tag: []fhir_dto.Coding{{
				System: constvars.CorrelationTagSystem,
				Code:   utils.BuildCorrelationTag(vendor, compositionSourceID),
			}},
		},
		Section: []fhir_dto.CompositionSection{{
			Title: constvars.CompositionSectionDocuments,
			Entry: []fhir_dto.Reference{{Reference: constvars.ResourceDocumentReference + "/" + docRefID}},
		}},
	}

	payload, err := json.Marshal(composition)
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
				Url:         constvars.ResourceComposition,
				IfNoneExist: utils.BuildConditionalIdentifier(vendor, compositionSourceID),
			},
		}},
	}

	response, err := client.SubmitBatch(ctx, bundle)
	if err != nil {
		return "", err
	}
	return resourceIDFromBatchEntry(response, 0, constvars.ResourceComposition)
}

func (u *exportUsecase) fail(ctx context.Context, tenantCtx *requests.TenantContext, result *responses.ExportResult, errMsg string) *responses.ExportResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	result.Success = false
	result.Error = errMsg

	u.log.Error("exportUsecase.ExportDocument failed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, tenantCtx.TenantID),
		zap.String(constvars.LoggingDocumentIDKey, result.SourceDocumentID),
		zap.Strings(constvars.LoggingStepsKey, result.Metadata.Steps),
		zap.String("error", errMsg),
	)
	u.publishEvent(ctx, tenantCtx, result)
	return result
}

// publishEvent is fire-and-forget: a broker outage never changes the outcome
// of an export.
func (u *exportUsecase) publishEvent(ctx context.Context, tenantCtx *requests.TenantContext, result *responses.ExportResult) {
	status := constvars.ExportStatusSuccess
	if !result.Success {
		status = constvars.ExportStatusFailed
	}

	event := &responses.ExportEvent{
		SourceDocumentID: result.SourceDocumentID,
		TenantID:         tenantCtx.TenantID,
		PatientID:        result.SourcePatientID,
		Status:           status,
		Error:            result.Error,
		Metadata:         &result.Metadata,
	}

	if err := u.events.PublishExportEvent(ctx, event); err != nil {
		requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		u.log.Warn("exportUsecase.publishEvent publish failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}

// resourceIDFromBatchEntry pulls the created (or matched) resource id out of
// a batch response entry, falling back to the resource body when the server
// omits the Location header.
func resourceIDFromBatchEntry(bundle *fhir_dto.Bundle, index int, resourceType string) (string, error) {
	if bundle == nil || index >= len(bundle.Entry) {
		return "", fmt.Errorf("batch response has no entry for %s", resourceType)
	}
	entry := bundle.Entry[index]

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
