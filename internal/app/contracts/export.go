package contracts

import (
	"context"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
)

type DuplicateDetector interface {
	IsDuplicate(ctx context.Context, tenantCtx *requests.TenantContext, vendor, sourceDocumentID string, client TargetFHIRClient) *responses.DuplicateCheckResult
}

type PatientReconciler interface {
	Reconcile(ctx context.Context, adapter VendorAdapter, client TargetFHIRClient, sourcePatientID string, tenantCtx *requests.TenantContext) *responses.PatientMapping
}

type BinaryTransformer interface {
	Transform(ctx context.Context, adapter VendorAdapter, document *responses.SourceDocument) (*responses.TransformedBinary, error)
}

type ExportUsecase interface {
	ExportDocument(ctx context.Context, tenantCtx *requests.TenantContext, request *requests.ExportDocument) *responses.ExportResult
}

type EncounterExportUsecase interface {
	ExportEncounter(ctx context.Context, tenantCtx *requests.TenantContext, request *requests.ExportEncounter) *responses.EncounterExportResult
}
