package exports

import (
	"context"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type duplicateDetector struct {
	log *zap.Logger
}

func NewDuplicateDetector(logger *zap.Logger) contracts.DuplicateDetector {
	return &duplicateDetector{log: logger}
}

// IsDuplicate looks for an already-exported DocumentReference carrying the
// document's correlation tag. A failed search is reported as not-duplicate:
// re-exporting is safe because every write is conditional, while refusing to
// export on a transient search error would lose documents.
func (d *duplicateDetector) IsDuplicate(ctx context.Context, tenantCtx *requests.TenantContext, vendor, sourceDocumentID string, client contracts.TargetFHIRClient) *responses.DuplicateCheckResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	tag := utils.BuildCorrelationTag(vendor, sourceDocumentID)

	d.log.Info("duplicateDetector.IsDuplicate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, tenantCtx.TenantID),
		zap.String(constvars.LoggingTagKey, tag),
	)

	bundle, err := client.SearchByTag(ctx, constvars.ResourceDocumentReference, tag)
	if err != nil {
		d.log.Warn("duplicateDetector.IsDuplicate search failed, treating document as new",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingTagKey, tag),
			zap.Error(err),
		)
		return &responses.DuplicateCheckResult{IsDuplicate: false}
	}

	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		doc := fhir_dto.DocumentReference{}
		if err := json.Unmarshal(entry.Resource, &doc); err != nil {
			continue
		}
		if !utils.FindTagCode(doc.Meta, constvars.CorrelationTagSystem, tag) {
			continue
		}

		result := &responses.DuplicateCheckResult{IsDuplicate: true}
		if doc.Subject != nil {
			if parsed, err := utils.ParseResourceLocation(doc.Subject.Reference); err == nil && parsed.ResourceType == constvars.ResourcePatient {
				result.TargetPatientID = parsed.ID
			}
		}
		return result
	}

	return &responses.DuplicateCheckResult{IsDuplicate: false}
}
