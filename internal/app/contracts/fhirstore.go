package contracts

import (
	"context"
	"encoding/json"
	"net/url"
	"synclinic-service/internal/pkg/fhir_dto"
)

// TargetFHIRClient is the tenant-scoped REST surface of the target clinical
// data store. The only semantics the engine relies on are ifNoneExist
// conditional creates in batch submissions and _tag search.
type TargetFHIRClient interface {
	CreateResource(ctx context.Context, resourceType string, body interface{}) (json.RawMessage, error)
	ReadResource(ctx context.Context, resourceType, resourceID string) (json.RawMessage, error)
	UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (json.RawMessage, error)
	DeleteResource(ctx context.Context, resourceType, resourceID string) error
	SearchResource(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error)
	SearchByTag(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error)
	SubmitBatch(ctx context.Context, bundle *fhir_dto.Bundle) (*fhir_dto.Bundle, error)
}

// TargetClientProvider hands out a client bound to one tenant's target
// dataset URL, reusing clients across calls.
type TargetClientProvider interface {
	ClientFor(targetBaseURL string) TargetFHIRClient
}
