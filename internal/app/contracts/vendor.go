package contracts

import (
	"context"
	"encoding/json"
	"net/url"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/fhir_dto"
)

// VendorCapabilities advertises what a vendor's API actually supports.
// Call sites branch on these flags, never on the adapter's concrete type.
type VendorCapabilities struct {
	SupportsDelete    bool
	SupportsUpdate    bool
	MaxSearchPageSize int
}

// VendorResponse carries either the resource body or the vendor's structured
// rejection (an OperationOutcome), never both. A nil response with a nil
// error is the null sentinel: authentication failed before the request, or
// the vendor rejected a read without a structured outcome.
type VendorResponse struct {
	Resource json.RawMessage
	Outcome  *fhir_dto.OperationOutcome
}

// VendorAdapter is the uniform surface over one tenant's EHR vendor. An
// adapter owns its token state; instances are cached per tenant and vendor
// so tokens are reused across calls.
type VendorAdapter interface {
	Vendor() string
	Capabilities() VendorCapabilities

	EnsureToken(ctx context.Context, authType string) bool

	CreateResource(ctx context.Context, resourceType string, body interface{}) (*VendorResponse, error)
	FetchResource(ctx context.Context, resourceType, resourceID string) (*VendorResponse, error)
	UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (*VendorResponse, error)
	DeleteResource(ctx context.Context, resourceType, resourceID string) (bool, error)
	SearchResource(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error)

	SearchDischargeSummaries(ctx context.Context, patientID string) ([]fhir_dto.DocumentReference, error)
	FetchBinaryDocument(ctx context.Context, binaryURL string) *responses.BinaryDocumentResult
	ParseDocumentReference(doc *fhir_dto.DocumentReference) *responses.SourceDocument
}

type VendorAdapterFactory interface {
	GetAdapter(ctx context.Context, tenantCtx *requests.TenantContext) (VendorAdapter, error)
	GetAdapterByVendor(ctx context.Context, vendor, tenantID string) (VendorAdapter, error)
	ClearCache(tenantID string)
}
