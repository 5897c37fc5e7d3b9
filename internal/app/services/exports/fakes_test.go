package exports

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"
)

// fakeTargetClient implements contracts.TargetFHIRClient with overridable
// behavior per method. Unset methods answer with empty results.
type fakeTargetClient struct {
	createResource func(ctx context.Context, resourceType string, body interface{}) (json.RawMessage, error)
	searchResource func(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error)
	searchByTag    func(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error)
	submitBatch    func(ctx context.Context, bundle *fhir_dto.Bundle) (*fhir_dto.Bundle, error)
}

func emptyBundle() *fhir_dto.Bundle {
	return &fhir_dto.Bundle{ResourceType: constvars.ResourceBundle, Type: constvars.FhirBundleTypeSearchset}
}

func (f *fakeTargetClient) CreateResource(ctx context.Context, resourceType string, body interface{}) (json.RawMessage, error) {
	if f.createResource != nil {
		return f.createResource(ctx, resourceType, body)
	}
	return nil, errors.New("create not configured")
}

func (f *fakeTargetClient) ReadResource(ctx context.Context, resourceType, resourceID string) (json.RawMessage, error) {
	return nil, errors.New("read not configured")
}

func (f *fakeTargetClient) UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (json.RawMessage, error) {
	return nil, errors.New("update not configured")
}

func (f *fakeTargetClient) DeleteResource(ctx context.Context, resourceType, resourceID string) error {
	return errors.New("delete not configured")
}

func (f *fakeTargetClient) SearchResource(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error) {
	if f.searchResource != nil {
		return f.searchResource(ctx, resourceType, query)
	}
	return emptyBundle(), nil
}

func (f *fakeTargetClient) SearchByTag(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error) {
	if f.searchByTag != nil {
		return f.searchByTag(ctx, resourceType, tagCode)
	}
	return emptyBundle(), nil
}

func (f *fakeTargetClient) SubmitBatch(ctx context.Context, bundle *fhir_dto.Bundle) (*fhir_dto.Bundle, error) {
	if f.submitBatch != nil {
		return f.submitBatch(ctx, bundle)
	}
	return nil, errors.New("batch not configured")
}

// fakeAdapter implements contracts.VendorAdapter.
type fakeAdapter struct {
	vendor                   string
	capabilities             contracts.VendorCapabilities
	ensureToken              func(authType string) bool
	fetchResource            func(resourceType, resourceID string) (*contracts.VendorResponse, error)
	searchResource           func(resourceType string, query url.Values) (*fhir_dto.Bundle, error)
	searchDischargeSummaries func(patientID string) ([]fhir_dto.DocumentReference, error)
	fetchBinaryDocument      func(binaryURL string) *responses.BinaryDocumentResult
}

func (f *fakeAdapter) Vendor() string {
	if f.vendor == "" {
		return constvars.VendorCerner
	}
	return f.vendor
}

func (f *fakeAdapter) Capabilities() contracts.VendorCapabilities { return f.capabilities }

func (f *fakeAdapter) EnsureToken(ctx context.Context, authType string) bool {
	if f.ensureToken != nil {
		return f.ensureToken(authType)
	}
	return true
}

func (f *fakeAdapter) CreateResource(ctx context.Context, resourceType string, body interface{}) (*contracts.VendorResponse, error) {
	return nil, errors.New("create not configured")
}

func (f *fakeAdapter) FetchResource(ctx context.Context, resourceType, resourceID string) (*contracts.VendorResponse, error) {
	if f.fetchResource != nil {
		return f.fetchResource(resourceType, resourceID)
	}
	return nil, errors.New("fetch not configured")
}

func (f *fakeAdapter) UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (*contracts.VendorResponse, error) {
	return nil, errors.New("update not configured")
}

func (f *fakeAdapter) DeleteResource(ctx context.Context, resourceType, resourceID string) (bool, error) {
	return false, nil
}

func (f *fakeAdapter) SearchResource(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error) {
	if f.searchResource != nil {
		return f.searchResource(resourceType, query)
	}
	return emptyBundle(), nil
}

func (f *fakeAdapter) SearchDischargeSummaries(ctx context.Context, patientID string) ([]fhir_dto.DocumentReference, error) {
	if f.searchDischargeSummaries != nil {
		return f.searchDischargeSummaries(patientID)
	}
	return nil, nil
}

func (f *fakeAdapter) FetchBinaryDocument(ctx context.Context, binaryURL string) *responses.BinaryDocumentResult {
	if f.fetchBinaryDocument != nil {
		return f.fetchBinaryDocument(binaryURL)
	}
	return &responses.BinaryDocumentResult{Error: "binary fetch not configured"}
}

func (f *fakeAdapter) ParseDocumentReference(doc *fhir_dto.DocumentReference) *responses.SourceDocument {
	source := &responses.SourceDocument{ID: doc.ID, Status: doc.Status, Date: doc.Date}
	if doc.Subject != nil {
		if parsed, err := utils.ParseResourceLocation(doc.Subject.Reference); err == nil {
			source.SourcePatientID = parsed.ID
		}
	}
	if doc.Context != nil && len(doc.Context.Encounter) > 0 {
		if parsed, err := utils.ParseResourceLocation(doc.Context.Encounter[0].Reference); err == nil {
			source.SourceEncounterID = parsed.ID
		}
	}
	for _, content := range doc.Content {
		source.Content = append(source.Content, responses.SourceDocumentContent{
			ContentType: content.Attachment.ContentType,
			URL:         content.Attachment.Url,
			InlineData:  content.Attachment.Data,
		})
	}
	return source
}

// fakeTenantUsecase implements contracts.TenantUsecase.
type fakeTenantUsecase struct {
	config *requests.TenantSyncConfig
}

func (f *fakeTenantUsecase) ResolveSyncConfig(ctx context.Context, tenantID string) (*requests.TenantSyncConfig, error) {
	return f.config, nil
}

func (f *fakeTenantUsecase) ReplaceSyncConfig(ctx context.Context, config *requests.TenantSyncConfig) error {
	return nil
}

// fakeAdapterFactory implements contracts.VendorAdapterFactory.
type fakeAdapterFactory struct {
	adapter contracts.VendorAdapter
}

func (f *fakeAdapterFactory) GetAdapter(ctx context.Context, tenantCtx *requests.TenantContext) (contracts.VendorAdapter, error) {
	return f.adapter, nil
}

func (f *fakeAdapterFactory) GetAdapterByVendor(ctx context.Context, vendor, tenantID string) (contracts.VendorAdapter, error) {
	return f.adapter, nil
}

func (f *fakeAdapterFactory) ClearCache(tenantID string) {}

// fakeClientProvider implements contracts.TargetClientProvider.
type fakeClientProvider struct {
	client contracts.TargetFHIRClient
}

func (f *fakeClientProvider) ClientFor(targetBaseURL string) contracts.TargetFHIRClient {
	return f.client
}

// fakeObjectStorage implements contracts.ObjectStorage.
type fakeObjectStorage struct {
	objects map[string][]byte
	err     error
}

func (f *fakeObjectStorage) PutObject(ctx context.Context, objectName string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[objectName] = data
	return nil
}

// fakeEventPublisher implements contracts.EventPublisher.
type fakeEventPublisher struct {
	events []*responses.ExportEvent
	err    error
}

func (f *fakeEventPublisher) PublishExportEvent(ctx context.Context, event *responses.ExportEvent) error {
	f.events = append(f.events, event)
	return f.err
}
