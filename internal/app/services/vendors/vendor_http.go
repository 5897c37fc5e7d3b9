package vendors

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/exceptions"
	"synclinic-service/internal/pkg/fhir_dto"
	"synclinic-service/internal/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// vendorClient is the transport shared by every vendor adapter: bearer-token
// FHIR requests behind the tenant's outbound rate limiter, with vendor
// rejections surfaced as OperationOutcome values rather than errors.
type vendorClient struct {
	vendor     string
	baseURL    string
	httpClient *http.Client
	auth       *authManager
	limiter    *rate.Limiter
	pageSize   int
	log        *zap.Logger
}

func (c *vendorClient) Vendor() string {
	return c.vendor
}

func (c *vendorClient) EnsureToken(ctx context.Context, authType string) bool {
	return c.auth.EnsureToken(ctx, authType)
}

func (c *vendorClient) CreateResource(ctx context.Context, resourceType string, body interface{}) (*contracts.VendorResponse, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, resourceType)
	return c.doFHIR(ctx, constvars.MethodPost, endpoint, body, "create "+resourceType)
}

func (c *vendorClient) FetchResource(ctx context.Context, resourceType, resourceID string) (*contracts.VendorResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, resourceType, resourceID)
	return c.doFHIR(ctx, constvars.MethodGet, endpoint, nil, "fetch "+resourceType)
}

func (c *vendorClient) UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (*contracts.VendorResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, resourceType, resourceID)
	return c.doFHIR(ctx, constvars.MethodPut, endpoint, body, "update "+resourceType)
}

func (c *vendorClient) deleteResource(ctx context.Context, resourceType, resourceID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, resourceType, resourceID)
	resp, err := c.doFHIR(ctx, constvars.MethodDelete, endpoint, nil, "delete "+resourceType)
	if err != nil {
		return false, err
	}
	if resp == nil || resp.Outcome != nil {
		return false, nil
	}
	return true, nil
}

func (c *vendorClient) SearchResource(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, resourceType, query.Encode())
	resp, err := c.doFHIR(ctx, constvars.MethodGet, endpoint, nil, "search "+resourceType)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, exceptions.ErrVendorAuthFailed(nil, c.vendor)
	}
	if resp.Outcome != nil {
		return nil, exceptions.ErrVendorRequestRejected(outcomeError(resp.Outcome), c.vendor, "search "+resourceType)
	}

	bundle := new(fhir_dto.Bundle)
	if err := json.Unmarshal(resp.Resource, bundle); err != nil {
		return nil, exceptions.ErrDecodeResponse(err, c.vendor)
	}
	return bundle, nil
}

// SearchDischargeSummaries finds the patient's discharge summary notes by the
// shared LOINC code.
func (c *vendorClient) SearchDischargeSummaries(ctx context.Context, patientID string) ([]fhir_dto.DocumentReference, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("vendorClient.SearchDischargeSummaries called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVendorKey, c.vendor),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	query := url.Values{}
	query.Set("patient", patientID)
	query.Set("type", fmt.Sprintf("%s|%s", constvars.LoincSystem, constvars.LoincDischargeSummaryCode))
	if c.pageSize > 0 {
		query.Set("_count", strconv.Itoa(c.pageSize))
	}

	bundle, err := c.SearchResource(ctx, constvars.ResourceDocumentReference, query)
	if err != nil {
		return nil, err
	}

	documents := make([]fhir_dto.DocumentReference, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		doc := fhir_dto.DocumentReference{}
		if err := json.Unmarshal(entry.Resource, &doc); err != nil {
			c.log.Warn("vendorClient.SearchDischargeSummaries skipping undecodable entry",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			continue
		}
		if doc.ResourceType != constvars.ResourceDocumentReference {
			continue
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

// FetchBinaryDocument downloads the document payload behind a vendor binary
// URL. All failures, including the short-payload sanity check, come back as
// a result value with Error set and Data nil.
func (c *vendorClient) FetchBinaryDocument(ctx context.Context, binaryURL string) *responses.BinaryDocumentResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("vendorClient.FetchBinaryDocument called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVendorKey, c.vendor),
	)

	if !c.auth.EnsureToken(ctx, constvars.AuthTypeSystem) {
		return &responses.BinaryDocumentResult{Error: "vendor authentication failed"}
	}

	endpoint := binaryURL
	if !strings.HasPrefix(binaryURL, "http://") && !strings.HasPrefix(binaryURL, "https://") {
		endpoint = fmt.Sprintf("%s/%s", c.baseURL, strings.TrimPrefix(binaryURL, "/"))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &responses.BinaryDocumentResult{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, endpoint, nil)
	if err != nil {
		return &responses.BinaryDocumentResult{Error: err.Error()}
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+c.auth.Token())
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &responses.BinaryDocumentResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &responses.BinaryDocumentResult{Error: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &responses.BinaryDocumentResult{Error: fmt.Sprintf("vendor returned %d for binary fetch", resp.StatusCode)}
	}

	data := raw
	contentType := resp.Header.Get(constvars.HeaderContentType)

	// Vendors answer either with raw bytes or a FHIR Binary envelope.
	if strings.Contains(contentType, "json") {
		binary := fhir_dto.Binary{}
		if err := json.Unmarshal(raw, &binary); err == nil && binary.ResourceType == constvars.ResourceBinary {
			decoded, err := base64.StdEncoding.DecodeString(binary.Data)
			if err != nil {
				return &responses.BinaryDocumentResult{Error: "binary payload is not valid base64"}
			}
			data = decoded
			if binary.ContentType != "" {
				contentType = binary.ContentType
			}
		}
	}

	if len(data) < constvars.MinimumBinaryPayloadLength {
		c.log.Warn("vendorClient.FetchBinaryDocument payload failed sanity check",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingVendorKey, c.vendor),
			zap.Int("payload_length", len(data)),
		)
		return &responses.BinaryDocumentResult{Error: "binary payload too small, treating as corrupted"}
	}

	return &responses.BinaryDocumentResult{Data: data, ContentType: contentType}
}

// ParseDocumentReference lifts a vendor DocumentReference into the
// vendor-neutral shape the orchestrator works with.
func (c *vendorClient) ParseDocumentReference(doc *fhir_dto.DocumentReference) *responses.SourceDocument {
	source := &responses.SourceDocument{
		ID:     doc.ID,
		Status: doc.Status,
		Date:   doc.Date,
	}

	for _, coding := range doc.Type.Coding {
		if coding.System == constvars.LoincSystem {
			source.TypeCode = coding.Code
			break
		}
	}

	if doc.Subject != nil {
		if parsed, err := utils.ParseResourceLocation(doc.Subject.Reference); err == nil && parsed.ResourceType == constvars.ResourcePatient {
			source.SourcePatientID = parsed.ID
		}
	}
	if doc.Context != nil && len(doc.Context.Encounter) > 0 {
		if parsed, err := utils.ParseResourceLocation(doc.Context.Encounter[0].Reference); err == nil && parsed.ResourceType == constvars.ResourceEncounter {
			source.SourceEncounterID = parsed.ID
		}
	}

	for _, author := range doc.Author {
		if author.Display != "" {
			source.Authors = append(source.Authors, author.Display)
		}
	}

	for _, content := range doc.Content {
		source.Content = append(source.Content, responses.SourceDocumentContent{
			ContentType: content.Attachment.ContentType,
			URL:         content.Attachment.Url,
			InlineData:  content.Attachment.Data,
			Title:       content.Attachment.Title,
			Size:        content.Attachment.Size,
		})
	}
	return source
}

func (c *vendorClient) doFHIR(ctx context.Context, method, endpoint string, body interface{}, operation string) (*contracts.VendorResponse, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("vendorClient request",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVendorKey, c.vendor),
		zap.String("operation", operation),
	)

	if !c.auth.EnsureToken(ctx, constvars.AuthTypeSystem) {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, exceptions.ErrVendorRequestRejected(err, c.vendor, operation)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, exceptions.ErrCannotMarshalJSON(err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+c.auth.Token())
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)
	if body != nil {
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, c.vendor)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &contracts.VendorResponse{Resource: raw}, nil
	}

	outcome := new(fhir_dto.OperationOutcome)
	if err := json.Unmarshal(raw, outcome); err == nil && len(outcome.Issue) > 0 {
		c.log.Warn("vendorClient request rejected by vendor",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingVendorKey, c.vendor),
			zap.String("operation", operation),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
		)
		return &contracts.VendorResponse{Outcome: outcome}, nil
	}

	// Only creates turn an unstructured rejection into a transport error;
	// every other verb answers with the null sentinel.
	if method == constvars.MethodPost {
		return nil, exceptions.ErrVendorRequestRejected(fmt.Errorf("vendor returned %d", resp.StatusCode), c.vendor, operation)
	}
	c.log.Warn("vendorClient request failed without a structured outcome",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVendorKey, c.vendor),
		zap.String("operation", operation),
		zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
	)
	return nil, nil
}

func outcomeError(outcome *fhir_dto.OperationOutcome) error {
	if outcome != nil && len(outcome.Issue) > 0 {
		return fmt.Errorf("%s: %s", outcome.Issue[0].Code, outcome.Issue[0].Diagnostics)
	}
	return fmt.Errorf("vendor rejected the request")
}
