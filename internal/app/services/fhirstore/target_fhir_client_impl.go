package fhirstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/exceptions"
	"synclinic-service/internal/pkg/fhir_dto"

	"go.uber.org/zap"
)

type targetFHIRClient struct {
	BaseURL    string
	HTTPClient *http.Client
	log        *zap.Logger
}

func NewTargetFHIRClient(baseURL string, logger *zap.Logger) contracts.TargetFHIRClient {
	return &targetFHIRClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		log:        logger,
	}
}

func (c *targetFHIRClient) CreateResource(ctx context.Context, resourceType string, body interface{}) (json.RawMessage, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("targetFHIRClient.CreateResource called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
	)

	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, resourceType)
	raw, err := c.do(ctx, constvars.MethodPost, endpoint, body)
	if err != nil {
		return nil, exceptions.ErrTargetCreateResource(err, resourceType)
	}
	return raw, nil
}

func (c *targetFHIRClient) ReadResource(ctx context.Context, resourceType, resourceID string) (json.RawMessage, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("targetFHIRClient.ReadResource called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, resourceID),
	)

	endpoint := fmt.Sprintf("%s/%s/%s", c.BaseURL, resourceType, resourceID)
	raw, err := c.do(ctx, constvars.MethodGet, endpoint, nil)
	if err != nil {
		return nil, exceptions.ErrTargetReadResource(err, resourceType)
	}
	return raw, nil
}

func (c *targetFHIRClient) UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (json.RawMessage, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("targetFHIRClient.UpdateResource called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, resourceID),
	)

	endpoint := fmt.Sprintf("%s/%s/%s", c.BaseURL, resourceType, resourceID)
	raw, err := c.do(ctx, constvars.MethodPut, endpoint, body)
	if err != nil {
		return nil, exceptions.ErrTargetUpdateResource(err, resourceType)
	}
	return raw, nil
}

func (c *targetFHIRClient) DeleteResource(ctx context.Context, resourceType, resourceID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("targetFHIRClient.DeleteResource called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, resourceID),
	)

	endpoint := fmt.Sprintf("%s/%s/%s", c.BaseURL, resourceType, resourceID)
	if _, err := c.do(ctx, constvars.MethodDelete, endpoint, nil); err != nil {
		return exceptions.ErrTargetDeleteResource(err, resourceType)
	}
	return nil
}

func (c *targetFHIRClient) SearchResource(ctx context.Context, resourceType string, query url.Values) (*fhir_dto.Bundle, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("targetFHIRClient.SearchResource called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
	)

	endpoint := fmt.Sprintf("%s/%s?%s", c.BaseURL, resourceType, query.Encode())
	raw, err := c.do(ctx, constvars.MethodGet, endpoint, nil)
	if err != nil {
		return nil, exceptions.ErrTargetSearchResource(err, resourceType)
	}

	bundle := new(fhir_dto.Bundle)
	if err := json.Unmarshal(raw, bundle); err != nil {
		return nil, exceptions.ErrDecodeResponse(err, resourceType)
	}
	return bundle, nil
}

func (c *targetFHIRClient) SearchByTag(ctx context.Context, resourceType, tagCode string) (*fhir_dto.Bundle, error) {
	query := url.Values{}
	query.Set("_tag", tagCode)
	return c.SearchResource(ctx, resourceType, query)
}

func (c *targetFHIRClient) SubmitBatch(ctx context.Context, bundle *fhir_dto.Bundle) (*fhir_dto.Bundle, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("targetFHIRClient.SubmitBatch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("entries", len(bundle.Entry)),
	)

	raw, err := c.do(ctx, constvars.MethodPost, c.BaseURL, bundle)
	if err != nil {
		return nil, exceptions.ErrTargetSubmitBundle(err)
	}

	response := new(fhir_dto.Bundle)
	if err := json.Unmarshal(raw, response); err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceBundle)
	}
	return response, nil
}

func (c *targetFHIRClient) do(ctx context.Context, method, endpoint string, body interface{}) (json.RawMessage, error) {
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
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, "target store")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome := new(fhir_dto.OperationOutcome)
		if err := json.Unmarshal(raw, outcome); err == nil && len(outcome.Issue) > 0 {
			return nil, exceptions.WrapWithoutError(resp.StatusCode, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("target store returned %d: %s", resp.StatusCode, outcome.Issue[0].Diagnostics))
		}
		return nil, exceptions.WrapWithoutError(resp.StatusCode, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("target store returned %d", resp.StatusCode))
	}
	return raw, nil
}
