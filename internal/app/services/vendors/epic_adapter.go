package vendors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type epicAdapter struct {
	vendorClient
}

// NewEpicAdapter builds an adapter that authenticates with an RS256-signed
// JWT client assertion. Epic's write surface is read-mostly: deletes are
// refused without a network call and updates carry only limited support.
func NewEpicAdapter(config *requests.TenantSyncConfig, limiter *rate.Limiter, logger *zap.Logger) contracts.VendorAdapter {
	adapter := &epicAdapter{
		vendorClient: vendorClient{
			vendor:     constvars.VendorEpic,
			baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
			httpClient: &http.Client{},
			limiter:    limiter,
			log:        logger,
		},
	}
	adapter.auth = newAuthManager(constvars.VendorEpic, epicAuthenticate(adapter.httpClient, config), logger)
	adapter.pageSize = adapter.Capabilities().MaxSearchPageSize
	return adapter
}

func (a *epicAdapter) Capabilities() contracts.VendorCapabilities {
	return contracts.VendorCapabilities{
		SupportsDelete:    false,
		SupportsUpdate:    false,
		MaxSearchPageSize: 50,
	}
}

// DeleteResource never reaches the vendor: the API does not expose deletes.
func (a *epicAdapter) DeleteResource(ctx context.Context, resourceType, resourceID string) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	a.log.Warn("epicAdapter.DeleteResource delete is not supported",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, resourceID),
	)
	return false, nil
}

func (a *epicAdapter) UpdateResource(ctx context.Context, resourceType, resourceID string, body interface{}) (*contracts.VendorResponse, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	a.log.Warn("epicAdapter.UpdateResource update has limited support",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, resourceID),
	)
	return a.vendorClient.UpdateResource(ctx, resourceType, resourceID, body)
}

func epicAuthenticate(client *http.Client, config *requests.TenantSyncConfig) authenticateFunc {
	return func(ctx context.Context) (string, int, error) {
		if config.SystemApp == nil || config.SystemApp.PrivateKeyPEM == "" {
			return "", 0, exceptions.ErrVendorAuthNotConfigured(constvars.VendorEpic, constvars.AuthTypeSystem)
		}

		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(config.SystemApp.PrivateKeyPEM))
		if err != nil {
			return "", 0, fmt.Errorf("parse signing key: %w", err)
		}

		now := time.Now()
		claims := jwt.RegisteredClaims{
			Issuer:    config.SystemApp.ClientID,
			Subject:   config.SystemApp.ClientID,
			Audience:  jwt.ClaimStrings{config.TokenURL},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		if config.SystemApp.KeyID != "" {
			token.Header["kid"] = config.SystemApp.KeyID
		}
		assertion, err := token.SignedString(key)
		if err != nil {
			return "", 0, fmt.Errorf("sign client assertion: %w", err)
		}

		form := url.Values{}
		form.Set("grant_type", constvars.OAuthGrantClientCredentials)
		form.Set("client_assertion_type", constvars.OAuthClientAssertionType)
		form.Set("client_assertion", assertion)
		if config.SystemApp.Scopes != "" {
			form.Set("scope", config.SystemApp.Scopes)
		}

		req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, config.TokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return "", 0, err
		}
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
		req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

		resp, err := client.Do(req)
		if err != nil {
			return "", 0, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", 0, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", 0, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
		}

		tokenResponse := vendorTokenResponse{}
		if err := json.Unmarshal(raw, &tokenResponse); err != nil {
			return "", 0, err
		}
		return tokenResponse.AccessToken, tokenResponse.ExpiresIn, nil
	}
}
