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

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type cernerAdapter struct {
	vendorClient
}

// NewCernerAdapter builds an adapter that authenticates with the Basic
// client-credentials grant and supports the full CRUD surface.
func NewCernerAdapter(config *requests.TenantSyncConfig, limiter *rate.Limiter, logger *zap.Logger) contracts.VendorAdapter {
	adapter := &cernerAdapter{
		vendorClient: vendorClient{
			vendor:     constvars.VendorCerner,
			baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
			httpClient: &http.Client{},
			limiter:    limiter,
			log:        logger,
		},
	}
	adapter.auth = newAuthManager(constvars.VendorCerner, cernerAuthenticate(adapter.httpClient, config), logger)
	adapter.pageSize = adapter.Capabilities().MaxSearchPageSize
	return adapter
}

func (a *cernerAdapter) Capabilities() contracts.VendorCapabilities {
	return contracts.VendorCapabilities{
		SupportsDelete:    true,
		SupportsUpdate:    true,
		MaxSearchPageSize: 100,
	}
}

func (a *cernerAdapter) DeleteResource(ctx context.Context, resourceType, resourceID string) (bool, error) {
	return a.deleteResource(ctx, resourceType, resourceID)
}

type vendorTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

func cernerAuthenticate(client *http.Client, config *requests.TenantSyncConfig) authenticateFunc {
	return func(ctx context.Context) (string, int, error) {
		if config.SystemApp == nil || config.SystemApp.ClientSecret == "" {
			return "", 0, exceptions.ErrVendorAuthNotConfigured(constvars.VendorCerner, constvars.AuthTypeSystem)
		}

		form := url.Values{}
		form.Set("grant_type", constvars.OAuthGrantClientCredentials)
		if config.SystemApp.Scopes != "" {
			form.Set("scope", config.SystemApp.Scopes)
		}

		req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, config.TokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return "", 0, err
		}
		req.SetBasicAuth(config.SystemApp.ClientID, config.SystemApp.ClientSecret)
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

		token := vendorTokenResponse{}
		if err := json.Unmarshal(raw, &token); err != nil {
			return "", 0, err
		}
		return token.AccessToken, token.ExpiresIn, nil
	}
}
