package tenants

import (
	"context"
	"fmt"
	"sync"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	tenantUsecaseInstance contracts.TenantUsecase
	onceTenantUsecase     sync.Once
)

type tenantUsecase struct {
	repo     contracts.TenantRepository
	cache    contracts.RedisRepository
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewTenantUsecase(repo contracts.TenantRepository, cache contracts.RedisRepository, cacheTTL time.Duration, logger *zap.Logger) contracts.TenantUsecase {
	onceTenantUsecase.Do(func() {
		tenantUsecaseInstance = &tenantUsecase{
			repo:     repo,
			cache:    cache,
			cacheTTL: cacheTTL,
			log:      logger,
		}
	})
	return tenantUsecaseInstance
}

func cacheKeyForTenant(tenantID string) string {
	return fmt.Sprintf("tenant-sync-config:%s", tenantID)
}

func (u *tenantUsecase) ResolveSyncConfig(ctx context.Context, tenantID string) (*requests.TenantSyncConfig, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	u.log.Info("tenantUsecase.ResolveSyncConfig called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, tenantID),
	)

	if cached, err := u.cache.Get(ctx, cacheKeyForTenant(tenantID)); err == nil && cached != "" {
		config := new(requests.TenantSyncConfig)
		if err := json.Unmarshal([]byte(cached), config); err == nil {
			return config, nil
		}
	}

	config, err := u.repo.FindSyncConfigByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, exceptions.ErrTenantConfigMissing(nil, tenantID)
	}

	if err := validateSyncConfig(config); err != nil {
		return nil, err
	}

	if err := u.cache.Set(ctx, cacheKeyForTenant(tenantID), config, u.cacheTTL); err != nil {
		u.log.Warn("tenantUsecase.ResolveSyncConfig cache write failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}

	return config, nil
}

func (u *tenantUsecase) ReplaceSyncConfig(ctx context.Context, config *requests.TenantSyncConfig) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	u.log.Info("tenantUsecase.ReplaceSyncConfig called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, config.TenantID),
	)

	if err := validateSyncConfig(config); err != nil {
		return err
	}
	if err := u.repo.UpsertSyncConfig(ctx, config); err != nil {
		return err
	}

	if err := u.cache.Delete(ctx, cacheKeyForTenant(config.TenantID)); err != nil {
		u.log.Warn("tenantUsecase.ReplaceSyncConfig cache invalidation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
	return nil
}

// validateSyncConfig fails fast with a descriptive configuration error when
// any field the export pipeline depends on is absent.
func validateSyncConfig(config *requests.TenantSyncConfig) error {
	switch {
	case config.Vendor == "":
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "vendor")
	case config.Vendor != constvars.VendorCerner && config.Vendor != constvars.VendorEpic:
		return exceptions.ErrVendorNotSupported(config.Vendor)
	case config.BaseURL == "":
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "base_url")
	case config.TokenURL == "":
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "token_url")
	case config.TargetBaseURL == "":
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "target_base_url")
	case config.SystemApp == nil || config.SystemApp.ClientID == "":
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "system_app.client_id")
	}

	if config.Vendor == constvars.VendorCerner && config.SystemApp.ClientSecret == "" {
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "system_app.client_secret")
	}
	if config.Vendor == constvars.VendorEpic && config.SystemApp.PrivateKeyPEM == "" {
		return exceptions.ErrTenantConfigIncomplete(config.TenantID, "system_app.private_key_pem")
	}
	return nil
}
