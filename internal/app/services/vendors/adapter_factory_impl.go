package vendors

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

var (
	adapterFactoryInstance contracts.VendorAdapterFactory
	onceAdapterFactory     sync.Once
)

// vendorAdapterFactory caches adapters per tenant and vendor so token state
// survives across export calls.
type vendorAdapterFactory struct {
	tenants  contracts.TenantUsecase
	limiters *RateLimiterRegistry
	log      *zap.Logger

	mu       sync.Mutex
	adapters map[string]contracts.VendorAdapter
}

func NewVendorAdapterFactory(tenants contracts.TenantUsecase, limiters *RateLimiterRegistry, logger *zap.Logger) contracts.VendorAdapterFactory {
	onceAdapterFactory.Do(func() {
		adapterFactoryInstance = &vendorAdapterFactory{
			tenants:  tenants,
			limiters: limiters,
			log:      logger,
			adapters: make(map[string]contracts.VendorAdapter),
		}
	})
	return adapterFactoryInstance
}

func adapterCacheKey(tenantID, vendor string) string {
	return fmt.Sprintf("%s:%s", tenantID, vendor)
}

func (f *vendorAdapterFactory) GetAdapter(ctx context.Context, tenantCtx *requests.TenantContext) (contracts.VendorAdapter, error) {
	config, err := f.tenants.ResolveSyncConfig(ctx, tenantCtx.TenantID)
	if err != nil {
		return nil, err
	}
	return f.adapterFor(ctx, config)
}

func (f *vendorAdapterFactory) GetAdapterByVendor(ctx context.Context, vendor, tenantID string) (contracts.VendorAdapter, error) {
	config, err := f.tenants.ResolveSyncConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if config.Vendor != vendor {
		return nil, exceptions.ErrVendorNotSupported(vendor)
	}
	return f.adapterFor(ctx, config)
}

func (f *vendorAdapterFactory) ClearCache(tenantID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := tenantID + ":"
	for key := range f.adapters {
		if strings.HasPrefix(key, prefix) {
			delete(f.adapters, key)
		}
	}
	f.log.Info("vendorAdapterFactory.ClearCache adapters evicted",
		zap.String(constvars.LoggingTenantIDKey, tenantID),
	)
}

func (f *vendorAdapterFactory) adapterFor(ctx context.Context, config *requests.TenantSyncConfig) (contracts.VendorAdapter, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	key := adapterCacheKey(config.TenantID, config.Vendor)

	f.mu.Lock()
	defer f.mu.Unlock()

	if adapter, ok := f.adapters[key]; ok {
		return adapter, nil
	}

	f.log.Info("vendorAdapterFactory building adapter",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTenantIDKey, config.TenantID),
		zap.String(constvars.LoggingVendorKey, config.Vendor),
	)

	limiter := f.limiters.LimiterFor(config.TenantID)

	var adapter contracts.VendorAdapter
	switch config.Vendor {
	case constvars.VendorCerner:
		adapter = NewCernerAdapter(config, limiter, f.log)
	case constvars.VendorEpic:
		adapter = NewEpicAdapter(config, limiter, f.log)
	default:
		return nil, exceptions.ErrVendorNotSupported(config.Vendor)
	}

	f.adapters[key] = adapter
	return adapter, nil
}
