package contracts

import (
	"context"
	"synclinic-service/internal/pkg/dto/requests"
)

type TenantRepository interface {
	FindSyncConfigByTenantID(ctx context.Context, tenantID string) (*requests.TenantSyncConfig, error)
	UpsertSyncConfig(ctx context.Context, config *requests.TenantSyncConfig) error
}

// TenantUsecase resolves and validates a tenant's sync configuration. The
// resolved config is guaranteed complete: a missing required field fails
// fast with a configuration error instead of surfacing later mid-export.
type TenantUsecase interface {
	ResolveSyncConfig(ctx context.Context, tenantID string) (*requests.TenantSyncConfig, error)
	ReplaceSyncConfig(ctx context.Context, config *requests.TenantSyncConfig) error
}
