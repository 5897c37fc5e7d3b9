package tenants

import (
	"net/http"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/exceptions"
	"synclinic-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type TenantController struct {
	usecase contracts.TenantUsecase
	factory contracts.VendorAdapterFactory
	log     *zap.Logger
}

func NewTenantController(usecase contracts.TenantUsecase, factory contracts.VendorAdapterFactory, logger *zap.Logger) *TenantController {
	return &TenantController{
		usecase: usecase,
		factory: factory,
		log:     logger,
	}
}

func (c *TenantController) GetSyncConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrURLParamMissing("tenantID"))
		return
	}

	config, err := c.usecase.ResolveSyncConfig(r.Context(), tenantID)
	if err != nil {
		utils.BuildErrorResponse(c.log, w, err)
		return
	}

	// Credentials never leave the service.
	redacted := *config
	if redacted.SystemApp != nil {
		app := *redacted.SystemApp
		app.ClientSecret = ""
		app.PrivateKeyPEM = ""
		redacted.SystemApp = &app
	}
	if redacted.ProviderApp != nil {
		app := *redacted.ProviderApp
		app.ClientSecret = ""
		app.PrivateKeyPEM = ""
		redacted.ProviderApp = &app
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, "Tenant sync configuration retrieved", redacted)
}

func (c *TenantController) PutSyncConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrURLParamMissing("tenantID"))
		return
	}

	request := new(requests.TenantSyncConfig)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.TenantID = tenantID

	if err := utils.NewValidator().Struct(request); err != nil {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrInputValidation(err))
		return
	}

	if err := c.usecase.ReplaceSyncConfig(r.Context(), request); err != nil {
		utils.BuildErrorResponse(c.log, w, err)
		return
	}

	// Stale adapters would keep authenticating with the old credentials.
	c.factory.ClearCache(tenantID)

	utils.BuildSuccessResponse(w, constvars.StatusOK, "Tenant sync configuration saved", nil)
}

func (c *TenantController) DeleteAdapterCache(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrURLParamMissing("tenantID"))
		return
	}

	c.factory.ClearCache(tenantID)
	utils.BuildSuccessResponse(w, constvars.StatusOK, "Vendor adapter cache cleared", nil)
}
