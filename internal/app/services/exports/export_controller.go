package exports

import (
	"net/http"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/exceptions"
	"synclinic-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type ExportController struct {
	documents  contracts.ExportUsecase
	encounters contracts.EncounterExportUsecase
	log        *zap.Logger
}

func NewExportController(documents contracts.ExportUsecase, encounters contracts.EncounterExportUsecase, logger *zap.Logger) *ExportController {
	return &ExportController{
		documents:  documents,
		encounters: encounters,
		log:        logger,
	}
}

func (c *ExportController) ExportDocument(w http.ResponseWriter, r *http.Request) {
	request := new(requests.ExportDocument)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.NewValidator().Struct(request); err != nil {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrInputValidation(err))
		return
	}

	tenantCtx := tenantContextFromRequest(r, request.TenantID)
	result := c.documents.ExportDocument(r.Context(), tenantCtx, request)

	message := "Document export completed"
	if !result.Success {
		message = "Document export failed"
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, message, result)
}

func (c *ExportController) ExportEncounter(w http.ResponseWriter, r *http.Request) {
	request := new(requests.ExportEncounter)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.NewValidator().Struct(request); err != nil {
		utils.BuildErrorResponse(c.log, w, exceptions.ErrInputValidation(err))
		return
	}

	tenantCtx := tenantContextFromRequest(r, request.TenantID)
	result := c.encounters.ExportEncounter(r.Context(), tenantCtx, request)

	message := "Encounter export completed"
	if !result.Success {
		message = "Encounter export failed"
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, message, result)
}

func tenantContextFromRequest(r *http.Request, tenantID string) *requests.TenantContext {
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return &requests.TenantContext{
		TenantID:  tenantID,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
}
