package utils

import (
	"net/http"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	response := responses.BaseResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	customErr, ok := err.(*exceptions.CustomError)
	if !ok {
		customErr = exceptions.WrapWithError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevInvalidInput)
	}

	log.Error("request failed",
		zap.Int(constvars.LoggingStatusCodeKey, customErr.StatusCode),
		zap.String("dev_message", customErr.DevMessage),
	)

	response := responses.BaseResponse{
		Success: false,
		Message: customErr.ClientMessage,
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(customErr.StatusCode)
	_ = json.NewEncoder(w).Encode(response)
}
