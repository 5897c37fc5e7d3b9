package middlewares

import (
	"net/http"
	"strings"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/exceptions"
	"synclinic-service/internal/pkg/utils"
)

// AdminAPIKey guards the tenant administration endpoints. The configured
// value is a bcrypt hash, never the key itself.
func (m *Middlewares) AdminAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(constvars.HeaderAuthorization)
		apiKey := strings.TrimPrefix(header, "Bearer ")

		if m.internalConfig.App.AdminAPIKeyHash == "" || apiKey == "" || apiKey == header {
			utils.BuildErrorResponse(m.log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}
		if !utils.CheckAPIKeyHash(apiKey, m.internalConfig.App.AdminAPIKeyHash) {
			utils.BuildErrorResponse(m.log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
