package routers

import (
	"fmt"
	"time"

	"synclinic-service/internal/app/config"
	"synclinic-service/internal/app/delivery/http/middlewares"
	"synclinic-service/internal/app/services/exports"
	"synclinic-service/internal/app/services/tenants"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type Controllers struct {
	Exports *exports.ExportController
	Tenants *tenants.TenantController
}

func SetupRoutes(router *chi.Mux, internalConfig *config.InternalConfig, mw *middlewares.Middlewares, controllers *Controllers) {
	router.Use(middleware.Recoverer)
	router.Use(mw.RequestID)
	router.Use(httprate.LimitByIP(internalConfig.App.MaxRequests, 1*time.Minute))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	prefix := fmt.Sprintf("/%s/%s", internalConfig.App.EndpointPrefix, internalConfig.App.Version)

	router.Route(prefix, func(r chi.Router) {
		r.Route("/exports", func(r chi.Router) {
			r.Post("/documents", controllers.Exports.ExportDocument)
			r.Post("/encounters", controllers.Exports.ExportEncounter)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Use(mw.AdminAPIKey)
			r.Get("/{tenantID}/sync-config", controllers.Tenants.GetSyncConfig)
			r.Put("/{tenantID}/sync-config", controllers.Tenants.PutSyncConfig)
			r.Delete("/{tenantID}/adapters", controllers.Tenants.DeleteAdapterCache)
		})
	})
}
