package middlewares

import (
	"synclinic-service/internal/app/config"

	"go.uber.org/zap"
)

type Middlewares struct {
	internalConfig *config.InternalConfig
	log            *zap.Logger
}

func NewMiddlewares(internalConfig *config.InternalConfig, logger *zap.Logger) *Middlewares {
	return &Middlewares{
		internalConfig: internalConfig,
		log:            logger,
	}
}
