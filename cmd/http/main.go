package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"synclinic-service/internal/app/config"
	"synclinic-service/internal/app/delivery/http/middlewares"
	"synclinic-service/internal/app/delivery/http/routers"
	"synclinic-service/internal/app/drivers/database"
	"synclinic-service/internal/app/drivers/logger"
	"synclinic-service/internal/app/drivers/messaging"
	"synclinic-service/internal/app/drivers/storage"
	"synclinic-service/internal/app/services/encounters"
	"synclinic-service/internal/app/services/exports"
	"synclinic-service/internal/app/services/fhirstore"
	sharedevents "synclinic-service/internal/app/services/shared/events"
	sharedredis "synclinic-service/internal/app/services/shared/redis"
	sharedstorage "synclinic-service/internal/app/services/shared/storage"
	"synclinic-service/internal/app/services/tenants"
	"synclinic-service/internal/app/services/vendors"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	logger.InitProcessLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		MongoDB:        database.NewMongoDB(driverConfig),
		Redis:          database.NewRedisClient(driverConfig),
		RabbitMQ:       messaging.NewRabbitMQ(driverConfig),
		Minio:          storage.NewMinio(driverConfig),
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	redisRepository := sharedredis.NewRedisRepository(bootstrap.Redis)
	objectStorage := sharedstorage.NewMinioStorage(bootstrap.Minio, driverConfig.Minio.BucketName)

	eventPublisher, err := sharedevents.NewExportEventPublisher(bootstrap.RabbitMQ, zapLogger, internalConfig.App.EventQueueName)
	if err != nil {
		logrus.WithError(err).Fatal("export event publisher init failed")
	}

	tenantRepository := tenants.NewTenantMongoRepository(bootstrap.MongoDB)
	tenantUsecase := tenants.NewTenantUsecase(
		tenantRepository,
		redisRepository,
		time.Duration(internalConfig.Sync.TenantConfigCacheTTLInMinute)*time.Minute,
		zapLogger,
	)

	limiters := vendors.NewRateLimiterRegistry(internalConfig.Sync.VendorRequestsPerSecond, internalConfig.Sync.VendorRequestBurst)
	adapterFactory := vendors.NewVendorAdapterFactory(tenantUsecase, limiters, zapLogger)
	clientProvider := fhirstore.NewTargetClientProvider(zapLogger)

	duplicateDetector := exports.NewDuplicateDetector(zapLogger)
	patientReconciler := exports.NewPatientReconciler(zapLogger)
	binaryTransformer := exports.NewBinaryTransformer(zapLogger)

	exportUsecase := exports.NewExportUsecase(
		tenantUsecase,
		adapterFactory,
		clientProvider,
		duplicateDetector,
		patientReconciler,
		binaryTransformer,
		objectStorage,
		eventPublisher,
		zapLogger,
	)
	encounterUsecase := encounters.NewEncounterExportUsecase(
		tenantUsecase,
		adapterFactory,
		clientProvider,
		patientReconciler,
		zapLogger,
	)

	controllers := &routers.Controllers{
		Exports: exports.NewExportController(exportUsecase, encounterUsecase, zapLogger),
		Tenants: tenants.NewTenantController(tenantUsecase, adapterFactory, zapLogger),
	}

	mw := middlewares.NewMiddlewares(internalConfig, zapLogger)
	routers.SetupRoutes(bootstrap.Router, internalConfig, mw, controllers)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: bootstrap.Router,
	}

	go func() {
		logrus.WithField("addr", internalConfig.App.Port).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(internalConfig.App.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("http shutdown failed")
	}
	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("bootstrap shutdown failed")
	}
	logrus.Info("server stopped")
}
