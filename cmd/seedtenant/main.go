package main

import (
	"context"
	"flag"
	"os"
	"time"

	"synclinic-service/internal/app/config"
	"synclinic-service/internal/app/drivers/database"
	"synclinic-service/internal/app/services/tenants"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// seedtenant loads a tenant sync configuration JSON file into the tenant
// store, for bootstrapping environments without going through the admin API.
// With -hash-key it prints the bcrypt hash for an admin API key instead.
func main() {
	filePath := flag.String("file", "", "path to a tenant sync config JSON file")
	hashKey := flag.String("hash-key", "", "print the bcrypt hash of this admin API key and exit")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *hashKey != "" {
		hash, err := utils.HashAPIKey(*hashKey)
		if err != nil {
			log.WithError(err).Fatal("failed to hash api key")
		}
		log.WithField("hash", hash).Info("admin api key hash")
		return
	}

	if *filePath == "" {
		log.Fatal("missing -file argument")
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.WithError(err).WithField("file", *filePath).Fatal("failed to read config file")
	}

	syncConfig := new(requests.TenantSyncConfig)
	if err := json.Unmarshal(raw, syncConfig); err != nil {
		log.WithError(err).Fatal("failed to parse config file")
	}
	if err := utils.NewValidator().Struct(syncConfig); err != nil {
		log.WithError(err).Fatal("config file failed validation")
	}

	driverConfig := config.NewDriverConfig()
	db := database.NewMongoDB(driverConfig)
	repository := tenants.NewTenantMongoRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repository.UpsertSyncConfig(ctx, syncConfig); err != nil {
		log.WithError(err).Fatal("failed to upsert tenant sync config")
	}

	log.WithFields(logrus.Fields{
		"tenant_id": syncConfig.TenantID,
		"vendor":    syncConfig.Vendor,
	}).Info("tenant sync config seeded")

	if err := db.Client().Disconnect(ctx); err != nil {
		log.WithError(err).Warn("mongo disconnect failed")
	}
}
