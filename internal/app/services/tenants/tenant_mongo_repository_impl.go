package tenants

import (
	"context"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tenantSyncConfigCollection = "tenant_sync_configs"

type tenantMongoRepository struct {
	collection *mongo.Collection
}

func NewTenantMongoRepository(db *mongo.Database) contracts.TenantRepository {
	return &tenantMongoRepository{
		collection: db.Collection(tenantSyncConfigCollection),
	}
}

func (r *tenantMongoRepository) FindSyncConfigByTenantID(ctx context.Context, tenantID string) (*requests.TenantSyncConfig, error) {
	filter := bson.M{"tenant_id": tenantID}

	config := new(requests.TenantSyncConfig)
	err := r.collection.FindOne(ctx, filter).Decode(config)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return config, nil
}

func (r *tenantMongoRepository) UpsertSyncConfig(ctx context.Context, config *requests.TenantSyncConfig) error {
	filter := bson.M{"tenant_id": config.TenantID}
	update := bson.M{"$set": config}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}
