package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/metrics"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

const manifestCollection = "import_manifests"

type ImportManifestRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

func NewImportManifestRepository(client *mongodb.Client, m *metrics.Metrics) *ImportManifestRepository {
	repo := &ImportManifestRepository{
		collection: client.Collection(manifestCollection),
		metrics:    m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ImportManifestRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shipmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ImportManifestRepository) Upsert(ctx context.Context, manifest *domain.ImportManifest) error {
	start := time.Now()
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"shipmentId": manifest.ShipmentID},
		manifest,
		options.Replace().SetUpsert(true),
	)
	r.metrics.RecordMongoDBOperation(manifestCollection, "upsert", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("upsert manifest for shipment %s: %w", manifest.ShipmentID, err)
	}
	return nil
}

func (r *ImportManifestRepository) FindByShipment(ctx context.Context, shipmentID string) (*domain.ImportManifest, error) {
	var manifest domain.ImportManifest
	start := time.Now()
	err := r.collection.FindOne(ctx, bson.M{"shipmentId": shipmentID}).Decode(&manifest)
	r.metrics.RecordMongoDBOperation(manifestCollection, "find_one", err == nil, time.Since(start))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (r *ImportManifestRepository) Delete(ctx context.Context, shipmentID string) error {
	start := time.Now()
	_, err := r.collection.DeleteOne(ctx, bson.M{"shipmentId": shipmentID})
	r.metrics.RecordMongoDBOperation(manifestCollection, "delete", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("delete manifest for shipment %s: %w", shipmentID, err)
	}
	return nil
}
