package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/production-service/pkg/metrics"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

const shipmentCollection = "shipments"

// ShipmentRepository writes the production flags on the shipment documents
// shared with the rest of the platform. This service only owns the
// productionUploaded lock, never the shipment lifecycle itself.
type ShipmentRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

func NewShipmentRepository(client *mongodb.Client, m *metrics.Metrics) *ShipmentRepository {
	return &ShipmentRepository{
		collection: client.Collection(shipmentCollection),
		metrics:    m,
	}
}

func (r *ShipmentRepository) SetProductionUploaded(ctx context.Context, shipmentID string, uploaded bool) error {
	start := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"shipmentId": shipmentID},
		bson.M{"$set": bson.M{
			"productionUploaded": uploaded,
			"updatedAt":          mongodb.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	r.metrics.RecordMongoDBOperation(shipmentCollection, "set_production_uploaded", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("set production flag for shipment %s: %w", shipmentID, err)
	}
	return nil
}
