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

const caseCollection = "production_cases"

// deleteChunkSize stays under the store's per-request ceiling for $in deletes.
const deleteChunkSize = 480

type CaseRecordRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

func NewCaseRecordRepository(client *mongodb.Client, m *metrics.Metrics) *CaseRecordRepository {
	repo := &CaseRecordRepository{
		client:     client,
		collection: client.Collection(caseCollection),
		metrics:    m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CaseRecordRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shipmentId", Value: 1}, {Key: "caseNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "shipmentId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *CaseRecordRepository) caseFilter(shipmentID string, caseNumber domain.CaseNumber) bson.M {
	return bson.M{"shipmentId": shipmentID, "caseNumber": caseNumber.String()}
}

func (r *CaseRecordRepository) Upsert(ctx context.Context, record *domain.CaseRecord) error {
	start := time.Now()
	_, err := r.collection.ReplaceOne(ctx,
		r.caseFilter(record.ShipmentID, record.CaseNumber),
		record,
		options.Replace().SetUpsert(true),
	)
	r.metrics.RecordMongoDBOperation(caseCollection, "upsert", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("upsert case %s: %w", record.CaseNumber, err)
	}
	return nil
}

func (r *CaseRecordRepository) BulkUpsert(ctx context.Context, records []*domain.CaseRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(r.caseFilter(record.ShipmentID, record.CaseNumber)).
			SetReplacement(record).
			SetUpsert(true))
	}

	start := time.Now()
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	r.metrics.RecordMongoDBOperation(caseCollection, "bulk_upsert", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("bulk upsert %d cases: %w", len(records), err)
	}
	return nil
}

func (r *CaseRecordRepository) FindByShipment(ctx context.Context, shipmentID string) ([]*domain.CaseRecord, error) {
	start := time.Now()
	cursor, err := r.collection.Find(ctx,
		bson.M{"shipmentId": shipmentID},
		options.Find().SetSort(mongodb.SortAscending("caseNumber")),
	)
	r.metrics.RecordMongoDBOperation(caseCollection, "find_by_shipment", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.CaseRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *CaseRecordRepository) FindByCaseNumber(ctx context.Context, shipmentID string, caseNumber domain.CaseNumber) (*domain.CaseRecord, error) {
	var record domain.CaseRecord
	start := time.Now()
	err := r.collection.FindOne(ctx, r.caseFilter(shipmentID, caseNumber)).Decode(&record)
	r.metrics.RecordMongoDBOperation(caseCollection, "find_one", err == nil, time.Since(start))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteByCaseNumbers removes cases in chunks so a single delete never carries
// more ids than the store accepts per request. A failing chunk does not stop
// the chunks behind it.
func (r *CaseRecordRepository) DeleteByCaseNumbers(ctx context.Context, shipmentID string, caseNumbers []string) (int64, error) {
	var deleted int64
	var errs []error

	for _, chunk := range mongodb.ChunkStrings(caseNumbers, deleteChunkSize) {
		start := time.Now()
		result, err := r.collection.DeleteMany(ctx, bson.M{
			"shipmentId": shipmentID,
			"caseNumber": bson.M{"$in": chunk},
		})
		r.metrics.RecordMongoDBOperation(caseCollection, "delete_many", err == nil, time.Since(start))
		if err != nil {
			errs = append(errs, fmt.Errorf("delete chunk of %d cases: %w", len(chunk), err))
			continue
		}
		deleted += result.DeletedCount
	}

	return deleted, errors.Join(errs...)
}

// ConsumeLines runs the read-check-increment sequence inside a transaction so
// concurrent sorting reports against the same case cannot overdraw it.
func (r *CaseRecordRepository) ConsumeLines(ctx context.Context, shipmentID string, caseNumber domain.CaseNumber, lines int) (*domain.CaseRecord, error) {
	var updated domain.CaseRecord

	start := time.Now()
	err := r.client.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		var record domain.CaseRecord
		err := r.collection.FindOne(sc, r.caseFilter(shipmentID, caseNumber)).Decode(&record)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrCaseNotFound
		}
		if err != nil {
			return err
		}

		if err := record.Consume(lines); err != nil {
			return err
		}

		return r.collection.FindOneAndUpdate(sc,
			r.caseFilter(shipmentID, caseNumber),
			bson.M{"$inc": bson.M{"consumedLines": lines}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
	})
	r.metrics.RecordMongoDBOperation(caseCollection, "consume_lines", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
