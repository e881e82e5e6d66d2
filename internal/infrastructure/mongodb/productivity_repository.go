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

const (
	packingLogCollection   = "packing_log"
	productivityCollection = "daily_productivity"
)

type ProductivityRepository struct {
	packingLog *mongo.Collection
	summaries  *mongo.Collection
	metrics    *metrics.Metrics
}

func NewProductivityRepository(client *mongodb.Client, m *metrics.Metrics) *ProductivityRepository {
	repo := &ProductivityRepository{
		packingLog: client.Collection(packingLogCollection),
		summaries:  client.Collection(productivityCollection),
		metrics:    m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ProductivityRepository) ensureIndexes(ctx context.Context) {
	r.packingLog.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}},
	})
	r.summaries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}

func (r *ProductivityRepository) RecordPacking(ctx context.Context, record *domain.PackingRecord) error {
	start := time.Now()
	_, err := r.packingLog.InsertOne(ctx, record)
	r.metrics.RecordMongoDBOperation(packingLogCollection, "insert", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("record packing entry: %w", err)
	}
	return nil
}

// IncrementDailySummary applies the delta with $inc upserts, so concurrent
// reports for the same worker and day merge instead of overwriting.
func (r *ProductivityRepository) IncrementDailySummary(ctx context.Context, userID, date string, delta domain.SummaryDelta) error {
	if delta.Empty() {
		return nil
	}

	start := time.Now()
	_, err := r.summaries.UpdateOne(ctx,
		bson.M{"userId": userID, "date": date},
		bson.M{
			"$inc": bson.M{
				"sorterLines": delta.SorterLines,
				"sorterCases": delta.SorterCases,
				"packerLines": delta.PackerLines,
				"packerCases": delta.PackerCases,
			},
			// The filter equality fields seed userId and date on insert.
			"$set": bson.M{"updatedAt": mongodb.Now()},
		},
		options.Update().SetUpsert(true),
	)
	r.metrics.RecordMongoDBOperation(productivityCollection, "increment_summary", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("increment daily summary for %s on %s: %w", userID, date, err)
	}
	return nil
}

func (r *ProductivityRepository) FindDailySummary(ctx context.Context, userID, date string) (*domain.DailyProductivitySummary, error) {
	var summary domain.DailyProductivitySummary
	start := time.Now()
	err := r.summaries.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&summary)
	r.metrics.RecordMongoDBOperation(productivityCollection, "find_one", err == nil, time.Since(start))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *ProductivityRepository) FindMonthlySummaries(ctx context.Context, userID, fromDate, toDate string) ([]*domain.DailyProductivitySummary, error) {
	start := time.Now()
	cursor, err := r.summaries.Find(ctx,
		bson.M{
			"userId": userID,
			"date":   bson.M{"$gte": fromDate, "$lte": toDate},
		},
		options.Find().SetSort(mongodb.SortAscending("date")),
	)
	r.metrics.RecordMongoDBOperation(productivityCollection, "find_monthly", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []*domain.DailyProductivitySummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
