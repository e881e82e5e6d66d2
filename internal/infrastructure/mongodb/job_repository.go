package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/metrics"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

const jobCollection = "import_jobs"

type ImportJobRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

func NewImportJobRepository(client *mongodb.Client, m *metrics.Metrics) *ImportJobRepository {
	repo := &ImportJobRepository{
		collection: client.Collection(jobCollection),
		metrics:    m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ImportJobRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "requestedBy", Value: 1}, {Key: "startedAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ImportJobRepository) Create(ctx context.Context, job *domain.ImportJob) error {
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, job)
	r.metrics.RecordMongoDBOperation(jobCollection, "insert", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("create import job %s: %w", job.ID, err)
	}
	return nil
}

// Finish persists a terminal job state. The filter excludes documents already
// terminal, so a lost race surfaces as ErrJobFinished instead of a silent
// overwrite.
func (r *ImportJobRepository) Finish(ctx context.Context, job *domain.ImportJob) error {
	start := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": job.ID, "status": domain.JobStatusStarted},
		bson.M{"$set": bson.M{
			"status":         job.Status,
			"processedItems": job.ProcessedItems,
			"error":          job.Error,
			"finishedAt":     job.FinishedAt,
		}},
	)
	r.metrics.RecordMongoDBOperation(jobCollection, "finish", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("finish import job %s: %w", job.ID, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrJobFinished
	}
	return nil
}

func (r *ImportJobRepository) FindByID(ctx context.Context, id string) (*domain.ImportJob, error) {
	var job domain.ImportJob
	start := time.Now()
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	r.metrics.RecordMongoDBOperation(jobCollection, "find_one", err == nil, time.Since(start))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}
