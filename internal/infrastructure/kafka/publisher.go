package kafka

import (
	"context"
	"log/slog"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/kafka"
)

const eventSource = "production-service"

// Publisher emits production domain events. Publishing is best effort: a
// broker outage is logged and never fails the request that triggered it.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

func NewPublisher(producer *kafka.Producer, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger,
	}
}

func (p *Publisher) publish(ctx context.Context, eventType, subject string, data interface{}) {
	event := kafka.NewEvent(eventType, eventSource, subject, data)
	if err := p.producer.PublishEvent(ctx, kafka.Topics.ProductionEvents, event); err != nil {
		p.logger.Error("failed to publish event",
			slog.String("event_type", eventType),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
	}
}

// CasesImported announces a finished bulk import job.
func (p *Publisher) CasesImported(ctx context.Context, job *domain.ImportJob) {
	p.publish(ctx, kafka.EventCasesImported, job.ID, map[string]interface{}{
		"jobId":          job.ID,
		"requestedBy":    job.RequestedBy,
		"shipmentIds":    job.ShipmentIDs,
		"status":         job.Status,
		"totalItems":     job.TotalItems,
		"processedItems": job.ProcessedItems,
	})
}

// CasesDeleted announces a bulk deletion.
func (p *Publisher) CasesDeleted(ctx context.Context, shipmentID string, deletedCount int64, wildcard bool) {
	p.publish(ctx, kafka.EventCasesDeleted, shipmentID, map[string]interface{}{
		"shipmentId":   shipmentID,
		"deletedCount": deletedCount,
		"wildcard":     wildcard,
	})
}

// ProductivityRecorded announces accepted productivity entries for a worker.
func (p *Publisher) ProductivityRecorded(ctx context.Context, userID, date string, accepted, rejected int) {
	p.publish(ctx, kafka.EventProductivityRecorded, userID, map[string]interface{}{
		"userId":   userID,
		"date":     date,
		"accepted": accepted,
		"rejected": rejected,
	})
}
