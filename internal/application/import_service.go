package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/internal/infrastructure/writer"
	"github.com/wms-platform/production-service/pkg/auth"
	"github.com/wms-platform/production-service/pkg/errors"
	"github.com/wms-platform/production-service/pkg/logging"
	"github.com/wms-platform/production-service/pkg/metrics"
)

// DefaultImportBudget bounds the wall clock of one import request. The budget
// is checked at shipment boundaries only, so a shipment in progress always
// finishes before the check runs.
const DefaultImportBudget = 50 * time.Second

// EventPublisher emits domain events after state changes. Implementations are
// best effort and must never fail the calling request.
type EventPublisher interface {
	CasesImported(ctx context.Context, job *domain.ImportJob)
	CasesDeleted(ctx context.Context, shipmentID string, deletedCount int64, wildcard bool)
	ProductivityRecorded(ctx context.Context, userID, date string, accepted, rejected int)
}

// CoordinatorFactory produces a write coordinator per shipment.
type CoordinatorFactory interface {
	New() writer.Coordinator
	Strategy() string
}

// ImportService implements the bulk import coordinator.
type ImportService struct {
	caseRepo     domain.CaseRecordRepository
	manifestRepo domain.ImportManifestRepository
	jobRepo      domain.ImportJobRepository
	shipmentRepo domain.ShipmentRepository
	writers      CoordinatorFactory
	authorizer   auth.Authorizer
	publisher    EventPublisher
	metrics      *metrics.Metrics
	logger       *logging.Logger
	budget       time.Duration
	now          func() time.Time
}

// NewImportService creates an ImportService. A non-positive budget falls back
// to the default.
func NewImportService(
	caseRepo domain.CaseRecordRepository,
	manifestRepo domain.ImportManifestRepository,
	jobRepo domain.ImportJobRepository,
	shipmentRepo domain.ShipmentRepository,
	writers CoordinatorFactory,
	authorizer auth.Authorizer,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
	budget time.Duration,
) *ImportService {
	if budget <= 0 {
		budget = DefaultImportBudget
	}
	return &ImportService{
		caseRepo:     caseRepo,
		manifestRepo: manifestRepo,
		jobRepo:      jobRepo,
		shipmentRepo: shipmentRepo,
		writers:      writers,
		authorizer:   authorizer,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		budget:       budget,
		now:          time.Now,
	}
}

// Import validates and writes case records for every shipment in the command,
// updating each shipment's manifest after its rows are durable. Returns the
// terminal job status: completed, or timeout when the budget ran out with
// shipments left over.
func (s *ImportService) Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	if cmd.UserID == "" {
		return nil, errors.ErrUnauthenticated("missing caller identity")
	}
	allowed, err := s.authorizer.IsAuthorized(ctx, cmd.UserID, auth.ResourceProduction, auth.ActionImport)
	if err != nil {
		return nil, errors.ErrInternal("authorization check failed").Wrap(err)
	}
	if !allowed {
		return nil, errors.ErrForbidden("not allowed to import production data")
	}

	if len(cmd.Shipments) == 0 || cmd.TotalRows() == 0 {
		return nil, errors.ErrInvalidPayload("import payload contains no case rows")
	}

	start := s.now().UTC()
	job := domain.NewImportJob(uuid.New().String(), cmd.UserID, cmd.ShipmentIDs(), cmd.TotalRows(), start)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, errors.ErrInternal("failed to open import job").Wrap(err)
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"job_id":   job.ID,
		"strategy": s.writers.Strategy(),
	})

	processed := 0
	dropped := 0
	timedOut := false

	for i, shipment := range cmd.Shipments {
		if i > 0 && s.now().UTC().Sub(start) > s.budget {
			timedOut = true
			log.Warn("import budget exceeded, stopping at shipment boundary",
				"processed_shipments", i, "total_shipments", len(cmd.Shipments))
			break
		}

		written, droppedRows, err := s.importShipment(ctx, shipment, cmd.Source, cmd.UserID, start)
		processed += written
		dropped += droppedRows
		if err != nil {
			s.failJob(ctx, job, processed, err)
			return nil, errors.ErrInternal("import failed").
				WithDetail("shipmentId", shipment.ShipmentID).
				Wrap(err)
		}
	}

	finishedAt := s.now().UTC()
	if timedOut {
		job.Timeout(processed, finishedAt)
	} else {
		job.Complete(processed, finishedAt)
	}
	if err := s.jobRepo.Finish(ctx, job); err != nil {
		log.Error("failed to persist terminal job status", "error", err)
	}

	s.metrics.RecordImportJob(string(job.Status), processed, job.Duration())
	s.metrics.CaseRowsDropped.Add(float64(dropped))
	s.logger.ImportJobEvent(ctx, job.ID, string(job.Status), processed, job.Duration())
	s.publisher.CasesImported(ctx, job)

	return &ImportResult{
		JobID:       job.ID,
		Status:      job.Status,
		TotalItems:  processed,
		DroppedRows: dropped,
	}, nil
}

// importShipment writes one shipment's rows through a fresh coordinator and
// updates the manifest and lock flag once every row is durable.
func (s *ImportService) importShipment(ctx context.Context, shipment ShipmentRows, source domain.SourceFile, userID string, uploadedAt time.Time) (int, int, error) {
	coord := s.writers.New()
	log := s.logger.WithContext(ctx)

	dropped := 0
	caseNumbers := make([]domain.CaseNumber, 0, len(shipment.Rows))
	for _, row := range shipment.Rows {
		record, err := domain.NewCaseRecord(shipment.ShipmentID, row, userID, uploadedAt)
		if err != nil {
			dropped++
			log.Debug("dropped case row",
				"shipment_id", shipment.ShipmentID, "row", row.Row, "reason", err.Error())
			continue
		}
		if err := coord.Add(ctx, record); err != nil {
			coord.Flush(ctx)
			return coord.Written(), dropped, err
		}
		caseNumbers = append(caseNumbers, record.CaseNumber)
	}

	if err := coord.Flush(ctx); err != nil {
		return coord.Written(), dropped, err
	}

	manifest := domain.NewImportManifest(
		shipment.ShipmentID,
		domain.DedupeCaseNumbers(caseNumbers),
		source,
		userID,
		uploadedAt,
	)
	if err := s.manifestRepo.Upsert(ctx, manifest); err != nil {
		return coord.Written(), dropped, err
	}
	if err := s.shipmentRepo.SetProductionUploaded(ctx, shipment.ShipmentID, true); err != nil {
		return coord.Written(), dropped, err
	}

	return coord.Written(), dropped, nil
}

// failJob appends a best-effort failure record before the error surfaces.
func (s *ImportService) failJob(ctx context.Context, job *domain.ImportJob, processed int, cause error) {
	if err := job.Fail(processed, cause.Error(), s.now().UTC()); err != nil {
		return
	}
	if err := s.jobRepo.Finish(ctx, job); err != nil {
		s.logger.WithContext(ctx).Error("failed to record import failure",
			"job_id", job.ID, "error", err)
	}
	s.metrics.RecordImportJob(string(job.Status), processed, job.Duration())
	s.publisher.CasesImported(ctx, job)
}

// GetJob returns an import job for client polling, or NOT_FOUND.
func (s *ImportService) GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load import job").Wrap(err)
	}
	if job == nil {
		return nil, errors.ErrNotFoundWithID("import job", jobID)
	}
	return job, nil
}
