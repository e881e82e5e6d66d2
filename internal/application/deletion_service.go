package application

import (
	"context"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/auth"
	"github.com/wms-platform/production-service/pkg/blob"
	"github.com/wms-platform/production-service/pkg/errors"
	"github.com/wms-platform/production-service/pkg/logging"
	"github.com/wms-platform/production-service/pkg/metrics"
)

// DeletionService implements the bulk deletion coordinator.
type DeletionService struct {
	caseRepo     domain.CaseRecordRepository
	manifestRepo domain.ImportManifestRepository
	shipmentRepo domain.ShipmentRepository
	blobStore    blob.Store
	authorizer   auth.Authorizer
	publisher    EventPublisher
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

func NewDeletionService(
	caseRepo domain.CaseRecordRepository,
	manifestRepo domain.ImportManifestRepository,
	shipmentRepo domain.ShipmentRepository,
	blobStore blob.Store,
	authorizer auth.Authorizer,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *DeletionService {
	return &DeletionService{
		caseRepo:     caseRepo,
		manifestRepo: manifestRepo,
		shipmentRepo: shipmentRepo,
		blobStore:    blobStore,
		authorizer:   authorizer,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// Delete removes the targeted cases per shipment. Wildcard targets resolve
// through the shipment's manifest; an absent manifest is a no-op, not an
// error. The manifest and lock flag are cleared unconditionally for every
// shipment in the command.
func (s *DeletionService) Delete(ctx context.Context, cmd DeleteCommand) (*DeleteResult, error) {
	if cmd.UserID == "" {
		return nil, errors.ErrUnauthenticated("missing caller identity")
	}
	allowed, err := s.authorizer.IsAuthorized(ctx, cmd.UserID, auth.ResourceProduction, auth.ActionDelete)
	if err != nil {
		return nil, errors.ErrInternal("authorization check failed").Wrap(err)
	}
	if !allowed {
		return nil, errors.ErrForbidden("not allowed to delete production data")
	}

	if len(cmd.Shipments) == 0 {
		return nil, errors.ErrInvalidPayload("deletion payload contains no shipments")
	}

	var totalDeletes int64
	for _, target := range cmd.Shipments {
		deleted, err := s.deleteShipment(ctx, target)
		totalDeletes += deleted
		if err != nil {
			return nil, errors.ErrInternal("deletion failed").
				WithDetail("shipmentId", target.ShipmentID).
				Wrap(err)
		}
	}

	return &DeleteResult{TotalDeletes: totalDeletes, Status: "ok"}, nil
}

func (s *DeletionService) deleteShipment(ctx context.Context, target ShipmentDeletion) (int64, error) {
	log := s.logger.WithContext(ctx).WithFields(map[string]any{"shipment_id": target.ShipmentID})

	var manifest *domain.ImportManifest
	var targets []string

	if target.Wildcard() {
		found, err := s.manifestRepo.FindByShipment(ctx, target.ShipmentID)
		if err != nil {
			return 0, err
		}
		manifest = found
		if manifest != nil {
			targets = manifest.CaseNumbers
		}
	} else {
		targets = sanitizeTargets(target.CaseNumbers)
	}

	var deleted int64
	if len(targets) > 0 {
		count, err := s.caseRepo.DeleteByCaseNumbers(ctx, target.ShipmentID, targets)
		deleted = count
		if err != nil {
			return deleted, err
		}
	}

	// Manifest and lock flag go away even when nothing was targeted, so a
	// stale manifest can never resurrect deleted cases via wildcard.
	if err := s.manifestRepo.Delete(ctx, target.ShipmentID); err != nil {
		return deleted, err
	}
	if err := s.shipmentRepo.SetProductionUploaded(ctx, target.ShipmentID, false); err != nil {
		return deleted, err
	}

	if target.Wildcard() && manifest != nil && manifest.Source.StoragePath != "" {
		if err := s.blobStore.DeleteObject(ctx, manifest.Source.StoragePath); err != nil {
			s.metrics.RecordBlobCleanup(false)
			log.Warn("failed to delete source blob",
				"storage_path", manifest.Source.StoragePath, "error", err.Error())
		} else {
			s.metrics.RecordBlobCleanup(true)
		}
	}

	s.metrics.CasesDeleted.Add(float64(deleted))
	s.publisher.CasesDeleted(ctx, target.ShipmentID, deleted, target.Wildcard())
	log.Info("deleted production cases", "deleted", deleted, "wildcard", target.Wildcard())

	return deleted, nil
}

// sanitizeTargets applies the import-time sanitization to explicit deletion
// targets and drops the ones that sanitize to empty.
func sanitizeTargets(raw []string) []string {
	caseNumbers := make([]domain.CaseNumber, 0, len(raw))
	for _, value := range raw {
		cn, err := domain.ParseCaseNumber(value)
		if err != nil {
			continue
		}
		caseNumbers = append(caseNumbers, cn)
	}
	return domain.DedupeCaseNumbers(caseNumbers)
}
