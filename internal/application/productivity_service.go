package application

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/auth"
	"github.com/wms-platform/production-service/pkg/errors"
	"github.com/wms-platform/production-service/pkg/logging"
	"github.com/wms-platform/production-service/pkg/metrics"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
)

// ProductivityService implements the consumption ledger: sorting entries draw
// on case balances through the transactional path, packing entries are logged
// without any balance check, and both feed the daily aggregates.
type ProductivityService struct {
	caseRepo         domain.CaseRecordRepository
	productivityRepo domain.ProductivityRepository
	authorizer       auth.Authorizer
	publisher        EventPublisher
	metrics          *metrics.Metrics
	logger           *logging.Logger
	now              func() time.Time
}

func NewProductivityService(
	caseRepo domain.CaseRecordRepository,
	productivityRepo domain.ProductivityRepository,
	authorizer auth.Authorizer,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ProductivityService {
	return &ProductivityService{
		caseRepo:         caseRepo,
		productivityRepo: productivityRepo,
		authorizer:       authorizer,
		publisher:        publisher,
		metrics:          m,
		logger:           logger,
		now:              time.Now,
	}
}

// Record applies a batch of sorting and packing entries for one worker and
// date. Acceptance is per entry; a rejected entry never blocks the rest of
// the batch.
func (s *ProductivityService) Record(ctx context.Context, cmd RecordProductivityCommand) (*ProductivityResult, error) {
	if cmd.UserID == "" {
		return nil, errors.ErrUnauthenticated("missing caller identity")
	}
	allowed, err := s.authorizer.IsAuthorized(ctx, cmd.UserID, auth.ResourceProductivity, auth.ActionRecord)
	if err != nil {
		return nil, errors.ErrInternal("authorization check failed").Wrap(err)
	}
	if !allowed {
		return nil, errors.ErrForbidden("not allowed to record productivity")
	}

	date, err := domain.ParseWorkDate(cmd.Date)
	if err != nil {
		return nil, errors.ErrValidation("date must be formatted YYYY-MM-DD")
	}
	if len(cmd.SortingEntries) == 0 && len(cmd.PackingEntries) == 0 {
		return nil, errors.ErrInvalidPayload("productivity payload contains no entries")
	}

	var delta domain.SummaryDelta
	result := &ProductivityResult{
		RejectedSorting: make([]RejectedSortingEntry, 0),
		RejectedPacking: make([]RejectedPackingEntry, 0),
	}

	for _, entry := range cmd.SortingEntries {
		if reason, ok := s.applySorting(ctx, entry); !ok {
			result.RejectedSorting = append(result.RejectedSorting, RejectedSortingEntry{Entry: entry, Reason: reason})
			s.metrics.RecordConsumptionEntry(string(domain.EntryTypeSorting), outcomeRejected)
			continue
		}
		delta.AddSorting(entry.LinesRequested)
		result.Summary.Sorting.Accepted++
		result.Summary.Sorting.Lines += entry.LinesRequested
		s.metrics.RecordConsumptionEntry(string(domain.EntryTypeSorting), outcomeAccepted)
	}

	for _, entry := range cmd.PackingEntries {
		if reason, ok := s.applyPacking(ctx, cmd.UserID, date, entry); !ok {
			result.RejectedPacking = append(result.RejectedPacking, RejectedPackingEntry{Entry: entry, Reason: reason})
			s.metrics.RecordConsumptionEntry(string(domain.EntryTypePacking), outcomeRejected)
			continue
		}
		delta.AddPacking(entry.LinesPacked)
		result.Summary.Packing.Accepted++
		result.Summary.Packing.Lines += entry.LinesPacked
		s.metrics.RecordConsumptionEntry(string(domain.EntryTypePacking), outcomeAccepted)
	}

	if err := s.productivityRepo.IncrementDailySummary(ctx, cmd.UserID, date, delta); err != nil {
		return nil, errors.ErrInternal("failed to update daily totals").Wrap(err)
	}

	daily, err := s.productivityRepo.FindDailySummary(ctx, cmd.UserID, date)
	if err != nil {
		s.logger.WithContext(ctx).Warn("failed to read back daily summary",
			"user_id", cmd.UserID, "date", date, "error", err.Error())
	} else {
		result.Daily = daily
	}

	accepted := result.Summary.Sorting.Accepted + result.Summary.Packing.Accepted
	rejected := len(result.RejectedSorting) + len(result.RejectedPacking)
	s.logger.ConsumptionEvent(ctx, cmd.UserID, date, accepted, rejected)
	s.publisher.ProductivityRecorded(ctx, cmd.UserID, date, accepted, rejected)

	return result, nil
}

// applySorting validates the entry and runs the transactional consume. The
// returned reason is an error taxonomy code.
func (s *ProductivityService) applySorting(ctx context.Context, entry domain.SortingEntry) (string, bool) {
	if err := entry.Validate(); err != nil {
		return errors.CodeValidation, false
	}

	caseNumber, _ := domain.ParseCaseNumber(entry.CaseNumber)
	_, err := s.caseRepo.ConsumeLines(ctx, entry.ShipmentID, caseNumber, entry.LinesRequested)
	switch {
	case err == nil:
		return "", true
	case stderrors.Is(err, domain.ErrOverConsumption):
		return errors.CodeOverConsumption, false
	case stderrors.Is(err, domain.ErrCaseNotFound):
		return errors.CodeNotFound, false
	default:
		s.logger.WithContext(ctx).Error("consume transaction failed",
			"shipment_id", entry.ShipmentID, "case_number", entry.CaseNumber, "error", err.Error())
		return errors.CodeServerError, false
	}
}

func (s *ProductivityService) applyPacking(ctx context.Context, userID, date string, entry domain.PackingEntry) (string, bool) {
	if err := entry.Validate(); err != nil {
		return errors.CodeValidation, false
	}

	record := &domain.PackingRecord{
		ID:          mongodb.GenerateIDString(),
		UserID:      userID,
		Date:        date,
		LocationNo:  entry.LocationNo,
		NewCaseNo:   domain.SanitizeCaseNumber(entry.NewCaseNo),
		LinesPacked: entry.LinesPacked,
		RecordedAt:  s.now().UTC(),
	}
	if err := s.productivityRepo.RecordPacking(ctx, record); err != nil {
		s.logger.WithContext(ctx).Error("failed to log packing entry",
			"user_id", userID, "new_case_no", record.NewCaseNo, "error", err.Error())
		return errors.CodeServerError, false
	}
	return "", true
}

// MonthlySummaries returns the month view containing the given date.
func (s *ProductivityService) MonthlySummaries(ctx context.Context, userID, date string) (*MonthlyProductivityResult, error) {
	if userID == "" {
		return nil, errors.ErrValidation("userId is required")
	}
	normalized, err := domain.ParseWorkDate(date)
	if err != nil {
		return nil, errors.ErrValidation("date must be formatted YYYY-MM-DD")
	}
	from, to, err := domain.MonthRange(normalized)
	if err != nil {
		return nil, errors.ErrValidation("date must be formatted YYYY-MM-DD")
	}

	days, err := s.productivityRepo.FindMonthlySummaries(ctx, userID, from, to)
	if err != nil {
		return nil, errors.ErrInternal("failed to load monthly summaries").Wrap(err)
	}
	return &MonthlyProductivityResult{
		UserID:   userID,
		FromDate: from,
		ToDate:   to,
		Days:     days,
	}, nil
}
