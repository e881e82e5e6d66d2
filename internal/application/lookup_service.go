package application

import (
	"context"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/errors"
	"github.com/wms-platform/production-service/pkg/logging"
)

// LookupService exposes the read-only case queries. Lookups reflect live
// consumption state and are not a concurrency guard; the consumption ledger
// re-validates balances inside its transaction.
type LookupService struct {
	caseRepo domain.CaseRecordRepository
	logger   *logging.Logger
}

func NewLookupService(caseRepo domain.CaseRecordRepository, logger *logging.Logger) *LookupService {
	return &LookupService{
		caseRepo: caseRepo,
		logger:   logger,
	}
}

// ListCases returns a shipment's case numbers with their remaining balances,
// read from the live case records rather than the manifest.
func (s *LookupService) ListCases(ctx context.Context, shipmentID string) (*CaseListResult, error) {
	if shipmentID == "" {
		return nil, errors.ErrValidation("shipmentId is required")
	}

	records, err := s.caseRepo.FindByShipment(ctx, shipmentID)
	if err != nil {
		return nil, errors.ErrInternal("failed to list cases").Wrap(err)
	}

	result := &CaseListResult{
		CaseNumbers: make([]string, 0, len(records)),
		Balances:    make([]CaseBalance, 0, len(records)),
	}
	for _, record := range records {
		result.CaseNumbers = append(result.CaseNumbers, record.CaseNumber.String())
		result.Balances = append(result.Balances, CaseBalance{
			CaseNumber:     record.CaseNumber.String(),
			RemainingLines: record.RemainingLines(),
		})
	}
	return result, nil
}

// GetCase returns the full record of one case with its derived remaining
// balance, or NOT_FOUND.
func (s *LookupService) GetCase(ctx context.Context, shipmentID, rawCaseNumber string) (*CaseDetail, error) {
	if shipmentID == "" {
		return nil, errors.ErrValidation("shipmentId is required")
	}
	caseNumber, err := domain.ParseCaseNumber(rawCaseNumber)
	if err != nil {
		return nil, errors.ErrValidation("caseNumber is empty after sanitization")
	}

	record, err := s.caseRepo.FindByCaseNumber(ctx, shipmentID, caseNumber)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}
	return newCaseDetail(record), nil
}
