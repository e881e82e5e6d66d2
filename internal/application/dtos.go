package application

import "github.com/wms-platform/production-service/internal/domain"

// ImportResult reports the outcome of a bulk import request. Status is the
// job's terminal status; TotalItems counts only rows durably written.
type ImportResult struct {
	JobID       string           `json:"jobId"`
	Status      domain.JobStatus `json:"status"`
	TotalItems  int              `json:"totalItems"`
	DroppedRows int              `json:"droppedRows"`
}

// DeleteResult reports the outcome of a bulk deletion request.
type DeleteResult struct {
	TotalDeletes int64  `json:"totalDeletes"`
	Status       string `json:"status"`
}

// CaseBalance pairs a case number with its remaining balance.
type CaseBalance struct {
	CaseNumber     string `json:"caseNumber"`
	RemainingLines int    `json:"remainingLines"`
}

// CaseListResult is the response of the case list lookup.
type CaseListResult struct {
	CaseNumbers []string      `json:"caseNumbers"`
	Balances    []CaseBalance `json:"balances"`
}

// CaseDetail is the response of the single case lookup.
type CaseDetail struct {
	ShipmentID     string `json:"shipmentId"`
	CaseNumber     string `json:"caseNumber"`
	CriticalParts  int    `json:"criticalParts"`
	TotalLines     int    `json:"totalLines"`
	DomesticLines  int    `json:"domesticLines"`
	BulkLines      int    `json:"bulkLines"`
	ConsumedLines  int    `json:"consumedLines"`
	RemainingLines int    `json:"remainingLines"`
}

func newCaseDetail(record *domain.CaseRecord) *CaseDetail {
	return &CaseDetail{
		ShipmentID:     record.ShipmentID,
		CaseNumber:     record.CaseNumber.String(),
		CriticalParts:  record.CriticalParts,
		TotalLines:     record.TotalLines,
		DomesticLines:  record.DomesticLines,
		BulkLines:      record.BulkLines,
		ConsumedLines:  record.ConsumedLines,
		RemainingLines: record.RemainingLines(),
	}
}

// RejectedSortingEntry is a sorting entry the ledger refused, with the reason
// code from the error taxonomy.
type RejectedSortingEntry struct {
	Entry  domain.SortingEntry `json:"entry"`
	Reason string              `json:"reason"`
}

// RejectedPackingEntry is a packing entry the ledger refused.
type RejectedPackingEntry struct {
	Entry  domain.PackingEntry `json:"entry"`
	Reason string              `json:"reason"`
}

// EntryTotals summarizes the accepted entries of one type.
type EntryTotals struct {
	Accepted int `json:"accepted"`
	Lines    int `json:"lines"`
}

// ProductivitySummary groups the accepted totals per entry type.
type ProductivitySummary struct {
	Sorting EntryTotals `json:"sorting"`
	Packing EntryTotals `json:"packing"`
}

// ProductivityResult reports per-entry acceptance and the worker's updated
// daily totals. Partial success is the normal case.
type ProductivityResult struct {
	Summary         ProductivitySummary              `json:"summary"`
	RejectedSorting []RejectedSortingEntry           `json:"rejected"`
	RejectedPacking []RejectedPackingEntry           `json:"rejectedPacking,omitempty"`
	Daily           *domain.DailyProductivitySummary `json:"daily,omitempty"`
}

// MonthlyProductivityResult is the range-read of one month's daily summaries.
type MonthlyProductivityResult struct {
	UserID   string                             `json:"userId"`
	FromDate string                             `json:"fromDate"`
	ToDate   string                             `json:"toDate"`
	Days     []*domain.DailyProductivitySummary `json:"days"`
}
