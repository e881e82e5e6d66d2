package domain

import (
	"fmt"
	"math"
	"time"
)

// CaseRow is a raw case row as received from an uploaded spreadsheet.
// Quantities arrive as floats because spreadsheet cells are untyped.
type CaseRow struct {
	CaseNumber    string  `json:"caseNumber"`
	CriticalParts float64 `json:"criticalParts"`
	TotalLines    float64 `json:"totalLines"`
	DomesticLines float64 `json:"domesticLines"`
	BulkLines     float64 `json:"bulkLines"`
	Row           int     `json:"row,omitempty"`
}

// CaseRecord is the persisted production record of one physical case.
// Uniquely keyed by (shipmentId, caseNumber).
type CaseRecord struct {
	ShipmentID    string     `bson:"shipmentId" json:"shipmentId"`
	CaseNumber    CaseNumber `bson:"caseNumber" json:"caseNumber"`
	CriticalParts int        `bson:"criticalParts" json:"criticalParts"`
	TotalLines    int        `bson:"totalLines" json:"totalLines"`
	DomesticLines int        `bson:"domesticLines" json:"domesticLines"`
	BulkLines     int        `bson:"bulkLines" json:"bulkLines"`

	// ConsumedLines is mutated only through the consumption ledger's
	// transactional path. Invariant: 0 <= ConsumedLines <= TotalLines.
	ConsumedLines int `bson:"consumedLines" json:"consumedLines"`

	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	SourceRow  int       `bson:"sourceRow,omitempty" json:"sourceRow,omitempty"`
}

// NewCaseRecord validates a raw row and builds a CaseRecord. The case number
// is sanitized; quantities must be finite and non-negative. TotalLines and
// DomesticLines+BulkLines are independently reported fields and no arithmetic
// relationship between them is enforced.
func NewCaseRecord(shipmentID string, row CaseRow, uploadedBy string, uploadedAt time.Time) (*CaseRecord, error) {
	caseNumber, err := ParseCaseNumber(row.CaseNumber)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", row.Row, err)
	}

	quantities := map[string]float64{
		"criticalParts": row.CriticalParts,
		"totalLines":    row.TotalLines,
		"domesticLines": row.DomesticLines,
		"bulkLines":     row.BulkLines,
	}
	for field, value := range quantities {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return nil, fmt.Errorf("row %d: %s: %w", row.Row, field, ErrInvalidQuantity)
		}
	}

	return &CaseRecord{
		ShipmentID:    shipmentID,
		CaseNumber:    caseNumber,
		CriticalParts: int(row.CriticalParts),
		TotalLines:    int(row.TotalLines),
		DomesticLines: int(row.DomesticLines),
		BulkLines:     int(row.BulkLines),
		ConsumedLines: 0,
		UploadedAt:    uploadedAt,
		UploadedBy:    uploadedBy,
		SourceRow:     row.Row,
	}, nil
}

// RemainingLines returns the balance still available for sorting
func (r *CaseRecord) RemainingLines() int {
	return r.TotalLines - r.ConsumedLines
}

// Consume decrements the remaining balance by lines. Rejects requests that
// would drive the balance negative.
func (r *CaseRecord) Consume(lines int) error {
	if lines <= 0 {
		return fmt.Errorf("lines must be positive: %w", ErrInvalidQuantity)
	}
	remaining := r.RemainingLines()
	if lines > remaining {
		return fmt.Errorf("case %s: requested %d, remaining %d: %w", r.CaseNumber, lines, remaining, ErrOverConsumption)
	}
	r.ConsumedLines += lines
	return nil
}
