package domain

import (
	"fmt"
	"time"
)

// EntryType distinguishes the two kinds of productivity entries.
type EntryType string

const (
	EntryTypeSorting EntryType = "sorting"
	EntryTypePacking EntryType = "packing"
)

// SortingEntry reports lines sorted out of a specific case. It consumes the
// case's remaining balance and is subject to over-consumption rejection.
type SortingEntry struct {
	ShipmentID      string `json:"shipmentId"`
	CaseNumber      string `json:"caseNumber"`
	LinesRequested  int    `json:"linesRequested"`
	DomesticPortion int    `json:"domesticPortion"`
	BulkPortion     int    `json:"bulkPortion"`
}

// Validate checks the entry before it reaches the transactional path.
func (e SortingEntry) Validate() error {
	if e.ShipmentID == "" {
		return fmt.Errorf("shipment id is required: %w", ErrInvalidQuantity)
	}
	if _, err := ParseCaseNumber(e.CaseNumber); err != nil {
		return err
	}
	if e.LinesRequested <= 0 {
		return fmt.Errorf("linesRequested must be positive: %w", ErrInvalidQuantity)
	}
	if e.DomesticPortion < 0 || e.BulkPortion < 0 {
		return fmt.Errorf("portions must be non-negative: %w", ErrInvalidQuantity)
	}
	return nil
}

// PackingEntry reports a newly packed case. Packing operates on cases created
// during packing, not the original import, so it never draws on any balance.
type PackingEntry struct {
	LocationNo  string `json:"locationNo"`
	NewCaseNo   string `json:"newCaseNo"`
	LinesPacked int    `json:"linesPacked"`
}

// Validate checks the entry before it is logged.
func (e PackingEntry) Validate() error {
	if _, err := ParseCaseNumber(e.NewCaseNo); err != nil {
		return err
	}
	if e.LinesPacked <= 0 {
		return fmt.Errorf("linesPacked must be positive: %w", ErrInvalidQuantity)
	}
	return nil
}

// PackingRecord is the persisted log entry for an accepted packing report.
type PackingRecord struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	Date        string    `bson:"date" json:"date"`
	LocationNo  string    `bson:"locationNo,omitempty" json:"locationNo,omitempty"`
	NewCaseNo   string    `bson:"newCaseNo" json:"newCaseNo"`
	LinesPacked int       `bson:"linesPacked" json:"linesPacked"`
	RecordedAt  time.Time `bson:"recordedAt" json:"recordedAt"`
}

// SummaryDelta is the increment applied to a worker's daily aggregate for a
// batch of accepted entries. All fields add via the store's atomic increment,
// so concurrent reports for the same worker and day never lose updates.
type SummaryDelta struct {
	SorterLines int
	SorterCases int
	PackerLines int
	PackerCases int
}

// Empty reports whether the delta would be a no-op write.
func (d SummaryDelta) Empty() bool {
	return d.SorterLines == 0 && d.SorterCases == 0 && d.PackerLines == 0 && d.PackerCases == 0
}

// AddSorting folds an accepted sorting entry into the delta.
func (d *SummaryDelta) AddSorting(lines int) {
	d.SorterLines += lines
	d.SorterCases++
}

// AddPacking folds an accepted packing entry into the delta.
func (d *SummaryDelta) AddPacking(lines int) {
	d.PackerLines += lines
	d.PackerCases++
}

// DailyProductivitySummary is a worker's aggregate for one calendar day,
// keyed by (userId, date) with date in YYYY-MM-DD.
type DailyProductivitySummary struct {
	UserID      string    `bson:"userId" json:"userId"`
	Date        string    `bson:"date" json:"date"`
	SorterLines int       `bson:"sorterLines" json:"sorterLines"`
	SorterCases int       `bson:"sorterCases" json:"sorterCases"`
	PackerLines int       `bson:"packerLines" json:"packerLines"`
	PackerCases int       `bson:"packerCases" json:"packerCases"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

const dateLayout = "2006-01-02"

// ParseWorkDate validates a YYYY-MM-DD work date and returns it normalized.
func ParseWorkDate(raw string) (string, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid work date %q: %w", raw, ErrInvalidQuantity)
	}
	return t.Format(dateLayout), nil
}

// MonthRange returns the inclusive first and last day of the month containing
// date, both in YYYY-MM-DD. Used by the monthly productivity view.
func MonthRange(date string) (string, string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", "", fmt.Errorf("invalid work date %q: %w", date, ErrInvalidQuantity)
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout), nil
}
