package application

import "github.com/wms-platform/production-service/internal/domain"

// ShipmentRows is one shipment's slice of raw case rows within an import
// request. Shipments are processed in slice order.
type ShipmentRows struct {
	ShipmentID string
	Rows       []domain.CaseRow
}

// ImportCommand carries one bulk import request.
type ImportCommand struct {
	UserID    string
	Shipments []ShipmentRows
	Source    domain.SourceFile
}

// TotalRows counts every raw row across the command's shipments.
func (c ImportCommand) TotalRows() int {
	total := 0
	for _, shipment := range c.Shipments {
		total += len(shipment.Rows)
	}
	return total
}

// ShipmentIDs returns the target shipment ids in processing order.
func (c ImportCommand) ShipmentIDs() []string {
	ids := make([]string, 0, len(c.Shipments))
	for _, shipment := range c.Shipments {
		ids = append(ids, shipment.ShipmentID)
	}
	return ids
}

// ShipmentDeletion is one shipment's deletion target within a delete request.
// A single "*" entry selects every case from the shipment's last import.
type ShipmentDeletion struct {
	ShipmentID  string
	CaseNumbers []string
}

// Wildcard reports whether the deletion targets the whole last import.
func (d ShipmentDeletion) Wildcard() bool {
	return len(d.CaseNumbers) == 1 && d.CaseNumbers[0] == "*"
}

// DeleteCommand carries one bulk deletion request.
type DeleteCommand struct {
	UserID    string
	Shipments []ShipmentDeletion
}

// RecordProductivityCommand carries one productivity submission.
type RecordProductivityCommand struct {
	UserID         string
	Date           string
	SortingEntries []domain.SortingEntry
	PackingEntries []domain.PackingEntry
}
