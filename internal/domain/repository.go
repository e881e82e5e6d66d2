package domain

import "context"

// CaseRecordRepository persists production case records.
type CaseRecordRepository interface {
	// Upsert writes a single record keyed by (shipmentId, caseNumber),
	// replacing any previous import of the same case.
	Upsert(ctx context.Context, record *CaseRecord) error

	// BulkUpsert writes a batch of records in one round trip. The batch is
	// expected to already respect the store's batch ceiling.
	BulkUpsert(ctx context.Context, records []*CaseRecord) error

	// FindByShipment returns every case under a shipment sorted by case number.
	FindByShipment(ctx context.Context, shipmentID string) ([]*CaseRecord, error)

	// FindByCaseNumber returns one case or ErrCaseNotFound.
	FindByCaseNumber(ctx context.Context, shipmentID string, caseNumber CaseNumber) (*CaseRecord, error)

	// DeleteByCaseNumbers removes the named cases under a shipment, chunking
	// internally to stay under the batch ceiling. Returns the deleted count.
	DeleteByCaseNumbers(ctx context.Context, shipmentID string, caseNumbers []string) (int64, error)

	// ConsumeLines atomically checks the remaining balance of a case and
	// increments its consumed counter. Returns the record after the update,
	// ErrCaseNotFound, or ErrOverConsumption.
	ConsumeLines(ctx context.Context, shipmentID string, caseNumber CaseNumber, lines int) (*CaseRecord, error)
}

// ImportManifestRepository persists the per-shipment import manifests.
type ImportManifestRepository interface {
	Upsert(ctx context.Context, manifest *ImportManifest) error
	FindByShipment(ctx context.Context, shipmentID string) (*ImportManifest, error)
	Delete(ctx context.Context, shipmentID string) error
}

// ImportJobRepository persists the import job ledger.
type ImportJobRepository interface {
	Create(ctx context.Context, job *ImportJob) error
	Finish(ctx context.Context, job *ImportJob) error
	FindByID(ctx context.Context, id string) (*ImportJob, error)
}

// ShipmentRepository maintains the per-shipment production flags on the
// shipment documents owned by the wider platform.
type ShipmentRepository interface {
	// SetProductionUploaded flips the production-uploaded lock for a shipment.
	SetProductionUploaded(ctx context.Context, shipmentID string, uploaded bool) error
}

// ProductivityRepository persists productivity reports and daily aggregates.
type ProductivityRepository interface {
	// RecordPacking appends an accepted packing report to the packing log.
	RecordPacking(ctx context.Context, record *PackingRecord) error

	// IncrementDailySummary applies a delta to the (userId, date) aggregate,
	// creating it on first write.
	IncrementDailySummary(ctx context.Context, userID, date string, delta SummaryDelta) error

	// FindDailySummary returns a worker's aggregate for one day, or nil when
	// the worker has no activity that day.
	FindDailySummary(ctx context.Context, userID, date string) (*DailyProductivitySummary, error)

	// FindMonthlySummaries returns a worker's aggregates for the whole month
	// containing date, ordered by date ascending.
	FindMonthlySummaries(ctx context.Context, userID, fromDate, toDate string) ([]*DailyProductivitySummary, error)
}
