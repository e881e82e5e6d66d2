package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/internal/infrastructure/writer"
	"github.com/wms-platform/production-service/pkg/logging"
	"github.com/wms-platform/production-service/pkg/metrics"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "production-service-test",
		Output:      io.Discard,
	})
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("production-service-test"))
}

type fakeCaseRepo struct {
	mu      sync.Mutex
	records map[string]*domain.CaseRecord

	upsertErr  error
	bulkErr    error
	consumeErr error
	deleteErr  error
	findErr    error
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{records: make(map[string]*domain.CaseRecord)}
}

func caseKey(shipmentID string, caseNumber domain.CaseNumber) string {
	return shipmentID + "/" + caseNumber.String()
}

func (f *fakeCaseRepo) Upsert(ctx context.Context, record *domain.CaseRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[caseKey(record.ShipmentID, record.CaseNumber)] = record
	return nil
}

func (f *fakeCaseRepo) BulkUpsert(ctx context.Context, records []*domain.CaseRecord) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range records {
		f.records[caseKey(record.ShipmentID, record.CaseNumber)] = record
	}
	return nil
}

func (f *fakeCaseRepo) FindByShipment(ctx context.Context, shipmentID string) ([]*domain.CaseRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*domain.CaseRecord
	for _, record := range f.records {
		if record.ShipmentID == shipmentID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *fakeCaseRepo) FindByCaseNumber(ctx context.Context, shipmentID string, caseNumber domain.CaseNumber) (*domain.CaseRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[caseKey(shipmentID, caseNumber)]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeCaseRepo) DeleteByCaseNumbers(ctx context.Context, shipmentID string, caseNumbers []string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, cn := range caseNumbers {
		key := caseKey(shipmentID, domain.CaseNumber(cn))
		if _, ok := f.records[key]; ok {
			delete(f.records, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeCaseRepo) ConsumeLines(ctx context.Context, shipmentID string, caseNumber domain.CaseNumber, lines int) (*domain.CaseRecord, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[caseKey(shipmentID, caseNumber)]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	if err := record.Consume(lines); err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (f *fakeCaseRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeManifestRepo struct {
	mu        sync.Mutex
	manifests map[string]*domain.ImportManifest
	upsertErr error
	findErr   error
	deleteErr error
	deletes   []string
}

func newFakeManifestRepo() *fakeManifestRepo {
	return &fakeManifestRepo{manifests: make(map[string]*domain.ImportManifest)}
}

func (f *fakeManifestRepo) Upsert(ctx context.Context, manifest *domain.ImportManifest) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manifests[manifest.ShipmentID] = manifest
	return nil
}

func (f *fakeManifestRepo) FindByShipment(ctx context.Context, shipmentID string) (*domain.ImportManifest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manifests[shipmentID], nil
}

func (f *fakeManifestRepo) Delete(ctx context.Context, shipmentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.manifests, shipmentID)
	f.deletes = append(f.deletes, shipmentID)
	return nil
}

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]*domain.ImportJob
	createErr error
	finishErr error
	finished  []*domain.ImportJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*domain.ImportJob)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *domain.ImportJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) Finish(ctx context.Context, job *domain.ImportJob) error {
	if f.finishErr != nil {
		return f.finishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	f.finished = append(f.finished, job)
	return nil
}

func (f *fakeJobRepo) FindByID(ctx context.Context, id string) (*domain.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id], nil
}

type fakeShipmentRepo struct {
	mu    sync.Mutex
	flags map[string]bool
	err   error
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{flags: make(map[string]bool)}
}

func (f *fakeShipmentRepo) SetProductionUploaded(ctx context.Context, shipmentID string, uploaded bool) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[shipmentID] = uploaded
	return nil
}

type fakeProductivityRepo struct {
	mu         sync.Mutex
	packing    []*domain.PackingRecord
	summaries  map[string]*domain.DailyProductivitySummary
	packingErr error
	incErr     error
	findErr    error
}

func newFakeProductivityRepo() *fakeProductivityRepo {
	return &fakeProductivityRepo{summaries: make(map[string]*domain.DailyProductivitySummary)}
}

func summaryKey(userID, date string) string { return userID + "/" + date }

func (f *fakeProductivityRepo) RecordPacking(ctx context.Context, record *domain.PackingRecord) error {
	if f.packingErr != nil {
		return f.packingErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.packing = append(f.packing, record)
	return nil
}

func (f *fakeProductivityRepo) IncrementDailySummary(ctx context.Context, userID, date string, delta domain.SummaryDelta) error {
	if f.incErr != nil {
		return f.incErr
	}
	if delta.Empty() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := summaryKey(userID, date)
	summary, ok := f.summaries[key]
	if !ok {
		summary = &domain.DailyProductivitySummary{UserID: userID, Date: date}
		f.summaries[key] = summary
	}
	summary.SorterLines += delta.SorterLines
	summary.SorterCases += delta.SorterCases
	summary.PackerLines += delta.PackerLines
	summary.PackerCases += delta.PackerCases
	return nil
}

func (f *fakeProductivityRepo) FindDailySummary(ctx context.Context, userID, date string) (*domain.DailyProductivitySummary, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries[summaryKey(userID, date)], nil
}

func (f *fakeProductivityRepo) FindMonthlySummaries(ctx context.Context, userID, fromDate, toDate string) ([]*domain.DailyProductivitySummary, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var days []*domain.DailyProductivitySummary
	for _, summary := range f.summaries {
		if summary.UserID == userID && summary.Date >= fromDate && summary.Date <= toDate {
			days = append(days, summary)
		}
	}
	return days, nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeBlobStore) DeleteObject(ctx context.Context, path string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeAuthorizer struct {
	mu      sync.Mutex
	allowed bool
	err     error
	calls   []string
}

func (f *fakeAuthorizer) IsAuthorized(ctx context.Context, userID, resource, action string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%s:%s", resource, action, userID))
	return f.allowed, f.err
}

type fakePublisher struct {
	mu           sync.Mutex
	importedJobs []*domain.ImportJob
	deletions    []string
	recorded     []string
}

func (f *fakePublisher) CasesImported(ctx context.Context, job *domain.ImportJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.importedJobs = append(f.importedJobs, job)
}

func (f *fakePublisher) CasesDeleted(ctx context.Context, shipmentID string, deletedCount int64, wildcard bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletions = append(f.deletions, fmt.Sprintf("%s:%d:%t", shipmentID, deletedCount, wildcard))
}

func (f *fakePublisher) ProductivityRecorded(ctx context.Context, userID, date string, accepted, rejected int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, fmt.Sprintf("%s:%s:%d:%d", userID, date, accepted, rejected))
}

// fakeFactory hands out real chunked coordinators backed by the fake repo.
type fakeFactory struct {
	repo *fakeCaseRepo
}

func (f *fakeFactory) New() writer.Coordinator {
	return writer.NewChunkedBatchCoordinator(f.repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (f *fakeFactory) Strategy() string { return writer.StrategyChunkedBatch }
