package mongodb

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/metrics"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

type RepositoryIntegrationTestSuite struct {
	suite.Suite
	container        *tcmongodb.MongoDBContainer
	client           *mongodb.Client
	caseRepo         *CaseRecordRepository
	manifestRepo     *ImportManifestRepository
	jobRepo          *ImportJobRepository
	shipmentRepo     *ShipmentRepository
	productivityRepo *ProductivityRepository
	ctx              context.Context
}

func (s *RepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	// Replica set so the transactional consume path works
	container, err := tcmongodb.RunContainer(s.ctx,
		testcontainers.WithImage("mongo:6"),
		tcmongodb.WithReplicaSet(),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)
	if !strings.Contains(connStr, "?") {
		if !strings.HasSuffix(connStr, "/") {
			connStr += "/"
		}
		connStr += "?directConnection=true"
	}

	client, err := mongodb.NewClient(s.ctx, &mongodb.Config{
		URI:            connStr,
		Database:       "production_test",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    20,
		MinPoolSize:    1,
	})
	s.Require().NoError(err)
	s.client = client

	m := metrics.New(metrics.DefaultConfig("production-service-test"))
	s.caseRepo = NewCaseRecordRepository(client, m)
	s.manifestRepo = NewImportManifestRepository(client, m)
	s.jobRepo = NewImportJobRepository(client, m)
	s.shipmentRepo = NewShipmentRepository(client, m)
	s.productivityRepo = NewProductivityRepository(client, m)
}

func (s *RepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close(s.ctx)
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *RepositoryIntegrationTestSuite) TearDownTest() {
	db := s.client.Database()
	for _, name := range []string{caseCollection, manifestCollection, jobCollection, shipmentCollection, packingLogCollection, productivityCollection} {
		db.Collection(name).Drop(s.ctx)
	}
}

func (s *RepositoryIntegrationTestSuite) newRecord(shipmentID, caseNumber string, totalLines int) *domain.CaseRecord {
	record, err := domain.NewCaseRecord(shipmentID, domain.CaseRow{
		CaseNumber: caseNumber,
		TotalLines: float64(totalLines),
	}, "user-1", time.Now().UTC())
	s.Require().NoError(err)
	return record
}

func (s *RepositoryIntegrationTestSuite) TestUpsertIsIdempotent() {
	record := s.newRecord("SHIP-1", "A1", 10)

	s.Require().NoError(s.caseRepo.Upsert(s.ctx, record))
	s.Require().NoError(s.caseRepo.Upsert(s.ctx, record))

	records, err := s.caseRepo.FindByShipment(s.ctx, "SHIP-1")
	s.Require().NoError(err)
	s.Len(records, 1)
	s.Equal(10, records[0].TotalLines)
}

func (s *RepositoryIntegrationTestSuite) TestBulkUpsertAndSortedList() {
	records := []*domain.CaseRecord{
		s.newRecord("SHIP-1", "B2", 5),
		s.newRecord("SHIP-1", "A1", 10),
		s.newRecord("SHIP-2", "C1", 3),
	}
	s.Require().NoError(s.caseRepo.BulkUpsert(s.ctx, records))

	found, err := s.caseRepo.FindByShipment(s.ctx, "SHIP-1")
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("A1", found[0].CaseNumber.String())
	s.Equal("B2", found[1].CaseNumber.String())
}

func (s *RepositoryIntegrationTestSuite) TestFindByCaseNumberNotFound() {
	_, err := s.caseRepo.FindByCaseNumber(s.ctx, "SHIP-1", "MISSING")
	s.ErrorIs(err, domain.ErrCaseNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestDeleteByCaseNumbers() {
	records := []*domain.CaseRecord{
		s.newRecord("SHIP-1", "A1", 10),
		s.newRecord("SHIP-1", "A2", 10),
		s.newRecord("SHIP-1", "A3", 10),
	}
	s.Require().NoError(s.caseRepo.BulkUpsert(s.ctx, records))

	deleted, err := s.caseRepo.DeleteByCaseNumbers(s.ctx, "SHIP-1", []string{"A1", "A3", "ZZ"})
	s.Require().NoError(err)
	s.Equal(int64(2), deleted)

	remaining, err := s.caseRepo.FindByShipment(s.ctx, "SHIP-1")
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal("A2", remaining[0].CaseNumber.String())
}

func (s *RepositoryIntegrationTestSuite) TestConsumeLines() {
	s.Require().NoError(s.caseRepo.Upsert(s.ctx, s.newRecord("SHIP-1", "A1", 10)))

	updated, err := s.caseRepo.ConsumeLines(s.ctx, "SHIP-1", "A1", 4)
	s.Require().NoError(err)
	s.Equal(4, updated.ConsumedLines)
	s.Equal(6, updated.RemainingLines())

	_, err = s.caseRepo.ConsumeLines(s.ctx, "SHIP-1", "A1", 7)
	s.ErrorIs(err, domain.ErrOverConsumption)

	record, err := s.caseRepo.FindByCaseNumber(s.ctx, "SHIP-1", "A1")
	s.Require().NoError(err)
	s.Equal(4, record.ConsumedLines)
}

func (s *RepositoryIntegrationTestSuite) TestConcurrentConsumeNeverOverdraws() {
	s.Require().NoError(s.caseRepo.Upsert(s.ctx, s.newRecord("SHIP-1", "A1", 10)))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, lines := range []int{7, 6} {
		wg.Add(1)
		go func(idx, lines int) {
			defer wg.Done()
			_, errs[idx] = s.caseRepo.ConsumeLines(s.ctx, "SHIP-1", "A1", lines)
		}(i, lines)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			s.ErrorIs(err, domain.ErrOverConsumption)
			failures++
		}
	}
	s.Equal(1, failures)

	record, err := s.caseRepo.FindByCaseNumber(s.ctx, "SHIP-1", "A1")
	s.Require().NoError(err)
	s.GreaterOrEqual(record.RemainingLines(), 0)
}

func (s *RepositoryIntegrationTestSuite) TestManifestLifecycle() {
	manifest := domain.NewImportManifest("SHIP-1", []string{"A1", "A2"},
		domain.SourceFile{FileName: "cases.xlsx", StoragePath: "uploads/cases.xlsx"},
		"user-1", time.Now().UTC())

	s.Require().NoError(s.manifestRepo.Upsert(s.ctx, manifest))

	found, err := s.manifestRepo.FindByShipment(s.ctx, "SHIP-1")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal([]string{"A1", "A2"}, found.CaseNumbers)
	s.Equal(2, found.Count)

	// Re-import overwrites the prior manifest
	manifest.CaseNumbers = []string{"A1"}
	manifest.Count = 1
	s.Require().NoError(s.manifestRepo.Upsert(s.ctx, manifest))
	found, err = s.manifestRepo.FindByShipment(s.ctx, "SHIP-1")
	s.Require().NoError(err)
	s.Equal(1, found.Count)

	s.Require().NoError(s.manifestRepo.Delete(s.ctx, "SHIP-1"))
	found, err = s.manifestRepo.FindByShipment(s.ctx, "SHIP-1")
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *RepositoryIntegrationTestSuite) TestJobFinishIsOneWay() {
	job := domain.NewImportJob("job-1", "user-1", []string{"SHIP-1"}, 10, time.Now().UTC())
	s.Require().NoError(s.jobRepo.Create(s.ctx, job))

	s.Require().NoError(job.Complete(10, time.Now().UTC()))
	s.Require().NoError(s.jobRepo.Finish(s.ctx, job))

	// A second terminal write loses the race
	err := s.jobRepo.Finish(s.ctx, job)
	s.ErrorIs(err, domain.ErrJobFinished)

	found, err := s.jobRepo.FindByID(s.ctx, "job-1")
	s.Require().NoError(err)
	s.Equal(domain.JobStatusCompleted, found.Status)
	s.Equal(10, found.ProcessedItems)
}

func (s *RepositoryIntegrationTestSuite) TestDailySummaryIncrements() {
	delta := domain.SummaryDelta{SorterLines: 7, SorterCases: 2}
	s.Require().NoError(s.productivityRepo.IncrementDailySummary(s.ctx, "user-1", "2026-08-28", delta))
	s.Require().NoError(s.productivityRepo.IncrementDailySummary(s.ctx, "user-1", "2026-08-28", domain.SummaryDelta{PackerLines: 20, PackerCases: 1}))

	summary, err := s.productivityRepo.FindDailySummary(s.ctx, "user-1", "2026-08-28")
	s.Require().NoError(err)
	s.Require().NotNil(summary)
	s.Equal(7, summary.SorterLines)
	s.Equal(2, summary.SorterCases)
	s.Equal(20, summary.PackerLines)
	s.Equal(1, summary.PackerCases)
}

func (s *RepositoryIntegrationTestSuite) TestMonthlySummariesRange() {
	for _, date := range []string{"2026-08-01", "2026-08-31", "2026-09-01"} {
		s.Require().NoError(s.productivityRepo.IncrementDailySummary(s.ctx, "user-1", date, domain.SummaryDelta{SorterLines: 1, SorterCases: 1}))
	}

	days, err := s.productivityRepo.FindMonthlySummaries(s.ctx, "user-1", "2026-08-01", "2026-08-31")
	s.Require().NoError(err)
	s.Require().Len(days, 2)
	s.Equal("2026-08-01", days[0].Date)
	s.Equal("2026-08-31", days[1].Date)
}

func (s *RepositoryIntegrationTestSuite) TestShipmentLockFlag() {
	s.Require().NoError(s.shipmentRepo.SetProductionUploaded(s.ctx, "SHIP-1", true))
	s.Require().NoError(s.shipmentRepo.SetProductionUploaded(s.ctx, "SHIP-1", false))

	var doc struct {
		ProductionUploaded bool `bson:"productionUploaded"`
	}
	err := s.client.Collection(shipmentCollection).FindOne(s.ctx, bson.M{"shipmentId": "SHIP-1"}).Decode(&doc)
	s.Require().NoError(err)
	assert.False(s.T(), doc.ProductionUploaded)
}

func TestRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}
