package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/production-service/internal/domain"
	apperrors "github.com/wms-platform/production-service/pkg/errors"
)

type deletionFixture struct {
	service   *DeletionService
	caseRepo  *fakeCaseRepo
	manifests *fakeManifestRepo
	shipments *fakeShipmentRepo
	blobs     *fakeBlobStore
	auth      *fakeAuthorizer
	publisher *fakePublisher
}

func newDeletionFixture() *deletionFixture {
	f := &deletionFixture{
		caseRepo:  newFakeCaseRepo(),
		manifests: newFakeManifestRepo(),
		shipments: newFakeShipmentRepo(),
		blobs:     &fakeBlobStore{},
		auth:      &fakeAuthorizer{allowed: true},
		publisher: &fakePublisher{},
	}
	f.service = NewDeletionService(
		f.caseRepo, f.manifests, f.shipments, f.blobs,
		f.auth, f.publisher, testMetrics(), testLogger(),
	)
	return f
}

func (f *deletionFixture) seedShipment(t *testing.T, shipmentID string, storagePath string, caseNumbers ...string) {
	t.Helper()
	now := time.Now().UTC()
	for _, cn := range caseNumbers {
		record, err := domain.NewCaseRecord(shipmentID, domain.CaseRow{CaseNumber: cn, TotalLines: 10}, "user-1", now)
		require.NoError(t, err)
		require.NoError(t, f.caseRepo.Upsert(context.Background(), record))
	}
	f.manifests.manifests[shipmentID] = domain.NewImportManifest(
		shipmentID, caseNumbers,
		domain.SourceFile{StoragePath: storagePath},
		"user-1", now,
	)
	f.shipments.flags[shipmentID] = true
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("wildcard removes the whole last import", func(t *testing.T) {
		f := newDeletionFixture()
		f.seedShipment(t, "SHIP-1", "uploads/s1.xlsx", "A1", "A2", "A3")

		result, err := f.service.Delete(ctx, DeleteCommand{
			UserID:    "user-1",
			Shipments: []ShipmentDeletion{{ShipmentID: "SHIP-1", CaseNumbers: []string{"*"}}},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(3), result.TotalDeletes)
		assert.Equal(t, "ok", result.Status)
		assert.Zero(t, f.caseRepo.count())
		assert.Nil(t, f.manifests.manifests["SHIP-1"])
		assert.False(t, f.shipments.flags["SHIP-1"])
		assert.Equal(t, []string{"uploads/s1.xlsx"}, f.blobs.deleted)
	})

	t.Run("explicit list deletes only named cases and skips blob", func(t *testing.T) {
		f := newDeletionFixture()
		f.seedShipment(t, "SHIP-1", "uploads/s1.xlsx", "A1", "A2", "A3")

		result, err := f.service.Delete(ctx, DeleteCommand{
			UserID:    "user-1",
			Shipments: []ShipmentDeletion{{ShipmentID: "SHIP-1", CaseNumbers: []string{"A1", " A2 ", "###"}}},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(2), result.TotalDeletes)
		assert.Equal(t, 1, f.caseRepo.count())
		assert.Empty(t, f.blobs.deleted)
		// Manifest and lock still cleared unconditionally.
		assert.Nil(t, f.manifests.manifests["SHIP-1"])
		assert.False(t, f.shipments.flags["SHIP-1"])
	})

	t.Run("wildcard with no manifest is a no-op", func(t *testing.T) {
		f := newDeletionFixture()

		result, err := f.service.Delete(ctx, DeleteCommand{
			UserID:    "user-1",
			Shipments: []ShipmentDeletion{{ShipmentID: "SHIP-9", CaseNumbers: []string{"*"}}},
		})
		require.NoError(t, err)
		assert.Zero(t, result.TotalDeletes)
		assert.Empty(t, f.blobs.deleted)
		assert.False(t, f.shipments.flags["SHIP-9"])
	})

	t.Run("blob failure is non-fatal", func(t *testing.T) {
		f := newDeletionFixture()
		f.seedShipment(t, "SHIP-1", "uploads/s1.xlsx", "A1")
		f.blobs.err = errors.New("gateway unavailable")

		result, err := f.service.Delete(ctx, DeleteCommand{
			UserID:    "user-1",
			Shipments: []ShipmentDeletion{{ShipmentID: "SHIP-1", CaseNumbers: []string{"*"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.TotalDeletes)
		assert.Nil(t, f.manifests.manifests["SHIP-1"])
	})

	t.Run("multiple shipments accumulate the total", func(t *testing.T) {
		f := newDeletionFixture()
		f.seedShipment(t, "SHIP-1", "", "A1", "A2")
		f.seedShipment(t, "SHIP-2", "", "B1")

		result, err := f.service.Delete(ctx, DeleteCommand{
			UserID: "user-1",
			Shipments: []ShipmentDeletion{
				{ShipmentID: "SHIP-1", CaseNumbers: []string{"*"}},
				{ShipmentID: "SHIP-2", CaseNumbers: []string{"*"}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.TotalDeletes)
		assert.Len(t, f.publisher.deletions, 2)
	})

	t.Run("forbidden without permission", func(t *testing.T) {
		f := newDeletionFixture()
		f.seedShipment(t, "SHIP-1", "", "A1")
		f.auth.allowed = false

		_, err := f.service.Delete(ctx, DeleteCommand{
			UserID:    "user-1",
			Shipments: []ShipmentDeletion{{ShipmentID: "SHIP-1", CaseNumbers: []string{"*"}}},
		})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
		assert.Equal(t, 1, f.caseRepo.count())
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		f := newDeletionFixture()
		_, err := f.service.Delete(ctx, DeleteCommand{UserID: "user-1"})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidPayload, appErr.Code)
	})
}
