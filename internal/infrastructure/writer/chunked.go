package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wms-platform/production-service/internal/domain"
)

const (
	// batchCeiling is the hard upper bound the store accepts per bulk
	// request on the constrained tier.
	batchCeiling = 500

	// chunkHeadroom keeps chunks comfortably under the ceiling so retried
	// or split requests never trip it.
	chunkHeadroom = 20

	// DefaultChunkSize is the number of records committed per bulk write.
	DefaultChunkSize = batchCeiling - chunkHeadroom
)

// ChunkedBatchCoordinator buffers records and commits them in fixed-size bulk
// writes. Used when the store does not support sessions and single writes are
// neither retryable nor cheap. A failed chunk never stops the chunks behind
// it; all chunk errors are joined and surfaced at Flush.
type ChunkedBatchCoordinator struct {
	repo      domain.CaseRecordRepository
	logger    *slog.Logger
	chunkSize int

	pending []*domain.CaseRecord
	written int
	errs    []error
}

// NewChunkedBatchCoordinator creates a batch coordinator with the default
// chunk size.
func NewChunkedBatchCoordinator(repo domain.CaseRecordRepository, logger *slog.Logger) *ChunkedBatchCoordinator {
	return &ChunkedBatchCoordinator{
		repo:      repo,
		logger:    logger,
		chunkSize: DefaultChunkSize,
	}
}

// Add buffers the record. A full chunk is committed eagerly so memory stays
// bounded on large shipments; commit failures are held until Flush so the
// remaining chunks still get their attempt.
func (c *ChunkedBatchCoordinator) Add(ctx context.Context, record *domain.CaseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.pending = append(c.pending, record)
	if len(c.pending) >= c.chunkSize {
		c.commit(ctx)
	}
	return nil
}

func (c *ChunkedBatchCoordinator) commit(ctx context.Context) {
	chunk := c.pending
	c.pending = nil

	if err := c.repo.BulkUpsert(ctx, chunk); err != nil {
		c.errs = append(c.errs, fmt.Errorf("bulk upsert of %d records: %w", len(chunk), err))
		c.logger.Error("chunk commit failed", slog.Int("size", len(chunk)), slog.String("error", err.Error()))
		return
	}
	c.written += len(chunk)
	c.logger.Debug("committed chunk", slog.Int("size", len(chunk)), slog.Int("written", c.written))
}

// Flush commits the remaining buffered records and returns the joined chunk
// errors accumulated over the coordinator's lifetime.
func (c *ChunkedBatchCoordinator) Flush(ctx context.Context) error {
	if len(c.pending) > 0 {
		c.commit(ctx)
	}
	return errors.Join(c.errs...)
}

// Written reports records durably written so far.
func (c *ChunkedBatchCoordinator) Written() int {
	return c.written
}
