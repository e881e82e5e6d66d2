package writer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

const (
	defaultStreamConcurrency = 16
	defaultMaxRetries        = 3
	defaultRetryBackoff      = 200 * time.Millisecond
)

// StreamingCoordinator issues one upsert per record as records arrive, with
// bounded concurrency and retry on throttle errors. Used when the store
// supports sessions, so individual writes are retryable.
type StreamingCoordinator struct {
	repo        domain.CaseRecordRepository
	logger      *slog.Logger
	concurrency chan struct{}
	maxRetries  int
	backoff     time.Duration

	wg      sync.WaitGroup
	written atomic.Int64

	mu   sync.Mutex
	errs []error
}

// NewStreamingCoordinator creates a streaming coordinator with the default
// concurrency and retry settings.
func NewStreamingCoordinator(repo domain.CaseRecordRepository, logger *slog.Logger) *StreamingCoordinator {
	return &StreamingCoordinator{
		repo:        repo,
		logger:      logger,
		concurrency: make(chan struct{}, defaultStreamConcurrency),
		maxRetries:  defaultMaxRetries,
		backoff:     defaultRetryBackoff,
	}
}

// Add dispatches the record on a goroutine. Errors surface at Flush.
func (s *StreamingCoordinator) Add(ctx context.Context, record *domain.CaseRecord) error {
	select {
	case s.concurrency <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.concurrency }()
		s.writeWithRetry(ctx, record)
	}()
	return nil
}

func (s *StreamingCoordinator) writeWithRetry(ctx context.Context, record *domain.CaseRecord) {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				s.recordError(ctx.Err())
				return
			}
		}

		err = s.repo.Upsert(ctx, record)
		if err == nil {
			s.written.Add(1)
			return
		}
		if !mongodb.IsThrottleError(err) {
			break
		}
		s.logger.Warn("throttled upsert, retrying",
			slog.String("case_number", record.CaseNumber.String()),
			slog.Int("attempt", attempt+1))
	}
	s.recordError(err)
}

func (s *StreamingCoordinator) recordError(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Flush waits for every in-flight write and returns the joined errors.
func (s *StreamingCoordinator) Flush(ctx context.Context) error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

// Written reports records durably written so far.
func (s *StreamingCoordinator) Written() int {
	return int(s.written.Load())
}
