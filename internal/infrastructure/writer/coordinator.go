package writer

import (
	"context"

	"github.com/wms-platform/production-service/internal/domain"
)

// Strategy names, reported in logs and metrics.
const (
	StrategyStreaming    = "streaming"
	StrategyChunkedBatch = "chunked-batch"
)

// Coordinator absorbs case records during an import and guarantees they are
// durable once Flush returns. One coordinator is created per shipment; it is
// not safe for concurrent use by multiple producers.
type Coordinator interface {
	// Add hands a record to the coordinator. Streaming implementations may
	// write it immediately; batch implementations buffer until Flush.
	Add(ctx context.Context, record *domain.CaseRecord) error

	// Flush blocks until every added record is durable and returns the
	// accumulated write errors, if any.
	Flush(ctx context.Context) error

	// Written reports how many records have been durably written so far.
	Written() int
}

// Prober answers whether the backing store supports retryable writes, which
// decides the strategy. Mongo replica sets do; bare standalone nodes and the
// throttled serverless tier we deploy on in some regions do not.
type Prober interface {
	SupportsSessions(ctx context.Context) bool
}
