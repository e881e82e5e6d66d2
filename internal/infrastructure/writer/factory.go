package writer

import (
	"context"
	"log/slog"

	"github.com/wms-platform/production-service/internal/domain"
	"github.com/wms-platform/production-service/pkg/metrics"
)

// Factory builds a write coordinator per shipment, choosing the strategy by
// probing the store once at construction time. The probe result is cached;
// the deployment topology does not change mid-process.
type Factory struct {
	repo      domain.CaseRecordRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
	streaming bool
}

// NewFactory probes the store and returns a factory bound to the chosen
// strategy.
func NewFactory(ctx context.Context, repo domain.CaseRecordRepository, prober Prober, m *metrics.Metrics, logger *slog.Logger) *Factory {
	streaming := prober.SupportsSessions(ctx)

	strategy := StrategyChunkedBatch
	if streaming {
		strategy = StrategyStreaming
	}
	logger.Info("write strategy selected", slog.String("strategy", strategy))

	return &Factory{
		repo:      repo,
		metrics:   m,
		logger:    logger,
		streaming: streaming,
	}
}

// Strategy returns the name of the strategy this factory produces.
func (f *Factory) Strategy() string {
	if f.streaming {
		return StrategyStreaming
	}
	return StrategyChunkedBatch
}

// New returns a fresh coordinator for one shipment's records.
func (f *Factory) New() Coordinator {
	f.metrics.RecordWriteStrategy(f.Strategy())
	if f.streaming {
		return NewStreamingCoordinator(f.repo, f.logger)
	}
	return NewChunkedBatchCoordinator(f.repo, f.logger)
}
