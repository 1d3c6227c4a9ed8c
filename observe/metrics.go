package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricOpTotal     = "agentguard.op.total"
	MetricOpFailures  = "agentguard.op.failures"
	MetricOpDuration  = "agentguard.op.duration_ms"
	MetricCacheHits   = "agentguard.cache.hits"
	MetricCacheMisses = "agentguard.cache.misses"
)

// Metrics records operation and cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one operation. outcome is "ok" on success or a
	// short failure reason otherwise.
	RecordOperation(ctx context.Context, op Op, duration time.Duration, outcome string)

	// RecordCacheLookup records a decode cache hit or miss.
	RecordCacheLookup(ctx context.Context, hit bool)
}

// OutcomeOK is the outcome label for successful operations.
const OutcomeOK = "ok"

type metricsImpl struct {
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// NewMetrics creates Metrics instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricOpTotal,
		metric.WithDescription("Total number of validation operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		MetricOpFailures,
		metric.WithDescription("Validation operations that did not succeed"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricOpDuration,
		metric.WithDescription("Validation operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		MetricCacheHits,
		metric.WithDescription("Decode cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		MetricCacheMisses,
		metric.WithDescription("Decode cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		failureCount: failureCount,
		durationHist: durationHist,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
	}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, op Op, duration time.Duration, outcome string) {
	attrs := append(op.attributes(), attribute.String("op.outcome", outcome))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if outcome != OutcomeOK {
		m.failureCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), metric.WithAttributes(op.attributes()...))
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(context.Context, Op, time.Duration, string) {}
func (noopMetrics) RecordCacheLookup(context.Context, bool)                    {}
