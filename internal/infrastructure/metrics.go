package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// BatchMetrics counts the work of the assessment engine.
type BatchMetrics struct {
	Combinations  metric.Int64Counter
	Degraded      metric.Int64Counter
	CacheHits     metric.Int64Counter
	CacheComputes metric.Int64Counter
	BatchDuration metric.Float64Histogram
}

// NewBatchMetrics creates the assessment instruments on the meter.
// Pass a nil meter to get no-op instruments (CLI runs without the
// metrics endpoint).
func NewBatchMetrics(meter metric.Meter) (*BatchMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	combinations, err := meter.Int64Counter(
		"assessment_combinations_total",
		metric.WithDescription("Total number of assessed combinations"),
	)
	if err != nil {
		return nil, err
	}
	degraded, err := meter.Int64Counter(
		"assessment_degraded_total",
		metric.WithDescription("Combinations that degraded to zero-valued results"),
	)
	if err != nil {
		return nil, err
	}
	cacheHits, err := meter.Int64Counter(
		"assessment_hhi_cache_hits_total",
		metric.WithDescription("HHI cache lookups served without recomputation"),
	)
	if err != nil {
		return nil, err
	}
	cacheComputes, err := meter.Int64Counter(
		"assessment_hhi_cache_computations_total",
		metric.WithDescription("HHI computations performed by the cache"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"assessment_batch_duration_seconds",
		metric.WithDescription("Batch run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BatchMetrics{
		Combinations:  combinations,
		Degraded:      degraded,
		CacheHits:     cacheHits,
		CacheComputes: cacheComputes,
		BatchDuration: duration,
	}, nil
}

// RecordBatch records one finished batch run.
func (m *BatchMetrics) RecordBatch(ctx context.Context, runID string, start time.Time, combinations, degraded int64) {
	attrs := metric.WithAttributes(attribute.String("run_id", runID))
	m.Combinations.Add(ctx, combinations, attrs)
	m.Degraded.Add(ctx, degraded, attrs)
	m.BatchDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}
