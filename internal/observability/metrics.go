package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricIdentitiesTotal = "devdedup.identities.total"
	metricPairsTotal      = "devdedup.pairs.total"
	metricMatchesTotal    = "devdedup.matches.total"
	metricStageDuration   = "devdedup.stage.duration.seconds"

	attrHeuristic = "heuristic"
	attrStage     = "stage"
)

// durationBucketBoundaries covers 10ms to 600s for dedup workloads that range
// from small mailbox samples to full repository histories.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// RunMetrics holds the OTel instruments for deduplication run metrics.
type RunMetrics struct {
	identitiesTotal metric.Int64Counter
	pairsTotal      metric.Int64Counter
	matchesTotal    metric.Int64Counter
	stageDuration   metric.Float64Histogram
}

// RunStats holds the statistics for a single deduplication run,
// decoupled from engine types.
type RunStats struct {
	Heuristic      string
	Identities     int
	PairsScored    int
	Matches        int
	StageDurations map[string]time.Duration
}

// NewRunMetrics creates run metric instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	identities, err := mt.Int64Counter(metricIdentitiesTotal,
		metric.WithDescription("Total distinct identities processed"),
		metric.WithUnit("{identity}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricIdentitiesTotal, err)
	}

	pairs, err := mt.Int64Counter(metricPairsTotal,
		metric.WithDescription("Total candidate pairs scored"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPairsTotal, err)
	}

	matches, err := mt.Int64Counter(metricMatchesTotal,
		metric.WithDescription("Total pairs judged duplicates"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMatchesTotal, err)
	}

	stageDur, err := mt.Float64Histogram(metricStageDuration,
		metric.WithDescription("Per-stage processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageDuration, err)
	}

	return &RunMetrics{
		identitiesTotal: identities,
		pairsTotal:      pairs,
		matchesTotal:    matches,
		stageDuration:   stageDur,
	}, nil
}

// RecordRun records statistics for a completed deduplication run.
// Safe to call on a nil receiver (no-op).
func (rm *RunMetrics) RecordRun(ctx context.Context, stats RunStats) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrHeuristic, stats.Heuristic))

	rm.identitiesTotal.Add(ctx, int64(stats.Identities), attrs)
	rm.pairsTotal.Add(ctx, int64(stats.PairsScored), attrs)
	rm.matchesTotal.Add(ctx, int64(stats.Matches), attrs)

	for stage, d := range stats.StageDurations {
		rm.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
			attribute.String(attrStage, stage),
		))
	}
}
