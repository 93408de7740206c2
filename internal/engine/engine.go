// Package engine orchestrates a full deduplication run: normalization,
// blocking, candidate pair generation, parallel pair scoring, and clustering.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/devdedup/internal/blocking"
	"github.com/Sumatoshi-tech/devdedup/internal/cluster"
	"github.com/Sumatoshi-tech/devdedup/internal/identity"
	"github.com/Sumatoshi-tech/devdedup/internal/observability"
	"github.com/Sumatoshi-tech/devdedup/internal/pairs"
	"github.com/Sumatoshi-tech/devdedup/internal/scoring"
)

// Stage names used in per-stage duration stats.
const (
	StageNormalize = "normalize"
	StageBlocking  = "blocking"
	StagePairs     = "pairs"
	StageScoring   = "scoring"
	StageCluster   = "cluster"
)

// Config holds the tuning knobs for a deduplication run.
type Config struct {
	// Heuristic selects the pair scorer ("bird" or "improved").
	Heuristic string

	// Weights are the improved-heuristic signal weights.
	Weights scoring.Weights

	// Threshold is the improved-heuristic match cutoff in [0, 1].
	Threshold float64

	// Blocking selects the candidate-bucket strategy.
	Blocking blocking.Strategy

	// MaxPairs caps the number of candidate pairs scored per run.
	MaxPairs int

	// Workers is the number of scoring goroutines. Zero means NumCPU.
	Workers int

	// Logger is the structured logger for run progress.
	// When nil, a discard logger is used.
	Logger *slog.Logger

	// Metrics records run-level OTel metrics. Nil-safe: when nil,
	// no metrics are recorded.
	Metrics *observability.RunMetrics
}

// logger returns the configured logger, or a discard logger if nil.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Stats summarizes a completed run.
type Stats struct {
	RawRecords  int                      `json:"raw_records"  yaml:"raw_records"`
	Identities  int                      `json:"identities"   yaml:"identities"`
	Buckets     int                      `json:"buckets"      yaml:"buckets"`
	PairsScored int                      `json:"pairs_scored" yaml:"pairs_scored"`
	Truncated   bool                     `json:"truncated"    yaml:"truncated"`
	Matches     int                      `json:"matches"      yaml:"matches"`
	Clusters    int                      `json:"clusters"     yaml:"clusters"`
	Durations   map[string]time.Duration `json:"-"            yaml:"-"`
}

// Result is the output of a deduplication run.
type Result struct {
	// Pool holds the distinct normalized identities, indexed as the
	// partition refers to them.
	Pool *identity.Pool

	// Partition groups pool indices into duplicate clusters.
	Partition *cluster.Partition

	// Duplicates are the matched pairs, sorted by (I, J).
	Duplicates []cluster.Duplicate

	// Stats summarizes the run.
	Stats Stats
}

// Engine runs deduplication over raw identities with a fixed configuration.
type Engine struct {
	cfg    Config
	scorer scoring.Scorer
	logger *slog.Logger
}

// New validates the configuration and constructs an Engine.
func New(cfg Config) (*Engine, error) {
	scorer, err := scoring.Select(cfg.Heuristic, cfg.Weights, cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("select heuristic: %w", err)
	}

	_, err = blocking.ParseStrategy(string(cfg.Blocking))
	if err != nil {
		return nil, fmt.Errorf("parse blocking strategy: %w", err)
	}

	if cfg.MaxPairs < 0 {
		return nil, pairs.ErrInvalidMaxPairs
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &Engine{
		cfg:    cfg,
		scorer: scorer,
		logger: cfg.logger(),
	}, nil
}

// Run deduplicates the given raw identities and returns the resulting
// clustering. The same input always yields the same partition regardless
// of worker count or scheduling.
func (e *Engine) Run(ctx context.Context, raws []identity.Raw) (*Result, error) {
	durations := make(map[string]time.Duration, 5)

	start := time.Now()
	pool := identity.BuildPool(raws)
	durations[StageNormalize] = time.Since(start)

	e.logger.InfoContext(ctx, "identities normalized",
		slog.Int("raw_records", len(raws)),
		slog.Int("distinct", pool.Len()),
	)

	start = time.Now()
	index := blocking.Build(pool.AllNormalized(), e.cfg.Blocking)
	durations[StageBlocking] = time.Since(start)

	start = time.Now()

	candidates, err := pairs.Generate(index, e.cfg.MaxPairs)
	if err != nil {
		return nil, fmt.Errorf("generate candidate pairs: %w", err)
	}

	durations[StagePairs] = time.Since(start)

	if candidates.Truncated {
		e.logger.WarnContext(ctx, "candidate pairs truncated",
			slog.Int("max_pairs", e.cfg.MaxPairs),
		)
	}

	start = time.Now()

	duplicates, err := e.scorePairs(ctx, pool, candidates.Pairs)
	if err != nil {
		return nil, err
	}

	durations[StageScoring] = time.Since(start)

	start = time.Now()
	part := cluster.Build(pool.Len(), duplicates)
	durations[StageCluster] = time.Since(start)

	stats := Stats{
		RawRecords:  len(raws),
		Identities:  pool.Len(),
		Buckets:     index.Len(),
		PairsScored: len(candidates.Pairs),
		Truncated:   candidates.Truncated,
		Matches:     len(duplicates),
		Clusters:    part.NumClusters(),
		Durations:   durations,
	}

	e.cfg.Metrics.RecordRun(ctx, observability.RunStats{
		Heuristic:      e.scorer.Name(),
		Identities:     stats.Identities,
		PairsScored:    stats.PairsScored,
		Matches:        stats.Matches,
		StageDurations: durations,
	})

	e.logger.InfoContext(ctx, "deduplication complete",
		slog.String("heuristic", e.scorer.Name()),
		slog.Int("pairs_scored", stats.PairsScored),
		slog.Int("matches", stats.Matches),
		slog.Int("clusters", stats.Clusters),
	)

	return &Result{
		Pool:       pool,
		Partition:  part,
		Duplicates: duplicates,
		Stats:      stats,
	}, nil
}

// scorePairs fans candidate pairs out to a worker pool and collects the
// matched duplicates. The returned slice is sorted by (I, J) so downstream
// output is deterministic regardless of worker scheduling.
func (e *Engine) scorePairs(
	ctx context.Context, pool *identity.Pool, candidates []pairs.Pair,
) ([]cluster.Duplicate, error) {
	numWorkers := min(e.cfg.Workers, max(1, len(candidates)))
	jobs := make(chan pairs.Pair, numWorkers)
	matches := make(chan cluster.Duplicate, numWorkers)

	var wg sync.WaitGroup

	wg.Add(numWorkers)

	for range numWorkers {
		go e.scoreWorker(ctx, &wg, pool, jobs, matches)
	}

	go func() {
		defer close(jobs)

		for _, p := range candidates {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(matches)
	}()

	duplicates := make([]cluster.Duplicate, 0)
	for d := range matches {
		duplicates = append(duplicates, d)
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("score candidate pairs: %w", ctx.Err())
	}

	sort.Slice(duplicates, func(i, j int) bool {
		if duplicates[i].I != duplicates[j].I {
			return duplicates[i].I < duplicates[j].I
		}

		return duplicates[i].J < duplicates[j].J
	})

	return duplicates, nil
}

// scoreWorker is the body of each parallel scoring goroutine.
func (e *Engine) scoreWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	pool *identity.Pool,
	jobs <-chan pairs.Pair,
	matches chan<- cluster.Duplicate,
) {
	defer wg.Done()

	for p := range jobs {
		score, match := e.scorer.Score(pool.Normalized(p.I), pool.Normalized(p.J))
		if !match {
			continue
		}

		select {
		case matches <- cluster.Duplicate{I: p.I, J: p.J, Score: score}:
		case <-ctx.Done():
			return
		}
	}
}
