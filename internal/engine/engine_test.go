package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdedup/internal/blocking"
	"github.com/Sumatoshi-tech/devdedup/internal/engine"
	"github.com/Sumatoshi-tech/devdedup/internal/identity"
	"github.com/Sumatoshi-tech/devdedup/internal/pairs"
	"github.com/Sumatoshi-tech/devdedup/internal/scoring"
)

func newEngine(t *testing.T, cfg engine.Config) *engine.Engine {
	t.Helper()

	if cfg.Blocking == "" {
		cfg.Blocking = blocking.StrategyBoth
	}

	if cfg.MaxPairs == 0 {
		cfg.MaxPairs = 1000
	}

	eng, err := engine.New(cfg)
	require.NoError(t, err)

	return eng
}

func improvedConfig() engine.Config {
	return engine.Config{
		Heuristic: scoring.HeuristicImproved,
		Weights:   scoring.DefaultWeights(),
		Threshold: 0.85,
	}
}

func birdConfig() engine.Config {
	return engine.Config{Heuristic: scoring.HeuristicBird}
}

func sameCluster(t *testing.T, res *engine.Result, a, b identity.Raw) bool {
	t.Helper()

	ai, ok := res.Pool.Index(a)
	require.True(t, ok)
	bi, ok := res.Pool.Index(b)
	require.True(t, ok)

	return res.Partition.SameCluster(ai, bi)
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := engine.New(engine.Config{Heuristic: "fuzzy", Blocking: blocking.StrategyBoth})
	assert.ErrorIs(t, err, scoring.ErrUnknownHeuristic)

	_, err = engine.New(engine.Config{Heuristic: scoring.HeuristicBird, Blocking: "soundex"})
	assert.ErrorIs(t, err, blocking.ErrUnknownStrategy)

	_, err = engine.New(engine.Config{
		Heuristic: scoring.HeuristicBird,
		Blocking:  blocking.StrategyBoth,
		MaxPairs:  -1,
	})
	assert.ErrorIs(t, err, pairs.ErrInvalidMaxPairs)
}

func TestRunAbbreviatedNameSameEmail(t *testing.T) {
	t.Parallel()

	jane := identity.Raw{Name: "Jane Doe", Email: "jane.doe@co.com"}
	abbr := identity.Raw{Name: "J. Doe", Email: "jane.doe@co.com"}
	raws := []identity.Raw{jane, abbr}

	// Both heuristics agree here: the Bird baseline matches on the shared
	// email, the improved scorer on the combined signals.
	for name, cfg := range map[string]engine.Config{
		"bird":     birdConfig(),
		"improved": improvedConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := newEngine(t, cfg).Run(context.Background(), raws)
			require.NoError(t, err)

			assert.True(t, sameCluster(t, res, jane, abbr))
			assert.Equal(t, 1, res.Stats.Clusters)
			assert.Equal(t, 1, res.Stats.Matches)
		})
	}
}

func TestRunSameNameDifferentEmails(t *testing.T) {
	t.Parallel()

	home := identity.Raw{Name: "Bob Smith", Email: "bob@home.com"}
	work := identity.Raw{Name: "Bob Smith", Email: "bsmith@work.com"}
	raws := []identity.Raw{home, work}

	for name, cfg := range map[string]engine.Config{
		"bird":     birdConfig(),
		"improved": improvedConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := newEngine(t, cfg).Run(context.Background(), raws)
			require.NoError(t, err)

			// Disagreeing emails are counter-evidence under both heuristics.
			assert.False(t, sameCluster(t, res, home, work))
			assert.Equal(t, 2, res.Stats.Clusters)
		})
	}
}

func TestRunTransitiveClosure(t *testing.T) {
	t.Parallel()

	// a-b match on the shared email and a-c on the equal name; b and c never
	// match each other directly, yet the closure puts all three in one cluster.
	a := identity.Raw{Name: "Jane Doe", Email: "jane@corp.com"}
	b := identity.Raw{Name: "J. Doe", Email: "jane@corp.com"}
	c := identity.Raw{Name: "Jane Doe"}

	res, err := newEngine(t, birdConfig()).Run(context.Background(), []identity.Raw{a, b, c})
	require.NoError(t, err)

	assert.True(t, sameCluster(t, res, a, b))
	assert.True(t, sameCluster(t, res, a, c))
	assert.True(t, sameCluster(t, res, b, c))
	assert.Equal(t, 2, res.Stats.Matches)
	assert.Equal(t, 1, res.Stats.Clusters)
}

func TestRunZeroPairBudget(t *testing.T) {
	t.Parallel()

	cfg := improvedConfig()
	cfg.Blocking = blocking.StrategyBoth

	eng, err := engine.New(cfg)
	require.NoError(t, err)

	raws := []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "J. Doe", Email: "jane@corp.com"},
	}

	res, err := eng.Run(context.Background(), raws)
	require.NoError(t, err)

	assert.Zero(t, res.Stats.PairsScored)
	assert.True(t, res.Stats.Truncated)
	assert.Empty(t, res.Duplicates)
	assert.Equal(t, 2, res.Stats.Clusters)
	assert.Equal(t, 2, res.Partition.Singletons())
}

func TestRunDeduplicatesRawRecords(t *testing.T) {
	t.Parallel()

	raws := []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "Jane Doe", Email: "jane@corp.com"},
	}

	res, err := newEngine(t, birdConfig()).Run(context.Background(), raws)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.RawRecords)
	assert.Equal(t, 1, res.Stats.Identities)
	assert.Zero(t, res.Stats.PairsScored)
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	raws := []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "J. Doe", Email: "jane@corp.com"},
		{Name: "Bob Smith", Email: "bob@corp.com"},
		{Name: "Robert Smith", Email: "bob@corp.com"},
		{Name: "Carol King", Email: "carol@other.org"},
		{Name: "C. King", Email: "carol@other.org"},
		{Name: "Dave Jones", Email: "dave@other.org"},
	}

	cfg := improvedConfig()
	cfg.Workers = 1

	baseline, err := newEngine(t, cfg).Run(context.Background(), raws)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		cfg := improvedConfig()
		cfg.Workers = workers

		res, err := newEngine(t, cfg).Run(context.Background(), raws)
		require.NoError(t, err)

		require.Equal(t, baseline.Duplicates, res.Duplicates)
		require.Equal(t, baseline.Partition.Groups(), res.Partition.Groups())
	}
}

func TestRunInputOrderIndependent(t *testing.T) {
	t.Parallel()

	raws := []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "J. Doe", Email: "jane@corp.com"},
		{Name: "Bob Smith", Email: "bob@corp.com"},
	}
	reversed := []identity.Raw{raws[2], raws[1], raws[0]}

	first, err := newEngine(t, improvedConfig()).Run(context.Background(), raws)
	require.NoError(t, err)

	second, err := newEngine(t, improvedConfig()).Run(context.Background(), reversed)
	require.NoError(t, err)

	assert.Equal(t, first.Duplicates, second.Duplicates)
	assert.Equal(t, first.Partition.Groups(), second.Partition.Groups())
}

func TestRunThresholdMonotonicity(t *testing.T) {
	t.Parallel()

	raws := []identity.Raw{
		{Name: "Jane Doe", Email: "jane.doe@co.com"},
		{Name: "J. Doe", Email: "jane.doe@co.com"},
		{Name: "Bob Smith", Email: "bob@home.com"},
		{Name: "Bob Smith", Email: "bsmith@home.com"},
		{Name: "Robert Smith", Email: "bsmith@home.com"},
		{Name: "Carol King", Email: "carol@other.org"},
	}

	prevClusters := 0

	// Raising the threshold only removes matches, so the partition gets
	// finer: cluster counts are non-decreasing along the sweep.
	for _, threshold := range []float64{0.3, 0.6, 0.85, 0.95, 1.0} {
		cfg := improvedConfig()
		cfg.Threshold = threshold

		res, err := newEngine(t, cfg).Run(context.Background(), raws)
		require.NoError(t, err)

		require.GreaterOrEqual(t, res.Stats.Clusters, prevClusters,
			"threshold %v", threshold)
		prevClusters = res.Stats.Clusters
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raws := []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "J. Doe", Email: "jane@corp.com"},
	}

	_, err := newEngine(t, improvedConfig()).Run(ctx, raws)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()

	res, err := newEngine(t, improvedConfig()).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, res.Stats.Identities)
	assert.Zero(t, res.Stats.Clusters)
	assert.Empty(t, res.Duplicates)
}

func TestRunStageDurationsRecorded(t *testing.T) {
	t.Parallel()

	res, err := newEngine(t, birdConfig()).Run(context.Background(), []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
	})
	require.NoError(t, err)

	for _, stage := range []string{
		engine.StageNormalize,
		engine.StageBlocking,
		engine.StagePairs,
		engine.StageScoring,
		engine.StageCluster,
	} {
		assert.Contains(t, res.Stats.Durations, stage)
	}
}
