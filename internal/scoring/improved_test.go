package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdedup/internal/scoring"
)

const (
	testThreshold = 0.85
	scoreDelta    = 1e-9
)

func newImproved(t *testing.T) *scoring.Improved {
	t.Helper()

	scorer, err := scoring.NewImproved(scoring.DefaultWeights(), testThreshold)
	require.NoError(t, err)

	return scorer
}

func TestImprovedAbbreviatedNameSameEmail(t *testing.T) {
	t.Parallel()

	a := normalize("Jane Doe", "jane.doe@co.com")
	b := normalize("J. Doe", "jane.doe@co.com")

	score, match := newImproved(t).Score(a, b)

	// Email local, domain, and initials all agree; the name signal is the
	// token overlap between {jane, doe} and {doe}.
	assert.InDelta(t, 0.925, score, scoreDelta)
	assert.True(t, match)
	assert.GreaterOrEqual(t, score, 0.9)
}

func TestImprovedSameNameDifferentEmails(t *testing.T) {
	t.Parallel()

	a := normalize("Bob Smith", "bob@home.com")
	b := normalize("Bob Smith", "bsmith@work.com")

	score, match := newImproved(t).Score(a, b)

	// Name and initials agree fully, but the email local similarity is weak
	// and the domains disagree: 0.15 + 0.40*(1/6) + 0 + 0.25.
	assert.InDelta(t, 0.15+0.4/6.0+0.25, score, scoreDelta)
	assert.False(t, match)
}

func TestImprovedNicknameLiftsNameSignal(t *testing.T) {
	t.Parallel()

	a := normalize("Bob Smith", "bsmith@example.com")
	b := normalize("Robert Smith", "bsmith@example.com")

	score, match := newImproved(t).Score(a, b)

	// Nickname variant plus equal last name lifts the name signal to 1;
	// every other signal agrees exactly, except the differing first
	// initials ("b" vs "r") which halve the initials containment.
	assert.InDelta(t, 0.15+0.40+0.20+0.25*0.5, score, scoreDelta)
	assert.True(t, match)
}

func TestImprovedSelfIdentity(t *testing.T) {
	t.Parallel()

	a := normalize("Jane Doe", "jane@example.com")

	score, match := newImproved(t).Score(a, a)

	assert.InDelta(t, 1.0, score, scoreDelta)
	assert.True(t, match)
}

func TestImprovedSymmetry(t *testing.T) {
	t.Parallel()

	scorer := newImproved(t)

	pairs := [][2]string{
		{"Jane Doe", "J. Doe"},
		{"Bob Smith", "Robert Smith"},
		{"Alice", ""},
	}

	for _, p := range pairs {
		a := normalize(p[0], "a@x.com")
		b := normalize(p[1], "b@y.org")

		forward, _ := scorer.Score(a, b)
		backward, _ := scorer.Score(b, a)

		assert.InDelta(t, forward, backward, scoreDelta)
	}
}

func TestImprovedEmptyIdentitiesScoreZero(t *testing.T) {
	t.Parallel()

	a := normalize("", "")
	b := normalize("", "")

	score, match := newImproved(t).Score(a, b)

	assert.InDelta(t, 0.0, score, scoreDelta)
	assert.False(t, match)
}

func TestImprovedThresholdBoundaries(t *testing.T) {
	t.Parallel()

	a := normalize("Jane Doe", "jane@example.com")

	scorer, err := scoring.NewImproved(scoring.DefaultWeights(), 1.0)
	require.NoError(t, err)

	score, match := scorer.Score(a, a)
	assert.InDelta(t, 1.0, score, scoreDelta)
	assert.True(t, match)

	scorer, err = scoring.NewImproved(scoring.DefaultWeights(), 0.0)
	require.NoError(t, err)

	_, match = scorer.Score(a, normalize("", ""))
	assert.True(t, match)
}

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		weights scoring.Weights
		wantErr error
	}{
		{
			name:    "defaults are valid",
			weights: scoring.DefaultWeights(),
		},
		{
			name:    "negative weight",
			weights: scoring.Weights{Name: -0.1, EmailLocal: 0.6, Domain: 0.2, Initials: 0.3},
			wantErr: scoring.ErrWeightNegative,
		},
		{
			name:    "sum above one",
			weights: scoring.Weights{Name: 0.5, EmailLocal: 0.5, Domain: 0.5, Initials: 0.5},
			wantErr: scoring.ErrWeightSum,
		},
		{
			name:    "sum below one",
			weights: scoring.Weights{Name: 0.1, EmailLocal: 0.1, Domain: 0.1, Initials: 0.1},
			wantErr: scoring.ErrWeightSum,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.weights.Validate()

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestNewImprovedRejectsBadThreshold(t *testing.T) {
	t.Parallel()

	_, err := scoring.NewImproved(scoring.DefaultWeights(), -0.01)
	assert.ErrorIs(t, err, scoring.ErrThresholdRange)

	_, err = scoring.NewImproved(scoring.DefaultWeights(), 1.01)
	assert.ErrorIs(t, err, scoring.ErrThresholdRange)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	bird, err := scoring.Select(scoring.HeuristicBird, scoring.Weights{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "bird", bird.Name())

	improved, err := scoring.Select(scoring.HeuristicImproved, scoring.DefaultWeights(), testThreshold)
	require.NoError(t, err)
	assert.Equal(t, "improved", improved.Name())

	_, err = scoring.Select("fuzzy", scoring.Weights{}, 0)
	assert.ErrorIs(t, err, scoring.ErrUnknownHeuristic)
}
