package scoring

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Sumatoshi-tech/devdedup/internal/identity"
	"github.com/Sumatoshi-tech/devdedup/pkg/levenshtein"
)

// weightSumTolerance is the allowed deviation of the weight sum from 1.
const weightSumTolerance = 1e-6

// Sentinel errors for improved scorer configuration.
var (
	// ErrWeightNegative indicates a negative signal weight.
	ErrWeightNegative = errors.New("signal weights must be non-negative")
	// ErrWeightSum indicates the weights do not sum to 1.
	ErrWeightSum = errors.New("signal weights must sum to 1")
	// ErrThresholdRange indicates a threshold outside [0,1].
	ErrThresholdRange = errors.New("threshold must be between 0 and 1")
)

// Weights configures the improved scorer's signal mix. All weights must be
// non-negative and sum to 1 so the combined score stays in [0,1].
type Weights struct {
	// Name weights the edit-distance similarity of the sorted name tokens.
	Name float64 `mapstructure:"name" yaml:"name"`
	// EmailLocal weights the edit-distance similarity of the email locals.
	EmailLocal float64 `mapstructure:"email_local" yaml:"email_local"`
	// Domain weights exact email domain equality.
	Domain float64 `mapstructure:"domain" yaml:"domain"`
	// Initials weights the overlap between the identities' initial sets.
	Initials float64 `mapstructure:"initials" yaml:"initials"`
}

// DefaultWeights returns the default signal mix. Email signals carry more
// weight than name signals: email locals are lower-entropy identifiers.
func DefaultWeights() Weights {
	return Weights{
		Name:       0.15,
		EmailLocal: 0.40,
		Domain:     0.20,
		Initials:   0.25,
	}
}

// Validate checks the weight invariants.
func (w Weights) Validate() error {
	if w.Name < 0 || w.EmailLocal < 0 || w.Domain < 0 || w.Initials < 0 {
		return ErrWeightNegative
	}

	sum := w.Name + w.EmailLocal + w.Domain + w.Initials
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: got %.4f", ErrWeightSum, sum)
	}

	return nil
}

// Improved is the weighted multi-signal heuristic. Each signal is normalized
// to [0,1] before weighting, so the combined score is bounded and symmetric.
// It is safe for concurrent use.
type Improved struct {
	weights   Weights
	threshold float64

	// levPool recycles Levenshtein contexts across scoring goroutines.
	levPool sync.Pool
}

// NewImproved creates the improved scorer with the given weights and match
// threshold.
func NewImproved(weights Weights, threshold float64) (*Improved, error) {
	err := weights.Validate()
	if err != nil {
		return nil, err
	}

	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrThresholdRange, threshold)
	}

	return &Improved{
		weights:   weights,
		threshold: threshold,
		levPool: sync.Pool{
			New: func() any { return &levenshtein.Context{} },
		},
	}, nil
}

// Name returns the heuristic name.
func (s *Improved) Name() string {
	return HeuristicImproved
}

// Threshold returns the configured duplicate threshold.
func (s *Improved) Threshold() float64 {
	return s.threshold
}

// Score combines four signals into a weighted sum:
// name similarity over the sorted tokens (lifted by nickname-variant and
// shared-token evidence), email local similarity, exact domain equality, and
// initials overlap. The pair is a duplicate iff the sum reaches the threshold.
func (s *Improved) Score(a, b identity.Normalized) (float64, bool) {
	lev, isCtx := s.levPool.Get().(*levenshtein.Context)
	if !isCtx {
		lev = &levenshtein.Context{}
	}
	defer s.levPool.Put(lev)

	score := s.weights.Name*nameSimilarity(lev, a, b) +
		s.weights.EmailLocal*similarity(lev, a.EmailLocal, b.EmailLocal) +
		s.weights.Domain*domainMatch(a, b) +
		s.weights.Initials*initialsOverlap(a, b)

	return score, score >= s.threshold
}

// nameSimilarity is the edit-distance similarity of the joined sorted name
// tokens, lifted to the token Jaccard index when that is higher (so "Jane
// Doe" vs "Doe" is judged on the shared token rather than the missing one)
// and to 1.0 on a nickname variant match with equal last names.
func nameSimilarity(lev *levenshtein.Context, a, b identity.Normalized) float64 {
	sim := similarity(lev, a.JoinedName, b.JoinedName)

	if jac := tokenJaccard(a.NameTokens, b.NameTokens); jac > sim {
		sim = jac
	}

	if nicknameMatch(a, b) {
		sim = 1
	}

	return sim
}

// nicknameMatch reports a first-name nickname correspondence ("Bob Smith" vs
// "Robert Smith") backed by equal last names.
func nicknameMatch(a, b identity.Normalized) bool {
	if a.LastName == "" || a.LastName != b.LastName {
		return false
	}

	return identity.VariantMatch(a.FirstName, b.FirstName)
}

func tokenJaccard(aTokens, bTokens []string) float64 {
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(aTokens))
	for _, t := range aTokens {
		set[t] = struct{}{}
	}

	shared := 0
	union := len(set)

	for _, t := range bTokens {
		if _, ok := set[t]; ok {
			shared++
		} else {
			union++
		}
	}

	return float64(shared) / float64(union)
}

func domainMatch(a, b identity.Normalized) float64 {
	if a.EmailDomain != "" && a.EmailDomain == b.EmailDomain {
		return 1
	}

	return 0
}

// initialsOverlap is the best of the two containment directions: the
// fraction of one identity's initials present in the other's initial set.
// Taking the maximum keeps the signal symmetric and lets the abbreviated
// side ("J. Doe") be fully covered by the spelled-out one ("Jane Doe").
func initialsOverlap(a, b identity.Normalized) float64 {
	forward := initialsContained(a.Initials, b.Initials)
	backward := initialsContained(b.Initials, a.Initials)

	if forward > backward {
		return forward
	}

	return backward
}

func initialsContained(needles, haystack []string) float64 {
	if len(needles) == 0 || len(haystack) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}

	found := 0

	for _, n := range needles {
		if _, ok := set[n]; ok {
			found++
		}
	}

	return float64(found) / float64(len(needles))
}
