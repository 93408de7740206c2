// Package scoring implements the pairwise identity similarity heuristics.
// Two interchangeable scorers exist behind one contract: the rule-ordered
// Bird baseline and the weighted multi-signal improved scorer.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/devdedup/internal/identity"
	"github.com/Sumatoshi-tech/devdedup/pkg/levenshtein"
)

// ErrUnknownHeuristic indicates an unrecognized heuristic name.
var ErrUnknownHeuristic = errors.New("unknown heuristic")

// Heuristic names accepted by Select.
const (
	HeuristicBird     = "bird"
	HeuristicImproved = "improved"
)

// Scorer judges whether two normalized identities belong to the same
// developer. Score is symmetric and bucket-independent; blocking only
// decides which pairs are tried, never how they are scored.
type Scorer interface {
	// Name returns the heuristic name.
	Name() string

	// Score returns a similarity in [0,1] and whether the pair is judged a
	// duplicate. The Bird baseline is binary: the score is 1 on a match and
	// 0 otherwise.
	Score(a, b identity.Normalized) (score float64, match bool)
}

// Select returns the scorer registered under the given heuristic name. The
// weights and threshold only apply to the improved heuristic; the Bird
// baseline is parameter-free.
func Select(name string, weights Weights, threshold float64) (Scorer, error) {
	switch name {
	case HeuristicBird:
		return NewBird(), nil
	case HeuristicImproved:
		return NewImproved(weights, threshold)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
}

// similarity returns the normalized Levenshtein similarity of two strings:
// 1 - distance/maxLen, in [0,1]. Empty input on either side scores 0, so
// absent data never counts as evidence.
func similarity(ctx *levenshtein.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 1
	}

	dist := ctx.Distance(a, b)

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	return 1 - float64(dist)/float64(maxLen)
}
