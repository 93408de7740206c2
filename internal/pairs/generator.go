// Package pairs enumerates candidate identity pairs from a blocking index
// under a fixed pair budget.
package pairs

import (
	"errors"

	"github.com/Sumatoshi-tech/devdedup/internal/blocking"
)

// ErrInvalidMaxPairs indicates a negative pair budget.
var ErrInvalidMaxPairs = errors.New("max pairs must be non-negative")

// Pair is an unordered candidate pair of identity indices with I < J.
type Pair struct {
	I int
	J int
}

// Result holds the generated candidate pairs and whether the budget cut the
// enumeration short. Truncation is a reported condition, not an error:
// callers decide whether partial coverage is acceptable.
type Result struct {
	Pairs     []Pair
	Truncated bool
}

// Generate enumerates all unordered pairs within each bucket of the index.
// Buckets are visited in sorted key order and pairs within a bucket in
// ascending (i, j) order, so truncation at maxPairs is reproducible across
// runs on the same input. A pair reachable through several buckets is
// emitted exactly once, on its first appearance.
func Generate(index *blocking.Index, maxPairs int) (Result, error) {
	if maxPairs < 0 {
		return Result{}, ErrInvalidMaxPairs
	}

	seen := make(map[Pair]struct{})

	var res Result

	for _, key := range index.Keys() {
		members := index.Bucket(key)

		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				pair := canonical(members[a], members[b])
				if _, dup := seen[pair]; dup {
					continue
				}

				if len(res.Pairs) >= maxPairs {
					res.Truncated = true

					return res, nil
				}

				seen[pair] = struct{}{}
				res.Pairs = append(res.Pairs, pair)
			}
		}
	}

	return res, nil
}

func canonical(i, j int) Pair {
	if i > j {
		i, j = j, i
	}

	return Pair{I: i, J: j}
}
