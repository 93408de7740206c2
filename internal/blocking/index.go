// Package blocking groups identities into comparison buckets so the pair
// generator never has to enumerate the full quadratic candidate space.
// Bucket keys are cheap, high-recall signals; an identity may sit in several
// buckets, and the index is deterministic for a given identity set.
package blocking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/devdedup/internal/identity"
)

// Strategy selects which bucket keys the index derives.
type Strategy string

// Supported blocking strategies.
const (
	// StrategyDomain buckets by email domain.
	StrategyDomain Strategy = "domain"
	// StrategyInitials buckets by first initial plus last name token.
	StrategyInitials Strategy = "initials"
	// StrategyBoth unions the domain and initials keys.
	StrategyBoth Strategy = "both"
)

// ErrUnknownStrategy indicates an unrecognized blocking strategy name.
var ErrUnknownStrategy = errors.New("unknown blocking strategy")

// Key prefixes keep the two key families from colliding in one map.
const (
	domainKeyPrefix   = "d:"
	initialsKeyPrefix = "i:"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyDomain, StrategyInitials, StrategyBoth:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Index maps bucket keys to the identity indices they contain. Member lists
// are sorted ascending; iteration over Keys() is sorted. Both properties
// make downstream pair generation reproducible.
type Index struct {
	buckets map[string][]int
	keys    []string
}

// Build constructs the blocking index over the normalized identities, which
// are addressed by their position in the slice. Identities that produce no
// key under the chosen strategy (no email domain, no name) are left out of
// the index entirely; they can still be clustered as singletons. An empty
// input yields an empty index.
func Build(identities []identity.Normalized, strategy Strategy) *Index {
	buckets := make(map[string][]int)

	for i, n := range identities {
		for _, key := range bucketKeys(n, strategy) {
			buckets[key] = append(buckets[key], i)
		}
	}

	keys := make([]string, 0, len(buckets))

	for key, members := range buckets {
		// Members arrive in ascending index order already, but sorting here
		// keeps the invariant independent of how Build is fed.
		sort.Ints(members)
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return &Index{buckets: buckets, keys: keys}
}

// Keys returns the bucket keys in sorted order.
func (x *Index) Keys() []string {
	return x.keys
}

// Bucket returns the member indices for a key, sorted ascending.
func (x *Index) Bucket(key string) []int {
	return x.buckets[key]
}

// Len returns the number of buckets.
func (x *Index) Len() int {
	return len(x.buckets)
}

func bucketKeys(n identity.Normalized, strategy Strategy) []string {
	var keys []string

	if strategy == StrategyDomain || strategy == StrategyBoth {
		if n.EmailDomain != "" {
			keys = append(keys, domainKeyPrefix+n.EmailDomain)
		}
	}

	if strategy == StrategyInitials || strategy == StrategyBoth {
		if key := initialsKey(n); key != "" {
			keys = append(keys, key)
		}
	}

	return keys
}

// initialsKey joins the first initial with the last name token. The initial
// comes from the normalized initial set rather than the surviving tokens so
// that "J. Doe" and "Jane Doe" land in the same "i:j/doe" bucket.
func initialsKey(n identity.Normalized) string {
	if n.LastName == "" || len(n.Initials) == 0 {
		return ""
	}

	return initialsKeyPrefix + n.Initials[0] + "/" + n.LastName
}
