// Package identity models raw committer identities and their canonical,
// comparable form used by the deduplication heuristics.
package identity

import (
	"sort"
	"strings"
)

// Raw is the literal (name, email) pair attached to a commit. It is read
// verbatim from the commit log and never modified.
type Raw struct {
	Name  string
	Email string
}

// Signature renders the identity as "name <email>" for display.
func (r Raw) Signature() string {
	return r.Name + " <" + r.Email + ">"
}

// Normalized is the canonical form of a Raw identity. All fields are derived
// deterministically by Normalize; two equal Raw values always produce equal
// Normalized values.
type Normalized struct {
	// NameTokens are the lowercased name words in their original order.
	NameTokens []string

	// JoinedName is the sorted name tokens joined with single spaces.
	// Sorting makes name comparison order-independent, so "Jane Doe" and
	// "Doe Jane" compare equal on this field.
	JoinedName string

	// FirstName and LastName are the first and last name tokens, or empty
	// when the name has no usable tokens.
	FirstName string
	LastName  string

	// EmailLocal is the part before '@', lowercased, with separator
	// characters and a trailing digits-only platform suffix removed.
	EmailLocal string

	// EmailDomain is the part after '@', lowercased.
	EmailDomain string

	// Initials holds the first rune of each name token.
	Initials []string

	// Variants are nickname expansions of the name tokens, including the
	// tokens themselves ("bob" also yields "robert").
	Variants []string
}

// HasName reports whether normalization produced any name tokens.
func (n Normalized) HasName() bool {
	return len(n.NameTokens) > 0
}

// HasEmail reports whether normalization produced a non-empty email local part.
func (n Normalized) HasEmail() bool {
	return n.EmailLocal != ""
}

// SharesVariant reports whether the two identities share any nickname variant.
func (n Normalized) SharesVariant(other Normalized) bool {
	if len(n.Variants) == 0 || len(other.Variants) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(n.Variants))
	for _, v := range n.Variants {
		set[v] = struct{}{}
	}

	for _, v := range other.Variants {
		if _, ok := set[v]; ok {
			return true
		}
	}

	return false
}

// Pool assigns a stable integer index to every distinct Raw identity seen in
// a run. Indices are dense, start at zero, and are independent of insertion
// order: the pool sorts the distinct identities before numbering them.
// A Pool is immutable after Build.
type Pool struct {
	identities []Raw
	normalized []Normalized
	index      map[Raw]int
}

// BuildPool deduplicates the given raw identities, normalizes each distinct
// one, and assigns indices in sorted (name, email) order so that the same
// input set always yields the same numbering regardless of input order.
func BuildPool(raws []Raw) *Pool {
	seen := make(map[Raw]struct{}, len(raws))
	distinct := make([]Raw, 0, len(raws))

	for _, r := range raws {
		if _, ok := seen[r]; ok {
			continue
		}

		seen[r] = struct{}{}
		distinct = append(distinct, r)
	}

	sort.Slice(distinct, func(i, j int) bool {
		a, b := distinct[i], distinct[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}

		return a.Email < b.Email
	})

	pool := &Pool{
		identities: distinct,
		normalized: make([]Normalized, len(distinct)),
		index:      make(map[Raw]int, len(distinct)),
	}

	for i, r := range distinct {
		pool.normalized[i] = Normalize(r)
		pool.index[r] = i
	}

	return pool
}

// Len returns the number of distinct identities in the pool.
func (p *Pool) Len() int {
	return len(p.identities)
}

// Raw returns the raw identity at the given index.
func (p *Pool) Raw(i int) Raw {
	return p.identities[i]
}

// Normalized returns the normalized identity at the given index.
func (p *Pool) Normalized(i int) Normalized {
	return p.normalized[i]
}

// AllNormalized returns the normalized identities in index order. The caller
// must not mutate the returned slice.
func (p *Pool) AllNormalized() []Normalized {
	return p.normalized
}

// Index returns the index of the given raw identity and whether it is known.
func (p *Pool) Index(r Raw) (int, bool) {
	i, ok := p.index[r]

	return i, ok
}

// lowerTrim lowercases and trims surrounding whitespace.
func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
