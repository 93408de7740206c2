// Package cluster folds pairwise duplicate decisions into a partition of the
// identity set using a disjoint-set forest.
package cluster

// UnionFind is a disjoint-set forest with union by rank and path compression.
// It starts with one singleton set per element. Union is commutative,
// associative, and idempotent, so the resulting partition does not depend on
// the order in which duplicate pairs are applied.
//
// UnionFind is not safe for concurrent use; callers funnel concurrent
// duplicate decisions through a single goroutine.
type UnionFind struct {
	parent []int
	rank   []int
	sets   int
}

// NewUnionFind creates a forest of n singleton sets.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	return &UnionFind{
		parent: parent,
		rank:   make([]int, n),
		sets:   n,
	}
}

// Len returns the number of elements.
func (u *UnionFind) Len() int {
	return len(u.parent)
}

// Sets returns the current number of disjoint sets.
func (u *UnionFind) Sets() int {
	return u.sets
}

// Find returns the canonical root of the set containing i.
func (u *UnionFind) Find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}

	return i
}

// Union merges the sets containing i and j. Self-pairs and already-merged
// pairs are no-ops.
func (u *UnionFind) Union(i, j int) {
	ri, rj := u.Find(i), u.Find(j)
	if ri == rj {
		return
	}

	if u.rank[ri] < u.rank[rj] {
		ri, rj = rj, ri
	}

	u.parent[rj] = ri

	if u.rank[ri] == u.rank[rj] {
		u.rank[ri]++
	}

	u.sets--
}
