package cluster

import "sort"

// Partition assigns every identity index to exactly one cluster. Cluster ids
// are dense and numbered by each cluster's smallest member index, so the
// same grouping always yields identical ids regardless of how the unions
// were ordered.
type Partition struct {
	assignment []int
	groups     [][]int
}

// Duplicate is a scored pair judged to belong to the same developer.
type Duplicate struct {
	I     int
	J     int
	Score float64
}

// Build folds the duplicate decisions over n identities into a Partition.
// The union closure is transitive: if (a,b) and (b,c) are duplicates, a, b
// and c share a cluster even when (a,c) was never compared.
func Build(n int, duplicates []Duplicate) *Partition {
	uf := NewUnionFind(n)

	for _, d := range duplicates {
		uf.Union(d.I, d.J)
	}

	return FromUnionFind(uf)
}

// FromUnionFind snapshots a union-find forest into an immutable Partition.
func FromUnionFind(uf *UnionFind) *Partition {
	n := uf.Len()

	membersByRoot := make(map[int][]int, uf.Sets())
	for i := 0; i < n; i++ {
		root := uf.Find(i)
		membersByRoot[root] = append(membersByRoot[root], i)
	}

	roots := make([]int, 0, len(membersByRoot))
	for root := range membersByRoot {
		roots = append(roots, root)
	}

	// Order clusters by smallest member; Find visits indices in ascending
	// order above, so members[0] is already the minimum.
	sort.Slice(roots, func(a, b int) bool {
		return membersByRoot[roots[a]][0] < membersByRoot[roots[b]][0]
	})

	p := &Partition{
		assignment: make([]int, n),
		groups:     make([][]int, 0, len(roots)),
	}

	for clusterID, root := range roots {
		members := membersByRoot[root]
		p.groups = append(p.groups, members)

		for _, m := range members {
			p.assignment[m] = clusterID
		}
	}

	return p
}

// Len returns the number of identities covered by the partition.
func (p *Partition) Len() int {
	return len(p.assignment)
}

// NumClusters returns the number of clusters, singletons included.
func (p *Partition) NumClusters() int {
	return len(p.groups)
}

// ClusterOf returns the cluster id of an identity index.
func (p *Partition) ClusterOf(i int) int {
	return p.assignment[i]
}

// SameCluster reports whether two identities share a cluster.
func (p *Partition) SameCluster(i, j int) bool {
	return p.assignment[i] == p.assignment[j]
}

// Groups returns the clusters as sorted member-index slices, ordered by
// cluster id. The caller must not mutate the result.
func (p *Partition) Groups() [][]int {
	return p.groups
}

// Singletons returns the number of single-member clusters.
func (p *Partition) Singletons() int {
	count := 0

	for _, g := range p.groups {
		if len(g) == 1 {
			count++
		}
	}

	return count
}
