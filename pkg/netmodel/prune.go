package netmodel

// unionFind is a disjoint-set data structure with path halving and union
// by rank, adapted from the teacher's pkg/graph/component.go UnionFind to
// index NodeIDs instead of CSR node indices.
type unionFind struct {
	parent []NodeID
	rank   []byte
	size   []uint32
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]NodeID, n),
		rank:   make([]byte, n),
		size:   make([]uint32, n),
	}
	for i := range uf.parent {
		uf.parent[i] = NodeID(i)
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x NodeID) NodeID {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y NodeID) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// PruneDangling removes weakly-connected components below minSize
// (§4.3b step 5). If keepLargestOnly is set, every component other than
// the single largest one is removed regardless of size. Idempotent: a
// second call removes nothing once only qualifying components remain
// (§8 "Removing dangling subnetworks is idempotent").
//
// Returns the number of nodes removed.
func (l *Layer) PruneDangling(minSize int, keepLargestOnly bool) int {
	n := len(l.nodes)
	if n == 0 {
		return 0
	}
	uf := newUnionFind(n)

	for _, link := range l.LiveLinks() {
		uf.union(link.NodeA-1, link.NodeB-1)
	}

	// index by zero-based slot; translate back to NodeID(i+1) on output.
	var largestRoot NodeID
	var largestSize uint32
	for i := 0; i < n; i++ {
		root := uf.find(NodeID(i))
		if uf.size[root] > largestSize {
			largestSize = uf.size[root]
			largestRoot = root
		}
	}

	removedNodes := map[NodeID]bool{}
	for i := 0; i < n; i++ {
		if l.nodes[i].Removed {
			continue
		}
		id := NodeID(i)
		root := uf.find(id)
		keep := uf.size[root] >= uint32(minSize)
		if keepLargestOnly {
			keep = root == largestRoot
		}
		if !keep {
			removedNodes[id] = true
		}
	}
	if len(removedNodes) == 0 {
		return 0
	}

	removed := 0
	for i := range l.nodes {
		if removedNodes[NodeID(i)] && !l.nodes[i].Removed {
			l.nodes[i].Removed = true
			removed++
		}
	}
	for i := range l.links {
		link := &l.links[i]
		if link.Removed {
			continue
		}
		if removedNodes[link.NodeA-1] || removedNodes[link.NodeB-1] {
			link.Removed = true
		}
	}
	return removed
}
