package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // max rank stays well under 255
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// components labels every node with a dense component index.
type components struct {
	label []uint32 // label[node] in [0, count)
	sizes []uint32 // sizes[label]
}

// labelComponents computes connected components once. Labels are assigned in
// order of each component's lowest NodeID.
func (n *Network) labelComponents() *components {
	n.compOnce.Do(func() {
		numNodes := uint32(len(n.coords))
		uf := NewUnionFind(numNodes)
		for _, e := range n.edges {
			uf.Union(uint32(e[0]), uint32(e[1]))
		}

		rootLabel := make(map[uint32]uint32)
		label := make([]uint32, numNodes)
		var sizes []uint32
		for i := uint32(0); i < numNodes; i++ {
			root := uf.Find(i)
			l, ok := rootLabel[root]
			if !ok {
				l = uint32(len(sizes))
				rootLabel[root] = l
				sizes = append(sizes, 0)
			}
			label[i] = l
			sizes[l]++
		}
		n.comps = components{label: label, sizes: sizes}
	})
	return &n.comps
}

// NumComponents returns the number of connected components.
func (n *Network) NumComponents() int {
	return len(n.labelComponents().sizes)
}

// Component returns the component label of node id.
func (n *Network) Component(id NodeID) uint32 {
	return n.labelComponents().label[id]
}

// Connected reports whether a and b lie in the same connected component.
func (n *Network) Connected(a, b NodeID) bool {
	c := n.labelComponents()
	return c.label[a] == c.label[b]
}

// LargestComponent returns the nodes of the largest connected component in
// NodeID order. Ties go to the component containing the lowest NodeID.
func LargestComponent(n *Network) []NodeID {
	if n.NumNodes() == 0 {
		return nil
	}
	c := n.labelComponents()

	best := uint32(0)
	for l, size := range c.sizes {
		if size > c.sizes[best] {
			best = uint32(l)
		}
	}

	nodes := make([]NodeID, 0, c.sizes[best])
	for i, l := range c.label {
		if l == best {
			nodes = append(nodes, NodeID(i))
		}
	}
	return nodes
}

// FilterToComponent returns an adjacency description containing only the
// given nodes and the edges between them.
func FilterToComponent(n *Network, nodes []NodeID) Adjacency {
	keep := make(map[NodeID]bool, len(nodes))
	for _, id := range nodes {
		keep[id] = true
	}
	return n.adjacency(func(id NodeID) bool { return keep[id] })
}
