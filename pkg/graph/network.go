package graph

import (
	"math"
	"sync"

	"github.com/paulmach/orb"

	"kml_router/pkg/geo"
)

// NodeID is the dense index of a node. IDs are assigned in insertion order,
// so iteration by NodeID is stable across builds of the same input.
type NodeID uint32

// NoNode marks the absence of a node.
const NoNode = NodeID(math.MaxUint32)

// Network is the immutable, undirected road/point network. It is produced by
// Build and never mutated afterwards, so it is safe for concurrent readers.
//
// Adjacency is stored in CSR (Compressed Sparse Row) form:
// firstOut[i]..firstOut[i+1] indexes into head for the neighbors of node i.
// Neighbors keep the order in which their edges were first added.
type Network struct {
	coords   []geo.Coordinate
	index    map[geo.Coordinate]NodeID
	firstOut []uint32 // len: NumNodes + 1
	head     []NodeID // len: 2 * NumEdges
	edges    [][2]NodeID

	compOnce sync.Once
	comps    components
}

// NumNodes returns the number of registered nodes.
func (n *Network) NumNodes() int { return len(n.coords) }

// NumEdges returns the number of undirected edges.
func (n *Network) NumEdges() int { return len(n.edges) }

// Coord returns the coordinate of node id.
func (n *Network) Coord(id NodeID) geo.Coordinate { return n.coords[id] }

// Coords returns every node coordinate in NodeID order.
// The returned slice is shared and must not be modified.
func (n *Network) Coords() []geo.Coordinate { return n.coords }

// Lookup returns the node registered at c, if any.
func (n *Network) Lookup(c geo.Coordinate) (NodeID, bool) {
	id, ok := n.index[c]
	return id, ok
}

// Neighbors returns the nodes adjacent to u.
// The returned slice is shared and must not be modified.
func (n *Network) Neighbors(u NodeID) []NodeID {
	return n.head[n.firstOut[u]:n.firstOut[u+1]]
}

// HasEdge reports whether a and b are connected by an edge.
func (n *Network) HasEdge(a, b NodeID) bool {
	for _, v := range n.Neighbors(a) {
		if v == b {
			return true
		}
	}
	return false
}

// Edges returns every undirected edge once, in insertion order.
// The returned slice is shared and must not be modified.
func (n *Network) Edges() [][2]NodeID { return n.edges }

// Bounds returns the bounding box of all nodes.
func (n *Network) Bounds() orb.Bound { return geo.Bounds(n.coords) }
