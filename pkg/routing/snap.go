package routing

import (
	"fmt"
	"math"

	"github.com/tidwall/rtree"

	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
)

// Snapper maps an arbitrary coordinate to the nearest network node.
// Ties go to the lowest NodeID.
type Snapper interface {
	Snap(c geo.Coordinate) (graph.NodeID, error)
}

// Snapper kinds accepted by NewSnapper.
const (
	SnapperScan  = "scan"
	SnapperRTree = "rtree"
)

// NewSnapper returns the snapper named by kind over g.
func NewSnapper(g *graph.Network, kind string) (Snapper, error) {
	switch kind {
	case SnapperScan:
		return NewScanSnapper(g), nil
	case SnapperRTree, "":
		return NewIndexSnapper(g), nil
	default:
		return nil, fmt.Errorf("unknown snapper %q (want %s or %s)", kind, SnapperScan, SnapperRTree)
	}
}

// ScanSnapper checks every node on each query.
type ScanSnapper struct {
	g *graph.Network
}

func NewScanSnapper(g *graph.Network) *ScanSnapper {
	return &ScanSnapper{g: g}
}

func (s *ScanSnapper) Snap(c geo.Coordinate) (graph.NodeID, error) {
	if s.g.NumNodes() == 0 {
		return graph.NoNode, graph.ErrEmptyNetwork
	}
	// Seeding with node 0 keeps a winner even when every distance
	// overflows to +Inf. Strict comparison keeps the lowest ID on ties.
	coords := s.g.Coords()
	best := graph.NodeID(0)
	bestDist := geo.Distance(c, coords[0])
	for i := 1; i < len(coords); i++ {
		if d := geo.Distance(c, coords[i]); d < bestDist {
			best, bestDist = graph.NodeID(i), d
		}
	}
	return best, nil
}

// IndexSnapper answers nearest-node queries from an R-tree over the node
// points. Results are identical to ScanSnapper's.
type IndexSnapper struct {
	g  *graph.Network
	tr rtree.RTreeG[graph.NodeID]
}

// NewIndexSnapper indexes every node of g. Points are stored as [lon, lat].
func NewIndexSnapper(g *graph.Network) *IndexSnapper {
	s := &IndexSnapper{g: g}
	for i, c := range g.Coords() {
		p := [2]float64{c.Lon, c.Lat}
		s.tr.Insert(p, p, graph.NodeID(i))
	}
	return s
}

func (s *IndexSnapper) Snap(c geo.Coordinate) (graph.NodeID, error) {
	if s.g.NumNodes() == 0 {
		return graph.NoNode, graph.ErrEmptyNetwork
	}
	target := [2]float64{c.Lon, c.Lat}

	best := graph.NoNode
	bestDist := math.Inf(1)
	s.tr.Nearby(
		rtree.BoxDist[float64, graph.NodeID](target, target, nil),
		func(_, _ [2]float64, id graph.NodeID, dist float64) bool {
			// dist is the squared box distance and arrives in increasing
			// order, so nothing past the best (plus rounding slack) can win.
			if best != graph.NoNode && dist > bestDist*bestDist*(1+1e-9) {
				return false
			}
			d := geo.Distance(c, s.g.Coord(id))
			if d < bestDist || (d == bestDist && id < best) {
				best, bestDist = id, d
			}
			return true
		},
	)
	if best == graph.NoNode {
		// Non-finite query coordinates defeat the index ordering.
		return NewScanSnapper(s.g).Snap(c)
	}
	return best, nil
}
