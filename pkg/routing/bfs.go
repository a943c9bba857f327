package routing

import (
	"context"

	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
)

// ctxCheckInterval is how many dequeues run between context checks.
const ctxCheckInterval = 1024

// Route is an ordered node sequence, start and end inclusive.
type Route []geo.Coordinate

// Hops returns the number of edges traversed.
func (r Route) Hops() int {
	if len(r) == 0 {
		return 0
	}
	return len(r) - 1
}

// PathSolver finds minimum-hop routes between registered nodes.
type PathSolver struct {
	g *graph.Network
}

func NewPathSolver(g *graph.Network) *PathSolver {
	return &PathSolver{g: g}
}

// ShortestPath returns a route with the fewest edges from start to end.
// Both endpoints must be registered nodes. Neighbors are expanded in
// insertion order, so the result is deterministic.
func (s *PathSolver) ShortestPath(ctx context.Context, start, end geo.Coordinate) (Route, error) {
	src, ok := s.g.Lookup(start)
	if !ok {
		return nil, &UnknownNodeError{Coord: start}
	}
	dst, ok := s.g.Lookup(end)
	if !ok {
		return nil, &UnknownNodeError{Coord: end}
	}
	if src == dst {
		return Route{s.g.Coord(src)}, nil
	}
	if !s.g.Connected(src, dst) {
		return nil, &NoRouteError{From: start, To: end}
	}

	nodes, err := s.bfs(ctx, src, dst)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		return nil, &NoRouteError{From: start, To: end}
	}

	route := make(Route, len(nodes))
	for i, id := range nodes {
		route[i] = s.g.Coord(id)
	}
	return route, nil
}

// bfs returns the node path from src to dst, or nil if dst is unreachable.
func (s *PathSolver) bfs(ctx context.Context, src, dst graph.NodeID) ([]graph.NodeID, error) {
	pred := make([]graph.NodeID, s.g.NumNodes())
	for i := range pred {
		pred[i] = graph.NoNode
	}
	pred[src] = src

	queue := []graph.NodeID{src}
	for head := 0; head < len(queue); head++ {
		if head%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		u := queue[head]
		for _, v := range s.g.Neighbors(u) {
			if pred[v] != graph.NoNode {
				continue
			}
			pred[v] = u
			if v == dst {
				return reconstruct(pred, src, dst), nil
			}
			queue = append(queue, v)
		}
	}
	return nil, nil
}

func reconstruct(pred []graph.NodeID, src, dst graph.NodeID) []graph.NodeID {
	var path []graph.NodeID
	for v := dst; v != src; v = pred[v] {
		path = append(path, v)
	}
	path = append(path, src)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
