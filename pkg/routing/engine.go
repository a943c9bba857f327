package routing

import (
	"context"
	"fmt"

	"kml_router/pkg/export"
	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
)

// Query is a single routing request.
type Query struct {
	Start, End geo.Coordinate

	// WantDocument selects a rendered document instead of the bare route.
	WantDocument bool
	Format       export.Format
}

// QueryResult is either a *RouteResult or a *DocumentResult.
type QueryResult interface {
	queryResult()
}

// RouteResult carries the route coordinates.
type RouteResult struct {
	Route Route
}

// DocumentResult carries the route and its rendered document.
type DocumentResult struct {
	Route    Route
	Document *export.Document
}

func (*RouteResult) queryResult()    {}
func (*DocumentResult) queryResult() {}

// Router is the interface for route queries.
type Router interface {
	Query(ctx context.Context, q Query) (QueryResult, error)
}

// Engine implements Router: it snaps both query points to the network,
// solves for the minimum-hop route and optionally renders it.
type Engine struct {
	g         *graph.Network
	snapper   Snapper
	solver    *PathSolver
	exporters map[export.Format]export.Exporter
}

// NewEngine creates a routing engine. exporters may be nil when documents
// are never requested.
func NewEngine(g *graph.Network, snapper Snapper, exporters map[export.Format]export.Exporter) *Engine {
	return &Engine{
		g:         g,
		snapper:   snapper,
		solver:    NewPathSolver(g),
		exporters: exporters,
	}
}

// Network returns the network the engine routes over.
func (e *Engine) Network() *graph.Network { return e.g }

// Route snaps start and end to their nearest nodes and returns the
// minimum-hop route between them.
func (e *Engine) Route(ctx context.Context, start, end geo.Coordinate) (Route, error) {
	if e.g.NumNodes() == 0 {
		return nil, graph.ErrEmptyNetwork
	}
	src, err := e.snapper.Snap(start)
	if err != nil {
		return nil, err
	}
	dst, err := e.snapper.Snap(end)
	if err != nil {
		return nil, err
	}
	return e.solver.ShortestPath(ctx, e.g.Coord(src), e.g.Coord(dst))
}

// Query answers q with a RouteResult, or a DocumentResult when a document
// is requested. The format is checked before any routing work.
func (e *Engine) Query(ctx context.Context, q Query) (QueryResult, error) {
	var exp export.Exporter
	if q.WantDocument {
		format := q.Format
		if format == "" {
			format = export.FormatKML
		}
		var ok bool
		if exp, ok = e.exporters[format]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}
	}

	route, err := e.Route(ctx, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return &RouteResult{Route: route}, nil
	}

	doc, err := exp.Export(route)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Route: route, Document: doc}, nil
}
