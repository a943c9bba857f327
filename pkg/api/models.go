package api

import (
	"encoding/json"

	"kml_router/pkg/graph"
)

// RouteRequest is the JSON body for POST /calculate_shortest_path.
// x is the latitude and y the longitude.
type RouteRequest struct {
	Start  *PointJSON      `json:"start"`
	End    *PointJSON      `json:"end"`
	KML    json.RawMessage `json:"kml,omitempty"`
	Format string          `json:"format,omitempty"`
}

// PointJSON holds raw components so that both numbers and numeric strings
// are accepted.
type PointJSON struct {
	X json.RawMessage `json:"x"`
	Y json.RawMessage `json:"y"`
}

// PathResponse is the JSON response for a route without a document.
type PathResponse struct {
	Path [][2]float64 `json:"path"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes      int         `json:"num_nodes"`
	NumEdges      int         `json:"num_edges"`
	NumComponents int         `json:"num_components"`
	Bounds        *BoundsJSON `json:"bounds,omitempty"`
}

// BoundsJSON is the bounding box of the network.
type BoundsJSON struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// NewStats summarizes n.
func NewStats(n *graph.Network) StatsResponse {
	stats := StatsResponse{
		NumNodes:      n.NumNodes(),
		NumEdges:      n.NumEdges(),
		NumComponents: n.NumComponents(),
	}
	if n.NumNodes() > 0 {
		b := n.Bounds()
		stats.Bounds = &BoundsJSON{MinLat: b.Min.Lat(), MinLon: b.Min.Lon(), MaxLat: b.Max.Lat(), MaxLon: b.Max.Lon()}
	}
	return stats
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
