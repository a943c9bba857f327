package osm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// RawEdge is one segment between consecutive nodes of a way. The network is
// undirected, so a segment is emitted once regardless of oneway tags.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
}

// ParseResult holds the output of parsing an OSM extract.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// isRoutable reports whether a way can be traversed in at least one
// direction. Reversible ways are time-dependent and are skipped entirely.
func isRoutable(tags osm.Tags) bool {
	return tags.Find("oneway") != "reversible"
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox // if non-zero, filter edges to this bounding box
}

// scanner is the subset of the osmpbf and osmxml scanners used here.
type scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// Parse reads an OSM PBF file and returns way segments for routing.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	// Pass 1: Scan ways to collect referenced node IDs and way info.
	ways := newWayCollector()

	sc := osmpbf.New(ctx, rs, 1)
	sc.SkipNodes = true
	sc.SkipRelations = true
	if err := scanAll(sc, ways.visit); err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}

	slog.Info("osm_pass_complete", "pass", 1, "ways", len(ways.ways), "referenced_nodes", len(ways.referenced))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodes := newNodeCollector(ways.referenced)

	sc = osmpbf.New(ctx, rs, 1)
	sc.SkipWays = true
	sc.SkipRelations = true
	if err := scanAll(sc, nodes.visit); err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}

	slog.Info("osm_pass_complete", "pass", 2, "node_coordinates", len(nodes.lat))

	return buildEdges(ways.ways, nodes, firstOption(opts)), nil
}

// ParseXML reads an OSM XML document in a single pass. Node coordinates are
// collected for every node and filtered to referenced ones afterwards.
func ParseXML(ctx context.Context, r io.Reader, opts ...ParseOptions) (*ParseResult, error) {
	ways := newWayCollector()
	nodes := newNodeCollector(nil)

	sc := osmxml.New(ctx, r)
	err := scanAll(sc, func(obj osm.Object) {
		ways.visit(obj)
		nodes.visit(obj)
	})
	if err != nil {
		return nil, fmt.Errorf("scan osm xml: %w", err)
	}

	slog.Info("osm_scan_complete", "ways", len(ways.ways), "nodes", len(nodes.lat))

	return buildEdges(ways.ways, nodes, firstOption(opts)), nil
}

func firstOption(opts []ParseOptions) ParseOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return ParseOptions{}
}

func scanAll(sc scanner, visit func(osm.Object)) error {
	defer sc.Close()
	for sc.Scan() {
		visit(sc.Object())
	}
	return sc.Err()
}

type wayCollector struct {
	ways       [][]osm.NodeID
	referenced map[osm.NodeID]struct{}
}

func newWayCollector() *wayCollector {
	return &wayCollector{referenced: make(map[osm.NodeID]struct{})}
}

func (c *wayCollector) visit(obj osm.Object) {
	w, ok := obj.(*osm.Way)
	if !ok {
		return
	}
	if !isCarAccessible(w.Tags) || !isRoutable(w.Tags) || len(w.Nodes) < 2 {
		return
	}

	nodeIDs := make([]osm.NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		nodeIDs[i] = wn.ID
		c.referenced[wn.ID] = struct{}{}
	}
	c.ways = append(c.ways, nodeIDs)
}

type nodeCollector struct {
	filter map[osm.NodeID]struct{} // nil keeps every node
	lat    map[osm.NodeID]float64
	lon    map[osm.NodeID]float64
}

func newNodeCollector(filter map[osm.NodeID]struct{}) *nodeCollector {
	return &nodeCollector{
		filter: filter,
		lat:    make(map[osm.NodeID]float64, len(filter)),
		lon:    make(map[osm.NodeID]float64, len(filter)),
	}
}

func (c *nodeCollector) visit(obj osm.Object) {
	n, ok := obj.(*osm.Node)
	if !ok {
		return
	}
	if c.filter != nil {
		if _, needed := c.filter[n.ID]; !needed {
			return
		}
	}
	c.lat[n.ID] = n.Lat
	c.lon[n.ID] = n.Lon
}

// buildEdges turns way node lists into segments, dropping segments with
// unknown coordinates or endpoints outside the bounding box.
func buildEdges(ways [][]osm.NodeID, nodes *nodeCollector, opt ParseOptions) *ParseResult {
	useBBox := !opt.BBox.IsZero()

	var edges []RawEdge
	var skippedEdges int
	var bboxFiltered int

	for _, w := range ways {
		for i := 0; i < len(w)-1; i++ {
			fromID := w[i]
			toID := w[i+1]

			fromLat, fromOk := nodes.lat[fromID]
			fromLon := nodes.lon[fromID]
			toLat, toOk := nodes.lat[toID]
			toLon := nodes.lon[toID]

			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			// Bounding box filter: skip edges with any endpoint outside.
			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			edges = append(edges, RawEdge{FromNodeID: fromID, ToNodeID: toID})
		}
	}

	if skippedEdges > 0 {
		slog.Warn("osm_edges_skipped", "reason", "missing_node_coordinates", "count", skippedEdges)
	}
	if bboxFiltered > 0 {
		slog.Info("osm_edges_filtered", "reason", "outside_bbox", "count", bboxFiltered)
	}
	slog.Info("osm_edges_built", "count", len(edges))

	// Keep coordinates only for nodes that ended up on an edge.
	lat := make(map[osm.NodeID]float64)
	lon := make(map[osm.NodeID]float64)
	for _, e := range edges {
		for _, id := range [2]osm.NodeID{e.FromNodeID, e.ToNodeID} {
			lat[id] = nodes.lat[id]
			lon[id] = nodes.lon[id]
		}
	}

	return &ParseResult{
		Edges:   edges,
		NodeLat: lat,
		NodeLon: lon,
	}
}
