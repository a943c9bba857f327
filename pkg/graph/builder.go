package graph

import (
	"math"
	"strconv"
	"strings"

	"kml_router/pkg/geo"
)

// AdjacencyEntry lists the directly connected neighbors of one source node.
// Source is the textual key "(lat, lon)"; each target is its two numeric
// components as text, in [lat, lon] order.
type AdjacencyEntry struct {
	Source  string
	Targets [][]string
}

// Adjacency is an ordered adjacency description. Entry order determines
// NodeID assignment, so it must be preserved from the source document.
type Adjacency []AdjacencyEntry

// Stats summarizes what Build did with its input.
type Stats struct {
	SelfLoops      int // target equal to its source, skipped
	DuplicateEdges int // edges already present, collapsed
}

// Build creates an immutable Network from an adjacency description.
// Every source and target becomes a node; every (source, target) pair becomes
// one undirected edge. Building the same input twice yields identical node
// and edge sets in identical order.
func Build(adj Adjacency) (*Network, error) {
	n, _, err := BuildWithStats(adj)
	return n, err
}

// BuildWithStats is Build, additionally reporting skipped self-loops and
// collapsed duplicate edges.
func BuildWithStats(adj Adjacency) (*Network, Stats, error) {
	b := newBuilder()

	for _, entry := range adj {
		src, err := ParseNodeKey(entry.Source)
		if err != nil {
			return nil, b.stats, err
		}
		u := b.addNode(src)

		for _, target := range entry.Targets {
			dst, err := ParseNodeComponents(target)
			if err != nil {
				return nil, b.stats, err
			}
			v := b.addNode(dst)
			b.addEdge(u, v)
		}
	}

	if len(b.coords) == 0 {
		return nil, b.stats, ErrEmptyNetwork
	}
	return b.freeze(), b.stats, nil
}

// ParseNodeKey parses a textual node key such as "(1.3, 103.8)" into a
// Coordinate. Surrounding parentheses or brackets are optional.
func ParseNodeKey(key string) (geo.Coordinate, error) {
	s := strings.TrimSpace(key)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, &MalformedNodeError{
			Value:  key,
			Reason: "want exactly two comma-separated components, got " + strconv.Itoa(len(parts)),
		}
	}
	c, err := parseComponents(key, parts[0], parts[1])
	if err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}

// ParseNodeComponents parses a [lat, lon] pair given as text.
func ParseNodeComponents(parts []string) (geo.Coordinate, error) {
	if len(parts) != 2 {
		return geo.Coordinate{}, &MalformedNodeError{
			Value:  "[" + strings.Join(parts, ", ") + "]",
			Reason: "want exactly two components, got " + strconv.Itoa(len(parts)),
		}
	}
	return parseComponents("["+parts[0]+", "+parts[1]+"]", parts[0], parts[1])
}

func parseComponents(value, latText, lonText string) (geo.Coordinate, error) {
	lat, err := parseComponent(value, latText)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lon, err := parseComponent(value, lonText)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}

func parseComponent(value, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, &MalformedNodeError{Value: value, Reason: "non-numeric component", Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MalformedNodeError{Value: value, Reason: "non-finite component"}
	}
	return v, nil
}

// builder accumulates nodes and edges before they are frozen into CSR form.
type builder struct {
	coords  []geo.Coordinate
	index   map[geo.Coordinate]NodeID
	adj     [][]NodeID
	edges   [][2]NodeID
	edgeSet map[[2]NodeID]struct{}
	stats   Stats
}

func newBuilder() *builder {
	return &builder{
		index:   make(map[geo.Coordinate]NodeID),
		edgeSet: make(map[[2]NodeID]struct{}),
	}
}

func (b *builder) addNode(c geo.Coordinate) NodeID {
	if id, ok := b.index[c]; ok {
		return id
	}
	id := NodeID(len(b.coords))
	b.index[c] = id
	b.coords = append(b.coords, c)
	b.adj = append(b.adj, nil)
	return id
}

func (b *builder) addEdge(u, v NodeID) {
	if u == v {
		b.stats.SelfLoops++
		return
	}
	key := [2]NodeID{min(u, v), max(u, v)}
	if _, ok := b.edgeSet[key]; ok {
		b.stats.DuplicateEdges++
		return
	}
	b.edgeSet[key] = struct{}{}
	b.edges = append(b.edges, [2]NodeID{u, v})
	b.adj[u] = append(b.adj[u], v)
	b.adj[v] = append(b.adj[v], u)
}

// freeze converts the adjacency lists into CSR arrays.
func (b *builder) freeze() *Network {
	numNodes := len(b.coords)
	firstOut := make([]uint32, numNodes+1)
	head := make([]NodeID, 0, 2*len(b.edges))

	for u := 0; u < numNodes; u++ {
		firstOut[u] = uint32(len(head))
		head = append(head, b.adj[u]...)
	}
	firstOut[numNodes] = uint32(len(head))

	return &Network{
		coords:   b.coords,
		index:    b.index,
		firstOut: firstOut,
		head:     head,
		edges:    b.edges,
	}
}
