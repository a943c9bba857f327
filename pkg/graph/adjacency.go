package graph

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"

	"kml_router/pkg/geo"
	osmparser "kml_router/pkg/osm"
)

// ReadAdjacencyJSON decodes an adjacency document of the form
//
//	{"(lat, lon)": [[lat, lon], ...], ...}
//
// Object keys are read in document order. Target components may be JSON
// numbers or numeric strings; their text is kept verbatim for Build.
func ReadAdjacencyJSON(r io.Reader) (Adjacency, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("read adjacency: want JSON object, got %v", tok)
	}

	var adj Adjacency
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read adjacency key: %w", err)
		}
		key := tok.(string) // object keys are always strings

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read adjacency targets of %q: %w", key, err)
		}
		targets, err := decodeTargets(key, raw)
		if err != nil {
			return nil, err
		}
		adj = append(adj, AdjacencyEntry{Source: key, Targets: targets})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	return adj, nil
}

func decodeTargets(key string, raw any) ([][]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &MalformedNodeError{Value: key, Reason: "targets must be a list of [lat, lon] pairs"}
	}

	targets := make([][]string, 0, len(list))
	for _, item := range list {
		pair, ok := item.([]any)
		if !ok {
			return nil, &MalformedNodeError{Value: fmt.Sprint(item), Reason: "target must be a [lat, lon] pair"}
		}
		parts := make([]string, len(pair))
		for i, v := range pair {
			switch v := v.(type) {
			case json.Number:
				parts[i] = v.String()
			case string:
				parts[i] = v
			default:
				return nil, &MalformedNodeError{Value: fmt.Sprint(pair), Reason: "non-numeric component"}
			}
		}
		targets = append(targets, parts)
	}
	return targets, nil
}

// WriteAdjacencyJSON encodes adj in the format read by ReadAdjacencyJSON,
// preserving entry order. Components are written as JSON numbers.
func WriteAdjacencyJSON(w io.Writer, adj Adjacency) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("{")
	for i, entry := range adj {
		if i > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n  ")

		key, err := json.Marshal(entry.Source)
		if err != nil {
			return fmt.Errorf("encode key %q: %w", entry.Source, err)
		}
		targets := make([][]json.Number, len(entry.Targets))
		for j, t := range entry.Targets {
			targets[j] = make([]json.Number, len(t))
			for k, part := range t {
				targets[j][k] = json.Number(strings.TrimSpace(part))
			}
		}
		value, err := json.Marshal(targets)
		if err != nil {
			return fmt.Errorf("encode targets of %q: %w", entry.Source, err)
		}

		bw.Write(key)
		bw.WriteString(": ")
		bw.Write(value)
	}
	bw.WriteString("\n}\n")
	return bw.Flush()
}

// Adjacency converts the network back into an adjacency description that
// Build turns into the same node and edge sets. NodeIDs and neighbor order
// are not preserved, so a rebuilt network may break ties between
// equal-hop routes differently.
func (n *Network) Adjacency() Adjacency {
	return n.adjacency(func(NodeID) bool { return true })
}

// adjacency emits one entry per kept node, in NodeID order. Each edge is
// listed once, under its first endpoint.
func (n *Network) adjacency(keep func(NodeID) bool) Adjacency {
	pos := make(map[NodeID]int)
	var adj Adjacency
	for id := NodeID(0); id < NodeID(n.NumNodes()); id++ {
		if !keep(id) {
			continue
		}
		pos[id] = len(adj)
		adj = append(adj, AdjacencyEntry{Source: n.coords[id].String(), Targets: [][]string{}})
	}

	for _, e := range n.edges {
		if !keep(e[0]) || !keep(e[1]) {
			continue
		}
		to := n.coords[e[1]]
		i := pos[e[0]]
		adj[i].Targets = append(adj[i].Targets, []string{geo.FormatComponent(to.Lat), geo.FormatComponent(to.Lon)})
	}
	return adj
}

// FromOSM converts parsed OSM way segments into an adjacency description.
// Entries follow the order in which source nodes first appear.
func FromOSM(result *osmparser.ParseResult) Adjacency {
	pos := make(map[osm.NodeID]int)
	var adj Adjacency

	coord := func(id osm.NodeID) geo.Coordinate {
		return geo.Coordinate{Lat: result.NodeLat[id], Lon: result.NodeLon[id]}
	}

	for _, e := range result.Edges {
		i, ok := pos[e.FromNodeID]
		if !ok {
			i = len(adj)
			pos[e.FromNodeID] = i
			adj = append(adj, AdjacencyEntry{Source: coord(e.FromNodeID).String()})
		}
		to := coord(e.ToNodeID)
		adj[i].Targets = append(adj[i].Targets, []string{geo.FormatComponent(to.Lat), geo.FormatComponent(to.Lon)})
	}
	return adj
}

// LoadFile reads an adjacency description from path. The format is chosen by
// extension: .json for adjacency JSON, .osm/.xml for OSM XML and .pbf for OSM
// PBF extracts.
func LoadFile(ctx context.Context, path string, opts ...osmparser.ParseOptions) (Adjacency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network source: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ReadAdjacencyJSON(f)
	case ".osm", ".xml":
		result, err := osmparser.ParseXML(ctx, f, opts...)
		if err != nil {
			return nil, err
		}
		return FromOSM(result), nil
	case ".pbf":
		result, err := osmparser.Parse(ctx, f, opts...)
		if err != nil {
			return nil, err
		}
		return FromOSM(result), nil
	default:
		return nil, fmt.Errorf("unsupported network source extension %q", ext)
	}
}
