// Package export renders a route, together with every node of the network,
// as a downloadable geospatial document.
package export

import (
	"fmt"
	"os"
	"strings"

	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
)

// Format names an export document format.
type Format string

const (
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat parses a format name. An empty name selects KML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatKML:
		return FormatKML, nil
	case FormatGeoJSON:
		return FormatGeoJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Document is a rendered export. It is produced per request and never cached.
type Document struct {
	Format    Format
	MediaType string
	Filename  string // suggested download name
	Body      []byte
}

// Save writes the document to a new temporary file in dir (the system
// temporary directory when dir is empty) and returns its path.
func (d *Document) Save(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "shortest_path-*."+string(d.Format))
	if err != nil {
		return "", &ExportIOError{Op: "create temp file", Err: err}
	}
	if _, err := f.Write(d.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", &ExportIOError{Op: "write temp file", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", &ExportIOError{Op: "close temp file", Err: err}
	}
	return f.Name(), nil
}

// Exporter renders a route into a Document.
type Exporter interface {
	Export(route []geo.Coordinate) (*Document, error)
}

// ExportIOError is returned when a document cannot be serialized or written.
type ExportIOError struct {
	Op  string
	Err error
}

func (e *ExportIOError) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Op, e.Err)
}

func (e *ExportIOError) Unwrap() error { return e.Err }

// New returns the exporter for format over network n.
func New(format Format, n *graph.Network, style Style) (Exporter, error) {
	switch format {
	case FormatKML:
		return NewKMLExporter(n, style)
	case FormatGeoJSON:
		return NewGeoJSONExporter(n, style)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// NewAll returns one exporter per supported format.
func NewAll(n *graph.Network, style Style) (map[Format]Exporter, error) {
	out := make(map[Format]Exporter, 2)
	for _, f := range []Format{FormatKML, FormatGeoJSON} {
		e, err := New(f, n, style)
		if err != nil {
			return nil, err
		}
		out[f] = e
	}
	return out, nil
}
