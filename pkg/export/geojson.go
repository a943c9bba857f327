package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
)

const (
	GeoJSONMediaType = "application/geo+json"
	GeoJSONFilename  = "shortest_path.geojson"
)

// GeoJSONExporter renders a FeatureCollection with one Point feature per
// network node and one LineString feature for the route. Line styling uses
// the simplestyle property names.
type GeoJSONExporter struct {
	network *graph.Network
	width   float64
	stroke  string
	opacity float64
}

// NewGeoJSONExporter validates style and returns a GeoJSON exporter for n.
func NewGeoJSONExporter(n *graph.Network, style Style) (*GeoJSONExporter, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	c, _ := ParseKMLColor(style.LineColor)
	stroke, opacity := webColor(c)
	return &GeoJSONExporter{network: n, width: style.LineWidth, stroke: stroke, opacity: opacity}, nil
}

// Export renders route.
func (e *GeoJSONExporter) Export(route []geo.Coordinate) (*Document, error) {
	fc := geojson.NewFeatureCollection()

	for _, c := range e.network.Coords() {
		f := geojson.NewFeature(c.Point())
		f.Properties["name"] = c.String()
		fc.Append(f)
	}

	ls := make(orb.LineString, len(route))
	for i, c := range route {
		ls[i] = c.Point()
	}
	line := geojson.NewFeature(ls)
	line.Properties["name"] = routeName
	line.Properties["stroke"] = e.stroke
	line.Properties["stroke-width"] = e.width
	line.Properties["stroke-opacity"] = e.opacity
	fc.Append(line)

	body, err := fc.MarshalJSON()
	if err != nil {
		return nil, &ExportIOError{Op: "encode geojson", Err: err}
	}

	return &Document{
		Format:    FormatGeoJSON,
		MediaType: GeoJSONMediaType,
		Filename:  GeoJSONFilename,
		Body:      body,
	}, nil
}
