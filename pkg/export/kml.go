package export

import (
	"bytes"
	"image/color"

	kml "github.com/twpayne/go-kml"

	"kml_router/pkg/geo"
	"kml_router/pkg/graph"
)

const (
	KMLMediaType = "application/vnd.google-earth.kml+xml"
	KMLFilename  = "shortest_path.kml"

	routeName    = "Shortest Path"
	routeStyleID = "route"
)

// KMLExporter renders a KML document with one Point placemark per network
// node and a single styled LineString placemark for the route.
type KMLExporter struct {
	network *graph.Network
	width   float64
	color   color.RGBA
}

// NewKMLExporter validates style and returns a KML exporter for n.
func NewKMLExporter(n *graph.Network, style Style) (*KMLExporter, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	c, _ := ParseKMLColor(style.LineColor)
	return &KMLExporter{network: n, width: style.LineWidth, color: c}, nil
}

// Export renders route. KML coordinates are written lon,lat.
func (e *KMLExporter) Export(route []geo.Coordinate) (*Document, error) {
	lineStyle := kml.SharedStyle(routeStyleID,
		kml.LineStyle(
			kml.Color(e.color),
			kml.Width(e.width),
		),
	)

	coords := e.network.Coords()
	children := make([]kml.Element, 0, len(coords)+3)
	children = append(children, kml.Name(routeName), lineStyle)

	for _, c := range coords {
		children = append(children, kml.Placemark(
			kml.Name(c.String()),
			kml.Point(kml.Coordinates(kmlCoordinate(c))),
		))
	}

	line := make([]kml.Coordinate, len(route))
	for i, c := range route {
		line[i] = kmlCoordinate(c)
	}
	children = append(children, kml.Placemark(
		kml.Name(routeName),
		kml.StyleURL(lineStyle.URL()),
		kml.LineString(kml.Coordinates(line...)),
	))

	var buf bytes.Buffer
	if err := kml.KML(kml.Document(children...)).WriteIndent(&buf, "", "  "); err != nil {
		return nil, &ExportIOError{Op: "encode kml", Err: err}
	}

	return &Document{
		Format:    FormatKML,
		MediaType: KMLMediaType,
		Filename:  KMLFilename,
		Body:      buf.Bytes(),
	}, nil
}

func kmlCoordinate(c geo.Coordinate) kml.Coordinate {
	return kml.Coordinate{Lon: c.Lon, Lat: c.Lat}
}
