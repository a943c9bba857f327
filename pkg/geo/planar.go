package geo

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Coordinate is a latitude/longitude pair. Two coordinates name the same
// network node only when both components are numerically equal.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Point returns the coordinate as an orb.Point, which is ordered [lon, lat].
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// FromPoint converts an orb.Point back to a Coordinate.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

// IsFinite reports whether both components are finite numbers.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}

// String renders the coordinate as "(lat, lon)" using the shortest decimal
// form that parses back to the same float64 values.
func (c Coordinate) String() string {
	return "(" + FormatComponent(c.Lat) + ", " + FormatComponent(c.Lon) + ")"
}

// FormatComponent formats a single coordinate component losslessly.
func FormatComponent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Distance returns the planar Euclidean distance between a and b, treating
// latitude and longitude as a flat plane. This is not a geodesic distance;
// it is only meaningful for comparing candidates on small networks.
func Distance(a, b Coordinate) float64 {
	return planar.Distance(a.Point(), b.Point())
}

// Bounds returns the bounding box of the given coordinates.
// An empty input yields the zero bound.
func Bounds(coords []Coordinate) orb.Bound {
	if len(coords) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, len(coords))
	for i, c := range coords {
		mp[i] = c.Point()
	}
	return mp.Bound()
}
