package geo

import (
	"math"
	"strconv"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want float64
	}{
		{
			name: "Same point",
			a:    Coordinate{Lat: 1.3521, Lon: 103.8198},
			b:    Coordinate{Lat: 1.3521, Lon: 103.8198},
			want: 0,
		},
		{
			name: "3-4-5 triangle",
			a:    Coordinate{Lat: 0, Lon: 0},
			b:    Coordinate{Lat: 3, Lon: 4},
			want: 5,
		},
		{
			name: "Along longitude only",
			a:    Coordinate{Lat: 0, Lon: 1.9},
			b:    Coordinate{Lat: 0, Lon: 2},
			want: 0.1,
		},
		{
			name: "Negative coordinates",
			a:    Coordinate{Lat: -1, Lon: -1},
			b:    Coordinate{Lat: 1, Lon: 1},
			want: math.Sqrt(8),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinate{Lat: 0.1, Lon: 0.1}
	b := Coordinate{Lat: 0, Lon: 1.9}
	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance is not symmetric: %v vs %v", Distance(a, b), Distance(b, a))
	}
}

func TestDistanceMatchesFormula(t *testing.T) {
	// The planar distance must equal sqrt(dLat^2 + dLon^2) exactly.
	a := Coordinate{Lat: 1.300, Lon: 103.800}
	b := Coordinate{Lat: 1.301, Lon: 103.802}
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	want := math.Sqrt(dLat*dLat + dLon*dLon)
	if got := Distance(a, b); got != want {
		t.Errorf("Distance = %v, want %v", got, want)
	}
}

func TestPointRoundTrip(t *testing.T) {
	c := Coordinate{Lat: 1.25, Lon: 103.5}
	p := c.Point()
	if p[0] != 103.5 || p[1] != 1.25 {
		t.Fatalf("Point = %v, want [103.5 1.25]", p)
	}
	if FromPoint(p) != c {
		t.Errorf("FromPoint(Point()) = %v, want %v", FromPoint(p), c)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want string
	}{
		{Coordinate{Lat: 0, Lon: 1}, "(0, 1)"},
		{Coordinate{Lat: 1.5, Lon: -2.25}, "(1.5, -2.25)"},
		{Coordinate{Lat: 0.1, Lon: 103.85}, "(0.1, 103.85)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatComponentLossless(t *testing.T) {
	for _, v := range []float64{0.1, 1.0 / 3, 103.851349, -0.000001, 1e-7} {
		got, err := strconv.ParseFloat(FormatComponent(v), 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q): %v", FormatComponent(v), err)
		}
		if got != v {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !(Coordinate{Lat: 1, Lon: 2}).IsFinite() {
		t.Error("finite coordinate reported as non-finite")
	}
	if (Coordinate{Lat: math.NaN(), Lon: 2}).IsFinite() {
		t.Error("NaN latitude reported as finite")
	}
	if (Coordinate{Lat: 1, Lon: math.Inf(-1)}).IsFinite() {
		t.Error("-Inf longitude reported as finite")
	}
}

func TestBounds(t *testing.T) {
	b := Bounds([]Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 2}, {Lat: 10, Lon: 10}, {Lat: -1, Lon: 1}})
	if b.Min[0] != 0 || b.Min[1] != -1 || b.Max[0] != 10 || b.Max[1] != 10 {
		t.Errorf("Bounds = %v, want min [0 -1] max [10 10]", b)
	}

	empty := Bounds(nil)
	if !empty.IsZero() {
		t.Errorf("Bounds(nil) = %v, want zero bound", empty)
	}
}
