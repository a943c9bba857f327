package export

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Default line style for the exported route.
const (
	DefaultLineWidth = 3
	DefaultLineColor = "7fff0000" // KML aabbggrr: half-transparent blue
)

// Style configures how the route line is drawn.
type Style struct {
	LineWidth float64
	LineColor string // KML aabbggrr hex
}

// DefaultStyle returns the default route style.
func DefaultStyle() Style {
	return Style{LineWidth: DefaultLineWidth, LineColor: DefaultLineColor}
}

// Validate checks the width is positive and the color parses.
func (s Style) Validate() error {
	if s.LineWidth <= 0 {
		return fmt.Errorf("line width must be positive, got %v", s.LineWidth)
	}
	if _, err := ParseKMLColor(s.LineColor); err != nil {
		return err
	}
	return nil
}

// ParseKMLColor parses an 8-digit KML color in aabbggrr order.
// The channels are kept as given; they are not alpha-premultiplied.
func ParseKMLColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("line color %q: want 8 hex digits (aabbggrr)", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("line color %q: %w", s, err)
	}
	return color.RGBA{A: b[0], B: b[1], G: b[2], R: b[3]}, nil
}

// webColor returns the "#rrggbb" form and opacity in [0, 1].
func webColor(c color.RGBA) (string, float64) {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), float64(c.A) / 255
}
