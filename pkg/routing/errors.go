package routing

import (
	"errors"
	"fmt"

	"kml_router/pkg/geo"
)

// ErrNoRoute is matched by every *NoRouteError.
var ErrNoRoute = errors.New("no route found")

// ErrUnsupportedFormat is returned when a query asks for a document format
// the engine has no exporter for.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// UnknownNodeError is returned when a route endpoint is not a registered node.
type UnknownNodeError struct {
	Coord geo.Coordinate
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %s", e.Coord)
}

// NoRouteError is returned when the endpoints are not connected.
type NoRouteError struct {
	From, To geo.Coordinate
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route found from %s to %s", e.From, e.To)
}

func (e *NoRouteError) Is(target error) bool { return target == ErrNoRoute }
