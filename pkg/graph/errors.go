package graph

import (
	"errors"
	"fmt"
)

// ErrEmptyNetwork is returned when a network has no nodes to route over.
var ErrEmptyNetwork = errors.New("network has no nodes")

// MalformedNodeError is returned when an adjacency entry cannot be parsed
// into two finite numeric coordinates.
type MalformedNodeError struct {
	Value  string // offending text as it appeared in the source
	Reason string
	Err    error // underlying parse error, if any
}

func (e *MalformedNodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed node %q: %s: %v", e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed node %q: %s", e.Value, e.Reason)
}

func (e *MalformedNodeError) Unwrap() error { return e.Err }
