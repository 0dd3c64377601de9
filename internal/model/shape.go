// Package model defines the data structures shared by the fragment engine.
package model

import (
	"fmt"
	"strings"
)

// ShapeType is the topological kind of a shape.
type ShapeType int

const (
	// ShapeVertex is a point.
	ShapeVertex ShapeType = iota
	// ShapeEdge is a curve segment.
	ShapeEdge
	// ShapeFace is a bounded surface patch.
	ShapeFace
	// ShapeWire is a collection of edges.
	ShapeWire
	// ShapeShell is a collection of faces.
	ShapeShell
	// ShapeSolid is a bounded volume.
	ShapeSolid
	// ShapeCompSolid is a collection of solids sharing faces.
	ShapeCompSolid
	// ShapeCompound is an arbitrary collection of shapes.
	ShapeCompound
)

var shapeTypeNames = [...]string{
	ShapeVertex:    "Vertex",
	ShapeEdge:      "Edge",
	ShapeFace:      "Face",
	ShapeWire:      "Wire",
	ShapeShell:     "Shell",
	ShapeSolid:     "Solid",
	ShapeCompSolid: "CompSolid",
	ShapeCompound:  "Compound",
}

// ElementKinds lists the leaf kinds that SubShapes can extract, lowest dimension first.
var ElementKinds = []ShapeType{ShapeVertex, ShapeEdge, ShapeFace, ShapeSolid}

func (t ShapeType) String() string {
	if t < 0 || int(t) >= len(shapeTypeNames) {
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}

	return shapeTypeNames[t]
}

// Dimension returns 0..3 for typed shapes and -1 for compounds, whose
// dimension depends on their contents.
func (t ShapeType) Dimension() int {
	switch t {
	case ShapeVertex:
		return 0
	case ShapeEdge, ShapeWire:
		return 1
	case ShapeFace, ShapeShell:
		return 2
	case ShapeSolid, ShapeCompSolid:
		return 3
	default:
		return -1
	}
}

// IsContainer reports whether the type is defined by a collection of
// lower-level bits (Wire, Shell, CompSolid, Compound).
func (t ShapeType) IsContainer() bool {
	switch t {
	case ShapeWire, ShapeShell, ShapeCompSolid, ShapeCompound:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether the type is one of Vertex, Edge, Face, Solid.
func (t ShapeType) IsLeaf() bool {
	switch t {
	case ShapeVertex, ShapeEdge, ShapeFace, ShapeSolid:
		return true
	default:
		return false
	}
}

// LeafOfDimension returns the leaf type with the given dimension.
func LeafOfDimension(dim int) (ShapeType, bool) {
	if dim < 0 || dim >= len(ElementKinds) {
		return 0, false
	}

	return ElementKinds[dim], true
}

// ParseShapeType parses a case-insensitive type name.
func ParseShapeType(value string) (ShapeType, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for i, candidate := range shapeTypeNames {
		if strings.ToLower(candidate) == name {
			return ShapeType(i), nil
		}
	}

	return 0, fmt.Errorf("unknown shape type %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (t ShapeType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(shapeTypeNames) {
		return nil, fmt.Errorf("invalid shape type %d", int(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ShapeType) UnmarshalText(text []byte) error {
	parsed, err := ParseShapeType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Shape is an immutable geometric entity owned by a kernel. Callers must not
// mutate a shape once it has been handed to the engine.
type Shape interface {
	// Type returns the topological kind.
	Type() ShapeType
	// ChildShapes returns the immediate children of a container shape.
	ChildShapes() []Shape
	// SubShapes extracts the constituent elements of the given leaf kind.
	SubShapes(kind ShapeType) []Shape
	// HashCode is the kernel content hash; equal shapes have equal hashes.
	HashCode() uint64
	// IsSame is the kernel sameness test.
	IsSame(other Shape) bool
	// Measure is the generalized length, area or volume.
	Measure() float64
}

// FuseResult is the return value of a general fuse: the disjoint pieces and,
// per input in input order, the pieces attributed to that input. Entries may
// be empty for container inputs.
type FuseResult struct {
	Pieces []Shape
	Map    [][]Shape
}
