package domain

import (
	"fmt"
	"iter"
	"log/slog"

	"bopkit.dev/pkg/bopkit/internal/adapter"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// ElementExtractor returns the elements through which a shape connects to
// others.
type ElementExtractor func(s m.Shape) []m.Shape

// ElementsOf extracts the sub-shapes of the given kind.
func ElementsOf(kind m.ShapeType) ElementExtractor {
	return func(s m.Shape) []m.Shape {
		return s.SubShapes(kind)
	}
}

type sharingGroup struct {
	shapes   []m.Shape
	elements *KeySet
}

// GroupBySharing partitions shapes into maximal groups connected through
// chains of shared elements. Elements listed in splitConnections never
// connect anything. A shape touching several groups joins them into one
// group, which moves to the front.
func GroupBySharing(shapes []m.Shape, extract ElementExtractor, splitConnections []m.Shape) [][]m.Shape {
	excluded := NewKeySet(splitConnections...)

	var groups []*sharingGroup

	for _, sh := range shapes {
		elements := NewKeySet()

		for _, element := range extract(sh) {
			if key := ShallowKey(element); !excluded.Has(key) {
				elements.Put(key, struct{}{})
			}
		}

		var connected, rest []*sharingGroup

		for _, group := range groups {
			if sharesAny(group.elements, elements) {
				connected = append(connected, group)
			} else {
				rest = append(rest, group)
			}
		}

		switch len(connected) {
		case 0:
			groups = append(groups, &sharingGroup{shapes: []m.Shape{sh}, elements: elements})
		case 1:
			connected[0].shapes = append(connected[0].shapes, sh)
			addKeys(connected[0].elements, elements)
		default:
			super := &sharingGroup{elements: NewKeySet()}
			for _, group := range connected {
				super.shapes = append(super.shapes, group.shapes...)
				addKeys(super.elements, group.elements)
			}

			super.shapes = append(super.shapes, sh)
			addKeys(super.elements, elements)

			groups = append([]*sharingGroup{super}, rest...)
		}
	}

	out := make([][]m.Shape, len(groups))
	for i, group := range groups {
		out[i] = group.shapes
	}

	return out
}

func sharesAny(a, b *KeySet) bool {
	if a.Len() > b.Len() {
		a, b = b, a
	}

	for _, key := range a.Keys() {
		if b.Has(key) {
			return true
		}
	}

	return false
}

func addKeys(dst, src *KeySet) {
	for _, key := range src.Keys() {
		dst.Put(key, struct{}{})
	}
}

// FindSharedElements returns the elements of a that b also has.
func FindSharedElements(a, b m.Shape, extract ElementExtractor) []m.Shape {
	other := NewKeySet(extract(b)...)

	var shared []m.Shape

	for _, element := range extract(a) {
		if other.Has(ShallowKey(element)) {
			shared = append(shared, element)
		}
	}

	return shared
}

// IsConnected reports whether s shares a boundary element with any of
// others. Curves connect through vertices, surfaces through edges and
// volumes through faces.
func IsConnected(s m.Shape, others []m.Shape) (bool, error) {
	dim, err := DimensionOfShapes(append([]m.Shape{s}, others...))
	if err != nil {
		return false, err
	}

	joint := m.ShapeVertex
	if dim >= 2 {
		joint, _ = m.LeafOfDimension(dim - 1)
	}

	extract := ElementsOf(joint)

	for _, other := range others {
		if len(FindSharedElements(s, other, extract)) > 0 {
			return true, nil
		}
	}

	return false, nil
}

// CompoundLeaves yields the non-compound shapes nested in s, depth first.
// A non-compound s yields itself.
func CompoundLeaves(s m.Shape) iter.Seq[m.Shape] {
	return func(yield func(m.Shape) bool) {
		stack := []m.Shape{s}

		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if current.Type() != m.ShapeCompound {
				if !yield(current) {
					return
				}

				continue
			}

			children := current.ChildShapes()
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

func flattenCompounds(shapes []m.Shape) []m.Shape {
	var out []m.Shape

	for _, s := range shapes {
		for leaf := range CompoundLeaves(s) {
			out = append(out, leaf)
		}
	}

	return out
}

// DimensionOfShapes returns the common dimension of shapes, looking through
// compounds. It returns -1 when there is nothing to measure.
func DimensionOfShapes(shapes []m.Shape) (int, error) {
	dim, first := -1, -1

	var firstType m.ShapeType

	for i, s := range shapes {
		for leaf := range CompoundLeaves(s) {
			d := leaf.Type().Dimension()

			switch {
			case dim == -1:
				dim, first, firstType = d, i, leaf.Type()
			case d != dim:
				return -1, fuseError("dimension", ErrDimensionMismatch, []int{first, i}, firstType, leaf.Type())
			}
		}
	}

	return dim, nil
}

// RemoveDuplicates drops shapes identical to an earlier one.
func RemoveDuplicates(shapes []m.Shape) []m.Shape {
	seen := NewKeySet()
	out := make([]m.Shape, 0, len(shapes))

	for _, s := range shapes {
		if seen.Put(ShallowKey(s), struct{}{}) {
			out = append(out, s)
		}
	}

	return out
}

// MergeOptions controls MergeShapes.
type MergeOptions struct {
	// Single assumes every element touches and builds one shape without grouping.
	Single bool
	// SplitConnections lists joints that must not connect groups.
	SplitConnections []m.Shape
	// CompSolid builds compsolids instead of fused solids.
	CompSolid bool
}

// ShapeMerger reassembles loose shapes into connected shapes.
type ShapeMerger interface {
	MergeShapes(shapes []m.Shape, opts MergeOptions) (m.Shape, error)
}

type shapeMerger struct {
	kernel adapter.Kernel
}

// NewShapeMerger creates a ShapeMerger that builds shapes with kernel.
func NewShapeMerger(kernel adapter.Kernel) ShapeMerger {
	return &shapeMerger{kernel: kernel}
}

// MergeShapes merges shapes by dimension: vertices into a compound of unique
// vertices, edges into wires, faces into shells, solids into solids or
// compsolids. Unless Single is set the result is a compound with one shape
// per connected group.
func (sm *shapeMerger) MergeShapes(shapes []m.Shape, opts MergeOptions) (m.Shape, error) {
	leaves := flattenCompounds(shapes)
	if len(leaves) == 0 {
		return sm.kernel.MakeCompound(nil)
	}

	dim, err := DimensionOfShapes(leaves)
	if err != nil {
		slog.Error("Failed to merge shapes", "error", err)
		return nil, fmt.Errorf("merge shapes: %w", err)
	}

	switch dim {
	case 0:
		return sm.mergeVertices(leaves)
	case 1:
		return sm.mergeWires(leaves, opts)
	case 2:
		return sm.mergeShells(leaves, opts)
	case 3:
		return sm.mergeSolids(leaves, opts)
	}

	return nil, fuseError("merge shapes", ErrUnsupportedDimension, nil)
}

func (sm *shapeMerger) mergeVertices(vertices []m.Shape) (m.Shape, error) {
	return sm.kernel.MakeCompound(RemoveDuplicates(vertices))
}

func (sm *shapeMerger) mergeWires(shapes []m.Shape, opts MergeOptions) (m.Shape, error) {
	return sm.mergeGrouped(shapes, m.ShapeEdge, m.ShapeVertex, sm.kernel.MakeWire, opts)
}

func (sm *shapeMerger) mergeShells(shapes []m.Shape, opts MergeOptions) (m.Shape, error) {
	return sm.mergeGrouped(shapes, m.ShapeFace, m.ShapeEdge, sm.kernel.MakeShell, opts)
}

func (sm *shapeMerger) mergeSolids(shapes []m.Shape, opts MergeOptions) (m.Shape, error) {
	build := sm.kernel.MakeSolid
	if opts.CompSolid {
		build = sm.kernel.MakeCompSolid
	}

	return sm.mergeGrouped(shapes, m.ShapeSolid, m.ShapeFace, build, opts)
}

func (sm *shapeMerger) mergeGrouped(
	shapes []m.Shape,
	element, joint m.ShapeType,
	build func([]m.Shape) (m.Shape, error),
	opts MergeOptions,
) (m.Shape, error) {
	var elements []m.Shape
	for _, s := range shapes {
		elements = append(elements, s.SubShapes(element)...)
	}

	elements = RemoveDuplicates(elements)

	if opts.Single {
		merged, err := build(elements)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", element, err)
		}

		return merged, nil
	}

	groups := GroupBySharing(elements, ElementsOf(joint), opts.SplitConnections)
	merged := make([]m.Shape, 0, len(groups))

	for _, group := range groups {
		shape, err := build(group)
		if err != nil {
			return nil, fmt.Errorf("merge %s group: %w", element, err)
		}

		merged = append(merged, shape)
	}

	return sm.kernel.MakeCompound(merged)
}
