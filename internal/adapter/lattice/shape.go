package lattice

import (
	"fmt"
	"slices"
	"sync"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// shape is a lattice shape. Leaves own a sorted set of top-dimension cells,
// containers own a deduplicated list of children.
type shape struct {
	kind     m.ShapeType
	cells    []Cell
	children []m.Shape
	hash     uint64

	mu   sync.Mutex
	subs map[m.ShapeType][]m.Shape
}

var _ m.Shape = (*shape)(nil)

func newLeaf(kind m.ShapeType, cells []Cell) *shape {
	sorted := sortCells(slices.Clone(cells))

	return &shape{
		kind:  kind,
		cells: sorted,
		hash:  fingerprint(kind, sorted, nil),
	}
}

func newContainer(kind m.ShapeType, children []m.Shape) *shape {
	unique := dedupe(children)

	return &shape{
		kind:     kind,
		children: unique,
		hash:     fingerprint(kind, nil, unique),
	}
}

func (s *shape) Type() m.ShapeType {
	return s.kind
}

func (s *shape) ChildShapes() []m.Shape {
	return slices.Clone(s.children)
}

func (s *shape) HashCode() uint64 {
	return s.hash
}

func (s *shape) IsSame(other m.Shape) bool {
	o, ok := other.(*shape)
	if !ok || o.kind != s.kind || o.hash != s.hash {
		return false
	}

	if s == o {
		return true
	}

	if s.kind.IsLeaf() {
		return slices.Equal(s.cells, o.cells)
	}

	if len(s.children) != len(o.children) {
		return false
	}

	for _, child := range s.children {
		if !containsSame(o.children, child) {
			return false
		}
	}

	return true
}

// SubShapes returns the distinct sub-shapes of the given leaf kind. Results
// are cached per kind.
func (s *shape) SubShapes(kind m.ShapeType) []m.Shape {
	if !kind.IsLeaf() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.subs[kind]; ok {
		return slices.Clone(cached)
	}

	var out []m.Shape

	if s.kind.IsLeaf() {
		out = s.leafSubShapes(kind)
	} else {
		var all []m.Shape
		for _, child := range s.children {
			all = append(all, child.SubShapes(kind)...)
		}

		out = dedupe(all)
	}

	if s.subs == nil {
		s.subs = make(map[m.ShapeType][]m.Shape)
	}

	s.subs[kind] = out

	return slices.Clone(out)
}

func (s *shape) leafSubShapes(kind m.ShapeType) []m.Shape {
	dim := kind.Dimension()
	top := s.kind.Dimension()

	switch {
	case dim == top:
		return []m.Shape{s}
	case dim > top:
		return nil
	}

	cells := closure(s.cells, dim)
	out := make([]m.Shape, len(cells))

	for i, cell := range cells {
		out[i] = newLeaf(kind, []Cell{cell})
	}

	return out
}

// Measure counts the distinct unit cells of the highest dimension present.
// Vertices measure zero.
func (s *shape) Measure() float64 {
	byDim := cellsByDimension(s)

	for dim := 3; dim > 0; dim-- {
		if n := len(byDim[dim]); n > 0 {
			return float64(n)
		}
	}

	return 0
}

func (s *shape) String() string {
	if s.kind.IsLeaf() {
		return fmt.Sprintf("%s(%d cells)", s.kind, len(s.cells))
	}

	return fmt.Sprintf("%s(%d children)", s.kind, len(s.children))
}

// leaves returns the leaf descendants of s, s itself when it is a leaf.
func (s *shape) leaves() []*shape {
	if s.kind.IsLeaf() {
		return []*shape{s}
	}

	var out []*shape

	stack := []*shape{s}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := len(current.children) - 1; i >= 0; i-- {
			child, ok := current.children[i].(*shape)
			if !ok {
				continue
			}

			if child.kind.IsLeaf() {
				out = append(out, child)
			} else {
				stack = append(stack, child)
			}
		}
	}

	return out
}

// cellsByDimension collects the distinct top cells of every leaf
// descendant, keyed by cell dimension.
func cellsByDimension(s *shape) map[int]map[Cell]struct{} {
	out := make(map[int]map[Cell]struct{})

	for _, leaf := range s.leaves() {
		dim := leaf.kind.Dimension()
		if out[dim] == nil {
			out[dim] = make(map[Cell]struct{})
		}

		for _, cell := range leaf.cells {
			out[dim][cell] = struct{}{}
		}
	}

	return out
}

// uniqueCells returns the sorted distinct top cells of every leaf descendant.
func uniqueCells(s *shape) []Cell {
	var cells []Cell
	for _, leaf := range s.leaves() {
		cells = append(cells, leaf.cells...)
	}

	return sortCells(cells)
}

func containsSame(shapes []m.Shape, target m.Shape) bool {
	for _, candidate := range shapes {
		if candidate.IsSame(target) {
			return true
		}
	}

	return false
}

func dedupe(shapes []m.Shape) []m.Shape {
	buckets := make(map[uint64][]m.Shape, len(shapes))
	out := make([]m.Shape, 0, len(shapes))

	for _, sh := range shapes {
		hash := sh.HashCode()
		if containsSame(buckets[hash], sh) {
			continue
		}

		buckets[hash] = append(buckets[hash], sh)
		out = append(out, sh)
	}

	return out
}
