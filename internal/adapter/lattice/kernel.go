package lattice

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"bopkit.dev/pkg/bopkit/internal/adapter"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

const (
	// DefaultMaxCells bounds the number of unit cells a single spec may expand to.
	DefaultMaxCells = 1_000_000
	// MaxCoordinate bounds the absolute value of every spec coordinate so that
	// doubled coordinates fit a cell.
	MaxCoordinate = 1<<30 - 1
)

var (
	// ErrForeignShape is returned for shapes built by another kernel.
	ErrForeignShape = errors.New("shape was not created by the lattice kernel")
	// ErrInvalidSpec is returned when a shape spec does not describe a shape.
	ErrInvalidSpec = errors.New("invalid shape spec")
	// ErrWrongKind is returned when a builder receives shapes it cannot assemble.
	ErrWrongKind = errors.New("shape kind not accepted")
	// ErrTooLarge is returned when a spec expands past the cell limit.
	ErrTooLarge = errors.New("shape exceeds the cell limit")
	// ErrNoShapes is returned when an operation receives no input.
	ErrNoShapes = errors.New("no shapes given")
)

// Kernel is an exact kernel on the integer lattice. Like the kernels it
// stands in for, GeneralFuse reports no modified pieces for wire, shell and
// compsolid inputs.
type Kernel struct {
	maxCells int
}

var _ adapter.ShapeKernel = (*Kernel)(nil)

// Option configures a Kernel.
type Option func(*Kernel)

// WithMaxCells sets the cell limit for Build.
func WithMaxCells(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.maxCells = n
		}
	}
}

// NewKernel constructs a lattice kernel.
func NewKernel(opts ...Option) *Kernel {
	k := &Kernel{maxCells: DefaultMaxCells}
	for _, opt := range opts {
		opt(k)
	}

	return k
}

// Build creates the shape described by spec.
func (k *Kernel) Build(spec m.ShapeSpec) (m.Shape, error) {
	switch spec.Type {
	case m.ShapeVertex:
		at := spec.At
		if at == nil {
			at = spec.Min
		}

		if at == nil {
			return nil, fmt.Errorf("%w: vertex %q needs a position", ErrInvalidSpec, spec.Name)
		}

		if err := checkPoint(spec, *at); err != nil {
			return nil, err
		}

		return newLeaf(m.ShapeVertex, []Cell{pointCell(*at)}), nil
	case m.ShapeEdge, m.ShapeFace, m.ShapeSolid:
		return k.buildBox(spec)
	case m.ShapeWire, m.ShapeShell, m.ShapeCompSolid, m.ShapeCompound:
		children := make([]m.Shape, 0, len(spec.Children))

		for _, childSpec := range spec.Children {
			child, err := k.Build(childSpec)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", spec.Type, spec.Name, err)
			}

			children = append(children, child)
		}

		switch spec.Type {
		case m.ShapeWire:
			return k.MakeWire(children)
		case m.ShapeShell:
			return k.MakeShell(children)
		case m.ShapeCompSolid:
			return k.MakeCompSolid(children)
		default:
			return k.MakeCompound(children)
		}
	}

	return nil, fmt.Errorf("%w: unknown shape type %d", ErrInvalidSpec, spec.Type)
}

func (k *Kernel) buildBox(spec m.ShapeSpec) (m.Shape, error) {
	if spec.Min == nil || spec.Max == nil {
		return nil, fmt.Errorf("%w: %s %q needs min and max", ErrInvalidSpec, spec.Type, spec.Name)
	}

	for _, p := range []m.Point{*spec.Min, *spec.Max} {
		if err := checkPoint(spec, p); err != nil {
			return nil, err
		}
	}

	var lo, hi m.Point

	extents, count := 0, 1

	for axis := range lo {
		lo[axis] = min(spec.Min[axis], spec.Max[axis])
		hi[axis] = max(spec.Min[axis], spec.Max[axis])

		span := hi[axis] - lo[axis]
		if span == 0 {
			continue
		}

		if span > k.maxCells/count {
			return nil, fmt.Errorf("%w: %s %q", ErrTooLarge, spec.Type, spec.Name)
		}

		extents++
		count *= span
	}

	if extents != spec.Type.Dimension() {
		return nil, fmt.Errorf("%w: %s %q spans %d axes, want %d",
			ErrInvalidSpec, spec.Type, spec.Name, extents, spec.Type.Dimension())
	}

	axisValues := func(axis int) []int32 {
		if lo[axis] == hi[axis] {
			return []int32{int32(2 * lo[axis])}
		}

		values := make([]int32, 0, hi[axis]-lo[axis])
		for t := lo[axis]; t < hi[axis]; t++ {
			values = append(values, int32(2*t+1))
		}

		return values
	}

	cells := make([]Cell, 0, count)

	for _, x := range axisValues(0) {
		for _, y := range axisValues(1) {
			for _, z := range axisValues(2) {
				cells = append(cells, Cell{x, y, z})
			}
		}
	}

	return newLeaf(spec.Type, cells), nil
}

func checkPoint(spec m.ShapeSpec, p m.Point) error {
	for _, v := range p {
		if v < -MaxCoordinate || v > MaxCoordinate {
			return fmt.Errorf("%w: %s %q coordinate %d outside ±%d",
				ErrInvalidSpec, spec.Type, spec.Name, v, MaxCoordinate)
		}
	}

	return nil
}

// GeneralFuse splits every input at its intersections with the others.
//
// Leaf inputs are cut into the connected components of cells sharing the
// same set of owners. Wire, shell and compsolid inputs come back as one
// fragment each made of unit bits, with an empty map entry. Compound inputs
// come back as one compound fragment mirroring their structure.
func (k *Kernel) GeneralFuse(shapes []m.Shape) (m.FuseResult, error) {
	if len(shapes) == 0 {
		return m.FuseResult{}, ErrNoShapes
	}

	inputs, err := asLattice(shapes)
	if err != nil {
		return m.FuseResult{}, err
	}

	owners := make(map[Cell][]int)

	for i, in := range inputs {
		for _, cell := range uniqueCells(in) {
			owners[cell] = append(owners[cell], i)
		}
	}

	classes := make(map[string][]Cell)

	for cell, own := range owners {
		if !slices.ContainsFunc(own, func(i int) bool { return inputs[i].kind.IsLeaf() }) {
			continue
		}

		key := ownerKey(cell.Dimension(), own)
		classes[key] = append(classes[key], cell)
	}

	var pieces []*shape

	for _, cells := range classes {
		cells = sortCells(cells)
		kind, _ := m.LeafOfDimension(cells[0].Dimension())

		for _, comp := range components(cells) {
			pieces = append(pieces, newLeaf(kind, comp))
		}
	}

	slices.SortFunc(pieces, func(a, b *shape) int {
		if c := a.kind.Dimension() - b.kind.Dimension(); c != 0 {
			return c
		}

		return compareCells(a.cells[0], b.cells[0])
	})

	result := m.FuseResult{Map: make([][]m.Shape, len(inputs))}

	for _, piece := range pieces {
		result.Pieces = append(result.Pieces, piece)

		for _, i := range owners[piece.cells[0]] {
			if inputs[i].kind.IsLeaf() {
				result.Map[i] = append(result.Map[i], piece)
			}
		}
	}

	for _, in := range inputs {
		if !in.kind.IsLeaf() {
			result.Pieces = append(result.Pieces, fragmentOf(in, owners))
		}
	}

	return result, nil
}

// fragmentOf rebuilds a container input from its split content.
func fragmentOf(s *shape, owners map[Cell][]int) *shape {
	if s.kind != m.ShapeCompound {
		cells := uniqueCells(s)
		bits := make([]m.Shape, len(cells))

		for i, cell := range cells {
			kind, _ := m.LeafOfDimension(cell.Dimension())
			bits[i] = newLeaf(kind, []Cell{cell})
		}

		return newContainer(s.kind, bits)
	}

	var parts []m.Shape

	for _, child := range s.children {
		c, ok := child.(*shape)
		if !ok {
			continue
		}

		if !c.kind.IsLeaf() {
			parts = append(parts, fragmentOf(c, owners))
			continue
		}

		classes := make(map[string][]Cell)
		keys := []string{}

		for _, cell := range c.cells {
			key := ownerKey(cell.Dimension(), owners[cell])
			if _, ok := classes[key]; !ok {
				keys = append(keys, key)
			}

			classes[key] = append(classes[key], cell)
		}

		for _, key := range keys {
			for _, comp := range components(classes[key]) {
				parts = append(parts, newLeaf(c.kind, comp))
			}
		}
	}

	return newContainer(m.ShapeCompound, parts)
}

// Cut removes the tool's cells from every leaf of base.
func (k *Kernel) Cut(base, tool m.Shape) (m.Shape, error) {
	inputs, err := asLattice([]m.Shape{base, tool})
	if err != nil {
		return nil, err
	}

	removed := cellsByDimension(inputs[1])

	var parts []m.Shape

	for _, leaf := range inputs[0].leaves() {
		dim := leaf.kind.Dimension()
		remaining := slices.DeleteFunc(slices.Clone(leaf.cells), func(cell Cell) bool {
			_, ok := removed[dim][cell]
			return ok
		})

		for _, comp := range components(remaining) {
			parts = append(parts, newLeaf(leaf.kind, comp))
		}
	}

	return newContainer(m.ShapeCompound, parts), nil
}

// MakeCompound groups shapes into a compound.
func (k *Kernel) MakeCompound(shapes []m.Shape) (m.Shape, error) {
	if _, err := asLattice(shapes); err != nil {
		return nil, err
	}

	return newContainer(m.ShapeCompound, shapes), nil
}

// MakeWire assembles edges into a wire.
func (k *Kernel) MakeWire(edges []m.Shape) (m.Shape, error) {
	return k.makeContainer(m.ShapeWire, m.ShapeEdge, edges)
}

// MakeShell assembles faces into a shell.
func (k *Kernel) MakeShell(faces []m.Shape) (m.Shape, error) {
	return k.makeContainer(m.ShapeShell, m.ShapeFace, faces)
}

// MakeCompSolid assembles solids into a compsolid.
func (k *Kernel) MakeCompSolid(solids []m.Shape) (m.Shape, error) {
	return k.makeContainer(m.ShapeCompSolid, m.ShapeSolid, solids)
}

// MakeSolid fuses solids into a single solid.
func (k *Kernel) MakeSolid(solids []m.Shape) (m.Shape, error) {
	elements, err := k.collect(m.ShapeSolid, solids)
	if err != nil {
		return nil, err
	}

	var cells []Cell
	for _, element := range elements {
		cells = append(cells, element.(*shape).cells...)
	}

	return newLeaf(m.ShapeSolid, cells), nil
}

func (k *Kernel) makeContainer(kind, element m.ShapeType, shapes []m.Shape) (m.Shape, error) {
	elements, err := k.collect(element, shapes)
	if err != nil {
		return nil, fmt.Errorf("make %s: %w", kind, err)
	}

	return newContainer(kind, elements), nil
}

// collect gathers the elements of the given kind from leaves of that kind
// and from containers of the same dimension.
func (k *Kernel) collect(element m.ShapeType, shapes []m.Shape) ([]m.Shape, error) {
	if len(shapes) == 0 {
		return nil, ErrNoShapes
	}

	inputs, err := asLattice(shapes)
	if err != nil {
		return nil, err
	}

	var elements []m.Shape

	for _, in := range inputs {
		if in.kind == m.ShapeCompound || in.kind.Dimension() != element.Dimension() {
			return nil, fmt.Errorf("%w: %s where %s was expected", ErrWrongKind, in.kind, element)
		}

		elements = append(elements, in.SubShapes(element)...)
	}

	return dedupe(elements), nil
}

func asLattice(shapes []m.Shape) ([]*shape, error) {
	out := make([]*shape, len(shapes))

	for i, sh := range shapes {
		s, ok := sh.(*shape)
		if !ok {
			return nil, fmt.Errorf("%w: input %d (%T)", ErrForeignShape, i, sh)
		}

		out[i] = s
	}

	return out, nil
}

func ownerKey(dim int, owners []int) string {
	var b strings.Builder

	b.WriteString(strconv.Itoa(dim))

	for _, i := range owners {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(i))
	}

	return b.String()
}
