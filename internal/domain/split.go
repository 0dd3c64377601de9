package domain

import (
	"fmt"
	"log/slog"
	"slices"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// splitKind names the bits of a composite and the joints between them.
type splitKind struct {
	bit   m.ShapeType
	joint m.ShapeType
}

var splitKinds = map[m.ShapeType]splitKind{
	m.ShapeWire:      {bit: m.ShapeEdge, joint: m.ShapeVertex},
	m.ShapeShell:     {bit: m.ShapeFace, joint: m.ShapeEdge},
	m.ShapeCompSolid: {bit: m.ShapeSolid, joint: m.ShapeFace},
}

// SplitComposite cuts a wire, shell or compsolid piece at its split points:
// joints shared by several inputs next to a bit with a lower overlap count.
// Compound pieces have their nested composites split and are rebuilt around
// the parts. Anything else, or a piece that stays in one group, is returned
// unchanged. A shape that is not a piece of idx is ErrNotFound.
func (idx *FuseIndex) SplitComposite(piece m.Shape) ([]m.Shape, error) {
	if _, err := idx.IndexOfPiece(piece); err != nil {
		return nil, err
	}

	return idx.splitComposite(piece)
}

func (idx *FuseIndex) splitComposite(piece m.Shape) ([]m.Shape, error) {
	if piece.Type() == m.ShapeCompound {
		return idx.splitCompound(piece)
	}

	kinds, ok := splitKinds[piece.Type()]
	if !ok {
		return []m.Shape{piece}, nil
	}

	bits := piece.SubShapes(kinds.bit)
	points := idx.splitPoints(bits, kinds)

	if len(points) == 0 {
		return []m.Shape{piece}, nil
	}

	merged, err := idx.merger.MergeShapes(bits, MergeOptions{SplitConnections: points, CompSolid: true})
	if err != nil {
		slog.Error("Failed to regroup composite bits", "type", piece.Type(), "error", err)
		return nil, fmt.Errorf("split %s: %w", piece.Type(), err)
	}

	parts := merged.ChildShapes()
	if len(parts) <= 1 {
		return []m.Shape{piece}, nil
	}

	slog.Debug("Split composite piece", "type", piece.Type(), "parts", len(parts), "splitPoints", len(points))

	return parts, nil
}

func (idx *FuseIndex) splitCompound(piece m.Shape) ([]m.Shape, error) {
	var parts []m.Shape

	changed := false

	for _, child := range piece.ChildShapes() {
		split, err := idx.splitComposite(child)
		if err != nil {
			return nil, err
		}

		if len(split) != 1 || !split[0].IsSame(child) {
			changed = true
		}

		parts = append(parts, split...)
	}

	if !changed {
		return []m.Shape{piece}, nil
	}

	rebuilt, err := idx.kernel.MakeCompound(parts)
	if err != nil {
		return nil, fmt.Errorf("rebuild compound: %w", err)
	}

	return []m.Shape{rebuilt}, nil
}

// splitPoints returns the joints of bits that carry more input history than
// some bit beside them. Incident bits are looked up across every piece.
func (idx *FuseIndex) splitPoints(bits []m.Shape, kinds splitKind) []m.Shape {
	incident := idx.bitsByJoint(kinds)
	seen := NewKeySet()

	var points []m.Shape

	for _, bit := range bits {
		for _, joint := range bit.SubShapes(kinds.joint) {
			key := ShallowKey(joint)
			if !seen.Put(key, struct{}{}) {
				continue
			}

			count := len(idx.ElementSources(joint))
			if count <= 1 {
				continue
			}

			neighbours, _ := incident.Get(key)
			if slices.ContainsFunc(neighbours, func(other m.Shape) bool {
				return len(idx.ElementSources(other)) < count
			}) {
				points = append(points, joint)
			}
		}
	}

	return points
}

func (idx *FuseIndex) bitsByJoint(kinds splitKind) *KeyMap[[]m.Shape] {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if cached, ok := idx.jointBits[kinds.bit]; ok {
		return cached
	}

	out := NewKeyMap[[]m.Shape]()

	for _, piece := range idx.pieces {
		for _, bit := range piece.SubShapes(kinds.bit) {
			for _, joint := range bit.SubShapes(kinds.joint) {
				key := ShallowKey(joint)
				list, _ := out.Get(key)

				if !slices.ContainsFunc(list, bit.IsSame) {
					out.Put(key, append(list, bit))
				}
			}
		}
	}

	if idx.jointBits == nil {
		idx.jointBits = make(map[m.ShapeType]*KeyMap[[]m.Shape])
	}

	idx.jointBits[kinds.bit] = out

	return out
}

// SplitComposites splits every composite and compound piece and returns the
// rebuilt index, or idx itself when nothing was split.
func (idx *FuseIndex) SplitComposites() (*FuseIndex, error) {
	return idx.SplitPieces(idx.pieces)
}

// SplitPieces splits the given pieces and returns the rebuilt index, or idx
// itself when nothing was split.
func (idx *FuseIndex) SplitPieces(targets []m.Shape) (*FuseIndex, error) {
	wanted := NewKeySet()

	for _, target := range targets {
		if _, err := idx.IndexOfPiece(target); err != nil {
			return nil, err
		}

		wanted.Put(ShallowKey(target), struct{}{})
	}

	builder := NewFragmentBuilder(len(idx.sources))
	changed := false

	for j, piece := range idx.pieces {
		parts := []m.Shape{piece}

		if wanted.Has(ShallowKey(piece)) {
			split, err := idx.splitComposite(piece)
			if err != nil {
				return nil, err
			}

			if len(split) != 1 || !split[0].IsSame(piece) {
				changed = true
			}

			parts = split
		}

		for _, part := range parts {
			builder.AddPiece(part, idx.sourcesOfPiece[j])
		}
	}

	if !changed {
		return idx, nil
	}

	return idx.rebuild(builder, "split")
}

// ExplodeCompounds replaces every compound piece by its children and
// returns the rebuilt index, or idx itself when there is no compound piece.
func (idx *FuseIndex) ExplodeCompounds() (*FuseIndex, error) {
	if !slices.ContainsFunc(idx.pieces, func(piece m.Shape) bool { return piece.Type() == m.ShapeCompound }) {
		return idx, nil
	}

	builder := NewFragmentBuilder(len(idx.sources))

	for j, piece := range idx.pieces {
		if piece.Type() != m.ShapeCompound {
			builder.AddPiece(piece, idx.sourcesOfPiece[j])
			continue
		}

		for _, child := range piece.ChildShapes() {
			builder.AddPiece(child, idx.sourcesOfPiece[j])
		}
	}

	return idx.rebuild(builder, "explode")
}

func (idx *FuseIndex) rebuild(builder *FragmentBuilder, reason string) (*FuseIndex, error) {
	next, err := buildIndex(idx.kernel, idx.sources, builder.Result(), false)
	if err != nil {
		slog.Error("Failed to rebuild correspondence index", "reason", reason, "error", err)
		return nil, fmt.Errorf("rebuild index after %s: %w", reason, err)
	}

	next.warnings = slices.Clone(idx.warnings)
	indexRebuilds.WithLabelValues(reason).Inc()
	slog.Debug("Rebuilt correspondence index", "reason", reason, "before", len(idx.pieces), "after", len(next.pieces))

	return next, nil
}
