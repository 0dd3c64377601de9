package domain

import (
	"slices"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// FragmentBuilder accumulates pieces for a rebuilt index. Pieces are
// deduplicated by deep identity, since rebuilt shapes carry no stable
// kernel identity; compounds are always appended.
type FragmentBuilder struct {
	pieces         []m.Shape
	keys           *KeyMap[int]
	piecesOfSource [][]int
}

// NewFragmentBuilder creates a builder for an index over sourceCount inputs.
func NewFragmentBuilder(sourceCount int) *FragmentBuilder {
	return &FragmentBuilder{
		keys:           NewKeyMap[int](),
		piecesOfSource: make([][]int, sourceCount),
	}
}

// AddPiece attributes piece to sources and reports whether it was new.
// A piece already present only gains the extra sources.
func (b *FragmentBuilder) AddPiece(piece m.Shape, sources []int) bool {
	index, added := len(b.pieces), true

	if piece.Type() != m.ShapeCompound {
		key := DeepKey(piece)
		if existing, ok := b.keys.Get(key); ok {
			index, added = existing, false
		} else {
			b.keys.Put(key, index)
		}
	}

	if added {
		b.pieces = append(b.pieces, piece)
	}

	for _, source := range sources {
		if !slices.Contains(b.piecesOfSource[source], index) {
			b.piecesOfSource[source] = append(b.piecesOfSource[source], index)
		}
	}

	return added
}

// Len returns the number of pieces.
func (b *FragmentBuilder) Len() int {
	return len(b.pieces)
}

// Result returns the accumulated pieces and correspondence.
func (b *FragmentBuilder) Result() m.FuseResult {
	result := m.FuseResult{
		Pieces: slices.Clone(b.pieces),
		Map:    make([][]m.Shape, len(b.piecesOfSource)),
	}

	for source, indices := range b.piecesOfSource {
		for _, index := range indices {
			result.Map[source] = append(result.Map[source], b.pieces[index])
		}
	}

	return result
}
