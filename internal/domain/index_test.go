package domain

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

func overlappingBoxes(t *testing.T) (m.Shape, m.Shape) {
	t.Helper()

	k := newKernel()

	return box(t, k, m.Point{0, 0, 0}, m.Point{2, 2, 2}), box(t, k, m.Point{1, 1, 1}, m.Point{3, 3, 3})
}

func correspondence(idx *FuseIndex) [][]int {
	out := make([][]int, len(idx.Sources()))
	for i := range out {
		out[i] = idx.PieceIndicesOfSource(i)
	}

	return out
}

func TestBuildIndex(t *testing.T) {
	k := newKernel()

	t.Run("bijection between pieces and sources", func(t *testing.T) {
		a, b := overlappingBoxes(t)
		result, err := k.GeneralFuse([]m.Shape{a, b})
		require.NoError(t, err)

		idx, err := BuildIndex(k, []m.Shape{a, b}, result)
		require.NoError(t, err)
		require.Len(t, idx.Pieces(), 3)
		assert.Equal(t, 2, idx.LargestOverlapCount())
		assert.Empty(t, idx.Warnings())

		for j, piece := range idx.Pieces() {
			got, err := idx.IndexOfPiece(piece)
			require.NoError(t, err)
			assert.Equal(t, j, got)
		}

		for i, source := range idx.Sources() {
			got, err := idx.IndexOfSource(source)
			require.NoError(t, err)
			assert.Equal(t, i, got)

			for j := range idx.Pieces() {
				inPieces := slices.Contains(idx.PieceIndicesOfSource(i), j)
				inSources := slices.Contains(idx.SourceIndicesOfPiece(j), i)
				assert.Equal(t, inPieces, inSources, "source %d piece %d", i, j)
			}
		}

		pieces, err := idx.PiecesFromSource(a)
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 1}, measures(pieces))

		sources, err := idx.SourcesOfPiece(pieces[1])
		require.NoError(t, err)
		assert.Len(t, sources, 2)
	})

	t.Run("map length", func(t *testing.T) {
		a, b := overlappingBoxes(t)

		_, err := BuildIndex(k, []m.Shape{a, b}, m.FuseResult{Pieces: []m.Shape{a}, Map: [][]m.Shape{{a}}})
		require.ErrorIs(t, err, ErrMapLength)
	})

	t.Run("duplicate fragment", func(t *testing.T) {
		a, _ := overlappingBoxes(t)

		_, err := BuildIndex(k, []m.Shape{a}, m.FuseResult{Pieces: []m.Shape{a, a}, Map: [][]m.Shape{{a}}})
		require.ErrorIs(t, err, ErrDuplicateFragment)

		var fuseErr *FuseError
		require.True(t, errors.As(err, &fuseErr))
		assert.Equal(t, []int{0, 1}, fuseErr.Indices)
	})

	t.Run("duplicate input", func(t *testing.T) {
		a, _ := overlappingBoxes(t)
		result, err := k.GeneralFuse([]m.Shape{a, a})
		require.NoError(t, err)

		_, err = BuildIndex(k, []m.Shape{a, a}, result)
		require.ErrorIs(t, err, ErrDuplicateInput)
	})

	t.Run("unknown piece in map", func(t *testing.T) {
		a, b := overlappingBoxes(t)

		_, err := BuildIndex(k, []m.Shape{a}, m.FuseResult{Pieces: []m.Shape{a}, Map: [][]m.Shape{{b}}})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mixed inputs cannot be repaired", func(t *testing.T) {
		wire := xWire(t, k, 0, 2)
		solid := xBox(t, k, 0, 1)
		result, err := k.GeneralFuse([]m.Shape{wire, solid})
		require.NoError(t, err)

		_, err = BuildIndex(k, []m.Shape{wire, solid}, result)
		require.ErrorIs(t, err, ErrTypeMismatch)

		var fuseErr *FuseError
		require.True(t, errors.As(err, &fuseErr))
		assert.Equal(t, []int{0}, fuseErr.Indices)
		assert.Equal(t, []m.ShapeType{m.ShapeWire}, fuseErr.Types)
	})

	t.Run("containers are repaired positionally", func(t *testing.T) {
		a, b := xWire(t, k, 0, 4), xWire(t, k, 2, 6)
		result, err := k.GeneralFuse([]m.Shape{a, b})
		require.NoError(t, err)
		require.Empty(t, result.Map[0])

		idx, err := BuildIndex(k, []m.Shape{a, b}, result)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{0}, {1}}, correspondence(idx))
		assert.Empty(t, idx.Warnings())

		again, err := BuildIndex(k, idx.Sources(), idx.Result())
		require.NoError(t, err)

		if diff := cmp.Diff(correspondence(idx), correspondence(again)); diff != "" {
			t.Fatalf("repair is not idempotent (-first +second):\n%s", diff)
		}
	})

	t.Run("unrepairable entries become warnings", func(t *testing.T) {
		a, b := xWire(t, k, 0, 4), xWire(t, k, 2, 6)
		result, err := k.GeneralFuse([]m.Shape{a, b})
		require.NoError(t, err)

		result.Pieces = result.Pieces[:1]

		idx, err := BuildIndex(k, []m.Shape{a, b}, result)
		require.NoError(t, err)
		require.Len(t, idx.Warnings(), 1)
		assert.Equal(t, 1, idx.Warnings()[0].Source)
		assert.Equal(t, m.ShapeWire, idx.Warnings()[0].Type)
		assert.Empty(t, idx.PieceIndicesOfSource(1))
	})
}

func TestFuseIndex_Queries(t *testing.T) {
	k := newKernel()
	a, b := overlappingBoxes(t)
	result, err := k.GeneralFuse([]m.Shape{a, b})
	require.NoError(t, err)

	idx, err := BuildIndex(k, []m.Shape{a, b}, result)
	require.NoError(t, err)

	t.Run("unknown shapes", func(t *testing.T) {
		stranger := xBox(t, k, 10, 11)

		_, err := idx.PiecesFromSource(stranger)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = idx.SourcesOfPiece(stranger)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("element sources", func(t *testing.T) {
		corner := build(t, k, m.ShapeSpec{Type: m.ShapeVertex, At: &m.Point{0, 0, 0}})
		assert.Equal(t, []int{0}, idx.ElementSources(corner))

		overlap := box(t, k, m.Point{1, 1, 1}, m.Point{2, 2, 2})
		assert.Equal(t, []int{0, 1}, idx.ElementSources(overlap))

		assert.Empty(t, idx.ElementSources(xBox(t, k, 10, 11)))
	})

	t.Run("summary", func(t *testing.T) {
		summary := idx.Summary([]string{"left"})

		require.Len(t, summary.Sources, 2)
		assert.Equal(t, "left", summary.Sources[0].Name)
		assert.Equal(t, "#1", summary.Sources[1].Name)
		assert.Equal(t, []int{1, 2}, summary.Sources[1].Pieces)
		require.Len(t, summary.Fragments, 3)
		assert.Equal(t, []int{0, 1}, summary.Fragments[1].Sources)
		assert.InDelta(t, 7.0, summary.Fragments[2].Measure, 0)
		assert.Equal(t, 2, summary.LargestOverlap)
	})
}
