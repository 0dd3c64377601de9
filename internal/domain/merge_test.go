package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

func TestGroupBySharing(t *testing.T) {
	k := newKernel()
	a := xBox(t, k, 0, 1)
	b := xBox(t, k, 1, 2)
	c := xBox(t, k, 5, 6)
	d := xBox(t, k, 6, 7)

	orders := map[string][]m.Shape{
		"in order":    {a, b, c, d},
		"interleaved": {a, c, b, d},
		"reversed":    {d, c, b, a},
		"split pairs": {c, a, d, b},
	}

	for name, shapes := range orders {
		t.Run(name, func(t *testing.T) {
			groups := GroupBySharing(shapes, ElementsOf(m.ShapeFace), nil)
			require.Len(t, groups, 2)

			for _, group := range groups {
				require.Len(t, group, 2)

				set := NewKeySet(group...)
				pairAB := set.Has(ShallowKey(a)) && set.Has(ShallowKey(b))
				pairCD := set.Has(ShallowKey(c)) && set.Has(ShallowKey(d))
				assert.True(t, pairAB || pairCD, "unexpected group %v", measures(group))
			}
		})
	}

	t.Run("bridge joins groups", func(t *testing.T) {
		bridge := xBox(t, k, 2, 5)
		groups := GroupBySharing([]m.Shape{a, c, b, d, bridge}, ElementsOf(m.ShapeFace), nil)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0], 5)
	})

	t.Run("split connections separate touching shapes", func(t *testing.T) {
		shared := FindSharedElements(a, b, ElementsOf(m.ShapeFace))
		require.Len(t, shared, 1)

		groups := GroupBySharing([]m.Shape{a, b}, ElementsOf(m.ShapeFace), shared)
		assert.Len(t, groups, 2)
	})
}

func TestIsConnected(t *testing.T) {
	k := newKernel()
	a := xBox(t, k, 0, 1)
	b := xBox(t, k, 1, 2)
	far := xBox(t, k, 4, 5)

	connected, err := IsConnected(a, []m.Shape{far, b})
	require.NoError(t, err)
	assert.True(t, connected)

	connected, err = IsConnected(a, []m.Shape{far})
	require.NoError(t, err)
	assert.False(t, connected)

	_, err = IsConnected(a, []m.Shape{xWire(t, k, 0, 1)})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDimensionOfShapes(t *testing.T) {
	k := newKernel()

	dim, err := DimensionOfShapes(nil)
	require.NoError(t, err)
	assert.Equal(t, -1, dim)

	nested := build(t, k, compoundSpec(compoundSpec(boxSpec(m.Point{0, 0, 0}, m.Point{1, 1, 1}))))
	dim, err = DimensionOfShapes([]m.Shape{nested, xBox(t, k, 3, 4)})
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	_, err = DimensionOfShapes([]m.Shape{xBox(t, k, 0, 1), xWire(t, k, 0, 1)})

	var fuseErr *FuseError
	require.True(t, errors.As(err, &fuseErr))
	assert.Equal(t, []int{0, 1}, fuseErr.Indices)
	assert.Equal(t, []m.ShapeType{m.ShapeSolid, m.ShapeWire}, fuseErr.Types)
}

func TestCompoundLeaves(t *testing.T) {
	k := newKernel()
	nested := build(t, k, compoundSpec(
		boxSpec(m.Point{0, 0, 0}, m.Point{1, 1, 1}),
		compoundSpec(boxSpec(m.Point{3, 0, 0}, m.Point{5, 1, 1})),
	))

	var leaves []m.Shape
	for leaf := range CompoundLeaves(nested) {
		leaves = append(leaves, leaf)
	}

	assert.Equal(t, []float64{1, 2}, measures(leaves))

	single := xBox(t, k, 0, 1)
	for leaf := range CompoundLeaves(single) {
		assert.Same(t, single, leaf)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	k := newKernel()
	a := xBox(t, k, 0, 1)
	b := xBox(t, k, 1, 2)

	assert.Equal(t, []m.Shape{a, b}, RemoveDuplicates([]m.Shape{a, b, xBox(t, k, 0, 1), b}))
}

func TestShapeMerger_MergeShapes(t *testing.T) {
	k := newKernel()
	merger := NewShapeMerger(k)

	t.Run("touching solids fuse into one", func(t *testing.T) {
		merged, err := merger.MergeShapes([]m.Shape{xBox(t, k, 0, 1), xBox(t, k, 1, 3), xBox(t, k, 5, 6)}, MergeOptions{})
		require.NoError(t, err)
		require.Equal(t, m.ShapeCompound, merged.Type())
		assert.ElementsMatch(t, []float64{3, 1}, measures(merged.ChildShapes()))
	})

	t.Run("compsolid option", func(t *testing.T) {
		merged, err := merger.MergeShapes([]m.Shape{xBox(t, k, 0, 1), xBox(t, k, 1, 2)}, MergeOptions{CompSolid: true})
		require.NoError(t, err)
		require.Len(t, merged.ChildShapes(), 1)
		assert.Equal(t, m.ShapeCompSolid, merged.ChildShapes()[0].Type())
	})

	t.Run("single skips grouping", func(t *testing.T) {
		merged, err := merger.MergeShapes([]m.Shape{xBox(t, k, 0, 1), xBox(t, k, 5, 6)}, MergeOptions{Single: true})
		require.NoError(t, err)
		assert.Equal(t, m.ShapeSolid, merged.Type())
		assert.InDelta(t, 2.0, merged.Measure(), 0)
	})

	t.Run("overlapping wires share edges", func(t *testing.T) {
		merged, err := merger.MergeShapes([]m.Shape{xWire(t, k, 0, 4), xWire(t, k, 2, 6)}, MergeOptions{})
		require.NoError(t, err)
		require.Len(t, merged.ChildShapes(), 1)
		assert.Equal(t, m.ShapeWire, merged.ChildShapes()[0].Type())
		assert.InDelta(t, 6.0, merged.Measure(), 0)
	})

	t.Run("vertices", func(t *testing.T) {
		v := build(t, k, m.ShapeSpec{Type: m.ShapeVertex, At: &m.Point{1, 2, 3}})
		merged, err := merger.MergeShapes([]m.Shape{v, v}, MergeOptions{})
		require.NoError(t, err)
		assert.Len(t, merged.ChildShapes(), 1)
	})

	t.Run("empty input", func(t *testing.T) {
		merged, err := merger.MergeShapes(nil, MergeOptions{})
		require.NoError(t, err)
		assert.Empty(t, merged.ChildShapes())
	})

	t.Run("mixed dimensions", func(t *testing.T) {
		_, err := merger.MergeShapes([]m.Shape{xBox(t, k, 0, 1), xWire(t, k, 0, 1)}, MergeOptions{})
		require.ErrorIs(t, err, ErrDimensionMismatch)
	})
}
