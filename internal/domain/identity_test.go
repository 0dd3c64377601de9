package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

func TestShallowKey(t *testing.T) {
	k := newKernel()
	a := xBox(t, k, 0, 1)
	again := xBox(t, k, 0, 1)
	b := xBox(t, k, 1, 2)

	assert.True(t, ShallowKey(a).Equal(ShallowKey(again)))
	assert.False(t, ShallowKey(a).Equal(ShallowKey(b)))
	assert.Same(t, a, ShallowKey(a).Shape())
}

func TestDeepKey(t *testing.T) {
	k := newKernel()

	t.Run("equal content from different paths", func(t *testing.T) {
		first, err := k.MakeWire([]m.Shape{build(t, k, edgeSpec(m.Point{0, 0, 0}, m.Point{2, 0, 0}))})
		require.NoError(t, err)

		second := xWire(t, k, 0, 2)

		assert.True(t, DeepKey(first).Equal(DeepKey(second)))
	})

	t.Run("type is part of the key", func(t *testing.T) {
		edge := build(t, k, edgeSpec(m.Point{0, 0, 0}, m.Point{2, 0, 0}))
		wire := xWire(t, k, 0, 2)

		assert.Equal(t, DeepKey(edge).Hash(), DeepKey(wire).Hash())
		assert.False(t, DeepKey(edge).Equal(DeepKey(wire)))
	})

	t.Run("different content", func(t *testing.T) {
		assert.False(t, DeepKey(xBox(t, k, 0, 1)).Equal(DeepKey(xBox(t, k, 0, 2))))
	})
}

func TestKeyMap(t *testing.T) {
	k := newKernel()
	a := xBox(t, k, 0, 1)
	b := xBox(t, k, 1, 2)

	km := NewKeyMap[int]()
	require.True(t, km.Put(ShallowKey(a), 1))
	require.True(t, km.Put(ShallowKey(b), 2))
	require.False(t, km.Put(ShallowKey(xBox(t, k, 0, 1)), 3))

	value, ok := km.Get(ShallowKey(a))
	require.True(t, ok)
	assert.Equal(t, 3, value)
	assert.Equal(t, 2, km.Len())
	assert.Same(t, a, km.Keys()[0].Shape())

	_, ok = km.Get(ShallowKey(xBox(t, k, 5, 6)))
	assert.False(t, ok)

	set := NewKeySet(a, b, a)
	assert.Equal(t, 2, set.Len())
}
