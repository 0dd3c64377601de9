package domain

import (
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// Key identifies a shape inside hash-based collections. Shallow keys trust
// the kernel hash and sameness test; deep keys hash the constituent
// vertices, edges and faces and are used for freshly rebuilt shapes.
// Keys of different strategies must not be mixed in one collection.
type Key struct {
	hash        uint64
	shape       m.Shape
	deep        bool
	vertexCount int
}

// ShallowKey identifies a shape by kernel identity.
func ShallowKey(s m.Shape) Key {
	return Key{hash: s.HashCode(), shape: s}
}

// DeepKey identifies a shape by the XOR of the hashes of its vertices, edges
// and faces. Two deep keys are equal when hash, vertex count and type match,
// which tolerates rare collisions.
func DeepKey(s m.Shape) Key {
	var hash uint64

	vertices := s.SubShapes(m.ShapeVertex)
	for _, sub := range vertices {
		hash ^= sub.HashCode()
	}

	for _, kind := range []m.ShapeType{m.ShapeEdge, m.ShapeFace} {
		for _, sub := range s.SubShapes(kind) {
			hash ^= sub.HashCode()
		}
	}

	return Key{hash: hash, shape: s, deep: true, vertexCount: len(vertices)}
}

// Hash returns the bucket hash.
func (k Key) Hash() uint64 {
	return k.hash
}

// Shape returns the shape the key was computed from.
func (k Key) Shape() m.Shape {
	return k.shape
}

// Equal reports whether two keys identify the same shape.
func (k Key) Equal(other Key) bool {
	if k.hash != other.hash {
		return false
	}

	if k.deep {
		return k.vertexCount == other.vertexCount && k.shape.Type() == other.shape.Type()
	}

	return k.shape.IsSame(other.shape)
}

type keyEntry[V any] struct {
	key   Key
	value V
}

// KeyMap is a map keyed by shape identity. Entries keep insertion order.
type KeyMap[V any] struct {
	buckets map[uint64][]int
	entries []keyEntry[V]
}

// NewKeyMap creates an empty KeyMap.
func NewKeyMap[V any]() *KeyMap[V] {
	return &KeyMap[V]{buckets: make(map[uint64][]int)}
}

func (km *KeyMap[V]) find(key Key) int {
	for _, i := range km.buckets[key.hash] {
		if km.entries[i].key.Equal(key) {
			return i
		}
	}

	return -1
}

// Get returns the value stored for key.
func (km *KeyMap[V]) Get(key Key) (V, bool) {
	if i := km.find(key); i >= 0 {
		return km.entries[i].value, true
	}

	var zero V

	return zero, false
}

// Has reports whether key is present.
func (km *KeyMap[V]) Has(key Key) bool {
	return km.find(key) >= 0
}

// Put stores value under key and reports whether the key was new.
func (km *KeyMap[V]) Put(key Key, value V) bool {
	if i := km.find(key); i >= 0 {
		km.entries[i].value = value
		return false
	}

	km.buckets[key.hash] = append(km.buckets[key.hash], len(km.entries))
	km.entries = append(km.entries, keyEntry[V]{key: key, value: value})

	return true
}

// Len returns the number of entries.
func (km *KeyMap[V]) Len() int {
	return len(km.entries)
}

// Keys returns the keys in insertion order.
func (km *KeyMap[V]) Keys() []Key {
	keys := make([]Key, len(km.entries))
	for i, entry := range km.entries {
		keys[i] = entry.key
	}

	return keys
}

// KeySet is a set of shape identities.
type KeySet = KeyMap[struct{}]

// NewKeySet creates a set holding the shallow keys of shapes.
func NewKeySet(shapes ...m.Shape) *KeySet {
	set := NewKeyMap[struct{}]()
	for _, s := range shapes {
		set.Put(ShallowKey(s), struct{}{})
	}

	return set
}
