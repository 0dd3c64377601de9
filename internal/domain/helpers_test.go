package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bopkit.dev/pkg/bopkit/internal/adapter/lattice"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

func newKernel() *lattice.Kernel {
	return lattice.NewKernel()
}

func build(t *testing.T, k *lattice.Kernel, spec m.ShapeSpec) m.Shape {
	t.Helper()

	sh, err := k.Build(spec)
	require.NoError(t, err)

	return sh
}

func boxSpec(lo, hi m.Point) m.ShapeSpec {
	return m.ShapeSpec{Type: m.ShapeSolid, Min: &lo, Max: &hi}
}

func edgeSpec(lo, hi m.Point) m.ShapeSpec {
	return m.ShapeSpec{Type: m.ShapeEdge, Min: &lo, Max: &hi}
}

func wireSpec(children ...m.ShapeSpec) m.ShapeSpec {
	return m.ShapeSpec{Type: m.ShapeWire, Children: children}
}

func compoundSpec(children ...m.ShapeSpec) m.ShapeSpec {
	return m.ShapeSpec{Type: m.ShapeCompound, Children: children}
}

func box(t *testing.T, k *lattice.Kernel, lo, hi m.Point) m.Shape {
	t.Helper()
	return build(t, k, boxSpec(lo, hi))
}

// xBox is a unit-section box spanning [x0, x1] along x.
func xBox(t *testing.T, k *lattice.Kernel, x0, x1 int) m.Shape {
	t.Helper()
	return box(t, k, m.Point{x0, 0, 0}, m.Point{x1, 1, 1})
}

// xWire is a wire made of one edge spanning [x0, x1] along x.
func xWire(t *testing.T, k *lattice.Kernel, x0, x1 int) m.Shape {
	t.Helper()
	return build(t, k, wireSpec(edgeSpec(m.Point{x0, 0, 0}, m.Point{x1, 0, 0})))
}

func measures(shapes []m.Shape) []float64 {
	out := make([]float64, len(shapes))
	for i, s := range shapes {
		out[i] = s.Measure()
	}

	return out
}

func totalMeasure(shapes []m.Shape) float64 {
	total := 0.0
	for _, s := range shapes {
		total += s.Measure()
	}

	return total
}
