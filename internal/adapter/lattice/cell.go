// Package lattice implements the kernel port on an integer grid.
//
// Cells are stored in doubled coordinates: a lattice point (x, y, z) is the
// cell (2x, 2y, 2z), and every odd coordinate spans one unit along its axis.
// The number of odd coordinates is the cell dimension, so vertices, unit
// edges, unit squares and unit cubes share one representation and the
// boundary of a cell is found by stepping ±1 along each odd axis.
package lattice

import (
	"cmp"
	"slices"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// Cell is one unit cell of the cubical complex, in doubled coordinates.
type Cell [3]int32

func pointCell(p m.Point) Cell {
	return Cell{int32(2 * p[0]), int32(2 * p[1]), int32(2 * p[2])}
}

// Dimension returns the number of odd coordinates.
func (c Cell) Dimension() int {
	dim := 0
	for _, v := range c {
		if v&1 != 0 {
			dim++
		}
	}

	return dim
}

// Boundary returns the cells of one dimension lower bounding c.
func (c Cell) Boundary() []Cell {
	var out []Cell

	for axis, v := range c {
		if v&1 == 0 {
			continue
		}

		lo, hi := c, c
		lo[axis]--
		hi[axis]++
		out = append(out, lo, hi)
	}

	return out
}

func compareCells(a, b Cell) int {
	for axis := range a {
		if c := cmp.Compare(a[axis], b[axis]); c != 0 {
			return c
		}
	}

	return 0
}

func sortCells(cells []Cell) []Cell {
	slices.SortFunc(cells, compareCells)
	return slices.Compact(cells)
}

// closure returns the sorted cells of dimension dim that bound the given
// same-dimension cells.
func closure(cells []Cell, dim int) []Cell {
	if len(cells) == 0 {
		return nil
	}

	top := cells[0].Dimension()
	if dim > top {
		return nil
	}

	current := slices.Clone(cells)
	for level := top; level > dim; level-- {
		next := make(map[Cell]struct{}, len(current)*2)
		for _, cell := range current {
			for _, b := range cell.Boundary() {
				next[b] = struct{}{}
			}
		}

		current = current[:0]
		for cell := range next {
			current = append(current, cell)
		}
	}

	return sortCells(current)
}

// components partitions sorted same-dimension cells into groups connected
// through shared boundary cells. Vertices never connect.
func components(cells []Cell) [][]Cell {
	if len(cells) == 0 {
		return nil
	}

	if cells[0].Dimension() == 0 {
		out := make([][]Cell, len(cells))
		for i, cell := range cells {
			out[i] = []Cell{cell}
		}

		return out
	}

	byBoundary := make(map[Cell][]int)
	for i, cell := range cells {
		for _, b := range cell.Boundary() {
			byBoundary[b] = append(byBoundary[b], i)
		}
	}

	seen := make([]bool, len(cells))

	var out [][]Cell

	for start := range cells {
		if seen[start] {
			continue
		}

		seen[start] = true
		queue := []int{start}
		group := []Cell{}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			group = append(group, cells[current])

			for _, b := range cells[current].Boundary() {
				for _, next := range byBoundary[b] {
					if !seen[next] {
						seen[next] = true
						queue = append(queue, next)
					}
				}
			}
		}

		out = append(out, sortCells(group))
	}

	return out
}
