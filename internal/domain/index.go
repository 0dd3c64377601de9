package domain

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"bopkit.dev/pkg/bopkit/internal/adapter"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// RepairWarning records an input whose correspondence stayed empty after
// repair. The index is usable but knows nothing about that input's pieces.
type RepairWarning struct {
	Source int
	Type   m.ShapeType
	Reason string
}

func (w RepairWarning) String() string {
	return fmt.Sprintf("input %d (%s): %s", w.Source, w.Type, w.Reason)
}

// FuseIndex is the bidirectional correspondence between the inputs of a
// general fuse and its pieces. It never changes after construction;
// splitting and exploding return a new index.
type FuseIndex struct {
	kernel  adapter.Kernel
	merger  ShapeMerger
	sources []m.Shape
	pieces  []m.Shape

	pieceToIndex   *KeyMap[int]
	sourceToIndex  *KeyMap[int]
	piecesOfSource [][]int
	sourcesOfPiece [][]int
	warnings       []RepairWarning

	elementsOnce    sync.Once
	elementToSource *KeyMap[[]int]

	mu        sync.Mutex
	jointBits map[m.ShapeType]*KeyMap[[]m.Shape]
}

// BuildIndex indexes a general fuse result over sources, repairing empty
// correspondence entries when possible.
func BuildIndex(kernel adapter.Kernel, sources []m.Shape, result m.FuseResult) (*FuseIndex, error) {
	return buildIndex(kernel, sources, result, true)
}

func buildIndex(kernel adapter.Kernel, sources []m.Shape, result m.FuseResult, repair bool) (*FuseIndex, error) {
	if len(result.Map) != len(sources) {
		slog.Error("Correspondence does not match inputs", "inputs", len(sources), "entries", len(result.Map))
		return nil, fuseError("build index", ErrMapLength, nil)
	}

	idx := &FuseIndex{
		kernel:         kernel,
		merger:         NewShapeMerger(kernel),
		sources:        slices.Clone(sources),
		pieces:         slices.Clone(result.Pieces),
		pieceToIndex:   NewKeyMap[int](),
		sourceToIndex:  NewKeyMap[int](),
		piecesOfSource: make([][]int, len(sources)),
		sourcesOfPiece: make([][]int, len(result.Pieces)),
	}

	for i, piece := range idx.pieces {
		key := ShallowKey(piece)
		if j, ok := idx.pieceToIndex.Get(key); ok {
			slog.Error("Duplicate piece in fuse result", "first", j, "second", i, "type", piece.Type())
			return nil, fuseError("build index", ErrDuplicateFragment, []int{j, i}, piece.Type())
		}

		idx.pieceToIndex.Put(key, i)
	}

	for i, source := range idx.sources {
		if source.Type() == m.ShapeCompound {
			slog.Warn("Compound input is known to cause problems", "input", i)
		}

		key := ShallowKey(source)
		if j, ok := idx.sourceToIndex.Get(key); ok {
			slog.Error("Duplicate input", "first", j, "second", i, "type", source.Type())
			return nil, fuseError("build index", ErrDuplicateInput, []int{j, i}, source.Type())
		}

		idx.sourceToIndex.Put(key, i)
	}

	entries := make([][]int, len(sources))

	for i, entry := range result.Map {
		for _, piece := range entry {
			j, ok := idx.pieceToIndex.Get(ShallowKey(piece))
			if !ok {
				slog.Error("Correspondence names an unknown piece", "input", i, "type", piece.Type())
				return nil, fuseError("build index", ErrNotFound, []int{i}, idx.sources[i].Type())
			}

			if !slices.Contains(entries[i], j) {
				entries[i] = append(entries[i], j)
			}
		}
	}

	if repair {
		if err := idx.repair(entries); err != nil {
			return nil, err
		}
	}

	for i, entry := range entries {
		slices.Sort(entry)
		idx.piecesOfSource[i] = entry

		for _, j := range entry {
			idx.sourcesOfPiece[j] = append(idx.sourcesOfPiece[j], i)
		}
	}

	return idx, nil
}

// repair fills empty entries when every input is a container, pairing the
// i-th input with the i-th container piece. The pairing is a best-effort
// guess matching what kernels do for unsplit containers.
func (idx *FuseIndex) repair(entries [][]int) error {
	var empty []int

	for i, entry := range entries {
		if len(entry) == 0 {
			empty = append(empty, i)
		}
	}

	if len(empty) == 0 {
		return nil
	}

	leaves := 0

	for _, source := range idx.sources {
		if source.Type().IsLeaf() {
			leaves++
		}
	}

	if leaves > 0 && leaves < len(idx.sources) {
		types := make([]m.ShapeType, len(empty))
		for k, i := range empty {
			types[k] = idx.sources[i].Type()
		}

		slog.Error("Cannot repair correspondence of mixed inputs", "empty", empty)

		return fuseError("repair", ErrTypeMismatch, empty, types...)
	}

	if leaves == 0 {
		var containers []int

		for j, piece := range idx.pieces {
			if piece.Type().IsContainer() {
				containers = append(containers, j)
			}
		}

		for i := range entries {
			if len(entries[i]) == 0 && i < len(containers) {
				entries[i] = []int{containers[i]}
			}
		}
	}

	for i, entry := range entries {
		if len(entry) > 0 {
			continue
		}

		warning := RepairWarning{Source: i, Type: idx.sources[i].Type(), Reason: "no pieces attributed"}
		idx.warnings = append(idx.warnings, warning)
		slog.Warn("Correspondence entry left empty after repair", "input", i, "type", warning.Type)
	}

	return nil
}

// Pieces returns the pieces in index order.
func (idx *FuseIndex) Pieces() []m.Shape {
	return slices.Clone(idx.pieces)
}

// Sources returns the inputs in index order.
func (idx *FuseIndex) Sources() []m.Shape {
	return slices.Clone(idx.sources)
}

// IndexOfPiece returns the position of piece.
func (idx *FuseIndex) IndexOfPiece(piece m.Shape) (int, error) {
	if j, ok := idx.pieceToIndex.Get(ShallowKey(piece)); ok {
		return j, nil
	}

	return -1, fuseError("index of piece", ErrNotFound, nil, piece.Type())
}

// IndexOfSource returns the position of source.
func (idx *FuseIndex) IndexOfSource(source m.Shape) (int, error) {
	if i, ok := idx.sourceToIndex.Get(ShallowKey(source)); ok {
		return i, nil
	}

	return -1, fuseError("index of source", ErrNotFound, nil, source.Type())
}

// PiecesFromSource returns the pieces attributed to source.
func (idx *FuseIndex) PiecesFromSource(source m.Shape) ([]m.Shape, error) {
	i, err := idx.IndexOfSource(source)
	if err != nil {
		return nil, err
	}

	return idx.piecesAt(idx.piecesOfSource[i]), nil
}

// SourcesOfPiece returns the inputs piece is attributed to.
func (idx *FuseIndex) SourcesOfPiece(piece m.Shape) ([]m.Shape, error) {
	j, err := idx.IndexOfPiece(piece)
	if err != nil {
		return nil, err
	}

	out := make([]m.Shape, len(idx.sourcesOfPiece[j]))
	for k, i := range idx.sourcesOfPiece[j] {
		out[k] = idx.sources[i]
	}

	return out, nil
}

// PieceIndicesOfSource returns the piece indices attributed to input i.
func (idx *FuseIndex) PieceIndicesOfSource(i int) []int {
	return slices.Clone(idx.piecesOfSource[i])
}

// SourceIndicesOfPiece returns the input indices of piece j.
func (idx *FuseIndex) SourceIndicesOfPiece(j int) []int {
	return slices.Clone(idx.sourcesOfPiece[j])
}

// OverlapCount returns the number of inputs piece j is attributed to.
func (idx *FuseIndex) OverlapCount(j int) int {
	return len(idx.sourcesOfPiece[j])
}

// LargestOverlapCount returns the highest overlap count over all pieces.
func (idx *FuseIndex) LargestOverlapCount() int {
	largest := 0
	for _, sources := range idx.sourcesOfPiece {
		largest = max(largest, len(sources))
	}

	return largest
}

// Warnings returns the entries repair could not fill.
func (idx *FuseIndex) Warnings() []RepairWarning {
	return slices.Clone(idx.warnings)
}

// Result returns the pieces and the repaired correspondence.
func (idx *FuseIndex) Result() m.FuseResult {
	result := m.FuseResult{
		Pieces: idx.Pieces(),
		Map:    make([][]m.Shape, len(idx.sources)),
	}

	for i, indices := range idx.piecesOfSource {
		result.Map[i] = idx.piecesAt(indices)
	}

	return result
}

// ElementSources returns the inputs that contributed a piece containing
// element. Element attribution is computed on first use.
func (idx *FuseIndex) ElementSources(element m.Shape) []int {
	idx.elementsOnce.Do(idx.indexElements)

	sources, _ := idx.elementToSource.Get(ShallowKey(element))

	return slices.Clone(sources)
}

func (idx *FuseIndex) indexElements() {
	idx.elementToSource = NewKeyMap[[]int]()

	for j, piece := range idx.pieces {
		for _, kind := range m.ElementKinds {
			for _, element := range piece.SubShapes(kind) {
				key := ShallowKey(element)
				sources, _ := idx.elementToSource.Get(key)

				for _, i := range idx.sourcesOfPiece[j] {
					if !slices.Contains(sources, i) {
						sources = append(sources, i)
					}
				}

				idx.elementToSource.Put(key, sources)
			}
		}
	}
}

// Summary returns a display snapshot of the index. names label the inputs.
func (idx *FuseIndex) Summary(names []string) m.IndexSummary {
	summary := m.IndexSummary{LargestOverlap: idx.LargestOverlapCount()}

	for i, source := range idx.sources {
		name := fmt.Sprintf("#%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}

		summary.Sources = append(summary.Sources, m.SourceSummary{
			Index:  i,
			Name:   name,
			Type:   source.Type(),
			Pieces: idx.PieceIndicesOfSource(i),
		})
	}

	for j, piece := range idx.pieces {
		summary.Fragments = append(summary.Fragments, m.FragmentReport{
			Index:   j,
			Type:    piece.Type(),
			Measure: piece.Measure(),
			Sources: idx.SourceIndicesOfPiece(j),
		})
	}

	for _, warning := range idx.warnings {
		summary.Warnings = append(summary.Warnings, warning.String())
	}

	return summary
}

func (idx *FuseIndex) piecesAt(indices []int) []m.Shape {
	out := make([]m.Shape, len(indices))
	for k, j := range indices {
		out[k] = idx.pieces[j]
	}

	return out
}
