package domain

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"bopkit.dev/pkg/bopkit/internal/adapter"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// DefaultTolerance is the relative tolerance used when comparing measures.
const DefaultTolerance = 1e-8

// Operations runs the end-user operations on top of the kernel and the
// correspondence index.
type Operations interface {
	// Fuse replicates a plain union of shapes.
	Fuse(shapes []m.Shape) (m.Shape, error)
	// Connect unites shapes, keeping overlap material only where it bridges
	// the largest dangling piece of each input.
	Connect(shapes []m.Shape) (m.Shape, error)
	// Embed cuts base by tool and fuses the largest remainder with tool.
	Embed(base, tool m.Shape) (m.Shape, error)
	// Cutout returns the largest remainder of base cut by tool.
	Cutout(base, tool m.Shape) (m.Shape, error)
	// BooleanFragments returns the pieces of a general fuse as a compound.
	BooleanFragments(shapes []m.Shape, mode m.FragmentsMode) (m.Shape, error)
	// Analyze builds the correspondence index of shapes, optionally with
	// compounds exploded and composites split.
	Analyze(shapes []m.Shape, split bool) (*FuseIndex, error)
}

// OperationsOption configures Operations.
type OperationsOption func(*operations)

// WithTolerance sets the relative tolerance used to detect ties in ShapeOfMaxSize.
func WithTolerance(tolerance float64) OperationsOption {
	return func(o *operations) {
		if tolerance >= 0 {
			o.tolerance = tolerance
		}
	}
}

type operations struct {
	kernel    adapter.Kernel
	merger    ShapeMerger
	tolerance float64
}

// NewOperations constructs Operations backed by kernel.
func NewOperations(kernel adapter.Kernel, opts ...OperationsOption) Operations {
	o := &operations{
		kernel:    kernel,
		merger:    NewShapeMerger(kernel),
		tolerance: DefaultTolerance,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func observe(op m.Operation, start time.Time, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
	}

	operationsTotal.WithLabelValues(string(op), status).Inc()
	operationDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}

func (o *operations) Fuse(shapes []m.Shape) (result m.Shape, err error) {
	defer observe(m.OperationFuse, time.Now(), &err)

	return o.fuse(shapes)
}

func (o *operations) fuse(shapes []m.Shape) (m.Shape, error) {
	leaves := flattenCompounds(shapes)
	if len(leaves) == 0 {
		return nil, fuseError("fuse", ErrTooFewShapes, nil)
	}

	result, err := o.kernel.GeneralFuse(leaves)
	if err != nil {
		slog.Error("General fuse failed", "operation", m.OperationFuse, "error", err)
		return nil, fmt.Errorf("fuse: %w", err)
	}

	return o.merger.MergeShapes(result.Pieces, MergeOptions{})
}

func (o *operations) Connect(shapes []m.Shape) (result m.Shape, err error) {
	defer observe(m.OperationConnect, time.Now(), &err)

	leaves := flattenCompounds(shapes)

	dim, err := DimensionOfShapes(leaves)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if dim == 0 {
		return nil, fuseError("connect", ErrUnsupportedDimension, nil, m.ShapeVertex)
	}

	if len(leaves) < 2 {
		return o.kernel.MakeCompound(leaves)
	}

	fused, err := o.kernel.GeneralFuse(leaves)
	if err != nil {
		slog.Error("General fuse failed", "operation", m.OperationConnect, "error", err)
		return nil, fmt.Errorf("connect: %w", err)
	}

	idx, err := BuildIndex(o.kernel, leaves, fused)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if slices.ContainsFunc(leaves, func(s m.Shape) bool { return s.Type().IsContainer() }) {
		if idx, err = idx.SplitComposites(); err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
	}

	keepers, err := o.danglers(idx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	touch := keepers

	for k := 2; k <= idx.LargestOverlapCount(); k++ {
		var added []m.Shape

		for j, piece := range idx.pieces {
			if idx.OverlapCount(j) != k {
				continue
			}

			connected, err := IsConnected(piece, touch)
			if err != nil {
				return nil, fmt.Errorf("connect: %w", err)
			}

			if connected {
				added = append(added, piece)
			}
		}

		if len(added) == 0 {
			slog.Debug("Overlap propagation stopped", "order", k, "kept", len(keepers))
			break
		}

		keepers = append(keepers, added...)
		touch = added
	}

	return o.merger.MergeShapes(keepers, MergeOptions{})
}

// danglers returns the largest piece attributed to each input alone.
func (o *operations) danglers(idx *FuseIndex) ([]m.Shape, error) {
	var keepers []m.Shape

	for i := range idx.sources {
		var dangling []m.Shape

		for _, j := range idx.piecesOfSource[i] {
			if idx.OverlapCount(j) == 1 {
				dangling = append(dangling, idx.pieces[j])
			}
		}

		largest, err := ShapeOfMaxSize(dangling, o.tolerance)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		if largest != nil {
			keepers = append(keepers, largest)
		}
	}

	return keepers, nil
}

func (o *operations) Embed(base, tool m.Shape) (result m.Shape, err error) {
	defer observe(m.OperationEmbed, time.Now(), &err)

	return o.embed(base, tool)
}

func (o *operations) embed(base, tool m.Shape) (m.Shape, error) {
	if base.Type() == m.ShapeCompound {
		return o.eachChild(base, func(child m.Shape) (m.Shape, error) { return o.embed(child, tool) })
	}

	largest, err := o.largestRemainder(base, tool)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if largest == nil {
		return o.merger.MergeShapes([]m.Shape{tool}, MergeOptions{})
	}

	return o.fuse([]m.Shape{largest, tool})
}

func (o *operations) Cutout(base, tool m.Shape) (result m.Shape, err error) {
	defer observe(m.OperationCutout, time.Now(), &err)

	return o.cutout(base, tool)
}

func (o *operations) cutout(base, tool m.Shape) (m.Shape, error) {
	if base.Type() == m.ShapeCompound {
		return o.eachChild(base, func(child m.Shape) (m.Shape, error) { return o.cutout(child, tool) })
	}

	largest, err := o.largestRemainder(base, tool)
	if err != nil {
		return nil, fmt.Errorf("cutout: %w", err)
	}

	if largest == nil {
		return o.kernel.MakeCompound(nil)
	}

	return largest, nil
}

func (o *operations) largestRemainder(base, tool m.Shape) (m.Shape, error) {
	rest, err := o.kernel.Cut(base, tool)
	if err != nil {
		slog.Error("Cut failed", "base", base.Type(), "tool", tool.Type(), "error", err)
		return nil, err
	}

	return ShapeOfMaxSize(flattenCompounds([]m.Shape{rest}), o.tolerance)
}

func (o *operations) eachChild(compound m.Shape, apply func(m.Shape) (m.Shape, error)) (m.Shape, error) {
	children := compound.ChildShapes()
	results := make([]m.Shape, 0, len(children))

	for _, child := range children {
		result, err := apply(child)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return o.kernel.MakeCompound(results)
}

func (o *operations) BooleanFragments(shapes []m.Shape, mode m.FragmentsMode) (result m.Shape, err error) {
	defer observe(m.OperationFragments, time.Now(), &err)

	if len(shapes) == 1 && shapes[0].Type() == m.ShapeCompound {
		shapes = shapes[0].ChildShapes()
	}

	if len(shapes) < 2 {
		return nil, fuseError("fragments", ErrTooFewShapes, nil)
	}

	fused, err := o.kernel.GeneralFuse(shapes)
	if err != nil {
		slog.Error("General fuse failed", "operation", m.OperationFragments, "error", err)
		return nil, fmt.Errorf("fragments: %w", err)
	}

	switch mode {
	case m.FragmentsStandard, "":
		return o.kernel.MakeCompound(fused.Pieces)
	case m.FragmentsSplit:
		idx, err := o.analyze(shapes, fused, true)
		if err != nil {
			return nil, fmt.Errorf("fragments: %w", err)
		}

		return o.kernel.MakeCompound(idx.Pieces())
	case m.FragmentsCompSolid:
		var solids []m.Shape
		for _, piece := range fused.Pieces {
			solids = append(solids, piece.SubShapes(m.ShapeSolid)...)
		}

		solids = RemoveDuplicates(solids)

		switch len(solids) {
		case 0:
			return nil, fuseError("fragments", ErrNoSolids, nil)
		case 1:
			slog.Warn("Only one solid in the result, generating a trivial compsolid")
		}

		return o.merger.MergeShapes(solids, MergeOptions{CompSolid: true})
	}

	return nil, fmt.Errorf("fragments: unknown mode %q", mode)
}

func (o *operations) Analyze(shapes []m.Shape, split bool) (*FuseIndex, error) {
	fused, err := o.kernel.GeneralFuse(shapes)
	if err != nil {
		slog.Error("General fuse failed", "operation", "analyze", "error", err)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	idx, err := o.analyze(shapes, fused, split)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	return idx, nil
}

func (o *operations) analyze(shapes []m.Shape, fused m.FuseResult, split bool) (*FuseIndex, error) {
	idx, err := BuildIndex(o.kernel, shapes, fused)
	if err != nil {
		return nil, err
	}

	if !split {
		return idx, nil
	}

	if idx, err = idx.ExplodeCompounds(); err != nil {
		return nil, err
	}

	return idx.SplitComposites()
}

// ShapeOfMaxSize returns the shape with the largest absolute measure. Two
// measures tie when they differ by less than tolerance times the larger one,
// so the tie window scales with the shapes rather than being a fixed
// absolute gap. A tie for the maximum is an ErrAmbiguousSelection. An empty
// list yields nil.
func ShapeOfMaxSize(shapes []m.Shape, tolerance float64) (m.Shape, error) {
	if len(shapes) == 0 {
		return nil, nil
	}

	if _, err := DimensionOfShapes(shapes); err != nil {
		return nil, err
	}

	maxSize := math.Inf(-1)

	var (
		best  m.Shape
		ties  []int
		count int
	)

	for i, s := range shapes {
		size := math.Abs(s.Measure())

		switch {
		case size > maxSize*(1+tolerance):
			maxSize, best, count = size, s, 1
			ties = []int{i}
		case size >= maxSize*(1-tolerance):
			count++
			ties = append(ties, i)
		}
	}

	if count > 1 {
		slog.Error("Largest shape is ambiguous", "candidates", ties, "measure", maxSize)
		return nil, fuseError("shape of max size", ErrAmbiguousSelection, ties, best.Type())
	}

	return best, nil
}
