package domain

import (
	"errors"
	"fmt"
	"strings"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

var (
	// ErrMapLength is returned when the correspondence does not have one entry per input.
	ErrMapLength = errors.New("correspondence length does not match input count")
	// ErrDuplicateFragment is returned when two pieces share an identity.
	ErrDuplicateFragment = errors.New("duplicate fragment")
	// ErrDuplicateInput is returned when two inputs share an identity.
	ErrDuplicateInput = errors.New("duplicate input")
	// ErrTypeMismatch is returned when container and leaf inputs are mixed and repair is needed.
	ErrTypeMismatch = errors.New("mixed container and leaf inputs")
	// ErrNotFound is returned when a shape is not part of an index.
	ErrNotFound = errors.New("shape not found")
	// ErrAmbiguousSelection is returned when several shapes tie for the largest measure.
	ErrAmbiguousSelection = errors.New("more than one largest shape")
	// ErrDimensionMismatch is returned when shapes of different dimensions are merged or compared.
	ErrDimensionMismatch = errors.New("shapes have different dimensions")
	// ErrUnsupportedDimension is returned when an operation cannot handle the input dimension.
	ErrUnsupportedDimension = errors.New("unsupported dimension")
	// ErrTooFewShapes is returned when an operation needs more inputs.
	ErrTooFewShapes = errors.New("not enough shapes")
	// ErrNoSolids is returned by the compsolid fragments mode when no solid piece exists.
	ErrNoSolids = errors.New("no solid fragments")
	// ErrNoScenes is returned by Batch when no file matches the patterns.
	ErrNoScenes = errors.New("no scene files matched")
	// ErrBatchFailed is returned by Batch when at least one scene failed.
	ErrBatchFailed = errors.New("batch had failing scenes")
)

// FuseError tags an engine failure with the inputs that caused it.
type FuseError struct {
	Op      string
	Err     error
	Indices []int
	Types   []m.ShapeType
}

func (e *FuseError) Error() string {
	var b strings.Builder

	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	if len(e.Indices) > 0 {
		fmt.Fprintf(&b, " (indices %v", e.Indices)

		if len(e.Types) > 0 {
			fmt.Fprintf(&b, ", types %v", e.Types)
		}

		b.WriteString(")")
	}

	return b.String()
}

func (e *FuseError) Unwrap() error {
	return e.Err
}

func fuseError(op string, err error, indices []int, types ...m.ShapeType) *FuseError {
	return &FuseError{Op: op, Err: err, Indices: indices, Types: types}
}
