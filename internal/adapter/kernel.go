// Package adapter contains the kernel port and the infrastructure adapters
// for the bopkit CLI.
package adapter

import (
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// Kernel abstracts the geometric modelling kernel. The fragment engine never
// computes geometry itself; it only asks the kernel to fuse, cut and
// assemble shapes and then reasons about identity and sharing.
type Kernel interface {
	// GeneralFuse splits the inputs against each other. The returned map has
	// one entry per input, in input order.
	GeneralFuse(shapes []m.Shape) (m.FuseResult, error)

	// Cut removes tool from base and returns the remainder as a compound.
	Cut(base, tool m.Shape) (m.Shape, error)

	// MakeCompound groups arbitrary shapes without merging them.
	MakeCompound(shapes []m.Shape) (m.Shape, error)

	// MakeWire assembles edges (or the edges of wires) into one wire.
	MakeWire(edges []m.Shape) (m.Shape, error)

	// MakeShell assembles faces (or the faces of shells) into one shell.
	MakeShell(faces []m.Shape) (m.Shape, error)

	// MakeCompSolid assembles solids into one compsolid.
	MakeCompSolid(solids []m.Shape) (m.Shape, error)

	// MakeSolid fuses solids sharing faces into a single solid.
	MakeSolid(solids []m.Shape) (m.Shape, error)
}

// ShapeFactory turns declarative scene specs into kernel shapes.
type ShapeFactory interface {
	Build(spec m.ShapeSpec) (m.Shape, error)
}

// ShapeKernel is a kernel that can also build shapes from specs.
type ShapeKernel interface {
	Kernel
	ShapeFactory
}
