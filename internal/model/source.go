package model

import "strconv"

// Path represents a file system path.
type Path string

// Point is an integer lattice point.
type Point [3]int

// ShapeSpec describes one shape of a scene. Leaf shapes are given by their
// integer corners; containers by their children.
type ShapeSpec struct {
	Name     string      `yaml:"name,omitempty" json:"name,omitempty"`
	Type     ShapeType   `yaml:"type" json:"type"`
	At       *Point      `yaml:"at,omitempty" json:"at,omitempty"`
	Min      *Point      `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *Point      `yaml:"max,omitempty" json:"max,omitempty"`
	Children []ShapeSpec `yaml:"children,omitempty" json:"children,omitempty"`
}

// Scene is the content of a scene file: the input shapes, in order, and the
// operation to run on them.
type Scene struct {
	Version   int           `yaml:"version"`
	Name      string        `yaml:"name,omitempty"`
	Operation Operation     `yaml:"operation,omitempty"`
	Mode      FragmentsMode `yaml:"mode,omitempty"`
	// Base and Tool name the shapes used by embed and cutout. They default to
	// the first and second shape.
	Base   string      `yaml:"base,omitempty"`
	Tool   string      `yaml:"tool,omitempty"`
	Shapes []ShapeSpec `yaml:"shapes"`
}

// ShapeNames returns the display name of every top-level shape.
func (s Scene) ShapeNames() []string {
	names := make([]string, len(s.Shapes))
	for i, spec := range s.Shapes {
		names[i] = spec.Name
		if names[i] == "" {
			names[i] = "#" + strconv.Itoa(i)
		}
	}

	return names
}
