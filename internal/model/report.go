package model

import "time"

// ReportStatus is the outcome of one pipeline run.
type ReportStatus string

const (
	// StatusOK marks a run that produced a result.
	StatusOK ReportStatus = "ok"
	// StatusFailed marks a run that aborted with an error.
	StatusFailed ReportStatus = "failed"
)

// Report represents the result of running one operation on one scene.
type Report struct {
	ID             string        `yaml:"id" json:"id" cbor:"1,keyasint"`
	Scene          Path          `yaml:"scene" json:"scene" cbor:"2,keyasint"`
	Operation      Operation     `yaml:"operation" json:"operation" cbor:"3,keyasint"`
	Mode           FragmentsMode `yaml:"mode,omitempty" json:"mode,omitempty" cbor:"4,keyasint,omitempty"`
	Status         ReportStatus  `yaml:"status" json:"status" cbor:"5,keyasint"`
	Inputs         int           `yaml:"inputs" json:"inputs" cbor:"6,keyasint"`
	ResultType     string        `yaml:"result_type,omitempty" json:"result_type,omitempty" cbor:"7,keyasint,omitempty"`
	ResultChildren int           `yaml:"result_children" json:"result_children" cbor:"8,keyasint"`
	ResultMeasure  float64       `yaml:"result_measure" json:"result_measure" cbor:"9,keyasint"`
	Error          string        `yaml:"error,omitempty" json:"error,omitempty" cbor:"10,keyasint,omitempty"`
	Duration       time.Duration `yaml:"duration" json:"duration" cbor:"11,keyasint"`
}

// FragmentReport describes one piece of a correspondence index.
type FragmentReport struct {
	Index   int       `yaml:"index" json:"index"`
	Type    ShapeType `yaml:"type" json:"type"`
	Measure float64   `yaml:"measure" json:"measure"`
	Sources []int     `yaml:"sources" json:"sources"`
}

// SourceSummary describes one input of a correspondence index.
type SourceSummary struct {
	Index  int       `yaml:"index" json:"index"`
	Name   string    `yaml:"name" json:"name"`
	Type   ShapeType `yaml:"type" json:"type"`
	Pieces []int     `yaml:"pieces" json:"pieces"`
}

// IndexSummary is a display-oriented snapshot of a correspondence index.
type IndexSummary struct {
	Scene          Path             `yaml:"scene" json:"scene"`
	Sources        []SourceSummary  `yaml:"sources" json:"sources"`
	Fragments      []FragmentReport `yaml:"fragments" json:"fragments"`
	LargestOverlap int              `yaml:"largest_overlap" json:"largest_overlap"`
	Warnings       []string         `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}
