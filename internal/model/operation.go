package model

import (
	"fmt"
	"strings"
)

// Operation names an end-user operation of the engine.
type Operation string

const (
	// OperationFuse replicates a plain union.
	OperationFuse Operation = "fuse"
	// OperationConnect unites shapes while dropping dangling slivers.
	OperationConnect Operation = "connect"
	// OperationEmbed cuts the base by the tool and fuses the largest remainder with the tool.
	OperationEmbed Operation = "embed"
	// OperationCutout keeps the largest remainder of the base cut by the tool.
	OperationCutout Operation = "cutout"
	// OperationFragments returns the fragments of a general fuse.
	OperationFragments Operation = "fragments"
)

// Operations lists every supported operation.
var Operations = []Operation{OperationFuse, OperationConnect, OperationEmbed, OperationCutout, OperationFragments}

// ParseOperation validates an operation name.
func ParseOperation(value string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Operations {
		if op == known {
			return op, nil
		}
	}

	return "", fmt.Errorf("unknown operation %q", value)
}

// FragmentsMode selects how fragments output is post-processed.
type FragmentsMode string

const (
	// FragmentsStandard keeps wires, shells and compsolids in one piece.
	FragmentsStandard FragmentsMode = "standard"
	// FragmentsSplit splits wires, shells and compsolids at intersections.
	FragmentsSplit FragmentsMode = "split"
	// FragmentsCompSolid assembles solid fragments into compsolids.
	FragmentsCompSolid FragmentsMode = "compsolid"
)

// ParseFragmentsMode validates a mode name. The empty string selects standard.
func ParseFragmentsMode(value string) (FragmentsMode, error) {
	switch mode := FragmentsMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return FragmentsStandard, nil
	case FragmentsStandard, FragmentsSplit, FragmentsCompSolid:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown fragments mode %q", value)
	}
}

// ReportFormat is the encoding of a persisted report file.
type ReportFormat string

const (
	// FormatYAML encodes reports as YAML.
	FormatYAML ReportFormat = "yaml"
	// FormatJSON encodes reports as indented JSON.
	FormatJSON ReportFormat = "json"
	// FormatCBOR encodes reports as deterministic CBOR.
	FormatCBOR ReportFormat = "cbor"
)

// ParseReportFormat validates a format name.
func ParseReportFormat(value string) (ReportFormat, error) {
	switch format := ReportFormat(strings.ToLower(strings.TrimSpace(value))); format {
	case FormatYAML, FormatJSON, FormatCBOR:
		return format, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", value)
	}
}

// Extension returns the file extension used for the format.
func (f ReportFormat) Extension() string {
	return "." + string(f)
}
