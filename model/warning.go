package model

import (
	"fmt"
	"strings"
)

// WarningKind classifies a non-fatal issue found during a calculation
type WarningKind int

const (
	// WarningCellRead means a cell's size or location could not be read and
	// the cell was dropped from the coordinate set.
	WarningCellRead WarningKind = iota
	// WarningNavigation means a directional move failed and was treated as
	// an edge.
	WarningNavigation
	// WarningBoundaryConflict means two boundary probes disagreed about a cell.
	WarningBoundaryConflict
	// WarningTraversalCap means a safety cap truncated a traversal.
	WarningTraversalCap
	// WarningCoverage means the reconstructed grid has gaps or overlaps.
	WarningCoverage
	// WarningCursorRestore means the host cursor could not be restored.
	WarningCursorRestore
)

var warningKindNames = map[WarningKind]string{
	WarningCellRead:         "cell-read",
	WarningNavigation:       "navigation",
	WarningBoundaryConflict: "boundary-conflict",
	WarningTraversalCap:     "traversal-cap",
	WarningCoverage:         "coverage",
	WarningCursorRestore:    "cursor-restore",
}

func (k WarningKind) String() string {
	if name, ok := warningKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Warning is a non-fatal issue encountered while reconstructing a grid
type Warning struct {
	Kind    WarningKind
	Stage   string
	Handle  Handle
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: cell %d: %s", w.Stage, w.Kind, w.Handle, w.Message)
}

// FormatWarnings joins warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
