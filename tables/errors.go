package tables

import (
	"errors"
	"fmt"

	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/navigator"
)

var (
	// ErrNotInGridContext means the host cursor is not inside a table, or
	// the traversal found nothing that looks like one.
	ErrNotInGridContext = navigator.ErrNotInGrid

	// ErrTraversalCap is matched by every *CapError.
	ErrTraversalCap = navigator.ErrTraversalCap

	// ErrMapping is matched by every *MappingError.
	ErrMapping = errors.New("tables: coordinate matches no grid level")

	// ErrUnplaceableBand means a row band whose first cell could not be read
	// has no other cell that fixes its height or horizontal position.
	ErrUnplaceableBand = errors.New("tables: band cannot be placed without its first cell")

	// ErrInvalidGrid is matched by every *CoverageError.
	ErrInvalidGrid = errors.New("tables: grid does not partition its rectangle")
)

// CapError reports a traversal stopped by the cell cap
type CapError = navigator.CapError

// MappingError reports a cell coordinate that could not be resolved to a
// grid level. It aborts the calculation for the whole table.
type MappingError struct {
	Handle model.Handle
	Axis   string // "x" or "y"
	Edge   string // "start" or "end"
	Value  float64
	Levels []float64
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: cell %d: %s %s coordinate %.2f matches no level of %v",
		StageMap, e.Handle, e.Edge, e.Axis, e.Value, e.Levels)
}

// Is matches ErrMapping
func (e *MappingError) Is(target error) bool {
	return target == ErrMapping
}

// CoverageError reports a reconstructed grid with gaps or overlaps
type CoverageError struct {
	Report *Report
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("%s: grid has %d overlapping and %d uncovered slots",
		StageValidate, len(e.Report.Overlaps), len(e.Report.Gaps))
}

// Is matches ErrInvalidGrid
func (e *CoverageError) Is(target error) bool {
	return target == ErrInvalidGrid
}
