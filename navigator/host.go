package navigator

import (
	"errors"
	"fmt"

	"github.com/tsawler/cellgrid/model"
)

var (
	// ErrNotInGrid is returned by a Host when its cursor is not inside a
	// table-like structure.
	ErrNotInGrid = errors.New("navigator: cursor is not inside a table")

	// ErrOutsideGrid is returned by Host.Step when the move left the table
	// context. Navigators treat it like an edge.
	ErrOutsideGrid = errors.New("navigator: move left the table")

	// ErrEmptyExtent is returned by Navigator.Size when the host reports a
	// cell without extent, which hosts use to signal a failed read.
	ErrEmptyExtent = errors.New("navigator: cell has no extent")

	// ErrTraversalCap is matched by every *CapError.
	ErrTraversalCap = errors.New("navigator: traversal cap exceeded")
)

// Direction is a cell-to-cell move issued to the host
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every direction in discovery order
var Directions = []Direction{Right, Down, Left, Up}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Location is the host's auxiliary spatial signal for a cell, such as the
// page and line the cell starts on. It is only used as a sort key.
type Location struct {
	Page int
	Line int
}

// Before reports whether l comes strictly before other in reading order
func (l Location) Before(other Location) bool {
	if l.Page != other.Page {
		return l.Page < other.Page
	}
	return l.Line < other.Line
}

// Marker is an opaque saved cursor position
type Marker any

// Host is the editor-side table the engine traverses. Every method operates
// on, or moves, a single shared cursor; implementations need not be safe for
// concurrent use and callers must not interleave traversals.
type Host interface {
	// Current returns the cell under the cursor, or ErrNotInGrid.
	Current() (model.Handle, error)

	// Goto positions the cursor on h.
	Goto(h model.Handle) error

	// Step moves the cursor one cell in direction d and returns the new
	// cell. At an edge the returned handle is the current one.
	Step(d Direction) (model.Handle, error)

	// Extent reads the physical size of the cell under the cursor.
	Extent() (model.Size, error)

	// Locate reads the spatial signal of the cell under the cursor.
	Locate() (Location, error)

	// Mark saves the cursor position.
	Mark() (Marker, error)

	// Restore returns the cursor to a saved position.
	Restore(m Marker) error
}

// CapError reports that a safety cap stopped a traversal before it finished.
// Results produced alongside a CapError are incomplete.
type CapError struct {
	Stage   string
	Limit   int
	Visited int
}

func (e *CapError) Error() string {
	return fmt.Sprintf("%s: traversal cap of %d cells exceeded (%d visited)", e.Stage, e.Limit, e.Visited)
}

// Is matches ErrTraversalCap
func (e *CapError) Is(target error) bool {
	return target == ErrTraversalCap
}
