package navigator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/cellgrid/internal/logging"
	"github.com/tsawler/cellgrid/model"
)

// Stats counts host calls made through a Navigator
type Stats struct {
	Moves     int
	SizeReads int
	Locates   int
}

// Navigator wraps a Host with handle-addressed primitives. Each primitive
// repositions the cursor to the handle it is given first, so callers never
// rely on where a previous call left the cursor.
//
// Failures of individual reads are recorded as warnings and never abort a
// traversal.
type Navigator struct {
	host     Host
	logger   *slog.Logger
	warnings []model.Warning
	stats    Stats
}

// New creates a Navigator over host. A nil logger uses the package logger.
func New(host Host, logger *slog.Logger) *Navigator {
	return &Navigator{
		host:   host,
		logger: logging.Or(logger),
	}
}

// Logger returns the logger warnings are written to
func (n *Navigator) Logger() *slog.Logger {
	return n.logger
}

// Current returns the cell under the host cursor
func (n *Navigator) Current() (model.Handle, error) {
	h, err := n.host.Current()
	if err != nil {
		if errors.Is(err, ErrNotInGrid) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrNotInGrid, err)
	}
	return h, nil
}

// Move returns the neighbour of h in direction d. The result equals h when
// there is no neighbour, when the move leaves the table, or when the host
// failed to move.
func (n *Navigator) Move(h model.Handle, d Direction) model.Handle {
	n.stats.Moves++
	if err := n.host.Goto(h); err != nil {
		n.Warn(model.WarningNavigation, "navigate", h, fmt.Sprintf("reposition before %s: %v", d, err))
		return h
	}
	next, err := n.host.Step(d)
	if err != nil {
		if !errors.Is(err, ErrOutsideGrid) {
			n.Warn(model.WarningNavigation, "navigate", h, fmt.Sprintf("move %s: %v", d, err))
		}
		return h
	}
	return next
}

// Size reads the extent of h. On failure, including a zero extent, it
// returns a zero Size and the error; the caller decides whether to drop the
// cell.
func (n *Navigator) Size(h model.Handle) (model.Size, error) {
	n.stats.SizeReads++
	if err := n.host.Goto(h); err != nil {
		return model.Size{}, fmt.Errorf("reposition to cell %d: %w", h, err)
	}
	size, err := n.host.Extent()
	if err != nil {
		return model.Size{}, fmt.Errorf("read size of cell %d: %w", h, err)
	}
	if size.IsZero() {
		return model.Size{}, fmt.Errorf("read size of cell %d: %w", h, ErrEmptyExtent)
	}
	return size, nil
}

// Locate reads the spatial signal of h
func (n *Navigator) Locate(h model.Handle) (Location, error) {
	n.stats.Locates++
	if err := n.host.Goto(h); err != nil {
		return Location{}, fmt.Errorf("reposition to cell %d: %w", h, err)
	}
	loc, err := n.host.Locate()
	if err != nil {
		return Location{}, fmt.Errorf("locate cell %d: %w", h, err)
	}
	return loc, nil
}

// Save records the cursor position and returns a function restoring it.
// Callers defer the returned function so every exit path restores the
// cursor:
//
//	restore := nav.Save()
//	defer restore()
func (n *Navigator) Save() (restore func()) {
	marker, err := n.host.Mark()
	if err != nil {
		n.Warn(model.WarningCursorRestore, "navigate", -1, fmt.Sprintf("save cursor: %v", err))
		return func() {}
	}
	return func() {
		if err := n.host.Restore(marker); err != nil {
			n.Warn(model.WarningCursorRestore, "navigate", -1, fmt.Sprintf("restore cursor: %v", err))
		}
	}
}

// Warn records a non-fatal issue and logs it
func (n *Navigator) Warn(kind model.WarningKind, stage string, h model.Handle, msg string) {
	w := model.Warning{Kind: kind, Stage: stage, Handle: h, Message: msg}
	n.warnings = append(n.warnings, w)
	n.logger.Warn(msg, "stage", stage, "kind", kind.String(), "cell", int(h))
}

// Warnings returns a copy of the warnings recorded so far
func (n *Navigator) Warnings() []model.Warning {
	return append([]model.Warning(nil), n.warnings...)
}

// Stats returns the host call counters
func (n *Navigator) Stats() Stats {
	return n.stats
}
