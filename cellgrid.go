// Package cellgrid reconstructs the row/column grid of a table, merged cells
// included, from a host that only offers directional cell navigation and
// per-cell sizes.
//
// Basic usage:
//
//	result, err := cellgrid.New(host).Calculate()
//	if err != nil {
//	    // handle error
//	}
//	if len(result.Warnings) > 0 {
//	    log.Println("Warnings:", model.FormatWarnings(result.Warnings))
//	}
//	fmt.Print(result.Grid.ToMarkdown())
//
// With options:
//
//	result, err := cellgrid.New(host).
//	    Tolerance(1.5).
//	    MaxCells(4000).
//	    Calculate()
//
// The host is any [navigator.Host]; the host package provides an in-memory
// implementation that can also be parsed from HTML table markup. For
// finer control the stages in the tables package can be run individually.
package cellgrid

import (
	"log/slog"

	"github.com/tsawler/cellgrid/internal/logging"
	"github.com/tsawler/cellgrid/navigator"
)

// New returns a Calculator for the table under the host's cursor.
//
// Example:
//
//	result, err := cellgrid.New(host).Calculate()
func New(host navigator.Host) *Calculator {
	return &Calculator{
		host:    host,
		options: defaultOptions(),
	}
}

// Calculate is shorthand for New(host).Calculate().
func Calculate(host navigator.Host) (*Result, error) {
	return New(host).Calculate()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	result := cellgrid.Must(cellgrid.New(host).Calculate())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// SetLogger configures the logger for cellgrid and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-stage counts (cells discovered, levels found)
//   - [slog.LevelInfo]: completed calculations
//   - [slog.LevelWarn]: dropped cells, failed moves, boundary conflicts,
//     caps and failed calculations
//
// Example:
//
//	cellgrid.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the logger installed with SetLogger.
func Logger() *slog.Logger {
	return logging.Logger()
}
