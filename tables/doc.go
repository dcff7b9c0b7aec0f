// Package tables reconstructs the logical row/column grid of a table from
// directional cell navigation and per-cell sizes.
//
// The host never exposes rows or columns. This package infers them from
// probe moves and accumulated sizes in five stages:
//
//  1. [BoundaryClassifier] - which cells lie on each table edge
//  2. [CoordinateCollector] - physical rectangle of every cell, band by band
//  3. [MergeCloseLevels] - tolerance-based grid lines per axis
//  4. [MapGrid] - logical row, column and spans of every cell
//  5. [Validate] - occupancy map with gaps and overlaps
//
// # Configuration
//
// Behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.Tolerance = 1.5
//	config.MaxCells = 4000
//
// Tolerance is a length in device units. Two coordinates closer than it are
// treated as the same grid line, so it should cover the rounding the host's
// size reads accumulate over a row.
//
// # Start and end levels
//
// A cell's start coordinate resolves to the level it sits on. Its end
// coordinate sits on the start of the next level, so [FindEndLevelIndex]
// returns the matched index minus one; a cell without merges therefore
// has equal start and end rows.
//
// # Errors
//
// Unreadable cells are dropped and reported as warnings. Caps produce a
// [CapError] next to a partial result. Coordinates that resolve to no level
// produce a [MappingError], and a grid that fails validation can be reported
// as a [CoverageError].
package tables
