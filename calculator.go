package cellgrid

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tsawler/cellgrid/internal/logging"
	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/navigator"
	"github.com/tsawler/cellgrid/tables"
)

// Result is everything a calculation produces
type Result struct {
	// Identifier attached to every log record of the calculation
	RunID string

	// Reconstructed grid; nil when the calculation stopped before mapping
	Grid *model.Grid

	Boundary *tables.BoundaryResult
	Report   *tables.Report

	// Non-fatal issues, in the order they occurred
	Warnings []model.Warning

	// Set when a traversal cap truncated the calculation
	Incomplete bool

	Stats navigator.Stats
}

// Calculator provides a fluent interface for reconstructing the grid of the
// table under a host's cursor. Each configuration method returns a new
// Calculator, so a configured Calculator can be reused as a template.
//
// A Calculator must not be used concurrently with anything else that moves
// the same host's cursor.
type Calculator struct {
	host    navigator.Host
	options CalculateOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Calculator with a copy of options.
func (c *Calculator) clone() *Calculator {
	return &Calculator{
		host:    c.host,
		options: c.options.clone(),
		err:     c.err,
	}
}

// ============================================================================
// Configuration Methods (return new Calculator instance)
// ============================================================================

// Tolerance sets the distance, in device units, under which two coordinates
// are treated as the same grid line.
//
// Example:
//
//	result, err := cellgrid.New(host).Tolerance(1.5).Calculate()
func (c *Calculator) Tolerance(units float64) *Calculator {
	newCalc := c.clone()
	newCalc.options.config.Tolerance = units
	if units < 0 && newCalc.err == nil {
		newCalc.err = fmt.Errorf("cellgrid: tolerance must not be negative, got %v", units)
	}
	return newCalc
}

// MaxCells sets the safety cap on the number of cells a traversal visits.
//
// Example:
//
//	result, err := cellgrid.New(host).MaxCells(5000).Calculate()
func (c *Calculator) MaxCells(n int) *Calculator {
	newCalc := c.clone()
	newCalc.options.config.MaxCells = n
	if n < 1 && newCalc.err == nil {
		newCalc.err = fmt.Errorf("cellgrid: max cells must be at least 1, got %d", n)
	}
	return newCalc
}

// Lenient makes grids with gaps or overlaps succeed; the validation report
// and a coverage warning still describe the problem.
func (c *Calculator) Lenient() *Calculator {
	newCalc := c.clone()
	newCalc.options.config.Strict = false
	return newCalc
}

// WithConfig replaces the whole engine configuration.
func (c *Calculator) WithConfig(config tables.Config) *Calculator {
	newCalc := c.clone()
	newCalc.options.config = config
	if err := config.Validate(); err != nil && newCalc.err == nil {
		newCalc.err = err
	}
	return newCalc
}

// Logger sets the logger for this calculator only. Without it the logger
// installed with SetLogger is used.
func (c *Calculator) Logger(l *slog.Logger) *Calculator {
	newCalc := c.clone()
	newCalc.options.logger = l
	return newCalc
}

// Config returns the engine configuration the calculator will use.
func (c *Calculator) Config() tables.Config {
	return c.options.config
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Calculate reconstructs the grid of the table under the host cursor. The
// cursor is restored before Calculate returns.
//
// Errors identify the failing stage:
//   - tables.ErrNotInGridContext when the cursor is not in a table
//   - *tables.CapError when a cap was hit; the partial Result is returned
//     too, with Incomplete set
//   - *tables.MappingError when a coordinate matches no grid level
//   - *tables.CoverageError when the grid has gaps or overlaps (strict
//     mode); the Result is returned too
//
// Example:
//
//	result, err := cellgrid.New(host).Calculate()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.Grid.ToMarkdown())
func (c *Calculator) Calculate() (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.host == nil {
		return nil, fmt.Errorf("cellgrid: no host specified")
	}

	runID := uuid.NewString()
	logger := logging.Or(c.options.logger).With("run", runID)
	nav := navigator.New(c.host, logger)

	result, err := c.run(nav, logger)
	if result != nil {
		result.RunID = runID
		result.Warnings = nav.Warnings()
		result.Stats = nav.Stats()
	}
	if err != nil {
		logger.Warn("grid calculation failed", "error", err)
		return result, err
	}

	logger.Info("grid calculated",
		"rows", result.Grid.RowCount(),
		"cols", result.Grid.ColCount(),
		"cells", len(result.Grid.Cells),
		"warnings", len(result.Warnings))
	return result, nil
}

// run executes the pipeline with the cursor saved for its whole duration
func (c *Calculator) run(nav *navigator.Navigator, logger *slog.Logger) (*Result, error) {
	restore := nav.Save()
	defer restore()

	config := c.options.config
	result := &Result{}

	start, err := nav.Current()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tables.StageDiscover, err)
	}

	cells, capErr := nav.Discover(start, config.MaxCells)
	if capErr != nil && !errors.Is(capErr, tables.ErrTraversalCap) {
		return nil, capErr
	}
	if capErr != nil {
		result.Incomplete = true
	}

	boundary, err := tables.ClassifyBoundaries(nav, cells)
	result.Boundary = boundary
	if err != nil {
		if capErr != nil {
			return result, capErr
		}
		return nil, err
	}

	collection, err := tables.CollectCoordinates(nav, boundary, config)
	if err != nil {
		if !errors.Is(err, tables.ErrTraversalCap) {
			return nil, err
		}
		result.Incomplete = true
		if capErr == nil {
			capErr = err
		}
	}

	levels := tables.Quantize(collection, config.Tolerance)
	logger.Debug("quantized levels", "x", len(levels.X), "y", len(levels.Y))

	grid, err := tables.MapGrid(collection, levels, config.Tolerance)
	if err != nil {
		if capErr != nil {
			return result, errors.Join(capErr, err)
		}
		return nil, err
	}
	result.Grid = grid

	result.Report = tables.Validate(grid)
	if !result.Report.Valid {
		nav.Warn(model.WarningCoverage, tables.StageValidate, -1, result.Report.Summary())
	}

	if capErr != nil {
		return result, capErr
	}
	if config.Strict && !result.Report.Valid {
		return result, &tables.CoverageError{Report: result.Report}
	}
	return result, nil
}
