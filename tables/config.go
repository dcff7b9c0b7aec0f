package tables

import (
	"fmt"
)

// Stage names used in errors and warnings
const (
	StageDiscover = "discover"
	StageClassify = "classify"
	StageCollect  = "collect"
	StageQuantize = "quantize"
	StageMap      = "map"
	StageValidate = "validate"
)

// Config holds grid reconstruction parameters
type Config struct {
	// Maximum distance between two coordinates treated as the same grid
	// line, in device units. It absorbs rounding accumulated while summing
	// cell sizes, so it should track the precision of the host's size reads.
	Tolerance float64

	// Safety cap on the number of cells a traversal may visit
	MaxCells int

	// Whether a grid with gaps or overlaps is returned as an error
	Strict bool
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Tolerance: 3.0,
		MaxCells:  1500,
		Strict:    true,
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("tables: tolerance must not be negative, got %v", c.Tolerance)
	}
	if c.MaxCells < 1 {
		return fmt.Errorf("tables: max cells must be at least 1, got %d", c.MaxCells)
	}
	return nil
}
