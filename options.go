package cellgrid

import (
	"log/slog"

	"github.com/tsawler/cellgrid/tables"
)

// CalculateOptions holds configuration for a grid calculation.
type CalculateOptions struct {
	config tables.Config

	// nil means the package logger
	logger *slog.Logger
}

// defaultOptions returns the default calculation options.
func defaultOptions() CalculateOptions {
	return CalculateOptions{
		config: tables.DefaultConfig(),
		logger: nil,
	}
}

// clone creates a copy of CalculateOptions.
func (o CalculateOptions) clone() CalculateOptions {
	return CalculateOptions{
		config: o.config,
		logger: o.logger,
	}
}
