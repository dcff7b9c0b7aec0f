// Package config loads cellgrid settings from a YAML file.
//
// A settings file only needs the fields it changes:
//
//	# cellgrid settings
//	tolerance: 1.5
//	max_cells: 4000
//	strict: false
//	log_level: debug
//
// Omitted fields keep the engine defaults from tables.DefaultConfig.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/cellgrid/tables"
)

// MaxFileSize is the largest settings file Load accepts
const MaxFileSize = 1 * 1024 * 1024

// Settings models a cellgrid settings file. Nil fields were not present in
// the file.
type Settings struct {
	Tolerance *float64 `yaml:"tolerance,omitempty"`
	MaxCells  *int     `yaml:"max_cells,omitempty"`
	Strict    *bool    `yaml:"strict,omitempty"`

	// One of debug, info, warn, error; empty disables logging
	LogLevel string `yaml:"log_level,omitempty"`
}

// Load reads and validates a settings file. The file must have a .yaml or
// .yml extension and be at most MaxFileSize bytes.
func Load(path string) (*Settings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("settings file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("settings file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates settings from YAML. Unknown keys are errors so
// that a misspelled setting does not silently keep its default.
func Parse(data []byte) (*Settings, error) {
	s := &Settings{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty file decodes to io.EOF and means all defaults
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Validate checks the values present in s
func (s *Settings) Validate() error {
	if s.Tolerance != nil && *s.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %v", *s.Tolerance)
	}
	if s.MaxCells != nil && *s.MaxCells < 1 {
		return fmt.Errorf("max_cells must be at least 1, got %d", *s.MaxCells)
	}
	if _, _, err := parseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// Apply returns base with every field present in s overridden
func (s *Settings) Apply(base tables.Config) tables.Config {
	if s == nil {
		return base
	}
	if s.Tolerance != nil {
		base.Tolerance = *s.Tolerance
	}
	if s.MaxCells != nil {
		base.MaxCells = *s.MaxCells
	}
	if s.Strict != nil {
		base.Strict = *s.Strict
	}
	return base
}

// Level returns the configured log level. ok is false when logging was not
// requested.
func (s *Settings) Level() (level slog.Level, ok bool) {
	if s == nil {
		return slog.LevelInfo, false
	}
	level, ok, _ = parseLevel(s.LogLevel)
	return level, ok
}

func parseLevel(name string) (slog.Level, bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return slog.LevelInfo, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	}
	return slog.LevelInfo, false, fmt.Errorf("unknown log_level %q", name)
}
