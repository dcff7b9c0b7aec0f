package host

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/navigator"
)

var (
	// ErrInvalidLayout is returned when a table layout cannot be built.
	ErrInvalidLayout = errors.New("host: invalid table layout")

	// ErrUnknownCell is returned when a handle does not name a cell.
	ErrUnknownCell = errors.New("host: unknown cell")

	// ErrReadFailed is returned for reads that were configured to fail.
	ErrReadFailed = errors.New("host: read failed")
)

// Merge describes a cell spanning more than one logical slot
type Merge struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// cell is one physical cell of the table
type cell struct {
	handle   model.Handle
	row, col int
	rowSpan  int
	colSpan  int
}

func (c *cell) endRow() int { return c.row + c.rowSpan - 1 }
func (c *cell) endCol() int { return c.col + c.colSpan - 1 }

// Table is an in-memory table host with word-processor movement rules:
//
//   - Right goes to the cell holding (row, endCol+1) of the current cell
//   - Left goes to the cell holding (row, col-1)
//   - Down goes to the cell holding (endRow+1, col)
//   - Up goes to the cell holding (row-1, col)
//
// where (row, col) is the top-left slot of the current cell. A move off the
// table returns the current cell. Table is not safe for concurrent use.
type Table struct {
	colWidths  []float64
	rowHeights []float64

	cells  []*cell
	slots  [][]*cell
	byID   map[model.Handle]*cell
	cursor *cell

	pageRows   int
	jitter     float64
	failExtent map[model.Handle]bool
	failLocate map[model.Handle]bool
}

// Option configures a Table
type Option func(*tableOptions)

type tableOptions struct {
	seed     int64
	shuffle  bool
	pageRows int
	jitter   float64
}

// WithShuffledHandles assigns handles in a seeded random order so that
// handle numbering carries no spatial information.
func WithShuffledHandles(seed int64) Option {
	return func(o *tableOptions) {
		o.shuffle = true
		o.seed = seed
	}
}

// WithPageRows splits rows over pages of n rows for the location signal
func WithPageRows(n int) Option {
	return func(o *tableOptions) {
		o.pageRows = n
	}
}

// WithJitter perturbs every size read by a deterministic amount in
// [-max, max] to imitate rounding in a real host.
func WithJitter(max float64) Option {
	return func(o *tableOptions) {
		o.jitter = max
	}
}

// NewTable builds a table from column widths, row heights and merged cells.
// Every slot not covered by a merge becomes its own 1x1 cell. Handles start
// at 1 and follow row-major order of the cells' top-left slots unless
// shuffled.
func NewTable(colWidths, rowHeights []float64, merges []Merge, opts ...Option) (*Table, error) {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}

	rows, cols := len(rowHeights), len(colWidths)
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: table needs at least one row and one column", ErrInvalidLayout)
	}

	t := &Table{
		colWidths:  append([]float64(nil), colWidths...),
		rowHeights: append([]float64(nil), rowHeights...),
		slots:      make([][]*cell, rows),
		byID:       make(map[model.Handle]*cell),
		pageRows:   o.pageRows,
		jitter:     o.jitter,
		failExtent: make(map[model.Handle]bool),
		failLocate: make(map[model.Handle]bool),
	}
	for r := range t.slots {
		t.slots[r] = make([]*cell, cols)
	}

	for _, m := range merges {
		if m.RowSpan < 1 || m.ColSpan < 1 {
			return nil, fmt.Errorf("%w: merge at (%d,%d) has span %dx%d", ErrInvalidLayout, m.Row, m.Col, m.RowSpan, m.ColSpan)
		}
		c := &cell{row: m.Row, col: m.Col, rowSpan: m.RowSpan, colSpan: m.ColSpan}
		if err := t.place(c); err != nil {
			return nil, err
		}
	}
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			if t.slots[r][col] == nil {
				if err := t.place(&cell{row: r, col: col, rowSpan: 1, colSpan: 1}); err != nil {
					return nil, err
				}
			}
		}
	}

	t.assignHandles(o)
	t.cursor = t.slots[0][0]
	return t, nil
}

// place claims every slot covered by c
func (t *Table) place(c *cell) error {
	if c.row < 0 || c.col < 0 || c.endRow() >= len(t.rowHeights) || c.endCol() >= len(t.colWidths) {
		return fmt.Errorf("%w: cell at (%d,%d) spanning %dx%d is out of bounds", ErrInvalidLayout, c.row, c.col, c.rowSpan, c.colSpan)
	}
	for r := c.row; r <= c.endRow(); r++ {
		for col := c.col; col <= c.endCol(); col++ {
			if t.slots[r][col] != nil {
				return fmt.Errorf("%w: slot (%d,%d) claimed twice", ErrInvalidLayout, r, col)
			}
		}
	}
	for r := c.row; r <= c.endRow(); r++ {
		for col := c.col; col <= c.endCol(); col++ {
			t.slots[r][col] = c
		}
	}
	return nil
}

// assignHandles numbers cells in row-major order of their top-left slot,
// then optionally shuffles the numbering
func (t *Table) assignHandles(o tableOptions) {
	for r := range t.slots {
		for col, c := range t.slots[r] {
			if c.row == r && c.col == col {
				t.cells = append(t.cells, c)
			}
		}
	}

	ids := make([]model.Handle, len(t.cells))
	for i := range ids {
		ids[i] = model.Handle(i + 1)
	}
	if o.shuffle {
		rng := rand.New(rand.NewSource(o.seed))
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	for i, c := range t.cells {
		c.handle = ids[i]
		t.byID[c.handle] = c
	}
}

// CellCount returns the number of physical cells
func (t *Table) CellCount() int {
	return len(t.cells)
}

// Dimensions returns the number of logical rows and columns
func (t *Table) Dimensions() (rows, cols int) {
	return len(t.rowHeights), len(t.colWidths)
}

// HandleAt returns the cell holding the logical slot (row, col)
func (t *Table) HandleAt(row, col int) (model.Handle, bool) {
	if row < 0 || row >= len(t.slots) || col < 0 || col >= len(t.slots[row]) {
		return 0, false
	}
	return t.slots[row][col].handle, true
}

// Span returns the logical placement of h as (row, col, rowSpan, colSpan)
func (t *Table) Span(h model.Handle) (row, col, rowSpan, colSpan int, ok bool) {
	c, ok := t.byID[h]
	if !ok {
		return 0, 0, 0, 0, false
	}
	return c.row, c.col, c.rowSpan, c.colSpan, true
}

// FailExtent makes size reads of h fail
func (t *Table) FailExtent(h model.Handle) {
	t.failExtent[h] = true
}

// FailLocate makes location reads of h fail
func (t *Table) FailLocate(h model.Handle) {
	t.failLocate[h] = true
}

// Leave moves the cursor outside the table
func (t *Table) Leave() {
	t.cursor = nil
}

// Current implements navigator.Host
func (t *Table) Current() (model.Handle, error) {
	if t.cursor == nil {
		return 0, navigator.ErrNotInGrid
	}
	return t.cursor.handle, nil
}

// Goto implements navigator.Host
func (t *Table) Goto(h model.Handle) error {
	c, ok := t.byID[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCell, h)
	}
	t.cursor = c
	return nil
}

// Step implements navigator.Host
func (t *Table) Step(d navigator.Direction) (model.Handle, error) {
	if t.cursor == nil {
		return 0, navigator.ErrNotInGrid
	}
	c := t.cursor
	row, col := c.row, c.col
	switch d {
	case navigator.Right:
		col = c.endCol() + 1
	case navigator.Left:
		col = c.col - 1
	case navigator.Down:
		row = c.endRow() + 1
	case navigator.Up:
		row = c.row - 1
	default:
		return c.handle, fmt.Errorf("host: unsupported direction %v", d)
	}
	if row < 0 || row >= len(t.slots) || col < 0 || col >= len(t.slots[row]) {
		return c.handle, nil
	}
	t.cursor = t.slots[row][col]
	return t.cursor.handle, nil
}

// Extent implements navigator.Host
func (t *Table) Extent() (model.Size, error) {
	if t.cursor == nil {
		return model.Size{}, navigator.ErrNotInGrid
	}
	c := t.cursor
	if t.failExtent[c.handle] {
		return model.Size{}, fmt.Errorf("%w: extent of cell %d", ErrReadFailed, c.handle)
	}
	var size model.Size
	for col := c.col; col <= c.endCol(); col++ {
		size.Width += t.colWidths[col]
	}
	for r := c.row; r <= c.endRow(); r++ {
		size.Height += t.rowHeights[r]
	}
	if t.jitter != 0 {
		size.Width += t.noise(c.handle, 1)
		size.Height += t.noise(c.handle, 2)
	}
	return size, nil
}

// noise returns a deterministic offset in [-jitter, jitter] for a cell
func (t *Table) noise(h model.Handle, salt int) float64 {
	v := (int(h)*7919 + salt*104729) % 17
	if v < 0 {
		v = -v
	}
	return t.jitter * (float64(v)/8 - 1)
}

// Locate implements navigator.Host
func (t *Table) Locate() (navigator.Location, error) {
	if t.cursor == nil {
		return navigator.Location{}, navigator.ErrNotInGrid
	}
	c := t.cursor
	if t.failLocate[c.handle] {
		return navigator.Location{}, fmt.Errorf("%w: location of cell %d", ErrReadFailed, c.handle)
	}
	if t.pageRows > 0 {
		return navigator.Location{Page: c.row / t.pageRows, Line: c.row % t.pageRows}, nil
	}
	return navigator.Location{Line: c.row}, nil
}

// marker is the saved cursor of a Table
type marker struct {
	cell *cell
}

// Mark implements navigator.Host
func (t *Table) Mark() (navigator.Marker, error) {
	return marker{cell: t.cursor}, nil
}

// Restore implements navigator.Host
func (t *Table) Restore(m navigator.Marker) error {
	saved, ok := m.(marker)
	if !ok {
		return fmt.Errorf("host: foreign marker %T", m)
	}
	t.cursor = saved.cell
	return nil
}
