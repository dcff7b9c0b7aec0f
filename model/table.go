package model

import (
	"sort"
	"strconv"
	"strings"
)

// CellRange is the logical placement of one cell in the reconstructed grid,
// together with the physical rectangle it was derived from.
type CellRange struct {
	ListID   Handle
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
	RowSpan  int
	ColSpan  int

	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

// NewCellRange builds a range from its inclusive logical corners. Spans are
// derived from the corners.
func NewCellRange(id Handle, startRow, startCol, endRow, endCol int, pos Position) CellRange {
	return CellRange{
		ListID:   id,
		StartRow: startRow,
		StartCol: startCol,
		EndRow:   endRow,
		EndCol:   endCol,
		RowSpan:  endRow - startRow + 1,
		ColSpan:  endCol - startCol + 1,
		StartX:   pos.StartX,
		StartY:   pos.StartY,
		EndX:     pos.EndX,
		EndY:     pos.EndY,
	}
}

// Position returns the physical rectangle of the range
func (c CellRange) Position() Position {
	return Position{StartX: c.StartX, StartY: c.StartY, EndX: c.EndX, EndY: c.EndY}
}

// IsMerged reports whether the cell spans more than one logical slot
func (c CellRange) IsMerged() bool {
	return c.RowSpan > 1 || c.ColSpan > 1
}

// Covers reports whether the logical slot (row, col) belongs to this range
func (c CellRange) Covers(row, col int) bool {
	return row >= c.StartRow && row <= c.EndRow && col >= c.StartCol && col <= c.EndCol
}

// Grid is the reconstructed logical structure of a table. XLevels and
// YLevels are the column and row boundaries; index i of YLevels is the top
// edge of logical row i.
type Grid struct {
	Cells   map[Handle]CellRange
	XLevels []float64
	YLevels []float64
	MaxRow  int
	MaxCol  int
}

// NewGrid creates an empty grid
func NewGrid() *Grid {
	return &Grid{
		Cells:   make(map[Handle]CellRange),
		XLevels: make([]float64, 0),
		YLevels: make([]float64, 0),
		MaxRow:  -1,
		MaxCol:  -1,
	}
}

// RowCount returns the number of logical rows
func (g *Grid) RowCount() int {
	return g.MaxRow + 1
}

// ColCount returns the number of logical columns
func (g *Grid) ColCount() int {
	return g.MaxCol + 1
}

// Ranges returns the cells ordered by start row, then start column, then id
func (g *Grid) Ranges() []CellRange {
	ranges := make([]CellRange, 0, len(g.Cells))
	for _, c := range g.Cells {
		ranges = append(ranges, c)
	}
	sort.Slice(ranges, func(i, j int) bool {
		a, b := ranges[i], ranges[j]
		if a.StartRow != b.StartRow {
			return a.StartRow < b.StartRow
		}
		if a.StartCol != b.StartCol {
			return a.StartCol < b.StartCol
		}
		return a.ListID < b.ListID
	})
	return ranges
}

// At returns the range covering (row, col). When several ranges claim the
// slot the one with the lowest id is returned.
func (g *Grid) At(row, col int) (CellRange, bool) {
	var (
		found CellRange
		ok    bool
	)
	for _, c := range g.Cells {
		if !c.Covers(row, col) {
			continue
		}
		if !ok || c.ListID < found.ListID {
			found = c
			ok = true
		}
	}
	return found, ok
}

// Layout returns a (MaxRow+1) x (MaxCol+1) matrix of owning handles, -1 for
// uncovered slots. Merged cells repeat their id in every slot they span; a
// slot claimed by several cells shows the one At returns.
func (g *Grid) Layout() [][]Handle {
	layout := make([][]Handle, g.RowCount())
	for r := range layout {
		layout[r] = make([]Handle, g.ColCount())
		for c := range layout[r] {
			layout[r][c] = -1
			if cell, ok := g.At(r, c); ok {
				layout[r][c] = cell.ListID
			}
		}
	}
	return layout
}

// ToMarkdown renders the layout as a markdown table of cell ids. Slots that
// continue a merged cell are written as "^" (from above) or "<" (from the
// left); uncovered slots are left blank.
func (g *Grid) ToMarkdown() string {
	layout := g.Layout()
	if len(layout) == 0 || len(layout[0]) == 0 {
		return ""
	}

	var sb strings.Builder

	// Header row
	for j := range layout[0] {
		sb.WriteString("| c")
		sb.WriteString(strconv.Itoa(j))
		sb.WriteString(" ")
	}
	sb.WriteString("|\n")

	// Separator
	for range layout[0] {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	for i, row := range layout {
		for j, id := range row {
			sb.WriteString("| ")
			sb.WriteString(slotLabel(layout, i, j, id))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	return sb.String()
}

// ToCSV renders the layout as CSV, one logical row per line. Every slot of a
// merged cell repeats the cell id.
func (g *Grid) ToCSV() string {
	var sb strings.Builder
	for _, row := range g.Layout() {
		for j, id := range row {
			if id >= 0 {
				sb.WriteString(strconv.Itoa(int(id)))
			}
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func slotLabel(layout [][]Handle, i, j int, id Handle) string {
	switch {
	case id < 0:
		return ""
	case j > 0 && layout[i][j-1] == id:
		return "<"
	case i > 0 && layout[i-1][j] == id:
		return "^"
	default:
		return strconv.Itoa(int(id))
	}
}
