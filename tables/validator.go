package tables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/cellgrid/model"
)

// Slot is one logical (row, col) position of the grid
type Slot struct {
	Row int
	Col int
}

// Overlap is a slot claimed by more than one cell
type Overlap struct {
	Slot   Slot
	Owners []model.Handle
}

// Report is the result of validating a grid
type Report struct {
	// Owners of every covered slot
	Occupancy map[Slot][]model.Handle

	Overlaps []Overlap
	Gaps     []Slot

	// Covered counts slots with at least one owner; Expected is
	// (MaxRow+1)*(MaxCol+1).
	Covered  int
	Expected int

	// RowSpanSums[r] sums ColSpan over cells starting in row r, and
	// ColSpanSums[c] sums RowSpan over cells starting in column c. Without
	// merges crossing a row (or column) they equal the column (or row) count.
	RowSpanSums []int
	ColSpanSums []int

	Valid bool
}

// Validate builds the occupancy map of a grid and checks that its cells
// partition [0,MaxRow] x [0,MaxCol] exactly once.
func Validate(grid *model.Grid) *Report {
	report := &Report{
		Occupancy:   make(map[Slot][]model.Handle),
		Expected:    grid.RowCount() * grid.ColCount(),
		RowSpanSums: make([]int, grid.RowCount()),
		ColSpanSums: make([]int, grid.ColCount()),
	}

	for _, cell := range grid.Ranges() {
		for r := cell.StartRow; r <= cell.EndRow; r++ {
			for c := cell.StartCol; c <= cell.EndCol; c++ {
				slot := Slot{Row: r, Col: c}
				report.Occupancy[slot] = append(report.Occupancy[slot], cell.ListID)
			}
		}
		if cell.StartRow >= 0 && cell.StartRow < len(report.RowSpanSums) {
			report.RowSpanSums[cell.StartRow] += cell.ColSpan
		}
		if cell.StartCol >= 0 && cell.StartCol < len(report.ColSpanSums) {
			report.ColSpanSums[cell.StartCol] += cell.RowSpan
		}
	}

	for r := 0; r <= grid.MaxRow; r++ {
		for c := 0; c <= grid.MaxCol; c++ {
			slot := Slot{Row: r, Col: c}
			owners := report.Occupancy[slot]
			switch {
			case len(owners) == 0:
				report.Gaps = append(report.Gaps, slot)
			case len(owners) > 1:
				sorted := append([]model.Handle(nil), owners...)
				sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
				report.Overlaps = append(report.Overlaps, Overlap{Slot: slot, Owners: sorted})
			}
		}
	}
	report.Covered = len(report.Occupancy)
	report.Valid = len(report.Overlaps) == 0 && len(report.Gaps) == 0 && report.Covered == report.Expected

	return report
}

// Summary describes the report in a few lines
func (r *Report) Summary() string {
	var sb strings.Builder
	if r.Valid {
		sb.WriteString("valid: ")
	} else {
		sb.WriteString("invalid: ")
	}
	fmt.Fprintf(&sb, "%d of %d slots covered", r.Covered, r.Expected)
	if len(r.Overlaps) > 0 {
		fmt.Fprintf(&sb, "\noverlaps:")
		for _, o := range r.Overlaps {
			fmt.Fprintf(&sb, " (%d,%d)=%v", o.Slot.Row, o.Slot.Col, o.Owners)
		}
	}
	if len(r.Gaps) > 0 {
		fmt.Fprintf(&sb, "\ngaps:")
		for _, g := range r.Gaps {
			fmt.Fprintf(&sb, " (%d,%d)", g.Row, g.Col)
		}
	}
	return sb.String()
}
