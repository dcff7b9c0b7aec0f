// Package model provides the data structures produced when a table's
// logical grid is reconstructed from cell navigation.
//
// These types form the contract that consumers such as exporters and
// visualizers depend on. Every calculation produces them fresh; none of them
// hold references back into the host that was traversed.
//
// # Cells
//
// A [Handle] identifies one cell of the host table. Its physical rectangle is
// a [Position], accumulated from per-cell [Size] reads during traversal.
//
// # Grid
//
// The [Grid] holds one [CellRange] per cell along with the row and column
// boundary levels:
//
//	grid := result.Grid
//	fmt.Println(grid.RowCount(), grid.ColCount())
//	for _, cell := range grid.Ranges() {
//	    fmt.Println(cell.ListID, cell.RowSpan, cell.ColSpan)
//	}
//
// Layout helpers render the grid as a matrix of handles:
//
//   - [Grid.Layout] - owning handle for each logical slot
//   - [Grid.ToMarkdown] - markdown table with merge markers
//   - [Grid.ToCSV] - comma separated handles
//
// # Warnings
//
// Non-fatal problems (unreadable cells, failed moves, conflicting boundary
// probes) are reported as [Warning] values rather than errors.
package model
