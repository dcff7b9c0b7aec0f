package tables

import (
	"github.com/tsawler/cellgrid/model"
)

// Levels are the quantized grid lines of a collection
type Levels struct {
	X []float64
	Y []float64
}

// Quantize merges the raw corner coordinates of a collection into levels
func Quantize(c *Collection, tolerance float64) Levels {
	return Levels{
		X: MergeCloseLevels(c.XCoords, tolerance),
		Y: MergeCloseLevels(c.YCoords, tolerance),
	}
}

// MapGrid resolves every recorded rectangle to logical rows and columns.
// Cells are mapped in handle order; the first coordinate that matches no
// level aborts the mapping with a *MappingError, since a partial grid would
// misplace every cell after it.
func MapGrid(c *Collection, levels Levels, tolerance float64) (*model.Grid, error) {
	grid := model.NewGrid()
	grid.XLevels = append(grid.XLevels, levels.X...)
	grid.YLevels = append(grid.YLevels, levels.Y...)

	for _, h := range c.Handles() {
		cell, err := mapCell(h, c.Positions[h], levels, tolerance)
		if err != nil {
			return nil, err
		}
		grid.Cells[h] = cell
		if cell.EndRow > grid.MaxRow {
			grid.MaxRow = cell.EndRow
		}
		if cell.EndCol > grid.MaxCol {
			grid.MaxCol = cell.EndCol
		}
	}
	return grid, nil
}

// mapCell resolves one rectangle
func mapCell(h model.Handle, pos model.Position, levels Levels, tolerance float64) (model.CellRange, error) {
	startRow := FindLevelIndex(pos.StartY, levels.Y, tolerance)
	if startRow < 0 {
		return model.CellRange{}, &MappingError{Handle: h, Axis: "y", Edge: "start", Value: pos.StartY, Levels: levels.Y}
	}
	startCol := FindLevelIndex(pos.StartX, levels.X, tolerance)
	if startCol < 0 {
		return model.CellRange{}, &MappingError{Handle: h, Axis: "x", Edge: "start", Value: pos.StartX, Levels: levels.X}
	}
	// An end index below its start means the cell collapsed onto one level.
	endRow := FindEndLevelIndex(pos.EndY, levels.Y, tolerance)
	if endRow < startRow {
		return model.CellRange{}, &MappingError{Handle: h, Axis: "y", Edge: "end", Value: pos.EndY, Levels: levels.Y}
	}
	endCol := FindEndLevelIndex(pos.EndX, levels.X, tolerance)
	if endCol < startCol {
		return model.CellRange{}, &MappingError{Handle: h, Axis: "x", Edge: "end", Value: pos.EndX, Levels: levels.X}
	}
	return model.NewCellRange(h, startRow, startCol, endRow, endCol, pos), nil
}
