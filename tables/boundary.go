package tables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/navigator"
)

// Edge is a bit set of the table edges a cell lies on
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

var edgeNames = []string{"top", "bottom", "left", "right"}

// String lists the set edges, e.g. "top,left"
func (e Edge) String() string {
	var names []string
	for i, name := range edgeNames {
		if e&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

// BoundaryConflict records a cell whose last-column probes disagree. The
// triangulated verdict is the one used; the conflict is kept so callers can
// judge the data quality of the table.
type BoundaryConflict struct {
	Handle       model.Handle
	Triangulated bool // down-right-up path returned to the cell
	RightProbe   bool // plain right move stayed on the cell
}

// BoundaryResult classifies every discovered cell against the table edges
type BoundaryResult struct {
	// Spatially first cell on both the first row and the first column
	Origin model.Handle

	// Last discovered cell classified as last column
	End model.Handle

	FirstRows  []model.Handle
	BottomRows []model.Handle
	FirstCols  []model.Handle // top to bottom
	LastCols   []model.Handle

	Conflicts []BoundaryConflict

	// All cells in discovery order
	Cells []model.Handle

	edges map[model.Handle]Edge
}

// Edges returns the edges h was classified on
func (b *BoundaryResult) Edges(h model.Handle) Edge {
	return b.edges[h]
}

// IsFirstRow reports whether h lies on the top edge
func (b *BoundaryResult) IsFirstRow(h model.Handle) bool { return b.edges[h]&EdgeTop != 0 }

// BoundaryClassifier decides which table edges each cell lies on using only
// moves: a cell is on an edge when the move toward it stays put.
type BoundaryClassifier struct {
	nav *navigator.Navigator
}

// NewBoundaryClassifier creates a classifier over nav
func NewBoundaryClassifier(nav *navigator.Navigator) *BoundaryClassifier {
	return &BoundaryClassifier{nav: nav}
}

// ClassifyBoundaries is a convenience wrapper around BoundaryClassifier.Classify
func ClassifyBoundaries(nav *navigator.Navigator, cells []model.Handle) (*BoundaryResult, error) {
	return NewBoundaryClassifier(nav).Classify(cells)
}

// Classify probes every cell and assembles the boundary sets. It returns
// ErrNotInGridContext when no cell lies on both the first row and the
// first column; the partial result is still returned for diagnosis.
func (bc *BoundaryClassifier) Classify(cells []model.Handle) (*BoundaryResult, error) {
	restore := bc.nav.Save()
	defer restore()

	result := &BoundaryResult{
		Origin: -1,
		End:    -1,
		Cells:  append([]model.Handle(nil), cells...),
		edges:  make(map[model.Handle]Edge, len(cells)),
	}

	for _, h := range cells {
		var e Edge
		if bc.IsFirstRow(h) {
			e |= EdgeTop
			result.FirstRows = append(result.FirstRows, h)
		}
		if bc.IsBottomRow(h) {
			e |= EdgeBottom
			result.BottomRows = append(result.BottomRows, h)
		}
		if bc.IsFirstCol(h) {
			e |= EdgeLeft
			result.FirstCols = append(result.FirstCols, h)
		}

		last := bc.IsLastCol(h)
		probe := bc.nav.Move(h, navigator.Right) == h
		if last != probe {
			result.Conflicts = append(result.Conflicts, BoundaryConflict{Handle: h, Triangulated: last, RightProbe: probe})
			bc.nav.Warn(model.WarningBoundaryConflict, StageClassify, h,
				fmt.Sprintf("last-column triangulation says %t, right probe says %t", last, probe))
		}
		if last {
			e |= EdgeRight
			result.LastCols = append(result.LastCols, h)
			result.End = h
		}
		result.edges[h] = e
	}

	result.FirstCols = bc.sortSpatially(result.FirstCols)

	for _, h := range result.FirstCols {
		if result.IsFirstRow(h) {
			result.Origin = h
			break
		}
	}
	if result.Origin < 0 {
		return result, fmt.Errorf("%s: %w: no cell lies on both the first row and the first column", StageClassify, ErrNotInGridContext)
	}

	bc.nav.Logger().Debug("classified boundaries",
		"cells", len(cells),
		"first_rows", len(result.FirstRows),
		"first_cols", len(result.FirstCols),
		"last_cols", len(result.LastCols),
		"conflicts", len(result.Conflicts))

	return result, nil
}

// IsFirstRow reports whether moving up from h stays on h
func (bc *BoundaryClassifier) IsFirstRow(h model.Handle) bool {
	return bc.nav.Move(h, navigator.Up) == h
}

// IsBottomRow reports whether moving down from h stays on h
func (bc *BoundaryClassifier) IsBottomRow(h model.Handle) bool {
	return bc.nav.Move(h, navigator.Down) == h
}

// IsFirstCol reports whether moving left from h stays on h
func (bc *BoundaryClassifier) IsFirstCol(h model.Handle) bool {
	return bc.nav.Move(h, navigator.Left) == h
}

// IsLastCol triangulates the right edge: down to d, right, then up must
// come back to h. Bottom-row cells use the mirrored up-right-down path and
// a table with a single row falls back to the plain right probe.
func (bc *BoundaryClassifier) IsLastCol(h model.Handle) bool {
	if d := bc.nav.Move(h, navigator.Down); d != h {
		r := bc.nav.Move(d, navigator.Right)
		return bc.nav.Move(r, navigator.Up) == h
	}
	if u := bc.nav.Move(h, navigator.Up); u != h {
		r := bc.nav.Move(u, navigator.Right)
		return bc.nav.Move(r, navigator.Down) == h
	}
	return bc.nav.Move(h, navigator.Right) == h
}

// sortSpatially orders cells top to bottom by the host location signal.
// Handle numbering reflects allocation order, so it cannot be used. Cells
// whose location cannot be read keep their relative order after the rest.
func (bc *BoundaryClassifier) sortSpatially(cells []model.Handle) []model.Handle {
	type located struct {
		h   model.Handle
		loc navigator.Location
		ok  bool
	}

	items := make([]located, len(cells))
	for i, h := range cells {
		loc, err := bc.nav.Locate(h)
		if err != nil {
			bc.nav.Warn(model.WarningCellRead, StageClassify, h, err.Error())
		}
		items[i] = located{h: h, loc: loc, ok: err == nil}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.loc.Before(b.loc)
	})

	sorted := make([]model.Handle, len(items))
	for i, it := range items {
		sorted[i] = it.h
	}
	return sorted
}
