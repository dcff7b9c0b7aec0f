package tables

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/cellgrid/host"
	"github.com/tsawler/cellgrid/model"
)

// layout describes a test table by its column widths, row heights and merges
type layout struct {
	name    string
	widths  []float64
	heights []float64
	merges  []host.Merge
}

func (l layout) build(t *testing.T, opts ...host.Option) *host.Table {
	t.Helper()
	tbl, err := host.NewTable(l.widths, l.heights, l.merges, opts...)
	if err != nil {
		t.Fatalf("%s: NewTable failed: %v", l.name, err)
	}
	return tbl
}

// truePosition is the rectangle a cell occupies according to the layout
func (l layout) truePosition(tbl *host.Table, h model.Handle) model.Position {
	row, col, rowSpan, colSpan, _ := tbl.Span(h)
	var pos model.Position
	for c := 0; c < col+colSpan; c++ {
		if c < col {
			pos.StartX += l.widths[c]
		}
		pos.EndX += l.widths[c]
	}
	for r := 0; r < row+rowSpan; r++ {
		if r < row {
			pos.StartY += l.heights[r]
		}
		pos.EndY += l.heights[r]
	}
	return pos
}

func merge(row, col, rowSpan, colSpan int) host.Merge {
	return host.Merge{Row: row, Col: col, RowSpan: rowSpan, ColSpan: colSpan}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var mergedLayouts = []layout{
	{"uniform", repeat(100, 3), repeat(50, 3), nil},
	{"colspan", repeat(100, 3), repeat(50, 3), []host.Merge{merge(0, 0, 1, 2)}},
	{"rowspan first column", repeat(100, 3), repeat(50, 3), []host.Merge{merge(0, 0, 2, 1)}},
	{"rowspan middle column", repeat(100, 3), repeat(50, 3), []host.Merge{merge(0, 1, 2, 1)}},
	{"rowspan last column", repeat(100, 3), repeat(50, 3), []host.Merge{merge(0, 2, 3, 1)}},
	{"colspan bottom row", repeat(100, 3), repeat(50, 3), []host.Merge{merge(2, 0, 1, 3)}},
	{"inner block", repeat(100, 4), repeat(50, 4), []host.Merge{merge(1, 1, 2, 2)}},
	{"irregular", []float64{80, 120, 60, 100}, []float64{40, 30, 50, 20, 60}, []host.Merge{
		merge(0, 1, 1, 2), merge(1, 0, 2, 1), merge(1, 2, 3, 1),
		merge(3, 0, 1, 2), merge(4, 1, 1, 3), merge(2, 3, 2, 1),
	}},
	{"mixed", []float64{90, 110, 70, 130, 50}, []float64{30, 60, 40, 50}, []host.Merge{
		merge(0, 0, 1, 5), merge(1, 0, 3, 1), merge(1, 1, 1, 2), merge(2, 1, 2, 1),
		merge(2, 2, 1, 3), merge(1, 3, 1, 2), merge(3, 2, 1, 1),
	}},
	// the last column's rowspan is reachable from the lower sub-row of the
	// band before it is reached along its own top row
	{"staggered rowspans", repeat(100, 8), repeat(50, 3), []host.Merge{
		merge(0, 1, 2, 1), merge(0, 3, 1, 2), merge(1, 7, 2, 1),
		merge(1, 0, 2, 1), merge(2, 2, 1, 2), merge(2, 5, 1, 2),
	}},
}

func TestCollectPositions(t *testing.T) {
	for _, l := range mergedLayouts {
		t.Run(l.name, func(t *testing.T) {
			tbl := l.build(t, host.WithShuffledHandles(5))
			nav, boundary := classify(t, tbl)

			c, err := CollectCoordinates(nav, boundary, DefaultConfig())
			if err != nil {
				t.Fatalf("CollectCoordinates failed: %v", err)
			}
			if len(c.Positions) != tbl.CellCount() {
				t.Errorf("Expected %d positions, got %d", tbl.CellCount(), len(c.Positions))
			}
			for _, h := range c.Handles() {
				want := l.truePosition(tbl, h)
				if got := c.Positions[h]; got != want {
					t.Errorf("Cell %d: expected %+v, got %+v", h, want, got)
				}
			}
			if len(c.XCoords) != 4*len(c.Positions) || len(c.YCoords) != 4*len(c.Positions) {
				t.Errorf("Expected four corners per cell, got %d x and %d y", len(c.XCoords), len(c.YCoords))
			}
			if c.Incomplete || len(c.Dropped) != 0 {
				t.Errorf("Expected complete collection, got incomplete=%v dropped=%v", c.Incomplete, c.Dropped)
			}
		})
	}
}

func TestCollectOrderFollowsBands(t *testing.T) {
	l := mergedLayouts[0]
	tbl := l.build(t)
	nav, boundary := classify(t, tbl)

	c, err := CollectCoordinates(nav, boundary, DefaultConfig())
	if err != nil {
		t.Fatalf("CollectCoordinates failed: %v", err)
	}
	for i, h := range c.Order {
		if int(h) != i+1 {
			t.Errorf("Expected row-major record order, got %v", c.Order)
			break
		}
	}
}

func TestCollectJitter(t *testing.T) {
	for _, l := range mergedLayouts {
		t.Run(l.name, func(t *testing.T) {
			tbl := l.build(t, host.WithJitter(0.25))
			nav, boundary := classify(t, tbl)

			c, err := CollectCoordinates(nav, boundary, DefaultConfig())
			if err != nil {
				t.Fatalf("CollectCoordinates failed: %v", err)
			}
			for _, h := range c.Handles() {
				want := l.truePosition(tbl, h)
				got := c.Positions[h]
				if math.Abs(got.StartX-want.StartX) > 2 || math.Abs(got.StartY-want.StartY) > 2 {
					t.Errorf("Cell %d: %+v drifted too far from %+v", h, got, want)
				}
			}
		})
	}
}

func TestCollectReadFailure(t *testing.T) {
	// | 1 | 2 | 3 |
	// | 4 | 5 | 6 |
	// | 7 | 8 | 9 |
	tbl := uniformTable(t, 3, 3, nil)
	tbl.FailExtent(6)
	nav, boundary := classify(t, tbl)

	c, err := CollectCoordinates(nav, boundary, DefaultConfig())
	if err != nil {
		t.Fatalf("CollectCoordinates failed: %v", err)
	}
	if len(c.Dropped) != 1 || c.Dropped[0] != 6 {
		t.Errorf("Expected cell 6 dropped, got %v", c.Dropped)
	}
	if len(c.Positions) != 8 {
		t.Errorf("Expected 8 positions, got %d", len(c.Positions))
	}
	if _, ok := c.Positions[6]; ok {
		t.Error("Expected no position for the dropped cell")
	}

	var reads int
	for _, w := range nav.Warnings() {
		if w.Kind == model.WarningCellRead && w.Handle == 6 {
			reads++
		}
	}
	if reads != 1 {
		t.Errorf("Expected one cell-read warning for cell 6, got %d", reads)
	}
}

func TestCollectBandOpenerFailure(t *testing.T) {
	// |  1 |  2 |  3 |
	// |  4 |  5 |  6 |
	// |  7 |  8 |  9 |
	// | 10 | 11 | 12 |
	l := layout{"uniform", repeat(100, 3), repeat(50, 4), nil}
	tbl := l.build(t)
	tbl.FailExtent(7)
	nav, boundary := classify(t, tbl)

	c, err := CollectCoordinates(nav, boundary, DefaultConfig())
	if err != nil {
		t.Fatalf("CollectCoordinates failed: %v", err)
	}
	if diff := cmp.Diff([]model.Handle{7}, c.Dropped); diff != "" {
		t.Errorf("Dropped mismatch (-want +got):\n%s", diff)
	}
	if len(c.Positions) != 11 {
		t.Errorf("Expected 11 positions, got %d", len(c.Positions))
	}
	// the rest of the band keeps its row, and the bands below do not move up
	for _, h := range c.Handles() {
		if want := l.truePosition(tbl, h); c.Positions[h] != want {
			t.Errorf("Cell %d: expected %+v, got %+v", h, want, c.Positions[h])
		}
	}
}

func TestCollectBandOpenerFailureAnchors(t *testing.T) {
	tests := []struct {
		name string
		l    layout
		fail model.Handle
	}{
		{
			// | 1 | 2 | 3 |
			// | 4 | 5 | 6 |
			name: "first band placed from the band below",
			l:    layout{"uniform", repeat(100, 3), repeat(50, 2), nil},
			fail: 1,
		},
		{
			// | 1 | 2 | 3 |
			// | 4 | 2 | 5 |
			// | 6 | 7 | 8 |
			name: "band started from a rowspan above",
			l:    layout{"rowspan", repeat(100, 3), repeat(50, 3), []host.Merge{merge(0, 1, 2, 1)}},
			fail: 4,
		},
		{
			// | 1 | 2 | 3 |
			// | 4 | 5 | 6 |
			// | 7 | 8 | 8 |
			name: "middle band placed from the band above",
			l:    layout{"colspan", repeat(100, 3), repeat(50, 3), []host.Merge{merge(2, 1, 1, 2)}},
			fail: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := tt.l.build(t)
			tbl.FailExtent(tt.fail)
			nav, boundary := classify(t, tbl)

			c, err := CollectCoordinates(nav, boundary, DefaultConfig())
			if err != nil {
				t.Fatalf("CollectCoordinates failed: %v", err)
			}
			if len(c.Positions) != tbl.CellCount()-1 {
				t.Errorf("Expected %d positions, got %d", tbl.CellCount()-1, len(c.Positions))
			}
			for _, h := range c.Handles() {
				if want := tt.l.truePosition(tbl, h); c.Positions[h] != want {
					t.Errorf("Cell %d: expected %+v, got %+v", h, want, c.Positions[h])
				}
			}
			if len(c.XCoords) != 4*len(c.Positions) {
				t.Errorf("Expected four corners per cell, got %d", len(c.XCoords))
			}
		})
	}
}

func TestCollectUnplaceableBand(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		fail       []model.Handle
	}{
		{"single column", 3, 1, []model.Handle{2}},
		{"whole row unreadable", 2, 2, []model.Handle{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := uniformTable(t, tt.rows, tt.cols, nil)
			for _, h := range tt.fail {
				tbl.FailExtent(h)
			}
			nav, boundary := classify(t, tbl)

			c, err := CollectCoordinates(nav, boundary, DefaultConfig())
			if !errors.Is(err, ErrUnplaceableBand) {
				t.Fatalf("Expected ErrUnplaceableBand, got %v", err)
			}
			if c.Incomplete {
				t.Error("Expected unplaceable band not to be reported as a cap")
			}
			if diff := cmp.Diff(tt.fail, c.Dropped); diff != "" {
				t.Errorf("Dropped mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectCap(t *testing.T) {
	tbl := uniformTable(t, 3, 3, nil)
	nav, boundary := classify(t, tbl)

	config := DefaultConfig()
	config.MaxCells = 5
	c, err := CollectCoordinates(nav, boundary, config)
	if !errors.Is(err, ErrTraversalCap) {
		t.Fatalf("Expected ErrTraversalCap, got %v", err)
	}
	var capErr *CapError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected *CapError, got %T", err)
	}
	if capErr.Stage != StageCollect || capErr.Limit != 5 {
		t.Errorf("Unexpected cap error %+v", capErr)
	}
	if !c.Incomplete {
		t.Error("Expected incomplete collection")
	}
	if len(c.Positions) != 5 {
		t.Errorf("Expected 5 partial positions, got %d", len(c.Positions))
	}
}

func TestCollectRestoresCursor(t *testing.T) {
	tbl := uniformTable(t, 2, 2, nil)
	nav, boundary := classify(t, tbl)
	if err := tbl.Goto(4); err != nil {
		t.Fatal(err)
	}
	if _, err := CollectCoordinates(nav, boundary, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if h, _ := tbl.Current(); h != 4 {
		t.Errorf("Expected cursor on 4, got %d", h)
	}
}
