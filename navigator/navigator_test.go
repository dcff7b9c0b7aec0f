package navigator_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/cellgrid/host"
	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/navigator"
)

func newTable(t *testing.T, rows, cols int, merges []host.Merge, opts ...host.Option) *host.Table {
	t.Helper()
	widths := make([]float64, cols)
	heights := make([]float64, rows)
	for i := range widths {
		widths[i] = 100
	}
	for i := range heights {
		heights[i] = 50
	}
	tbl, err := host.NewTable(widths, heights, merges, opts...)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return tbl
}

// endless is a host whose every move reaches a new cell
type endless struct {
	cursor model.Handle
	next   model.Handle
}

func (e *endless) Current() (model.Handle, error) {
	return e.cursor, nil
}

func (e *endless) Goto(h model.Handle) error {
	e.cursor = h
	return nil
}

func (e *endless) Step(navigator.Direction) (model.Handle, error) {
	e.next++
	e.cursor = e.next
	return e.cursor, nil
}

func (e *endless) Extent() (model.Size, error) {
	return model.Size{Width: 10, Height: 10}, nil
}

func (e *endless) Locate() (navigator.Location, error) {
	return navigator.Location{}, nil
}

func (e *endless) Mark() (navigator.Marker, error) {
	return e.cursor, nil
}

func (e *endless) Restore(m navigator.Marker) error {
	e.cursor = m.(model.Handle)
	return nil
}

// broken is a host whose moves and markers fail
type broken struct {
	endless
}

func (b *broken) Step(navigator.Direction) (model.Handle, error) {
	return b.cursor, errors.New("host crashed")
}

func (b *broken) Mark() (navigator.Marker, error) { return nil, errors.New("no markers") }

// outside is a host whose moves leave the table
type outside struct {
	endless
}

func (o *outside) Step(navigator.Direction) (model.Handle, error) {
	return o.cursor, navigator.ErrOutsideGrid
}

// hollow is a host whose cells report no extent
type hollow struct {
	endless
}

func (h *hollow) Extent() (model.Size, error) { return model.Size{}, nil }

func TestDirectionString(t *testing.T) {
	if navigator.Left.String() != "left" || navigator.Down.String() != "down" {
		t.Error("Unexpected direction names")
	}
	if navigator.Direction(9).String() != "direction(9)" {
		t.Errorf("Unexpected name for unknown direction: %s", navigator.Direction(9))
	}
}

func TestLocationBefore(t *testing.T) {
	a := navigator.Location{Page: 0, Line: 5}
	b := navigator.Location{Page: 1, Line: 0}
	if !a.Before(b) || b.Before(a) {
		t.Error("Expected page to order before line")
	}
	if a.Before(a) {
		t.Error("Expected Before to be strict")
	}
}

func TestMove(t *testing.T) {
	tbl := newTable(t, 2, 2, nil)
	nav := navigator.New(tbl, nil)

	if got := nav.Move(1, navigator.Right); got != 2 {
		t.Errorf("Expected 2 right of 1, got %d", got)
	}
	if got := nav.Move(1, navigator.Left); got != 1 {
		t.Errorf("Expected edge move to return 1, got %d", got)
	}
	if got := nav.Move(2, navigator.Down); got != 4 {
		t.Errorf("Expected 4 below 2, got %d", got)
	}
	if nav.Stats().Moves != 3 {
		t.Errorf("Expected 3 moves, got %d", nav.Stats().Moves)
	}
	if len(nav.Warnings()) != 0 {
		t.Errorf("Expected no warnings, got %v", nav.Warnings())
	}
}

func TestMoveFailure(t *testing.T) {
	tbl := newTable(t, 2, 2, nil)
	nav := navigator.New(tbl, nil)

	if got := nav.Move(99, navigator.Right); got != 99 {
		t.Errorf("Expected failed move to return its handle, got %d", got)
	}
	warnings := nav.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != model.WarningNavigation {
		t.Fatalf("Expected one navigation warning, got %v", warnings)
	}

	b := &broken{}
	nav = navigator.New(b, nil)
	if got := nav.Move(3, navigator.Up); got != 3 {
		t.Errorf("Expected failed step to return its handle, got %d", got)
	}
	if len(nav.Warnings()) != 1 {
		t.Errorf("Expected one warning, got %d", len(nav.Warnings()))
	}
}

func TestMoveOutsideGridIsEdge(t *testing.T) {
	nav := navigator.New(&outside{}, nil)
	if got := nav.Move(5, navigator.Down); got != 5 {
		t.Errorf("Expected move out of the table to return its handle, got %d", got)
	}
	if len(nav.Warnings()) != 0 {
		t.Errorf("Expected no warning for leaving the table, got %v", nav.Warnings())
	}
}

func TestSize(t *testing.T) {
	tbl := newTable(t, 1, 2, []host.Merge{{Row: 0, Col: 0, RowSpan: 1, ColSpan: 2}})
	nav := navigator.New(tbl, nil)

	size, err := nav.Size(1)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != (model.Size{Width: 200, Height: 50}) {
		t.Errorf("Expected 200x50, got %+v", size)
	}

	tbl.FailExtent(1)
	if _, err := nav.Size(1); !errors.Is(err, host.ErrReadFailed) {
		t.Errorf("Expected ErrReadFailed, got %v", err)
	}
	if _, err := nav.Size(42); !errors.Is(err, host.ErrUnknownCell) {
		t.Errorf("Expected ErrUnknownCell, got %v", err)
	}
}

func TestSizeZeroExtent(t *testing.T) {
	nav := navigator.New(&hollow{}, nil)
	if _, err := nav.Size(3); !errors.Is(err, navigator.ErrEmptyExtent) {
		t.Errorf("Expected ErrEmptyExtent, got %v", err)
	}
}

func TestCurrent(t *testing.T) {
	tbl := newTable(t, 1, 1, nil)
	nav := navigator.New(tbl, nil)

	if h, err := nav.Current(); err != nil || h != 1 {
		t.Errorf("Expected current 1, got %d (%v)", h, err)
	}
	tbl.Leave()
	if _, err := nav.Current(); !errors.Is(err, navigator.ErrNotInGrid) {
		t.Errorf("Expected ErrNotInGrid, got %v", err)
	}
}

func TestSaveRestore(t *testing.T) {
	tbl := newTable(t, 3, 3, nil)
	if err := tbl.Goto(5); err != nil {
		t.Fatal(err)
	}
	nav := navigator.New(tbl, nil)

	func() {
		restore := nav.Save()
		defer restore()
		nav.Move(9, navigator.Up)
	}()

	if h, _ := tbl.Current(); h != 5 {
		t.Errorf("Expected cursor restored to 5, got %d", h)
	}
}

func TestSaveFailureWarns(t *testing.T) {
	nav := navigator.New(&broken{}, nil)
	restore := nav.Save()
	restore()

	warnings := nav.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != model.WarningCursorRestore {
		t.Errorf("Expected one cursor-restore warning, got %v", warnings)
	}
}

func TestDiscover(t *testing.T) {
	// | 1 | 1 | 2 |
	// | 3 | 4 | 5 |
	// | 6 | 7 | 8 |
	tbl := newTable(t, 3, 3, []host.Merge{{Row: 0, Col: 0, RowSpan: 1, ColSpan: 2}}, host.WithShuffledHandles(3))
	start, _ := tbl.HandleAt(1, 1)
	if err := tbl.Goto(start); err != nil {
		t.Fatal(err)
	}
	nav := navigator.New(tbl, nil)

	cells, err := nav.Discover(start, 100)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if cells[0] != start {
		t.Errorf("Expected discovery to start at %d, got %d", start, cells[0])
	}

	got := append([]model.Handle(nil), cells...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []model.Handle{1, 2, 3, 4, 5, 6, 7, 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discovered cells mismatch (-want +got):\n%s", diff)
	}

	if h, _ := tbl.Current(); h != start {
		t.Errorf("Expected cursor back on %d, got %d", start, h)
	}
}

func TestDiscoverCap(t *testing.T) {
	nav := navigator.New(&endless{}, nil)

	cells, err := nav.Discover(0, 25)
	if !errors.Is(err, navigator.ErrTraversalCap) {
		t.Fatalf("Expected ErrTraversalCap, got %v", err)
	}
	var capErr *navigator.CapError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected *CapError, got %T", err)
	}
	if capErr.Limit != 25 || capErr.Visited != 25 {
		t.Errorf("Expected limit 25 and 25 visited, got %+v", capErr)
	}
	if len(cells) != 25 {
		t.Errorf("Expected 25 partial cells, got %d", len(cells))
	}

	warnings := nav.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != model.WarningTraversalCap {
		t.Errorf("Expected one traversal-cap warning, got %v", warnings)
	}
}

func TestDiscoverExactlyAtCap(t *testing.T) {
	tbl := newTable(t, 2, 2, nil)
	nav := navigator.New(tbl, nil)

	cells, err := nav.Discover(1, 4)
	if err != nil {
		t.Errorf("Expected no error when the table fits the cap, got %v", err)
	}
	if len(cells) != 4 {
		t.Errorf("Expected 4 cells, got %d", len(cells))
	}
}
