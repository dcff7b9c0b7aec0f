package tables

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/navigator"
)

// Collection holds the physical rectangles found by a CoordinateCollector
type Collection struct {
	// Rectangle of every recorded cell
	Positions map[model.Handle]model.Position

	// Cells in the order they were recorded
	Order []model.Handle

	// Raw corner coordinates on each axis, before quantization
	XCoords []float64
	YCoords []float64

	// Cells dropped because a read failed
	Dropped []model.Handle

	// Set when a cap stopped the collection early
	Incomplete bool
}

func newCollection() *Collection {
	return &Collection{
		Positions: make(map[model.Handle]model.Position),
		XCoords:   make([]float64, 0),
		YCoords:   make([]float64, 0),
	}
}

// Handles returns the recorded cells sorted by handle
func (c *Collection) Handles() []model.Handle {
	handles := make([]model.Handle, 0, len(c.Positions))
	for h := range c.Positions {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

func (c *Collection) record(h model.Handle, pos model.Position) {
	c.Positions[h] = pos
	c.Order = append(c.Order, h)
	c.addCorners(pos)
}

func (c *Collection) addCorners(pos model.Position) {
	for _, pt := range pos.Corners() {
		c.XCoords = append(c.XCoords, pt.X)
		c.YCoords = append(c.YCoords, pt.Y)
	}
}

// translate moves the given cells horizontally by dx
func (c *Collection) translate(handles []model.Handle, dx float64) {
	for _, h := range handles {
		c.Positions[h] = c.Positions[h].Translate(dx, 0)
	}
	c.reindex()
}

// forget removes the given cells
func (c *Collection) forget(handles []model.Handle) {
	for _, h := range handles {
		delete(c.Positions, h)
	}
	order := c.Order[:0]
	for _, h := range c.Order {
		if _, ok := c.Positions[h]; ok {
			order = append(order, h)
		}
	}
	c.Order = order
	c.reindex()
}

// reindex rebuilds the corner coordinates from the recorded positions
func (c *Collection) reindex() {
	c.XCoords = c.XCoords[:0]
	c.YCoords = c.YCoords[:0]
	for _, h := range c.Order {
		c.addCorners(c.Positions[h])
	}
}

// CoordinateCollector accumulates the physical rectangle of every cell by
// walking the table one row band at a time.
//
// Each first-column cell opens a band whose height is that cell's height.
// The walk from it follows right moves, and down moves for cells that end
// above the band's bottom, summing widths and heights along the path. Cells
// are taken topmost first, so every cell is reached along its own top row
// before any lower path can claim it. Only cells starting inside the band
// are recorded, which keeps a vertically merged cell from being re-recorded
// by the rows it overlaps.
//
// When the size of a band's first cell cannot be read, the band takes its
// height from the first readable cell to the right and is walked after all
// other bands, from that cell. Its horizontal offset is then recovered from
// a neighbour already placed by another band.
type CoordinateCollector struct {
	nav    *navigator.Navigator
	config Config

	limit     int
	stepLimit int
	steps     int
	out       *Collection
}

// NewCoordinateCollector creates a collector over nav
func NewCoordinateCollector(nav *navigator.Navigator, config Config) *CoordinateCollector {
	return &CoordinateCollector{nav: nav, config: config}
}

// CollectCoordinates is a convenience wrapper around CoordinateCollector.Collect
func CollectCoordinates(nav *navigator.Navigator, boundary *BoundaryResult, config Config) (*Collection, error) {
	return NewCoordinateCollector(nav, config).Collect(boundary)
}

// walkItem is a cell queued in a band walk with the corner reached by the
// path that led to it
type walkItem struct {
	h    model.Handle
	x, y float64
}

// band is one row band: the cells whose top edge lies in [top, bottom)
type band struct {
	opener      model.Handle
	top, bottom float64

	// where the walk starts, with sizes already read
	first walkItem
	known map[model.Handle]model.Size

	// false when first.x is relative to an unknown band origin
	anchored bool
}

// Collect walks every band, top to bottom. The number of recorded cells is
// capped by the discovered cell count when known, and by Config.MaxCells
// otherwise; exceeding the cap returns the partial collection and a
// *CapError. A band that cannot be placed at all returns
// ErrUnplaceableBand rather than shifting the bands below it.
func (cc *CoordinateCollector) Collect(boundary *BoundaryResult) (*Collection, error) {
	restore := cc.nav.Save()
	defer restore()

	cc.out = newCollection()
	cc.steps = 0
	cc.limit = cc.config.MaxCells
	if n := len(boundary.Cells); n > 0 && (cc.limit <= 0 || n < cc.limit) {
		cc.limit = n
	}
	cc.stepLimit = cc.limit * (len(boundary.FirstCols) + 1)

	var deferred []band
	cumulativeY := 0.0
	for _, opener := range boundary.FirstCols {
		size, err := cc.nav.Size(opener)
		if err != nil {
			cc.drop(opener, err)
			b, ok := cc.fallbackBand(opener, cumulativeY)
			if !ok {
				return cc.out, fmt.Errorf("%s: cell %d: %w", StageCollect, opener, ErrUnplaceableBand)
			}
			deferred = append(deferred, b)
			cumulativeY = b.bottom
			continue
		}

		b := band{
			opener:   opener,
			top:      cumulativeY,
			bottom:   cumulativeY + size.Height,
			first:    walkItem{h: opener, y: cumulativeY},
			known:    map[model.Handle]model.Size{opener: size},
			anchored: true,
		}
		if err := cc.walkBand(b); err != nil {
			cc.out.Incomplete = true
			return cc.out, err
		}
		// rows advance by the band opener, not by the tallest cell seen
		cumulativeY = b.bottom
	}

	for _, b := range deferred {
		if err := cc.placeBand(b); err != nil {
			if errors.Is(err, ErrTraversalCap) {
				cc.out.Incomplete = true
			}
			return cc.out, err
		}
	}

	cc.nav.Logger().Debug("collected coordinates",
		"cells", len(cc.out.Positions),
		"dropped", len(cc.out.Dropped),
		"deferred_bands", len(deferred),
		"steps", cc.steps)

	return cc.out, nil
}

// fallbackBand builds the band of an opener whose size could not be read.
// Its height comes from the first readable cell reached by right moves, or
// from the remaining height of a cell merged down from an earlier band.
func (cc *CoordinateCollector) fallbackBand(opener model.Handle, top float64) (band, bool) {
	tol := cc.config.Tolerance
	h := opener
	for i := 0; i < cc.limit; i++ {
		next := cc.nav.Move(h, navigator.Right)
		if next == h {
			return band{}, false
		}
		target, y := cc.descend(next, top)

		if pos, ok := cc.out.Positions[target]; ok {
			if pos.EndY-top > tol {
				return band{
					opener:   opener,
					top:      top,
					bottom:   pos.EndY,
					first:    walkItem{h: target, x: pos.StartX, y: y},
					anchored: true,
				}, true
			}
			h = target
			continue
		}
		if target == next && cc.nav.Move(target, navigator.Left) != h {
			// starts above, in a band not placed yet
			h = target
			continue
		}

		size, err := cc.nav.Size(target)
		if err == nil && !model.NewPosition(0, y, size).IsValid() {
			err = fmt.Errorf("cell %d is %vx%v: %w", target, size.Width, size.Height, navigator.ErrEmptyExtent)
		}
		if err != nil {
			cc.drop(target, err)
			h = target
			continue
		}
		return band{
			opener: opener,
			top:    top,
			bottom: top + size.Height,
			first:  walkItem{h: target, y: y},
			known:  map[model.Handle]model.Size{target: size},
		}, true
	}
	return band{}, false
}

// placeBand walks a band opened by an unreadable cell. Unless the walk
// started from an already placed cell, its x coordinates are relative until
// one of its cells is matched to a neighbour placed by another band.
func (cc *CoordinateCollector) placeBand(b band) error {
	mark := len(cc.out.Order)
	err := cc.walkBand(b)
	if b.anchored {
		return err
	}

	staged := append([]model.Handle(nil), cc.out.Order[mark:]...)
	if err != nil {
		cc.out.forget(staged)
		return err
	}
	dx, ok := cc.anchor(staged)
	if !ok {
		cc.out.forget(staged)
		return fmt.Errorf("%s: cell %d: %w", StageCollect, b.opener, ErrUnplaceableBand)
	}
	cc.out.translate(staged, dx)
	return nil
}

// anchor finds the horizontal offset of staged cells from any staged cell
// sharing a vertical edge with a cell placed earlier. A right or left
// neighbour shares the edge by construction; an up or down neighbour only
// when the move back returns to the staged cell.
func (cc *CoordinateCollector) anchor(staged []model.Handle) (float64, bool) {
	inBand := make(map[model.Handle]bool, len(staged))
	for _, h := range staged {
		inBand[h] = true
	}
	placed := func(h model.Handle) (model.Position, bool) {
		if inBand[h] {
			return model.Position{}, false
		}
		pos, ok := cc.out.Positions[h]
		return pos, ok
	}

	for _, h := range staged {
		pos := cc.out.Positions[h]
		if n := cc.nav.Move(h, navigator.Right); n != h {
			if p, ok := placed(n); ok {
				return p.StartX - pos.EndX, true
			}
		}
		if n := cc.nav.Move(h, navigator.Left); n != h {
			if p, ok := placed(n); ok {
				return p.EndX - pos.StartX, true
			}
		}
		if n := cc.nav.Move(h, navigator.Up); n != h {
			if p, ok := placed(n); ok && cc.nav.Move(n, navigator.Down) == h {
				return p.StartX - pos.StartX, true
			}
		}
		if n := cc.nav.Move(h, navigator.Down); n != h {
			if p, ok := placed(n); ok && cc.nav.Move(n, navigator.Up) == h {
				return p.StartX - pos.StartX, true
			}
		}
	}
	return 0, false
}

// walkBand records the cells of a band
func (cc *CoordinateCollector) walkBand(b band) error {
	tol := cc.config.Tolerance

	seen := map[model.Handle]bool{b.opener: true, b.first.h: true}
	queue := []walkItem{b.first}

	for len(queue) > 0 {
		var item walkItem
		item, queue = cc.nextItem(queue)

		cc.steps++
		if cc.stepLimit > 0 && cc.steps > cc.stepLimit {
			return cc.capExceeded(item.h, cc.stepLimit)
		}

		pos, recorded := cc.out.Positions[item.h]
		if !recorded {
			size, ok := b.known[item.h]
			if !ok {
				var err error
				size, err = cc.nav.Size(item.h)
				if err != nil {
					cc.drop(item.h, err)
					continue
				}
			}
			if item.y < b.top-tol || item.y >= b.bottom-tol {
				// starts in another band; that band records it
				continue
			}
			if len(cc.out.Positions) >= cc.limit {
				return cc.capExceeded(item.h, cc.limit)
			}
			pos = model.NewPosition(item.x, item.y, size)
			if !pos.IsValid() {
				cc.drop(item.h, fmt.Errorf("cell %d is %vx%v: %w", item.h, size.Width, size.Height, navigator.ErrEmptyExtent))
				continue
			}
			cc.out.record(item.h, pos)
		}

		// Already recorded cells still advance the x cursor by their width.
		if next := cc.nav.Move(item.h, navigator.Right); next != item.h {
			target, y := cc.descend(next, item.y)
			if !seen[target] && cc.aligned(item, pos, next, target) {
				seen[target] = true
				queue = append(queue, walkItem{h: target, x: item.x + pos.Width(), y: y})
			}
		}

		// A cell ending above the band bottom has rowspan fragments below it
		// that belong to this band. The cell below shares our left edge only
		// if moving up from it leads back here.
		if pos.EndY < b.bottom-tol {
			below := cc.nav.Move(item.h, navigator.Down)
			if below != item.h && !seen[below] && cc.nav.Move(below, navigator.Up) == item.h {
				seen[below] = true
				queue = append(queue, walkItem{h: below, x: item.x, y: pos.EndY})
			}
		}
	}
	return nil
}

// nextItem removes the topmost queued cell, leftmost among equals
func (cc *CoordinateCollector) nextItem(queue []walkItem) (walkItem, []walkItem) {
	tol := cc.config.Tolerance
	best := 0
	for i := 1; i < len(queue); i++ {
		a, b := queue[i], queue[best]
		if a.y < b.y-tol || (math.Abs(a.y-b.y) <= tol && a.x < b.x) {
			best = i
		}
	}
	item := queue[best]
	return item, append(queue[:best], queue[best+1:]...)
}

// aligned reports whether the cell reached by a right move from item starts
// on the row being walked. A right move lands on the cell holding the top
// row of its source, so an unplaced target that does not lead back left to
// the source, or whose source is walked below its own top, starts higher
// and is left for the path along its own top row.
func (cc *CoordinateCollector) aligned(item walkItem, pos model.Position, next, target model.Handle) bool {
	if target != next {
		return true
	}
	if _, ok := cc.out.Positions[target]; ok {
		return true
	}
	if math.Abs(pos.StartY-item.y) > cc.config.Tolerance {
		return false
	}
	return cc.nav.Move(target, navigator.Left) == item.h
}

// descend follows down moves from h while h is an already recorded cell
// lying entirely above y. A right move out of a cell merged from an earlier
// band lands in that band's row; descending brings the walk back to the row
// at y. It returns the cell reached and the y its top edge is expected at.
func (cc *CoordinateCollector) descend(h model.Handle, y float64) (model.Handle, float64) {
	tol := cc.config.Tolerance
	top := y
	for i := 0; i < cc.limit; i++ {
		pos, ok := cc.out.Positions[h]
		if !ok {
			return h, top
		}
		if pos.EndY > y+tol {
			return h, y
		}
		below := cc.nav.Move(h, navigator.Down)
		if below == h {
			return h, y
		}
		h, top = below, pos.EndY
	}
	return h, top
}

// drop records a cell whose read failed; the traversal continues without it
func (cc *CoordinateCollector) drop(h model.Handle, err error) {
	for _, d := range cc.out.Dropped {
		if d == h {
			return
		}
	}
	cc.out.Dropped = append(cc.out.Dropped, h)
	cc.nav.Warn(model.WarningCellRead, StageCollect, h, err.Error())
}

func (cc *CoordinateCollector) capExceeded(h model.Handle, limit int) error {
	err := &CapError{Stage: StageCollect, Limit: limit, Visited: len(cc.out.Positions)}
	cc.nav.Warn(model.WarningTraversalCap, StageCollect, h, err.Error())
	return err
}
