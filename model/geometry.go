package model

// Handle is the host's opaque identity for a table cell. Two reads that
// return the same Handle refer to the same cell, including a merged cell
// reached along different paths. Handles are only meaningful for the table
// snapshot they were read from.
type Handle int

// Size is the physical extent of a cell in device units
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether the size has no extent on either axis
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Point represents a 2D point in device units
type Point struct {
	X, Y float64
}

// Position is the physical rectangle a cell occupies, accumulated by
// traversal from the table origin. Y grows downward.
type Position struct {
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

// NewPosition creates a position from a top-left corner and a size
func NewPosition(x, y float64, size Size) Position {
	return Position{
		StartX: x,
		StartY: y,
		EndX:   x + size.Width,
		EndY:   y + size.Height,
	}
}

// Width returns the horizontal extent
func (p Position) Width() float64 {
	return p.EndX - p.StartX
}

// Translate returns the position moved by dx horizontally and dy vertically
func (p Position) Translate(dx, dy float64) Position {
	return Position{
		StartX: p.StartX + dx,
		StartY: p.StartY + dy,
		EndX:   p.EndX + dx,
		EndY:   p.EndY + dy,
	}
}

// Corners returns the four corners in clockwise order starting top-left
func (p Position) Corners() [4]Point {
	return [4]Point{
		{X: p.StartX, Y: p.StartY},
		{X: p.EndX, Y: p.StartY},
		{X: p.EndX, Y: p.EndY},
		{X: p.StartX, Y: p.EndY},
	}
}

// IsValid returns true if the position has positive dimensions
func (p Position) IsValid() bool {
	return p.EndX > p.StartX && p.EndY > p.StartY
}
