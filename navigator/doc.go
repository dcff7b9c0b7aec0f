// Package navigator defines the contract between the grid engine and the
// host editor that owns a table, and the traversal primitives built on it.
//
// A [Host] exposes a single cursor. The only things the engine can do are
// move that cursor one cell in a [Direction] and read the size or location
// of the cell under it. The [Navigator] turns these cursor operations into
// handle-addressed calls:
//
//	nav := navigator.New(host, nil)
//	right := nav.Move(h, navigator.Right) // == h at the right edge
//	size, err := nav.Size(h)
//
// Because every call moves the shared cursor, traversals that must not leak
// cursor movement save and restore it:
//
//	restore := nav.Save()
//	defer restore()
//
// [Navigator.Discover] performs a breadth-first walk of the whole table
// bounded by a cell cap, returning a [CapError] when the cap is hit.
package navigator
