// Package host provides an in-memory table that implements
// [navigator.Host] with the movement rules of common word processors.
//
// A [Table] is built from column widths, row heights and merged cells:
//
//	tbl, err := host.NewTable(
//	    []float64{100, 100, 100},
//	    []float64{50, 50, 50},
//	    []host.Merge{{Row: 0, Col: 0, RowSpan: 1, ColSpan: 2}},
//	)
//
// or parsed from the first <table> of an HTML document, honouring rowspan,
// colspan and width/height attributes:
//
//	tbl, err := host.OpenHTML("table.html")
//
// Options make the table behave more like a real editor: handles unrelated
// to reading order ([WithShuffledHandles]), a page/line location signal
// ([WithPageRows]) and rounding noise on size reads ([WithJitter]). Reads of
// individual cells can be made to fail with [Table.FailExtent] and
// [Table.FailLocate].
package host
