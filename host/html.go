package host

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	// DefaultColWidth is used for columns without an explicit width
	DefaultColWidth = 100.0

	// DefaultRowHeight is used for rows without an explicit height
	DefaultRowHeight = 50.0
)

// htmlCell is a td/th element before slot placement
type htmlCell struct {
	rowSpan int
	colSpan int
	width   float64
	height  float64
}

// OpenHTML parses the first table of an HTML file into a Table
func OpenHTML(filename string, opts ...Option) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseHTML(f, opts...)
}

// ParseHTML parses the first <table> element of an HTML document.
//
// Column widths come from <col width> inside a <colgroup>, falling back to
// the width attribute of single-column cells and then DefaultColWidth. Row
// heights come from <tr height>, then the height attribute of single-row
// cells, then DefaultRowHeight. Cells are placed with the usual HTML rules:
// each cell takes the next column not already claimed by a rowspan above.
func ParseHTML(r io.Reader, opts ...Option) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tableNode := findElement(doc, "table")
	if tableNode == nil {
		return nil, fmt.Errorf("%w: no <table> element", ErrInvalidLayout)
	}

	var (
		colWidths  []float64
		rowHeights []float64
		rows       [][]htmlCell
	)

	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "colgroup":
			colWidths = append(colWidths, parseColGroup(c)...)
		case "thead", "tbody", "tfoot":
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					rows = append(rows, parseRow(tr))
					rowHeights = append(rowHeights, attrFloat(tr, "height"))
				}
			}
		case "tr":
			rows = append(rows, parseRow(c))
			rowHeights = append(rowHeights, attrFloat(c, "height"))
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table has no rows", ErrInvalidLayout)
	}

	merges, cols, cellWidths, cellHeights := placeCells(rows)
	for len(colWidths) < cols {
		colWidths = append(colWidths, 0)
	}
	colWidths = colWidths[:cols]

	for i := range colWidths {
		if colWidths[i] <= 0 {
			colWidths[i] = cellWidths[i]
		}
		if colWidths[i] <= 0 {
			colWidths[i] = DefaultColWidth
		}
	}
	for i := range rowHeights {
		if rowHeights[i] <= 0 {
			rowHeights[i] = cellHeights[i]
		}
		if rowHeights[i] <= 0 {
			rowHeights[i] = DefaultRowHeight
		}
	}

	return NewTable(colWidths, rowHeights, merges, opts...)
}

// placeCells assigns slots to parsed cells and returns the merges, the
// column count and the widths/heights declared by single-slot cells
func placeCells(rows [][]htmlCell) (merges []Merge, cols int, cellWidths, cellHeights []float64) {
	occupied := make(map[[2]int]bool)
	cellHeights = make([]float64, len(rows))

	for r, row := range rows {
		col := 0
		for _, hc := range row {
			for occupied[[2]int{r, col}] {
				col++
			}
			// rowspan may not run past the last row
			rowSpan := hc.rowSpan
			if r+rowSpan > len(rows) {
				rowSpan = len(rows) - r
			}
			for dr := 0; dr < rowSpan; dr++ {
				for dc := 0; dc < hc.colSpan; dc++ {
					occupied[[2]int{r + dr, col + dc}] = true
				}
			}
			if rowSpan > 1 || hc.colSpan > 1 {
				merges = append(merges, Merge{Row: r, Col: col, RowSpan: rowSpan, ColSpan: hc.colSpan})
			}
			if hc.colSpan == 1 && hc.width > 0 {
				for len(cellWidths) <= col {
					cellWidths = append(cellWidths, 0)
				}
				if cellWidths[col] == 0 {
					cellWidths[col] = hc.width
				}
			}
			if rowSpan == 1 && hc.height > cellHeights[r] {
				cellHeights[r] = hc.height
			}
			col += hc.colSpan
			if col > cols {
				cols = col
			}
		}
	}
	for slot := range occupied {
		if slot[1]+1 > cols {
			cols = slot[1] + 1
		}
	}
	for len(cellWidths) < cols {
		cellWidths = append(cellWidths, 0)
	}
	return merges, cols, cellWidths, cellHeights
}

// parseColGroup reads the widths of <col> children, honouring span
func parseColGroup(n *html.Node) []float64 {
	var widths []float64
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "col" {
			continue
		}
		span := attrInt(c, "span", 1)
		w := attrFloat(c, "width")
		for i := 0; i < span; i++ {
			widths = append(widths, w)
		}
	}
	return widths
}

// parseRow parses the td/th children of a tr
func parseRow(tr *html.Node) []htmlCell {
	row := make([]htmlCell, 0)
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			row = append(row, htmlCell{
				rowSpan: attrInt(c, "rowspan", 1),
				colSpan: attrInt(c, "colspan", 1),
				width:   attrFloat(c, "width"),
				height:  attrFloat(c, "height"),
			})
		}
	}
	return row
}

// attrInt reads a positive integer attribute
func attrInt(n *html.Node, key string, def int) int {
	for _, attr := range n.Attr {
		if attr.Key == key {
			v, err := strconv.Atoi(strings.TrimSpace(attr.Val))
			if err != nil || v < 1 {
				return def
			}
			return v
		}
	}
	return def
}

// attrFloat reads a length attribute such as "120" or "120px"; 0 if absent
func attrFloat(n *html.Node, key string) float64 {
	for _, attr := range n.Attr {
		if attr.Key == key {
			val := strings.TrimSuffix(strings.TrimSpace(attr.Val), "px")
			v, err := strconv.ParseFloat(val, 64)
			if err != nil || v < 0 {
				return 0
			}
			return v
		}
	}
	return 0
}

// findElement finds the first element with the given tag name
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}
