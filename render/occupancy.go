// Package render draws diagnostic images of reconstructed grids.
//
// [Occupancy] paints the logical slot map of a grid: every cell is filled
// with a color derived from its list id and labelled with it, uncovered slots
// are red and slots claimed by more than one cell are hatched.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/tables"
)

// Colors used for the map
var (
	Background  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	BorderColor = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	GapColor    = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}
	HatchColor  = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	LabelColor  = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// Options controls the image layout
type Options struct {
	// Pixel size of one logical slot
	SlotWidth  int
	SlotHeight int

	// Label size in points at 72 DPI; zero disables labels
	FontSize float64
}

// DefaultOptions returns the layout used by the command line tool
func DefaultOptions() Options {
	return Options{
		SlotWidth:  64,
		SlotHeight: 32,
		FontSize:   12,
	}
}

var (
	fontOnce   sync.Once
	parsedFont *sfnt.Font
	fontErr    error
)

func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Occupancy renders the slot map of grid. report may be nil, in which case
// it is computed with tables.Validate.
func Occupancy(grid *model.Grid, report *tables.Report, opts Options) (*image.RGBA, error) {
	if grid == nil {
		return nil, fmt.Errorf("render: nil grid")
	}
	if opts.SlotWidth <= 0 || opts.SlotHeight <= 0 {
		return nil, fmt.Errorf("render: slot size must be positive, got %dx%d", opts.SlotWidth, opts.SlotHeight)
	}
	if report == nil {
		report = tables.Validate(grid)
	}

	rows, cols := grid.RowCount(), grid.ColCount()
	img := image.NewRGBA(image.Rect(0, 0, cols*opts.SlotWidth+1, rows*opts.SlotHeight+1))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, xdraw.Src)

	slotRect := func(r0, c0, r1, c1 int) image.Rectangle {
		return image.Rect(c0*opts.SlotWidth, r0*opts.SlotHeight, (c1+1)*opts.SlotWidth, (r1+1)*opts.SlotHeight)
	}

	cells := grid.Ranges()
	for _, cell := range cells {
		rect := slotRect(cell.StartRow, cell.StartCol, cell.EndRow, cell.EndCol)
		xdraw.Draw(img, rect, image.NewUniform(cellColor(cell.ListID)), image.Point{}, xdraw.Src)
	}
	for _, gap := range report.Gaps {
		rect := slotRect(gap.Row, gap.Col, gap.Row, gap.Col)
		xdraw.Draw(img, rect, image.NewUniform(GapColor), image.Point{}, xdraw.Src)
	}
	for _, o := range report.Overlaps {
		hatch(img, slotRect(o.Slot.Row, o.Slot.Col, o.Slot.Row, o.Slot.Col))
	}
	for _, cell := range cells {
		outline(img, slotRect(cell.StartRow, cell.StartCol, cell.EndRow, cell.EndCol))
	}

	if opts.FontSize > 0 {
		face, err := labelFace(opts.FontSize)
		if err != nil {
			return nil, fmt.Errorf("render: label font: %w", err)
		}
		defer face.Close()
		for _, cell := range cells {
			label(img, face, slotRect(cell.StartRow, cell.StartCol, cell.EndRow, cell.EndCol), fmt.Sprint(cell.ListID))
		}
	}

	return img, nil
}

// WritePNG encodes img as PNG to w
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SavePNG renders the occupancy map of grid to a PNG file
func SavePNG(path string, grid *model.Grid, report *tables.Report, opts Options) error {
	img, err := Occupancy(grid, report, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("render: encode %s: %w", path, err)
	}
	return f.Close()
}

// cellColor returns a light pastel derived from the list id
func cellColor(id model.Handle) color.RGBA {
	v := uint32(id)*2654435761 + 0x9e3779b9
	return color.RGBA{
		R: 0xa0 + uint8(v>>8)%0x50,
		G: 0xa0 + uint8(v>>16)%0x50,
		B: 0xa0 + uint8(v>>24)%0x50,
		A: 0xff,
	}
}

func outline(img *image.RGBA, r image.Rectangle) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, BorderColor)
		img.SetRGBA(x, r.Max.Y, BorderColor)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, BorderColor)
		img.SetRGBA(r.Max.X, y, BorderColor)
	}
}

// hatch draws diagonal lines every 6 pixels across r
func hatch(img *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if (x-r.Min.X+y-r.Min.Y)%6 == 0 {
				img.SetRGBA(x, y, HatchColor)
			}
		}
	}
}

// label centers text in r, skipping it when it does not fit
func label(img *image.RGBA, face font.Face, r image.Rectangle, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(LabelColor),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	if width > r.Dx() || height > r.Dy() {
		return
	}
	x := r.Min.X + (r.Dx()-width)/2
	y := r.Min.Y + (r.Dy()-height)/2 + metrics.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
