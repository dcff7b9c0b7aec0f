// Command cellgrid reconstructs the logical grid of an HTML table through
// cell navigation only, and prints the layout and its validation report.
//
//	cellgrid -html table.html [-config settings.yaml] [-png out.png] [-json]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tsawler/cellgrid"
	"github.com/tsawler/cellgrid/config"
	"github.com/tsawler/cellgrid/host"
	"github.com/tsawler/cellgrid/model"
	"github.com/tsawler/cellgrid/render"
	"github.com/tsawler/cellgrid/tables"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA")).Padding(0, 1)
	slotStyle   = lipgloss.NewStyle().Padding(0, 1)
	gapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		die("%v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type options struct {
	htmlFile   string
	configFile string
	pngFile    string
	asJSON     bool
	tolerance  float64
	maxCells   int
	lenient    bool
	verbose    bool
	shuffle    int64
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("cellgrid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.htmlFile, "html", "", "HTML file whose first <table> is reconstructed")
	fs.StringVar(&o.configFile, "config", "", "YAML settings file")
	fs.StringVar(&o.pngFile, "png", "", "write the occupancy map to this PNG file")
	fs.BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	fs.Float64Var(&o.tolerance, "tolerance", -1, "level tolerance in device units (overrides settings)")
	fs.IntVar(&o.maxCells, "max-cells", 0, "traversal cap (overrides settings)")
	fs.BoolVar(&o.lenient, "lenient", false, "report invalid grids instead of failing")
	fs.BoolVar(&o.verbose, "v", false, "log stage details to stderr")
	fs.Int64Var(&o.shuffle, "shuffle", 0, "permute cell handles with this seed (0 keeps row-major ids)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.htmlFile == "" {
		return nil, errors.New("-html is required")
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg := tables.DefaultConfig()
	var settings *config.Settings
	if o.configFile != "" {
		settings, err = config.Load(o.configFile)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		cfg = settings.Apply(cfg)
	}
	if o.tolerance >= 0 {
		cfg.Tolerance = o.tolerance
	}
	if o.maxCells > 0 {
		cfg.MaxCells = o.maxCells
	}
	if o.lenient {
		cfg.Strict = false
	}

	level, logging := settings.Level()
	if o.verbose {
		level, logging = slog.LevelDebug, true
	}
	var logger *slog.Logger
	if logging {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	}

	var hostOpts []host.Option
	if o.shuffle != 0 {
		hostOpts = append(hostOpts, host.WithShuffledHandles(o.shuffle))
	}
	tbl, err := host.OpenHTML(o.htmlFile, hostOpts...)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}

	result, calcErr := cellgrid.New(tbl).WithConfig(cfg).Logger(logger).Calculate()
	if result == nil {
		return calcErr
	}

	if o.pngFile != "" && result.Grid != nil {
		if err := render.SavePNG(o.pngFile, result.Grid, result.Report, render.DefaultOptions()); err != nil {
			return err
		}
	}

	if o.asJSON {
		if err := writeJSON(stdout, result, calcErr); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(stdout, renderText(o.htmlFile, result))
	}
	return calcErr
}

func renderText(name string, result *cellgrid.Result) string {
	out := titleStyle.Render(name) + "\n"
	if result.Grid != nil {
		out += fmt.Sprintf("%d rows x %d cols, %d cells\n",
			result.Grid.RowCount(), result.Grid.ColCount(), len(result.Grid.Cells))
		out += layoutTable(result.Grid).Render() + "\n"
	}
	if result.Report != nil {
		style := okStyle
		if !result.Report.Valid {
			style = badStyle
		}
		out += style.Render(result.Report.Summary()) + "\n"
	}
	if result.Incomplete {
		out += badStyle.Render("incomplete: a traversal cap was reached") + "\n"
	}
	for _, w := range result.Warnings {
		out += warnStyle.Render(w.String()) + "\n"
	}
	return out
}

// layoutTable renders the slot layout with one column per logical column
func layoutTable(grid *model.Grid) *table.Table {
	layout := grid.Layout()
	headers := make([]string, grid.ColCount())
	for j := range headers {
		headers[j] = "c" + strconv.Itoa(j)
	}
	rows := make([][]string, len(layout))
	for i, row := range layout {
		rows[i] = make([]string, len(row))
		for j, id := range row {
			if id < 0 {
				rows[i][j] = gapStyle.Render("-")
				continue
			}
			rows[i][j] = strconv.Itoa(int(id))
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return slotStyle
		})
}

type jsonCell struct {
	ID       int     `json:"id"`
	StartRow int     `json:"start_row"`
	StartCol int     `json:"start_col"`
	EndRow   int     `json:"end_row"`
	EndCol   int     `json:"end_col"`
	RowSpan  int     `json:"row_span"`
	ColSpan  int     `json:"col_span"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	EndX     float64 `json:"end_x"`
	EndY     float64 `json:"end_y"`
	Edges    string  `json:"edges,omitempty"`
}

type jsonResult struct {
	RunID      string     `json:"run_id"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	XLevels    []float64  `json:"x_levels"`
	YLevels    []float64  `json:"y_levels"`
	Cells      []jsonCell `json:"cells"`
	Valid      bool       `json:"valid"`
	Incomplete bool       `json:"incomplete"`
	Warnings   []string   `json:"warnings,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func writeJSON(w io.Writer, result *cellgrid.Result, calcErr error) error {
	out := jsonResult{
		RunID:      result.RunID,
		Incomplete: result.Incomplete,
		Cells:      make([]jsonCell, 0),
	}
	if grid := result.Grid; grid != nil {
		out.Rows, out.Cols = grid.RowCount(), grid.ColCount()
		out.XLevels, out.YLevels = grid.XLevels, grid.YLevels
		for _, c := range grid.Ranges() {
			pos := c.Position()
			cell := jsonCell{
				ID:       int(c.ListID),
				StartRow: c.StartRow,
				StartCol: c.StartCol,
				EndRow:   c.EndRow,
				EndCol:   c.EndCol,
				RowSpan:  c.RowSpan,
				ColSpan:  c.ColSpan,
				StartX:   pos.StartX,
				StartY:   pos.StartY,
				EndX:     pos.EndX,
				EndY:     pos.EndY,
			}
			if result.Boundary != nil {
				cell.Edges = result.Boundary.Edges(c.ListID).String()
			}
			out.Cells = append(out.Cells, cell)
		}
	}
	if result.Report != nil {
		out.Valid = result.Report.Valid
	}
	for _, warning := range result.Warnings {
		out.Warnings = append(out.Warnings, warning.String())
	}
	if calcErr != nil {
		out.Error = calcErr.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
