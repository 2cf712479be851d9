package cmd

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

var (
	chartGreen = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	chartBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// Graphs implements the "graphs" subcommand: render one PNG line chart per
// jurisdiction table, with vertical markers at reform dates when an annotation
// file entry exists for the jurisdiction.
func Graphs(args []string) {
	fs := flag.NewFlagSet("graphs", flag.ExitOnError)
	outDir := fs.String("out", "output", "directory containing jurisdiction tables")
	graphsDir := fs.String("graphs", "graphs", "directory to write charts into")
	reformsPath := fs.String("reforms", "", "reform annotation file (optional)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: suspensions graphs [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Render per-jurisdiction line charts (FTP, FTA, total over time) from\nthe tables written by the process subcommand.\n\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	var reforms map[string]Reform
	if *reformsPath != "" {
		var err error
		reforms, err = LoadReforms(*reformsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading reforms: %v\n", err)
			os.Exit(1)
		}
	}

	tables, err := filepath.Glob(filepath.Join(*outDir, "*.csv"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(tables) == 0 {
		fmt.Fprintf(os.Stderr, "no tables found in %s; run process first\n", *outDir)
		os.Exit(1)
	}

	if err := os.MkdirAll(*graphsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", *graphsDir, err)
		os.Exit(1)
	}

	written := 0
	for _, path := range tables {
		state := strings.TrimSuffix(filepath.Base(path), ".csv")
		if state == "All" {
			continue
		}
		tbl, err := table.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			continue
		}
		reform, hasReform := FindReform(reforms, state)

		pngPath := filepath.Join(*graphsDir, state+".png")
		if err := renderChart(pngPath, state, tbl, reform, hasReform); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", state, err)
			continue
		}
		written++
	}

	fmt.Printf("wrote %d charts to %s\n", written, *graphsDir)
}

// renderChart draws a jurisdiction's monthly series: total in black, FTP in
// green, FTA in blue, with reform markers when known (dotted at enactment,
// solid at the effective date; blue when the reform covers FTA).
func renderChart(path, state string, tbl *table.Table, reform Reform, hasReform bool) error {
	dates := tbl.Buckets()
	if len(dates) == 0 {
		return fmt.Errorf("no monthly rows to chart")
	}

	p := plot.New()
	p.Title.Text = state + " suspensions per month"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.BackgroundColor = color.White
	p.Y.Label.Text = "suspensions"
	p.Y.Min = 0

	maxY := addSeries(p, "total", tbl.Totals(), color.Black)
	if vals := tbl.Column(classify.FTP); vals != nil {
		addSeries(p, "FTP", vals, chartGreen)
	}
	if vals := tbl.Column(classify.FTA); vals != nil {
		addSeries(p, "FTA", vals, chartBlue)
	}

	if hasReform {
		markerColor := color.Color(chartGreen)
		if reform.IncludesFTA() {
			markerColor = chartBlue
		}
		addMarker(p, dates, reform.Enacted, maxY, markerColor, true)
		addMarker(p, dates, reform.Effective, maxY, markerColor, false)
	}

	p.X.Tick.Marker = dateTicks(dates)
	p.X.Min = -0.5
	p.X.Max = float64(len(dates)) - 0.5
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Marker = countTicks{}
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// addSeries plots one category line and returns its maximum value.
func addSeries(p *plot.Plot, name string, vals []int64, clr color.Color) float64 {
	pts := make(plotter.XYs, len(vals))
	maxY := 0.0
	for i, v := range vals {
		pts[i] = plotter.XY{X: float64(i), Y: float64(v)}
		if float64(v) > maxY {
			maxY = float64(v)
		}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return maxY
	}
	line.Color = clr
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(name, line)
	return maxY
}

// addMarker draws a vertical line at the bucket's x position. Months outside
// the table's range are skipped.
func addMarker(p *plot.Plot, dates []string, month string, maxY float64, clr color.Color, dotted bool) {
	if month == "" {
		return
	}
	x := -1
	for i, d := range dates {
		if d >= month {
			x = i
			break
		}
	}
	if x < 0 {
		return
	}

	line, err := plotter.NewLine(plotter.XYs{
		{X: float64(x), Y: 0},
		{X: float64(x), Y: maxY * 1.05},
	})
	if err != nil {
		return
	}
	line.Color = clr
	line.Width = vg.Points(1)
	if dotted {
		line.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	}
	p.Add(line)
}

type dateTicks []string

func (dt dateTicks) Ticks(min, max float64) []plot.Tick {
	n := len(dt)
	if n == 0 {
		return nil
	}

	// At most ~12 labeled ticks across the axis.
	step := 1
	if n > 12 {
		step = (n + 11) / 12
	}

	var ticks []plot.Tick
	for i := 0; i < n; i++ {
		t := plot.Tick{Value: float64(i)}
		if i%step == 0 {
			t.Label = dt[i]
		}
		ticks = append(ticks, t)
	}
	return ticks
}

type countTicks struct{}

func (countTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}

func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
