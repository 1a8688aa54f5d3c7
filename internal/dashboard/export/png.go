package export

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/ui"
)

// Default PNG size.
const (
	PNGWidth  = 12 * vg.Inch
	PNGHeight = 7 * vg.Inch
)

var (
	barPalette = []color.RGBA{
		{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
		{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
		{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
		{R: 0xab, G: 0x63, B: 0xfa, A: 0xff},
		{R: 0xff, G: 0xa1, B: 0x5a, A: 0xff},
		{R: 0x19, G: 0xd3, B: 0xf3, A: 0xff},
		{R: 0xff, G: 0x66, B: 0x92, A: 0xff},
		{R: 0xb6, G: 0xe8, B: 0x80, A: 0xff},
	}
	linePalette = []color.RGBA{
		{R: 0x11, G: 0x18, B: 0x27, A: 0xff},
		{R: 0xb9, G: 0x1c, B: 0x1c, A: 0xff},
	}
	tickPrinter = message.NewPrinter(language.English)
)

// WriteChartPNG renders series as a PNG image. The plot has a single y-axis,
// so overlay lines are drawn at primary scale and each tick label carries
// both the primary and the secondary value.
func WriteChartPNG(w io.Writer, series dashboard.Series, width, height vg.Length) error {
	if len(series.Years) == 0 {
		return fmt.Errorf("export: chart needs at least one year")
	}
	if width <= 0 {
		width = PNGWidth
	}
	if height <= 0 {
		height = PNGHeight
	}
	ratio := series.Secondary.Span() / series.Primary.Span()
	if ratio <= 0 {
		return fmt.Errorf("export: invalid axis ranges")
	}

	p := plot.New()
	p.Title.Text = ui.ChartTitle
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = ui.XAxisLabel
	p.Y.Label.Text = ui.PrimaryAxisLabel + " / " + ui.SecondaryAxisLabel
	p.Y.Min = series.Primary.Min
	p.Y.Max = series.Primary.Max
	p.Y.Tick.Marker = plot.TickerFunc(func(min, max float64) []plot.Tick {
		var ticks []plot.Tick
		for _, v := range series.Primary.Ticks(dashboard.PrimaryTickStep) {
			ticks = append(ticks, plot.Tick{
				Value: v,
				Label: tickPrinter.Sprintf("%.0f / %.0f", v, v*ratio),
			})
		}
		return ticks
	})
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	labels := make([]string, len(series.Years))
	for i, year := range series.Years {
		labels[i] = strconv.Itoa(year)
	}
	p.NominalX(labels...)

	var below *plotter.BarChart
	for i, s := range series.Stack {
		bars, err := plotter.NewBarChart(plotter.Values(s.Raw), vg.Points(22))
		if err != nil {
			return fmt.Errorf("export: bars for %s: %w", s.Metric, err)
		}
		bars.Color = barPalette[i%len(barPalette)]
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(s.Metric, bars)
		below = bars
	}

	for i, l := range series.Lines {
		points := make(plotter.XYs, len(l.Values))
		for j, v := range l.Values {
			points[j].X = float64(j)
			points[j].Y = series.Primary.Clamp(v / ratio)
		}
		line, dots, err := plotter.NewLinePoints(points)
		if err != nil {
			return fmt.Errorf("export: line for %s: %w", l.Metric, err)
		}
		c := linePalette[i%len(linePalette)]
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(2)
		dots.GlyphStyle.Color = c
		dots.GlyphStyle.Shape = draw.CircleGlyph{}
		dots.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(line, dots)
		p.Legend.Add(l.Metric+" (right axis)", line, dots)
	}

	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = writer.WriteTo(w)
	return err
}
