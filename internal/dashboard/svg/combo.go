package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Combo renders stacked bars on the left axis and overlay lines on the right
// axis over shared year categories. Values outside an axis range are clipped
// to the plot area.
func Combo(width, height int, data ComboData, opts ComboOpts) (template.HTML, error) {
	count := len(data.Labels)
	if count == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(data.Stack) == 0 && len(data.Lines) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	for _, s := range data.Stack {
		if len(s.Raw) != count || len(s.Cumulative) != count {
			return "", fmt.Errorf("svg: stacked series %q length must match labels", s.Label)
		}
	}
	for _, l := range data.Lines {
		if len(l.Values) != count {
			return "", fmt.Errorf("svg: line series %q length must match labels", l.Label)
		}
	}
	if !(data.Primary.Max > data.Primary.Min) {
		return "", fmt.Errorf("svg: primary axis range is empty")
	}
	if len(data.Lines) > 0 && !(data.Secondary.Max > data.Secondary.Min) {
		return "", fmt.Errorf("svg: secondary axis range is empty")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#e2e8f0")
	barColors := opts.BarColors
	if len(barColors) == 0 {
		barColors = defaultBarColors
	}
	lineColors := opts.LineColors
	if len(lineColors) == 0 {
		lineColors = defaultLineColors
	}

	plotLeft := marginLeft
	plotRight := float64(width) - marginRight
	plotWidth := plotRight - plotLeft

	var primaryItems, secondaryItems []legendItem
	for i, s := range data.Stack {
		primaryItems = append(primaryItems, legendItem{label: s.Label, color: pick(barColors, i)})
	}
	for i, l := range data.Lines {
		secondaryItems = append(secondaryItems, legendItem{label: l.Label, color: pick(lineColors, i), isLine: true})
	}
	rows := append(legendRows(primaryItems, plotWidth), legendRows(secondaryItems, plotWidth)...)

	plotTop := marginTop
	plotBottom := float64(height) - axisBand - float64(len(rows))*legendRow
	if plotWidth <= 0 || plotBottom-plotTop < 40 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	primary := yScale{min: data.Primary.Min, max: data.Primary.Max, top: plotTop, bottom: plotBottom}
	secondary := yScale{min: data.Secondary.Min, max: data.Secondary.Max, top: plotTop, bottom: plotBottom}

	band := plotWidth / float64(count)
	barWidth := band * 0.6
	center := func(i int) float64 { return plotLeft + band*(float64(i)+0.5) }

	title := fallback(opts.Title, "Combined chart")
	titleID := makeID(title, "combo-title")
	descID := makeID(title, "combo-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\" font-family=\"sans-serif\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Stacked bars with overlay lines"))))
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"28\" fill=\"#0f172a\" font-size=\"16\" font-weight=\"600\" text-anchor=\"middle\">%s</text>", float64(width)/2, template.HTMLEscapeString(title)))

	// Grid follows the primary ticks; the secondary labels sit on the same lines
	// when both axes share the zero offset.
	for _, v := range data.Primary.Ticks {
		if v < data.Primary.Min || v > data.Primary.Max {
			continue
		}
		y := primary.at(v)
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" aria-hidden=\"true\"></line>", plotLeft, y, plotRight, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", plotLeft-8, y+4, axisColor, formatTick(v)))
	}
	if len(data.Lines) > 0 {
		for _, v := range data.Secondary.Ticks {
			if v < data.Secondary.Min || v > data.Secondary.Max {
				continue
			}
			y := secondary.at(v)
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", plotRight+8, y+4, axisColor, formatTick(v)))
		}
	}

	b.WriteString("<g aria-label=\"Stacked bars\">")
	for j, s := range data.Stack {
		color := pick(barColors, j)
		for i, label := range data.Labels {
			top := s.Cumulative[i]
			base := top - s.Raw[i]
			y1 := primary.at(math.Max(top, base))
			y2 := primary.at(math.Min(top, base))
			if y2-y1 <= 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"><title>%s %s: %.2f (cumulative %.2f)</title></rect>",
				center(i)-barWidth/2, y1, barWidth, y2-y1, color,
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label), s.Raw[i], top))
		}
	}
	b.WriteString("</g>")

	// Axes
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", plotLeft, plotTop, plotLeft, plotBottom))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", plotLeft, plotBottom, plotRight, plotBottom))
	if len(data.Lines) > 0 {
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", plotRight, plotTop, plotRight, plotBottom))
	}
	if data.Primary.Min < 0 && data.Primary.Max > 0 {
		zeroY := primary.at(0)
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", plotLeft, zeroY, plotRight, zeroY))
	}
	b.WriteString("</g>")

	for k, l := range data.Lines {
		color := pick(lineColors, k)
		var path strings.Builder
		for i, v := range l.Values {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			path.WriteString(fmt.Sprintf("%s%.2f %.2f", cmd, center(i), secondary.at(v)))
		}
		b.WriteString(fmt.Sprintf("<g aria-label=\"%s\">", template.HTMLEscapeString(l.Label)))
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), color))
		for i, v := range l.Values {
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"><title>%s %s: %.2f</title></circle>",
				center(i), secondary.at(v), color, template.HTMLEscapeString(l.Label), template.HTMLEscapeString(data.Labels[i]), v))
		}
		b.WriteString("</g>")
	}

	for i, label := range data.Labels {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center(i), plotBottom+16, axisColor, template.HTMLEscapeString(label)))
	}

	midY := (plotTop + plotBottom) / 2
	if opts.XLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\">%s</text>", (plotLeft+plotRight)/2, plotBottom+38, axisColor, template.HTMLEscapeString(opts.XLabel)))
	}
	if opts.PrimaryLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"20\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\" transform=\"rotate(-90 20 %.2f)\">%s</text>", midY, axisColor, midY, template.HTMLEscapeString(opts.PrimaryLabel)))
	}
	if opts.SecondaryLabel != "" && len(data.Lines) > 0 {
		x := float64(width) - 20
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\" transform=\"rotate(90 %.2f %.2f)\">%s</text>", x, midY, axisColor, x, midY, template.HTMLEscapeString(opts.SecondaryLabel)))
	}

	// Legends: stacked rows first, then the overlay lines.
	legendY := plotBottom + axisBand
	for _, row := range rows {
		x := plotLeft
		for _, item := range row {
			if item.isLine {
				b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"2\"></line>", x, legendY-4, x+legendSwatch, legendY-4, item.color))
			} else {
				b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.0f\" height=\"%.0f\" fill=\"%s\"></rect>", x, legendY-legendSwatch+1, legendSwatch, legendSwatch, item.color))
			}
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", x+legendSwatch+6, legendY, axisColor, template.HTMLEscapeString(item.label)))
			x += legendItemWidth(item)
		}
		legendY += legendRow
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
