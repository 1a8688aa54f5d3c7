package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/export"
	"github.com/findash/findash/internal/dashboard/svg"
	"github.com/findash/findash/internal/dashboard/ui"
)

// metricList collects a repeated -metric flag.
type metricList struct {
	names []string
	set   bool
}

func (m *metricList) String() string { return strings.Join(m.names, ",") }

func (m *metricList) Set(v string) error {
	m.set = true
	if v = strings.TrimSpace(v); v != "" {
		m.names = append(m.names, v)
	}
	return nil
}

type chartCmd struct {
	data    string
	metrics metricList
	from    int
	to      int
	format  string
	out     string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the chart to an SVG or PNG file" }
func (*chartCmd) Usage() string {
	return `chart [-data path] [-metric name]... [-from year] [-to year] [-format svg|png] [-o file]:
  Render the cumulative chart. Without -metric every selectable metric is stacked.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.data, "data", defaultDataPath(), "CSV or XLSX data file")
	f.Var(&c.metrics, "metric", "metric to stack, repeatable")
	f.IntVar(&c.from, "from", dashboard.FirstYear, "first year")
	f.IntVar(&c.to, "to", dashboard.LastYear, "last year")
	f.StringVar(&c.format, "format", "svg", "output format: svg or png")
	f.StringVar(&c.out, "o", "", "output file, defaults to chart.<format>")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	format := strings.ToLower(strings.TrimSpace(c.format))
	if format != "svg" && format != "png" {
		fail("unsupported format %q", c.format)
		return subcommands.ExitUsageError
	}
	table, err := dashboard.LoadTable(c.data)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	service := dashboard.NewService(table, dashboard.DefaultExcluded, nil, logger)

	sel := dashboard.Selection{Metrics: c.metrics.names, Years: dashboard.ClampRange(c.from, c.to)}
	if !c.metrics.set {
		sel.Metrics = service.SelectableMetrics()
	}
	series, err := service.Series(ctx, sel)
	switch {
	case errors.Is(err, dashboard.ErrEmptySelection):
		fmt.Fprintln(stderr, ui.EmptySelectionPrompt)
		return subcommands.ExitUsageError
	case errors.Is(err, dashboard.ErrInvalidRange), errors.Is(err, dashboard.ErrUnknownMetric):
		fail("%v", err)
		return subcommands.ExitUsageError
	case err != nil:
		fail("%v", err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	if format == "png" {
		err = export.WriteChartPNG(&buf, series, 0, 0)
	} else {
		var chart []byte
		chart, err = renderSVG(series)
		buf.Write(chart)
	}
	if err != nil {
		fail("render chart: %v", err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == "" {
		out = "chart." + format
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "wrote %s (%d metrics, %s)\n", out, len(series.Stack), sel.Years)
	return subcommands.ExitSuccess
}

func renderSVG(series dashboard.Series) ([]byte, error) {
	chart, err := svg.Combo(svg.DefaultWidth, svg.DefaultHeight, ui.ToComboData(series), ui.ChartOptions())
	if err != nil {
		return nil, err
	}
	return []byte(chart), nil
}
