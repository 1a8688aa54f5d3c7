package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/ui"
)

type tableCmd struct {
	data string
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "print the metrics table" }
func (*tableCmd) Usage() string {
	return `table [-data path]:
  Print every row and year of the data file. Right axis metrics are marked.
`
}

func (c *tableCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.data, "data", defaultDataPath(), "CSV or XLSX data file")
}

func (c *tableCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	table, err := dashboard.LoadTable(c.data)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	printMarkdown(TableMarkdown(ui.ToTableView(table, dashboard.DefaultExcluded)))
	return subcommands.ExitSuccess
}

// TableMarkdown renders view as a markdown table.
func TableMarkdown(view ui.TableView) string {
	var b strings.Builder
	b.WriteString("# Metrics\n\n| Metric | Unit |")
	for _, year := range view.Years {
		b.WriteString(" " + strconv.Itoa(year) + " |")
	}
	b.WriteString("\n|---|---|")
	for range view.Years {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for _, row := range view.Rows {
		name := escapeCell(row.Metric)
		if row.Excluded {
			name += " *(right axis)*"
		}
		fmt.Fprintf(&b, "| %s | %s |", name, escapeCell(row.Unit))
		for _, v := range row.Values {
			b.WriteString(" " + v + " |")
		}
		b.WriteString("\n")
	}
	if len(view.Rows) == 0 {
		b.WriteString("\n_No rows._\n")
	}
	return b.String()
}

type metricsCmd struct {
	data string
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "list selectable and right axis metrics" }
func (*metricsCmd) Usage() string {
	return `metrics [-data path]:
  List the metrics that can be stacked and the ones drawn on the right axis.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.data, "data", defaultDataPath(), "CSV or XLSX data file")
}

func (c *metricsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	table, err := dashboard.LoadTable(c.data)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	var b strings.Builder
	b.WriteString("# Selectable metrics\n\n")
	for _, name := range dashboard.ListSelectableMetrics(table, dashboard.DefaultExcluded) {
		b.WriteString("- " + name + "\n")
	}
	b.WriteString("\n# Right axis\n\n")
	missing := make(map[string]bool)
	for _, name := range dashboard.MissingExcluded(table, dashboard.DefaultExcluded) {
		missing[name] = true
	}
	for _, name := range dashboard.DefaultExcluded {
		if missing[name] {
			b.WriteString("- " + name + " _(missing)_\n")
			continue
		}
		b.WriteString("- " + name + "\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
