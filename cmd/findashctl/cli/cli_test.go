package cli

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/ui"
)

func writeData(t *testing.T) string {
	t.Helper()
	header := []string{"Metric", "Unit"}
	for y := dashboard.FirstYear; y <= dashboard.LastYear; y++ {
		header = append(header, strconv.Itoa(y))
	}
	pad := strings.Repeat(",0", dashboard.YearCount-2)
	doc := strings.Join(header, ",") + "\n" +
		"Revenue,US$ m,10,20" + pad + "\n" +
		"Capex,US$ m,5,5" + pad + "\n" +
		"Dividends (OLNG),US$ m,1,2" + pad + "\n" +
		"Dividends (KOLNG) - RHS,US$ m,3,4" + pad + "\n"
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	prevOut, prevErr, prevStyle := stdout, stderr, markdownStyle
	stdout, stderr, markdownStyle = out, errOut, "notty"
	t.Cleanup(func() {
		stdout, stderr, markdownStyle = prevOut, prevErr, prevStyle
	})
	return out, errOut
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestTableMarkdownMarksRightAxisRows(t *testing.T) {
	table, err := dashboard.LoadTable(writeData(t))
	require.NoError(t, err)

	md := TableMarkdown(ui.ToTableView(table, dashboard.DefaultExcluded))
	assert.Contains(t, md, "| Metric | Unit | 2023 |")
	assert.Contains(t, md, "| Revenue | US$ m | 10.00 | 20.00 |")
	assert.Contains(t, md, "| Dividends (OLNG) *(right axis)* |")
	assert.NotContains(t, md, "Capex *(right axis)*")
}

func TestTableMarkdownEscapesPipes(t *testing.T) {
	view := ui.TableView{Years: []int{2023}, Rows: []ui.TableRow{{Metric: "A|B", Unit: "m", Values: []string{"1.00"}}}}
	assert.Contains(t, TableMarkdown(view), `| A\|B | m | 1.00 |`)
}

func TestTableCommand(t *testing.T) {
	out, _ := captureOutput(t)
	status := run(t, &tableCmd{}, "-data", writeData(t))
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.NotEmpty(t, out.String())
}

func TestTableCommandMissingFile(t *testing.T) {
	_, errOut := captureOutput(t)
	status := run(t, &tableCmd{}, "-data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errOut.String(), "Error:")
}

func TestMetricsCommand(t *testing.T) {
	out, _ := captureOutput(t)
	status := run(t, &metricsCmd{}, "-data", writeData(t))
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "Capex")
	assert.Contains(t, out.String(), "Dividends (KOLNG) - RHS")
}

func TestChartCommandWritesSVG(t *testing.T) {
	out, _ := captureOutput(t)
	target := filepath.Join(t.TempDir(), "chart.svg")
	status := run(t, &chartCmd{}, "-data", writeData(t), "-metric", "Revenue", "-from", "2023", "-to", "2025", "-o", target)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<svg"))
	assert.Contains(t, string(data), "Revenue")
	assert.Contains(t, out.String(), "2023-2025")
}

func TestChartCommandWritesPNG(t *testing.T) {
	captureOutput(t)
	target := filepath.Join(t.TempDir(), "chart.png")
	status := run(t, &chartCmd{}, "-data", writeData(t), "-format", "png", "-o", target)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestChartCommandEmptySelection(t *testing.T) {
	_, errOut := captureOutput(t)
	target := filepath.Join(t.TempDir(), "chart.svg")
	status := run(t, &chartCmd{}, "-data", writeData(t), "-metric", " ", "-o", target)
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, errOut.String(), ui.EmptySelectionPrompt)
	assert.NoFileExists(t, target)
}

func TestChartCommandRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"unknown metric": {"-metric", "Opex"},
		"excluded":       {"-metric", "Dividends (OLNG)"},
		"inverted range": {"-from", "2030", "-to", "2024"},
		"bad format":     {"-format", "gif"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			captureOutput(t)
			args = append([]string{"-data", writeData(t), "-o", filepath.Join(t.TempDir(), "x")}, args...)
			assert.Equal(t, subcommands.ExitUsageError, run(t, &chartCmd{}, args...))
		})
	}
}

func TestQueueMarkdown(t *testing.T) {
	next := time.Date(2026, 1, 2, 1, 15, 0, 0, time.UTC)
	md := QueueMarkdown(
		QueueStats{Queue: "default", Pending: 2, Active: 1, Retry: 3},
		[]*asynq.TaskInfo{{ID: "abc", Type: "dashboard:warmup", NextProcessAt: next}},
	)
	assert.Contains(t, md, "# Queue default")
	assert.Contains(t, md, "| 2 | 1 | 0 | 3 | 0 |")
	assert.Contains(t, md, "| abc | dashboard:warmup | 2026-01-02T01:15:00Z |")

	assert.Contains(t, QueueMarkdown(QueueStats{Queue: "default"}, nil), "_None._")
}

func TestJobsCLIGuards(t *testing.T) {
	_, err := NewJobsCLI(" ")
	assert.Error(t, err)

	var cli *JobsCLI
	_, err = cli.Trigger(context.Background(), "default", false)
	assert.Error(t, err)
	_, err = cli.InspectQueue(context.Background())
	assert.Error(t, err)
	_, err = cli.ListScheduled(context.Background(), 5)
	assert.Error(t, err)
	assert.NoError(t, cli.Close())
}

func TestWarmupCommandRejectsScope(t *testing.T) {
	_, errOut := captureOutput(t)
	status := run(t, &warmupCmd{}, "-scope", "weekly")
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, errOut.String(), "weekly")
}
