package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/ui"
)

func sampleTable(t *testing.T) *dashboard.Table {
	t.Helper()
	header := []string{"Metric", "Unit"}
	for y := dashboard.FirstYear; y <= dashboard.LastYear; y++ {
		header = append(header, strconv.Itoa(y))
	}
	pad := strings.Repeat(",0", dashboard.YearCount-2)
	doc := strings.Join(header, ",") + "\n" +
		"A,US$ m,10,20" + pad + "\n" +
		"B,US$ m,5,5" + pad + "\n" +
		"Dividends (OLNG),US$ m,1,2" + pad + "\n"
	table, err := dashboard.ParseCSV(strings.NewReader(doc), "export.csv")
	require.NoError(t, err)
	return table
}

func sampleSeries(t *testing.T, table *dashboard.Table) dashboard.Series {
	t.Helper()
	series, err := dashboard.BuildSeries(table, dashboard.Selection{
		Metrics: []string{"A", "B"},
		Years:   dashboard.YearRange{From: 2023, To: 2024},
	}, dashboard.DefaultExcluded)
	require.NoError(t, err)
	return series
}

func TestWriteSeriesCSV(t *testing.T) {
	series := sampleSeries(t, sampleTable(t))
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSeriesCSV(buf, series))

	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Year", "A (cumulative)", "B (cumulative)", "Dividends (OLNG)"},
		{"2023", "10.00", "15.00", "1.00"},
		{"2024", "20.00", "25.00", "2.00"},
	}, records)
}

func TestWriteWorkbook(t *testing.T) {
	table := sampleTable(t)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteWorkbook(buf, table, sampleSeries(t, table)))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{DataSheet, SeriesSheet}, f.GetSheetList())
	rows, err := f.GetRows(DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Metric", rows[0][0])
	assert.Equal(t, "2023", rows[0][2])
	assert.Equal(t, "Dividends (OLNG)", rows[3][0])

	value, err := f.GetCellValue(SeriesSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "25", value)
}

func TestWriteChartPNG(t *testing.T) {
	series := sampleSeries(t, sampleTable(t))
	buf := &bytes.Buffer{}
	require.NoError(t, WriteChartPNG(buf, series, 0, 0))

	img, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)

	require.Error(t, WriteChartPNG(&bytes.Buffer{}, dashboard.Series{}, 0, 0))
}

type stubRenderer struct {
	html string
	err  error
}

func (s *stubRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	s.html = html
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4"), nil
}

func TestPDFExporterRender(t *testing.T) {
	table := sampleTable(t)
	view := ui.ToTableView(table, dashboard.DefaultExcluded)
	renderer := &stubRenderer{}
	exporter := NewPDFExporter(renderer)

	data, err := exporter.RenderDashboard(context.Background(), DashboardPayload{
		Selection: dashboard.Selection{Metrics: []string{"A", "B<script>"}, Years: dashboard.FullRange()},
		ChartSVG:  "<svg></svg>",
		Table:     &view,
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Contains(t, renderer.html, ui.ChartTitle)
	assert.Contains(t, renderer.html, "<svg></svg>")
	assert.Contains(t, renderer.html, "B&lt;script&gt;")
	assert.Contains(t, renderer.html, `class="excluded"`)

	renderer.err = errors.New("gotenberg down")
	_, err = exporter.RenderDashboard(context.Background(), DashboardPayload{})
	assert.Error(t, err)

	var nilExporter *PDFExporter
	_, err = nilExporter.RenderDashboard(context.Background(), DashboardPayload{})
	assert.Error(t, err)
}
