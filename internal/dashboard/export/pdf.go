package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/ui"
)

// DashboardPayload aggregates the dashboard state destined for PDF rendering.
type DashboardPayload struct {
	Selection   dashboard.Selection
	ChartSVG    template.HTML
	Table       *ui.TableView
	GeneratedAt time.Time
}

// HTMLRenderer converts an HTML document into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter renders the dashboard through an HTML to PDF backend.
type PDFExporter struct {
	renderer HTMLRenderer
}

// NewPDFExporter wraps renderer.
func NewPDFExporter(renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{renderer: renderer}
}

// RenderDashboard builds the printable page and returns the PDF bytes.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil || p.renderer == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	html, err := BuildHTML(payload)
	if err != nil {
		return nil, err
	}
	return p.renderer.RenderHTML(ctx, html)
}

var printTemplate = template.Must(template.New("print").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title><style>
body{font-family:sans-serif;margin:24px;color:#0f172a}
h1{font-size:18px}
p.meta{font-size:11px;color:#475569}
svg{width:100%;height:auto}
table{width:100%;border-collapse:collapse;font-size:9px;margin-top:16px}
th,td{border:1px solid #cbd5e1;padding:3px;text-align:right}
th.metric,td.metric{text-align:left}
tr.excluded td{background:#f1f5f9}
</style></head><body>
<h1>{{.Title}}</h1>
<p class="meta">Metrics: {{range $i, $m := .Selection.Metrics}}{{if $i}}, {{end}}{{$m}}{{end}} | Years {{.Selection.Years.From}}-{{.Selection.Years.To}} | Generated {{.GeneratedAt}}</p>
{{.ChartSVG}}
{{with .Table}}<table><thead><tr><th class="metric">Metric</th><th class="metric">Unit</th>{{range .Years}}<th>{{.}}</th>{{end}}</tr></thead><tbody>
{{range .Rows}}<tr{{if .Excluded}} class="excluded"{{end}}><td class="metric">{{.Metric}}</td><td class="metric">{{.Unit}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody></table>{{end}}
</body></html>`))

// BuildHTML renders the printable dashboard document.
func BuildHTML(payload DashboardPayload) (string, error) {
	generated := payload.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	var buf bytes.Buffer
	err := printTemplate.Execute(&buf, struct {
		Title       string
		Selection   dashboard.Selection
		ChartSVG    template.HTML
		Table       *ui.TableView
		GeneratedAt string
	}{
		Title:       ui.ChartTitle,
		Selection:   payload.Selection,
		ChartSVG:    payload.ChartSVG,
		Table:       payload.Table,
		GeneratedAt: generated.UTC().Format("02 Jan 2006 15:04 MST"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
