package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/export"
	"github.com/findash/findash/internal/dashboard/svg"
	"github.com/findash/findash/internal/dashboard/ui"
	"github.com/findash/findash/internal/platform/httpx"
	"github.com/findash/findash/internal/view"
)

const (
	requestTimeout = 2 * time.Second
	// DefaultPDFTimeout bounds a Gotenberg render. It must stay below the
	// server write timeout.
	DefaultPDFTimeout = 25 * time.Second
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardService defines the data contract used by the handler.
type DashboardService interface {
	Table() *dashboard.Table
	Excluded() []string
	SelectableMetrics() []string
	Series(ctx context.Context, sel dashboard.Selection) (dashboard.Series, error)
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// RenderObserver records chart render latency per output format.
type RenderObserver interface {
	ObserveChartRender(format string, d time.Duration)
}

// Handler coordinates HTTP requests for the metrics dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	chart     ui.ChartRenderer
	pdf       PDFService
	renders   RenderObserver
	csvPool   sync.Pool
	now       func() time.Time

	pdfTimeout time.Duration
}

// NewHandler constructs the dashboard HTTP handler. pdf may be nil when no
// renderer is configured.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, chart ui.ChartRenderer, pdf PDFService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		chart:     chart,
		pdf:       pdf,
		now:       time.Now,

		pdfTimeout: DefaultPDFTimeout,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithRenderObserver installs the render latency sink.
func (h *Handler) WithRenderObserver(o RenderObserver) {
	h.renders = o
}

// WithPDFTimeout overrides the PDF render budget.
func (h *Handler) WithPDFTimeout(d time.Duration) {
	if d > 0 {
		h.pdfTimeout = d
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type chartResult struct {
	series dashboard.Series
	svg    template.HTML
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	vm := ui.DashboardViewModel{
		Filters:   filters,
		Metrics:   ui.ToMetricOptions(h.service.SelectableMetrics(), filters.Metrics),
		FromYears: ui.ToYearOptions(filters.From),
		ToYears:   ui.ToYearOptions(filters.To),
		Excluded:  h.service.Excluded(),
		Query:     selectionQuery(filters),
	}
	if len(filters.Metrics) == 0 {
		vm.Prompt = ui.EmptySelectionPrompt
	} else {
		result, err := h.buildChart(ctx, filters.Selection())
		if err != nil {
			h.handleServiceError(w, "build chart", err)
			return
		}
		vm.ChartSVG = result.svg
	}
	if filters.ShowTable {
		table := ui.ToTableView(h.service.Table(), h.service.Excluded())
		vm.Table = &table
	}

	viewData := view.TemplateData{
		Title:       ui.ChartTitle,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	if len(filters.Metrics) == 0 {
		h.respondPrompt(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.buildChart(ctx, filters.Selection())
	if err != nil {
		h.handleServiceError(w, "build chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(result.svg)); err != nil {
		h.logError("stream svg", err)
	}
}

func (h *Handler) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	if len(filters.Metrics) == 0 {
		h.respondPrompt(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	series, err := h.service.Series(ctx, filters.Selection())
	if err != nil {
		h.handleServiceError(w, "load series", err)
		return
	}
	var buf bytes.Buffer
	start := time.Now()
	if err := export.WriteChartPNG(&buf, series, 0, 0); err != nil {
		h.handleServerError(w, "render png", err)
		return
	}
	h.observeRender("png", start)
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream png", err)
	}
}

type metricsResponse struct {
	Selectable []string            `json:"selectable"`
	Excluded   []string            `json:"excluded"`
	Bounds     dashboard.YearRange `json:"bounds"`
	Default    dashboard.Selection `json:"default"`
	TableID    string              `json:"table_id"`
	Source     string              `json:"source"`
	LoadedAt   time.Time           `json:"loaded_at"`
}

func (h *Handler) handleAPIMetrics(w http.ResponseWriter, r *http.Request) {
	table := h.service.Table()
	selectable := h.service.SelectableMetrics()
	resp := metricsResponse{
		Selectable: selectable,
		Excluded:   h.service.Excluded(),
		Bounds:     dashboard.FullRange(),
		Default:    dashboard.Selection{Metrics: selectable, Years: dashboard.FullRange()},
	}
	if table != nil {
		resp.TableID = table.ID.String()
		resp.Source = table.Source
		resp.LoadedAt = table.LoadedAt
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) handleAPISeries(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.problemFilterError(w, err)
		return
	}
	if len(filters.Metrics) == 0 {
		httpx.JSON(w, http.StatusOK, promptResponse{Prompt: ui.EmptySelectionPrompt})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	series, err := h.service.Series(ctx, filters.Selection())
	if err != nil {
		h.logError("load series", err)
		httpx.RespondError(w, translateError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) handleAPITable(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, ui.ToTableView(h.service.Table(), h.service.Excluded()))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filters, series, ok := h.exportSeries(w, r)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteSeriesCSV(buf, series); err != nil {
		h.handleServerError(w, "write series csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(filters, "csv"))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	filters, series, ok := h.exportSeries(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, h.service.Table(), series); err != nil {
		h.handleServerError(w, "write workbook", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(filters, "xlsx"))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream xlsx", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		http.Error(w, "PDF export is not configured", http.StatusServiceUnavailable)
		return
	}
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	if len(filters.Metrics) == 0 {
		h.respondPrompt(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.pdfTimeout)
	defer cancel()

	result, err := h.buildChart(ctx, filters.Selection())
	if err != nil {
		h.handleServiceError(w, "build chart", err)
		return
	}
	payload := export.DashboardPayload{
		Selection:   filters.Selection(),
		ChartSVG:    result.svg,
		GeneratedAt: h.now(),
	}
	if filters.ShowTable {
		table := ui.ToTableView(h.service.Table(), h.service.Excluded())
		payload.Table = &table
	}
	start := time.Now()
	pdfBytes, err := h.pdf.RenderDashboard(ctx, payload)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}
	h.observeRender("pdf", start)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(filters, "pdf"))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

// exportSeries parses the request and resolves its series, writing the error
// response itself when ok is false.
func (h *Handler) exportSeries(w http.ResponseWriter, r *http.Request) (ui.DashboardFilters, dashboard.Series, bool) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return filters, dashboard.Series{}, false
	}
	if len(filters.Metrics) == 0 {
		h.respondPrompt(w)
		return filters, dashboard.Series{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	series, err := h.service.Series(ctx, filters.Selection())
	if err != nil {
		h.handleServiceError(w, "load series", err)
		return filters, dashboard.Series{}, false
	}
	return filters, series, true
}

func (h *Handler) buildChart(ctx context.Context, sel dashboard.Selection) (chartResult, error) {
	if h.chart == nil {
		return chartResult{}, fmt.Errorf("svg renderer missing")
	}
	val, err, shared := singleflightBuild(ctx, h.chartKey(sel), func(ctx context.Context) (interface{}, error) {
		series, err := h.service.Series(ctx, sel)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		markup, err := h.chart.Combo(svg.DefaultWidth, svg.DefaultHeight, ui.ToComboData(series), ui.ChartOptions())
		if err != nil {
			return nil, err
		}
		h.observeRender("svg", start)
		return chartResult{series: series, svg: markup}, nil
	})
	if err != nil {
		return chartResult{}, err
	}
	if shared {
		h.logger.Debug("chart build shared", slog.String("selection", sel.Key()))
	}
	return val.(chartResult), nil
}

// chartKey scopes shared builds to the loaded table, since the build group is
// process wide.
func (h *Handler) chartKey(sel dashboard.Selection) string {
	tableID := "none"
	if t := h.service.Table(); t != nil {
		tableID = t.ID.String()
	}
	return "chart:" + tableID + ":" + sel.Key()
}

func (h *Handler) observeRender(format string, start time.Time) {
	if h.renders != nil {
		h.renders.ObserveChartRender(format, time.Since(start))
	}
}

func (h *Handler) parseFilters(r *http.Request) (ui.DashboardFilters, error) {
	query := r.URL.Query()
	filters := ui.DashboardFilters{ShowTable: isChecked(query.Get("show_table"))}

	selectable := h.service.SelectableMetrics()
	known := make(map[string]struct{}, len(selectable))
	for _, name := range selectable {
		known[name] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, raw := range query["metric"] {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := known[name]; !ok {
			return ui.DashboardFilters{}, validationError{field: "metric", err: fmt.Errorf("%w: %q", dashboard.ErrUnknownMetric, name)}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		filters.Metrics = append(filters.Metrics, name)
	}
	if len(filters.Metrics) == 0 && !isChecked(query.Get("submitted")) {
		filters.Metrics = selectable
	}

	from, err := parseYear(query.Get("from"), dashboard.FirstYear)
	if err != nil {
		return ui.DashboardFilters{}, validationError{field: "from", err: err}
	}
	to, err := parseYear(query.Get("to"), dashboard.LastYear)
	if err != nil {
		return ui.DashboardFilters{}, validationError{field: "to", err: err}
	}
	years := dashboard.ClampRange(from, to)
	if err := years.Validate(); err != nil {
		return ui.DashboardFilters{}, validationError{field: "to", err: err}
	}
	filters.From, filters.To = years.From, years.To
	return filters, nil
}

func parseYear(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", dashboard.ErrInvalidRange, raw)
	}
	return year, nil
}

func isChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func selectionQuery(filters ui.DashboardFilters) template.URL {
	values := url.Values{}
	for _, name := range filters.Metrics {
		values.Add("metric", name)
	}
	values.Set("from", strconv.Itoa(filters.From))
	values.Set("to", strconv.Itoa(filters.To))
	values.Set("submitted", "1")
	if filters.ShowTable {
		values.Set("show_table", "1")
	}
	return template.URL(values.Encode())
}

func attachment(filters ui.DashboardFilters, ext string) string {
	return fmt.Sprintf("attachment; filename=\"findash-%d-%d.%s\"", filters.From, filters.To, ext)
}

func (h *Handler) respondPrompt(w http.ResponseWriter) {
	http.Error(w, ui.EmptySelectionPrompt, http.StatusUnprocessableEntity)
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		http.Error(w, vErr.Error(), http.StatusBadRequest)
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) problemFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", vErr.Error())
		return
	}
	h.logError("parse filters", err)
	httpx.RespondError(w, err)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, dashboard.ErrEmptySelection):
		h.respondPrompt(w)
	case errors.Is(err, dashboard.ErrInvalidRange), errors.Is(err, dashboard.ErrUnknownMetric):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		h.logError(op, err)
		http.Error(w, http.StatusText(http.StatusGatewayTimeout), http.StatusGatewayTimeout)
	default:
		h.handleServerError(w, op, err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// translateError maps domain failures onto the httpx sentinels.
func translateError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrEmptySelection),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, dashboard.ErrUnknownMetric):
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", httpx.ErrTimeout, err)
	}
	return err
}

type validationError struct {
	field string
	err   error
}

func (v validationError) Error() string {
	if v.err == nil {
		return fmt.Sprintf("invalid %s", v.field)
	}
	return fmt.Sprintf("invalid %s: %v", v.field, v.err)
}

func (v validationError) Unwrap() error { return v.err }
