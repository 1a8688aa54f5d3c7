package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

const exportsPerMinute = 10

// MountRoutes registers dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportsPerMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Get("/chart.svg", h.handleChartSVG)
	r.Get("/chart.png", h.handleChartPNG)
	r.Route("/api", func(api chi.Router) {
		api.Get("/metrics", h.handleAPIMetrics)
		api.Get("/series", h.handleAPISeries)
		api.Get("/table", h.handleAPITable)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/export.csv", h.handleCSV)
		gr.Get("/export.xlsx", h.handleXLSX)
		gr.Get("/export.pdf", h.handlePDF)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
