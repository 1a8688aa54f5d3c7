package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/findash/findash/internal/app"
	"github.com/findash/findash/internal/dashboard"
	"github.com/findash/findash/internal/dashboard/export"
	dashboardhttp "github.com/findash/findash/internal/dashboard/http"
	"github.com/findash/findash/internal/dashboard/svg"
	"github.com/findash/findash/internal/dashboard/ui"
	"github.com/findash/findash/internal/observability"
	"github.com/findash/findash/internal/platform/cache"
	"github.com/findash/findash/internal/view"
	"github.com/findash/findash/jobs"
	"github.com/findash/findash/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	table, err := dashboard.LoadTable(cfg.DataPath)
	if err != nil {
		logger.Error("load data", slog.String("path", cfg.DataPath), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("data loaded",
		slog.String("path", table.Source),
		slog.String("table_id", table.ID.String()),
		slog.Int("rows", len(table.Rows)))
	for _, name := range dashboard.MissingExcluded(table, dashboard.DefaultExcluded) {
		logger.Warn("excluded metric missing from data, its line is skipped", slog.String("metric", name))
	}

	metrics := observability.NewMetrics()
	metrics.SetTableRows(len(table.Rows))
	if err := dashboard.SetupCacheMetrics(metrics.Registerer()); err != nil {
		logger.Warn("register cache metrics", slog.Any("error", err))
	}

	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, running uncached", slog.Any("error", err))
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}
	service := dashboard.NewService(table, dashboard.DefaultExcluded, dashboard.NewCache(redisClient, cfg.CacheTTL), logger)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	var (
		pdf           dashboardhttp.PDFService
		reportHandler *report.Handler
	)
	if cfg.PDFEnabled() {
		client := report.NewClient(cfg.GotenbergURL, report.WithLandscape())
		if err := client.Ping(ctx); err != nil {
			logger.Warn("gotenberg ping", slog.Any("error", err))
		}
		pdf = export.NewPDFExporter(client)
		reportHandler = report.NewHandler(client, logger)
	}

	dashboardHandler := dashboardhttp.NewHandler(logger, service, templates, ui.ComboRenderer(svg.Combo), pdf)
	dashboardHandler.WithRenderObserver(metrics)
	dashboardHandler.WithPDFTimeout(cfg.PDFTimeout)

	var inspector jobs.QueueInspector
	if redisClient != nil {
		asynqInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := asynqInspector.Close(); err != nil {
				logger.Warn("asynq inspector close", slog.Any("error", err))
			}
		}()
		inspector = asynqInspector
	}
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Table:            table,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		ReportHandler:    reportHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
