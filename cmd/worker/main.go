package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/findash/findash/internal/app"
	"github.com/findash/findash/internal/dashboard"
	jobmetrics "github.com/findash/findash/internal/jobs"
	"github.com/findash/findash/internal/platform/cache"
	"github.com/findash/findash/jobs"
)

const warmupCron = "15 1 * * *"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	if !cfg.CacheEnabled() {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	table, err := dashboard.LoadTable(cfg.DataPath)
	if err != nil {
		logger.Error("load data", slog.String("path", cfg.DataPath), slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	if err := dashboard.SetupCacheMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Warn("register cache metrics", slog.Any("error", err))
	}
	service := dashboard.NewService(table, dashboard.DefaultExcluded, dashboard.NewCache(redisClient, cfg.CacheTTL), logger)
	warmupJob := jobs.NewDashboardWarmupJob(service, logger, jobmetrics.NewMetrics(nil))

	warmupTask, err := jobs.NewWarmupTask(jobs.ScopeAll, false)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: warmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("table_id", table.ID.String()), slog.String("warmup_cron", warmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
