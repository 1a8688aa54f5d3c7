package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/findash/findash/internal/dashboard"
	jobmetrics "github.com/findash/findash/internal/jobs"
)

const warmupJobName = "dashboard_warmup"

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer is the slice of dashboard.Service the warmup job drives.
type Warmer interface {
	DefaultSelection() dashboard.Selection
	SelectableMetrics() []string
	Warm(ctx context.Context, sel dashboard.Selection) (bool, error)
	InvalidateCache(ctx context.Context) (int64, error)
}

// DashboardWarmupJob pre-populates the series cache so first page loads hit
// Redis.
type DashboardWarmupJob struct {
	Service Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(service Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WarmupResult summarises one run.
type WarmupResult struct {
	Selections int
	Hits       int
	Version    int64
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload)
	return err
}

// Run warms the selections named by payload.
func (j *DashboardWarmupJob) Run(ctx context.Context, payload WarmupPayload) (result WarmupResult, resultErr error) {
	if payload.Scope == "" {
		payload.Scope = ScopeDefault
	}
	tracker := j.metrics().Track(warmupJobName)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("scope", payload.Scope))
	start := j.now()
	logger.Info("starting dashboard warmup")

	if payload.Invalidate {
		version, err := j.Service.InvalidateCache(ctx)
		if err != nil {
			logger.Error("invalidate cache", slog.Any("error", err))
			return result, err
		}
		result.Version = version
	}

	for _, sel := range j.selections(payload.Scope) {
		selCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		hit, err := j.Service.Warm(selCtx, sel)
		cancel()
		if err != nil {
			logger.Error("warm selection", slog.String("selection", sel.Key()), slog.Any("error", err))
			return result, err
		}
		result.Selections++
		if hit {
			result.Hits++
		}
	}

	j.metrics().AddWarmed(warmupJobName, "hit", result.Hits)
	j.metrics().AddWarmed(warmupJobName, "miss", result.Selections-result.Hits)
	logger.Info("completed dashboard warmup",
		slog.Int("selections", result.Selections),
		slog.Int("hits", result.Hits),
		slog.Duration("duration", j.now().Sub(start)))
	return result, nil
}

func (j *DashboardWarmupJob) selections(scope string) []dashboard.Selection {
	base := j.Service.DefaultSelection()
	if len(base.Metrics) == 0 {
		return nil
	}
	out := []dashboard.Selection{base}
	if scope != ScopeAll {
		return out
	}
	for _, name := range j.Service.SelectableMetrics() {
		out = append(out, dashboard.Selection{Metrics: []string{name}, Years: dashboard.FullRange()})
	}
	return out
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
