package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup precomputes dashboard series into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// Warmup scopes.
const (
	// ScopeDefault warms only the selection the dashboard opens with.
	ScopeDefault = "default"
	// ScopeAll additionally warms every single-metric selection.
	ScopeAll = "all"
)

// WarmupPayload configures one warmup run.
type WarmupPayload struct {
	Scope string `json:"scope"`
	// Invalidate bumps the cache version before warming.
	Invalidate bool `json:"invalidate,omitempty"`
}

// NewWarmupTask constructs a dashboard warmup task.
func NewWarmupTask(scope string, invalidate bool) (*asynq.Task, error) {
	if scope == "" {
		scope = ScopeDefault
	}
	if scope != ScopeDefault && scope != ScopeAll {
		return nil, fmt.Errorf("jobs: unknown warmup scope %q", scope)
	}
	data, err := json.Marshal(WarmupPayload{Scope: scope, Invalidate: invalidate})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
