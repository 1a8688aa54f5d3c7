package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/hibiken/asynq"

	"github.com/findash/findash/jobs"
)

// JobsCLI wraps manual management helpers for the warmup queue.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	if strings.TrimSpace(redisAddr) == "" {
		return nil, errors.New("jobs cli: redis address required")
	}
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if closeErr := c.client.Close(); closeErr != nil {
		err = closeErr
	}
	return err
}

// Trigger enqueues a dashboard warmup for scope.
func (c *JobsCLI) Trigger(ctx context.Context, scope string, invalidate bool) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	return c.client.EnqueueWarmup(ctx, scope, invalidate)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Failed    int
}

// InspectQueue reports the metrics of the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Failed = info.Failed
	}
	return stats, nil
}

// ListScheduled returns scheduled task infos for observability.
func (c *JobsCLI) ListScheduled(ctx context.Context, size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

// QueueMarkdown renders queue stats and scheduled tasks.
func QueueMarkdown(stats QueueStats, scheduled []*asynq.TaskInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Queue %s\n\n", stats.Queue)
	b.WriteString("| Pending | Active | Scheduled | Retry | Failed |\n|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n", stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
	b.WriteString("\n## Scheduled\n\n")
	if len(scheduled) == 0 {
		b.WriteString("_None._\n")
		return b.String()
	}
	b.WriteString("| ID | Type | Next run |\n|---|---|---|\n")
	for _, task := range scheduled {
		if task == nil {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", task.ID, task.Type, task.NextProcessAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}

type warmupCmd struct {
	redis      string
	scope      string
	invalidate bool
}

func (*warmupCmd) Name() string     { return "warmup" }
func (*warmupCmd) Synopsis() string { return "enqueue a dashboard cache warmup" }
func (*warmupCmd) Usage() string {
	return `warmup [-redis addr] [-scope default|all] [-invalidate]:
  Enqueue a warmup task for the worker.
`
}

func (c *warmupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.redis, "redis", defaultRedisAddr(), "Redis address")
	f.StringVar(&c.scope, "scope", jobs.ScopeDefault, "warmup scope: default or all")
	f.BoolVar(&c.invalidate, "invalidate", false, "drop cached series before warming")
}

func (c *warmupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.scope != jobs.ScopeDefault && c.scope != jobs.ScopeAll {
		fail("unknown scope %q", c.scope)
		return subcommands.ExitUsageError
	}
	cli, err := NewJobsCLI(c.redis)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}
	defer cli.Close()

	info, err := cli.Trigger(ctx, c.scope, c.invalidate)
	if err != nil {
		fail("enqueue warmup: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "enqueued %s %s on queue %s\n", info.Type, info.ID, info.Queue)
	return subcommands.ExitSuccess
}

type queueCmd struct {
	redis     string
	scheduled int
}

func (*queueCmd) Name() string     { return "queue" }
func (*queueCmd) Synopsis() string { return "show queue state and scheduled tasks" }
func (*queueCmd) Usage() string {
	return `queue [-redis addr] [-scheduled n]:
  Print the default queue counters and the next scheduled tasks.
`
}

func (c *queueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.redis, "redis", defaultRedisAddr(), "Redis address")
	f.IntVar(&c.scheduled, "scheduled", 10, "number of scheduled tasks to list")
}

func (c *queueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cli, err := NewJobsCLI(c.redis)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}
	defer cli.Close()

	stats, err := cli.InspectQueue(ctx)
	if err != nil {
		fail("inspect queue: %v", err)
		return subcommands.ExitFailure
	}
	scheduled, err := cli.ListScheduled(ctx, c.scheduled)
	if err != nil {
		fail("list scheduled: %v", err)
		return subcommands.ExitFailure
	}
	printMarkdown(QueueMarkdown(stats, scheduled))
	return subcommands.ExitSuccess
}
