package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the subset of *asynq.Client the Enqueuer needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// refreshWindow coalesces bursts of deal changes for one organization into a
// single refresh.
const refreshWindow = 10 * time.Second

// Enqueuer schedules an analytics refresh whenever an organization's deals change.
type Enqueuer struct {
	client TaskEnqueuer
	logger *slog.Logger
}

func NewEnqueuer(client TaskEnqueuer, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{client: client, logger: logger}
}

// DealsChanged enqueues analytics:refresh for orgID. Failures are logged and
// swallowed; the periodic sweep catches up.
func (e *Enqueuer) DealsChanged(ctx context.Context, orgID uuid.UUID) {
	task, err := NewAnalyticsRefreshTask(AnalyticsRefreshPayload{OrganizationID: orgID})
	if err != nil {
		e.logger.Error("failed to build analytics refresh task", "org_id", orgID, "error", err)
		return
	}

	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Unique(refreshWindow),
	)
	switch {
	case err == nil:
		e.logger.Debug("analytics refresh enqueued", "org_id", orgID)
	case errors.Is(err, asynq.ErrDuplicateTask):
	default:
		e.logger.Warn("failed to enqueue analytics refresh", "org_id", orgID, "error", err)
	}
}

// RegisterSweep schedules the analytics sweep on cronspec.
func RegisterSweep(scheduler *asynq.Scheduler, cronspec string) (string, error) {
	return scheduler.Register(cronspec, NewAnalyticsSweepTask(), asynq.Queue("low"))
}
