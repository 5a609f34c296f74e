package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-crm/internal/jobs"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
)

// ActivityRecorder stores the notification trail.
type ActivityRecorder interface {
	Record(ctx context.Context, a shared.Activity) error
}

// AssignmentNotifyJob handles TaskAssignmentNotify.
type AssignmentNotifyJob struct {
	activity ActivityRecorder
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewAssignmentNotifyJob constructs the job handler.
func NewAssignmentNotifyJob(activity ActivityRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *AssignmentNotifyJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentNotifyJob{activity: activity, logger: logger, metrics: metrics}
}

// Handle logs the assignment and records a notification row.
func (j *AssignmentNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskAssignmentNotify)
	var payload AssignmentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Warn("decode assignment payload", slog.Any("error", err))
		return tracker.End(fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if payload.Entity == "" || payload.EntityID == "" || payload.Assignee == "" {
		return tracker.End(fmt.Errorf("incomplete assignment payload: %w", asynq.SkipRetry))
	}

	j.logger.Info("assignment notification",
		slog.String("entity", payload.Entity),
		slog.String("entity_id", payload.EntityID),
		slog.String("assignee", payload.Assignee),
		slog.String("previous", payload.Previous),
	)
	err := j.activity.Record(ctx, shared.Activity{
		Entity:   payload.Entity,
		EntityID: payload.EntityID,
		Action:   "assignment_notified",
		Actor:    "worker",
		Meta: map[string]any{
			"assignee": payload.Assignee,
			"previous": payload.Previous,
			"title":    payload.Title,
		},
	})
	if err != nil {
		return tracker.End(fmt.Errorf("record notification: %w", err))
	}
	return tracker.End(nil)
}
