package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAssignmentNotify tells an assignee that a lead or opportunity is theirs.
	TaskAssignmentNotify = "crm:assignment_notify"
)

// AssignmentPayload describes one assignment change.
type AssignmentPayload struct {
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Title      string    `json:"title"`
	Assignee   string    `json:"assignee"`
	Previous   string    `json:"previous,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// NewAssignmentNotifyTask constructs an Asynq task. Enqueues of the same
// assignment event collapse while the first task is still queued; a later
// reassignment to the same person is a new event and notifies again.
func NewAssignmentNotifyTask(payload AssignmentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentNotify, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.TaskID(assignmentTaskID(payload)),
	), nil
}

// assignmentTaskID identifies an assignment event to the second.
func assignmentTaskID(p AssignmentPayload) string {
	return p.Entity + ":" + p.EntityID + ":" + p.Assignee + ":" + p.AssignedAt.UTC().Format(time.RFC3339)
}
