package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Activity is a row in crm_activity.
type Activity struct {
	Entity   string
	EntityID string
	Action   string
	Actor    string
	Meta     map[string]any
	At       time.Time
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ActivityLog writes records into crm_activity.
type ActivityLog struct {
	db execer
}

// NewActivityLog returns a new ActivityLog.
func NewActivityLog(db execer) *ActivityLog {
	return &ActivityLog{db: db}
}

// Record persists the entry. A zero At uses the database clock.
func (l *ActivityLog) Record(ctx context.Context, a Activity) error {
	if l == nil {
		return errors.New("activity log not initialised")
	}
	if a.Entity == "" || a.EntityID == "" || a.Action == "" {
		return errors.New("activity requires entity/entity_id/action")
	}
	meta, err := json.Marshal(a.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !a.At.IsZero() {
		at = &a.At
	}
	_, err = l.db.Exec(ctx, `INSERT INTO crm_activity (entity, entity_id, action, actor, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, a.Entity, a.EntityID, a.Action, a.Actor, meta, at)
	return err
}
