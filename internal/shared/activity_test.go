package shared

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	sql  string
	args []any
}

func (r *recordingExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestActivityRecord(t *testing.T) {
	db := &recordingExec{}
	log := NewActivityLog(db)

	err := log.Record(context.Background(), Activity{
		Entity:   "lead",
		EntityID: "42",
		Action:   "assignment_notified",
		Actor:    "worker",
		Meta:     map[string]any{"assignee": "rina"},
	})
	require.NoError(t, err)
	assert.Contains(t, db.sql, "INSERT INTO crm_activity")
	require.Len(t, db.args, 6)
	assert.Equal(t, "lead", db.args[0])
	assert.JSONEq(t, `{"assignee":"rina"}`, string(db.args[4].([]byte)))
}

func TestActivityRecordRequiresFields(t *testing.T) {
	assert.Error(t, NewActivityLog(&recordingExec{}).Record(context.Background(), Activity{Entity: "lead"}))
	var nilLog *ActivityLog
	assert.Error(t, nilLog.Record(context.Background(), Activity{}))
}
