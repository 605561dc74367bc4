package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"timeledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSnapshotsOnlyChangedFields(t *testing.T) {
	before := map[string]any{
		"status":      "SUBMITTED",
		"total_hours": 8.0,
		"total_pay":   160.0,
	}
	after := map[string]any{
		"status":      "APPROVED",
		"total_hours": 8.0,
		"total_pay":   160.0,
		"approved_by": uint(7),
	}

	diff := DiffSnapshots(before, after)
	require.Len(t, diff, 2)
	assert.Equal(t, FieldChange{From: "SUBMITTED", To: "APPROVED"}, diff["status"])
	assert.Equal(t, FieldChange{From: nil, To: uint(7)}, diff["approved_by"])
}

func TestDiffSnapshotsCreation(t *testing.T) {
	after := map[string]any{"status": "ACTIVE", "applied_rate": 20.0}
	diff := DiffSnapshots(nil, after)
	require.Len(t, diff, 2)
	assert.Nil(t, diff["status"].From)
	assert.Equal(t, "ACTIVE", diff["status"].To)
}

func TestAuditRowProvenance(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	worker := newWorker(t, db, "alice", 20.0)

	entry, err := tracker.ClockIn(context.Background(), worker.ID, nil, "", testProvenance(worker.ID))
	require.NoError(t, err)

	rows := auditRows(t, db, entry.ID)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, worker.ID, row.WorkerID)
	assert.Equal(t, worker.ID, row.ActingUserID)
	assert.Equal(t, "203.0.113.7", row.IPAddress)
	assert.Equal(t, "ledger-test/1.0", row.UserAgent)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", row.RequestID)

	var changes map[string]FieldChange
	require.NoError(t, json.Unmarshal([]byte(row.Changes), &changes))
	assert.Equal(t, string(models.StatusActive), changes["status"].To)
}

func TestQueryTrailFilters(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	approval := newApproval(db, nil)
	audit := NewAuditRecorder()

	alice := newWorker(t, db, "alice", 20.0)
	bob := newWorker(t, db, "bob", 18.0)
	approver := newWorker(t, db, "boss", 0)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	aliceEntry, err := tracker.CreateManualEntry(context.Background(), alice.ID, nil, date, 8, "", testProvenance(alice.ID))
	require.NoError(t, err)
	bobEntry, err := tracker.CreateManualEntry(context.Background(), bob.ID, nil, date, 6, "", testProvenance(bob.ID))
	require.NoError(t, err)

	_, err = approval.Submit(context.Background(), aliceEntry.ID, testProvenance(alice.ID))
	require.NoError(t, err)
	_, err = approval.Approve(context.Background(), aliceEntry.ID, testProvenance(approver.ID))
	require.NoError(t, err)

	t.Run("by entry", func(t *testing.T) {
		rows, err := audit.QueryTrail(db, AuditFilter{EntryID: aliceEntry.ID})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("by worker", func(t *testing.T) {
		rows, err := audit.QueryTrail(db, AuditFilter{WorkerID: bob.ID})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, bobEntry.ID, rows[0].TimeEntryID)
	})

	t.Run("by actor", func(t *testing.T) {
		rows, err := audit.QueryTrail(db, AuditFilter{ActorID: approver.ID})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, models.ActionApprove, rows[0].Action)
	})

	t.Run("by action", func(t *testing.T) {
		rows, err := audit.QueryTrail(db, AuditFilter{Action: models.ActionManualCreate})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("sorted newest first", func(t *testing.T) {
		rows, err := audit.QueryTrail(db, AuditFilter{EntryID: aliceEntry.ID})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, models.ActionApprove, rows[0].Action)
		assert.Equal(t, models.ActionManualCreate, rows[2].Action)
	})

	t.Run("date range excludes future window", func(t *testing.T) {
		from := time.Now().Add(time.Hour)
		rows, err := audit.QueryTrail(db, AuditFilter{From: &from})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("limit", func(t *testing.T) {
		rows, err := audit.QueryTrail(db, AuditFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}
