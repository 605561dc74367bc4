package ledger

import (
	"context"
	"testing"
	"time"

	"timeledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartBreakRequiresOpenEntry(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	breaks := newBreaks(db)
	worker := newWorker(t, db, "alice", 20.0)

	date := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	settled, err := tracker.CreateManualEntry(context.Background(), worker.ID, nil, date, 8, "", testProvenance(worker.ID))
	require.NoError(t, err)

	_, err = breaks.StartBreak(context.Background(), settled.ID, models.BreakShort, false, testProvenance(worker.ID))
	require.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = breaks.StartBreak(context.Background(), 9999, models.BreakShort, false, testProvenance(worker.ID))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSingleOpenBreakPerEntry(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	breaks := newBreaks(db)
	worker := newWorker(t, db, "alice", 20.0)

	entry, err := tracker.ClockIn(context.Background(), worker.ID, nil, "", testProvenance(worker.ID))
	require.NoError(t, err)

	first, err := breaks.StartBreak(context.Background(), entry.ID, models.BreakMeal, false, testProvenance(worker.ID))
	require.NoError(t, err)

	_, err = breaks.StartBreak(context.Background(), entry.ID, models.BreakShort, false, testProvenance(worker.ID))
	require.ErrorIs(t, err, ErrBreakAlreadyOpen)

	_, err = breaks.EndBreak(context.Background(), first.ID, testProvenance(worker.ID))
	require.NoError(t, err)

	// A new break may start once the previous one is closed.
	second, err := breaks.StartBreak(context.Background(), entry.ID, models.BreakShort, false, testProvenance(worker.ID))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPaidBreakStoredAsNotDeducted(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	breaks := newBreaks(db)
	worker := newWorker(t, db, "alice", 20.0)

	entry, err := tracker.ClockIn(context.Background(), worker.ID, nil, "", testProvenance(worker.ID))
	require.NoError(t, err)

	paid, err := breaks.StartBreak(context.Background(), entry.ID, models.BreakShort, true, testProvenance(worker.ID))
	require.NoError(t, err)

	// Re-read from the store: the persisted row must carry the flags as
	// written, not column defaults.
	var stored models.Break
	require.NoError(t, db.First(&stored, paid.ID).Error)
	assert.True(t, stored.IsPaid)
	assert.False(t, stored.IsDeducted)

	_, err = breaks.EndBreak(context.Background(), paid.ID, testProvenance(worker.ID))
	require.NoError(t, err)

	unpaid, err := breaks.StartBreak(context.Background(), entry.ID, models.BreakMeal, false, testProvenance(worker.ID))
	require.NoError(t, err)
	stored = models.Break{}
	require.NoError(t, db.First(&stored, unpaid.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.True(t, stored.IsDeducted)
}

func TestEndBreakErrors(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	breaks := newBreaks(db)
	worker := newWorker(t, db, "alice", 20.0)

	entry, err := tracker.ClockIn(context.Background(), worker.ID, nil, "", testProvenance(worker.ID))
	require.NoError(t, err)

	_, err = breaks.EndBreak(context.Background(), 12345, testProvenance(worker.ID))
	require.ErrorIs(t, err, ErrNoOpenBreak)

	brk, err := breaks.StartBreak(context.Background(), entry.ID, models.BreakMeal, false, testProvenance(worker.ID))
	require.NoError(t, err)
	_, err = breaks.EndBreak(context.Background(), brk.ID, testProvenance(worker.ID))
	require.NoError(t, err)

	// Ending an already closed break fails.
	_, err = breaks.EndBreak(context.Background(), brk.ID, testProvenance(worker.ID))
	require.ErrorIs(t, err, ErrNoOpenBreak)
}

func TestBreakAuditRows(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	breaks := newBreaks(db)
	worker := newWorker(t, db, "alice", 20.0)

	entry, err := tracker.ClockIn(context.Background(), worker.ID, nil, "", testProvenance(worker.ID))
	require.NoError(t, err)

	brk, err := breaks.StartBreak(context.Background(), entry.ID, models.BreakMeal, false, testProvenance(worker.ID))
	require.NoError(t, err)
	_, err = breaks.EndBreak(context.Background(), brk.ID, testProvenance(worker.ID))
	require.NoError(t, err)

	rows := auditRows(t, db, entry.ID)
	require.Len(t, rows, 3)
	assert.Equal(t, models.ActionClockIn, rows[0].Action)
	assert.Equal(t, models.ActionBreakStart, rows[1].Action)
	assert.Equal(t, models.ActionBreakEnd, rows[2].Action)
}
