package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyOvertimeForecast(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	worker := newWorker(t, db, "alice", 20.0)

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

	// Five settled 9-hour days: 45h total for the week.
	for day := 0; day < 5; day++ {
		_, err := tracker.CreateManualEntry(context.Background(), worker.ID, nil,
			weekStart.AddDate(0, 0, day), 9, "", testProvenance(worker.ID))
		require.NoError(t, err)
	}
	// An entry outside the window must not count.
	_, err := tracker.CreateManualEntry(context.Background(), worker.ID, nil,
		weekStart.AddDate(0, 0, 8), 9, "", testProvenance(worker.ID))
	require.NoError(t, err)

	forecast, err := WeeklyOvertimeForecast(db, worker.ID, weekStart)
	require.NoError(t, err)

	assert.Equal(t, 5, forecast.EntryCount)
	assert.InDelta(t, 45.0, forecast.TotalHours, 0.001)
	assert.InDelta(t, 40.0, forecast.RegularHours, 0.001)
	assert.InDelta(t, 5.0, forecast.OvertimeHours, 0.001)
	assert.InDelta(t, 0.0, forecast.DoubleTimeHours, 0.001)
}

func TestWeeklyOvertimeForecastDoubleTime(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	worker := newWorker(t, db, "alice", 20.0)

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		_, err := tracker.CreateManualEntry(context.Background(), worker.ID, nil,
			weekStart.AddDate(0, 0, day), 10, "", testProvenance(worker.ID))
		require.NoError(t, err)
	}

	forecast, err := WeeklyOvertimeForecast(db, worker.ID, weekStart)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, forecast.TotalHours, 0.001)
	assert.InDelta(t, 40.0, forecast.RegularHours, 0.001)
	assert.InDelta(t, 20.0, forecast.OvertimeHours, 0.001)
	assert.InDelta(t, 10.0, forecast.DoubleTimeHours, 0.001)
}

func TestWeeklyOvertimeForecastIgnoresOpenShifts(t *testing.T) {
	db := newTestDB(t)
	tracker := newTracker(db)
	worker := newWorker(t, db, "alice", 20.0)

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	clock := &fixedClock{t: weekStart.Add(8 * time.Hour)}
	tracker.now = clock.now
	_, err := tracker.ClockIn(context.Background(), worker.ID, nil, "", testProvenance(worker.ID))
	require.NoError(t, err)

	forecast, err := WeeklyOvertimeForecast(db, worker.ID, weekStart)
	require.NoError(t, err)
	assert.Equal(t, 0, forecast.EntryCount)
	assert.Zero(t, forecast.TotalHours)
}
