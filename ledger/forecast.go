package ledger

import (
	"time"

	"timeledger/models"

	"gorm.io/gorm"
)

// Weekly thresholds used only for forward-looking forecasting. Settlement
// always uses the daily policy in Split; the forecast sums already-settled
// entries instead of re-deriving from raw minutes, so daily overtime is
// never double counted.
const (
	weeklyRegularLimitHours  = 40.0
	weeklyOvertimeLimitHours = 60.0
)

type WeeklyForecast struct {
	WorkerID        uint      `json:"worker_id"`
	WeekStart       time.Time `json:"week_start"`
	TotalHours      float64   `json:"total_hours"`
	RegularHours    float64   `json:"regular_hours"`
	OvertimeHours   float64   `json:"overtime_hours"`
	DoubleTimeHours float64   `json:"double_time_hours"`
	EntryCount      int       `json:"entry_count"`
}

// WeeklyOvertimeForecast buckets a worker's settled hours for the week
// starting at weekStart under the 40/60 weekly thresholds. Read-only and
// advisory; it never feeds back into pay.
func WeeklyOvertimeForecast(db *gorm.DB, workerID uint, weekStart time.Time) (WeeklyForecast, error) {
	weekEnd := weekStart.AddDate(0, 0, 7)

	var entries []models.TimeEntry
	err := db.Where("worker_id = ? AND end_time IS NOT NULL", workerID).
		Where("start_time >= ? AND start_time < ?", weekStart, weekEnd).
		Find(&entries).Error
	if err != nil {
		return WeeklyForecast{}, storageErr(err)
	}

	f := WeeklyForecast{WorkerID: workerID, WeekStart: weekStart, EntryCount: len(entries)}
	for _, e := range entries {
		f.TotalHours += e.TotalHours
	}

	f.RegularHours = f.TotalHours
	if f.RegularHours > weeklyRegularLimitHours {
		f.RegularHours = weeklyRegularLimitHours
	}
	if f.TotalHours > weeklyRegularLimitHours {
		f.OvertimeHours = f.TotalHours - weeklyRegularLimitHours
		if f.OvertimeHours > weeklyOvertimeLimitHours-weeklyRegularLimitHours {
			f.OvertimeHours = weeklyOvertimeLimitHours - weeklyRegularLimitHours
		}
	}
	if f.TotalHours > weeklyOvertimeLimitHours {
		f.DoubleTimeHours = f.TotalHours - weeklyOvertimeLimitHours
	}
	return f, nil
}
