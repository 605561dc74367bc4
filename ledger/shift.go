package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"timeledger/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShiftTracker owns the clock-in/clock-out lifecycle. Every mutation runs
// in a single transaction together with its audit row; the single-open-
// shift invariant is enforced by a partial unique index in the store, not
// by the read-then-write check alone.
type ShiftTracker struct {
	db       *gorm.DB
	rates    *RateResolver
	splitter *PaySplitter
	audit    *AuditRecorder
	log      *zap.Logger
	now      func() time.Time
}

func NewShiftTracker(db *gorm.DB, rates *RateResolver, splitter *PaySplitter, audit *AuditRecorder, log *zap.Logger) *ShiftTracker {
	return &ShiftTracker{
		db:       db,
		rates:    rates,
		splitter: splitter,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// ClockIn opens a shift for the worker. The effective rate is resolved
// now and frozen on the entry; later rate changes do not touch an
// in-progress shift. Fails with ErrAlreadyClockedIn if the worker already
// has an open entry, including when two clock-ins race: the loser hits
// the unique index and is translated here.
func (s *ShiftTracker) ClockIn(ctx context.Context, workerID uint, jobID *uint, location string, p Provenance) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.TimeEntry{}).
			Where("worker_id = ? AND end_time IS NULL", workerID).
			Count(&open).Error; err != nil {
			return storageErr(err)
		}
		if open > 0 {
			return ErrAlreadyClockedIn
		}

		if jobID != nil {
			var job models.Job
			if err := tx.First(&job, *jobID).Error; err != nil {
				return storageErr(err)
			}
		}

		entry = models.TimeEntry{
			WorkerID:        workerID,
			JobID:           jobID,
			StartTime:       s.now(),
			Status:          models.StatusActive,
			AppliedRate:     s.rates.Resolve(tx, workerID, jobID),
			ClockInLocation: location,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyClockedIn
			}
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, workerID, models.ActionClockIn,
			nil, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shift opened",
		zap.Uint("worker_id", workerID),
		zap.Uint("entry_id", entry.ID),
		zap.Float64("applied_rate", entry.AppliedRate),
	)
	return &entry, nil
}

// ClockOut settles the worker's open shift: closes any trailing open
// break at the clock-out instant, subtracts deducted break minutes, and
// freezes the regular/overtime/double-time buckets and pay.
func (s *ShiftTracker) ClockOut(ctx context.Context, workerID uint, location, description string, p Provenance) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("worker_id = ? AND end_time IS NULL", workerID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveShift
		}
		if err != nil {
			return storageErr(err)
		}
		before := EntrySnapshot(&entry)

		end := s.now()

		var breaks []models.Break
		if err := tx.Where("time_entry_id = ?", entry.ID).Find(&breaks).Error; err != nil {
			return storageErr(err)
		}
		deductedMinutes := 0
		for i := range breaks {
			b := &breaks[i]
			if b.IsOpen() {
				closed := end
				b.EndTime = &closed
				if err := tx.Model(b).Update("end_time", end).Error; err != nil {
					return storageErr(err)
				}
			}
			if b.IsDeducted {
				deductedMinutes += b.Minutes(end)
			}
		}

		grossMinutes := int(end.Sub(entry.StartTime) / time.Minute)
		netMinutes := grossMinutes - deductedMinutes
		if netMinutes < 0 {
			netMinutes = 0
		}
		split := s.splitter.Split(netMinutes, entry.AppliedRate)

		entry.EndTime = &end
		entry.Status = models.StatusCompleted
		entry.TotalHours = split.TotalHours
		entry.RegularHours = split.RegularHours
		entry.OvertimeHours = split.OvertimeHours
		entry.DoubleTimeHours = split.DoubleTimeHours
		entry.TotalPay = split.TotalPay
		entry.ClockOutLocation = location
		if description != "" {
			entry.Description = description
		}

		// Guard on end_time IS NULL so a racing clock-out on another
		// replica loses cleanly instead of double-settling.
		res := tx.Model(&models.TimeEntry{}).
			Where("id = ? AND end_time IS NULL", entry.ID).
			Updates(map[string]any{
				"end_time":           entry.EndTime,
				"status":             entry.Status,
				"total_hours":        entry.TotalHours,
				"regular_hours":      entry.RegularHours,
				"overtime_hours":     entry.OvertimeHours,
				"double_time_hours":  entry.DoubleTimeHours,
				"total_pay":          entry.TotalPay,
				"clock_out_location": entry.ClockOutLocation,
				"description":        entry.Description,
			})
		if res.Error != nil {
			return storageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoActiveShift
		}

		return s.audit.Record(tx, entry.ID, workerID, models.ActionClockOut,
			before, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shift settled",
		zap.Uint("worker_id", workerID),
		zap.Uint("entry_id", entry.ID),
		zap.Float64("total_hours", entry.TotalHours),
		zap.Float64("total_pay", entry.TotalPay),
	)
	return &entry, nil
}

// CreateManualEntry records retroactively entered time. The entry is
// settled immediately, so the single-open-shift invariant does not apply.
func (s *ShiftTracker) CreateManualEntry(ctx context.Context, workerID uint, jobID *uint, date time.Time, hours float64, description string, p Provenance) (*models.TimeEntry, error) {
	if hours <= 0 || hours > 24 {
		return nil, ErrInvalidHours
	}

	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if jobID != nil {
			var job models.Job
			if err := tx.First(&job, *jobID).Error; err != nil {
				return storageErr(err)
			}
		}

		minutes := int(hours * 60)
		rate := s.rates.Resolve(tx, workerID, jobID)
		split := s.splitter.Split(minutes, rate)

		end := date.Add(time.Duration(minutes) * time.Minute)
		entry = models.TimeEntry{
			WorkerID:        workerID,
			JobID:           jobID,
			StartTime:       date,
			EndTime:         &end,
			Status:          models.StatusCompleted,
			AppliedRate:     rate,
			TotalHours:      split.TotalHours,
			RegularHours:    split.RegularHours,
			OvertimeHours:   split.OvertimeHours,
			DoubleTimeHours: split.DoubleTimeHours,
			TotalPay:        split.TotalPay,
			Description:     description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, workerID, models.ActionManualCreate,
			nil, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// AmendRejected lets a worker correct hours or description on a rejected
// entry before resubmitting. The split is recomputed with the frozen rate.
func (s *ShiftTracker) AmendRejected(ctx context.Context, entryID uint, hours float64, description string, p Provenance) (*models.TimeEntry, error) {
	if hours <= 0 || hours > 24 {
		return nil, ErrInvalidHours
	}

	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}
		if entry.Status != models.StatusRejected {
			return ErrInvalidStateTransition
		}
		before := EntrySnapshot(&entry)

		split := s.splitter.Split(int(hours*60), entry.AppliedRate)
		entry.TotalHours = split.TotalHours
		entry.RegularHours = split.RegularHours
		entry.OvertimeHours = split.OvertimeHours
		entry.DoubleTimeHours = split.DoubleTimeHours
		entry.TotalPay = split.TotalPay
		if description != "" {
			entry.Description = description
		}
		if err := tx.Save(&entry).Error; err != nil {
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionAmend,
			before, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntry loads one entry with its breaks and rejection notes.
func (s *ShiftTracker) GetEntry(ctx context.Context, entryID uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).
		Preload("Breaks").Preload("RejectionNotes").
		First(&entry, entryID).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return &entry, nil
}

// ListEntries returns entries matching the filter, newest first.
func (s *ShiftTracker) ListEntries(ctx context.Context, f models.EntryFilter) ([]models.TimeEntry, error) {
	query := s.db.WithContext(ctx).Model(&models.TimeEntry{})
	if f.WorkerID > 0 {
		query = query.Where("worker_id = ?", f.WorkerID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.From != nil {
		query = query.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("start_time < ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var entries []models.TimeEntry
	if err := query.Order("start_time desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, storageErr(err)
	}
	return entries, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The sqlite test driver does not translate constraint errors.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
