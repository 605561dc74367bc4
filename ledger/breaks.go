package ledger

import (
	"context"
	"errors"
	"time"

	"timeledger/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BreakLedger records break intervals against an open entry. A single
// open break per entry is enforced by a partial unique index, the same
// way the single-open-shift invariant is.
type BreakLedger struct {
	db    *gorm.DB
	audit *AuditRecorder
	log   *zap.Logger
	now   func() time.Time
}

func NewBreakLedger(db *gorm.DB, audit *AuditRecorder, log *zap.Logger) *BreakLedger {
	return &BreakLedger{db: db, audit: audit, log: log, now: time.Now}
}

// StartBreak opens a break on an open entry. Unpaid breaks are deducted
// from worked time at settlement; paid breaks are tracked only.
func (l *BreakLedger) StartBreak(ctx context.Context, entryID uint, breakType models.BreakType, isPaid bool, p Provenance) (*models.Break, error) {
	var brk models.Break
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.TimeEntry
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}
		if !entry.IsOpen() {
			return ErrInvalidStateTransition
		}

		var open int64
		if err := tx.Model(&models.Break{}).
			Where("time_entry_id = ? AND end_time IS NULL", entryID).
			Count(&open).Error; err != nil {
			return storageErr(err)
		}
		if open > 0 {
			return ErrBreakAlreadyOpen
		}

		brk = models.Break{
			TimeEntryID: entryID,
			Type:        breakType,
			StartTime:   l.now(),
			IsPaid:      isPaid,
			IsDeducted:  !isPaid,
		}
		if err := tx.Create(&brk).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrBreakAlreadyOpen
			}
			return storageErr(err)
		}

		return l.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionBreakStart,
			EntrySnapshot(&entry), EntrySnapshot(&entry), p, string(breakType))
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("break started",
		zap.Uint("entry_id", entryID),
		zap.Uint("break_id", brk.ID),
		zap.String("type", string(breakType)),
		zap.Bool("is_paid", isPaid),
	)
	return &brk, nil
}

// GetBreak loads a break with its parent entry.
func (l *BreakLedger) GetBreak(ctx context.Context, breakID uint) (*models.Break, error) {
	var brk models.Break
	if err := l.db.WithContext(ctx).Preload("TimeEntry").First(&brk, breakID).Error; err != nil {
		return nil, storageErr(err)
	}
	return &brk, nil
}

// EndBreak closes an open break. Fails with ErrNoOpenBreak if the break
// does not exist or is already closed.
func (l *BreakLedger) EndBreak(ctx context.Context, breakID uint, p Provenance) (*models.Break, error) {
	var brk models.Break
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&brk, breakID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoOpenBreak
		}
		if err != nil {
			return storageErr(err)
		}

		end := l.now()
		res := tx.Model(&models.Break{}).
			Where("id = ? AND end_time IS NULL", breakID).
			Update("end_time", end)
		if res.Error != nil {
			return storageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoOpenBreak
		}
		brk.EndTime = &end

		var entry models.TimeEntry
		if err := tx.First(&entry, brk.TimeEntryID).Error; err != nil {
			return storageErr(err)
		}
		return l.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionBreakEnd,
			EntrySnapshot(&entry), EntrySnapshot(&entry), p, string(brk.Type))
	})
	if err != nil {
		return nil, err
	}
	return &brk, nil
}
