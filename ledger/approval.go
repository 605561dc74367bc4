package ledger

import (
	"context"
	"strings"
	"time"

	"timeledger/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApprovalService is the entry state machine:
//
//	ACTIVE -(clock-out)-> COMPLETED -> SUBMITTED -> APPROVED -> PAID
//	                                      |  ^
//	                                      v  | (resubmit after edits)
//	                                   REJECTED
//
// Each transition commits atomically with its audit row. Whether the
// actor may approve is an external role check done by the caller.
type ApprovalService struct {
	db       *gorm.DB
	splitter *PaySplitter
	audit    *AuditRecorder
	events   Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewApprovalService(db *gorm.DB, splitter *PaySplitter, audit *AuditRecorder, events Publisher, log *zap.Logger) *ApprovalService {
	return &ApprovalService{
		db:       db,
		splitter: splitter,
		audit:    audit,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// Submit moves a settled entry into the approval queue. Rejected entries
// may be resubmitted. An open shift cannot be submitted.
func (s *ApprovalService) Submit(ctx context.Context, entryID uint, p Provenance) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}
		switch entry.Status {
		case models.StatusApproved, models.StatusPaid:
			return ErrAlreadyApproved
		case models.StatusActive:
			return ErrInvalidStateTransition
		}
		if entry.IsOpen() {
			return ErrInvalidStateTransition
		}
		before := EntrySnapshot(&entry)

		now := s.now()
		entry.Status = models.StatusSubmitted
		entry.SubmittedAt = &now
		entry.SubmittedBy = &p.ActorID
		if err := tx.Save(&entry).Error; err != nil {
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionSubmit,
			before, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Approve finalizes a submitted entry. The bucket sum invariant is
// re-verified before commit; a failure is a splitter defect and blocks
// the approval instead of silently approving incorrect pay.
func (s *ApprovalService) Approve(ctx context.Context, entryID uint, p Provenance) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}
		switch entry.Status {
		case models.StatusApproved, models.StatusPaid:
			return ErrAlreadyApproved
		case models.StatusSubmitted:
		default:
			return ErrInvalidStateTransition
		}

		if err := s.splitter.CheckTotals(&entry); err != nil {
			s.log.Error("bucket sum invariant violated, blocking approval",
				zap.Uint("entry_id", entry.ID),
				zap.Float64("total_hours", entry.TotalHours),
				zap.Float64("regular_hours", entry.RegularHours),
				zap.Float64("overtime_hours", entry.OvertimeHours),
				zap.Float64("double_time_hours", entry.DoubleTimeHours),
			)
			return err
		}
		before := EntrySnapshot(&entry)

		now := s.now()
		entry.Status = models.StatusApproved
		entry.ApprovedAt = &now
		entry.ApprovedBy = &p.ActorID
		if err := tx.Save(&entry).Error; err != nil {
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionApprove,
			before, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EntryEvent{
		Type:        EventEntryApproved,
		TimeEntryID: entry.ID,
		WorkerID:    entry.WorkerID,
		JobID:       entry.JobID,
		Date:        entry.StartTime,
		Hours:       entry.TotalHours,
	})
	return &entry, nil
}

// Reject returns a submitted entry to the worker. The reason is
// mandatory and becomes the first note in the rejection thread.
func (s *ApprovalService) Reject(ctx context.Context, entryID uint, reason string, p Provenance) (*models.TimeEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}
		switch entry.Status {
		case models.StatusApproved, models.StatusPaid:
			return ErrAlreadyApproved
		case models.StatusSubmitted:
		default:
			return ErrInvalidStateTransition
		}
		before := EntrySnapshot(&entry)

		entry.Status = models.StatusRejected
		entry.HasRejectionNotes = true
		if err := tx.Save(&entry).Error; err != nil {
			return storageErr(err)
		}

		note := models.RejectionNote{
			TimeEntryID: entry.ID,
			AuthorID:    p.ActorID,
			Body:        reason,
		}
		if err := tx.Create(&note).Error; err != nil {
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionReject,
			before, EntrySnapshot(&entry), p, reason)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EntryEvent{
		Type:        EventEntryRejected,
		TimeEntryID: entry.ID,
		WorkerID:    entry.WorkerID,
		JobID:       entry.JobID,
		Date:        entry.StartTime,
		Hours:       entry.TotalHours,
		Reason:      reason,
	})
	return &entry, nil
}

// AddNote appends to the rejection thread without changing entry state.
func (s *ApprovalService) AddNote(ctx context.Context, entryID uint, body string, p Provenance) (*models.RejectionNote, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrReasonRequired
	}

	var note models.RejectionNote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.TimeEntry
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}

		note = models.RejectionNote{
			TimeEntryID: entry.ID,
			AuthorID:    p.ActorID,
			Body:        body,
		}
		if err := tx.Create(&note).Error; err != nil {
			return storageErr(err)
		}
		if !entry.HasRejectionNotes {
			if err := tx.Model(&entry).Update("has_rejection_notes", true).Error; err != nil {
				return storageErr(err)
			}
		}

		return s.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionNote,
			EntrySnapshot(&entry), EntrySnapshot(&entry), p, body)
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// MarkPaid records the external payroll export having picked up an
// approved entry. PAID is append-only from this core's point of view.
func (s *ApprovalService) MarkPaid(ctx context.Context, entryID uint, p Provenance) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			return storageErr(err)
		}
		if entry.Status != models.StatusApproved {
			return ErrInvalidStateTransition
		}
		before := EntrySnapshot(&entry)

		entry.Status = models.StatusPaid
		if err := tx.Save(&entry).Error; err != nil {
			return storageErr(err)
		}

		return s.audit.Record(tx, entry.ID, entry.WorkerID, models.ActionMarkPaid,
			before, EntrySnapshot(&entry), p, "")
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
