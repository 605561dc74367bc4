package ledger

import (
	"encoding/json"
	"time"

	"timeledger/models"

	"gorm.io/gorm"
)

// Provenance identifies the actor and request behind a mutation. Handlers
// build it from the authenticated principal and the HTTP request.
type Provenance struct {
	ActorID   uint
	IPAddress string
	UserAgent string
	RequestID string
}

// FieldChange is one changed field in an audit diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// AuditRecorder appends immutable before/after rows for every mutation.
// Record must be called on the same transaction handle as the mutation it
// describes so both commit atomically or neither does.
type AuditRecorder struct{}

func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{}
}

// Record diffs the two snapshots and appends one audit row. Only changed
// fields are stored, to bound record size. A nil before snapshot marks a
// creation; a nil after snapshot is not used (rows are never deleted).
func (a *AuditRecorder) Record(tx *gorm.DB, entryID, workerID uint, action models.AuditAction, before, after map[string]any, p Provenance, reason string) error {
	changes, err := json.Marshal(DiffSnapshots(before, after))
	if err != nil {
		return storageErr(err)
	}

	row := models.AuditRecord{
		TimeEntryID:  entryID,
		WorkerID:     workerID,
		Action:       action,
		Changes:      string(changes),
		ActingUserID: p.ActorID,
		Reason:       reason,
		IPAddress:    p.IPAddress,
		UserAgent:    p.UserAgent,
		RequestID:    p.RequestID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

type AuditFilter struct {
	EntryID  uint
	WorkerID uint
	ActorID  uint
	Action   models.AuditAction
	From     *time.Time
	To       *time.Time
	Limit    int
}

// QueryTrail returns audit rows matching the filter, newest first.
func (a *AuditRecorder) QueryTrail(db *gorm.DB, f AuditFilter) ([]models.AuditRecord, error) {
	query := db.Model(&models.AuditRecord{})
	if f.EntryID > 0 {
		query = query.Where("time_entry_id = ?", f.EntryID)
	}
	if f.WorkerID > 0 {
		query = query.Where("worker_id = ?", f.WorkerID)
	}
	if f.ActorID > 0 {
		query = query.Where("acting_user_id = ?", f.ActorID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var rows []models.AuditRecord
	err := query.Order("created_at desc").Order("id desc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return rows, nil
}

// EntrySnapshot captures the auditable fields of an entry.
func EntrySnapshot(e *models.TimeEntry) map[string]any {
	if e == nil {
		return nil
	}
	snap := map[string]any{
		"status":            string(e.Status),
		"start_time":        e.StartTime.UTC().Format(time.RFC3339),
		"end_time":          nil,
		"total_hours":       e.TotalHours,
		"regular_hours":     e.RegularHours,
		"overtime_hours":    e.OvertimeHours,
		"double_time_hours": e.DoubleTimeHours,
		"applied_rate":      e.AppliedRate,
		"total_pay":         e.TotalPay,
		"description":       e.Description,
	}
	if e.EndTime != nil {
		snap["end_time"] = e.EndTime.UTC().Format(time.RFC3339)
	}
	if e.JobID != nil {
		snap["job_id"] = *e.JobID
	}
	if e.SubmittedBy != nil {
		snap["submitted_by"] = *e.SubmittedBy
	}
	if e.ApprovedBy != nil {
		snap["approved_by"] = *e.ApprovedBy
	}
	return snap
}

// DiffSnapshots returns the fields that differ between before and after.
// For creations (nil before) every after field is reported as a change
// from nil.
func DiffSnapshots(before, after map[string]any) map[string]FieldChange {
	diff := make(map[string]FieldChange)
	for key, afterVal := range after {
		beforeVal, ok := before[key]
		if !ok || beforeVal != afterVal {
			diff[key] = FieldChange{From: beforeVal, To: afterVal}
		}
	}
	for key, beforeVal := range before {
		if _, ok := after[key]; !ok {
			diff[key] = FieldChange{From: beforeVal, To: nil}
		}
	}
	return diff
}
