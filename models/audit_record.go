package models

import (
	"time"
)

type AuditAction string

const (
	ActionClockIn      AuditAction = "CLOCK_IN"
	ActionClockOut     AuditAction = "CLOCK_OUT"
	ActionManualCreate AuditAction = "MANUAL_CREATE"
	ActionAmend        AuditAction = "AMEND"
	ActionBreakStart   AuditAction = "BREAK_START"
	ActionBreakEnd     AuditAction = "BREAK_END"
	ActionSubmit       AuditAction = "SUBMIT"
	ActionApprove      AuditAction = "APPROVE"
	ActionReject       AuditAction = "REJECT"
	ActionNote         AuditAction = "NOTE"
	ActionMarkPaid     AuditAction = "MARK_PAID"
)

// AuditRecord is one immutable log row describing a state-changing
// operation on a TimeEntry. Changes holds the field-level before/after
// diff as JSON; only changed fields are stored. Rows are appended in the
// same transaction as the mutation they describe and never updated or
// deleted.
type AuditRecord struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	TimeEntryID  uint        `gorm:"not null;index" json:"time_entry_id"`
	WorkerID     uint        `gorm:"not null;index" json:"worker_id"`
	Action       AuditAction `gorm:"not null;size:20;index" json:"action"`
	Changes      string      `gorm:"type:text" json:"changes"`
	ActingUserID uint        `gorm:"not null;index" json:"acting_user_id"`
	Reason       string      `gorm:"size:500" json:"reason,omitempty"`
	IPAddress    string      `gorm:"size:45" json:"ip_address"`
	UserAgent    string      `gorm:"size:500" json:"user_agent"`
	RequestID    string      `gorm:"size:36" json:"request_id"`
}
