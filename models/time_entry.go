package models

import (
	"time"
)

type EntryStatus string

const (
	StatusActive    EntryStatus = "ACTIVE"
	StatusCompleted EntryStatus = "COMPLETED"
	StatusSubmitted EntryStatus = "SUBMITTED"
	StatusApproved  EntryStatus = "APPROVED"
	StatusRejected  EntryStatus = "REJECTED"
	StatusPaid      EntryStatus = "PAID"
)

// TimeEntry is one worked period for one worker. Entries are never
// physically deleted; terminal states are PAID or REJECTED left unamended.
// At most one entry per worker may have a null EndTime at any instant,
// enforced by a partial unique index in the store.
type TimeEntry struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	WorkerID        uint        `gorm:"not null;index" json:"worker_id"`
	Worker          User        `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	JobID           *uint       `gorm:"index" json:"job_id"`
	Job             *Job        `gorm:"foreignKey:JobID" json:"job,omitempty"`
	StartTime       time.Time   `gorm:"not null" json:"start_time"`
	EndTime         *time.Time  `json:"end_time"`
	TotalHours      float64     `gorm:"not null;default:0" json:"total_hours"`
	RegularHours    float64     `gorm:"not null;default:0" json:"regular_hours"`
	OvertimeHours   float64     `gorm:"not null;default:0" json:"overtime_hours"`
	DoubleTimeHours float64     `gorm:"not null;default:0" json:"double_time_hours"`
	AppliedRate     float64     `gorm:"not null;default:0" json:"applied_rate"`
	TotalPay        float64     `gorm:"not null;default:0" json:"total_pay"`
	Status          EntryStatus `gorm:"not null;size:20;index" json:"status"`
	Description     string      `gorm:"size:500" json:"description"`
	// Locations are opaque coordinates from the capture collaborator.
	ClockInLocation   string          `gorm:"size:200" json:"clock_in_location,omitempty"`
	ClockOutLocation  string          `gorm:"size:200" json:"clock_out_location,omitempty"`
	SubmittedAt       *time.Time      `json:"submitted_at"`
	SubmittedBy       *uint           `json:"submitted_by"`
	ApprovedAt        *time.Time      `json:"approved_at"`
	ApprovedBy        *uint           `json:"approved_by"`
	HasRejectionNotes bool            `gorm:"default:false" json:"has_rejection_notes"`
	Breaks            []Break         `gorm:"foreignKey:TimeEntryID" json:"breaks,omitempty"`
	RejectionNotes    []RejectionNote `gorm:"foreignKey:TimeEntryID" json:"rejection_notes,omitempty"`
}

func (e *TimeEntry) IsOpen() bool {
	return e.EndTime == nil
}

type EntryFilter struct {
	WorkerID uint
	Status   EntryStatus
	From     *time.Time
	To       *time.Time
	Limit    int
}
