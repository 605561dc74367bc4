package models

import (
	"time"
)

// RejectionNote is one message in the append-only commentary thread on a
// TimeEntry, authored by the rejecting approver or the worker responding.
type RejectionNote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	TimeEntryID uint      `gorm:"not null;index" json:"time_entry_id"`
	AuthorID    uint      `gorm:"not null" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body        string    `gorm:"not null;size:1000" json:"body"`
}
