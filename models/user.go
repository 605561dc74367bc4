package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleApprover Role = "APPROVER"
	RoleWorker   Role = "WORKER"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Username           string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName           string         `gorm:"not null;size:200" json:"full_name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               Role           `gorm:"not null;size:20" json:"role"`
	DefaultRate        float64        `gorm:"not null;default:0" json:"default_rate"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
	TimeEntries        []TimeEntry    `gorm:"foreignKey:WorkerID" json:"time_entries,omitempty"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsApprover() bool {
	return u.Role == RoleApprover
}

func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}

// CanApprove reports whether the user holds the approver capability.
// The ledger core treats this as an external role check; handlers call
// it before invoking approve/reject.
func (u *User) CanApprove() bool {
	return u.IsAdmin() || u.IsApprover()
}

func (u *User) CanViewAllEntries() bool {
	return u.IsAdmin() || u.IsApprover()
}

func (u *User) CanManageEntriesFor(workerID uint) bool {
	if u.IsAdmin() {
		return true
	}
	return u.ID == workerID
}

func (u *User) CanManageOverrides() bool {
	return u.IsAdmin()
}
