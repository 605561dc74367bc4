package models

import (
	"time"

	"gorm.io/gorm"
)

// RateOverride binds a (job, worker) pair to an hourly rate that takes
// precedence over the worker's default rate. Rows are managed by admin
// action and read-only to the ledger.
type RateOverride struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	JobID     uint           `gorm:"not null;index:idx_override_job_worker" json:"job_id"`
	Job       *Job           `gorm:"foreignKey:JobID" json:"job,omitempty"`
	WorkerID  uint           `gorm:"not null;index:idx_override_job_worker" json:"worker_id"`
	Worker    *User          `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Rate      float64        `gorm:"not null" json:"rate"`
	Active    bool           `gorm:"default:true" json:"active"`
}
