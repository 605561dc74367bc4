package models

import (
	"time"
)

// Job is a local projection of the external job catalog. The ledger only
// needs existence and a display name; everything else about jobs lives in
// the catalog service.
type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Active    bool      `gorm:"default:true" json:"active"`
}
