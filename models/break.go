package models

import (
	"time"
)

type BreakType string

const (
	BreakMeal     BreakType = "MEAL"
	BreakShort    BreakType = "SHORT"
	BreakPersonal BreakType = "PERSONAL"
)

// Break is owned by exactly one TimeEntry. A TimeEntry may have at most
// one break with a null EndTime, enforced by a partial unique index.
// Unpaid breaks are deducted from worked time at clock-out; paid breaks
// are tracked for reporting only.
type Break struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	TimeEntryID uint       `gorm:"not null;index" json:"time_entry_id"`
	TimeEntry   *TimeEntry `gorm:"foreignKey:TimeEntryID" json:"-"`
	Type        BreakType  `gorm:"not null;size:20" json:"type"`
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	IsPaid      bool       `json:"is_paid"`
	IsDeducted  bool       `json:"is_deducted"`
}

func (b *Break) IsOpen() bool {
	return b.EndTime == nil
}

// Minutes returns the break length, treating an open break as ending at
// fallbackEnd (clock-out closes trailing breaks this way).
func (b *Break) Minutes(fallbackEnd time.Time) int {
	end := fallbackEnd
	if b.EndTime != nil {
		end = *b.EndTime
	}
	d := end.Sub(b.StartTime)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
