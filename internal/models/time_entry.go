package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrInvalidTimeRange = errors.New("end time must not be before start time")

type TimeEntry struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	TaskID      uint64        `gorm:"not null" json:"task_id"`
	UserID      uint64        `gorm:"not null;index" json:"user_id"`
	Description string        `gorm:"type:text" json:"description"`
	StartTime   time.Time     `gorm:"not null" json:"start_time"`
	EndTime     *time.Time    `json:"end_time"`
	Duration    time.Duration `gorm:"not null;default:0" json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RecomputeDuration derives Duration from the endpoints. Duration is only
// free-standing while the entry is still running.
func (e *TimeEntry) RecomputeDuration() error {
	if e.EndTime == nil || e.StartTime.IsZero() {
		return nil
	}
	if e.EndTime.Before(e.StartTime) {
		return ErrInvalidTimeRange
	}
	e.Duration = e.EndTime.Sub(e.StartTime)
	return nil
}

// BeforeSave runs on every create and save.
func (e *TimeEntry) BeforeSave(tx *gorm.DB) error {
	return e.RecomputeDuration()
}

// Running reports whether the timer has not been stopped yet.
func (e TimeEntry) Running() bool {
	return e.EndTime == nil
}
