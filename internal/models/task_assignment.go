package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskAssignment links a user to a task. Unassigning soft deletes the row;
// assigning again restores it and counts as a new assignment.
type TaskAssignment struct {
	TaskID    uint64         `gorm:"primarykey;autoIncrement:false" json:"task_id"`
	UserID    uint64         `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time      `json:"assigned_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
