package models

import "time"

// TaskDependency is the edge "TaskID depends on DependsOnID". ProjectID is
// denormalized so a project's whole graph loads in one query.
type TaskDependency struct {
	TaskID      uint64    `gorm:"primarykey;autoIncrement:false" json:"task_id"`
	DependsOnID uint64    `gorm:"primarykey;autoIncrement:false" json:"depends_on_id"`
	ProjectID   uint64    `gorm:"not null" json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
}
