package dto

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
)

// CommentDTO represents a task comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	TaskID    uint64    `json:"task_id"`
	Author    UserDTO   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeEntryDTO represents a time entry in API responses
type TimeEntryDTO struct {
	ID              uint64     `json:"id"`
	TaskID          uint64     `json:"task_id"`
	UserID          uint64     `json:"user_id"`
	Description     string     `json:"description"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int64      `json:"duration_seconds"`
	Running         bool       `json:"running"`
}

func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Author:    ToUserDTO(comment.Author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	return TimeEntryDTO{
		ID:              entry.ID,
		TaskID:          entry.TaskID,
		UserID:          entry.UserID,
		Description:     entry.Description,
		StartTime:       entry.StartTime,
		EndTime:         entry.EndTime,
		DurationSeconds: int64(entry.Duration.Seconds()),
		Running:         entry.Running(),
	}
}
