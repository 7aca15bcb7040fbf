package dto

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	User       UserDTO   `json:"user"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64              `json:"id"`
	ProjectID     uint64              `json:"project_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Position      uint                `json:"position"`
	ParentID      *uint64             `json:"parent_id"`
	DependencyIDs []uint64            `json:"dependency_ids"`
	IsBlocked     bool                `json:"is_blocked"`
	Progress      int                 `json:"progress"`
	TotalTime     time.Duration       `json:"total_time"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Assignments   []TaskAssignmentDTO `json:"assigned_to"`
	Subtasks      []TaskDTO           `json:"subtasks,omitempty"`
}

// TaskState carries the derived values that are not stored on the task row.
type TaskState struct {
	IsBlocked bool
	Progress  int
	TotalTime time.Duration
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// DependencyGraphDTO lists the transitive neighbourhood of a task.
type DependencyGraphDTO struct {
	TaskID      uint64    `json:"task_id"`
	Ancestors   []TaskDTO `json:"ancestors"`
	Descendants []TaskDTO `json:"descendants"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
	}
}

// ToTaskDTO converts a Task model and its derived state to TaskDTO
func ToTaskDTO(task models.Task, state TaskState) TaskDTO {
	dto := TaskDTO{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Position:      task.Position,
		ParentID:      task.ParentID,
		DependencyIDs: task.DependencyIDs(),
		IsBlocked:     state.IsBlocked,
		Progress:      state.Progress,
		TotalTime:     state.TotalTime,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
		Assignments:   make([]TaskAssignmentDTO, len(task.Assignments)),
	}

	for i, assignment := range task.Assignments {
		dto.Assignments[i] = TaskAssignmentDTO{
			User:       ToUserDTO(assignment.User),
			AssignedAt: assignment.CreatedAt,
		}
	}

	// Subtasks carry no derived state of their own here
	if len(task.Subtasks) > 0 {
		dto.Subtasks = make([]TaskDTO, len(task.Subtasks))
		for i, sub := range task.Subtasks {
			dto.Subtasks[i] = ToTaskDTO(sub, TaskState{})
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []TaskDTO, params utils.PaginationParams, totalCount int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      tasks,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: totalCount,
		TotalPages: params.TotalPages(totalCount),
	}
}
