package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-hub-api/internal/events"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrNoUserIDsProvided   = errors.New("at least one user ID is required")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidParentTask   = errors.New("parent task must exist in the same project")
	ErrInvalidTaskAssignee = errors.New("one or more users do not exist or cannot access the project")
)

// taskPreloads is what a task response needs
var taskPreloads = []string{"Assignments.User", "Dependencies", "Subtasks"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	bus         *events.Bus
	logger      *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, bus *events.Bus, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		bus:         bus,
		logger:      logger.Named("tasks"),
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	ProjectID    *uint64
	AssignedToMe bool
	Status       *models.TaskStatus
	ParentID     *uint64
	RootsOnly    bool
	Page         int
	PageSize     int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	Status      models.TaskStatus
	Position    uint
	ParentID    *uint64
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Position    *uint
	ParentID    *uint64
	ClearParent bool
}

// AssignUsersInput represents input for assigning users to a task
type AssignUsersInput struct {
	TaskID  uint64
	ActorID uint64
	UserIDs []uint64
}

// ListTasks returns tasks accessible to a user based on the provided filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	projectIDs, err := s.resolveAccessibleProjectIDs(input.UserID, input.ProjectID)
	if err != nil {
		return nil, 0, err
	}

	if len(projectIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	filter := repository.TaskFilter{
		ProjectIDs: projectIDs,
		Status:     input.Status,
		ParentID:   input.ParentID,
		RootsOnly:  input.RootsOnly,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}
	if input.AssignedToMe {
		filter.AssignedUserID = &input.UserID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task in a project the creator can access
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if err := s.ensureProjectAccess(input.ProjectID, input.CreatorID); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if input.ParentID != nil {
		if err := s.ensureParent(input.ProjectID, 0, *input.ParentID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Position:    input.Position,
		ParentID:    input.ParentID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Position != nil {
		task.Position = *input.Position
	}
	if input.ClearParent {
		task.ParentID = nil
	} else if input.ParentID != nil {
		if err := s.ensureParent(task.ProjectID, task.ID, *input.ParentID); err != nil {
			return nil, err
		}
		task.ParentID = input.ParentID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask deletes a task and its subtasks together with their dependency
// edges and assignments
func (s *TaskService) DeleteTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignUsers assigns users to a task and publishes one AssignmentCreated
// per newly created assignment after the write has committed
func (s *TaskService) AssignUsers(ctx context.Context, input AssignUsersInput) ([]uint64, error) {
	if len(input.UserIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	userIDs := uniqueUint64(input.UserIDs)

	count, err := s.projectRepo.CountMembers(task.ProjectID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(userIDs) {
		return nil, ErrInvalidTaskAssignee
	}

	created, err := s.taskRepo.AssignUsers(task.ID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	for _, userID := range created {
		s.bus.Publish(ctx, events.AssignmentCreated{
			TaskID:  task.ID,
			UserID:  userID,
			ActorID: input.ActorID,
		})
	}

	return created, nil
}

// UnassignUsers removes user assignments from a task
func (s *TaskService) UnassignUsers(taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return ErrNoUserIDsProvided
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.UnassignUsers(taskID, uniqueUint64(userIDs)); err != nil {
		return fmt.Errorf("failed to unassign users: %w", err)
	}

	return nil
}

// ToggleTaskStatus toggles a task between todo and done
func (s *TaskService) ToggleTaskStatus(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.Status == models.TaskStatusDone {
		task.Status = models.TaskStatusTodo
	} else {
		task.Status = models.TaskStatusDone
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to toggle status: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// resolveAccessibleProjectIDs returns the project IDs the user can access
func (s *TaskService) resolveAccessibleProjectIDs(userID uint64, projectID *uint64) ([]uint64, error) {
	if projectID != nil {
		if err := s.ensureProjectAccess(*projectID, userID); err != nil {
			return nil, err
		}
		return []uint64{*projectID}, nil
	}

	ids, err := s.projectRepo.AccessibleIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accessible projects: %w", err)
	}
	return ids, nil
}

// ensureProjectAccess verifies that a user may work in a project
func (s *TaskService) ensureProjectAccess(projectID, userID uint64) error {
	ok, err := s.projectRepo.HasAccess(projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify project access: %w", err)
	}
	if !ok {
		return ErrProjectAccessDenied
	}
	return nil
}

// ensureParent checks that parentID is a task of the same project and that
// taskID is neither the parent itself nor one of its ancestors
func (s *TaskService) ensureParent(projectID, taskID, parentID uint64) error {
	if parentID == taskID {
		return ErrInvalidParentTask
	}
	parent, err := s.findParent(parentID)
	if err != nil {
		return err
	}
	if parent.ProjectID != projectID {
		return ErrInvalidParentTask
	}
	if taskID == 0 {
		return nil
	}

	visited := map[uint64]struct{}{parent.ID: {}}
	for parent.ParentID != nil {
		next := *parent.ParentID
		if next == taskID {
			return ErrInvalidParentTask
		}
		if _, seen := visited[next]; seen {
			return ErrInvalidParentTask
		}
		visited[next] = struct{}{}

		if parent, err = s.findParent(next); err != nil {
			if errors.Is(err, ErrInvalidParentTask) {
				// The chain ends at a deleted task
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *TaskService) findParent(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidParentTask
		}
		return nil, fmt.Errorf("failed to find parent task: %w", err)
	}
	return task, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
