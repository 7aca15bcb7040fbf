package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTimeEntryNotFound   = errors.New("time entry not found")
	ErrTimerAlreadyRunning = errors.New("a timer is already running")
	ErrNoRunningTimer      = errors.New("no running timer")
	ErrNotTimeEntryOwner   = errors.New("only the owner can modify this time entry")
	ErrInvalidDuration     = errors.New("duration must be positive")
)

// TimeEntryService tracks time spent on tasks
type TimeEntryService struct {
	timeRepo repository.TimeEntryRepository
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTimeEntryService creates a new TimeEntryService
func NewTimeEntryService(timeRepo repository.TimeEntryRepository, taskRepo repository.TaskRepository) *TimeEntryService {
	return &TimeEntryService{
		timeRepo: timeRepo,
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// ManualEntryInput represents a completed entry logged after the fact
type ManualEntryInput struct {
	TaskID      uint64
	UserID      uint64
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	Duration    time.Duration
}

// UpdateTimeEntryInput represents input for updating a time entry
type UpdateTimeEntryInput struct {
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// StartTimer opens a running entry. A user runs at most one timer at a time.
func (s *TimeEntryService) StartTimer(taskID, userID uint64, description string) (*models.TimeEntry, error) {
	if err := s.ensureTask(taskID); err != nil {
		return nil, err
	}

	if _, err := s.timeRepo.FindRunning(userID); err == nil {
		return nil, ErrTimerAlreadyRunning
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check running timer: %w", err)
	}

	entry := &models.TimeEntry{
		TaskID:      taskID,
		UserID:      userID,
		Description: description,
		StartTime:   s.now(),
	}
	if err := s.timeRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}
	return entry, nil
}

// StopTimer closes the user's running entry
func (s *TimeEntryService) StopTimer(userID uint64) (*models.TimeEntry, error) {
	entry, err := s.timeRepo.FindRunning(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRunningTimer
		}
		return nil, fmt.Errorf("failed to find running timer: %w", err)
	}

	end := s.now()
	entry.EndTime = &end
	if err := s.timeRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}
	return entry, nil
}

// LogTime records a finished entry. Either EndTime or Duration must be given.
func (s *TimeEntryService) LogTime(input ManualEntryInput) (*models.TimeEntry, error) {
	if err := s.ensureTask(input.TaskID); err != nil {
		return nil, err
	}

	end := input.EndTime
	if end == nil {
		if input.Duration <= 0 {
			return nil, ErrInvalidDuration
		}
		t := input.StartTime.Add(input.Duration)
		end = &t
	}

	entry := &models.TimeEntry{
		TaskID:      input.TaskID,
		UserID:      input.UserID,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     end,
	}
	if err := s.timeRepo.Create(entry); err != nil {
		if errors.Is(err, models.ErrInvalidTimeRange) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to log time: %w", err)
	}
	return entry, nil
}

// UpdateEntry edits an entry; the duration follows the new endpoints
func (s *TimeEntryService) UpdateEntry(entryID, userID uint64, input UpdateTimeEntryInput) (*models.TimeEntry, error) {
	entry, err := s.timeRepo.FindByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}
	if entry.UserID != userID {
		return nil, ErrNotTimeEntryOwner
	}

	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.StartTime != nil {
		entry.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		entry.EndTime = input.EndTime
	}

	if err := s.timeRepo.Update(entry); err != nil {
		if errors.Is(err, models.ErrInvalidTimeRange) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}
	return entry, nil
}

// ListEntries lists a task's entries, newest first
func (s *TimeEntryService) ListEntries(taskID uint64) ([]models.TimeEntry, error) {
	entries, err := s.timeRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}

// TotalTime sums the recorded time of a task
func (s *TimeEntryService) TotalTime(taskID uint64) (time.Duration, error) {
	totals, err := s.timeRepo.TotalByTasks([]uint64{taskID})
	if err != nil {
		return 0, fmt.Errorf("failed to sum time entries: %w", err)
	}
	return totals[taskID], nil
}

func (s *TimeEntryService) ensureTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	return nil
}
