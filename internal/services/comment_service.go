package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/events"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/gorm"
)

var ErrCommentContentRequired = errors.New("comment content is required")

// CommentService handles task comments
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	bus         *events.Bus
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, bus *events.Bus) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		bus:         bus,
	}
}

// CreateComment stores a comment and publishes CommentCreated once it is committed
func (s *CommentService) CreateComment(ctx context.Context, taskID, authorID uint64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentContentRequired
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	comment := &models.Comment{
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.bus.Publish(ctx, events.CommentCreated{
		CommentID: comment.ID,
		TaskID:    taskID,
		AuthorID:  authorID,
		Content:   content,
	})

	return s.commentRepo.FindByID(comment.ID)
}

// ListComments lists a task's comments, newest first
func (s *CommentService) ListComments(taskID uint64) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
