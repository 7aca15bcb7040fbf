package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/events"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoNotificationIDs = errors.New("at least one notification ID is required")

var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_.@+-]+)`)

// LivePusher hands a committed notification to the live delivery channel.
type LivePusher interface {
	Push(n models.Notification)
}

// NotificationService turns domain events into activities and notifications
// and serves the recipient's notification list.
type NotificationService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	live      LivePusher
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService. live may be nil.
func NewNotificationService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	live LivePusher,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		live:      live,
		logger:    logger.Named("notifications"),
	}
}

// Register subscribes the fan-out handlers on the bus.
func (s *NotificationService) Register(bus *events.Bus) {
	events.Subscribe(bus, s.HandleAssignmentCreated)
	events.Subscribe(bus, s.HandleCommentCreated)
}

// HandleAssignmentCreated notifies the assigned user.
func (s *NotificationService) HandleAssignmentCreated(ctx context.Context, e events.AssignmentCreated) error {
	task, err := s.taskRepo.FindByID(e.TaskID)
	if err != nil {
		return fmt.Errorf("failed to find task %d: %w", e.TaskID, err)
	}

	actorID := e.ActorID
	if actorID == 0 {
		actorID = e.UserID
	}

	activity, err := s.newTaskActivity(actorID, models.VerbAssigned, task)
	if err != nil {
		return err
	}

	return s.fanOut(activity, []uint64{e.UserID})
}

// HandleCommentCreated records the comment activity and notifies every
// user mentioned in the content.
func (s *NotificationService) HandleCommentCreated(ctx context.Context, e events.CommentCreated) error {
	task, err := s.taskRepo.FindByID(e.TaskID)
	if err != nil {
		return fmt.Errorf("failed to find task %d: %w", e.TaskID, err)
	}

	activity, err := s.newTaskActivity(e.AuthorID, models.VerbCommented, task)
	if err != nil {
		return err
	}

	return s.fanOut(activity, s.resolveMentions(e.Content))
}

// ExtractMentions returns the distinct @handles in content in order of first
// appearance. Handles are compared case-insensitively. Trailing periods are
// dropped, so "@bob@example.com." mentions bob@example.com; no email address
// ends with a period.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	handles := make([]string, 0, len(matches))

	for _, m := range matches {
		// A sentence-ending period is not part of the handle
		handle := strings.TrimRight(m[1], ".")
		if handle == "" {
			continue
		}
		key := strings.ToLower(handle)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		handles = append(handles, handle)
	}
	return handles
}

// resolveMentions maps handles to user ids. Unknown handles and lookup
// failures are skipped.
func (s *NotificationService) resolveMentions(content string) []uint64 {
	handles := ExtractMentions(content)
	seen := make(map[uint64]struct{}, len(handles))
	recipients := make([]uint64, 0, len(handles))

	for _, handle := range handles {
		user, err := s.userRepo.FindByEmail(handle)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("mention lookup failed", zap.String("handle", handle), zap.Error(err))
			}
			continue
		}
		if _, ok := seen[user.ID]; ok {
			continue
		}
		seen[user.ID] = struct{}{}
		recipients = append(recipients, user.ID)
	}
	return recipients
}

func (s *NotificationService) newTaskActivity(actorID uint64, verb models.ActivityVerb, task *models.Task) (*models.Activity, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find actor %d: %w", actorID, err)
	}

	projectID := task.ProjectID
	return &models.Activity{
		ActorID:    actor.ID,
		Verb:       verb,
		TargetKind: models.TargetTask,
		TargetID:   task.ID,
		ProjectID:  &projectID,
		Actor:      *actor,
	}, nil
}

// fanOut persists the activity with its notifications and, once committed,
// pushes each row exactly once.
func (s *NotificationService) fanOut(activity *models.Activity, recipientIDs []uint64) error {
	notifications, err := s.notifRepo.CreateWithActivity(activity, recipientIDs)
	if err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}

	s.logger.Debug("activity recorded",
		zap.Uint64("activity_id", activity.ID),
		zap.String("verb", string(activity.Verb)),
		zap.Stringer("target", activity.Target()),
		zap.Int("recipients", len(notifications)),
	)

	if s.live == nil {
		return nil
	}
	for _, n := range notifications {
		s.live.Push(n)
	}
	return nil
}

// ListNotificationsInput represents filters for listing notifications
type ListNotificationsInput struct {
	RecipientID uint64
	UnreadOnly  bool
	Page        int
	PageSize    int
}

// ListNotifications returns the recipient's notifications, newest first
func (s *NotificationService) ListNotifications(input ListNotificationsInput) ([]models.Notification, int64, error) {
	notifications, total, err := s.notifRepo.ListForRecipient(repository.NotificationFilter{
		RecipientID: input.RecipientID,
		UnreadOnly:  input.UnreadOnly,
		Page:        input.Page,
		PageSize:    input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead marks the recipient's unread notifications among ids as read and
// returns how many changed.
func (s *NotificationService) MarkRead(recipientID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoNotificationIDs
	}

	updated, err := s.notifRepo.MarkRead(recipientID, uniqueUint64(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return updated, nil
}
