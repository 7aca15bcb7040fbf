package dto

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
)

// ActivityDTO is the activity embedded in feeds and notification payloads
type ActivityDTO struct {
	ID          uint64              `json:"id"`
	Actor       UserDTO             `json:"actor"`
	Verb        models.ActivityVerb `json:"verb"`
	Target      models.TargetRef    `json:"target"`
	TargetLabel string              `json:"target_label,omitempty"`
	ProjectID   *uint64             `json:"project_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NotificationDTO is both the REST representation and the live payload
type NotificationDTO struct {
	ID        uint64      `json:"id"`
	IsRead    bool        `json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
	Activity  ActivityDTO `json:"activity"`
}

// LiveMessage wraps a notification pushed to a recipient topic
type LiveMessage struct {
	Type string          `json:"type"`
	Data NotificationDTO `json:"data"`
}

// MarkReadResponse reports how many rows changed
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	return ActivityDTO{
		ID:        activity.ID,
		Actor:     ToUserDTO(activity.Actor),
		Verb:      activity.Verb,
		Target:    activity.Target(),
		ProjectID: activity.ProjectID,
		CreatedAt: activity.CreatedAt,
	}
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		Activity:  ToActivityDTO(n.Activity),
	}
}

// ToNotificationDTOs converts a slice of notifications
func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		items[i] = ToNotificationDTO(n)
	}
	return items
}
