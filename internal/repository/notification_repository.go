package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateWithActivity inserts the activity and bulk-inserts one notification
// per recipient. Either everything commits or nothing does.
func (r *GormNotificationRepository) CreateWithActivity(activity *models.Activity, recipientIDs []uint64) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0, len(recipientIDs))

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Actor").Create(activity).Error; err != nil {
			return err
		}

		if len(recipientIDs) == 0 {
			return nil
		}

		for _, recipientID := range recipientIDs {
			notifications = append(notifications, models.Notification{
				RecipientID: recipientID,
				ActivityID:  activity.ID,
				CreatedAt:   activity.CreatedAt,
			})
		}

		return tx.Omit("Recipient", "Activity").Create(&notifications).Error
	})
	if err != nil {
		return nil, err
	}

	for i := range notifications {
		notifications[i].Activity = *activity
	}

	return notifications, nil
}

// ListForRecipient lists a recipient's notifications, newest first
func (r *GormNotificationRepository) ListForRecipient(filter NotificationFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", filter.RecipientID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	var notifications []models.Notification
	if err := listQuery.
		Preload("Activity").
		Preload("Activity.Actor").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead flips is_read for the recipient's unread notifications among ids.
// Ids owned by someone else fall out of the recipient filter.
func (r *GormNotificationRepository) MarkRead(recipientID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ? AND is_read = ?", recipientID, ids, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
