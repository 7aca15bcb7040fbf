package models

import "time"

type Notification struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	RecipientID uint64    `gorm:"not null;index:idx_notifications_recipient_read,priority:1" json:"recipient_id"`
	ActivityID  uint64    `gorm:"not null;index" json:"activity_id"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Recipient User     `gorm:"foreignKey:RecipientID" json:"-"`
	Activity  Activity `gorm:"foreignKey:ActivityID" json:"activity"`
}
