package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	CategoryID  *uint64        `gorm:"index" json:"category_id"`
	TeamID      *uint64        `gorm:"index" json:"team_id"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	IsTemplate  bool           `gorm:"not null;default:false" json:"is_template"`
	Config      datatypes.JSON `json:"config"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Team     *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tasks    []Task    `gorm:"foreignKey:ProjectID" json:"-"`
}
