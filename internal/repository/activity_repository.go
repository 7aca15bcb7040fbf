package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// ListForProjects returns the newest activities of the given projects
func (r *GormActivityRepository) ListForProjects(projectIDs []uint64, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	if len(projectIDs) == 0 {
		return activities, nil
	}
	if err := r.db.Preload("Actor").
		Where("project_id IN ?", projectIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
