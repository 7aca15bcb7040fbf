package repository

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

// GormTimeEntryRepository is a GORM implementation of TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

func (r *GormTimeEntryRepository) Create(entry *models.TimeEntry) error {
	return r.db.Create(entry).Error
}

func (r *GormTimeEntryRepository) FindByID(id uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update saves the entry; the BeforeSave hook recomputes the duration
func (r *GormTimeEntryRepository) Update(entry *models.TimeEntry) error {
	return r.db.Save(entry).Error
}

func (r *GormTimeEntryRepository) ListByTask(taskID uint64) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := r.db.Where("task_id = ?", taskID).
		Order("start_time DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindRunning finds the user's entry that has not been stopped yet
func (r *GormTimeEntryRepository) FindRunning(userID uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time DESC").
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// TotalByTasks sums recorded durations per task
func (r *GormTimeEntryRepository) TotalByTasks(taskIDs []uint64) (map[uint64]time.Duration, error) {
	totals := make(map[uint64]time.Duration, len(taskIDs))
	if len(taskIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		TaskID uint64
		Total  int64
	}
	if err := r.db.Model(&models.TimeEntry{}).
		Select("task_id, SUM(duration) AS total").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.TaskID] = time.Duration(row.Total)
	}
	return totals, nil
}
