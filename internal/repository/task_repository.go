package repository

import (
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDs finds all tasks with the given IDs
func (r *GormTaskRepository) FindByIDs(ids []uint64) ([]models.Task, error) {
	var tasks []models.Task
	if len(ids) == 0 {
		return tasks, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if len(filter.ProjectIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("tasks.project_id IN ?", filter.ProjectIDs)

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.ParentID != nil {
		query = query.Where("tasks.parent_id = ?", *filter.ParentID)
	} else if filter.RootsOnly {
		query = query.Where("tasks.parent_id IS NULL")
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("tasks.position ASC, tasks.id ASC").
		Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Preload("Assignments.User").
		Preload("Dependencies").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete soft deletes a task with its whole subtask tree and drops every
// edge and assignment touching those tasks
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		ids, err := subtreeIDs(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("task_id IN ? OR depends_on_id IN ?", ids, ids).
			Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id IN ?", ids).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
	})
}

// subtreeIDs returns id followed by the ids of every live task below it
func subtreeIDs(tx *gorm.DB, id uint64) ([]uint64, error) {
	ids := []uint64{id}
	frontier := []uint64{id}
	for len(frontier) > 0 {
		var children []uint64
		if err := tx.Model(&models.Task{}).
			Where("parent_id IN ? AND id NOT IN ?", frontier, ids).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

// AssignUsers assigns multiple users to a task. Soft-deleted assignments are
// restored; the returned IDs are the users that were not active before.
// Concurrent calls for one task are serialized on the task row.
func (r *GormTaskRepository) AssignUsers(taskID uint64, userIDs []uint64) ([]uint64, error) {
	var created []uint64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &models.Task{}, taskID); err != nil {
			return err
		}

		var active []uint64
		if err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ? AND user_id IN ?", taskID, userIDs).
			Pluck("user_id", &active).Error; err != nil {
			return err
		}

		existing := make(map[uint64]struct{}, len(active))
		for _, id := range active {
			existing[id] = struct{}{}
		}

		assignments := make([]models.TaskAssignment, 0, len(userIDs))
		for _, userID := range userIDs {
			if _, ok := existing[userID]; ok {
				continue
			}
			assignments = append(assignments, models.TaskAssignment{
				TaskID: taskID,
				UserID: userID,
			})
			created = append(created, userID)
		}

		if len(assignments) == 0 {
			return nil
		}

		return tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"deleted_at": gorm.Expr("NULL"),
					"created_at": gorm.Expr("CURRENT_TIMESTAMP"),
				}),
			}).
			Create(&assignments).Error
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UnassignUsers removes user assignments from a task
func (r *GormTaskRepository) UnassignUsers(taskID uint64, userIDs []uint64) error {
	return r.db.Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Delete(&models.TaskAssignment{}).Error
}

// ListBlocked returns the project's tasks with at least one open direct dependency
func (r *GormTaskRepository) ListBlocked(projectID uint64) ([]models.Task, error) {
	openDependency := r.db.Table("task_dependencies").
		Select("1").
		Joins("JOIN tasks deps ON deps.id = task_dependencies.depends_on_id").
		Where("task_dependencies.task_id = tasks.id").
		Where("deps.status <> ? AND deps.deleted_at IS NULL", models.TaskStatusDone)

	var tasks []models.Task
	if err := r.db.
		Where("tasks.project_id = ?", projectID).
		Where("EXISTS (?)", openDependency).
		Preload("Assignments.User").
		Preload("Dependencies").
		Order("tasks.position ASC, tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// OpenDependencyCounts returns, per task, how many direct dependencies are not done.
// Tasks without open dependencies are absent from the map.
func (r *GormTaskRepository) OpenDependencyCounts(taskIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TaskID    uint64
		OpenCount int64
	}
	if err := r.db.Table("task_dependencies").
		Select("task_dependencies.task_id AS task_id, COUNT(*) AS open_count").
		Joins("JOIN tasks deps ON deps.id = task_dependencies.depends_on_id").
		Scopes(database.NotDeleted("deps")).
		Where("task_dependencies.task_id IN ?", taskIDs).
		Where("deps.status <> ?", models.TaskStatusDone).
		Group("task_dependencies.task_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TaskID] = row.OpenCount
	}
	return counts, nil
}
