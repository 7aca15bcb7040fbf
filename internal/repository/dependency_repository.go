package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDependencyRepository is a GORM implementation of DependencyRepository
type GormDependencyRepository struct {
	db *gorm.DB
}

// NewDependencyRepository creates a new DependencyRepository
func NewDependencyRepository(db *gorm.DB) DependencyRepository {
	return &GormDependencyRepository{db: db}
}

// ListByProject loads every edge of a project in one query
func (r *GormDependencyRepository) ListByProject(projectID uint64) ([]models.TaskDependency, error) {
	var edges []models.TaskDependency
	if err := r.db.Where("project_id = ?", projectID).Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// InsertChecked locks the owning project row, loads the project's edges,
// runs check and inserts the edge, all inside one transaction.
func (r *GormDependencyRepository) InsertChecked(edge *models.TaskDependency, check func(edges []models.TaskDependency) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx, edge.ProjectID); err != nil {
			return err
		}

		var edges []models.TaskDependency
		if err := tx.Where("project_id = ?", edge.ProjectID).Find(&edges).Error; err != nil {
			return err
		}

		if err := check(edges); err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
	})
}

// Delete removes an edge
func (r *GormDependencyRepository) Delete(taskID, dependsOnID uint64) error {
	return r.db.Where("task_id = ? AND depends_on_id = ?", taskID, dependsOnID).
		Delete(&models.TaskDependency{}).Error
}

// lockProject takes a row lock on the project for the rest of the
// transaction.
func lockProject(tx *gorm.DB, projectID uint64) error {
	return lockRow(tx, &models.Project{}, projectID)
}

// lockRow takes a row lock on the row of model with the given id. SQLite has
// no row locks; its writers are already serialized.
func lockRow(tx *gorm.DB, model interface{}, id uint64) error {
	query := tx.Model(model).Select("id").Where("id = ?", id)
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var locked uint64
	return query.Scan(&locked).Error
}
