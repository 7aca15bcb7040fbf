package repository

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// accessible scopes a project query to rows the user owns or reaches
// through an active team membership
func (r *GormProjectRepository) accessible(userID uint64) *gorm.DB {
	teamSubQuery := r.db.Model(&models.TeamMembership{}).
		Select("team_id").
		Where("user_id = ? AND status = ?", userID, models.MembershipActive)

	return r.db.Model(&models.Project{}).
		Where("projects.owner_id = ? OR projects.team_id IN (?)", userID, teamSubQuery)
}

// ListAccessible lists the projects the user can access
func (r *GormProjectRepository) ListAccessible(userID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.accessible(userID).
		Preload("Category").
		Preload("Team").
		Order("projects.created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// AccessibleIDs returns the IDs of the projects the user can access
func (r *GormProjectRepository) AccessibleIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	if err := r.accessible(userID).Pluck("projects.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// HasAccess reports whether the user may work in the project
func (r *GormProjectRepository) HasAccess(projectID, userID uint64) (bool, error) {
	var count int64
	if err := r.accessible(userID).Where("projects.id = ?", projectID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Owner", "Team", "Category", "Tasks").Save(project).Error
}

// Clone copies the source project's tasks into clone within a transaction.
// Hierarchy, dependencies and assignments are not copied.
func (r *GormProjectRepository) Clone(source *models.Project, clone *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clone).Error; err != nil {
			return err
		}

		var tasks []models.Task
		if err := tx.Where("project_id = ?", source.ID).Order("position, id").Find(&tasks).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		copies := make([]models.Task, len(tasks))
		for i, t := range tasks {
			copies[i] = models.Task{
				ProjectID:   clone.ID,
				Title:       t.Title,
				Description: t.Description,
				Position:    t.Position,
				Status:      models.TaskStatusTodo,
			}
		}
		return tx.Create(&copies).Error
	})
}

// ListByCategories lists projects in any of the given categories
func (r *GormProjectRepository) ListByCategories(categoryIDs []uint64) ([]models.Project, error) {
	var projects []models.Project
	if len(categoryIDs) == 0 {
		return projects, nil
	}
	if err := r.db.Preload("Category").Preload("Owner").
		Where("category_id IN ?", categoryIDs).
		Order("id").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// CountMembers counts how many of the given users may access the project
func (r *GormProjectRepository) CountMembers(projectID uint64, userIDs []uint64) (int64, error) {
	project, err := r.FindByID(projectID)
	if err != nil {
		return 0, err
	}

	query := r.db.Model(&models.User{}).Where("users.id IN ?", userIDs)
	if project.TeamID != nil {
		teamSubQuery := r.db.Model(&models.TeamMembership{}).
			Select("user_id").
			Where("team_id = ? AND status = ?", *project.TeamID, models.MembershipActive)
		query = query.Where("users.id = ? OR users.id IN (?)", project.OwnerID, teamSubQuery)
	} else {
		query = query.Where("users.id = ?", project.OwnerID)
	}

	var count int64
	err = query.Count(&count).Error
	return count, err
}
