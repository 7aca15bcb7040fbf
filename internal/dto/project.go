package dto

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/datatypes"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID           uint64         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	OwnerID      uint64         `json:"owner_id"`
	CategoryID   *uint64        `json:"category_id"`
	CategoryName string         `json:"category_name,omitempty"`
	TeamID       *uint64        `json:"team_id"`
	TeamName     string         `json:"team_name,omitempty"`
	IsTemplate   bool           `json:"is_template"`
	Config       datatypes.JSON `json:"config"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CategoryDTO represents a category with its materialized path
type CategoryDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	ParentID    *uint64 `json:"parent"`
	FullPath    string  `json:"full_path,omitempty"`
}

// CategoryTreeDTO is one node of the category tree
type CategoryTreeDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Children    []CategoryTreeDTO `json:"children"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CategoryID:  project.CategoryID,
		TeamID:      project.TeamID,
		IsTemplate:  project.IsTemplate,
		Config:      project.Config,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	if project.Category != nil {
		dto.CategoryName = project.Category.Name
	}
	if project.Team != nil {
		dto.TeamName = project.Team.Name
	}
	return dto
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category, fullPath string) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		ParentID:    category.ParentID,
		FullPath:    fullPath,
	}
}
