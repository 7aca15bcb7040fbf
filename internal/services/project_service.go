package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAccessDenied  = errors.New("user cannot access this project")
	ErrProjectTitleRequired = errors.New("project title is required")
	ErrNotTeamMember        = errors.New("user is not an active member of the team")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	teamRepo     repository.TeamRepository
	categoryRepo repository.CategoryRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, teamRepo repository.TeamRepository, categoryRepo repository.CategoryRepository) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		teamRepo:     teamRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Title       string
	Description string
	CategoryID  *uint64
	TeamID      *uint64
	OwnerID     uint64
	IsTemplate  bool
	Config      datatypes.JSON
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Title       *string
	Description *string
	CategoryID  *uint64
	Config      datatypes.JSON
}

// CloneProjectInput represents input for cloning a project
type CloneProjectInput struct {
	SourceID uint64
	ActorID  uint64
	Title    string
	TeamID   *uint64
}

// CreateProject creates a project owned by the caller
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleRequired
	}

	if err := s.ensureCategory(input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureTeamMember(input.TeamID, input.OwnerID); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:       title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		TeamID:      input.TeamID,
		OwnerID:     input.OwnerID,
		IsTemplate:  input.IsTemplate,
		Config:      input.Config,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(project.ID)
}

// GetProject returns a project with its category and team
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Category", "Team")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects lists the projects the user can access
func (s *ProjectService) ListProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListAccessible(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CanAccess applies the project access rule: owner, or active member of the
// project's team
func (s *ProjectService) CanAccess(projectID, userID uint64) (bool, error) {
	ok, err := s.projectRepo.HasAccess(projectID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to verify project access: %w", err)
	}
	return ok, nil
}

// UpdateProject updates a project's fields
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrProjectTitleRequired
		}
		project.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(input.CategoryID); err != nil {
			return nil, err
		}
		project.CategoryID = input.CategoryID
	}
	if input.Config != nil {
		project.Config = input.Config
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.GetProject(project.ID)
}

// CloneProject copies a project and its tasks. The clone is owned by the
// actor and is never a template.
func (s *ProjectService) CloneProject(input CloneProjectInput) (*models.Project, error) {
	source, err := s.GetProject(input.SourceID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = source.Title + " (Clone)"
	}

	teamID := source.TeamID
	if input.TeamID != nil {
		if err := s.ensureTeamMember(input.TeamID, input.ActorID); err != nil {
			return nil, err
		}
		teamID = input.TeamID
	}

	clone := &models.Project{
		Title:       title,
		Description: source.Description,
		CategoryID:  source.CategoryID,
		TeamID:      teamID,
		OwnerID:     input.ActorID,
		IsTemplate:  false,
		Config:      source.Config,
	}
	if err := s.projectRepo.Clone(source, clone); err != nil {
		return nil, fmt.Errorf("failed to clone project: %w", err)
	}

	return s.GetProject(clone.ID)
}

// MakeTemplate flags a project as a template
func (s *ProjectService) MakeTemplate(projectID uint64) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	project.IsTemplate = true
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to make template: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ensureCategory(categoryID *uint64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(*categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to find category: %w", err)
	}
	return nil
}

func (s *ProjectService) ensureTeamMember(teamID *uint64, userID uint64) error {
	if teamID == nil {
		return nil
	}
	member, err := s.teamRepo.FindMember(*teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("failed to verify team membership: %w", err)
	}
	if member.Status != models.MembershipActive {
		return ErrNotTeamMember
	}
	return nil
}
