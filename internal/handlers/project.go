package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
	"gorm.io/datatypes"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title       string         `json:"title" binding:"required"`
		Description string         `json:"description"`
		CategoryID  *uint64        `json:"category_id"`
		TeamID      *uint64        `json:"team_id"`
		IsTemplate  bool           `json:"is_template"`
		Config      datatypes.JSON `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		TeamID:      req.TeamID,
		OwnerID:     userID,
		IsTemplate:  req.IsTemplate,
		Config:      req.Config,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the projects the current user can access
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": toProjectDTOs(projects)})
}

// GetProject returns the project loaded by RequireProjectAccess
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(project))
}

// UpdateProject updates title, description, category and config
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Title       *string        `json:"title"`
		Description *string        `json:"description"`
		CategoryID  *uint64        `json:"category_id"`
		Config      datatypes.JSON `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.UpdateProject(project.ID, services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Config:      req.Config,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

// CloneProject copies the project and its tasks into a new project owned by
// the current user
func (h *ProjectHandler) CloneProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Title  string  `json:"title"`
		TeamID *uint64 `json:"team_id"`
	}
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	clone, err := h.projectService.CloneProject(services.CloneProjectInput{
		SourceID: project.ID,
		ActorID:  userID,
		Title:    req.Title,
		TeamID:   req.TeamID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*clone))
}

// MakeTemplate flags the project as a template
func (h *ProjectHandler) MakeTemplate(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	updated, err := h.projectService.MakeTemplate(project.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

func toProjectDTOs(projects []models.Project) []dto.ProjectDTO {
	items := make([]dto.ProjectDTO, len(projects))
	for i, p := range projects {
		items[i] = dto.ToProjectDTO(p)
	}
	return items
}
