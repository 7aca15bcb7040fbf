package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/database"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
)

// RequireProjectAccess checks if the user may work in the project: the owner
// or an active member of the project's team
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "Authentication required")
			return
		}

		var project models.Project
		if err := database.GetDB().
			Preload("Category").
			Preload("Team").
			First(&project, projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			return
		}

		if !hasProjectAccess(c, project.ID, userID) {
			return
		}

		c.Set("project", project)
		c.Next()
	}
}

// RequireProjectOwner must run after RequireProjectAccess
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectInterface, exists := c.Get("project")
		if !exists {
			apierrors.Forbidden(c, "Project access required")
			return
		}

		project, ok := projectInterface.(models.Project)
		if !ok {
			apierrors.InternalError(c, "Invalid project data")
			return
		}

		userID, _ := GetUserID(c)
		if project.OwnerID != userID {
			apierrors.Forbidden(c, "Only the project owner can perform this action")
			return
		}

		c.Next()
	}
}

// hasProjectAccess aborts with 404 rather than 403 so project existence does
// not leak
func hasProjectAccess(c *gin.Context, projectID, userID uint64) bool {
	ok, err := repository.NewProjectRepository(database.GetDB()).HasAccess(projectID, userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to verify project access")
		return false
	}
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return false
	}
	return true
}
