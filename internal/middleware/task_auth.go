package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/database"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
)

// RequireTaskAccess checks if the user has access to a task
// User must be able to access the task's project
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get task ID from URL parameter
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		// Get current user ID
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "Authentication required")
			return
		}

		// Check if task exists and load relations
		var task models.Task
		if err := database.GetDB().
			Preload("Assignments.User").
			Preload("Dependencies").
			Preload("Subtasks").
			First(&task, taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			return
		}

		ok, err := repository.NewProjectRepository(database.GetDB()).HasAccess(task.ProjectID, userID)
		if err != nil {
			apierrors.InternalError(c, "Failed to verify project access")
			return
		}
		if !ok {
			// Return 404 instead of 403 to avoid leaking task existence
			apierrors.NotFound(c, "Task not found")
			return
		}

		c.Set("task", task)
		c.Next()
	}
}
