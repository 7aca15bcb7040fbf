package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/graph"
	"github.com/yukikurage/project-hub-api/internal/middleware"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

var (
	notFoundErrors = []error{
		services.ErrTaskNotFound,
		services.ErrDependencyTaskNotFound,
		services.ErrProjectNotFound,
		services.ErrCategoryNotFound,
		services.ErrTeamNotFound,
		services.ErrTeamMemberNotFound,
		services.ErrUserNotFound,
		services.ErrTimeEntryNotFound,
		services.ErrNoRunningTimer,
		services.ErrNoPendingInvitation,
	}
	badRequestErrors = []error{
		services.ErrNoUserIDsProvided,
		services.ErrTitleRequired,
		services.ErrTitleEmpty,
		services.ErrInvalidStatus,
		services.ErrInvalidParentTask,
		services.ErrInvalidTaskAssignee,
		services.ErrNoNotificationIDs,
		services.ErrProjectTitleRequired,
		services.ErrCategoryNameRequired,
		services.ErrCategorySelfParent,
		services.ErrCategoryIntoSubtree,
		services.ErrInvalidTeamName,
		services.ErrEmailRequired,
		services.ErrInvalidTeamRole,
		services.ErrCommentContentRequired,
		services.ErrInvalidDuration,
		models.ErrInvalidTimeRange,
	}
	forbiddenErrors = []error{
		services.ErrProjectAccessDenied,
		services.ErrNotTeamMember,
		services.ErrNotTimeEntryOwner,
		services.ErrCannotRemoveOwner,
		services.ErrOwnerCannotLeave,
		services.ErrCannotRemoveYourself,
	}
	unprocessableErrors = []error{
		services.ErrCrossProjectDependency,
	}
	conflictErrors = []error{
		services.ErrAlreadyTeamMember,
		services.ErrTimerAlreadyRunning,
	}
)

// respondError maps a service error onto the API error envelope
func respondError(c *gin.Context, err error) {
	var cycle *graph.CycleError
	if errors.As(err, &cycle) {
		apierrors.CycleDetected(c, cycle.Error(), gin.H{
			"task_id":       cycle.TaskID,
			"depends_on_id": cycle.DependsOnID,
		})
		return
	}

	switch {
	case matches(err, notFoundErrors):
		apierrors.NotFound(c, err.Error())
	case matches(err, badRequestErrors):
		apierrors.BadRequest(c, err.Error())
	case matches(err, unprocessableErrors):
		apierrors.UnprocessableEntity(c, err.Error())
	case matches(err, forbiddenErrors):
		apierrors.Forbidden(c, err.Error())
	case matches(err, conflictErrors):
		apierrors.Conflict(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// uintParam parses a positive path parameter
func uintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// optionalUintQuery parses an optional query parameter
func optionalUintQuery(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &v, true
}

// currentUserID aborts with 401 when no user is on the context
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}
