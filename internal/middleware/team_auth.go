package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/database"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
)

// RequireTeamAccess checks if the user is an active member of the team
func RequireTeamAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := loadTeamMembership(c)
		if !ok {
			return
		}

		if member.Status != models.MembershipActive {
			apierrors.NotFound(c, "Team not found")
			return
		}

		c.Next()
	}
}

// RequireTeamMembership only requires a membership row in any status. Used
// by routes a pending invitee must reach.
func RequireTeamMembership() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := loadTeamMembership(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireTeamManager allows owners and admins; runs after RequireTeamAccess
func RequireTeamManager() gin.HandlerFunc {
	return requireTeamRole("Only team owners and admins can perform this action", models.TeamRoleOwner, models.TeamRoleAdmin)
}

// RequireTeamOwner allows owners only; runs after RequireTeamAccess
func RequireTeamOwner() gin.HandlerFunc {
	return requireTeamRole("Only team owners can perform this action", models.TeamRoleOwner)
}

func requireTeamRole(message string, roles ...models.TeamRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get("team_member")
		if !exists {
			apierrors.Forbidden(c, "Team access required")
			return
		}

		member, ok := memberInterface.(models.TeamMembership)
		if !ok {
			apierrors.InternalError(c, "Invalid team member data")
			return
		}

		for _, role := range roles {
			if member.Role == role && member.Status == models.MembershipActive {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, message)
	}
}

func loadTeamMembership(c *gin.Context) (models.TeamMembership, bool) {
	var member models.TeamMembership

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid team ID")
		return member, false
	}

	userID, exists := GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Authentication required")
		return member, false
	}

	var team models.Team
	if err := database.GetDB().First(&team, teamID).Error; err != nil {
		apierrors.NotFound(c, "Team not found")
		return member, false
	}

	if err := database.GetDB().
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		// Return 404 instead of 403 to avoid leaking team existence
		apierrors.NotFound(c, "Team not found")
		return member, false
	}

	c.Set("team", team)
	c.Set("team_member", member)
	return member, true
}
