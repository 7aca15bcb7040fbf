package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeam creates a new team owned by the current user
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// ListTeams returns all teams the user is an active member of
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	memberships, err := h.teamService.ListTeamsForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"teams": toTeamsWithRole(memberships),
	})
}

// ListInvitations returns the user's pending invitations
func (h *TeamHandler) ListInvitations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	memberships, err := h.teamService.ListInvitations(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": toTeamsWithRole(memberships),
	})
}

// GetTeam returns team details with its members
// Team is already loaded by RequireTeamAccess middleware
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}

	loaded, members, err := h.teamService.GetTeamWithMembers(team.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDetailDTO(*loaded, members, member.Role))
}

// UpdateTeam updates a team's name and description
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.teamService.UpdateTeam(team.ID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*updated))
}

// DeleteTeam deletes a team; its projects become personal projects of their owners
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(team.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

// InviteMember invites a registered user by email
func (h *TeamHandler) InviteMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Email string          `json:"email" binding:"required"`
		Role  models.TeamRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.InviteMember(services.InviteMemberInput{
		TeamID:    team.ID,
		InviterID: userID,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamMemberDTO(*member))
}

// AcceptInvitation activates the current user's pending membership
func (h *TeamHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	member, err := h.teamService.AcceptInvitation(team.ID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team": dto.ToTeamDTO(team),
		"role": member.Role,
	})
}

// AssignRole changes the role of a member
func (h *TeamHandler) AssignRole(c *gin.Context) {
	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	targetID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	var req struct {
		Role models.TeamRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.AssignRole(team.ID, targetID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": member.UserID,
		"role":    member.Role,
	})
}

// RemoveMember removes a member from the team
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	targetID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(team.ID, userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// LeaveTeam ends the current user's membership
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, _, ok := teamFromContext(c)
	if !ok {
		return
	}

	if err := h.teamService.LeaveTeam(team.ID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Left team successfully",
	})
}

func toTeamsWithRole(memberships []models.TeamMembership) []dto.TeamWithRoleDTO {
	items := make([]dto.TeamWithRoleDTO, len(memberships))
	for i, m := range memberships {
		items[i] = dto.ToTeamWithRoleDTO(m)
	}
	return items
}
