package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrInvalidTeamName      = errors.New("team name cannot be empty")
	ErrSlugGenerationFailed = errors.New("failed to generate team slug")
	ErrEmailRequired        = errors.New("email is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyTeamMember    = errors.New("user already invited or member")
	ErrTeamMemberNotFound   = errors.New("team member not found")
	ErrInvalidTeamRole      = errors.New("invalid team role")
	ErrCannotRemoveOwner    = errors.New("cannot remove owner")
	ErrOwnerCannotLeave     = errors.New("owner cannot leave the team")
	ErrCannotRemoveYourself = errors.New("cannot remove yourself from the team")
	ErrNoPendingInvitation  = errors.New("no pending invitation for this team")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// InviteMemberInput represents parameters to invite a user by email.
type InviteMemberInput struct {
	TeamID    uint64
	InviterID uint64
	Email     string
	Role      models.TeamRole
}

// CreateTeam creates a new team; the creator becomes its active owner.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	slug, err := utils.UniqueSlug(name)
	if err != nil {
		return nil, ErrSlugGenerationFailed
	}

	team := &models.Team{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
	}

	if err := s.teamRepo.CreateWithOwner(team, input.OwnerID); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// ListTeamsForUser returns the teams the user actively belongs to.
func (s *TeamService) ListTeamsForUser(userID uint64) ([]models.TeamMembership, error) {
	memberships, err := s.teamRepo.ListMembersByUserID(userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return memberships, nil
}

// ListInvitations returns the user's pending invitations.
func (s *TeamService) ListInvitations(userID uint64) ([]models.TeamMembership, error) {
	memberships, err := s.teamRepo.ListMembersByUserID(userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	pending := make([]models.TeamMembership, 0, len(memberships))
	for _, m := range memberships {
		if m.Status == models.MembershipPending {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// GetTeamWithMembers returns a team and all of its members.
func (s *TeamService) GetTeamWithMembers(teamID uint64) (*models.Team, []models.TeamMembership, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// UpdateTeam updates a team's name and description.
func (s *TeamService) UpdateTeam(teamID uint64, name, description *string) (*models.Team, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, ErrInvalidTeamName
		}
		team.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		team.Description = *description
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes a team.
func (s *TeamService) DeleteTeam(teamID uint64) error {
	if _, err := s.findTeam(teamID); err != nil {
		return err
	}

	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

// InviteMember creates a pending membership for the user with the email.
func (s *TeamService) InviteMember(input InviteMemberInput) (*models.TeamMembership, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	role := input.Role
	if role == "" {
		role = models.TeamRoleMember
	}
	if !role.Valid() || role == models.TeamRoleOwner {
		return nil, ErrInvalidTeamRole
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.teamRepo.FindMember(input.TeamID, user.ID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	inviterID := input.InviterID
	member := &models.TeamMembership{
		TeamID:      input.TeamID,
		UserID:      user.ID,
		Role:        role,
		Status:      models.MembershipPending,
		InvitedByID: &inviterID,
	}
	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to team: %w", err)
	}

	member.User = *user
	return member, nil
}

// AcceptInvitation activates the user's pending membership.
func (s *TeamService) AcceptInvitation(teamID, userID uint64) (*models.TeamMembership, error) {
	member, err := s.findMember(teamID, userID)
	if err != nil {
		return nil, err
	}
	if member.Status != models.MembershipPending {
		return nil, ErrNoPendingInvitation
	}

	member.Status = models.MembershipActive
	if err := s.teamRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}
	return member, nil
}

// AssignRole changes a member's role.
func (s *TeamService) AssignRole(teamID, userID uint64, role models.TeamRole) (*models.TeamMembership, error) {
	if !role.Valid() {
		return nil, ErrInvalidTeamRole
	}

	member, err := s.findMember(teamID, userID)
	if err != nil {
		return nil, err
	}

	member.Role = role
	if err := s.teamRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	return member, nil
}

// RemoveMember marks a membership as removed. Owners cannot be removed.
func (s *TeamService) RemoveMember(teamID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	member, err := s.findMember(teamID, targetID)
	if err != nil {
		return err
	}
	if member.Role == models.TeamRoleOwner {
		return ErrCannotRemoveOwner
	}

	member.Status = models.MembershipRemoved
	if err := s.teamRepo.UpdateMember(member); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// LeaveTeam marks the user's own membership as left.
func (s *TeamService) LeaveTeam(teamID, userID uint64) error {
	member, err := s.findMember(teamID, userID)
	if err != nil {
		return err
	}
	if member.Role == models.TeamRoleOwner {
		return ErrOwnerCannotLeave
	}

	member.Status = models.MembershipLeft
	if err := s.teamRepo.UpdateMember(member); err != nil {
		return fmt.Errorf("failed to leave team: %w", err)
	}
	return nil
}

func (s *TeamService) findTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func (s *TeamService) findMember(teamID, userID uint64) (*models.TeamMembership, error) {
	member, err := s.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	return member, nil
}
