package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/testutil"
)

func TestTeam_InvitationLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	dev := testutil.CreateUser(t, db, "Dev@Example.com")

	s := NewTeamService(repository.NewTeamRepository(db), repository.NewUserRepository(db))

	team, err := s.CreateTeam(CreateTeamInput{Name: "Platform Team", OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Contains(t, team.Slug, "platform-team")

	teams, err := s.ListTeamsForUser(owner.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, models.TeamRoleOwner, teams[0].Role)

	member, err := s.InviteMember(InviteMemberInput{TeamID: team.ID, InviterID: owner.ID, Email: "dev@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPending, member.Status)
	assert.Equal(t, models.TeamRoleMember, member.Role)

	_, err = s.InviteMember(InviteMemberInput{TeamID: team.ID, InviterID: owner.ID, Email: "dev@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyTeamMember)

	invitations, err := s.ListInvitations(dev.ID)
	require.NoError(t, err)
	require.Len(t, invitations, 1)

	teams, err = s.ListTeamsForUser(dev.ID)
	require.NoError(t, err)
	assert.Empty(t, teams, "pending members are not active")

	accepted, err := s.AcceptInvitation(team.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipActive, accepted.Status)
	assert.NotNil(t, accepted.JoinedAt)

	_, err = s.AcceptInvitation(team.ID, dev.ID)
	assert.ErrorIs(t, err, ErrNoPendingInvitation)

	require.NoError(t, s.LeaveTeam(team.ID, dev.ID))
	teams, err = s.ListTeamsForUser(dev.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestTeam_OwnerProtections(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	admin := testutil.CreateUser(t, db, "admin@example.com")
	team := testutil.CreateTeam(t, db, "core", owner.ID)
	testutil.AddMember(t, db, team.ID, admin.ID, models.TeamRoleAdmin, models.MembershipActive)

	s := NewTeamService(repository.NewTeamRepository(db), repository.NewUserRepository(db))

	assert.ErrorIs(t, s.RemoveMember(team.ID, admin.ID, owner.ID), ErrCannotRemoveOwner)
	assert.ErrorIs(t, s.RemoveMember(team.ID, admin.ID, admin.ID), ErrCannotRemoveYourself)
	assert.ErrorIs(t, s.LeaveTeam(team.ID, owner.ID), ErrOwnerCannotLeave)

	_, err := s.InviteMember(InviteMemberInput{TeamID: team.ID, InviterID: owner.ID, Email: "nobody@example.com"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.InviteMember(InviteMemberInput{TeamID: team.ID, InviterID: owner.ID, Email: "admin@example.com", Role: models.TeamRoleOwner})
	assert.ErrorIs(t, err, ErrInvalidTeamRole)

	_, err = s.AssignRole(team.ID, admin.ID, "wizard")
	assert.ErrorIs(t, err, ErrInvalidTeamRole)

	require.NoError(t, s.RemoveMember(team.ID, owner.ID, admin.ID))
	var removed models.TeamMembership
	require.NoError(t, db.Where("team_id = ? AND user_id = ?", team.ID, admin.ID).First(&removed).Error)
	assert.Equal(t, models.MembershipRemoved, removed.Status)
}

func TestTeam_DeleteDetachesProjects(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	team := testutil.CreateTeam(t, db, "core", owner.ID)
	project := testutil.CreateProject(t, db, "Launch", owner.ID, &team.ID)

	s := NewTeamService(repository.NewTeamRepository(db), repository.NewUserRepository(db))
	require.NoError(t, s.DeleteTeam(team.ID))

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, project.ID).Error)
	assert.Nil(t, reloaded.TeamID)

	assert.ErrorIs(t, s.DeleteTeam(team.ID), ErrTeamNotFound)
}
