package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/testutil"
	"gorm.io/datatypes"
)

func TestProject_AccessThroughTeam(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	member := testutil.CreateUser(t, db, "member@example.com")
	pending := testutil.CreateUser(t, db, "pending@example.com")
	stranger := testutil.CreateUser(t, db, "stranger@example.com")

	team := testutil.CreateTeam(t, db, "core", owner.ID)
	testutil.AddMember(t, db, team.ID, member.ID, models.TeamRoleMember, models.MembershipActive)
	testutil.AddMember(t, db, team.ID, pending.ID, models.TeamRoleMember, models.MembershipPending)

	s := NewProjectService(repository.NewProjectRepository(db), repository.NewTeamRepository(db), repository.NewCategoryRepository(db))

	project, err := s.CreateProject(CreateProjectInput{
		Title:   "Launch",
		OwnerID: owner.ID,
		TeamID:  &team.ID,
		Config:  datatypes.JSON(`{"board":"kanban"}`),
	})
	require.NoError(t, err)
	require.NotNil(t, project.Team)
	assert.Equal(t, "core", project.Team.Name)

	for _, tc := range []struct {
		user *models.User
		want bool
	}{
		{owner, true},
		{member, true},
		{pending, false},
		{stranger, false},
	} {
		ok, err := s.CanAccess(project.ID, tc.user.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, tc.user.Email)
	}

	_, err = s.CreateProject(CreateProjectInput{Title: "Side", OwnerID: stranger.ID, TeamID: &team.ID})
	assert.ErrorIs(t, err, ErrNotTeamMember)

	listed, err := s.ListProjects(member.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestProject_CloneCopiesTasks(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	source := testutil.CreateProject(t, db, "Template", owner.ID, nil)
	a := testutil.CreateTask(t, db, source.ID, "Plan", models.TaskStatusDone)
	b := testutil.CreateTask(t, db, source.ID, "Execute", models.TaskStatusInProgress)
	testutil.AddDependency(t, db, b, a)

	s := NewProjectService(repository.NewProjectRepository(db), repository.NewTeamRepository(db), repository.NewCategoryRepository(db))

	template, err := s.MakeTemplate(source.ID)
	require.NoError(t, err)
	assert.True(t, template.IsTemplate)

	clone, err := s.CloneProject(CloneProjectInput{SourceID: source.ID, ActorID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Template (Clone)", clone.Title)
	assert.Equal(t, other.ID, clone.OwnerID)
	assert.False(t, clone.IsTemplate)

	var tasks []models.Task
	require.NoError(t, db.Where("project_id = ?", clone.ID).Order("id").Find(&tasks).Error)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, models.TaskStatusTodo, task.Status)
	}

	var edges int64
	require.NoError(t, db.Model(&models.TaskDependency{}).Where("project_id = ?", clone.ID).Count(&edges).Error)
	assert.Zero(t, edges)

	named, err := s.CloneProject(CloneProjectInput{SourceID: source.ID, ActorID: other.ID, Title: "Q3 launch"})
	require.NoError(t, err)
	assert.Equal(t, "Q3 launch", named.Title)
}

func TestProject_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	s := NewProjectService(repository.NewProjectRepository(db), repository.NewTeamRepository(db), repository.NewCategoryRepository(db))

	_, err := s.CreateProject(CreateProjectInput{Title: " ", OwnerID: owner.ID})
	assert.ErrorIs(t, err, ErrProjectTitleRequired)

	missing := uint64(42)
	_, err = s.CreateProject(CreateProjectInput{Title: "X", OwnerID: owner.ID, CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = s.GetProject(999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
