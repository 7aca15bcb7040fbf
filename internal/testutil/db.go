// Package testutil opens throwaway SQLite databases and seeds fixtures for
// package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory database. The pool is pinned to one
// connection because every new SQLite memory connection is a fresh database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Role: models.UserRoleUser, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTeam creates a team with owner as its active owner.
func CreateTeam(t testing.TB, db *gorm.DB, name string, ownerID uint64) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, Slug: name, CreatedByID: &ownerID}
	require.NoError(t, db.Create(team).Error)
	AddMember(t, db, team.ID, ownerID, models.TeamRoleOwner, models.MembershipActive)
	return team
}

func AddMember(t testing.TB, db *gorm.DB, teamID, userID uint64, role models.TeamRole, status models.MembershipStatus) *models.TeamMembership {
	t.Helper()
	member := &models.TeamMembership{TeamID: teamID, UserID: userID, Role: role, Status: status}
	require.NoError(t, db.Omit("Team", "User").Create(member).Error)
	return member
}

func CreateProject(t testing.TB, db *gorm.DB, title string, ownerID uint64, teamID *uint64) *models.Project {
	t.Helper()
	project := &models.Project{Title: title, OwnerID: ownerID, TeamID: teamID}
	require.NoError(t, db.Omit("Owner", "Team", "Category").Create(project).Error)
	return project
}

func CreateTask(t testing.TB, db *gorm.DB, projectID uint64, title string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{ProjectID: projectID, Title: title, Status: status}
	require.NoError(t, db.Omit("Project").Create(task).Error)
	return task
}

func AddDependency(t testing.TB, db *gorm.DB, task, dependsOn *models.Task) {
	t.Helper()
	require.NoError(t, db.Create(&models.TaskDependency{
		TaskID:      task.ID,
		DependsOnID: dependsOn.ID,
		ProjectID:   task.ProjectID,
	}).Error)
}
