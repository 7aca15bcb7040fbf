package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/testutil"
	"gorm.io/gorm"
)

func TestTaskRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	project := testutil.CreateProject(t, db, "Launch", owner.ID, nil)

	root := testutil.CreateTask(t, db, project.ID, "Root", models.TaskStatusTodo)
	done := testutil.CreateTask(t, db, project.ID, "Done", models.TaskStatusDone)
	child := &models.Task{ProjectID: project.ID, Title: "Child", Status: models.TaskStatusTodo, ParentID: &root.ID}
	require.NoError(t, db.Omit("Project").Create(child).Error)

	repo := NewTaskRepository(db)
	_, err := repo.AssignUsers(child.ID, []uint64{owner.ID})
	require.NoError(t, err)

	all, total, err := repo.List(TaskFilter{ProjectIDs: []uint64{project.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	status := models.TaskStatusDone
	byStatus, _, err := repo.List(TaskFilter{ProjectIDs: []uint64{project.ID}, Status: &status})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, done.ID, byStatus[0].ID)

	roots, _, err := repo.List(TaskFilter{ProjectIDs: []uint64{project.ID}, RootsOnly: true})
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	children, _, err := repo.List(TaskFilter{ProjectIDs: []uint64{project.ID}, ParentID: &root.ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	mine, _, err := repo.List(TaskFilter{ProjectIDs: []uint64{project.ID}, AssignedUserID: &owner.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Assignments, 1)
	assert.Equal(t, "owner@example.com", mine[0].Assignments[0].User.Email)

	page, total, err := repo.List(TaskFilter{ProjectIDs: []uint64{project.ID}, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	none, total, err := repo.List(TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestTaskRepository_AssignUsersReportsOnlyNewAssignments(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	dev := testutil.CreateUser(t, db, "dev@example.com")
	project := testutil.CreateProject(t, db, "Launch", owner.ID, nil)
	task := testutil.CreateTask(t, db, project.ID, "Build", models.TaskStatusTodo)

	repo := NewTaskRepository(db)

	created, err := repo.AssignUsers(task.ID, []uint64{owner.ID, dev.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{owner.ID, dev.ID}, created)

	created, err = repo.AssignUsers(task.ID, []uint64{owner.ID})
	require.NoError(t, err)
	assert.Empty(t, created)

	require.NoError(t, repo.UnassignUsers(task.ID, []uint64{dev.ID}))
	var assignment models.TaskAssignment
	err = db.Where("task_id = ? AND user_id = ?", task.ID, dev.ID).First(&assignment).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// A soft-deleted assignment is restored and counts as new
	created, err = repo.AssignUsers(task.ID, []uint64{dev.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{dev.ID}, created)

	require.NoError(t, db.Where("task_id = ? AND user_id = ?", task.ID, dev.ID).First(&assignment).Error)
	assert.Equal(t, dev.ID, assignment.UserID)
	assert.False(t, assignment.DeletedAt.Valid)
}

func TestDependencyRepository_InsertCheckedAbortsOnCheckError(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	project := testutil.CreateProject(t, db, "Launch", owner.ID, nil)
	a := testutil.CreateTask(t, db, project.ID, "A", models.TaskStatusTodo)
	b := testutil.CreateTask(t, db, project.ID, "B", models.TaskStatusTodo)

	repo := NewDependencyRepository(db)
	edge := &models.TaskDependency{TaskID: a.ID, DependsOnID: b.ID, ProjectID: project.ID}

	errRejected := assert.AnError
	err := repo.InsertChecked(edge, func(edges []models.TaskDependency) error {
		assert.Empty(t, edges)
		return errRejected
	})
	assert.ErrorIs(t, err, errRejected)

	edges, err := repo.ListByProject(project.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)

	require.NoError(t, repo.InsertChecked(edge, func([]models.TaskDependency) error { return nil }))
	edges, err = repo.ListByProject(project.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestTaskRepository_DeleteRemovesSubtree(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	project := testutil.CreateProject(t, db, "Launch", owner.ID, nil)

	root := testutil.CreateTask(t, db, project.ID, "Root", models.TaskStatusTodo)
	child := &models.Task{ProjectID: project.ID, Title: "Child", Status: models.TaskStatusTodo, ParentID: &root.ID}
	require.NoError(t, db.Omit("Project").Create(child).Error)
	grandchild := &models.Task{ProjectID: project.ID, Title: "Grandchild", Status: models.TaskStatusTodo, ParentID: &child.ID}
	require.NoError(t, db.Omit("Project").Create(grandchild).Error)
	other := testutil.CreateTask(t, db, project.ID, "Other", models.TaskStatusTodo)
	testutil.AddDependency(t, db, other, grandchild)

	repo := NewTaskRepository(db)
	_, err := repo.AssignUsers(grandchild.ID, []uint64{owner.ID})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(root.ID))

	var remaining []uint64
	require.NoError(t, db.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &remaining).Error)
	assert.Equal(t, []uint64{other.ID}, remaining)

	var edges, assignments int64
	require.NoError(t, db.Model(&models.TaskDependency{}).Where("project_id = ?", project.ID).Count(&edges).Error)
	require.NoError(t, db.Model(&models.TaskAssignment{}).Where("task_id = ?", grandchild.ID).Count(&assignments).Error)
	assert.Zero(t, edges)
	assert.Zero(t, assignments)
}

func TestTaskRepository_AssignUsersLocksTaskRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM "tasks" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`SELECT "user_id" FROM "task_assignments"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	created, err := repo.AssignUsers(5, []uint64{2})
	require.Error(t, err)
	assert.Empty(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
