package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/testutil"
)

func TestTaskService_UpdateTaskRejectsParentLoops(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	project := testutil.CreateProject(t, db, "Launch", owner.ID, nil)
	s := NewTaskService(repository.NewTaskRepository(db), repository.NewProjectRepository(db), nil, nil)

	a := testutil.CreateTask(t, db, project.ID, "A", models.TaskStatusTodo)
	b := testutil.CreateTask(t, db, project.ID, "B", models.TaskStatusTodo)
	c := testutil.CreateTask(t, db, project.ID, "C", models.TaskStatusTodo)

	_, err := s.UpdateTask(a.ID, UpdateTaskInput{ParentID: &a.ID})
	assert.ErrorIs(t, err, ErrInvalidParentTask)

	_, err = s.UpdateTask(b.ID, UpdateTaskInput{ParentID: &a.ID})
	require.NoError(t, err)
	_, err = s.UpdateTask(a.ID, UpdateTaskInput{ParentID: &b.ID})
	assert.ErrorIs(t, err, ErrInvalidParentTask)

	_, err = s.UpdateTask(c.ID, UpdateTaskInput{ParentID: &b.ID})
	require.NoError(t, err)
	_, err = s.UpdateTask(a.ID, UpdateTaskInput{ParentID: &c.ID})
	assert.ErrorIs(t, err, ErrInvalidParentTask)

	var stored models.Task
	require.NoError(t, db.First(&stored, a.ID).Error)
	assert.Nil(t, stored.ParentID)

	// Moving a leaf under a sibling branch is fine
	d := testutil.CreateTask(t, db, project.ID, "D", models.TaskStatusTodo)
	updated, err := s.UpdateTask(c.ID, UpdateTaskInput{ParentID: &d.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, d.ID, *updated.ParentID)
}
