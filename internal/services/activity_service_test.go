package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/events"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/testutil"
)

func TestTargetRegistry_UnknownKind(t *testing.T) {
	r := NewTargetRegistry()
	r.Register(models.TargetTask, func(id uint64) (string, error) { return "Write docs", nil })

	label, err := r.Label(models.TargetRef{Kind: models.TargetTask, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Write docs", label)

	_, err = r.Label(models.TargetRef{Kind: "invoice", ID: 1})
	assert.Error(t, err)
}

func TestActivityService_FeedOnlyAccessibleProjects(t *testing.T) {
	db := testutil.NewDB(t)

	alice := testutil.CreateUser(t, db, "alice@example.com")
	bob := testutil.CreateUser(t, db, "bob@example.com")
	mine := testutil.CreateProject(t, db, "Mine", alice.ID, nil)
	theirs := testutil.CreateProject(t, db, "Theirs", bob.ID, nil)
	myTask := testutil.CreateTask(t, db, mine.ID, "Draft release notes", models.TaskStatusTodo)
	theirTask := testutil.CreateTask(t, db, theirs.ID, "Secret plan", models.TaskStatusTodo)

	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	notifications := NewNotificationService(taskRepo, repository.NewUserRepository(db), repository.NewNotificationRepository(db), nil, nil)

	ctx := context.Background()
	require.NoError(t, notifications.HandleAssignmentCreated(ctx, events.AssignmentCreated{TaskID: myTask.ID, UserID: alice.ID}))
	require.NoError(t, notifications.HandleAssignmentCreated(ctx, events.AssignmentCreated{TaskID: theirTask.ID, UserID: bob.ID}))

	svc := NewActivityService(
		repository.NewActivityRepository(db),
		projectRepo,
		NewDefaultTargetRegistry(taskRepo, projectRepo, repository.NewCommentRepository(db), repository.NewTeamRepository(db)),
		nil,
	)

	feed, err := svc.Feed(alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.VerbAssigned, feed[0].Verb)
	assert.Equal(t, models.TargetRef{Kind: models.TargetTask, ID: myTask.ID}, feed[0].Target)
	assert.Equal(t, "Draft release notes", feed[0].TargetLabel)
	assert.Equal(t, alice.ID, feed[0].Actor.ID)
}

func TestActivityService_DeletedTargetKeepsEmptyLabel(t *testing.T) {
	db := testutil.NewDB(t)

	alice := testutil.CreateUser(t, db, "alice@example.com")
	project := testutil.CreateProject(t, db, "Mine", alice.ID, nil)
	task := testutil.CreateTask(t, db, project.ID, "Short lived", models.TaskStatusTodo)

	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	notifications := NewNotificationService(taskRepo, repository.NewUserRepository(db), repository.NewNotificationRepository(db), nil, nil)
	require.NoError(t, notifications.HandleAssignmentCreated(context.Background(), events.AssignmentCreated{TaskID: task.ID, UserID: alice.ID}))
	require.NoError(t, taskRepo.Delete(task.ID))

	svc := NewActivityService(
		repository.NewActivityRepository(db),
		projectRepo,
		NewDefaultTargetRegistry(taskRepo, projectRepo, repository.NewCommentRepository(db), repository.NewTeamRepository(db)),
		nil,
	)

	feed, err := svc.Feed(alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Empty(t, feed[0].TargetLabel)
}
