package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/testutil"
)

func newTimeEntryFixture(t *testing.T) (*TimeEntryService, *models.Task, *models.User) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "worker@example.com")
	project := testutil.CreateProject(t, db, "Launch", user.ID, nil)
	task := testutil.CreateTask(t, db, project.ID, "Build", models.TaskStatusInProgress)

	service := NewTimeEntryService(repository.NewTimeEntryRepository(db), repository.NewTaskRepository(db))
	return service, task, user
}

func TestTimer_StartStop(t *testing.T) {
	service, task, user := newTimeEntryFixture(t)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return start }

	entry, err := service.StartTimer(task.ID, user.ID, "pairing")
	require.NoError(t, err)
	assert.True(t, entry.Running())

	_, err = service.StartTimer(task.ID, user.ID, "again")
	assert.ErrorIs(t, err, ErrTimerAlreadyRunning)

	service.now = func() time.Time { return start.Add(90 * time.Minute) }
	stopped, err := service.StopTimer(user.ID)
	require.NoError(t, err)
	assert.False(t, stopped.Running())
	assert.Equal(t, 90*time.Minute, stopped.Duration)

	_, err = service.StopTimer(user.ID)
	assert.ErrorIs(t, err, ErrNoRunningTimer)
}

func TestUpdateEntry_RecomputesDuration(t *testing.T) {
	service, task, user := newTimeEntryFixture(t)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entry, err := service.LogTime(ManualEntryInput{
		TaskID:    task.ID,
		UserID:    user.ID,
		StartTime: start,
		Duration:  45 * time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, entry.Duration)

	newEnd := start.Add(60 * time.Minute)
	updated, err := service.UpdateEntry(entry.ID, user.ID, UpdateTimeEntryInput{EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, updated.Duration)

	total, err := service.TotalTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, total)
}

func TestUpdateEntry_Rules(t *testing.T) {
	service, task, user := newTimeEntryFixture(t)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	entry, err := service.LogTime(ManualEntryInput{TaskID: task.ID, UserID: user.ID, StartTime: start, EndTime: &end})
	require.NoError(t, err)

	_, err = service.UpdateEntry(entry.ID, user.ID+1, UpdateTimeEntryInput{})
	assert.ErrorIs(t, err, ErrNotTimeEntryOwner)

	before := start.Add(-time.Hour)
	_, err = service.UpdateEntry(entry.ID, user.ID, UpdateTimeEntryInput{EndTime: &before})
	assert.ErrorIs(t, err, models.ErrInvalidTimeRange)

	_, err = service.UpdateEntry(999, user.ID, UpdateTimeEntryInput{})
	assert.ErrorIs(t, err, ErrTimeEntryNotFound)
}

func TestLogTime_Validation(t *testing.T) {
	service, task, user := newTimeEntryFixture(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := service.LogTime(ManualEntryInput{TaskID: task.ID, UserID: user.ID, StartTime: start})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = service.LogTime(ManualEntryInput{TaskID: 999, UserID: user.ID, StartTime: start, Duration: time.Minute})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
