package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMarkRead_ScopesUpdateToRecipientsUnreadRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE recipient_id = \$2 AND id IN \(\$3,\$4\) AND is_read = \$5`).
		WithArgs(true, 7, 11, 12, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.MarkRead(7, []uint64{11, 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead_EmptyIDsSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	updated, err := NewNotificationRepository(db).MarkRead(7, nil)
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithActivity_RollsBackWhenNotificationsFail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	projectID := uint64(3)
	notifications, err := repo.CreateWithActivity(&models.Activity{
		ActorID:    1,
		Verb:       models.VerbMentioned,
		TargetKind: models.TargetTask,
		TargetID:   5,
		ProjectID:  &projectID,
	}, []uint64{2, 4})

	require.Error(t, err)
	assert.Nil(t, notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}
