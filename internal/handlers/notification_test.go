package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/dto"
	"github.com/yukikurage/project-hub-api/internal/events"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/services"
	"github.com/yukikurage/project-hub-api/internal/testutil"
	"gorm.io/gorm"
)

type unavailableSubscriber struct{}

func (unavailableSubscriber) Subscribe(context.Context, string) (<-chan []byte, func() error, error) {
	return nil, nil, errors.New("connection refused")
}

type notificationTestEnv struct {
	db      *gorm.DB
	service *services.NotificationService
	user    *models.User
	task    *models.Task
}

func setupNotificationTestEnv(t *testing.T) notificationTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	service := services.NewNotificationService(
		repository.NewTaskRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
		nil,
		nil,
	)

	user := testutil.CreateUser(t, db, "dana@example.com")
	project := testutil.CreateProject(t, db, "Launch", user.ID, nil)
	task := testutil.CreateTask(t, db, project.ID, "Write launch notes", models.TaskStatusTodo)

	return notificationTestEnv{db: db, service: service, user: user, task: task}
}

// notify produces one notification for the env user
func (env notificationTestEnv) notify(t *testing.T) {
	t.Helper()
	require.NoError(t, env.service.HandleAssignmentCreated(context.Background(), events.AssignmentCreated{
		TaskID:  env.task.ID,
		UserID:  env.user.ID,
		ActorID: env.user.ID,
	}))
}

func notificationTestContext(method, url, body string, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)
	return c, w
}

func TestNotificationHandler_ListAndMarkRead(t *testing.T) {
	env := setupNotificationTestEnv(t)
	env.notify(t)
	env.notify(t)

	handler := NewNotificationHandler(env.service, nil, nil)

	c, w := notificationTestContext(http.MethodGet, "/api/notifications?unread=true", "", env.user.ID)
	handler.ListNotifications(c)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Notifications []dto.NotificationDTO `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, models.VerbAssigned, list.Notifications[0].Activity.Verb)
	assert.False(t, list.Notifications[0].IsRead)

	first := list.Notifications[0].ID
	body := `{"ids":[` + strconv.FormatUint(first, 10) + `,` + strconv.FormatUint(first, 10) + `,999]}`

	c, w = notificationTestContext(http.MethodPost, "/api/notifications/mark_read", body, env.user.ID)
	handler.MarkRead(c)
	require.Equal(t, http.StatusOK, w.Code)

	var marked dto.MarkReadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &marked))
	assert.Equal(t, int64(1), marked.Updated)

	// a second call finds nothing left to flip
	c, w = notificationTestContext(http.MethodPost, "/api/notifications/mark_read", body, env.user.ID)
	handler.MarkRead(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &marked))
	assert.Equal(t, int64(0), marked.Updated)
}

func TestNotificationHandler_MarkRead_OtherRecipient(t *testing.T) {
	env := setupNotificationTestEnv(t)
	env.notify(t)

	var n models.Notification
	require.NoError(t, env.db.First(&n).Error)

	other := testutil.CreateUser(t, env.db, "eve@example.com")
	handler := NewNotificationHandler(env.service, nil, nil)

	c, w := notificationTestContext(http.MethodPost, "/api/notifications/mark_read", `{"ids":[`+strconv.FormatUint(n.ID, 10)+`]}`, other.ID)
	handler.MarkRead(c)

	require.Equal(t, http.StatusOK, w.Code)
	var marked dto.MarkReadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &marked))
	assert.Equal(t, int64(0), marked.Updated)
}

func TestNotificationHandler_MarkRead_EmptyIDs(t *testing.T) {
	env := setupNotificationTestEnv(t)
	handler := NewNotificationHandler(env.service, nil, nil)

	c, w := notificationTestContext(http.MethodPost, "/api/notifications/mark_read", `{"ids":[]}`, env.user.ID)
	handler.MarkRead(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_Stream_Unavailable(t *testing.T) {
	env := setupNotificationTestEnv(t)

	tests := []struct {
		name       string
		subscriber realtime.Subscriber
	}{
		{name: "disabled", subscriber: nil},
		{name: "subscribe fails", subscriber: unavailableSubscriber{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewNotificationHandler(env.service, tt.subscriber, nil)

			c, w := notificationTestContext(http.MethodGet, "/api/notifications/stream", "", env.user.ID)
			handler.Stream(c)

			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		})
	}
}
