package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/services"
	"github.com/yukikurage/project-hub-api/internal/utils"
	"go.uber.org/zap"
)

const streamKeepAlive = 25 * time.Second

type NotificationHandler struct {
	notificationService *services.NotificationService
	subscriber          realtime.Subscriber
	logger              *zap.Logger
}

// NewNotificationHandler wires the REST side; subscriber may be nil when live
// delivery is disabled, in which case Stream answers 503.
func NewNotificationHandler(notificationService *services.NotificationService, subscriber realtime.Subscriber, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		notificationService: notificationService,
		subscriber:          subscriber,
		logger:              logger.Named("notifications"),
	}
}

// ListNotifications returns the current user's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	notifications, total, err := h.notificationService.ListNotifications(services.ListNotificationsInput{
		RecipientID: userID,
		UnreadOnly:  parseBoolQuery(c, "unread", false),
		Page:        params.Page,
		PageSize:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": dto.ToNotificationDTOs(notifications),
		"pagination":    params.Response(total),
	})
}

// MarkRead flips is_read on the given notifications of the current user.
// Ids owned by other users or already read are ignored.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		IDs []uint64 `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.notificationService.MarkRead(userID, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MarkReadResponse{Updated: updated})
}

// Stream relays the current user's live topic as server-sent events
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if h.subscriber == nil {
		apierrors.ServiceUnavailable(c, "Live notifications are disabled")
		return
	}

	ctx := c.Request.Context()
	topic := realtime.TopicForUser(userID)
	messages, closeFn, err := h.subscriber.Subscribe(ctx, topic)
	if err != nil {
		h.logger.Error("subscribe failed", zap.String("topic", topic), zap.Error(err))
		apierrors.ServiceUnavailable(c, "Live notifications are unavailable")
		return
	}
	defer func() {
		if err := closeFn(); err != nil {
			h.logger.Warn("unsubscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent(constants.LiveMessageType, string(msg))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}
