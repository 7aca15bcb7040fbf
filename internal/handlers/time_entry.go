package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/services"
)

type TimeEntryHandler struct {
	timeService *services.TimeEntryService
}

func NewTimeEntryHandler(timeService *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{timeService: timeService}
}

// StartTimer opens a running entry on the task for the current user
func (h *TimeEntryHandler) StartTimer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Description string `json:"description"`
	}
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	entry, err := h.timeService.StartTimer(task.ID, userID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

// StopTimer closes the current user's running entry
func (h *TimeEntryHandler) StopTimer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entry, err := h.timeService.StopTimer(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// LogTime records a finished entry after the fact
func (h *TimeEntryHandler) LogTime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Description     string     `json:"description"`
		StartTime       time.Time  `json:"start_time" binding:"required"`
		EndTime         *time.Time `json:"end_time"`
		DurationSeconds int64      `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.timeService.LogTime(services.ManualEntryInput{
		TaskID:      task.ID,
		UserID:      userID,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    time.Duration(req.DurationSeconds) * time.Second,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

// UpdateEntry edits one of the current user's entries; duration follows the endpoints
func (h *TimeEntryHandler) UpdateEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entryID, ok := uintParam(c, "entry_id")
	if !ok {
		return
	}

	var req struct {
		Description *string    `json:"description"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.timeService.UpdateEntry(entryID, userID, services.UpdateTimeEntryInput{
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// ListEntries returns the task's entries and their total
func (h *TimeEntryHandler) ListEntries(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	entries, err := h.timeService.ListEntries(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	total, err := h.timeService.TotalTime(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.TimeEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = dto.ToTimeEntryDTO(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":            items,
		"total_time_seconds": int64(total.Seconds()),
	})
}
