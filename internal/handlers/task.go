package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	depService  *services.DependencyService
}

func NewTaskHandler(taskService *services.TaskService, depService *services.DependencyService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		depService:  depService,
	}
}

// ListTasks returns all tasks accessible by the current user
// Can filter by project_id, status, parent_id, roots_only and assigned_to_me
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := optionalUintQuery(c, "project_id")
	if !ok {
		return
	}
	parentID, ok := optionalUintQuery(c, "parent_id")
	if !ok {
		return
	}

	input := services.ListTasksInput{
		UserID:       userID,
		ProjectID:    projectID,
		ParentID:     parentID,
		RootsOnly:    c.Query("roots_only") == "true",
		AssignedToMe: c.Query("assigned_to_me") == "true",
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		if !s.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &s
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.toTaskDTOs(tasks)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(items, params, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	h.respondTask(c, http.StatusOK, &task)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		ProjectID   uint64            `json:"project_id" binding:"required"`
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		Position    uint              `json:"position"`
		ParentID    *uint64           `json:"parent_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Position:    req.Position,
		ParentID:    req.ParentID,
		CreatorID:   userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondTask(c, http.StatusCreated, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if status, ok := rawReq["status"].(string); ok {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if position, ok := rawReq["position"].(float64); ok && position >= 0 {
		p := uint(position)
		input.Position = &p
	}
	if parent, ok := rawReq["parent_id"]; ok {
		// parent_id was provided (might be null)
		if parent == nil {
			input.ClearParent = true
		} else if parentID, ok := parent.(float64); ok && parentID > 0 {
			id := uint64(parentID)
			input.ParentID = &id
		} else {
			apierrors.BadRequest(c, "Invalid parent_id")
			return
		}
	}

	updated, err := h.taskService.UpdateTask(task.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondTask(c, http.StatusOK, updated)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(task.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ToggleTaskStatus flips a task between todo and done
func (h *TaskHandler) ToggleTaskStatus(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	updated, err := h.taskService.ToggleTaskStatus(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondTask(c, http.StatusOK, updated)
}

type assignUsersRequest struct {
	UserIDs []uint64 `json:"user_ids" binding:"required"`
}

// AssignTask assigns users to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	var req assignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.taskService.AssignUsers(c.Request.Context(), services.AssignUsersInput{
		TaskID:  task.ID,
		ActorID: userID,
		UserIDs: req.UserIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	reloaded, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Users assigned successfully",
		"assigned":    created,
		"assignments": dto.ToTaskDTO(*reloaded, dto.TaskState{}).Assignments,
	})
}

// UnassignTask removes user assignments from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	var req assignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.taskService.UnassignUsers(task.ID, req.UserIDs); err != nil {
		respondError(c, err)
		return
	}

	reloaded, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Users unassigned successfully",
		"assignments": dto.ToTaskDTO(*reloaded, dto.TaskState{}).Assignments,
	})
}

type dependencyRequest struct {
	DependsOnID uint64 `json:"depends_on_id" binding:"required"`
}

// AddDependency makes the task depend on another task of the same project
func (h *TaskHandler) AddDependency(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	var req dependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.depService.AddDependency(task.ID, req.DependsOnID); err != nil {
		respondError(c, err)
		return
	}

	reloaded, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondTask(c, http.StatusCreated, reloaded)
}

// RemoveDependency deletes an edge; missing edges are not an error
func (h *TaskHandler) RemoveDependency(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	dependsOnID, ok := uintParam(c, "depends_on_id")
	if !ok {
		return
	}

	if err := h.depService.RemoveDependency(task.ID, dependsOnID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dependency removed successfully",
	})
}

// ValidateDependency checks a prospective edge without creating it
func (h *TaskHandler) ValidateDependency(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	var req dependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.depService.ValidateNewDependency(task.ID, req.DependsOnID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// DependencyGraph returns the task's transitive prerequisites and dependents
func (h *TaskHandler) DependencyGraph(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	ancestors, err := h.depService.Ancestors(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	descendants, err := h.depService.Descendants(task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	ancestorDTOs, err := h.toTaskDTOs(ancestors)
	if err != nil {
		respondError(c, err)
		return
	}
	descendantDTOs, err := h.toTaskDTOs(descendants)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DependencyGraphDTO{
		TaskID:      task.ID,
		Ancestors:   ancestorDTOs,
		Descendants: descendantDTOs,
	})
}

// BlockedTasks lists the project's tasks waiting on an open dependency
// Project is already loaded by RequireProjectAccess middleware
func (h *TaskHandler) BlockedTasks(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	tasks, err := h.depService.BlockedTasks(project.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.toTaskDTOs(tasks)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id": project.ID,
		"tasks":      items,
	})
}

func (h *TaskHandler) respondTask(c *gin.Context, status int, task *models.Task) {
	state, err := h.depService.TaskState(*task)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, dto.ToTaskDTO(*task, state))
}

func (h *TaskHandler) toTaskDTOs(tasks []models.Task) ([]dto.TaskDTO, error) {
	states, err := h.depService.TaskStates(tasks)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, t := range tasks {
		items[i] = dto.ToTaskDTO(t, states[t.ID])
	}
	return items, nil
}

func taskFromContext(c *gin.Context) (models.Task, bool) {
	// Set by RequireTaskAccess middleware
	taskInterface, exists := c.Get("task")
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return models.Task{}, false
	}

	task, ok := taskInterface.(models.Task)
	if !ok {
		apierrors.InternalError(c, "Invalid task data")
		return models.Task{}, false
	}
	return task, true
}

func projectFromContext(c *gin.Context) (models.Project, bool) {
	// Set by RequireProjectAccess middleware
	projectInterface, exists := c.Get("project")
	if !exists {
		apierrors.InternalError(c, "Project not found in context")
		return models.Project{}, false
	}

	project, ok := projectInterface.(models.Project)
	if !ok {
		apierrors.InternalError(c, "Invalid project data")
		return models.Project{}, false
	}
	return project, true
}

func teamFromContext(c *gin.Context) (models.Team, models.TeamMembership, bool) {
	// Set by the team access middlewares
	teamInterface, _ := c.Get("team")
	memberInterface, _ := c.Get("team_member")

	team, ok := teamInterface.(models.Team)
	member, memberOK := memberInterface.(models.TeamMembership)
	if !ok || !memberOK {
		apierrors.InternalError(c, "Team not found in context")
		return models.Team{}, models.TeamMembership{}, false
	}
	return team, member, true
}

func parseBoolQuery(c *gin.Context, name string, defaultValue bool) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}
