package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/access"
	"project-management-api/internal/models"
	"project-management-api/internal/services"
)

// TaskRequest represents the request payload for creating or updating a task.
// Version is optional on update; when set it must match the stored task.
type TaskRequest struct {
	Name                string `json:"name" binding:"required"`
	Description         string `json:"description"`
	Priority            int    `json:"priority" binding:"required"`
	TimeLimit           string `json:"timeLimit" binding:"required"`
	ResponsiblePersonID int    `json:"responsiblePersonId" binding:"required"`
	BoardStatusID       int    `json:"boardStatusId" binding:"required"`
	Version             int    `json:"version"`
}

// UpdateTaskStatusRequest represents a minimal request to move a task
type UpdateTaskStatusRequest struct {
	BoardStatusID int `json:"boardStatusId" binding:"required"`
	Version       int `json:"version"`
}

func (r TaskRequest) input(c *gin.Context) (services.TaskInput, bool) {
	limit, ok := parseDateFlexible(r.TimeLimit)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeLimit format"})
		return services.TaskInput{}, false
	}
	return services.TaskInput{
		Name:                r.Name,
		Description:         r.Description,
		Priority:            r.Priority,
		TimeLimit:           limit,
		ResponsiblePersonID: r.ResponsiblePersonID,
		BoardStatusID:       r.BoardStatusID,
	}, true
}

func parseDateFlexible(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,       // full RFC3339
		"2006-01-02T15:04", // HTML datetime-local
		"2006-01-02",       // ISO date
		"2 Jan 2006",       // e.g., 30 Oct 2025
		"02 Jan 2006",      // zero-padded day
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

/*
*
GetStatusTasks handles GET /api/statuses/:id/tasks
Optional query params: page (default 1), limit (default 20, max 100).
*/
func (h *Handler) GetStatusTasks(c *gin.Context) {
	statusID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoardStatus, statusID, models.AnyRole); !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	tasks, err := h.tasks.ListByStatus(c.Request.Context(), statusID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	total := len(tasks)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	tasks = tasks[start:end]

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks), // number of items in this page
		"total": total,      // total tasks in this status
		"page":  page,
		"limit": limit,
	})
}

/*
*
GetTaskByID handles GET /api/tasks/:id
*/
func (h *Handler) GetTaskByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceTask, id, models.AnyRole); !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
The authenticated user becomes the task creator.
*/
func (h *Handler) CreateTask(c *gin.Context) {
	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	userID, ok := h.authorize(c, access.ResourceBoardStatus, req.BoardStatusID, models.AdminRoles)
	if !ok {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

/*
*
UpdateTask handles PUT /api/tasks/:id
*/
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	userID, ok := h.authorize(c, access.ResourceTask, id, models.AdminRoles)
	if !ok {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, id, req.Version, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
UpdateTaskStatus handles PATCH /api/tasks/:id/status
Moves the task to another status of the same project.
*/
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := h.authorize(c, access.ResourceTask, id, models.AdminRoles)
	if !ok {
		return
	}

	current, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	version := req.Version
	if version == 0 {
		version = current.Version
	}
	task, err := h.tasks.Update(c.Request.Context(), userID, id, version, services.TaskInput{
		Name:                current.Name,
		Description:         current.Description,
		Priority:            current.Priority,
		TimeLimit:           current.TimeLimit,
		ResponsiblePersonID: current.ResponsiblePersonID,
		BoardStatusID:       req.BoardStatusID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
DeleteTask handles DELETE /api/tasks/:id
The task history is kept.
*/
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.authorize(c, access.ResourceTask, id, models.AdminRoles)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

/*
*
GetTaskHistory handles GET /api/tasks/:id/history
Entries are ordered oldest first.
*/
func (h *Handler) GetTaskHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceTask, id, models.AnyRole); !ok {
		return
	}
	entries, err := h.tasks.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
