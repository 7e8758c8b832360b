package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/access"
	"project-management-api/internal/models"
)

// StatusRequest names the status to bind
type StatusRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetBoardStatuses lists the statuses of a board
// GET /api/boards/:id/statuses
func (h *Handler) GetBoardStatuses(c *gin.Context) {
	boardID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoard, boardID, models.AnyRole); !ok {
		return
	}
	statuses, err := h.statuses.ListByBoard(c.Request.Context(), boardID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// CreateBoardStatus binds a status to a board
// POST /api/boards/:id/statuses
func (h *Handler) CreateBoardStatus(c *gin.Context) {
	boardID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoard, boardID, models.AdminRoles); !ok {
		return
	}
	status, err := h.statuses.Create(c.Request.Context(), boardID, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

// CreateBaseStatuses binds the default statuses a board lacks
// POST /api/boards/:id/statuses/defaults
func (h *Handler) CreateBaseStatuses(c *gin.Context) {
	boardID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoard, boardID, models.AdminRoles); !ok {
		return
	}
	statuses, err := h.statuses.CreateBaseStatuses(c.Request.Context(), boardID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// GetBoardStatusByID returns one board status
// GET /api/statuses/:id
func (h *Handler) GetBoardStatusByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoardStatus, id, models.AnyRole); !ok {
		return
	}
	status, err := h.statuses.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdateBoardStatus rebinds a board status to another name
// PUT /api/statuses/:id
func (h *Handler) UpdateBoardStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoardStatus, id, models.AdminRoles); !ok {
		return
	}
	status, err := h.statuses.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// DeleteBoardStatus removes a board status with its tasks
// DELETE /api/statuses/:id
func (h *Handler) DeleteBoardStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoardStatus, id, models.AdminRoles); !ok {
		return
	}
	if err := h.statuses.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status deleted successfully"})
}
