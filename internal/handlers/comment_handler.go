package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/access"
	"project-management-api/internal/models"
)

// CommentRequest carries the comment text
type CommentRequest struct {
	Message string `json:"message" binding:"required"`
}

// GetTaskComments lists the comments of a task
// GET /api/tasks/:id/comments
func (h *Handler) GetTaskComments(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceTask, taskID, models.AnyRole); !ok {
		return
	}
	comments, err := h.comments.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment posts a comment on a task
// POST /api/tasks/:id/comments
func (h *Handler) CreateComment(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := h.authorize(c, access.ResourceTask, taskID, models.AnyRole)
	if !ok {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), userID, taskID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment; only its author may
// PUT /api/comments/:id
func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.authorize(c, access.ResourceComment, id, nil); !ok {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), id, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment; only its author may
// DELETE /api/comments/:id
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceComment, id, nil); !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
