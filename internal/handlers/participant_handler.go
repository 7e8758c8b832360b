package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/access"
	"project-management-api/internal/models"
)

// CreateParticipantRequest adds a user to a project
type CreateParticipantRequest struct {
	UserID int           `json:"userId" binding:"required"`
	RoleID models.RoleID `json:"roleId" binding:"required"`
}

// UpdateParticipantRequest changes a participant's role
type UpdateParticipantRequest struct {
	RoleID models.RoleID `json:"roleId" binding:"required"`
}

// GetProjectParticipants lists the participants of a project
// GET /api/projects/:id/participants
func (h *Handler) GetProjectParticipants(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, projectID, models.AnyRole); !ok {
		return
	}
	participants, err := h.participants.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

// CreateParticipant adds a user to a project
// POST /api/projects/:id/participants
func (h *Handler) CreateParticipant(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CreateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, projectID, models.OwnerRoles); !ok {
		return
	}
	participant, err := h.participants.Create(c.Request.Context(), projectID, req.UserID, req.RoleID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// UpdateParticipant changes a participant's role
// PUT /api/participants/:id
func (h *Handler) UpdateParticipant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.authorize(c, access.ResourceParticipant, id, models.OwnerRoles); !ok {
		return
	}
	participant, err := h.participants.Update(c.Request.Context(), id, req.RoleID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

// DeleteParticipant removes a participant from its project
// DELETE /api/participants/:id
func (h *Handler) DeleteParticipant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceParticipant, id, models.OwnerRoles); !ok {
		return
	}
	if err := h.participants.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant deleted successfully"})
}
