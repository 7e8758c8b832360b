package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/access"
	"project-management-api/internal/models"
	"project-management-api/internal/services"
)

// KanbanBoardRequest represents the payload for creating or updating a kanban board
type KanbanBoardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	TaskLimit   int    `json:"taskLimit"`
}

func (r KanbanBoardRequest) input() services.BoardInput {
	return services.BoardInput{
		Name:        r.Name,
		Description: r.Description,
		Spec:        models.KanbanSpec{TaskLimit: r.TaskLimit},
	}
}

// ScrumBoardRequest represents the payload for creating or updating a scrum board
type ScrumBoardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" binding:"required"`
}

func (r ScrumBoardRequest) input(c *gin.Context) (services.BoardInput, bool) {
	deadline, ok := parseDateFlexible(r.Deadline)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline format"})
		return services.BoardInput{}, false
	}
	return services.BoardInput{
		Name:        r.Name,
		Description: r.Description,
		Spec:        models.ScrumSpec{Deadline: deadline},
	}, true
}

// GetProjectBoards lists the boards of a project
// GET /api/projects/:id/boards
func (h *Handler) GetProjectBoards(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, projectID, models.AnyRole); !ok {
		return
	}
	boards, err := h.boards.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"boards": boards,
		"count":  len(boards),
	})
}

// GetBoardByID returns a board with its specialisation
// GET /api/boards/:id
func (h *Handler) GetBoardByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoard, id, models.AnyRole); !ok {
		return
	}
	board, err := h.boards.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// CreateKanbanBoard adds a kanban board to a project
// POST /api/projects/:id/boards/kanban
func (h *Handler) CreateKanbanBoard(c *gin.Context) {
	var req KanbanBoardRequest
	if !bindJSON(c, &req) {
		return
	}
	h.createBoard(c, req.input())
}

// CreateScrumBoard adds a scrum board to a project
// POST /api/projects/:id/boards/scrum
func (h *Handler) CreateScrumBoard(c *gin.Context) {
	var req ScrumBoardRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	h.createBoard(c, in)
}

func (h *Handler) createBoard(c *gin.Context, in services.BoardInput) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, projectID, models.AdminRoles); !ok {
		return
	}
	board, err := h.boards.Create(c.Request.Context(), projectID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// UpdateKanbanBoard edits a kanban board
// PUT /api/boards/:id/kanban/:specId
func (h *Handler) UpdateKanbanBoard(c *gin.Context) {
	var req KanbanBoardRequest
	if !bindJSON(c, &req) {
		return
	}
	h.updateBoard(c, req.input())
}

// UpdateScrumBoard edits a scrum board
// PUT /api/boards/:id/scrum/:specId
func (h *Handler) UpdateScrumBoard(c *gin.Context) {
	var req ScrumBoardRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	h.updateBoard(c, in)
}

func (h *Handler) updateBoard(c *gin.Context, in services.BoardInput) {
	baseBoardID, ok := paramID(c, "id")
	if !ok {
		return
	}
	specID, ok := paramID(c, "specId")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoard, baseBoardID, models.AdminRoles); !ok {
		return
	}
	board, err := h.boards.Update(c.Request.Context(), specID, baseBoardID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// DeleteBoard removes a board with its statuses and tasks
// DELETE /api/boards/:id
func (h *Handler) DeleteBoard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceBoard, id, models.OwnerRoles); !ok {
		return
	}
	if err := h.boards.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}
