package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/access"
	"project-management-api/internal/export"
	"project-management-api/internal/models"
	"project-management-api/internal/services"
)

// ProjectRequest represents the payload for creating or updating a project
type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsSecured   bool   `json:"isSecured"`
}

func (r ProjectRequest) input() services.ProjectInput {
	return services.ProjectInput{Name: r.Name, Description: r.Description, IsSecured: r.IsSecured}
}

// GetProjects returns the projects visible to the user
// GET /api/projects
func (h *Handler) GetProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projects, err := h.projects.ListVisible(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProjectByID returns a single project
// GET /api/projects/:id
func (h *Handler) GetProjectByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, id, models.AnyRole); !ok {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject creates a project owned by the user
// POST /api/projects
func (h *Handler) CreateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projects.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject replaces the project fields
// PUT /api/projects/:id
func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, id, models.OwnerRoles); !ok {
		return
	}
	project, err := h.projects.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject removes the project and everything in it
// DELETE /api/projects/:id
func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, id, models.OwnerRoles); !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// ExportProject streams the project as an xlsx workbook
// GET /api/projects/:id/export
func (h *Handler) ExportProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.authorize(c, access.ResourceProject, id, models.AdminRoles); !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteProject(c.Request.Context(), id, &buf); err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="project-%d.xlsx"`, id))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
