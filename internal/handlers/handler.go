// Package handlers exposes the services over HTTP. Every handler checks
// access for the authenticated user before it calls a service.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-management-api/internal/access"
	"project-management-api/internal/apperrors"
	"project-management-api/internal/export"
	"project-management-api/internal/middleware"
	"project-management-api/internal/models"
	"project-management-api/internal/realtime"
	"project-management-api/internal/services"
)

// Deps collects what the handlers need.
type Deps struct {
	Users        services.UserService
	Roles        services.RoleService
	Projects     services.ProjectService
	Boards       services.BoardService
	Statuses     services.StatusService
	Tasks        services.TaskService
	Comments     services.CommentService
	Participants services.ParticipantService
	Access       *access.Resolver
	Hub          *realtime.Hub
	Exporter     *export.Exporter
}

type Handler struct {
	users        services.UserService
	roles        services.RoleService
	projects     services.ProjectService
	boards       services.BoardService
	statuses     services.StatusService
	tasks        services.TaskService
	comments     services.CommentService
	participants services.ParticipantService
	access       *access.Resolver
	hub          *realtime.Hub
	exporter     *export.Exporter
	logger       *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *Handler {
	return &Handler{
		users:        deps.Users,
		roles:        deps.Roles,
		projects:     deps.Projects,
		boards:       deps.Boards,
		statuses:     deps.Statuses,
		tasks:        deps.Tasks,
		comments:     deps.Comments,
		participants: deps.Participants,
		access:       deps.Access,
		hub:          deps.Hub,
		exporter:     deps.Exporter,
		logger:       logger.Named("handlers"),
	}
}

// respondError writes err with the status its kind maps to. Internal errors
// are logged and answered with a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case apperrors.KindUnauthorized:
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.Message(err)})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.Message(err)})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{
			"error": apperrors.Message(err),
			"field": apperrors.ConflictField(err),
		})
	case apperrors.KindBadRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.Message(err)})
	default:
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUser returns the id set by the JWT middleware. Routes mounted
// without it answer 401.
func currentUser(c *gin.Context) (int, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return 0, false
	}
	return id, true
}

// paramID parses the positive integer path parameter name.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

// authorize resolves the user and checks access to res id. It writes the
// response itself when the request must stop.
func (h *Handler) authorize(c *gin.Context, res access.Resource, id int, allowed []models.RoleID) (int, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return 0, false
	}
	if err := h.access.Require(c.Request.Context(), res, id, userID, allowed); err != nil {
		h.respondError(c, err)
		return 0, false
	}
	return userID, true
}
