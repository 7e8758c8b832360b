package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-management-api/internal/auth"
	"project-management-api/internal/handlers"
	"project-management-api/internal/metrics"
	"project-management-api/internal/middleware"
)

func SetupRoutes(h *handlers.Handler, tokens *auth.TokenIssuer, users middleware.UserChecker, logger *zap.Logger) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(logger), metrics.Middleware())

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})
	ginRouter.GET("/metrics", gin.WrapH(metrics.Handler()))

	authRequired := middleware.JWTAuthMiddleware(tokens, users, logger)

	// Browsers cannot set headers on upgrade; the token may come as ?token=
	ginRouter.GET("/ws", authRequired, h.WebSocket)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/users/register", h.Register)
		api.POST("/users/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(authRequired)
	{
		// User endpoints
		protectedRoutes.GET("/users", h.GetAllUsers)
		protectedRoutes.GET("/users/me", h.GetCurrentUser)
		protectedRoutes.GET("/roles", h.GetRoles)

		// Project endpoints
		protectedRoutes.GET("/projects", h.GetProjects)
		protectedRoutes.POST("/projects", h.CreateProject)
		protectedRoutes.GET("/projects/:id", h.GetProjectByID)
		protectedRoutes.PUT("/projects/:id", h.UpdateProject)
		protectedRoutes.DELETE("/projects/:id", h.DeleteProject)
		protectedRoutes.GET("/projects/:id/export", h.ExportProject)
		protectedRoutes.GET("/projects/:id/boards", h.GetProjectBoards)
		protectedRoutes.POST("/projects/:id/boards/kanban", h.CreateKanbanBoard)
		protectedRoutes.POST("/projects/:id/boards/scrum", h.CreateScrumBoard)
		protectedRoutes.GET("/projects/:id/participants", h.GetProjectParticipants)
		protectedRoutes.POST("/projects/:id/participants", h.CreateParticipant)

		// Board endpoints
		protectedRoutes.GET("/boards/:id", h.GetBoardByID)
		protectedRoutes.PUT("/boards/:id/kanban/:specId", h.UpdateKanbanBoard)
		protectedRoutes.PUT("/boards/:id/scrum/:specId", h.UpdateScrumBoard)
		protectedRoutes.DELETE("/boards/:id", h.DeleteBoard)
		protectedRoutes.GET("/boards/:id/statuses", h.GetBoardStatuses)
		protectedRoutes.POST("/boards/:id/statuses", h.CreateBoardStatus)
		protectedRoutes.POST("/boards/:id/statuses/defaults", h.CreateBaseStatuses)

		// Board status endpoints
		protectedRoutes.GET("/statuses/:id", h.GetBoardStatusByID)
		protectedRoutes.PUT("/statuses/:id", h.UpdateBoardStatus)
		protectedRoutes.DELETE("/statuses/:id", h.DeleteBoardStatus)
		protectedRoutes.GET("/statuses/:id/tasks", h.GetStatusTasks)

		// Task endpoints
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.PUT("/tasks/:id", h.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)
		protectedRoutes.GET("/tasks/:id/history", h.GetTaskHistory)
		protectedRoutes.GET("/tasks/:id/comments", h.GetTaskComments)
		protectedRoutes.POST("/tasks/:id/comments", h.CreateComment)

		// Comment endpoints
		protectedRoutes.PUT("/comments/:id", h.UpdateComment)
		protectedRoutes.DELETE("/comments/:id", h.DeleteComment)

		// Participant endpoints
		protectedRoutes.PUT("/participants/:id", h.UpdateParticipant)
		protectedRoutes.DELETE("/participants/:id", h.DeleteParticipant)
	}

	return ginRouter
}
