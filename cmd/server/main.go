package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"project-management-api/internal/access"
	"project-management-api/internal/auth"
	"project-management-api/internal/config"
	"project-management-api/internal/database"
	"project-management-api/internal/export"
	"project-management-api/internal/handlers"
	"project-management-api/internal/history"
	"project-management-api/internal/logging"
	"project-management-api/internal/realtime"
	"project-management-api/internal/routes"
	"project-management-api/internal/services"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// Init database
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	retryCfg := database.RetryConfig(cfg.Retry)
	tokens := auth.NewTokenIssuer(cfg.JWT)
	hub := realtime.NewHub(logger)
	users := services.NewUserService(db, tokens, cfg.Auth.BcryptCost, logger)

	h := handlers.New(handlers.Deps{
		Users:        users,
		Roles:        services.NewRoleService(db, cfg.Cache.RoleCatalogTTL, logger),
		Projects:     services.NewProjectService(db, retryCfg, logger),
		Boards:       services.NewBoardService(db, retryCfg, logger),
		Statuses:     services.NewStatusService(db, retryCfg, logger),
		Tasks:        services.NewTaskService(db, history.NewRecorder(db, logger), hub, retryCfg, logger),
		Comments:     services.NewCommentService(db, logger),
		Participants: services.NewParticipantService(db, retryCfg, logger),
		Access:       access.NewResolver(db, logger),
		Hub:          hub,
		Exporter:     export.NewExporter(db, logger),
	}, logger)

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(h, tokens, users, logger)

	srv := &http.Server{
		Addr:     cfg.Server.Addr,
		Handler:  ginRoutes,
		ErrorLog: logging.StdLog(logger, "http"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}
	logger.Info("Server stopped")
}
