package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/retry"
)

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Name        string
	Description string
	IsSecured   bool
}

func (in ProjectInput) validate() error {
	if err := validateName("name", in.Name); err != nil {
		return err
	}
	return validateDescription(in.Description)
}

// ProjectService manages projects.
type ProjectService interface {
	// ListVisible returns unsecured projects and projects userID takes part in.
	ListVisible(ctx context.Context, userID int) ([]models.Project, error)

	Get(ctx context.Context, id int) (*models.Project, error)

	// Create makes userID the Owner of the new project in the same transaction.
	Create(ctx context.Context, userID int, in ProjectInput) (*models.Project, error)

	Update(ctx context.Context, id int, in ProjectInput) (*models.Project, error)

	// Delete removes the project with its boards, tasks, comments and
	// participants. Task history is kept.
	Delete(ctx context.Context, id int) error
}

type projectService struct {
	db     *gorm.DB
	retry  *retry.Config
	logger *zap.Logger
}

func NewProjectService(db *gorm.DB, retryCfg *retry.Config, logger *zap.Logger) ProjectService {
	return &projectService{
		db:     db,
		retry:  retryCfg,
		logger: logger.Named("project-service"),
	}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) ListVisible(ctx context.Context, userID int) ([]models.Project, error) {
	var projects []models.Project
	member := s.db.Model(&models.Participant{}).Select("project_id").Where("user_id = ?", userID)
	err := s.db.WithContext(ctx).
		Where("is_secured = ? OR id IN (?)", false, member).
		Order("id").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) Get(ctx context.Context, id int) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "project", id)
	}
	return &p, nil
}

func (s *projectService) Create(ctx context.Context, userID int, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p models.Project
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		p = models.Project{Name: in.Name, Description: in.Description, IsSecured: in.IsSecured}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		owner := models.Participant{ProjectID: p.ID, UserID: userID, RoleID: models.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("failed to add project owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project created", zap.Int("project_id", p.ID), zap.Int("owner_id", userID))
	return &p, nil
}

func (s *projectService) Update(ctx context.Context, id int, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p models.Project
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFoundOr(err, "project", id)
		}
		err := tx.Model(&p).Updates(map[string]any{
			"name":        in.Name,
			"description": in.Description,
			"is_secured":  in.IsSecured,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update project %d: %w", id, err)
		}
		p.Name, p.Description, p.IsSecured = in.Name, in.Description, in.IsSecured
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *projectService) Delete(ctx context.Context, id int) error {
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFoundOr(gorm.ErrRecordNotFound, "project", id)
		}
		return purgeProject(tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Project deleted", zap.Int("project_id", id))
	return nil
}
