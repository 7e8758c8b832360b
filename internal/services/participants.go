package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/retry"
)

// ParticipantService manages project membership. A project always keeps
// at least one Owner.
type ParticipantService interface {
	ListByProject(ctx context.Context, projectID int) ([]models.ParticipantView, error)

	// Create adds userID to the project. BadRequest on an unknown role or
	// user, Conflict on "userId" if the user already takes part.
	Create(ctx context.Context, projectID, userID int, roleID models.RoleID) (*models.Participant, error)

	// Update changes the participant's role. Demoting the last Owner is a
	// Conflict on "roleId".
	Update(ctx context.Context, participantID int, roleID models.RoleID) (*models.Participant, error)

	// Delete removes the participant. Conflict on "roleId" for the last
	// Owner and on "participantId" while tasks or comments reference it.
	Delete(ctx context.Context, participantID int) error
}

type participantService struct {
	db     *gorm.DB
	retry  *retry.Config
	logger *zap.Logger
}

func NewParticipantService(db *gorm.DB, retryCfg *retry.Config, logger *zap.Logger) ParticipantService {
	return &participantService{
		db:     db,
		retry:  retryCfg,
		logger: logger.Named("participant-service"),
	}
}

var _ ParticipantService = (*participantService)(nil)

func (s *participantService) ListByProject(ctx context.Context, projectID int) ([]models.ParticipantView, error) {
	views := []models.ParticipantView{}
	err := s.db.WithContext(ctx).
		Table("participants AS pa").
		Select(`pa.id AS id, pa.project_id AS project_id, pa.user_id AS user_id, pa.role_id AS role_id,
			u.name AS user_name, u.login AS user_login`).
		Joins("JOIN users AS u ON u.id = pa.user_id").
		Where("pa.project_id = ?", projectID).
		Order("pa.role_id, pa.id").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of project %d: %w", projectID, err)
	}
	return views, nil
}

func (s *participantService) Create(ctx context.Context, projectID, userID int, roleID models.RoleID) (*models.Participant, error) {
	if !models.IsValidRole(roleID) {
		return nil, apperrors.BadRequest("invalid role id %d", roleID)
	}

	var p models.Participant
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return apperrors.BadRequest("invalid user id %d", userID)
		}

		var existing int64
		err := tx.Model(&models.Participant{}).
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("userId", "user %d already takes part in project %d", userID, projectID)
		}

		p = models.Participant{ProjectID: projectID, UserID: userID, RoleID: roleID}
		if err := tx.Create(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("userId", "user %d already takes part in project %d", userID, projectID)
			}
			return fmt.Errorf("failed to add participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Participant added",
		zap.Int("participant_id", p.ID), zap.Int("project_id", projectID), zap.Int("user_id", userID))
	return &p, nil
}

// lastOwner reports whether p is the only Owner of its project.
func lastOwner(tx *gorm.DB, p *models.Participant) (bool, error) {
	if p.RoleID != models.RoleOwner {
		return false, nil
	}
	var owners int64
	err := tx.Model(&models.Participant{}).
		Where("project_id = ? AND role_id = ?", p.ProjectID, models.RoleOwner).
		Count(&owners).Error
	return owners <= 1, err
}

func (s *participantService) Update(ctx context.Context, participantID int, roleID models.RoleID) (*models.Participant, error) {
	if !models.IsValidRole(roleID) {
		return nil, apperrors.BadRequest("invalid role id %d", roleID)
	}

	var p models.Participant
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		if err := tx.First(&p, participantID).Error; err != nil {
			return notFoundOr(err, "participant", participantID)
		}
		if roleID != models.RoleOwner {
			last, err := lastOwner(tx, &p)
			if err != nil {
				return err
			}
			if last {
				return apperrors.Conflict("roleId", "project %d must keep an owner", p.ProjectID)
			}
		}
		if err := tx.Model(&p).Update("role_id", roleID).Error; err != nil {
			return fmt.Errorf("failed to update participant %d: %w", participantID, err)
		}
		p.RoleID = roleID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *participantService) Delete(ctx context.Context, participantID int) error {
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var p models.Participant
		if err := tx.First(&p, participantID).Error; err != nil {
			return notFoundOr(err, "participant", participantID)
		}
		last, err := lastOwner(tx, &p)
		if err != nil {
			return err
		}
		if last {
			return apperrors.Conflict("roleId", "project %d must keep an owner", p.ProjectID)
		}

		var refs int64
		err = tx.Model(&models.Task{}).
			Where("creator_id = ? OR responsible_person_id = ?", participantID, participantID).
			Count(&refs).Error
		if err != nil {
			return err
		}
		if refs == 0 {
			if err := tx.Model(&models.TaskComment{}).Where("participant_id = ?", participantID).Count(&refs).Error; err != nil {
				return err
			}
		}
		if refs > 0 {
			return apperrors.Conflict("participantId", "participant %d is still referenced by tasks or comments", participantID)
		}

		return tx.Delete(&p).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("Participant removed", zap.Int("participant_id", participantID))
	return nil
}
