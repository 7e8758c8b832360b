// Package services holds the domain operations behind the HTTP handlers.
// Services assume the caller has already passed the access check for the
// resource in question; they enforce data invariants, not permissions.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/models"
)

// Field lengths shared by every named entity.
const (
	maxNameLen        = 100
	maxDescriptionLen = 500
	maxMessageLen     = 1000
)

func validateName(field, name string) error {
	if n := len([]rune(name)); n < 1 || n > maxNameLen {
		return apperrors.BadRequest("%s must be 1 to %d characters", field, maxNameLen)
	}
	return nil
}

func validateDescription(desc string) error {
	if len([]rune(desc)) > maxDescriptionLen {
		return apperrors.BadRequest("description must be at most %d characters", maxDescriptionLen)
	}
	return nil
}

// notFoundOr turns gorm.ErrRecordNotFound into a NotFound error naming what
// was missing and wraps anything else.
func notFoundOr(err error, what string, id int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("%s %d not found", what, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

// participantOf returns the participant row of userID in projectID.
func participantOf(ctx context.Context, db *gorm.DB, projectID, userID int) (*models.Participant, error) {
	var p models.Participant
	err := db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("participant not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	return &p, nil
}

// projectOfBoardStatus returns the project that owns boardStatusID.
func projectOfBoardStatus(ctx context.Context, db *gorm.DB, boardStatusID int) (int, error) {
	var ids []int
	err := db.WithContext(ctx).
		Table("board_statuses AS bs").
		Joins("JOIN base_boards AS b ON b.id = bs.base_board_id").
		Where("bs.id = ?", boardStatusID).
		Limit(1).
		Pluck("b.project_id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to resolve board status %d: %w", boardStatusID, err)
	}
	if len(ids) == 0 {
		return 0, apperrors.NotFound("board status %d not found", boardStatusID)
	}
	return ids[0], nil
}

func utcNow() time.Time { return time.Now().UTC() }
