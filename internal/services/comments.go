package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/models"
)

func validateMessage(msg string) error {
	if n := len([]rune(msg)); n < 1 || n > maxMessageLen {
		return apperrors.BadRequest("message must be 1 to %d characters", maxMessageLen)
	}
	return nil
}

// CommentService manages task comments.
type CommentService interface {
	ListByTask(ctx context.Context, taskID int) ([]models.TaskComment, error)

	// Create posts a comment as userID's participant row in the task's project.
	Create(ctx context.Context, userID, taskID int, message string) (*models.TaskComment, error)

	Update(ctx context.Context, commentID int, message string) (*models.TaskComment, error)
	Delete(ctx context.Context, commentID int) error
}

type commentService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCommentService(db *gorm.DB, logger *zap.Logger) CommentService {
	return &commentService{
		db:     db,
		logger: logger.Named("comment-service"),
	}
}

var _ CommentService = (*commentService)(nil)

func (s *commentService) ListByTask(ctx context.Context, taskID int) ([]models.TaskComment, error) {
	comments := []models.TaskComment{}
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments of task %d: %w", taskID, err)
	}
	return comments, nil
}

func (s *commentService) Create(ctx context.Context, userID, taskID int, message string) (*models.TaskComment, error) {
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var task models.Task
	if err := db.Select("id", "board_status_id").First(&task, taskID).Error; err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	projectID, err := projectOfBoardStatus(ctx, db, task.BoardStatusID)
	if err != nil {
		return nil, err
	}
	author, err := participantOf(ctx, db, projectID, userID)
	if err != nil {
		return nil, err
	}

	comment := models.TaskComment{Message: message, ParticipantID: author.ID, TaskID: taskID}
	if err := db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("Comment created", zap.Int("comment_id", comment.ID), zap.Int("task_id", taskID))
	return &comment, nil
}

func (s *commentService) Update(ctx context.Context, commentID int, message string) (*models.TaskComment, error) {
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var comment models.TaskComment
	if err := db.First(&comment, commentID).Error; err != nil {
		return nil, notFoundOr(err, "comment", commentID)
	}
	if err := db.Model(&comment).Update("message", message).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment %d: %w", commentID, err)
	}
	comment.Message = message
	return &comment, nil
}

func (s *commentService) Delete(ctx context.Context, commentID int) error {
	res := s.db.WithContext(ctx).Delete(&models.TaskComment{}, commentID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("comment %d not found", commentID)
	}
	return nil
}
