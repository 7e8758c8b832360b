package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/database"
	"project-management-api/internal/history"
	"project-management-api/internal/models"
	"project-management-api/internal/realtime"
	"project-management-api/internal/retry"
)

// timeLimitSlack tolerates clock skew between client and server.
const timeLimitSlack = 10 * time.Second

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Name                string
	Description         string
	Priority            int
	TimeLimit           time.Time
	ResponsiblePersonID int
	BoardStatusID       int
}

func (in TaskInput) validate() error {
	if err := validateName("name", in.Name); err != nil {
		return err
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	if in.Priority < 1 || in.Priority > 10 {
		return apperrors.BadRequest("priority must be between 1 and 10")
	}
	if in.TimeLimit.IsZero() {
		return apperrors.BadRequest("timeLimit is required")
	}
	return nil
}

// TaskEventPublisher receives task lifecycle events after commit.
type TaskEventPublisher interface {
	PublishTaskEvent(userIDs []int, ev realtime.TaskEvent)
}

// TaskService manages tasks. Every mutation writes its history entry in
// the same transaction as the change itself.
type TaskService interface {
	ListByStatus(ctx context.Context, boardStatusID int) ([]models.Task, error)
	Get(ctx context.Context, id int) (*models.Task, error)

	// Create adds a task whose creator is userID's participant row in the
	// owning project. The responsible person must belong to that project.
	Create(ctx context.Context, userID int, in TaskInput) (*models.Task, error)

	// Update replaces the editable fields. A positive expectedVersion must
	// match the stored version; a concurrent change yields Conflict on "version".
	Update(ctx context.Context, userID, id, expectedVersion int, in TaskInput) (*models.Task, error)

	// Delete removes the task and its comments; its history stays.
	Delete(ctx context.Context, userID, id int) error

	History(ctx context.Context, taskID int) ([]models.HistoryEntry, error)
}

type taskService struct {
	db        *gorm.DB
	recorder  *history.Recorder
	publisher TaskEventPublisher
	retry     *retry.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService wires the task service. publisher may be nil.
func NewTaskService(db *gorm.DB, recorder *history.Recorder, publisher TaskEventPublisher, retryCfg *retry.Config, logger *zap.Logger) TaskService {
	return &taskService{
		db:        db,
		recorder:  recorder,
		publisher: publisher,
		retry:     retryCfg,
		logger:    logger.Named("task-service"),
		now:       utcNow,
	}
}

var _ TaskService = (*taskService)(nil)

func (s *taskService) ListByStatus(ctx context.Context, boardStatusID int) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.WithContext(ctx).
		Where("board_status_id = ?", boardStatusID).
		Order("priority DESC, id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of board status %d: %w", boardStatusID, err)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, id int) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, "task", id)
	}
	return &t, nil
}

func (s *taskService) History(ctx context.Context, taskID int) ([]models.HistoryEntry, error) {
	return s.recorder.ListHistory(ctx, taskID)
}

// checkMoveTarget verifies that boardStatusID exists in projectID. A missing
// or foreign status is a bad request; lookup failures pass through.
func checkMoveTarget(ctx context.Context, tx *gorm.DB, projectID, boardStatusID int) error {
	target, err := projectOfBoardStatus(ctx, tx, boardStatusID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if err != nil || target != projectID {
		return apperrors.BadRequest("invalid board status id %d", boardStatusID)
	}
	return nil
}

// checkResponsible verifies that participantID belongs to projectID.
func checkResponsible(tx *gorm.DB, projectID, participantID int) error {
	var count int64
	err := tx.Model(&models.Participant{}).
		Where("id = ? AND project_id = ?", participantID, projectID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check responsible person: %w", err)
	}
	if count == 0 {
		return apperrors.BadRequest("invalid responsible person id %d", participantID)
	}
	return nil
}

func (s *taskService) checkTimeLimit(limit time.Time) error {
	if limit.Before(s.now().Add(-timeLimitSlack)) {
		return apperrors.BadRequest("timeLimit must not be in the past")
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, userID int, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkTimeLimit(in.TimeLimit); err != nil {
		return nil, err
	}

	var (
		task      models.Task
		projectID int
	)
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var err error
		projectID, err = projectOfBoardStatus(ctx, tx, in.BoardStatusID)
		if err != nil {
			return err
		}
		creator, err := participantOf(ctx, tx, projectID, userID)
		if err != nil {
			return err
		}
		if err := checkResponsible(tx, projectID, in.ResponsiblePersonID); err != nil {
			return err
		}

		task = models.Task{
			Name:                in.Name,
			Description:         in.Description,
			Priority:            in.Priority,
			LastUpdate:          s.now(),
			TimeLimit:           in.TimeLimit.UTC(),
			CreatorID:           creator.ID,
			ResponsiblePersonID: in.ResponsiblePersonID,
			BoardStatusID:       in.BoardStatusID,
			Version:             1,
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return s.recorder.WithTx(tx).RecordCreate(ctx, projectID, &task, userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", userID))
	s.publish(ctx, realtime.EventTaskCreated, &task, projectID, userID)
	return &task, nil
}

func (s *taskService) Update(ctx context.Context, userID, id, expectedVersion int, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		updated   models.Task
		projectID int
	)
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var old models.Task
		if err := tx.First(&old, id).Error; err != nil {
			return notFoundOr(err, "task", id)
		}
		if expectedVersion > 0 && expectedVersion != old.Version {
			return apperrors.Conflict("version", "task %d is at version %d, not %d", id, old.Version, expectedVersion)
		}
		if !in.TimeLimit.Equal(old.TimeLimit) {
			if err := s.checkTimeLimit(in.TimeLimit); err != nil {
				return err
			}
		}

		var err error
		projectID, err = projectOfBoardStatus(ctx, tx, old.BoardStatusID)
		if err != nil {
			return err
		}
		if in.BoardStatusID != old.BoardStatusID {
			if err := checkMoveTarget(ctx, tx, projectID, in.BoardStatusID); err != nil {
				return err
			}
		}
		if _, err := participantOf(ctx, tx, projectID, userID); err != nil {
			return err
		}
		if err := checkResponsible(tx, projectID, in.ResponsiblePersonID); err != nil {
			return err
		}

		updated = old
		updated.Name = in.Name
		updated.Description = in.Description
		updated.Priority = in.Priority
		updated.TimeLimit = in.TimeLimit.UTC()
		updated.ResponsiblePersonID = in.ResponsiblePersonID
		updated.BoardStatusID = in.BoardStatusID
		updated.LastUpdate = s.now()
		updated.Version = old.Version + 1

		res := tx.Model(&models.Task{}).
			Where("id = ? AND version = ?", id, old.Version).
			Updates(map[string]any{
				"name":                  updated.Name,
				"description":           updated.Description,
				"priority":              updated.Priority,
				"time_limit":            updated.TimeLimit,
				"responsible_person_id": updated.ResponsiblePersonID,
				"board_status_id":       updated.BoardStatusID,
				"last_update":           updated.LastUpdate,
				"version":               updated.Version,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update task %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("version", "task %d was changed concurrently", id)
		}
		return s.recorder.WithTx(tx).RecordUpdate(ctx, projectID, &old, &updated, userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task updated",
		zap.Int("task_id", id), zap.Int("user_id", userID), zap.Int("version", updated.Version))
	s.publish(ctx, realtime.EventTaskUpdated, &updated, projectID, userID)
	return &updated, nil
}

func (s *taskService) Delete(ctx context.Context, userID, id int) error {
	var (
		task      models.Task
		projectID int
	)
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return notFoundOr(err, "task", id)
		}
		var err error
		projectID, err = projectOfBoardStatus(ctx, tx, task.BoardStatusID)
		if err != nil {
			return err
		}
		if err := purgeTasks(tx, []int{id}); err != nil {
			return fmt.Errorf("failed to delete task %d: %w", id, err)
		}
		return s.recorder.WithTx(tx).RecordDelete(ctx, projectID, &task, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Task deleted", zap.Int("task_id", id), zap.Int("user_id", userID))
	s.publish(ctx, realtime.EventTaskDeleted, &task, projectID, userID)
	return nil
}

// publish notifies every participant of the project. Failures are logged;
// the change is already committed.
func (s *taskService) publish(ctx context.Context, eventType string, task *models.Task, projectID, userID int) {
	if s.publisher == nil {
		return
	}
	var userIDs []int
	err := s.db.WithContext(ctx).Model(&models.Participant{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		s.logger.Warn("Failed to resolve event audience", zap.Int("project_id", projectID), zap.Error(err))
		return
	}
	s.publisher.PublishTaskEvent(userIDs, realtime.TaskEvent{
		Type:      eventType,
		TaskID:    task.ID,
		ProjectID: projectID,
		UserID:    userID,
		Version:   task.Version,
	})
}
