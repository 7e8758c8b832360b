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

// BoardInput carries the editable fields of a board and its specialisation.
type BoardInput struct {
	Name        string
	Description string
	Spec        models.BoardSpec
}

func (in BoardInput) validate() error {
	if err := validateName("name", in.Name); err != nil {
		return err
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	switch spec := in.Spec.(type) {
	case models.KanbanSpec:
		if spec.TaskLimit < 1 {
			return apperrors.BadRequest("taskLimit must be positive")
		}
	case models.ScrumSpec:
		if spec.Deadline.IsZero() {
			return apperrors.BadRequest("deadline is required")
		}
	default:
		return apperrors.BadRequest("board must be kanban or scrum")
	}
	return nil
}

// BoardService manages boards and their kanban or scrum specialisation.
type BoardService interface {
	ListByProject(ctx context.Context, projectID int) ([]models.Board, error)
	Get(ctx context.Context, baseBoardID int) (*models.Board, error)

	// Create adds a board with the four default statuses.
	Create(ctx context.Context, projectID int, in BoardInput) (*models.Board, error)

	// Update edits the specialisation row specID and its base board.
	// NotFound if specID does not exist for the input's board type,
	// Conflict on "baseBoardId" if it belongs to another base board.
	Update(ctx context.Context, specID, baseBoardID int, in BoardInput) (*models.Board, error)

	// Delete removes the board with its statuses, tasks and comments.
	Delete(ctx context.Context, baseBoardID int) error
}

type boardService struct {
	db     *gorm.DB
	retry  *retry.Config
	logger *zap.Logger
}

func NewBoardService(db *gorm.DB, retryCfg *retry.Config, logger *zap.Logger) BoardService {
	return &boardService{
		db:     db,
		retry:  retryCfg,
		logger: logger.Named("board-service"),
	}
}

var _ BoardService = (*boardService)(nil)

// attachSpec loads the specialisation of base.
func attachSpec(db *gorm.DB, base models.BaseBoard) (models.Board, error) {
	board := models.Board{BaseBoard: base}

	var kanban models.KanbanBoard
	err := db.Where("base_board_id = ?", base.ID).First(&kanban).Error
	if err == nil {
		board.SpecID = kanban.ID
		board.Spec = models.KanbanSpec{TaskLimit: kanban.TaskLimit}
		return board, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return board, err
	}

	var scrum models.ScrumBoard
	err = db.Where("base_board_id = ?", base.ID).First(&scrum).Error
	if err == nil {
		board.SpecID = scrum.ID
		board.Spec = models.ScrumSpec{Deadline: scrum.TimeLimit}
		return board, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return board, fmt.Errorf("board %d has no specialisation", base.ID)
	}
	return board, err
}

func (s *boardService) ListByProject(ctx context.Context, projectID int) ([]models.Board, error) {
	db := s.db.WithContext(ctx)
	var bases []models.BaseBoard
	if err := db.Where("project_id = ?", projectID).Order("id").Find(&bases).Error; err != nil {
		return nil, fmt.Errorf("failed to list boards of project %d: %w", projectID, err)
	}

	boards := make([]models.Board, 0, len(bases))
	for _, base := range bases {
		b, err := attachSpec(db, base)
		if err != nil {
			return nil, fmt.Errorf("failed to load board %d: %w", base.ID, err)
		}
		boards = append(boards, b)
	}
	return boards, nil
}

func (s *boardService) Get(ctx context.Context, baseBoardID int) (*models.Board, error) {
	db := s.db.WithContext(ctx)
	var base models.BaseBoard
	if err := db.First(&base, baseBoardID).Error; err != nil {
		return nil, notFoundOr(err, "board", baseBoardID)
	}
	b, err := attachSpec(db, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load board %d: %w", baseBoardID, err)
	}
	return &b, nil
}

func (s *boardService) Create(ctx context.Context, projectID int, in BoardInput) (*models.Board, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var board models.Board
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		base := models.BaseBoard{Name: in.Name, Description: in.Description, ProjectID: projectID}
		if err := tx.Create(&base).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperrors.NotFound("project %d not found", projectID)
			}
			return fmt.Errorf("failed to create board: %w", err)
		}

		board = models.Board{BaseBoard: base, Spec: in.Spec}
		switch spec := in.Spec.(type) {
		case models.KanbanSpec:
			row := models.KanbanBoard{TaskLimit: spec.TaskLimit, BaseBoardID: base.ID}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create kanban board: %w", err)
			}
			board.SpecID = row.ID
		case models.ScrumSpec:
			row := models.ScrumBoard{TimeLimit: spec.Deadline.UTC(), BaseBoardID: base.ID}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create scrum board: %w", err)
			}
			board.SpecID = row.ID
			board.Spec = models.ScrumSpec{Deadline: row.TimeLimit}
		}

		return createBaseStatuses(tx, base.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Board created",
		zap.Int("base_board_id", board.BaseBoard.ID),
		zap.Int("project_id", projectID),
		zap.String("type", string(in.Spec.Type())))
	return &board, nil
}

func (s *boardService) Update(ctx context.Context, specID, baseBoardID int, in BoardInput) (*models.Board, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var board models.Board
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		switch spec := in.Spec.(type) {
		case models.KanbanSpec:
			var row models.KanbanBoard
			if err := tx.First(&row, specID).Error; err != nil {
				return notFoundOr(err, "kanban board", specID)
			}
			if row.BaseBoardID != baseBoardID {
				return apperrors.Conflict("baseBoardId", "kanban board %d does not belong to board %d", specID, baseBoardID)
			}
			if err := tx.Model(&row).Update("task_limit", spec.TaskLimit).Error; err != nil {
				return err
			}
		case models.ScrumSpec:
			var row models.ScrumBoard
			if err := tx.First(&row, specID).Error; err != nil {
				return notFoundOr(err, "scrum board", specID)
			}
			if row.BaseBoardID != baseBoardID {
				return apperrors.Conflict("baseBoardId", "scrum board %d does not belong to board %d", specID, baseBoardID)
			}
			if err := tx.Model(&row).Update("time_limit", spec.Deadline.UTC()).Error; err != nil {
				return err
			}
		}

		var base models.BaseBoard
		if err := tx.First(&base, baseBoardID).Error; err != nil {
			return notFoundOr(err, "board", baseBoardID)
		}
		err := tx.Model(&base).Updates(map[string]any{
			"name":        in.Name,
			"description": in.Description,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update board %d: %w", baseBoardID, err)
		}
		base.Name, base.Description = in.Name, in.Description

		board, err = attachSpec(tx, base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *boardService) Delete(ctx context.Context, baseBoardID int) error {
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BaseBoard{}).Where("id = ?", baseBoardID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFound("board %d not found", baseBoardID)
		}
		return purgeBoards(tx, []int{baseBoardID})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Board deleted", zap.Int("base_board_id", baseBoardID))
	return nil
}
