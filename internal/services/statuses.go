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

// StatusService manages the status set of each board.
type StatusService interface {
	ListByBoard(ctx context.Context, baseBoardID int) ([]models.BoardStatusView, error)
	Get(ctx context.Context, boardStatusID int) (*models.BoardStatusView, error)

	// Create binds the status called name to the board, reusing an existing
	// Status row with that name. A board may bind the same status twice.
	Create(ctx context.Context, baseBoardID int, name string) (*models.BoardStatusView, error)

	// Update rebinds a board status to the status called name.
	Update(ctx context.Context, boardStatusID int, name string) (*models.BoardStatusView, error)

	// Delete removes the board status with its tasks and their comments.
	Delete(ctx context.Context, boardStatusID int) error

	// CreateBaseStatuses binds the default statuses the board lacks. Calling
	// it again on the same board adds nothing.
	CreateBaseStatuses(ctx context.Context, baseBoardID int) ([]models.BoardStatusView, error)
}

type statusService struct {
	db     *gorm.DB
	retry  *retry.Config
	logger *zap.Logger
}

func NewStatusService(db *gorm.DB, retryCfg *retry.Config, logger *zap.Logger) StatusService {
	return &statusService{
		db:     db,
		retry:  retryCfg,
		logger: logger.Named("status-service"),
	}
}

var _ StatusService = (*statusService)(nil)

func boardStatusViews(db *gorm.DB) *gorm.DB {
	return db.Table("board_statuses AS bs").
		Select("bs.id AS id, bs.base_board_id AS base_board_id, bs.status_id AS status_id, s.name AS name").
		Joins("JOIN statuses AS s ON s.id = bs.status_id")
}

func (s *statusService) ListByBoard(ctx context.Context, baseBoardID int) ([]models.BoardStatusView, error) {
	views := []models.BoardStatusView{}
	err := boardStatusViews(s.db.WithContext(ctx)).
		Where("bs.base_board_id = ?", baseBoardID).
		Order("bs.id").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses of board %d: %w", baseBoardID, err)
	}
	return views, nil
}

func (s *statusService) Get(ctx context.Context, boardStatusID int) (*models.BoardStatusView, error) {
	return loadBoardStatusView(s.db.WithContext(ctx), boardStatusID)
}

func loadBoardStatusView(db *gorm.DB, boardStatusID int) (*models.BoardStatusView, error) {
	var views []models.BoardStatusView
	if err := boardStatusViews(db).Where("bs.id = ?", boardStatusID).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to load board status %d: %w", boardStatusID, err)
	}
	if len(views) == 0 {
		return nil, apperrors.NotFound("board status %d not found", boardStatusID)
	}
	return &views[0], nil
}

// statusByName returns the Status called name, inserting it if absent.
func statusByName(tx *gorm.DB, name string) (*models.Status, error) {
	var st models.Status
	err := tx.Where("name = ?", name).First(&st).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up status %q: %w", name, err)
	}
	st = models.Status{Name: name}
	if err := tx.Create(&st).Error; err != nil {
		return nil, fmt.Errorf("failed to create status %q: %w", name, err)
	}
	return &st, nil
}

func (s *statusService) Create(ctx context.Context, baseBoardID int, name string) (*models.BoardStatusView, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}

	var view *models.BoardStatusView
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BaseBoard{}).Where("id = ?", baseBoardID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFound("board %d not found", baseBoardID)
		}

		st, err := statusByName(tx, name)
		if err != nil {
			return err
		}

		bs := models.BoardStatus{BaseBoardID: baseBoardID, StatusID: st.ID}
		if err := tx.Create(&bs).Error; err != nil {
			return fmt.Errorf("failed to bind status: %w", err)
		}
		view = &models.BoardStatusView{ID: bs.ID, BaseBoardID: baseBoardID, StatusID: st.ID, Name: st.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Board status created",
		zap.Int("board_status_id", view.ID), zap.Int("base_board_id", baseBoardID), zap.String("name", name))
	return view, nil
}

func (s *statusService) Update(ctx context.Context, boardStatusID int, name string) (*models.BoardStatusView, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}

	var view *models.BoardStatusView
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var bs models.BoardStatus
		if err := tx.First(&bs, boardStatusID).Error; err != nil {
			return notFoundOr(err, "board status", boardStatusID)
		}
		st, err := statusByName(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(&bs).Update("status_id", st.ID).Error; err != nil {
			return fmt.Errorf("failed to update board status %d: %w", boardStatusID, err)
		}
		view = &models.BoardStatusView{ID: bs.ID, BaseBoardID: bs.BaseBoardID, StatusID: st.ID, Name: st.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *statusService) Delete(ctx context.Context, boardStatusID int) error {
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BoardStatus{}).Where("id = ?", boardStatusID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFound("board status %d not found", boardStatusID)
		}
		return purgeBoardStatuses(tx, []int{boardStatusID})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Board status deleted", zap.Int("board_status_id", boardStatusID))
	return nil
}

func (s *statusService) CreateBaseStatuses(ctx context.Context, baseBoardID int) ([]models.BoardStatusView, error) {
	err := database.WithTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BaseBoard{}).Where("id = ?", baseBoardID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFound("board %d not found", baseBoardID)
		}
		return createBaseStatuses(tx, baseBoardID)
	})
	if err != nil {
		return nil, err
	}
	return s.ListByBoard(ctx, baseBoardID)
}

// createBaseStatuses binds each default status the board does not have yet.
func createBaseStatuses(tx *gorm.DB, baseBoardID int) error {
	var bound []models.StatusID
	if err := tx.Model(&models.BoardStatus{}).Where("base_board_id = ?", baseBoardID).Pluck("status_id", &bound).Error; err != nil {
		return fmt.Errorf("failed to read statuses of board %d: %w", baseBoardID, err)
	}
	have := make(map[models.StatusID]bool, len(bound))
	for _, id := range bound {
		have[id] = true
	}

	var missing []models.BoardStatus
	for _, id := range models.DefaultStatuses {
		if !have[id] {
			missing = append(missing, models.BoardStatus{BaseBoardID: baseBoardID, StatusID: id})
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := tx.Create(&missing).Error; err != nil {
		return fmt.Errorf("failed to bind default statuses to board %d: %w", baseBoardID, err)
	}
	return nil
}
