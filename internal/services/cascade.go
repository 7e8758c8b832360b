package services

import (
	"gorm.io/gorm"

	"project-management-api/internal/models"
)

// The purge helpers delete children before parents so that RESTRICT and
// CASCADE foreign keys behave the same on every driver. Task history is
// left in place. All of them must run inside a transaction.

func purgeTasks(tx *gorm.DB, taskIDs []int) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error
}

func purgeBoardStatuses(tx *gorm.DB, boardStatusIDs []int) error {
	if len(boardStatusIDs) == 0 {
		return nil
	}
	var taskIDs []int
	if err := tx.Model(&models.Task{}).Where("board_status_id IN ?", boardStatusIDs).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if err := purgeTasks(tx, taskIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", boardStatusIDs).Delete(&models.BoardStatus{}).Error
}

func purgeBoards(tx *gorm.DB, baseBoardIDs []int) error {
	if len(baseBoardIDs) == 0 {
		return nil
	}
	var statusIDs []int
	if err := tx.Model(&models.BoardStatus{}).Where("base_board_id IN ?", baseBoardIDs).Pluck("id", &statusIDs).Error; err != nil {
		return err
	}
	if err := purgeBoardStatuses(tx, statusIDs); err != nil {
		return err
	}
	if err := tx.Where("base_board_id IN ?", baseBoardIDs).Delete(&models.KanbanBoard{}).Error; err != nil {
		return err
	}
	if err := tx.Where("base_board_id IN ?", baseBoardIDs).Delete(&models.ScrumBoard{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", baseBoardIDs).Delete(&models.BaseBoard{}).Error
}

func purgeProject(tx *gorm.DB, projectID int) error {
	var boardIDs []int
	if err := tx.Model(&models.BaseBoard{}).Where("project_id = ?", projectID).Pluck("id", &boardIDs).Error; err != nil {
		return err
	}
	if err := purgeBoards(tx, boardIDs); err != nil {
		return err
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.Participant{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Project{}, projectID).Error
}
