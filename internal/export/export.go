// Package export renders a project as an .xlsx workbook.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/models"
)

// Sheet names, in workbook order.
const (
	SheetParticipants = "Participants"
	SheetBoards       = "Boards"
	SheetStatuses     = "Statuses"
	SheetTasks        = "Tasks"
	SheetHistory      = "History"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Exporter struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewExporter(db *gorm.DB, logger *zap.Logger) *Exporter {
	return &Exporter{db: db, logger: logger.Named("export")}
}

type boardRow struct {
	ID          int
	Name        string
	Description string
	TaskLimit   *int
	TimeLimit   *time.Time
}

type statusRow struct {
	ID          int
	BoardName   string
	Name        string
	BaseBoardID int
}

type taskRow struct {
	models.Task
	StatusName      string
	CreatorName     string
	ResponsibleName string
}

// WriteProject writes the workbook of projectID to w.
func (e *Exporter) WriteProject(ctx context.Context, projectID int, w io.Writer) error {
	db := e.db.WithContext(ctx)

	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("project %d not found", projectID)
		}
		return fmt.Errorf("failed to load project %d: %w", projectID, err)
	}

	var participants []models.ParticipantView
	err := db.Table("participants AS pa").
		Select("pa.id AS id, pa.project_id AS project_id, pa.user_id AS user_id, pa.role_id AS role_id, u.name AS user_name, u.login AS user_login").
		Joins("JOIN users AS u ON u.id = pa.user_id").
		Where("pa.project_id = ?", projectID).
		Order("pa.id").
		Scan(&participants).Error
	if err != nil {
		return fmt.Errorf("failed to read participants: %w", err)
	}

	var boards []boardRow
	err = db.Table("base_boards AS b").
		Select("b.id AS id, b.name AS name, b.description AS description, k.task_limit AS task_limit, s.time_limit AS time_limit").
		Joins("LEFT JOIN kanban_boards AS k ON k.base_board_id = b.id").
		Joins("LEFT JOIN scrum_boards AS s ON s.base_board_id = b.id").
		Where("b.project_id = ?", projectID).
		Order("b.id").
		Scan(&boards).Error
	if err != nil {
		return fmt.Errorf("failed to read boards: %w", err)
	}

	var statuses []statusRow
	err = db.Table("board_statuses AS bs").
		Select("bs.id AS id, b.name AS board_name, st.name AS name, bs.base_board_id AS base_board_id").
		Joins("JOIN base_boards AS b ON b.id = bs.base_board_id").
		Joins("JOIN statuses AS st ON st.id = bs.status_id").
		Where("b.project_id = ?", projectID).
		Order("bs.id").
		Scan(&statuses).Error
	if err != nil {
		return fmt.Errorf("failed to read statuses: %w", err)
	}

	var tasks []taskRow
	err = db.Table("tasks AS t").
		Select(`t.*, st.name AS status_name, cu.name AS creator_name, ru.name AS responsible_name`).
		Joins("JOIN board_statuses AS bs ON bs.id = t.board_status_id").
		Joins("JOIN base_boards AS b ON b.id = bs.base_board_id").
		Joins("JOIN statuses AS st ON st.id = bs.status_id").
		Joins("JOIN participants AS cp ON cp.id = t.creator_id").
		Joins("JOIN users AS cu ON cu.id = cp.user_id").
		Joins("JOIN participants AS rp ON rp.id = t.responsible_person_id").
		Joins("JOIN users AS ru ON ru.id = rp.user_id").
		Where("b.project_id = ?", projectID).
		Order("t.id").
		Scan(&tasks).Error
	if err != nil {
		return fmt.Errorf("failed to read tasks: %w", err)
	}

	// Entries of deleted tasks stay in the project's trail.
	var entries []models.HistoryEntry
	err = db.Table("task_histories AS h").
		Select("h.id AS id, h.date AS date, h.action AS action, h.user_id AS user_id, u.name AS user_name, h.task_id AS task_id, h.project_id AS project_id, h.action_type_id AS action_type_id, act.name AS action_type_name").
		Joins("LEFT JOIN users AS u ON u.id = h.user_id").
		Joins("LEFT JOIN action_types AS act ON act.id = h.action_type_id").
		Where("h.project_id = ?", projectID).
		Order("h.date, h.id").
		Scan(&entries).Error
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetParticipants, []any{"Id", "UserId", "Login", "Name", "RoleId"}, participantRows(participants)},
		{SheetBoards, []any{"Id", "Name", "Description", "Type", "TaskLimit", "Deadline"}, boardRows(boards)},
		{SheetStatuses, []any{"Id", "BoardId", "Board", "Name"}, statusRows(statuses)},
		{SheetTasks, []any{"Id", "Name", "Description", "Priority", "Status", "Creator", "Responsible", "TimeLimit", "LastUpdate", "Version"}, taskRows(tasks)},
		{SheetHistory, []any{"Id", "Date", "TaskId", "User", "ActionType", "Action"}, historyRows(entries)},
	}
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return err
		}
		if err := writeRows(f, sh.name, sh.header, sh.rows); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	e.logger.Info("Project exported",
		zap.Int("project_id", projectID), zap.Int("tasks", len(tasks)), zap.Int("history", len(entries)))
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func participantRows(ps []models.ParticipantView) [][]any {
	rows := make([][]any, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []any{p.ID, p.UserID, p.UserLogin, p.UserName, int(p.RoleID)})
	}
	return rows
}

func boardRows(bs []boardRow) [][]any {
	rows := make([][]any, 0, len(bs))
	for _, b := range bs {
		row := []any{b.ID, b.Name, b.Description}
		switch {
		case b.TaskLimit != nil:
			row = append(row, string(models.BoardKanban), *b.TaskLimit, "")
		case b.TimeLimit != nil:
			row = append(row, string(models.BoardScrum), "", formatTime(*b.TimeLimit))
		default:
			row = append(row, "", "", "")
		}
		rows = append(rows, row)
	}
	return rows
}

func statusRows(ss []statusRow) [][]any {
	rows := make([][]any, 0, len(ss))
	for _, s := range ss {
		rows = append(rows, []any{s.ID, s.BaseBoardID, s.BoardName, s.Name})
	}
	return rows
}

func taskRows(ts []taskRow) [][]any {
	rows := make([][]any, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, []any{
			t.ID, t.Name, t.Description, t.Priority, t.StatusName, t.CreatorName, t.ResponsibleName,
			formatTime(t.TimeLimit), formatTime(t.LastUpdate), t.Version,
		})
	}
	return rows
}

func historyRows(es []models.HistoryEntry) [][]any {
	rows := make([][]any, 0, len(es))
	for _, e := range es {
		rows = append(rows, []any{e.ID, formatTime(e.Date), e.TaskID, e.UserName, e.ActionTypeName, e.Action})
	}
	return rows
}
