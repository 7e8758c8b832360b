// Package history writes and reads the append-only task audit trail.
package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/metrics"
	"project-management-api/internal/models"
)

// trackedField is one audited task field. value renders the field and
// reports whether it holds a non-zero value.
type trackedField struct {
	name  string
	value func(t *models.Task) (string, bool)
}

// trackedFields is the audited contract for task updates. ID, CreatorID and
// Version never change through an update; LastUpdate changes on every one.
var trackedFields = []trackedField{
	{"Name", func(t *models.Task) (string, bool) {
		return t.Name, t.Name != ""
	}},
	{"Description", func(t *models.Task) (string, bool) {
		return t.Description, t.Description != ""
	}},
	{"Priority", func(t *models.Task) (string, bool) {
		return strconv.Itoa(t.Priority), t.Priority != 0
	}},
	{"TimeLimit", func(t *models.Task) (string, bool) {
		return t.TimeLimit.UTC().Format(time.RFC3339), !t.TimeLimit.IsZero()
	}},
	{"ResponsiblePersonID", func(t *models.Task) (string, bool) {
		return strconv.Itoa(t.ResponsiblePersonID), t.ResponsiblePersonID != 0
	}},
	{"BoardStatusID", func(t *models.Task) (string, bool) {
		return strconv.Itoa(t.BoardStatusID), t.BoardStatusID != 0
	}},
}

// Diff returns one fragment per tracked field whose old and new values are
// both set and differ. A field that is unset on either side is skipped.
func Diff(old, updated *models.Task) []string {
	var changes []string
	for _, f := range trackedFields {
		before, okBefore := f.value(old)
		after, okAfter := f.value(updated)
		if !okBefore || !okAfter || before == after {
			continue
		}
		changes = append(changes, fmt.Sprintf("'%s' changed from '%s' to '%s'", f.name, before, after))
	}
	return changes
}

// Recorder appends TaskHistory rows. Entries are never updated or deleted.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.Named("history"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a Recorder that writes inside tx, so the history entry
// commits or rolls back together with the task change it describes.
func (r *Recorder) WithTx(tx *gorm.DB) *Recorder {
	cp := *r
	cp.db = tx
	return &cp
}

// RecordCreate appends a Create entry naming the acting user, the task and
// its responsible person. projectID is the project the task belongs to.
func (r *Recorder) RecordCreate(ctx context.Context, projectID int, task *models.Task, userID int) error {
	if task == nil {
		return apperrors.BadRequest("task snapshot is required")
	}
	user, err := r.userName(ctx, userID)
	if err != nil {
		return err
	}
	responsible, err := r.participantName(ctx, task.ResponsiblePersonID)
	if err != nil {
		return err
	}

	action := fmt.Sprintf("%s created a new task named '%s', description '%s', responsible '%s'",
		user, task.Name, task.Description, responsible)
	return r.append(ctx, projectID, task.ID, userID, models.ActionCreate, action)
}

// RecordUpdate appends an Update entry listing every tracked field that
// changed between old and updated. An update with no visible change is
// still recorded.
func (r *Recorder) RecordUpdate(ctx context.Context, projectID int, old, updated *models.Task, userID int) error {
	if old == nil || updated == nil {
		return apperrors.BadRequest("both task snapshots are required")
	}
	user, err := r.userName(ctx, userID)
	if err != nil {
		return err
	}

	action := user + " made changes: " + strings.Join(Diff(old, updated), ", ")
	return r.append(ctx, projectID, updated.ID, userID, models.ActionUpdate, action)
}

// RecordDelete appends a Delete entry. The entry outlives the task.
func (r *Recorder) RecordDelete(ctx context.Context, projectID int, task *models.Task, userID int) error {
	if task == nil {
		return apperrors.BadRequest("task snapshot is required")
	}
	user, err := r.userName(ctx, userID)
	if err != nil {
		return err
	}

	action := fmt.Sprintf("%s deleted the task named '%s'", user, task.Name)
	return r.append(ctx, projectID, task.ID, userID, models.ActionDelete, action)
}

// ListHistory returns the entries of taskID oldest first.
func (r *Recorder) ListHistory(ctx context.Context, taskID int) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := r.db.WithContext(ctx).
		Table("task_histories AS h").
		Select(`h.id AS id, h.date AS date, h.action AS action, h.user_id AS user_id,
			u.name AS user_name, h.task_id AS task_id, h.project_id AS project_id,
			h.action_type_id AS action_type_id,
			act.name AS action_type_name`).
		Joins("LEFT JOIN users AS u ON u.id = h.user_id").
		Joins("LEFT JOIN action_types AS act ON act.id = h.action_type_id").
		Where("h.task_id = ?", taskID).
		Order("h.date ASC, h.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history of task %d: %w", taskID, err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

func (r *Recorder) append(ctx context.Context, projectID, taskID, userID int, action models.ActionTypeID, text string) error {
	entry := models.TaskHistory{
		Date:         r.now(),
		Action:       text,
		UserID:       userID,
		TaskID:       taskID,
		ProjectID:    projectID,
		ActionTypeID: action,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write history for task %d: %w", taskID, err)
	}
	metrics.RecordHistory(actionLabel(action))
	r.logger.Debug("History entry written",
		zap.Int("project_id", projectID), zap.Int("task_id", taskID), zap.Int("user_id", userID), zap.Int("action_type", int(action)))
	return nil
}

func (r *Recorder) userName(ctx context.Context, userID int) (string, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "name").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NotFound("user %d not found", userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user.Name, nil
}

func (r *Recorder) participantName(ctx context.Context, participantID int) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("participants AS pa").
		Joins("JOIN users AS u ON u.id = pa.user_id").
		Where("pa.id = ?", participantID).
		Limit(1).
		Pluck("u.name", &names).Error
	if err != nil {
		return "", fmt.Errorf("failed to load participant %d: %w", participantID, err)
	}
	if len(names) == 0 {
		return "", apperrors.NotFound("responsible person %d not found", participantID)
	}
	return names[0], nil
}

func actionLabel(a models.ActionTypeID) string {
	switch a {
	case models.ActionCreate:
		return "create"
	case models.ActionUpdate:
		return "update"
	case models.ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}
