// Package access decides whether a user may act on a resource. Roles are
// scoped per project, so every check re-derives the owning project and the
// user's participant row in it from current data.
package access

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/metrics"
	"project-management-api/internal/models"
)

// Resource names a kind of entity that access can be checked against.
type Resource string

const (
	ResourceProject     Resource = "project"
	ResourceBoard       Resource = "board"
	ResourceBoardStatus Resource = "board_status"
	ResourceTask        Resource = "task"
	ResourceParticipant Resource = "participant"
	ResourceComment     Resource = "comment"
)

// ownerQuery selects the owning project of one resource kind. Every query
// aliases the project as p and binds the resource id as its only argument.
type ownerQuery struct {
	from  string
	joins []string
	where string
}

var ownerQueries = map[Resource]ownerQuery{
	ResourceProject: {
		from:  "projects AS p",
		where: "p.id = ?",
	},
	ResourceBoard: {
		from:  "base_boards AS b",
		joins: []string{"JOIN projects AS p ON p.id = b.project_id"},
		where: "b.id = ?",
	},
	ResourceBoardStatus: {
		from: "board_statuses AS bs",
		joins: []string{
			"JOIN base_boards AS b ON b.id = bs.base_board_id",
			"JOIN projects AS p ON p.id = b.project_id",
		},
		where: "bs.id = ?",
	},
	ResourceTask: {
		from: "tasks AS t",
		joins: []string{
			"JOIN board_statuses AS bs ON bs.id = t.board_status_id",
			"JOIN base_boards AS b ON b.id = bs.base_board_id",
			"JOIN projects AS p ON p.id = b.project_id",
		},
		where: "t.id = ?",
	},
	ResourceParticipant: {
		from:  "participants AS target",
		joins: []string{"JOIN projects AS p ON p.id = target.project_id"},
		where: "target.id = ?",
	},
}

// Resolver answers role-scoped access questions. It keeps no state between
// calls; decisions are never cached.
type Resolver struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewResolver(db *gorm.DB, logger *zap.Logger) *Resolver {
	return &Resolver{db: db, logger: logger.Named("access")}
}

// owner is the owning project of a resource plus the caller's role in it.
// RoleID is nil when the caller has no participant row in the project.
type owner struct {
	ProjectID int
	IsSecured bool
	RoleID    *models.RoleID
}

// HasAccess reports whether userID may perform an operation that requires
// one of allowed on the resource id of kind res.
//
// When allowed contains the User role, membership with any role or an
// unsecured project is enough. Otherwise the user's role in the owning
// project must itself be listed. A missing resource is a denial, not an
// error; the error is reserved for persistence failures and cancellation.
func (r *Resolver) HasAccess(ctx context.Context, res Resource, id, userID int, allowed []models.RoleID) (bool, error) {
	if res == ResourceComment {
		return r.HasCommentAccess(ctx, id, userID)
	}
	q, ok := ownerQueries[res]
	if !ok {
		return false, fmt.Errorf("unknown resource kind %q", res)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	tx := r.db.WithContext(ctx).
		Table(q.from).
		Select("p.id AS project_id, p.is_secured AS is_secured, pa.role_id AS role_id")
	for _, j := range q.joins {
		tx = tx.Joins(j)
	}
	var rows []owner
	err := tx.
		Joins("LEFT JOIN participants AS pa ON pa.project_id = p.id AND pa.user_id = ?", userID).
		Where(q.where, id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		metrics.RecordAccess(string(res), false, err)
		r.logger.Error("Access check failed",
			zap.String("resource", string(res)), zap.Int("id", id), zap.Int("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("failed to resolve %s %d: %w", res, id, err)
	}

	granted := len(rows) == 1 && decide(rows[0], allowed)
	metrics.RecordAccess(string(res), granted, nil)
	r.logger.Debug("Access decision",
		zap.String("resource", string(res)),
		zap.Int("id", id),
		zap.Int("user_id", userID),
		zap.Bool("granted", granted))
	return granted, nil
}

func decide(o owner, allowed []models.RoleID) bool {
	if containsRole(allowed, models.RoleUser) {
		return !o.IsSecured || o.RoleID != nil
	}
	return o.RoleID != nil && containsRole(allowed, *o.RoleID)
}

func containsRole(roles []models.RoleID, role models.RoleID) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasCommentAccess reports whether userID authored commentID. No role is
// consulted: only the author may change a comment.
func (r *Resolver) HasCommentAccess(ctx context.Context, commentID, userID int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var count int64
	err := r.db.WithContext(ctx).
		Table("task_comments AS c").
		Joins("JOIN participants AS pa ON pa.id = c.participant_id").
		Where("c.id = ? AND pa.user_id = ?", commentID, userID).
		Count(&count).Error
	if err != nil {
		metrics.RecordAccess(string(ResourceComment), false, err)
		return false, fmt.Errorf("failed to resolve comment %d: %w", commentID, err)
	}
	granted := count > 0
	metrics.RecordAccess(string(ResourceComment), granted, nil)
	r.logger.Debug("Access decision",
		zap.String("resource", string(ResourceComment)),
		zap.Int("id", commentID),
		zap.Int("user_id", userID),
		zap.Bool("granted", granted))
	return granted, nil
}

func (r *Resolver) HasProjectAccess(ctx context.Context, projectID, userID int, allowed []models.RoleID) (bool, error) {
	return r.HasAccess(ctx, ResourceProject, projectID, userID, allowed)
}

func (r *Resolver) HasBoardAccess(ctx context.Context, baseBoardID, userID int, allowed []models.RoleID) (bool, error) {
	return r.HasAccess(ctx, ResourceBoard, baseBoardID, userID, allowed)
}

func (r *Resolver) HasBoardStatusAccess(ctx context.Context, boardStatusID, userID int, allowed []models.RoleID) (bool, error) {
	return r.HasAccess(ctx, ResourceBoardStatus, boardStatusID, userID, allowed)
}

func (r *Resolver) HasTaskAccess(ctx context.Context, taskID, userID int, allowed []models.RoleID) (bool, error) {
	return r.HasAccess(ctx, ResourceTask, taskID, userID, allowed)
}

func (r *Resolver) HasParticipantAccess(ctx context.Context, participantID, userID int, allowed []models.RoleID) (bool, error) {
	return r.HasAccess(ctx, ResourceParticipant, participantID, userID, allowed)
}

// Require is HasAccess turned into an error: apperrors.ErrUnauthorized on
// denial, the underlying error on failure.
func (r *Resolver) Require(ctx context.Context, res Resource, id, userID int, allowed []models.RoleID) error {
	ok, err := r.HasAccess(ctx, res, id, userID, allowed)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Unauthorized("no access to %s %d", res, id)
	}
	return nil
}
