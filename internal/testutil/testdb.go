package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"project-management-api/internal/database"
	"project-management-api/internal/models"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations and seeding.
// The pool is pinned to one connection: every new connection to ":memory:"
// would otherwise see an empty database.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MustDB is NewInMemoryDB for tests; the database is closed on cleanup.
func MustDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		var sqlDB *sql.DB
		if sqlDB, err = db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user whose login equals name.
func CreateUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Name: name, Login: name, Password: "not-a-real-hash"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// CreateProject inserts a project and makes owner its Owner participant.
func CreateProject(t *testing.T, db *gorm.DB, owner models.User, secured bool) (models.Project, models.Participant) {
	t.Helper()
	p := models.Project{Name: "project of " + owner.Name, Description: "fixture", IsSecured: secured}
	require.NoError(t, db.Create(&p).Error)
	part := AddParticipant(t, db, p, owner, models.RoleOwner)
	return p, part
}

// AddParticipant inserts a participant row.
func AddParticipant(t *testing.T, db *gorm.DB, p models.Project, u models.User, role models.RoleID) models.Participant {
	t.Helper()
	part := models.Participant{ProjectID: p.ID, UserID: u.ID, RoleID: role}
	require.NoError(t, db.Create(&part).Error)
	return part
}

// CreateKanbanBoard inserts a kanban board with the four default statuses
// and returns the board and its status rows in default order.
func CreateKanbanBoard(t *testing.T, db *gorm.DB, p models.Project) (models.BaseBoard, []models.BoardStatus) {
	t.Helper()
	bb := models.BaseBoard{Name: "board", Description: "fixture", ProjectID: p.ID}
	require.NoError(t, db.Create(&bb).Error)
	require.NoError(t, db.Create(&models.KanbanBoard{TaskLimit: 10, BaseBoardID: bb.ID}).Error)

	statuses := make([]models.BoardStatus, 0, len(models.DefaultStatuses))
	for _, id := range models.DefaultStatuses {
		statuses = append(statuses, models.BoardStatus{BaseBoardID: bb.ID, StatusID: id})
	}
	require.NoError(t, db.Create(&statuses).Error)
	return bb, statuses
}

// CreateTask inserts a task created by and assigned to the given participants.
func CreateTask(t *testing.T, db *gorm.DB, bs models.BoardStatus, creator, responsible models.Participant, name string) models.Task {
	t.Helper()
	task := models.Task{
		Name:                name,
		Description:         "fixture task",
		Priority:            5,
		LastUpdate:          time.Now().UTC(),
		TimeLimit:           time.Now().UTC().Add(72 * time.Hour),
		CreatorID:           creator.ID,
		ResponsiblePersonID: responsible.ID,
		BoardStatusID:       bs.ID,
		Version:             1,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

// CreateComment inserts a comment by author on task.
func CreateComment(t *testing.T, db *gorm.DB, task models.Task, author models.Participant, msg string) models.TaskComment {
	t.Helper()
	c := models.TaskComment{Message: msg, ParticipantID: author.ID, TaskID: task.ID}
	require.NoError(t, db.Create(&c).Error)
	return c
}
