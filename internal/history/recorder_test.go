package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/models"
	"project-management-api/internal/testutil"
)

type fixture struct {
	db    *gorm.DB
	rec   *Recorder
	alice models.User
	bob   models.User
	task  models.Task
	bobP  models.Participant

	projectID int
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.MustDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	project, aliceP := testutil.CreateProject(t, db, alice, true)
	bobP := testutil.AddParticipant(t, db, project, bob, models.RoleUser)
	_, statuses := testutil.CreateKanbanBoard(t, db, project)
	task := testutil.CreateTask(t, db, statuses[0], aliceP, bobP, "Write report")

	rec := NewRecorder(db, zap.NewNop())
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return fixture{db: db, rec: rec, alice: alice, bob: bob, task: task, bobP: bobP, projectID: project.ID}
}

func TestDiff_ReportsChangedFieldOnly(t *testing.T) {
	old := &models.Task{Name: "A", Priority: 1}
	updated := &models.Task{Name: "B", Priority: 1}

	changes := Diff(old, updated)
	require.Equal(t, []string{"'Name' changed from 'A' to 'B'"}, changes)
}

func TestDiff_SkipsFieldsUnsetOnEitherSide(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	old := &models.Task{Name: "A", Description: "", Priority: 2, TimeLimit: deadline, BoardStatusID: 4}
	updated := &models.Task{Name: "A", Description: "now set", Priority: 0, TimeLimit: deadline.Add(time.Hour), BoardStatusID: 5}

	changes := Diff(old, updated)
	require.Equal(t, []string{
		"'TimeLimit' changed from '2026-05-01T12:00:00Z' to '2026-05-01T13:00:00Z'",
		"'BoardStatusID' changed from '4' to '5'",
	}, changes)
}

func TestDiff_IgnoresUntrackedFields(t *testing.T) {
	old := &models.Task{ID: 1, Name: "A", CreatorID: 1, Version: 1, LastUpdate: time.Now()}
	updated := &models.Task{ID: 2, Name: "A", CreatorID: 2, Version: 2, LastUpdate: time.Now().Add(time.Hour)}
	require.Empty(t, Diff(old, updated))
}

func TestRecordCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.rec.RecordCreate(ctx, f.projectID, &f.task, f.alice.ID))

	entries, err := f.rec.ListHistory(ctx, f.task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, models.ActionCreate, e.ActionTypeID)
	require.Equal(t, "Create", e.ActionTypeName)
	require.Equal(t, "alice", e.UserName)
	require.Equal(t, f.task.ID, e.TaskID)
	require.Equal(t, f.projectID, e.ProjectID)
	require.Equal(t,
		"alice created a new task named 'Write report', description 'fixture task', responsible 'bob'",
		e.Action)
	require.Equal(t, time.Date(2026, 3, 1, 9, 1, 0, 0, time.UTC), e.Date.UTC())
}

func TestRecordCreate_Failures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.rec.RecordCreate(ctx, f.projectID, nil, f.alice.ID)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	err = f.rec.RecordCreate(ctx, f.projectID, &f.task, 9999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	orphan := f.task
	orphan.ResponsiblePersonID = 9999
	err = f.rec.RecordCreate(ctx, f.projectID, &orphan, f.alice.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	entries, err := f.rec.ListHistory(ctx, f.task.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecordUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	old := f.task
	updated := f.task
	updated.Name = "Write final report"
	updated.Priority = 8

	require.NoError(t, f.rec.RecordUpdate(ctx, f.projectID, &old, &updated, f.bob.ID))

	entries, err := f.rec.ListHistory(ctx, f.task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.ActionUpdate, entries[0].ActionTypeID)
	require.Equal(t,
		"bob made changes: 'Name' changed from 'Write report' to 'Write final report', 'Priority' changed from '5' to '8'",
		entries[0].Action)
}

func TestRecordUpdate_Failures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.ErrorIs(t, f.rec.RecordUpdate(ctx, f.projectID, nil, &f.task, f.alice.ID), apperrors.ErrBadRequest)
	require.ErrorIs(t, f.rec.RecordUpdate(ctx, f.projectID, &f.task, nil, f.alice.ID), apperrors.ErrBadRequest)
	// The snapshot check comes before the user lookup.
	require.ErrorIs(t, f.rec.RecordUpdate(ctx, f.projectID, nil, nil, 9999), apperrors.ErrBadRequest)
	require.ErrorIs(t, f.rec.RecordUpdate(ctx, f.projectID, &f.task, &f.task, 9999), apperrors.ErrNotFound)
}

func TestListHistory_OrderedAndSurvivesTaskDeletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	updated := f.task
	updated.Priority = 1
	require.NoError(t, f.rec.RecordCreate(ctx, f.projectID, &f.task, f.alice.ID))
	require.NoError(t, f.rec.RecordUpdate(ctx, f.projectID, &f.task, &updated, f.alice.ID))
	require.NoError(t, f.rec.RecordDelete(ctx, f.projectID, &updated, f.bob.ID))
	require.NoError(t, f.db.Delete(&models.Task{}, f.task.ID).Error)

	entries, err := f.rec.ListHistory(ctx, f.task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, models.ActionCreate, entries[0].ActionTypeID)
	require.Equal(t, models.ActionUpdate, entries[1].ActionTypeID)
	require.Equal(t, models.ActionDelete, entries[2].ActionTypeID)
	require.Equal(t, "bob deleted the task named 'Write report'", entries[2].Action)
	require.True(t, entries[0].Date.Before(entries[1].Date))
}

func TestListHistory_EmptyIsNotNil(t *testing.T) {
	f := setup(t)
	entries, err := f.rec.ListHistory(context.Background(), 12345)
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestWithTx_RollsBackWithTransaction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_ = f.db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, f.rec.WithTx(tx).RecordCreate(ctx, f.projectID, &f.task, f.alice.ID))
		return gorm.ErrInvalidTransaction
	})

	entries, err := f.rec.ListHistory(ctx, f.task.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}
