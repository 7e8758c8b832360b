package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/apperrors"
	"project-management-api/internal/auth"
	"project-management-api/internal/config"
	"project-management-api/internal/history"
	"project-management-api/internal/models"
	"project-management-api/internal/realtime"
	"project-management-api/internal/retry"
	"project-management-api/internal/testutil"
)

type recordedEvent struct {
	userIDs []int
	ev      realtime.TaskEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) PublishTaskEvent(userIDs []int, ev realtime.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{userIDs: userIDs, ev: ev})
}

type env struct {
	db           *gorm.DB
	users        UserService
	roles        RoleService
	projects     ProjectService
	boards       BoardService
	statuses     StatusService
	tasks        TaskService
	comments     CommentService
	participants ParticipantService
	publisher    *fakePublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.MustDB(t)
	log := zap.NewNop()
	rc := &retry.Config{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	tokens := auth.NewTokenIssuer(config.JWTConfig{Secret: "s", Issuer: "test", Lifetime: time.Hour})
	pub := &fakePublisher{}

	return &env{
		db:           db,
		users:        NewUserService(db, tokens, 4, log),
		roles:        NewRoleService(db, time.Minute, log),
		projects:     NewProjectService(db, rc, log),
		boards:       NewBoardService(db, rc, log),
		statuses:     NewStatusService(db, rc, log),
		tasks:        NewTaskService(db, history.NewRecorder(db, log), pub, rc, log),
		comments:     NewCommentService(db, log),
		participants: NewParticipantService(db, rc, log),
		publisher:    pub,
	}
}

func (e *env) register(t *testing.T, login, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{Login: login, Name: name, Password: "password123"})
	require.NoError(t, err)
	return u
}

func (e *env) participant(t *testing.T, projectID, userID int) models.Participant {
	t.Helper()
	var p models.Participant
	require.NoError(t, e.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&p).Error)
	return p
}

func kanban(name string) BoardInput {
	return BoardInput{Name: name, Description: "board", Spec: models.KanbanSpec{TaskLimit: 5}}
}

func taskInput(name string, statusID, responsibleID int) TaskInput {
	return TaskInput{
		Name:                name,
		Description:         "do it",
		Priority:            3,
		TimeLimit:           time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second),
		ResponsiblePersonID: responsibleID,
		BoardStatusID:       statusID,
	}
}

func TestEndToEnd_ProjectBoardTaskHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "alice_a", "Alice")

	p, err := e.projects.Create(ctx, a.ID, ProjectInput{Name: "P", IsSecured: true})
	require.NoError(t, err)
	views, err := e.participants.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, a.ID, views[0].UserID)
	require.Equal(t, models.RoleOwner, views[0].RoleID)

	b, err := e.boards.Create(ctx, p.ID, kanban("B"))
	require.NoError(t, err)
	statuses, err := e.statuses.ListByBoard(ctx, b.BaseBoard.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 4)
	require.Equal(t, []string{"New", "In Progress", "In Review", "Done"},
		[]string{statuses[0].Name, statuses[1].Name, statuses[2].Name, statuses[3].Name})

	task, err := e.tasks.Create(ctx, a.ID, taskInput("T", statuses[0].ID, views[0].ID))
	require.NoError(t, err)
	require.Equal(t, views[0].ID, task.CreatorID)
	require.Equal(t, 1, task.Version)

	entries, err := e.tasks.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.ActionCreate, entries[0].ActionTypeID)
	require.Contains(t, entries[0].Action, "Alice")

	require.Len(t, e.publisher.events, 1)
	require.Equal(t, realtime.EventTaskCreated, e.publisher.events[0].ev.Type)
	require.Equal(t, []int{a.ID}, e.publisher.events[0].userIDs)
}

func TestUsers_RegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "bob_b", "Bob")
	require.NotEqual(t, "password123", u.Password)

	_, err := e.users.Register(ctx, RegisterInput{Login: "bob_b", Name: "Other", Password: "password123"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "login", apperrors.ConflictField(err))

	_, err = e.users.Register(ctx, RegisterInput{Login: "b!", Name: "x", Password: "password123"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = e.users.Register(ctx, RegisterInput{Login: "carol", Name: "Carol", Password: "short"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	token, got, err := e.users.Authenticate(ctx, "bob_b", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, u.ID, got.ID)

	_, _, err = e.users.Authenticate(ctx, "bob_b", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, _, err = e.users.Authenticate(ctx, "nobody", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	ok, err := e.users.Exists(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = e.users.Exists(ctx, 9999)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoles_List(t *testing.T) {
	e := newEnv(t)
	roles, err := e.roles.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.SeedRoles, roles)

	// Mutating the returned slice must not poison the cache.
	roles[0].Name = "changed"
	again, err := e.roles.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Owner", again[0].Name)
}

func TestProjects_ListVisible(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "alice_a", "Alice")
	b := e.register(t, "bob_bb", "Bob")

	open, err := e.projects.Create(ctx, a.ID, ProjectInput{Name: "open"})
	require.NoError(t, err)
	secret, err := e.projects.Create(ctx, a.ID, ProjectInput{Name: "secret", IsSecured: true})
	require.NoError(t, err)

	visible, err := e.projects.ListVisible(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, open.ID, visible[0].ID)

	visible, err = e.projects.ListVisible(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, visible, 2)

	updated, err := e.projects.Update(ctx, secret.ID, ProjectInput{Name: "renamed", IsSecured: false})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)
	require.False(t, updated.IsSecured)

	_, err = e.projects.Update(ctx, 9999, ProjectInput{Name: "x"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = e.projects.Create(ctx, a.ID, ProjectInput{Name: ""})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestProjects_DeleteCascadesButKeepsHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "alice_a", "Alice")
	p, err := e.projects.Create(ctx, a.ID, ProjectInput{Name: "P"})
	require.NoError(t, err)
	owner := e.participant(t, p.ID, a.ID)
	b, err := e.boards.Create(ctx, p.ID, kanban("B"))
	require.NoError(t, err)
	statuses, err := e.statuses.ListByBoard(ctx, b.BaseBoard.ID)
	require.NoError(t, err)
	task, err := e.tasks.Create(ctx, a.ID, taskInput("T", statuses[0].ID, owner.ID))
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, a.ID, task.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, e.projects.Delete(ctx, p.ID))

	for _, m := range []any{&models.Project{}, &models.Participant{}, &models.BaseBoard{}, &models.KanbanBoard{},
		&models.BoardStatus{}, &models.Task{}, &models.TaskComment{}} {
		var n int64
		require.NoError(t, e.db.Model(m).Count(&n).Error)
		require.Zero(t, n, "%T", m)
	}
	entries, err := e.tasks.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.ErrorIs(t, e.projects.Delete(ctx, p.ID), apperrors.ErrNotFound)
}

func TestBoards_CreateUpdateDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "alice_a", "Alice")
	p, err := e.projects.Create(ctx, a.ID, ProjectInput{Name: "P"})
	require.NoError(t, err)

	deadline := time.Now().Add(14 * 24 * time.Hour).UTC().Truncate(time.Second)
	scrum, err := e.boards.Create(ctx, p.ID, BoardInput{Name: "Sprint", Spec: models.ScrumSpec{Deadline: deadline}})
	require.NoError(t, err)
	kb, err := e.boards.Create(ctx, p.ID, kanban("Flow"))
	require.NoError(t, err)

	got, err := e.boards.Get(ctx, scrum.BaseBoard.ID)
	require.NoError(t, err)
	require.Equal(t, models.BoardScrum, got.Spec.Type())
	require.True(t, deadline.Equal(got.Spec.(models.ScrumSpec).Deadline))

	list, err := e.boards.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	updated, err := e.boards.Update(ctx, kb.SpecID, kb.BaseBoard.ID,
		BoardInput{Name: "Flow 2", Spec: models.KanbanSpec{TaskLimit: 12}})
	require.NoError(t, err)
	require.Equal(t, "Flow 2", updated.BaseBoard.Name)
	require.Equal(t, models.KanbanSpec{TaskLimit: 12}, updated.Spec)

	_, err = e.boards.Update(ctx, kb.SpecID, scrum.BaseBoard.ID, kanban("x"))
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "baseBoardId", apperrors.ConflictField(err))

	_, err = e.boards.Update(ctx, 9999, kb.BaseBoard.ID, kanban("x"))
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.boards.Create(ctx, p.ID, BoardInput{Name: "bad"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	require.NoError(t, e.boards.Delete(ctx, kb.BaseBoard.ID))
	_, err = e.boards.Get(ctx, kb.BaseBoard.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	var n int64
	require.NoError(t, e.db.Model(&models.BoardStatus{}).Where("base_board_id = ?", kb.BaseBoard.ID).Count(&n).Error)
	require.Zero(t, n)
}

func TestStatuses_ReuseByNameAndBaseStatuses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "alice_a", "Alice")
	p, err := e.projects.Create(ctx, a.ID, ProjectInput{Name: "P"})
	require.NoError(t, err)
	b1, err := e.boards.Create(ctx, p.ID, kanban("B1"))
	require.NoError(t, err)
	b2, err := e.boards.Create(ctx, p.ID, kanban("B2"))
	require.NoError(t, err)

	var statusRows int64
	require.NoError(t, e.db.Model(&models.Status{}).Count(&statusRows).Error)

	// "Done" is seeded; creating it again reuses the existing row.
	done, err := e.statuses.Create(ctx, b1.BaseBoard.ID, "Done")
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, done.StatusID)
	require.Equal(t, "Done", done.Name)
	var after int64
	require.NoError(t, e.db.Model(&models.Status{}).Count(&after).Error)
	require.Equal(t, statusRows, after)

	blocked1, err := e.statuses.Create(ctx, b1.BaseBoard.ID, "Blocked")
	require.NoError(t, err)
	blocked2, err := e.statuses.Create(ctx, b2.BaseBoard.ID, "Blocked")
	require.NoError(t, err)
	require.Equal(t, blocked1.StatusID, blocked2.StatusID)
	require.NotEqual(t, blocked1.ID, blocked2.ID)

	var n int64
	require.NoError(t, e.db.Model(&models.Status{}).Where("name = ?", "Blocked").Count(&n).Error)
	require.EqualValues(t, 1, n)

	// Removing a default and re-seeding restores only that one.
	list, err := e.statuses.ListByBoard(ctx, b1.BaseBoard.ID)
	require.NoError(t, err)
	require.Len(t, list, 6)
	require.NoError(t, e.statuses.Delete(ctx, list[1].ID))

	list, err = e.statuses.CreateBaseStatuses(ctx, b1.BaseBoard.ID)
	require.NoError(t, err)
	require.Len(t, list, 6)
	list, err = e.statuses.CreateBaseStatuses(ctx, b1.BaseBoard.ID)
	require.NoError(t, err)
	require.Len(t, list, 6)

	renamed, err := e.statuses.Update(ctx, blocked1.ID, "Waiting")
	require.NoError(t, err)
	require.Equal(t, "Waiting", renamed.Name)
	rebound, err := e.statuses.Update(ctx, blocked1.ID, "New")
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, rebound.StatusID)

	_, err = e.statuses.CreateBaseStatuses(ctx, 9999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

type taskWorld struct {
	owner, member, outsider *models.User
	project                 *models.Project
	ownerP, memberP         models.Participant
	statuses                []models.BoardStatusView
}

func newTaskWorld(t *testing.T, e *env) taskWorld {
	t.Helper()
	ctx := context.Background()
	var w taskWorld
	w.owner = e.register(t, "owner_1", "Olga")
	w.member = e.register(t, "member_1", "Max")
	w.outsider = e.register(t, "outsider_1", "Otto")

	var err error
	w.project, err = e.projects.Create(ctx, w.owner.ID, ProjectInput{Name: "P", IsSecured: true})
	require.NoError(t, err)
	w.ownerP = e.participant(t, w.project.ID, w.owner.ID)
	mp, err := e.participants.Create(ctx, w.project.ID, w.member.ID, models.RoleAdmin)
	require.NoError(t, err)
	w.memberP = *mp

	b, err := e.boards.Create(ctx, w.project.ID, kanban("B"))
	require.NoError(t, err)
	w.statuses, err = e.statuses.ListByBoard(ctx, b.BaseBoard.ID)
	require.NoError(t, err)
	return w
}

func TestTasks_CreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)

	_, err := e.tasks.Create(ctx, w.outsider.ID, taskInput("T", w.statuses[0].ID, w.ownerP.ID))
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	other, err := e.projects.Create(ctx, w.outsider.ID, ProjectInput{Name: "other"})
	require.NoError(t, err)
	outsiderP := e.participant(t, other.ID, w.outsider.ID)
	_, err = e.tasks.Create(ctx, w.owner.ID, taskInput("T", w.statuses[0].ID, outsiderP.ID))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	in := taskInput("T", w.statuses[0].ID, w.ownerP.ID)
	in.Priority = 11
	_, err = e.tasks.Create(ctx, w.owner.ID, in)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	in = taskInput("T", w.statuses[0].ID, w.ownerP.ID)
	in.TimeLimit = time.Now().Add(-time.Hour)
	_, err = e.tasks.Create(ctx, w.owner.ID, in)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = e.tasks.Create(ctx, w.owner.ID, taskInput("T", 9999, w.ownerP.ID))
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	var n int64
	require.NoError(t, e.db.Model(&models.Task{}).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, e.db.Model(&models.TaskHistory{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestTasks_UpdateWritesDiffAndBumpsVersion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)

	task, err := e.tasks.Create(ctx, w.owner.ID, taskInput("A", w.statuses[0].ID, w.ownerP.ID))
	require.NoError(t, err)

	in := taskInput("B", w.statuses[1].ID, w.memberP.ID)
	in.TimeLimit = task.TimeLimit
	updated, err := e.tasks.Update(ctx, w.member.ID, task.ID, task.Version, in)
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)
	require.Equal(t, task.CreatorID, updated.CreatorID)

	stored, err := e.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "B", stored.Name)
	require.Equal(t, w.statuses[1].ID, stored.BoardStatusID)
	require.Equal(t, 2, stored.Version)

	entries, err := e.tasks.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	action := entries[1].Action
	require.Contains(t, action, "Max made changes: ")
	require.Contains(t, action, "'Name' changed from 'A' to 'B'")
	require.Contains(t, action, "'BoardStatusID' changed")
	require.Contains(t, action, "'ResponsiblePersonID' changed")
	require.NotContains(t, action, "Priority")
	require.NotContains(t, action, "TimeLimit")

	// Stale version.
	_, err = e.tasks.Update(ctx, w.owner.ID, task.ID, 1, in)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "version", apperrors.ConflictField(err))

	require.Len(t, e.publisher.events, 2)
	require.Equal(t, realtime.EventTaskUpdated, e.publisher.events[1].ev.Type)
	require.ElementsMatch(t, []int{w.owner.ID, w.member.ID}, e.publisher.events[1].userIDs)
}

func TestTasks_UpdateRejectsForeignBoardStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)
	task, err := e.tasks.Create(ctx, w.owner.ID, taskInput("A", w.statuses[0].ID, w.ownerP.ID))
	require.NoError(t, err)

	other, err := e.projects.Create(ctx, w.owner.ID, ProjectInput{Name: "other"})
	require.NoError(t, err)
	ob, err := e.boards.Create(ctx, other.ID, kanban("OB"))
	require.NoError(t, err)
	ostatuses, err := e.statuses.ListByBoard(ctx, ob.BaseBoard.ID)
	require.NoError(t, err)

	in := taskInput("A", ostatuses[0].ID, w.ownerP.ID)
	_, err = e.tasks.Update(ctx, w.owner.ID, task.ID, 0, in)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = e.tasks.Update(ctx, w.owner.ID, 9999, 0, in)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.tasks.Update(ctx, w.owner.ID, task.ID, 0, taskInput("A", 9999, w.ownerP.ID))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestCheckMoveTarget(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)

	require.NoError(t, checkMoveTarget(ctx, e.db, w.project.ID, w.statuses[1].ID))
	require.ErrorIs(t, checkMoveTarget(ctx, e.db, w.project.ID+1, w.statuses[1].ID), apperrors.ErrBadRequest)
	require.ErrorIs(t, checkMoveTarget(ctx, e.db, w.project.ID, 9999), apperrors.ErrBadRequest)

	// A failed lookup is not the caller's fault.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := checkMoveTarget(cancelled, e.db, w.project.ID, w.statuses[1].ID)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestTasks_DeleteKeepsHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)
	task, err := e.tasks.Create(ctx, w.owner.ID, taskInput("A", w.statuses[0].ID, w.ownerP.ID))
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, w.member.ID, task.ID, "note")
	require.NoError(t, err)

	require.NoError(t, e.tasks.Delete(ctx, w.member.ID, task.ID))
	_, err = e.tasks.Get(ctx, task.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	entries, err := e.tasks.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.ActionDelete, entries[1].ActionTypeID)
	require.Equal(t, "Max", entries[1].UserName)
	for _, entry := range entries {
		require.Equal(t, w.project.ID, entry.ProjectID)
	}

	require.ErrorIs(t, e.tasks.Delete(ctx, w.member.ID, task.ID), apperrors.ErrNotFound)
}

func TestComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)
	task, err := e.tasks.Create(ctx, w.owner.ID, taskInput("A", w.statuses[0].ID, w.ownerP.ID))
	require.NoError(t, err)

	c, err := e.comments.Create(ctx, w.member.ID, task.ID, "first")
	require.NoError(t, err)
	require.Equal(t, w.memberP.ID, c.ParticipantID)

	_, err = e.comments.Create(ctx, w.outsider.ID, task.ID, "sneaky")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = e.comments.Create(ctx, w.member.ID, task.ID, "")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	c, err = e.comments.Update(ctx, c.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", c.Message)

	list, err := e.comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, e.comments.Delete(ctx, c.ID))
	require.ErrorIs(t, e.comments.Delete(ctx, c.ID), apperrors.ErrNotFound)
}

func TestParticipants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := newTaskWorld(t, e)

	_, err := e.participants.Create(ctx, w.project.ID, w.member.ID, models.RoleUser)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "userId", apperrors.ConflictField(err))

	_, err = e.participants.Create(ctx, w.project.ID, w.outsider.ID, models.RoleID(7))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = e.participants.Create(ctx, w.project.ID, 9999, models.RoleUser)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	// The only owner can be neither demoted nor removed.
	_, err = e.participants.Update(ctx, w.ownerP.ID, models.RoleAdmin)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "roleId", apperrors.ConflictField(err))
	err = e.participants.Delete(ctx, w.ownerP.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	// With a second owner the first can step down.
	_, err = e.participants.Update(ctx, w.memberP.ID, models.RoleOwner)
	require.NoError(t, err)
	p, err := e.participants.Update(ctx, w.ownerP.ID, models.RoleUser)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, p.RoleID)

	// A participant responsible for a task cannot be removed.
	_, err = e.tasks.Create(ctx, w.member.ID, taskInput("A", w.statuses[0].ID, w.ownerP.ID))
	require.NoError(t, err)
	err = e.participants.Delete(ctx, w.ownerP.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, "participantId", apperrors.ConflictField(err))

	np, err := e.participants.Create(ctx, w.project.ID, w.outsider.ID, models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, e.participants.Delete(ctx, np.ID))
	require.ErrorIs(t, e.participants.Delete(ctx, np.ID), apperrors.ErrNotFound)
}
