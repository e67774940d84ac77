package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/core/auth"
	"taskboard/internal/core/cache"
	"taskboard/internal/domain"
	"taskboard/internal/repo"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

type env struct {
	store  *repo.Store
	auth   *service.AuthService
	boards *service.BoardService
	cols   *service.ColumnService
	tasks  *service.TaskService
	admin  *service.AdminService
}

func newEnv(t *testing.T, opts ...service.AuthOption) *env {
	t.Helper()
	s := testutil.NewStore(t)
	a := service.NewAuthService(s, auth.NewJWTer("test-secret", "taskboard", time.Hour), nil, opts...)
	return &env{
		store:  s,
		auth:   a,
		boards: service.NewBoardService(s, nil),
		cols:   service.NewColumnService(s, nil),
		tasks:  service.NewTaskService(s, nil),
		admin:  service.NewAdminService(s, nil, a),
	}
}

// signup 注册并走一遍 Verify，返回调用方身份
func (e *env) signup(t *testing.T, username string) domain.Identity {
	t.Helper()
	ctx := context.Background()
	res, err := e.auth.Register(ctx, service.RegisterInput{
		Username: username, Email: username + "@example.com", Password: "secret123", FullName: username,
	})
	require.NoError(t, err)
	id, err := e.auth.Verify(ctx, res.Token)
	require.NoError(t, err)
	return id
}

func (e *env) newBoard(t *testing.T, caller domain.Identity, name string) (*domain.Board, []domain.Column) {
	t.Helper()
	ctx := context.Background()
	b, err := e.boards.Create(ctx, service.BoardInput{Name: name}, caller)
	require.NoError(t, err)
	cols, err := e.cols.ListByBoard(ctx, b.ID, caller)
	require.NoError(t, err)
	return b, cols
}

func assertKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err), "err: %v", err)
}

// ---- auth ----

func TestAuth_RegisterLoginVerify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.auth.Register(ctx, service.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret123", FullName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, domain.RoleUser, reg.User.Role)
	assert.NotEqual(t, "secret123", reg.User.PasswordHash)

	login, err := e.auth.Login(ctx, service.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	id, err := e.auth.Verify(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)

	me, err := e.auth.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestAuth_RegisterDuplicates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t, "alice")

	_, err := e.auth.Register(ctx, service.RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assertKind(t, err, domain.KindConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.auth.Register(ctx, service.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	assertKind(t, err, domain.KindConflict)
}

func TestAuth_RegisterValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.Register(context.Background(), service.RegisterInput{Username: "  ", Email: "not-an-email", Password: "1"})
	assertKind(t, err, domain.KindValidation)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuth_LoginFailuresAreUniform(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t, "alice")

	_, errBadPw := e.auth.Login(ctx, service.LoginInput{Username: "alice", Password: "wrong-pass"})
	_, errNoUser := e.auth.Login(ctx, service.LoginInput{Username: "nobody", Password: "secret123"})
	assertKind(t, errBadPw, domain.KindUnauthenticated)
	assertKind(t, errNoUser, domain.KindUnauthenticated)
	assert.Equal(t, errBadPw.Error(), errNoUser.Error())
}

func TestAuth_VerifyRejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Verify(ctx, "")
	assertKind(t, err, domain.KindUnauthenticated)
	_, err = e.auth.Verify(ctx, "not.a.jwt")
	assertKind(t, err, domain.KindUnauthenticated)

	other := auth.NewJWTer("other-secret", "taskboard", time.Hour)
	tok, err := other.Issue("u1", "alice", domain.RoleUser)
	require.NoError(t, err)
	_, err = e.auth.Verify(ctx, tok)
	assertKind(t, err, domain.KindUnauthenticated)

	// 签名合法但用户不存在
	tok, err = auth.NewJWTer("test-secret", "taskboard", time.Hour).Issue("ghost", "ghost", domain.RoleUser)
	require.NoError(t, err)
	_, err = e.auth.Verify(ctx, tok)
	assertKind(t, err, domain.KindUnauthenticated)
}

func TestAuth_AdminUsernames(t *testing.T) {
	e := newEnv(t, service.WithAdminUsernames([]string{"Root"}))
	root := e.signup(t, "root")
	bob := e.signup(t, "bob")
	assert.True(t, root.IsAdmin())
	assert.False(t, bob.IsAdmin())
}

func TestAuth_VerifyUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	e := newEnv(t, service.WithUserCache(c, time.Minute))
	ctx := context.Background()

	alice := e.signup(t, "alice")
	key := "taskboard:user:" + alice.UserID
	require.True(t, mr.Exists(key))

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var cached map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "alice", cached["username"])
	assert.NotContains(t, cached, "passwordHash")

	e.auth.ForgetUser(ctx, alice.UserID)
	assert.False(t, mr.Exists(key))
}

// ---- boards ----

func TestBoard_CreateMakesDefaultColumns(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "Sprint1")

	assert.Equal(t, alice.UserID, b.OwnerID)
	require.Len(t, cols, 3)
	for i, name := range []string{"To Do", "In Progress", "Done"} {
		assert.Equal(t, name, cols[i].Name)
		assert.Equal(t, i, cols[i].Order)
		assert.Equal(t, b.ID, cols[i].BoardID)
	}
}

func TestBoard_CreateValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	_, err := e.boards.Create(context.Background(), service.BoardInput{Name: "   "}, alice)
	assertKind(t, err, domain.KindValidation)
	assert.Zero(t, testutil.Count(t, e.store.DB(), "columns"))
}

func TestBoard_ListOnlyOwn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	e.newBoard(t, alice, "A1")
	e.newBoard(t, alice, "A2")
	e.newBoard(t, bob, "B1")

	bs, err := e.boards.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "A1", bs[0].Name)
	assert.Equal(t, "A2", bs[1].Name)
}

func TestBoard_OtherUserForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	b, _ := e.newBoard(t, alice, "Private")

	_, err := e.boards.Get(ctx, b.ID, bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.boards.Update(ctx, b.ID, service.BoardInput{Name: "pwned"}, bob)
	assertKind(t, err, domain.KindForbidden)
	err = e.boards.Delete(ctx, b.ID, bob)
	assertKind(t, err, domain.KindForbidden)

	got, err := e.boards.Get(ctx, b.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Name)
}

func TestBoard_MissingIsNotFound(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	_, err := e.boards.Get(context.Background(), "missing", alice)
	assertKind(t, err, domain.KindNotFound)
}

func TestBoard_UpdateIsFullOverwrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, err := e.boards.Create(ctx, service.BoardInput{Name: "N", Description: "keep?"}, alice)
	require.NoError(t, err)

	got, err := e.boards.Update(ctx, b.ID, service.BoardInput{Name: "N2"}, alice)
	require.NoError(t, err)
	assert.Equal(t, "N2", got.Name)
	assert.Empty(t, got.Description)

	reloaded, err := e.boards.Get(ctx, b.ID, alice)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Description)
	assert.Equal(t, alice.UserID, reloaded.OwnerID)
}

func TestBoard_DeleteLeavesNoOrphans(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")
	_, err := e.tasks.Create(ctx, service.CreateTaskInput{
		Title: "T", BoardID: b.ID, ColumnID: cols[0].ID, Tags: []string{"x", "y"},
	}, alice)
	require.NoError(t, err)

	require.NoError(t, e.boards.Delete(ctx, b.ID, alice))
	db := e.store.DB()
	assert.Zero(t, testutil.Count(t, db, "boards"))
	assert.Zero(t, testutil.Count(t, db, "columns"))
	assert.Zero(t, testutil.Count(t, db, "tasks"))
	assert.Zero(t, testutil.Count(t, db, "task_tags"))

	_, err = e.boards.Get(ctx, b.ID, alice)
	assertKind(t, err, domain.KindNotFound)
}

// ---- columns ----

func TestColumn_CreateAppendsAndRejectsDuplicateOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, _ := e.newBoard(t, alice, "B")

	col, err := e.cols.Create(ctx, b.ID, service.ColumnInput{Name: "Review"}, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, col.Order)

	one := 1
	_, err = e.cols.Create(ctx, b.ID, service.ColumnInput{Name: "Dup", Order: &one}, alice)
	assertKind(t, err, domain.KindConflict)

	ten := 10
	col, err = e.cols.Create(ctx, b.ID, service.ColumnInput{Name: "Later", Order: &ten}, alice)
	require.NoError(t, err)
	assert.Equal(t, 10, col.Order)

	cols, err := e.cols.ListByBoard(ctx, b.ID, alice)
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, "Later", cols[4].Name)
}

func TestColumn_UpdateKeepsOrderWhenOmitted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	_, cols := e.newBoard(t, alice, "B")

	got, err := e.cols.Update(ctx, cols[1].ID, service.ColumnInput{Name: "Doing"}, alice)
	require.NoError(t, err)
	assert.Equal(t, "Doing", got.Name)
	assert.Equal(t, 1, got.Order)

	two := 2
	_, err = e.cols.Update(ctx, cols[1].ID, service.ColumnInput{Name: "Doing", Order: &two}, alice)
	assertKind(t, err, domain.KindConflict)
}

func TestColumn_GateThroughBoard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	b, cols := e.newBoard(t, alice, "B")

	_, err := e.cols.ListByBoard(ctx, b.ID, bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.cols.Create(ctx, b.ID, service.ColumnInput{Name: "X"}, bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.cols.Get(ctx, cols[0].ID, bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.cols.Update(ctx, cols[0].ID, service.ColumnInput{Name: "X"}, bob)
	assertKind(t, err, domain.KindForbidden)
	assertKind(t, e.cols.Delete(ctx, cols[0].ID, bob), domain.KindForbidden)
	_, err = e.cols.Get(ctx, "missing", alice)
	assertKind(t, err, domain.KindNotFound)
}

func TestColumn_DeleteCascadesTasks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")
	_, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols[0].ID, Tags: []string{"a"}}, alice)
	require.NoError(t, err)

	require.NoError(t, e.cols.Delete(ctx, cols[0].ID, alice))
	assert.Zero(t, testutil.Count(t, e.store.DB(), "tasks"))
	assert.Zero(t, testutil.Count(t, e.store.DB(), "task_tags"))
	assert.EqualValues(t, 2, testutil.Count(t, e.store.DB(), "columns"))
}

// ---- tasks ----

func TestTask_CreateDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")

	task, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T1", BoardID: b.ID, ColumnID: cols[0].ID}, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, []string{}, task.Tags)
	assert.Equal(t, 0, task.Order)

	second, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T2", BoardID: b.ID, ColumnID: cols[0].ID, Priority: "high", DueDate: "2026-01-31"}, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)
	assert.Equal(t, domain.PriorityHigh, second.Priority)
	assert.Equal(t, "2026-01-31", second.DueDateString())
}

func TestTask_CreateRejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	b, cols := e.newBoard(t, alice, "B")
	b2, cols2 := e.newBoard(t, alice, "B2")

	cases := []struct {
		name string
		in   service.CreateTaskInput
		who  domain.Identity
		kind domain.Kind
	}{
		{"missing title", service.CreateTaskInput{BoardID: b.ID, ColumnID: cols[0].ID}, alice, domain.KindValidation},
		{"bad priority", service.CreateTaskInput{Title: "T", Priority: "SOON", BoardID: b.ID, ColumnID: cols[0].ID}, alice, domain.KindValidation},
		{"bad date", service.CreateTaskInput{Title: "T", DueDate: "31/01/2026", BoardID: b.ID, ColumnID: cols[0].ID}, alice, domain.KindValidation},
		{"column from other board", service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols2[0].ID}, alice, domain.KindValidation},
		{"missing column", service.CreateTaskInput{Title: "T", BoardID: b2.ID, ColumnID: "missing"}, alice, domain.KindNotFound},
		{"missing board", service.CreateTaskInput{Title: "T", BoardID: "missing", ColumnID: cols[0].ID}, alice, domain.KindNotFound},
		{"not owner", service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols[0].ID}, bob, domain.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.tasks.Create(ctx, tc.in, tc.who)
			assertKind(t, err, tc.kind)
		})
	}
	assert.Zero(t, testutil.Count(t, e.store.DB(), "tasks"))
}

func decodePatch(t *testing.T, body string) service.UpdateTaskInput {
	t.Helper()
	var in service.UpdateTaskInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestTask_PartialUpdateKeepsUntouchedFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")
	task, err := e.tasks.Create(ctx, service.CreateTaskInput{
		Title: "T", Description: "d", Priority: "LOW", DueDate: "2026-03-01",
		Tags: []string{"a", "b", "a"}, BoardID: b.ID, ColumnID: cols[0].ID,
	}, alice)
	require.NoError(t, err)

	_, err = e.tasks.Update(ctx, task.ID, decodePatch(t, `{"title":"X"}`), alice)
	require.NoError(t, err)

	got, err := e.tasks.Get(ctx, task.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, domain.PriorityLow, got.Priority)
	assert.Equal(t, "2026-03-01", got.DueDateString())
	assert.Equal(t, []string{"a", "b", "a"}, got.Tags)
	assert.Equal(t, cols[0].ID, got.ColumnID)
}

func TestTask_UpdateNullClears(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")
	task, err := e.tasks.Create(ctx, service.CreateTaskInput{
		Title: "T", Description: "d", DueDate: "2026-03-01", Tags: []string{"a"}, BoardID: b.ID, ColumnID: cols[0].ID,
	}, alice)
	require.NoError(t, err)

	_, err = e.tasks.Update(ctx, task.ID, decodePatch(t, `{"dueDate":null,"description":null,"tags":null,"priority":"urgent"}`), alice)
	require.NoError(t, err)

	got, err := e.tasks.Get(ctx, task.ID, alice)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.Empty(t, got.Description)
	assert.Empty(t, got.Tags)
	assert.Equal(t, domain.PriorityUrgent, got.Priority)
	assert.Equal(t, "T", got.Title)
}

func TestTask_UpdateRejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	b, cols := e.newBoard(t, alice, "B")
	task, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols[0].ID}, alice)
	require.NoError(t, err)

	for body, kind := range map[string]domain.Kind{
		`{"title":null}`:         domain.KindValidation,
		`{"title":"  "}`:         domain.KindValidation,
		`{"priority":"NOW"}`:     domain.KindValidation,
		`{"priority":null}`:      domain.KindValidation,
		`{"dueDate":"tomorrow"}`: domain.KindValidation,
		`{"order":-1}`:           domain.KindValidation,
		`{"columnId":null}`:      domain.KindValidation,
		`{"columnId":"missing"}`: domain.KindNotFound,
	} {
		_, err := e.tasks.Update(ctx, task.ID, decodePatch(t, body), alice)
		assertKind(t, err, kind)
	}
	_, err = e.tasks.Update(ctx, task.ID, decodePatch(t, `{"title":"mine"}`), bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.tasks.Update(ctx, "missing", decodePatch(t, `{"title":"x"}`), alice)
	assertKind(t, err, domain.KindNotFound)

	got, err := e.tasks.Get(ctx, task.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
}

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, domain.KindValidation, de.Kind, "err: %v", err)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok, "details: %#v", de.Details)
	return details
}

// 创建与部分更新走同一套校验规则，报错字段与文案一致
func TestTask_CreateAndUpdateShareRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")
	task, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols[0].ID}, alice)
	require.NoError(t, err)

	manyTags := make([]string, 51)
	for i := range manyTags {
		manyTags[i] = "t"
	}
	neg := -1
	cases := []struct {
		name   string
		create service.CreateTaskInput
		patch  map[string]any
		field  string
		msg    string
	}{
		{"long title", service.CreateTaskInput{Title: strings.Repeat("x", 256)}, map[string]any{"title": strings.Repeat("x", 256)}, "title", "must not exceed 255 characters"},
		{"long description", service.CreateTaskInput{Title: "T", Description: strings.Repeat("d", 1001)}, map[string]any{"description": strings.Repeat("d", 1001)}, "description", "must not exceed 1000 characters"},
		{"too many tags", service.CreateTaskInput{Title: "T", Tags: manyTags}, map[string]any{"tags": manyTags}, "tags", "must not contain more than 50 items"},
		{"long tag", service.CreateTaskInput{Title: "T", Tags: []string{strings.Repeat("g", 65)}}, map[string]any{"tags": []string{strings.Repeat("g", 65)}}, "tags[0]", "must not exceed 64 characters"},
		{"negative order", service.CreateTaskInput{Title: "T", Order: &neg}, map[string]any{"order": -1}, "order", "must be greater than or equal to 0"},
		{"blank title", service.CreateTaskInput{Title: "   "}, map[string]any{"title": "   "}, "title", "is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.create
			in.BoardID, in.ColumnID = b.ID, cols[0].ID
			_, err := e.tasks.Create(ctx, in, alice)
			assert.Equal(t, tc.msg, validationDetails(t, err)[tc.field])

			body, err := json.Marshal(tc.patch)
			require.NoError(t, err)
			_, err = e.tasks.Update(ctx, task.ID, decodePatch(t, string(body)), alice)
			assert.Equal(t, tc.msg, validationDetails(t, err)[tc.field])
		})
	}

	got, err := e.tasks.Get(ctx, task.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Empty(t, got.Tags)
}

func assertBoardMirrorsColumn(t *testing.T, e *env, caller domain.Identity, taskID string) {
	t.Helper()
	ctx := context.Background()
	task, err := e.tasks.Get(ctx, taskID, caller)
	require.NoError(t, err)
	col, err := e.cols.Get(ctx, task.ColumnID, caller)
	require.NoError(t, err)
	assert.Equal(t, col.BoardID, task.BoardID)
}

func TestTask_MoveColumnRederivesBoard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	b1, cols1 := e.newBoard(t, alice, "B1")
	b2, cols2 := e.newBoard(t, alice, "B2")
	task, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", BoardID: b1.ID, ColumnID: cols1[0].ID, Tags: []string{"k"}}, alice)
	require.NoError(t, err)

	// 同看板内移动，未给 order 时追加到目标列末尾
	_, err = e.tasks.Create(ctx, service.CreateTaskInput{Title: "Other", BoardID: b1.ID, ColumnID: cols1[1].ID}, alice)
	require.NoError(t, err)
	moved, err := e.tasks.Update(ctx, task.ID, decodePatch(t, `{"columnId":"`+cols1[1].ID+`"}`), alice)
	require.NoError(t, err)
	assert.Equal(t, cols1[1].ID, moved.ColumnID)
	assert.Equal(t, b1.ID, moved.BoardID)
	assert.Equal(t, 1, moved.Order)
	assertBoardMirrorsColumn(t, e, alice, task.ID)

	// 跨看板移动
	moved, err = e.tasks.Update(ctx, task.ID, decodePatch(t, `{"columnId":"`+cols2[2].ID+`","order":7}`), alice)
	require.NoError(t, err)
	assert.Equal(t, cols2[2].ID, moved.ColumnID)
	assert.Equal(t, b2.ID, moved.BoardID)
	assert.Equal(t, 7, moved.Order)
	assert.Equal(t, []string{"k"}, moved.Tags)
	assertBoardMirrorsColumn(t, e, alice, task.ID)

	inB1, err := e.tasks.ListByBoard(ctx, b1.ID, alice)
	require.NoError(t, err)
	require.Len(t, inB1, 1)
	assert.Equal(t, "Other", inB1[0].Title)

	inB2, err := e.tasks.ListByColumn(ctx, cols2[2].ID, alice)
	require.NoError(t, err)
	require.Len(t, inB2, 1)
	assert.Equal(t, task.ID, inB2[0].ID)
}

func TestTask_MoveIntoForeignColumnForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	b, cols := e.newBoard(t, alice, "A")
	_, bobCols := e.newBoard(t, bob, "B")
	task, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols[0].ID}, alice)
	require.NoError(t, err)

	_, err = e.tasks.Update(ctx, task.ID, decodePatch(t, `{"columnId":"`+bobCols[0].ID+`"}`), alice)
	assertKind(t, err, domain.KindForbidden)
	assertBoardMirrorsColumn(t, e, alice, task.ID)
}

func TestTask_ListsAreGatedAndOrdered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	b, cols := e.newBoard(t, alice, "B")
	for _, o := range []int{2, 0, 1} {
		order := o
		_, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", Order: &order, BoardID: b.ID, ColumnID: cols[0].ID}, alice)
		require.NoError(t, err)
	}

	ts, err := e.tasks.ListByColumn(ctx, cols[0].ID, alice)
	require.NoError(t, err)
	require.Len(t, ts, 3)
	for i := range ts {
		assert.Equal(t, i, ts[i].Order)
	}

	_, err = e.tasks.ListByBoard(ctx, b.ID, bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.tasks.ListByColumn(ctx, cols[0].ID, bob)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.tasks.Get(ctx, ts[0].ID, bob)
	assertKind(t, err, domain.KindForbidden)
	assertKind(t, e.tasks.Delete(ctx, ts[0].ID, bob), domain.KindForbidden)

	require.NoError(t, e.tasks.Delete(ctx, ts[0].ID, alice))
	_, err = e.tasks.Get(ctx, ts[0].ID, alice)
	assertKind(t, err, domain.KindNotFound)
}

func TestEndToEnd_AliceSprint(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, service.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := e.auth.Login(ctx, service.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	alice, err := e.auth.Verify(ctx, login.Token)
	require.NoError(t, err)

	b, err := e.boards.Create(ctx, service.BoardInput{Name: "Sprint1"}, alice)
	require.NoError(t, err)
	cols, err := e.cols.ListByBoard(ctx, b.ID, alice)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	for i := range cols {
		assert.Equal(t, i, cols[i].Order)
	}

	t1, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T1", BoardID: b.ID, ColumnID: cols[0].ID}, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, t1.Priority)
	assert.Empty(t, t1.Tags)
	assert.NotNil(t, t1.Tags)
}

// ---- admin ----

func TestAdmin_ListUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t, "alice")
	e.signup(t, "bob")
	e.signup(t, "carol")

	page, err := e.admin.ListUsers(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 20, page.Limit)

	page, err = e.admin.ListUsers(ctx, "bo", -5, 500)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, 100, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].Username)
}

func TestAdmin_DeleteUserCascades(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	e := newEnv(t, service.WithAdminUsernames([]string{"root"}), service.WithUserCache(c, time.Minute))
	ctx := context.Background()
	root := e.signup(t, "root")
	alice := e.signup(t, "alice")
	b, cols := e.newBoard(t, alice, "B")
	_, err := e.tasks.Create(ctx, service.CreateTaskInput{Title: "T", BoardID: b.ID, ColumnID: cols[0].ID, Tags: []string{"t"}}, alice)
	require.NoError(t, err)
	keep, _ := e.newBoard(t, root, "mine")

	assertKind(t, e.admin.DeleteUser(ctx, root.UserID, alice), domain.KindForbidden)
	assertKind(t, e.admin.DeleteUser(ctx, root.UserID, root), domain.KindValidation)
	assertKind(t, e.admin.DeleteUser(ctx, "missing", root), domain.KindNotFound)

	require.NoError(t, e.admin.DeleteUser(ctx, alice.UserID, root))
	assert.False(t, mr.Exists("taskboard:user:"+alice.UserID))

	db := e.store.DB()
	assert.EqualValues(t, 1, testutil.Count(t, db, "boards"))
	assert.EqualValues(t, 3, testutil.Count(t, db, "columns"))
	assert.Zero(t, testutil.Count(t, db, "tasks"))
	assert.Zero(t, testutil.Count(t, db, "task_tags"))

	_, err = e.boards.Get(ctx, keep.ID, root)
	require.NoError(t, err)
}
