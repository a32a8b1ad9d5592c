package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{t: t, now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return ts.now }

	authSvc, err := service.NewAuthService(service.AuthDeps{
		Users:         repository.NewUsers(),
		Sessions:      repository.NewSessions(),
		Resets:        repository.NewResets(),
		Hasher:        auth.NewBcryptHasher(bcrypt.MinCost),
		ResetTokens:   auth.NewResetTokens([]byte("test-secret"), clock),
		ResetTokenTTL: 15 * time.Minute,
		Now:           clock,
	})
	require.NoError(t, err)
	activity := repository.NewActivity()
	todoSvc := service.NewTodoService(repository.NewTodos(activity, clock), activity, nil)

	ts.router = Router(Deps{Auth: authSvc, Todos: todoSvc, CORSOrigins: "*"})
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(ts.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type authResp struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type todoResp struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	DurationValue int    `json:"durationValue"`
	DurationUnit  string `json:"durationUnit"`
	DueDate       string `json:"dueDate"`
	CreatedAt     string `json:"createdAt"`
}

type activityResp struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Action    string `json:"action"`
	TodoTitle string `json:"todoTitle"`
	Timestamp string `json:"timestamp"`
}

func (ts *testServer) register(name, email, password string) authResp {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": name, "email": email, "password": password})
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResp](ts.t, w)
}

func (ts *testServer) createTodo(token string, body any) todoResp {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/todos", token, body)
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[todoResp](ts.t, w)
}

func (ts *testServer) activity(token string) []activityResp {
	ts.t.Helper()
	w := ts.do(http.MethodGet, "/api/todos/activity", token, nil)
	require.Equal(ts.t, http.StatusOK, w.Code)
	return decode[[]activityResp](ts.t, w)
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Carol", "email": "Carol@Test.COM", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "pw\"")
	res := decode[authResp](t, w)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "carol@test.com", res.User.Email)

	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Carol", "email": "carol@test.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@y.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Name, email and password are required"}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateEmailDiffersOnlyInCase(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Bob", "Bob@x.com", "pw")

	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Bob", "email": "bob@x.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Dan", "dan@x.com", "pw")

	login := func(body any) *httptest.ResponseRecorder {
		return ts.do(http.MethodPost, "/api/auth/login", "", body)
	}

	w1 := login(map[string]string{"email": "dan@x.com", "password": "pw"})
	w2 := login(map[string]string{"email": "dan@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, http.StatusOK, w2.Code)
	a, b := decode[authResp](t, w1), decode[authResp](t, w2)
	assert.NotEqual(t, a.Token, b.Token)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/todos", a.Token, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/todos", b.Token, nil).Code)

	for _, body := range []any{
		map[string]string{"email": "dan@x.com", "password": "nope"},
		map[string]string{"email": "ghost@x.com", "password": "pw"},
		map[string]string{"email": "dan@x.com"},
		"",
	} {
		w := login(body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%v", body)
	}
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	res := ts.register("Fay", "fay@x.com", "pw")

	for _, tok := range []string{res.Token, res.Token, ""} {
		w := ts.do(http.MethodPost, "/api/auth/logout", tok, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}

	w := ts.do(http.MethodGet, "/api/todos", res.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestForgotAndResetPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Hal", "hal@x.com", "old")

	w := ts.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"resetToken":null}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "hal@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[struct {
		ResetToken string `json:"resetToken"`
	}](t, w).ResetToken
	require.NotEmpty(t, token)

	reset := map[string]string{"token": token, "newPassword": "new"}
	w = ts.do(http.MethodPost, "/api/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired reset token"}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "hal@x.com", "password": "new"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetTokenExpires(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Ivy", "ivy@x.com", "old")
	w := ts.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ivy@x.com"})
	token := decode[struct {
		ResetToken string `json:"resetToken"`
	}](t, w).ResetToken

	ts.now = ts.now.Add(16 * time.Minute)

	w = ts.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": token, "newPassword": "new"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodGet, "/api/todos/activity"},
		{http.MethodPatch, "/api/todos/x"},
		{http.MethodDelete, "/api/todos/x"},
	} {
		w := ts.do(r.method, r.path, "bogus", map[string]string{"title": "t"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}
}

func TestCreateTodo(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.register("Ann", "ann@x.com", "pw").Token

	todo := ts.createTodo(tok, map[string]any{"title": "  Trimmed  ", "priority": "high"})
	assert.Regexp(t, `^[0-9a-f-]{36}$`, todo.ID)
	assert.Equal(t, "Trimmed", todo.Title)
	assert.Equal(t, "high", todo.Priority)
	assert.Equal(t, "pending", todo.Status)
	assert.NotEmpty(t, todo.UserID)
	assert.NotEmpty(t, todo.CreatedAt)

	full := ts.createTodo(tok, map[string]any{"title": "Full task", "description": "Fix the bug", "durationValue": 30, "durationUnit": "minutes"})
	assert.Equal(t, "Fix the bug", full.Description)
	assert.Equal(t, 30, full.DurationValue)
	assert.Equal(t, "minutes", full.DurationUnit)
	assert.Equal(t, "medium", full.Priority)

	for _, p := range []string{"low", "medium", "high", "critical"} {
		assert.Equal(t, p, ts.createTodo(tok, map[string]any{"title": "Task " + p, "priority": p}).Priority)
	}

	w := ts.do(http.MethodPost, "/api/todos", tok, map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Title is required"}`, w.Body.String())

	w = ts.do(http.MethodPost, "/api/todos", tok, map[string]any{"priority": "medium"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Title is required"}`, w.Body.String())
}

func TestOwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("Alice", "alice@x.com", "pw").Token
	bob := ts.register("Bob", "bob@x.com", "pw").Token

	mine := ts.createTodo(alice, map[string]any{"title": "User1 task"})
	ts.createTodo(bob, map[string]any{"title": "User2 task"})

	list := decode[[]todoResp](t, ts.do(http.MethodGet, "/api/todos", alice, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "User1 task", list[0].Title)

	w := ts.do(http.MethodPatch, "/api/todos/"+mine.ID, bob, map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Todo not found"}`, w.Body.String())

	w = ts.do(http.MethodDelete, "/api/todos/"+mine.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPatch, "/api/todos/nonexistent-id", alice, map[string]any{"title": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, e := range ts.activity(bob) {
		assert.NotEqual(t, "User1 task", e.TodoTitle)
	}
}

func TestEmptyListsAreArrays(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.register("Zed", "zed@x.com", "pw").Token

	assert.JSONEq(t, `[]`, ts.do(http.MethodGet, "/api/todos", tok, nil).Body.String())
	assert.JSONEq(t, `[]`, ts.do(http.MethodGet, "/api/todos/activity", tok, nil).Body.String())
}

func TestStatusTransitionsAndActivity(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.register("Sam", "sam@x.com", "pw").Token
	todo := ts.createTodo(tok, map[string]any{"title": "Patchable task", "priority": "low"})

	patch := func(body any) todoResp {
		t.Helper()
		w := ts.do(http.MethodPatch, "/api/todos/"+todo.ID, tok, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[todoResp](t, w)
	}

	assert.Equal(t, "completed", patch(map[string]any{"status": "completed"}).Status)
	assert.Equal(t, "pending", patch(map[string]any{"status": "pending"}).Status)
	assert.Equal(t, "in-progress", patch(map[string]any{"status": "in-progress"}).Status)
	renamed := patch(map[string]any{"title": "Renamed task", "dueDate": "2026-03-01"})
	assert.Equal(t, "Renamed task", renamed.Title)
	assert.Equal(t, "low", renamed.Priority)
	assert.Equal(t, "2026-03-01", renamed.DueDate)
	assert.Empty(t, patch(map[string]any{"dueDate": nil}).DueDate)

	logs := ts.activity(tok)
	require.Len(t, logs, 4)
	assert.Equal(t, "in-progress", logs[0].Action)
	assert.Equal(t, "uncompleted", logs[1].Action)
	assert.Equal(t, "completed", logs[2].Action)
	assert.Equal(t, "created", logs[3].Action)
	assert.Equal(t, "Patchable task", logs[3].TodoTitle)

	w := ts.do(http.MethodPatch, "/api/todos/"+todo.ID, tok, map[string]any{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTodo(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.register("Del", "del@x.com", "pw").Token
	todo := ts.createTodo(tok, map[string]any{"title": "To be deleted"})

	w := ts.do(http.MethodDelete, "/api/todos/"+todo.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	list := decode[[]todoResp](t, ts.do(http.MethodGet, "/api/todos", tok, nil))
	assert.Empty(t, list)

	logs := ts.activity(tok)
	require.Len(t, logs, 2)
	assert.Equal(t, "deleted", logs[0].Action)
	assert.Equal(t, "To be deleted", logs[0].TodoTitle)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/todos/"+todo.ID, tok, nil).Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
