package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	"github.com/yigit/coursehub/internal/bootstrap"
	"github.com/yigit/coursehub/internal/config"
	"github.com/yigit/coursehub/internal/pkg/loginguard"
	"github.com/yigit/coursehub/internal/seed"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	} `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	deps   *bootstrap.Dependencies
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.JWT.Secret = "api-test-jwt-secret-0123456789abcdef"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "test"
	cfg.Session.Name = "coursehub_session"
	cfg.Session.Secret = "api-test-session-secret-0123456789"
	cfg.Session.MaxAge = 3600

	r := memory.NewStore().Repositories()
	repos := bootstrap.Repositories{
		Users:              r.Users,
		Topics:             r.Topics,
		TopicComments:      r.TopicComments,
		Assignments:        r.Assignments,
		AssignmentComments: r.AssignmentComments,
		Resources:          r.Resources,
		ResourceComments:   r.ResourceComments,
		Weeks:              r.Weeks,
		WeekComments:       r.WeekComments,
	}

	deps, err := bootstrap.BuildDependencies(cfg, repos, loginguard.NewMemoryGuard(5, time.Minute), nil, zerolog.Nop())
	require.NoError(t, err)
	bootstrap.SeedDefaultAdmin(context.Background(), deps)

	ctx := context.Background()
	for _, u := range []dto.CreateUserRequest{
		{StudentID: "S1001", Name: "Alice", Email: "alice@example.com", Password: "password123"},
		{StudentID: "S1002", Name: "Bob", Email: "bob@example.com", Password: "password123"},
	} {
		_, err := deps.UserService.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	return &testAPI{t: t, router: bootstrap.SetupRouter(cfg, deps), deps: deps}
}

// client carries cookies between requests the way a browser would.
type client struct {
	api     *testAPI
	cookies map[string]*http.Cookie
	header  map[string]string
}

func (a *testAPI) client() *client {
	return &client{api: a, cookies: map[string]*http.Cookie{}, header: map[string]string{}}
}

func (c *client) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t := c.api.t
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.api.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (a *testAPI) login(email, password string) *client {
	a.t.Helper()
	c := a.client()
	rec, env := c.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(a.t, env.Success)
	return c
}

func (a *testAPI) admin() *client {
	return a.login(seed.DefaultAdminEmail, seed.DefaultAdminPassword)
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
}

func TestLogin_SessionAndFlash(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()

	rec, env := c.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: " ALICE@example.com ", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", env.Message)

	var login dto.LoginResponse
	decodeData(t, env, &login)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, "alice@example.com", login.User.Email)

	rec, env = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.IdentityResponse
	decodeData(t, env, &me)
	assert.Equal(t, "Alice", me.Name)
	assert.Equal(t, "student", me.Role)

	rec, env = c.do(http.MethodGet, "/api/v1/flash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var flashes []dto.FlashResponse
	decodeData(t, env, &flashes)
	assert.Equal(t, []dto.FlashResponse{{Type: "success", Message: "Welcome back, Alice!"}}, flashes)

	_, env = c.do(http.MethodGet, "/api/v1/flash", nil)
	decodeData(t, env, &flashes)
	assert.Empty(t, flashes, "flashes are shown once")

	rec, _ = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", env.Message)
}

func TestLogin_Failures(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()

	rec, env := c.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
	assert.Equal(t, "AUTH_001", env.Error.Code)

	rec, env = c.do(http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required field: password", env.Message)

	rec, _ = c.do(http.MethodPost, "/api/v1/auth/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBearerToken(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()
	_, env := c.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "bob@example.com", Password: "password123"})
	var login dto.LoginResponse
	decodeData(t, env, &login)

	tokenOnly := api.client()
	tokenOnly.header["Authorization"] = "Bearer " + login.AccessToken
	rec, env := tokenOnly.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.IdentityResponse
	decodeData(t, env, &me)
	assert.Equal(t, "bob@example.com", me.Email)

	bad := api.client()
	bad.header["Authorization"] = "Bearer nope"
	rec, env = bad.do(http.MethodGet, "/api/v1/topics", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_005", env.Error.Code)
}

func TestRequireLogin_QueuesWarning(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()

	rec, env := c.do(http.MethodGet, "/api/v1/topics", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_008", env.Error.Code)

	_, env = c.do(http.MethodGet, "/api/v1/flash", nil)
	var flashes []dto.FlashResponse
	decodeData(t, env, &flashes)
	assert.Equal(t, []dto.FlashResponse{{Type: "warning", Message: "Please log in."}}, flashes)
}

func TestTopics_OwnershipAndConflicts(t *testing.T) {
	api := newTestAPI(t)
	alice := api.login("alice@example.com", "password123")
	bob := api.login("bob@example.com", "password123")

	rec, env := alice.do(http.MethodPost, "/api/v1/topics", dto.CreateTopicRequest{
		TopicID: "topic_lab1",
		Subject: "Lab one setup",
		Message: "Which compiler version do we use?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var topic dto.TopicResponse
	decodeData(t, env, &topic)
	assert.Equal(t, "topic_lab1", topic.TopicID)
	assert.Equal(t, "Alice", topic.AuthorName)

	rec, env = alice.do(http.MethodPost, "/api/v1/topics", dto.CreateTopicRequest{
		TopicID: "topic_lab1",
		Subject: "Duplicate",
		Message: "Same key again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "RES_002", env.Error.Code)
	assert.Equal(t, "Topic id already exists", env.Message)

	rec, env = bob.do(http.MethodPut, "/api/v1/topics/topic_lab1", map[string]string{"subject": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AUTH_009", env.Error.Code)

	rec, env = bob.do(http.MethodPost, "/api/v1/topics/topic_lab1/replies", dto.CreateCommentRequest{Text: "Go 1.23 works."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reply dto.CommentResponse
	decodeData(t, env, &reply)

	rec, _ = alice.do(http.MethodDelete, "/api/v1/replies/"+reply.CommentID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "topic owner cannot delete another user's reply")

	rec, env = alice.do(http.MethodGet, "/api/v1/topics/topic_lab1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &topic)
	assert.EqualValues(t, 1, topic.CommentCount)

	rec, _ = alice.do(http.MethodDelete, "/api/v1/topics/topic_lab1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = alice.do(http.MethodGet, "/api/v1/topics/topic_lab1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RES_001", env.Error.Code)

	_, env = alice.do(http.MethodGet, "/api/v1/flash", nil)
	var flashes []dto.FlashResponse
	decodeData(t, env, &flashes)
	assert.Equal(t, []dto.FlashResponse{{Type: "success", Message: "Topic deleted successfully."}}, flashes)
}

func TestTopics_InvalidListParameters(t *testing.T) {
	api := newTestAPI(t)
	alice := api.login("alice@example.com", "password123")

	rec, env := alice.do(http.MethodGet, "/api/v1/topics?sort=password", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid sort field: password", env.Message)

	rec, env = alice.do(http.MethodGet, "/api/v1/topics?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid sort order: sideways", env.Message)
}

func TestAdminOnlyRoutes(t *testing.T) {
	api := newTestAPI(t)
	alice := api.login("alice@example.com", "password123")
	admin := api.admin()

	rec, env := alice.do(http.MethodGet, "/api/v1/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", env.Message)

	rec, _ = alice.do(http.MethodPost, "/api/v1/assignments", dto.AssignmentRequest{Title: "Lab", Description: "x", DueDate: "2025-03-01"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = admin.do(http.MethodGet, "/api/v1/admin/users?sort=email", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users dto.UserListResponse
	decodeData(t, env, &users)
	assert.Len(t, users.Users, 3)

	rec, env = admin.do(http.MethodPost, "/api/v1/admin/users", dto.CreateUserRequest{
		StudentID: "S1003", Name: "Carol", Email: "alice@example.com", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", env.Message)

	rec, env = admin.do(http.MethodPost, "/api/v1/assignments", dto.AssignmentRequest{Title: "Lab 1", Description: "Linked lists", DueDate: "2025-03-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var assignment dto.AssignmentResponse
	decodeData(t, env, &assignment)

	rec, _ = alice.do(http.MethodPost, "/api/v1/assignments/"+strconv.FormatInt(assignment.ID, 10)+"/comments", dto.CreateCommentRequest{Text: "Is recursion allowed?"})
	assert.Equal(t, http.StatusCreated, rec.Code, "students may comment")
}

func TestRoutingFallbacks(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()

	rec, env := c.do(http.MethodGet, "/api/v1/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", env.Message)

	rec, env = c.do(http.MethodDelete, "/ping", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "VAL_003", env.Error.Code)

	rec, env = c.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"skipped"}`, string(env.Data))

	rec, _ = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coursehub_http_requests_total")
}
