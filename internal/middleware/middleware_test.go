package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/loginguard"
	"github.com/yigit/coursehub/internal/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    json.RawMessage
	Error   *struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{apperrors.NewMissingFieldError("email"), http.StatusBadRequest, "VAL_001", "Missing required field: email"},
		{apperrors.NewBadRequestError("Invalid sort field: x"), http.StatusBadRequest, "VAL_002", "Invalid sort field: x"},
		{apperrors.NewCustomError(apperrors.ErrPasswordTooLong, "Password must be at most 72 bytes"), http.StatusBadRequest, "AUTH_003", "Password must be at most 72 bytes"},
		{apperrors.ErrCannotDeleteSelf, http.StatusBadRequest, "VAL_002", "You cannot delete your own account"},
		{apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password"), http.StatusUnauthorized, "AUTH_001", "Invalid email or password"},
		{apperrors.ErrWrongCurrentPassword, http.StatusUnauthorized, "AUTH_001", "Current password is incorrect"},
		{apperrors.NewForbiddenError("You can only modify your own topics"), http.StatusForbidden, "AUTH_009", "You can only modify your own topics"},
		{apperrors.ErrTopicNotFound, http.StatusNotFound, "RES_001", "Topic not found"},
		{fmt.Errorf("load: %w", apperrors.ErrWeekNotFound), http.StatusNotFound, "RES_001", "Week not found"},
		{apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email already exists"), http.StatusConflict, "RES_002", "Email already exists"},
		{apperrors.ErrReplyKeyExists, http.StatusConflict, "RES_002", "Reply id already exists"},
		{apperrors.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "VAL_003", "Method not allowed"},
		{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests, "AUTH_007", "Too many login attempts"},
		{errors.New("connection refused on 10.0.0.5"), http.StatusInternalServerError, "SRV_001", "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Message)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestHandleAPIError_MissingFieldCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	HandleAPIError(c, apperrors.NewMissingFieldError("topic_id"))

	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "topic_id", env.Error.Field)
}

func TestBindJSON(t *testing.T) {
	r := gin.New()
	r.POST("/users", func(c *gin.Context) {
		var req dto.CreateUserRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{not json")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decode(t, rec).Message)
	})

	t.Run("binding rule uses json name", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"role":"teacher"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "role must be one of: admin student", env.Message)
		require.NotNil(t, env.Error)
		assert.Equal(t, "role", env.Error.Field)
	})

	t.Run("empty body binds zero value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-test-secret-0123456789", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	authService := services.NewAuthService(repos.Users, jwtService, auth.NewBcryptHasher(), loginguard.NewMemoryGuard(5, time.Minute), nil, zerolog.Nop())
	m := NewAuthMiddleware(authService)

	r := gin.New()
	r.Use(session.Middleware(session.Options{Name: "test_session", Secret: "session-secret-0123456789abcdef", MaxAge: 3600}))
	r.Use(m.Identity())
	r.GET("/login-as/:role", func(c *gin.Context) {
		role := models.RoleType(c.Param("role"))
		require.NoError(t, session.SetIdentity(c, models.Identity{ID: 9, Name: "Tester", Email: "t@example.com", Role: role}))
		c.Status(http.StatusNoContent)
	})
	r.GET("/flash", func(c *gin.Context) {
		flashes, err := session.PopFlashes(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, flashes)
	})
	r.GET("/private", m.RequireLogin(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, identity)
	})
	r.GET("/admin", m.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, jwtService
}

// lastCookies keeps the final value of each cookie, as a browser would.
func lastCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	var order []string
	for _, ck := range rec.Result().Cookies() {
		if _, seen := byName[ck.Name]; !seen {
			order = append(order, ck.Name)
		}
		byName[ck.Name] = ck
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func request(r http.Handler, path string, cookies []*http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireLogin(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := request(r, "/private", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decode(t, rec).Message)

	rec = request(r, "/flash", lastCookies(rec), nil)
	var flashes []session.Flash
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flashes))
	assert.Equal(t, []session.Flash{{Type: session.FlashWarning, Message: "Please log in."}}, flashes)

	login := request(r, "/login-as/student", nil, nil)
	rec = request(r, "/private", lastCookies(login), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Tester"`)
}

func TestRequireAdmin(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := request(r, "/admin", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	student := request(r, "/login-as/student", nil, nil)
	rec = request(r, "/admin", lastCookies(student), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", decode(t, rec).Message)

	admin := request(r, "/login-as/admin", nil, nil)
	rec = request(r, "/admin", lastCookies(admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentity_BearerToken(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	token, _, err := jwtService.GenerateAccessToken(models.Identity{ID: 4, Name: "Api", Email: "api@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	rec := request(r, "/admin", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(r, "/private", nil, map[string]string{"Authorization": "Bearer not.a.token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decode(t, rec).Message)

	rec = request(r, "/private", nil, map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token format", decode(t, rec).Message)
}

func TestNoRouteAndNoMethod(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(NoRoute())
	r.NoMethod(NoMethod())
	r.GET("/only-get", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", decode(t, rec).Message)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec).Message)
}
