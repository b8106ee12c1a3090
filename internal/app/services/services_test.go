package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/loginguard"
	"github.com/yigit/coursehub/internal/pkg/websocket"
)

type fixture struct {
	ctx   context.Context
	repos memory.Repos
	authz *auth.AuthorizationService

	authService       *AuthService
	userService       UserService
	topicService      TopicService
	assignmentService AssignmentService
	resourceService   ResourceService
	weekService       WeekService
	storage           *fakeStorage
	events            *recordingPublisher

	admin, alice, bob models.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	hasher := pkgauth.BcryptHasher{Cost: bcrypt.MinCost}
	authz := auth.NewAuthorizationService(repos.Topics, repos.TopicComments)
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test-secret-test-secret-test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	storage := &fakeStorage{}
	events := &recordingPublisher{}

	f := &fixture{
		ctx:               context.Background(),
		repos:             repos,
		authz:             authz,
		authService:       NewAuthService(repos.Users, jwtService, hasher, loginguard.NewMemoryGuard(3, time.Minute), nil, zerolog.Nop()),
		userService:       NewUserService(repos.Users, hasher),
		topicService:      NewTopicService(repos.Topics, repos.TopicComments, authz, events),
		assignmentService: NewAssignmentService(repos.Assignments, repos.AssignmentComments, authz, storage),
		resourceService:   NewResourceService(repos.Resources, repos.ResourceComments, authz),
		weekService:       NewWeekService(repos.Weeks, repos.WeekComments, authz),
		storage:           storage,
		events:            events,
	}

	f.admin = f.createUser(t, "A0001", "Ada Admin", "admin@example.com", "admin")
	f.alice = f.createUser(t, "S1001", "Alice", "alice@example.com", "student")
	f.bob = f.createUser(t, "S1002", "Bob", "bob@example.com", "student")
	return f
}

func (f *fixture) createUser(t *testing.T, studentID, name, email, role string) models.Identity {
	t.Helper()
	u, err := f.userService.CreateUser(f.ctx, dto.CreateUserRequest{
		StudentID: studentID, Name: name, Email: email, Password: "password123", Role: role,
	})
	require.NoError(t, err)
	return models.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: models.RoleType(u.Role)}
}

func (f *fixture) createTopic(t *testing.T, actor models.Identity, key string) *dto.TopicResponse {
	t.Helper()
	topic, err := f.topicService.CreateTopic(f.ctx, actor, dto.CreateTopicRequest{
		TopicID: key, Subject: "Week three question", Message: "How does the second exercise work?",
	})
	require.NoError(t, err)
	return topic
}

// assertAppError checks the sentinel and, when message is not empty, the client facing text.
func assertAppError(t *testing.T, err error, sentinel error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
	if message != "" {
		got, ok := apperrors.Message(err)
		assert.True(t, ok, "error carries no message: %v", err)
		assert.Equal(t, message, got)
	}
}

type recordingPublisher struct {
	events []websocket.Event
}

func (p *recordingPublisher) Publish(e websocket.Event) { p.events = append(p.events, e) }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeStorage struct {
	saved   []string
	deleted []string
}

func (s *fakeStorage) Save(fh *multipart.FileHeader, subDir string) (string, error) {
	u := "http://localhost/uploads/" + subDir + "/" + fh.Filename
	s.saved = append(s.saved, u)
	return u, nil
}

func (s *fakeStorage) Delete(fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func (s *fakeStorage) Owns(fileURL string) bool {
	for _, u := range s.saved {
		if u == fileURL {
			return true
		}
	}
	return false
}

func TestListQueries_RejectValuesOutsideAllowList(t *testing.T) {
	f := newFixture(t)

	_, err := f.topicService.ListTopics(f.ctx, url.Values{"sort": {"password_hash"}})
	assertAppError(t, err, apperrors.ErrBadRequest, "Invalid sort field: password_hash")

	_, err = f.userService.ListUsers(f.ctx, url.Values{"order": {"sideways"}})
	assertAppError(t, err, apperrors.ErrBadRequest, "Invalid sort order: sideways")

	_, err = f.assignmentService.ListAssignments(f.ctx, url.Values{"sort": {"due_date; DROP TABLE users"}})
	assertAppError(t, err, apperrors.ErrBadRequest, "")

	_, err = f.weekService.ListWeeks(f.ctx, url.Values{"size": {"1000"}})
	assertAppError(t, err, apperrors.ErrBadRequest, "")

	users, err := f.userService.ListUsers(f.ctx, url.Values{"search": {"ALI"}})
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "Alice", users.Users[0].Name)
}
