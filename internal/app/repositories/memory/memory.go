// Package memory is an in-process implementation of the repository interfaces.
// It mirrors the unique keys and ON DELETE CASCADE rules of the SQL schema and
// backs the service and controller tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/helpers"
	"github.com/yigit/coursehub/internal/pkg/listquery"
)

// Store holds every table.
type Store struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time

	users       map[int64]*models.User
	topics      map[int64]*models.Topic
	comments    map[string]map[int64]*models.Comment
	assignments map[int64]*models.Assignment
	resources   map[int64]*models.CourseResource
	weeks       map[int64]*models.Week
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		clock:       time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		users:       map[int64]*models.User{},
		topics:      map[int64]*models.Topic{},
		comments:    map[string]map[int64]*models.Comment{},
		assignments: map[int64]*models.Assignment{},
		resources:   map[int64]*models.CourseResource{},
		weeks:       map[int64]*models.Week{},
	}
}

// Repositories returns one repository per table, all sharing the store.
func (s *Store) Repositories() Repos {
	return Repos{
		Users:              &UserRepo{s},
		Topics:             &TopicRepo{s},
		TopicComments:      s.Comments(repositories.TopicComments),
		Assignments:        &AssignmentRepo{s},
		AssignmentComments: s.Comments(repositories.AssignmentComments),
		Resources:          &ResourceRepo{s},
		ResourceComments:   s.Comments(repositories.ResourceComments),
		Weeks:              &WeekRepo{s},
		WeekComments:       s.Comments(repositories.WeekComments),
	}
}

// Repos groups the in-memory repositories.
type Repos struct {
	Users              *UserRepo
	Topics             *TopicRepo
	TopicComments      *CommentRepo
	Assignments        *AssignmentRepo
	AssignmentComments *CommentRepo
	Resources          *ResourceRepo
	ResourceComments   *CommentRepo
	Weeks              *WeekRepo
	WeekComments       *CommentRepo
}

// Comments returns the repository of one comment table.
func (s *Store) Comments(scope repositories.CommentScope) *CommentRepo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[scope.Table]; !ok {
		s.comments[scope.Table] = map[int64]*models.Comment{}
	}
	return &CommentRepo{s: s, scope: scope}
}

// tick must be called with mu held. Every write gets a distinct, increasing timestamp.
func (s *Store) tick() (int64, time.Time) {
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	return s.nextID, s.clock
}

func (s *Store) deleteCommentsWhere(table string, match func(*models.Comment) bool) {
	for id, c := range s.comments[table] {
		if match(c) {
			delete(s.comments[table], id)
		}
	}
}

// UserRepo implements repositories.IUserRepository.
type UserRepo struct{ s *Store }

var _ repositories.IUserRepository = (*UserRepo)(nil)

func (r *UserRepo) conflict(u *models.User, skipID int64) error {
	for _, other := range r.s.users {
		if other.ID == skipID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.StudentID != nil && other.StudentID != nil && *u.StudentID == *other.StudentID {
			return apperrors.ErrStudentIDExists
		}
	}
	return nil
}

func (r *UserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.conflict(user, 0); err != nil {
		return 0, err
	}
	id, now := r.s.tick()
	cp := *user
	cp.ID, cp.CreatedAt, cp.UpdatedAt = id, now, now
	r.s.users[id] = &cp
	user.ID, user.CreatedAt, user.UpdatedAt = id, now, now
	return id, nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) GetByStudentID(_ context.Context, studentID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.StudentID != nil && *u.StudentID == studentID })
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepo) List(_ context.Context, p listquery.Params) ([]*models.User, dto.PaginationInfo, error) {
	r.s.mu.Lock()
	out := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		sid := ""
		if u.StudentID != nil {
			sid = *u.StudentID
		}
		if matches(p.Search, u.Name, sid, u.Email) {
			cp := *u
			out = append(out, &cp)
		}
	}
	r.s.mu.Unlock()

	key := func(u *models.User) string {
		switch p.Sort {
		case "email":
			return strings.ToLower(u.Email)
		case "student_id":
			if u.StudentID != nil {
				return *u.StudentID
			}
			return ""
		default:
			return strings.ToLower(u.Name)
		}
	}
	sortBy(out, p.Order, key, func(u *models.User) int64 { return u.ID })
	return page(out, p)
}

func (r *UserRepo) Update(_ context.Context, id int64, update models.UserUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	next := *u
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.StudentID != nil {
		sid := *update.StudentID
		next.StudentID = &sid
	}
	if update.Email != nil {
		next.Email = *update.Email
	}
	if update.Role != nil {
		next.Role = *update.Role
	}
	if update.PasswordHash != nil {
		next.Password = *update.PasswordHash
	}
	if err := r.conflict(&next, id); err != nil {
		return err
	}
	_, next.UpdatedAt = r.s.tick()
	r.s.users[id] = &next
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.Update(ctx, id, models.UserUpdate{PasswordHash: &passwordHash})
}

// Delete cascades to the user's topics, their replies and every comment by the user.
func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.s.users, id)
	for tid, t := range r.s.topics {
		if t.UserID == id {
			delete(r.s.topics, tid)
			r.s.deleteCommentsWhere(repositories.TopicComments.Table, func(c *models.Comment) bool { return c.ParentID == tid })
		}
	}
	for table := range r.s.comments {
		r.s.deleteCommentsWhere(table, func(c *models.Comment) bool { return c.UserID == id })
	}
	return nil
}

// TopicRepo implements repositories.ITopicRepository.
type TopicRepo struct{ s *Store }

var _ repositories.ITopicRepository = (*TopicRepo)(nil)

// decorate must be called with mu held.
func (r *TopicRepo) decorate(t *models.Topic) *models.Topic {
	cp := *t
	if u, ok := r.s.users[t.UserID]; ok {
		cp.AuthorName, cp.AuthorRole = u.Name, u.Role
	}
	cp.CommentCount = 0
	for _, c := range r.s.comments[repositories.TopicComments.Table] {
		if c.ParentID == t.ID {
			cp.CommentCount++
		}
	}
	return &cp
}

func (r *TopicRepo) Create(_ context.Context, topic *models.Topic) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.topics {
		if t.Key == topic.Key {
			return 0, apperrors.ErrTopicKeyExists
		}
	}
	if _, ok := r.s.users[topic.UserID]; !ok {
		return 0, apperrors.ErrUserNotFound
	}
	id, now := r.s.tick()
	cp := *topic
	cp.ID, cp.CreatedAt, cp.UpdatedAt = id, now, now
	r.s.topics[id] = &cp
	topic.ID, topic.CreatedAt, topic.UpdatedAt = id, now, now
	return id, nil
}

func (r *TopicRepo) GetByKey(_ context.Context, key string) (*models.Topic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.topics {
		if t.Key == key {
			return r.decorate(t), nil
		}
	}
	return nil, apperrors.ErrTopicNotFound
}

func (r *TopicRepo) List(_ context.Context, p listquery.Params) ([]*models.Topic, dto.PaginationInfo, error) {
	r.s.mu.Lock()
	out := make([]*models.Topic, 0, len(r.s.topics))
	for _, t := range r.s.topics {
		d := r.decorate(t)
		if matches(p.Search, d.Subject, d.Message, d.AuthorName) {
			out = append(out, d)
		}
	}
	r.s.mu.Unlock()

	key := func(t *models.Topic) string {
		switch p.Sort {
		case "subject":
			return strings.ToLower(t.Subject)
		case "author":
			return strings.ToLower(t.AuthorName)
		default:
			return t.CreatedAt.Format(time.RFC3339Nano)
		}
	}
	sortBy(out, p.Order, key, func(t *models.Topic) int64 { return t.ID })
	return page(out, p)
}

func (r *TopicRepo) Update(_ context.Context, id int64, update models.TopicUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.topics[id]
	if !ok {
		return apperrors.ErrTopicNotFound
	}
	if update.Subject != nil {
		t.Subject = *update.Subject
	}
	if update.Message != nil {
		t.Message = *update.Message
	}
	_, t.UpdatedAt = r.s.tick()
	return nil
}

func (r *TopicRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.topics[id]; !ok {
		return apperrors.ErrTopicNotFound
	}
	delete(r.s.topics, id)
	r.s.deleteCommentsWhere(repositories.TopicComments.Table, func(c *models.Comment) bool { return c.ParentID == id })
	return nil
}

// CommentRepo implements repositories.ICommentRepository for one table.
type CommentRepo struct {
	s     *Store
	scope repositories.CommentScope
}

var _ repositories.ICommentRepository = (*CommentRepo)(nil)

// parentExists must be called with mu held.
func (r *CommentRepo) parentExists(id int64) bool {
	switch r.scope.Table {
	case repositories.TopicComments.Table:
		_, ok := r.s.topics[id]
		return ok
	case repositories.AssignmentComments.Table:
		_, ok := r.s.assignments[id]
		return ok
	case repositories.ResourceComments.Table:
		_, ok := r.s.resources[id]
		return ok
	case repositories.WeekComments.Table:
		_, ok := r.s.weeks[id]
		return ok
	}
	return false
}

func (r *CommentRepo) decorate(c *models.Comment) *models.Comment {
	cp := *c
	if u, ok := r.s.users[c.UserID]; ok {
		cp.AuthorName, cp.AuthorRole = u.Name, u.Role
	}
	return &cp
}

func (r *CommentRepo) Create(_ context.Context, comment *models.Comment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	table := r.s.comments[r.scope.Table]
	for _, c := range table {
		if c.Key == comment.Key {
			return 0, r.scope.KeyExists
		}
	}
	if !r.parentExists(comment.ParentID) {
		return 0, apperrors.ErrResourceNotFound
	}
	id, now := r.s.tick()
	cp := *comment
	cp.ID, cp.CreatedAt, cp.UpdatedAt = id, now, now
	table[id] = &cp
	comment.ID, comment.CreatedAt, comment.UpdatedAt = id, now, now
	return id, nil
}

func (r *CommentRepo) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.comments[r.scope.Table][id]; ok {
		return r.decorate(c), nil
	}
	return nil, apperrors.ErrCommentNotFound
}

func (r *CommentRepo) GetByKey(_ context.Context, key string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.comments[r.scope.Table] {
		if c.Key == key {
			return r.decorate(c), nil
		}
	}
	return nil, apperrors.ErrCommentNotFound
}

func (r *CommentRepo) ListByParent(_ context.Context, parentID int64) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Comment, 0)
	for _, c := range r.s.comments[r.scope.Table] {
		if c.ParentID == parentID {
			out = append(out, r.decorate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CommentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[r.scope.Table][id]; !ok {
		return apperrors.ErrCommentNotFound
	}
	delete(r.s.comments[r.scope.Table], id)
	return nil
}

// Count returns the number of rows in the comment table.
func (r *CommentRepo) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.comments[r.scope.Table])
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortBy[T any](items []T, order listquery.SortOrder, key func(T) string, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki == kj {
			if order == listquery.Desc {
				return id(items[i]) > id(items[j])
			}
			return id(items[i]) < id(items[j])
		}
		if order == listquery.Desc {
			return ki > kj
		}
		return ki < kj
	})
}

func page[T any](items []T, p listquery.Params) ([]T, dto.PaginationInfo, error) {
	pagination := helpers.NewPaginationInfo(int64(len(items)), p.Page, p.Size)
	offset, limit := helpers.CalculateOffsetLimit(p.Page, p.Size)
	if int(offset) >= len(items) {
		return []T{}, pagination, nil
	}
	end := int(offset) + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], pagination, nil
}
