package memory

import (
	"context"
	"strings"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/helpers"
	"github.com/yigit/coursehub/internal/pkg/listquery"
)

// AssignmentRepo implements repositories.IAssignmentRepository.
type AssignmentRepo struct{ s *Store }

var _ repositories.IAssignmentRepository = (*AssignmentRepo)(nil)

func copyAssignment(a *models.Assignment) *models.Assignment {
	cp := *a
	cp.Files = append([]string{}, a.Files...)
	return &cp
}

func (r *AssignmentRepo) Create(_ context.Context, a *models.Assignment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, now := r.s.tick()
	cp := copyAssignment(a)
	cp.ID, cp.CreatedAt, cp.UpdatedAt = id, now, now
	r.s.assignments[id] = cp
	a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
	return id, nil
}

func (r *AssignmentRepo) GetByID(_ context.Context, id int64) (*models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.assignments[id]; ok {
		return copyAssignment(a), nil
	}
	return nil, apperrors.ErrAssignmentNotFound
}

func (r *AssignmentRepo) List(_ context.Context, p listquery.Params) ([]*models.Assignment, dto.PaginationInfo, error) {
	r.s.mu.Lock()
	out := make([]*models.Assignment, 0, len(r.s.assignments))
	for _, a := range r.s.assignments {
		if matches(p.Search, a.Title, a.Description) {
			out = append(out, copyAssignment(a))
		}
	}
	r.s.mu.Unlock()

	key := func(a *models.Assignment) string {
		switch p.Sort {
		case "title":
			return strings.ToLower(a.Title)
		case "created_at":
			return a.CreatedAt.Format("2006-01-02T15:04:05.000000000")
		default:
			return helpers.FormatDate(a.DueDate)
		}
	}
	sortBy(out, p.Order, key, func(a *models.Assignment) int64 { return a.ID })
	return page(out, p)
}

func (r *AssignmentRepo) Update(_ context.Context, id int64, update models.AssignmentUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return apperrors.ErrAssignmentNotFound
	}
	if update.Title != nil {
		a.Title = *update.Title
	}
	if update.Description != nil {
		a.Description = *update.Description
	}
	if update.DueDate != nil {
		a.DueDate = *update.DueDate
	}
	if update.Files != nil {
		a.Files = append([]string{}, (*update.Files)...)
	}
	_, a.UpdatedAt = r.s.tick()
	return nil
}

func (r *AssignmentRepo) AppendFile(_ context.Context, id int64, fileURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return apperrors.ErrAssignmentNotFound
	}
	a.Files = append(a.Files, fileURL)
	return nil
}

func (r *AssignmentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	delete(r.s.assignments, id)
	r.s.deleteCommentsWhere(repositories.AssignmentComments.Table, func(c *models.Comment) bool { return c.ParentID == id })
	return nil
}

// ResourceRepo implements repositories.IResourceRepository.
type ResourceRepo struct{ s *Store }

var _ repositories.IResourceRepository = (*ResourceRepo)(nil)

func (r *ResourceRepo) Create(_ context.Context, res *models.CourseResource) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, now := r.s.tick()
	cp := *res
	cp.ID, cp.CreatedAt, cp.UpdatedAt = id, now, now
	r.s.resources[id] = &cp
	res.ID, res.CreatedAt, res.UpdatedAt = id, now, now
	return id, nil
}

func (r *ResourceRepo) GetByID(_ context.Context, id int64) (*models.CourseResource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if res, ok := r.s.resources[id]; ok {
		cp := *res
		return &cp, nil
	}
	return nil, apperrors.ErrCourseResNotFound
}

func (r *ResourceRepo) List(_ context.Context, p listquery.Params) ([]*models.CourseResource, dto.PaginationInfo, error) {
	r.s.mu.Lock()
	out := make([]*models.CourseResource, 0, len(r.s.resources))
	for _, res := range r.s.resources {
		if matches(p.Search, res.Title, res.Description) {
			cp := *res
			out = append(out, &cp)
		}
	}
	r.s.mu.Unlock()

	key := func(res *models.CourseResource) string {
		if p.Sort == "title" {
			return strings.ToLower(res.Title)
		}
		return res.CreatedAt.Format("2006-01-02T15:04:05.000000000")
	}
	sortBy(out, p.Order, key, func(res *models.CourseResource) int64 { return res.ID })
	return page(out, p)
}

func (r *ResourceRepo) Update(_ context.Context, id int64, update models.CourseResourceUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return apperrors.ErrCourseResNotFound
	}
	if update.Title != nil {
		res.Title = *update.Title
	}
	if update.Description != nil {
		res.Description = *update.Description
	}
	if update.Link != nil {
		res.Link = *update.Link
	}
	_, res.UpdatedAt = r.s.tick()
	return nil
}

func (r *ResourceRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resources[id]; !ok {
		return apperrors.ErrCourseResNotFound
	}
	r.s.deleteCommentsWhere(repositories.ResourceComments.Table, func(c *models.Comment) bool { return c.ParentID == id })
	delete(r.s.resources, id)
	return nil
}

// WeekRepo implements repositories.IWeekRepository.
type WeekRepo struct{ s *Store }

var _ repositories.IWeekRepository = (*WeekRepo)(nil)

func copyWeek(w *models.Week) *models.Week {
	cp := *w
	cp.Links = append([]string{}, w.Links...)
	return &cp
}

func (r *WeekRepo) Create(_ context.Context, w *models.Week) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.weeks {
		if other.Key == w.Key {
			return 0, apperrors.ErrWeekKeyExists
		}
	}
	id, now := r.s.tick()
	cp := copyWeek(w)
	cp.ID, cp.CreatedAt, cp.UpdatedAt = id, now, now
	r.s.weeks[id] = cp
	w.ID, w.CreatedAt, w.UpdatedAt = id, now, now
	return id, nil
}

func (r *WeekRepo) GetByKey(_ context.Context, key string) (*models.Week, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.weeks {
		if w.Key == key {
			return copyWeek(w), nil
		}
	}
	return nil, apperrors.ErrWeekNotFound
}

func (r *WeekRepo) List(_ context.Context, p listquery.Params) ([]*models.Week, dto.PaginationInfo, error) {
	r.s.mu.Lock()
	out := make([]*models.Week, 0, len(r.s.weeks))
	for _, w := range r.s.weeks {
		if matches(p.Search, w.Title, w.Description) {
			out = append(out, copyWeek(w))
		}
	}
	r.s.mu.Unlock()

	key := func(w *models.Week) string {
		if p.Sort == "title" {
			return strings.ToLower(w.Title)
		}
		return helpers.FormatDate(w.StartDate)
	}
	sortBy(out, p.Order, key, func(w *models.Week) int64 { return w.ID })
	return page(out, p)
}

func (r *WeekRepo) Update(_ context.Context, id int64, update models.WeekUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.weeks[id]
	if !ok {
		return apperrors.ErrWeekNotFound
	}
	if update.Title != nil {
		w.Title = *update.Title
	}
	if update.StartDate != nil {
		w.StartDate = *update.StartDate
	}
	if update.Description != nil {
		w.Description = *update.Description
	}
	if update.Links != nil {
		w.Links = append([]string{}, (*update.Links)...)
	}
	_, w.UpdatedAt = r.s.tick()
	return nil
}

func (r *WeekRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.weeks[id]; !ok {
		return apperrors.ErrWeekNotFound
	}
	delete(r.s.weeks, id)
	r.s.deleteCommentsWhere(repositories.WeekComments.Table, func(c *models.Comment) bool { return c.ParentID == id })
	return nil
}
