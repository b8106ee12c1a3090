package services

import (
	"context"
	"net/url"

	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// WeekService defines the weekly content operations
type WeekService interface {
	ListWeeks(ctx context.Context, query url.Values) (*dto.WeekListResponse, error)
	GetWeek(ctx context.Context, key string) (*dto.WeekResponse, error)
	CreateWeek(ctx context.Context, req dto.WeekRequest) (*dto.WeekResponse, error)
	UpdateWeek(ctx context.Context, key string, req dto.UpdateWeekRequest) (*dto.WeekResponse, error)
	DeleteWeek(ctx context.Context, key string) error

	ListComments(ctx context.Context, weekKey string) ([]dto.CommentResponse, error)
	AddComment(ctx context.Context, actor models.Identity, weekKey string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor models.Identity, commentID int64) error
}

// weekServiceImpl implements the WeekService interface
type weekServiceImpl struct {
	weekRepo repositories.IWeekRepository
	comments commentThread
}

// NewWeekService creates a new week service instance
func NewWeekService(weekRepo repositories.IWeekRepository, commentRepo repositories.ICommentRepository, authz *auth.AuthorizationService) WeekService {
	return &weekServiceImpl{
		weekRepo: weekRepo,
		comments: commentThread{
			repo:     commentRepo,
			authz:    authz,
			prefix:   "comment",
			noun:     "Comment",
			parentNF: apperrors.NewCustomError(apperrors.ErrWeekNotFound, "Week not found"),
		},
	}
}

func weekNotFound(err error) error {
	return withNotFound(err, apperrors.ErrWeekNotFound, "Week not found")
}

func (s *weekServiceImpl) lookup(ctx context.Context, key string) (*models.Week, error) {
	key = validation.Clean(key)
	if key == "" {
		return nil, apperrors.NewMissingFieldError("week_id")
	}
	w, err := s.weekRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, weekNotFound(err)
	}
	return w, nil
}

// ListWeeks returns weeks ordered by start date unless another sort is requested
func (s *weekServiceImpl) ListWeeks(ctx context.Context, query url.Values) (*dto.WeekListResponse, error) {
	params, err := parseList(repositories.WeekListSpec, query)
	if err != nil {
		return nil, err
	}
	weeks, pagination, err := s.weekRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := &dto.WeekListResponse{Weeks: make([]dto.WeekResponse, 0, len(weeks)), Pagination: pagination}
	for _, w := range weeks {
		resp.Weeks = append(resp.Weeks, dto.FromWeek(w))
	}
	return resp, nil
}

// GetWeek returns one week by its public id
func (s *weekServiceImpl) GetWeek(ctx context.Context, key string) (*dto.WeekResponse, error) {
	w, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	resp := dto.FromWeek(w)
	return &resp, nil
}

// CreateWeek adds a week; week_id is chosen by the caller and must be unique
func (s *weekServiceImpl) CreateWeek(ctx context.Context, req dto.WeekRequest) (*dto.WeekResponse, error) {
	key := validation.Clean(req.WeekID)
	title := validation.Clean(req.Title)
	startDate := validation.Clean(req.StartDate)
	if field, missing := validation.FirstMissing(
		[2]string{"week_id", key},
		[2]string{"title", title},
		[2]string{"start_date", startDate},
	); missing {
		return nil, apperrors.NewMissingFieldError(field)
	}
	if _, err := resolveKey("week_id", key, "week"); err != nil {
		return nil, err
	}
	if err := validTitle(&title); err != nil {
		return nil, err
	}
	start, err := parseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}

	w := &models.Week{
		Key:         key,
		Title:       title,
		StartDate:   start,
		Description: validation.Clean(req.Description),
		Links:       validation.CleanList(req.Links),
	}
	if _, err := s.weekRepo.Create(ctx, w); err != nil {
		if apperrors.Is(err, apperrors.ErrWeekKeyExists) {
			return nil, withMessage(err, "Week id already exists")
		}
		return nil, err
	}
	logger.Info().Str("weekKey", key).Msg("Week created")
	resp := dto.FromWeek(w)
	return &resp, nil
}

// UpdateWeek applies a partial update
func (s *weekServiceImpl) UpdateWeek(ctx context.Context, key string, req dto.UpdateWeekRequest) (*dto.WeekResponse, error) {
	update := models.WeekUpdate{
		Title:       validation.CleanPtr(req.Title),
		Description: validation.CleanPtr(req.Description),
	}
	if err := notEmpty("title", update.Title); err != nil {
		return nil, err
	}
	if err := validTitle(update.Title); err != nil {
		return nil, err
	}
	if req.StartDate != nil {
		start, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			return nil, err
		}
		update.StartDate = &start
	}
	if req.Links != nil {
		links := validation.CleanList(*req.Links)
		update.Links = &links
	}
	if update.Title == nil && update.Description == nil && update.StartDate == nil && update.Links == nil {
		return nil, errNoFields
	}

	w, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.weekRepo.Update(ctx, w.ID, update); err != nil {
		return nil, weekNotFound(err)
	}
	logger.Info().Str("weekKey", w.Key).Msg("Week updated")
	return s.GetWeek(ctx, w.Key)
}

// DeleteWeek removes a week and its comments
func (s *weekServiceImpl) DeleteWeek(ctx context.Context, key string) error {
	w, err := s.lookup(ctx, key)
	if err != nil {
		return err
	}
	if err := s.weekRepo.Delete(ctx, w.ID); err != nil {
		return weekNotFound(err)
	}
	logger.Info().Str("weekKey", w.Key).Msg("Week deleted")
	return nil
}

// ListComments returns the comments of a week
func (s *weekServiceImpl) ListComments(ctx context.Context, weekKey string) ([]dto.CommentResponse, error) {
	w, err := s.lookup(ctx, weekKey)
	if err != nil {
		return nil, err
	}
	return s.comments.list(ctx, w.ID)
}

// AddComment comments on a week
func (s *weekServiceImpl) AddComment(ctx context.Context, actor models.Identity, weekKey string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	w, err := s.lookup(ctx, weekKey)
	if err != nil {
		return nil, err
	}
	return s.comments.add(ctx, actor, w.ID, req.ReplyID, req.Text)
}

// DeleteComment removes a comment; only the author or an admin may do so
func (s *weekServiceImpl) DeleteComment(ctx context.Context, actor models.Identity, commentID int64) error {
	return withNotFound(s.comments.remove(ctx, actor, commentID), apperrors.ErrCommentNotFound, "Comment not found")
}
