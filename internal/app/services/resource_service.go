package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// ResourceService defines the course resource operations
type ResourceService interface {
	ListResources(ctx context.Context, query url.Values) (*dto.ResourceListResponse, error)
	GetResource(ctx context.Context, id int64) (*dto.ResourceResponse, error)
	CreateResource(ctx context.Context, req dto.ResourceRequest) (*dto.ResourceResponse, error)
	UpdateResource(ctx context.Context, id int64, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error)
	DeleteResource(ctx context.Context, id int64) error

	ListComments(ctx context.Context, resourceID int64) ([]dto.CommentResponse, error)
	AddComment(ctx context.Context, actor models.Identity, resourceID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor models.Identity, commentID int64) error
}

// resourceServiceImpl implements the ResourceService interface
type resourceServiceImpl struct {
	resourceRepo repositories.IResourceRepository
	comments     commentThread
}

// NewResourceService creates a new resource service instance
func NewResourceService(resourceRepo repositories.IResourceRepository, commentRepo repositories.ICommentRepository, authz *auth.AuthorizationService) ResourceService {
	return &resourceServiceImpl{
		resourceRepo: resourceRepo,
		comments: commentThread{
			repo:     commentRepo,
			authz:    authz,
			prefix:   "comment",
			noun:     "Comment",
			parentNF: apperrors.NewCustomError(apperrors.ErrCourseResNotFound, "Resource not found"),
		},
	}
}

func resourceNotFound(err error) error {
	return withNotFound(err, apperrors.ErrCourseResNotFound, "Resource not found")
}

func validateLink(link string) error {
	if !validation.LengthBetween(link, 1, validation.LinkMaxLength) {
		return apperrors.NewBadRequestError(fmt.Sprintf("Link must be at most %d characters", validation.LinkMaxLength))
	}
	if !validation.IsHTTPURL(link) {
		return apperrors.NewBadRequestError("Invalid URL format for link")
	}
	return nil
}

// ListResources returns one page of resources
func (s *resourceServiceImpl) ListResources(ctx context.Context, query url.Values) (*dto.ResourceListResponse, error) {
	params, err := parseList(repositories.ResourceListSpec, query)
	if err != nil {
		return nil, err
	}
	resources, pagination, err := s.resourceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := &dto.ResourceListResponse{Resources: make([]dto.ResourceResponse, 0, len(resources)), Pagination: pagination}
	for _, r := range resources {
		resp.Resources = append(resp.Resources, dto.FromResource(r))
	}
	return resp, nil
}

// GetResource returns one resource
func (s *resourceServiceImpl) GetResource(ctx context.Context, id int64) (*dto.ResourceResponse, error) {
	r, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, resourceNotFound(err)
	}
	resp := dto.FromResource(r)
	return &resp, nil
}

// CreateResource adds a resource; the link must be an absolute http(s) URL
func (s *resourceServiceImpl) CreateResource(ctx context.Context, req dto.ResourceRequest) (*dto.ResourceResponse, error) {
	title := validation.Clean(req.Title)
	link := validation.Clean(req.Link)
	if field, missing := validation.FirstMissing([2]string{"title", title}, [2]string{"link", link}); missing {
		return nil, apperrors.NewMissingFieldError(field)
	}
	if err := validTitle(&title); err != nil {
		return nil, err
	}
	if err := validateLink(link); err != nil {
		return nil, err
	}

	r := &models.CourseResource{Title: title, Description: validation.Clean(req.Description), Link: link}
	if _, err := s.resourceRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	logger.Info().Int64("resourceID", r.ID).Msg("Resource created")
	resp := dto.FromResource(r)
	return &resp, nil
}

// UpdateResource applies a partial update
func (s *resourceServiceImpl) UpdateResource(ctx context.Context, id int64, req dto.UpdateResourceRequest) (*dto.ResourceResponse, error) {
	update := models.CourseResourceUpdate{
		Title:       validation.CleanPtr(req.Title),
		Description: validation.CleanPtr(req.Description),
		Link:        validation.CleanPtr(req.Link),
	}
	if update.Title == nil && update.Description == nil && update.Link == nil {
		return nil, errNoFields
	}
	if err := notEmpty("title", update.Title); err != nil {
		return nil, err
	}
	if err := validTitle(update.Title); err != nil {
		return nil, err
	}
	if update.Link != nil {
		if err := validateLink(*update.Link); err != nil {
			return nil, err
		}
	}

	if err := s.resourceRepo.Update(ctx, id, update); err != nil {
		return nil, resourceNotFound(err)
	}
	logger.Info().Int64("resourceID", id).Msg("Resource updated")
	return s.GetResource(ctx, id)
}

// DeleteResource removes a resource together with its comments
func (s *resourceServiceImpl) DeleteResource(ctx context.Context, id int64) error {
	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		return resourceNotFound(err)
	}
	logger.Info().Int64("resourceID", id).Msg("Resource deleted")
	return nil
}

// ListComments returns the comments of a resource
func (s *resourceServiceImpl) ListComments(ctx context.Context, resourceID int64) ([]dto.CommentResponse, error) {
	if _, err := s.resourceRepo.GetByID(ctx, resourceID); err != nil {
		return nil, resourceNotFound(err)
	}
	return s.comments.list(ctx, resourceID)
}

// AddComment comments on a resource
func (s *resourceServiceImpl) AddComment(ctx context.Context, actor models.Identity, resourceID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if _, err := s.resourceRepo.GetByID(ctx, resourceID); err != nil {
		return nil, resourceNotFound(err)
	}
	return s.comments.add(ctx, actor, resourceID, req.ReplyID, req.Text)
}

// DeleteComment removes a comment; only the author or an admin may do so
func (s *resourceServiceImpl) DeleteComment(ctx context.Context, actor models.Identity, commentID int64) error {
	return withNotFound(s.comments.remove(ctx, actor, commentID), apperrors.ErrCommentNotFound, "Comment not found")
}
