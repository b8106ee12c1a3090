package services

import (
	"context"
	"mime/multipart"
	"net/url"

	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/filestorage"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

const assignmentFilesDir = "assignments"

// AssignmentService defines the coursework operations
type AssignmentService interface {
	ListAssignments(ctx context.Context, query url.Values) (*dto.AssignmentListResponse, error)
	GetAssignment(ctx context.Context, id int64) (*dto.AssignmentResponse, error)
	CreateAssignment(ctx context.Context, req dto.AssignmentRequest) (*dto.AssignmentResponse, error)
	UpdateAssignment(ctx context.Context, id int64, req dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, id int64) error
	AttachFile(ctx context.Context, id int64, file *multipart.FileHeader) (*dto.AssignmentResponse, error)

	ListComments(ctx context.Context, assignmentID int64) ([]dto.CommentResponse, error)
	AddComment(ctx context.Context, actor models.Identity, assignmentID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor models.Identity, commentID int64) error
}

// assignmentServiceImpl implements the AssignmentService interface
type assignmentServiceImpl struct {
	assignmentRepo repositories.IAssignmentRepository
	storage        filestorage.FileStorage
	comments       commentThread
}

// NewAssignmentService creates a new assignment service instance
func NewAssignmentService(
	assignmentRepo repositories.IAssignmentRepository,
	commentRepo repositories.ICommentRepository,
	authz *auth.AuthorizationService,
	storage filestorage.FileStorage,
) AssignmentService {
	return &assignmentServiceImpl{
		assignmentRepo: assignmentRepo,
		storage:        storage,
		comments: commentThread{
			repo:     commentRepo,
			authz:    authz,
			prefix:   "comment",
			noun:     "Comment",
			parentNF: apperrors.NewCustomError(apperrors.ErrAssignmentNotFound, "Assignment not found"),
		},
	}
}

func assignmentNotFound(err error) error {
	return withNotFound(err, apperrors.ErrAssignmentNotFound, "Assignment not found")
}

// ListAssignments returns one page of assignments
func (s *assignmentServiceImpl) ListAssignments(ctx context.Context, query url.Values) (*dto.AssignmentListResponse, error) {
	params, err := parseList(repositories.AssignmentListSpec, query)
	if err != nil {
		return nil, err
	}
	assignments, pagination, err := s.assignmentRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := &dto.AssignmentListResponse{Assignments: make([]dto.AssignmentResponse, 0, len(assignments)), Pagination: pagination}
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, dto.FromAssignment(a))
	}
	return resp, nil
}

// GetAssignment returns one assignment
func (s *assignmentServiceImpl) GetAssignment(ctx context.Context, id int64) (*dto.AssignmentResponse, error) {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, assignmentNotFound(err)
	}
	resp := dto.FromAssignment(a)
	return &resp, nil
}

// CreateAssignment adds an assignment
func (s *assignmentServiceImpl) CreateAssignment(ctx context.Context, req dto.AssignmentRequest) (*dto.AssignmentResponse, error) {
	title := validation.Clean(req.Title)
	description := validation.Clean(req.Description)
	dueDate := validation.Clean(req.DueDate)
	if field, missing := validation.FirstMissing(
		[2]string{"title", title},
		[2]string{"description", description},
		[2]string{"due_date", dueDate},
	); missing {
		return nil, apperrors.NewMissingFieldError(field)
	}
	if err := validTitle(&title); err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", dueDate)
	if err != nil {
		return nil, err
	}

	a := &models.Assignment{
		Title:       title,
		Description: description,
		DueDate:     due,
		Files:       validation.CleanList(req.Files),
	}
	if _, err := s.assignmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.Info().Int64("assignmentID", a.ID).Msg("Assignment created")
	resp := dto.FromAssignment(a)
	return &resp, nil
}

// UpdateAssignment applies a partial update
func (s *assignmentServiceImpl) UpdateAssignment(ctx context.Context, id int64, req dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	update := models.AssignmentUpdate{
		Title:       validation.CleanPtr(req.Title),
		Description: validation.CleanPtr(req.Description),
	}
	if err := notEmpty("title", update.Title); err != nil {
		return nil, err
	}
	if err := validTitle(update.Title); err != nil {
		return nil, err
	}
	if err := notEmpty("description", update.Description); err != nil {
		return nil, err
	}
	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		update.DueDate = &due
	}
	if req.Files != nil {
		files := validation.CleanList(*req.Files)
		update.Files = &files
	}
	if update.Title == nil && update.Description == nil && update.DueDate == nil && update.Files == nil {
		return nil, errNoFields
	}

	if err := s.assignmentRepo.Update(ctx, id, update); err != nil {
		return nil, assignmentNotFound(err)
	}
	logger.Info().Int64("assignmentID", id).Msg("Assignment updated")
	return s.GetAssignment(ctx, id)
}

// DeleteAssignment removes an assignment, its comments and the files it owns
func (s *assignmentServiceImpl) DeleteAssignment(ctx context.Context, id int64) error {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return assignmentNotFound(err)
	}
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return assignmentNotFound(err)
	}
	for _, f := range a.Files {
		if s.storage == nil || !s.storage.Owns(f) {
			continue
		}
		if err := s.storage.Delete(f); err != nil {
			logger.Warn().Err(err).Str("file", f).Int64("assignmentID", id).Msg("Failed to remove assignment file")
		}
	}
	logger.Info().Int64("assignmentID", id).Msg("Assignment deleted")
	return nil
}

// AttachFile stores an upload and appends its URL to the assignment files
func (s *assignmentServiceImpl) AttachFile(ctx context.Context, id int64, file *multipart.FileHeader) (*dto.AssignmentResponse, error) {
	if file == nil {
		return nil, apperrors.NewMissingFieldError("file")
	}
	if s.storage == nil {
		return nil, apperrors.NewBadRequestError("File uploads are not enabled")
	}
	if _, err := s.assignmentRepo.GetByID(ctx, id); err != nil {
		return nil, assignmentNotFound(err)
	}

	fileURL, err := s.storage.Save(file, assignmentFilesDir)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Failed to store assignment file")
		return nil, err
	}
	if err := s.assignmentRepo.AppendFile(ctx, id, fileURL); err != nil {
		if derr := s.storage.Delete(fileURL); derr != nil {
			logger.Warn().Err(derr).Str("file", fileURL).Msg("Failed to remove orphaned upload")
		}
		return nil, assignmentNotFound(err)
	}

	logger.Info().Int64("assignmentID", id).Str("file", fileURL).Msg("Assignment file attached")
	return s.GetAssignment(ctx, id)
}

// ListComments returns the comments of an assignment
func (s *assignmentServiceImpl) ListComments(ctx context.Context, assignmentID int64) ([]dto.CommentResponse, error) {
	if _, err := s.assignmentRepo.GetByID(ctx, assignmentID); err != nil {
		return nil, assignmentNotFound(err)
	}
	return s.comments.list(ctx, assignmentID)
}

// AddComment comments on an assignment
func (s *assignmentServiceImpl) AddComment(ctx context.Context, actor models.Identity, assignmentID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if _, err := s.assignmentRepo.GetByID(ctx, assignmentID); err != nil {
		return nil, assignmentNotFound(err)
	}
	return s.comments.add(ctx, actor, assignmentID, req.ReplyID, req.Text)
}

// DeleteComment removes a comment; only the author or an admin may do so
func (s *assignmentServiceImpl) DeleteComment(ctx context.Context, actor models.Identity, commentID int64) error {
	return withNotFound(s.comments.remove(ctx, actor, commentID), apperrors.ErrCommentNotFound, "Comment not found")
}
