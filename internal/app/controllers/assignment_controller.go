package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// AssignmentController handles assignments, their files and comments
type AssignmentController struct {
	assignmentService services.AssignmentService
}

// NewAssignmentController creates a new assignment controller
func NewAssignmentController(assignmentService services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// ListAssignments lists assignments
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches title or description"
// @Param sort query string false "Sort field" Enums(title, due_date, created_at)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid sort or order"
// @Router /assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	assignments, err := c.assignmentService.ListAssignments(ctx.Request.Context(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, assignments, "")
}

// GetAssignment returns one assignment
// @Summary Get assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentResponse}
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	assignment, err := c.assignmentService.GetAssignment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, assignment, "")
}

// CreateAssignment adds an assignment
// @Summary Create assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignmentRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=dto.AssignmentResponse}
// @Failure 400 {object} dto.APIResponse "Missing field or invalid date"
// @Router /assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req dto.AssignmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	assignment, err := c.assignmentService.CreateAssignment(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, assignment, "Assignment created successfully")
}

// UpdateAssignment applies a partial update
// @Summary Update assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body dto.UpdateAssignmentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentResponse}
// @Failure 400 {object} dto.APIResponse "No fields to update"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Router /assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	assignment, err := c.assignmentService.UpdateAssignment(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, assignment, "Assignment updated successfully")
}

// DeleteAssignment removes an assignment and its comments
// @Summary Delete assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Router /assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	if err := c.assignmentService.DeleteAssignment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Assignment deleted successfully")
}

// UploadFile attaches an uploaded file to an assignment
// @Summary Attach file
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param file formData file true "File to attach"
// @Success 201 {object} dto.APIResponse{data=dto.AssignmentResponse}
// @Failure 400 {object} dto.APIResponse "Missing file"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Router /assignments/{id}/files [post]
func (c *AssignmentController) UploadFile(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid multipart upload"))
		return
	}
	assignment, err := c.assignmentService.AttachFile(ctx.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, assignment, "File uploaded successfully")
}

// ListComments lists the comments of an assignment
// @Summary List assignment comments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Router /assignments/{id}/comments [get]
func (c *AssignmentController) ListComments(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	comments, err := c.assignmentService.ListComments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, comments, "")
}

// AddComment comments on an assignment
// @Summary Comment on assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 400 {object} dto.APIResponse "Missing or too short text"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Router /assignments/{id}/comments [post]
func (c *AssignmentController) AddComment(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	comment, err := c.assignmentService.AddComment(ctx.Request.Context(), identity, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Comment posted successfully.")
	respondCreated(ctx, comment, "Comment posted successfully")
}

// DeleteComment removes an assignment comment; author or admin only
// @Summary Delete assignment comment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /assignments/comments/{commentId} [delete]
func (c *AssignmentController) DeleteComment(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	id, valid := idParam(ctx, "commentId")
	if !valid {
		return
	}
	if err := c.assignmentService.DeleteComment(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Comment deleted successfully.")
	respondOK(ctx, nil, "Comment deleted successfully")
}
