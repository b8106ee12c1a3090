package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// ResourceController handles course resources and their comments
type ResourceController struct {
	resourceService services.ResourceService
}

// NewResourceController creates a new resource controller
func NewResourceController(resourceService services.ResourceService) *ResourceController {
	return &ResourceController{resourceService: resourceService}
}

// ListResources lists resources
// @Summary List resources
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches title or description"
// @Param sort query string false "Sort field" Enums(title, created_at)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} dto.APIResponse{data=dto.ResourceListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid sort or order"
// @Router /resources [get]
func (c *ResourceController) ListResources(ctx *gin.Context) {
	resources, err := c.resourceService.ListResources(ctx.Request.Context(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resources, "")
}

// GetResource returns one resource
// @Summary Get resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} dto.APIResponse{data=dto.ResourceResponse}
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id} [get]
func (c *ResourceController) GetResource(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	resource, err := c.resourceService.GetResource(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resource, "")
}

// CreateResource adds a resource
// @Summary Create resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ResourceRequest true "Resource"
// @Success 201 {object} dto.APIResponse{data=dto.ResourceResponse}
// @Failure 400 {object} dto.APIResponse "Missing field or invalid link"
// @Router /resources [post]
func (c *ResourceController) CreateResource(ctx *gin.Context) {
	var req dto.ResourceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resource, err := c.resourceService.CreateResource(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resource, "Resource created successfully")
}

// UpdateResource applies a partial update
// @Summary Update resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param request body dto.UpdateResourceRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ResourceResponse}
// @Failure 400 {object} dto.APIResponse "No fields to update or invalid link"
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id} [put]
func (c *ResourceController) UpdateResource(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.UpdateResourceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resource, err := c.resourceService.UpdateResource(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resource, "Resource updated successfully")
}

// DeleteResource removes a resource and its comments in one transaction
// @Summary Delete resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id} [delete]
func (c *ResourceController) DeleteResource(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	if err := c.resourceService.DeleteResource(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Resource deleted successfully")
}

// ListComments lists the comments of a resource
// @Summary List resource comments
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id}/comments [get]
func (c *ResourceController) ListComments(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	comments, err := c.resourceService.ListComments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, comments, "")
}

// AddComment comments on a resource
// @Summary Comment on resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resource ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id}/comments [post]
func (c *ResourceController) AddComment(ctx *gin.Context) {
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
	comment, err := c.resourceService.AddComment(ctx.Request.Context(), identity, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Comment posted successfully.")
	respondCreated(ctx, comment, "Comment posted successfully")
}

// DeleteComment removes a resource comment; author or admin only
// @Summary Delete resource comment
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /resources/comments/{commentId} [delete]
func (c *ResourceController) DeleteComment(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	id, valid := idParam(ctx, "commentId")
	if !valid {
		return
	}
	if err := c.resourceService.DeleteComment(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Comment deleted successfully.")
	respondOK(ctx, nil, "Comment deleted successfully")
}
