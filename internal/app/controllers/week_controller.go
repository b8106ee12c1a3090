package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// WeekController handles weekly content and its comments
type WeekController struct {
	weekService services.WeekService
}

// NewWeekController creates a new week controller
func NewWeekController(weekService services.WeekService) *WeekController {
	return &WeekController{weekService: weekService}
}

// ListWeeks lists weeks, earliest first by default
// @Summary List weeks
// @Tags weeks
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches title or description"
// @Param sort query string false "Sort field" Enums(start_date, title)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} dto.APIResponse{data=dto.WeekListResponse}
// @Router /weeks [get]
func (c *WeekController) ListWeeks(ctx *gin.Context) {
	weeks, err := c.weekService.ListWeeks(ctx.Request.Context(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, weeks, "")
}

// GetWeek returns one week
// @Summary Get week
// @Tags weeks
// @Produce json
// @Security BearerAuth
// @Param key path string true "Week id"
// @Success 200 {object} dto.APIResponse{data=dto.WeekResponse}
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Router /weeks/{key} [get]
func (c *WeekController) GetWeek(ctx *gin.Context) {
	week, err := c.weekService.GetWeek(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, week, "")
}

// CreateWeek adds a week
// @Summary Create week
// @Tags weeks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.WeekRequest true "Week"
// @Success 201 {object} dto.APIResponse{data=dto.WeekResponse}
// @Failure 400 {object} dto.APIResponse "Missing field or invalid date"
// @Failure 409 {object} dto.APIResponse "Week id already exists"
// @Router /weeks [post]
func (c *WeekController) CreateWeek(ctx *gin.Context) {
	var req dto.WeekRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	week, err := c.weekService.CreateWeek(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, week, "Week created successfully")
}

// UpdateWeek applies a partial update
// @Summary Update week
// @Tags weeks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Week id"
// @Param request body dto.UpdateWeekRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.WeekResponse}
// @Failure 400 {object} dto.APIResponse "No fields to update"
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Router /weeks/{key} [put]
func (c *WeekController) UpdateWeek(ctx *gin.Context) {
	var req dto.UpdateWeekRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	week, err := c.weekService.UpdateWeek(ctx.Request.Context(), ctx.Param("key"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, week, "Week updated successfully")
}

// DeleteWeek removes a week and its comments
// @Summary Delete week
// @Tags weeks
// @Produce json
// @Security BearerAuth
// @Param key path string true "Week id"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Router /weeks/{key} [delete]
func (c *WeekController) DeleteWeek(ctx *gin.Context) {
	if err := c.weekService.DeleteWeek(ctx.Request.Context(), ctx.Param("key")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Week deleted successfully")
}

// ListComments lists the comments of a week
// @Summary List week comments
// @Tags weeks
// @Produce json
// @Security BearerAuth
// @Param key path string true "Week id"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Router /weeks/{key}/comments [get]
func (c *WeekController) ListComments(ctx *gin.Context) {
	comments, err := c.weekService.ListComments(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, comments, "")
}

// AddComment comments on a week
// @Summary Comment on week
// @Tags weeks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Week id"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Router /weeks/{key}/comments [post]
func (c *WeekController) AddComment(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	comment, err := c.weekService.AddComment(ctx.Request.Context(), identity, ctx.Param("key"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Comment posted successfully.")
	respondCreated(ctx, comment, "Comment posted successfully")
}

// DeleteComment removes a week comment; author or admin only
// @Summary Delete week comment
// @Tags weeks
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /weeks/comments/{commentId} [delete]
func (c *WeekController) DeleteComment(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	id, valid := idParam(ctx, "commentId")
	if !valid {
		return
	}
	if err := c.weekService.DeleteComment(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Comment deleted successfully.")
	respondOK(ctx, nil, "Comment deleted successfully")
}
