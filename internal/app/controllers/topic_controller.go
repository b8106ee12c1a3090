package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// TopicFeed upgrades a request into a live subscription of one topic.
type TopicFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, topicID, userID int64) error
}

// TopicController handles the discussion board
type TopicController struct {
	topicService services.TopicService
	feed         TopicFeed
}

// NewTopicController creates a new topic controller
func NewTopicController(topicService services.TopicService, feed TopicFeed) *TopicController {
	return &TopicController{topicService: topicService, feed: feed}
}

// ListTopics lists topics with their author and reply count
// @Summary List topics
// @Tags discussion
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches subject, message or author name"
// @Param sort query string false "Sort field" Enums(subject, author, created_at)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.TopicListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid sort or order"
// @Router /topics [get]
func (c *TopicController) ListTopics(ctx *gin.Context) {
	topics, err := c.topicService.ListTopics(ctx.Request.Context(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, topics, "")
}

// GetTopic returns one topic
// @Summary Get topic
// @Tags discussion
// @Produce json
// @Security BearerAuth
// @Param key path string true "Topic id"
// @Success 200 {object} dto.APIResponse{data=dto.TopicResponse}
// @Failure 404 {object} dto.APIResponse "Topic not found"
// @Router /topics/{key} [get]
func (c *TopicController) GetTopic(ctx *gin.Context) {
	topic, err := c.topicService.GetTopic(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, topic, "")
}

// CreateTopic opens a topic owned by the caller
// @Summary Create topic
// @Tags discussion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTopicRequest true "Topic"
// @Success 201 {object} dto.APIResponse{data=dto.TopicResponse}
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 409 {object} dto.APIResponse "Topic id already exists"
// @Router /topics [post]
func (c *TopicController) CreateTopic(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var req dto.CreateTopicRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	topic, err := c.topicService.CreateTopic(ctx.Request.Context(), identity, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Topic created successfully.")
	respondCreated(ctx, topic, "Topic created successfully")
}

// UpdateTopic edits a topic; owner or admin only
// @Summary Update topic
// @Tags discussion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Topic id"
// @Param request body dto.UpdateTopicRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.TopicResponse}
// @Failure 400 {object} dto.APIResponse "No fields to update"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Topic not found"
// @Router /topics/{key} [put]
func (c *TopicController) UpdateTopic(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var req dto.UpdateTopicRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	topic, err := c.topicService.UpdateTopic(ctx.Request.Context(), identity, ctx.Param("key"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Topic updated successfully.")
	respondOK(ctx, topic, "Topic updated successfully")
}

// DeleteTopic removes a topic and its replies; owner or admin only
// @Summary Delete topic
// @Tags discussion
// @Produce json
// @Security BearerAuth
// @Param key path string true "Topic id"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Topic not found"
// @Router /topics/{key} [delete]
func (c *TopicController) DeleteTopic(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	if err := c.topicService.DeleteTopic(ctx.Request.Context(), identity, ctx.Param("key")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Topic deleted successfully.")
	respondOK(ctx, nil, "Topic deleted successfully")
}

// ListReplies lists the replies of a topic, oldest first
// @Summary List replies
// @Tags discussion
// @Produce json
// @Security BearerAuth
// @Param key path string true "Topic id"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Topic not found"
// @Router /topics/{key}/replies [get]
func (c *TopicController) ListReplies(ctx *gin.Context) {
	replies, err := c.topicService.ListReplies(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, replies, "")
}

// CreateReply replies to a topic
// @Summary Create reply
// @Tags discussion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Topic id"
// @Param request body dto.CreateCommentRequest true "Reply"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 400 {object} dto.APIResponse "Missing or too short text"
// @Failure 404 {object} dto.APIResponse "Parent topic not found"
// @Failure 409 {object} dto.APIResponse "Reply id already exists"
// @Router /topics/{key}/replies [post]
func (c *TopicController) CreateReply(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	reply, err := c.topicService.CreateReply(ctx.Request.Context(), identity, ctx.Param("key"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Reply posted successfully.")
	respondCreated(ctx, reply, "Reply posted successfully")
}

// DeleteReply removes a reply; author or admin only
// @Summary Delete reply
// @Tags discussion
// @Produce json
// @Security BearerAuth
// @Param key path string true "Reply id"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Reply not found"
// @Router /replies/{key} [delete]
func (c *TopicController) DeleteReply(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	if err := c.topicService.DeleteReply(ctx.Request.Context(), identity, ctx.Param("key")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Reply deleted successfully.")
	respondOK(ctx, nil, "Reply deleted successfully")
}

// Live streams changes of a topic over a WebSocket
// @Summary Subscribe to topic changes
// @Description Upgrades to a WebSocket that receives reply.created, reply.deleted, topic.updated and topic.deleted events
// @Tags discussion
// @Security BearerAuth
// @Param key path string true "Topic id"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {string} string "Not a WebSocket handshake"
// @Failure 404 {object} dto.APIResponse "Topic not found"
// @Router /topics/{key}/live [get]
func (c *TopicController) Live(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	topic, err := c.topicService.GetTopic(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	// the upgrader answers failed handshakes itself
	_ = c.feed.Serve(ctx.Writer, ctx.Request, topic.ID, identity.ID)
}
