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
	"github.com/yigit/coursehub/internal/pkg/websocket"
)

// TopicService defines the discussion board operations
type TopicService interface {
	ListTopics(ctx context.Context, query url.Values) (*dto.TopicListResponse, error)
	GetTopic(ctx context.Context, key string) (*dto.TopicResponse, error)
	CreateTopic(ctx context.Context, actor models.Identity, req dto.CreateTopicRequest) (*dto.TopicResponse, error)
	UpdateTopic(ctx context.Context, actor models.Identity, key string, req dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	DeleteTopic(ctx context.Context, actor models.Identity, key string) error

	ListReplies(ctx context.Context, topicKey string) ([]dto.CommentResponse, error)
	CreateReply(ctx context.Context, actor models.Identity, topicKey string, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	DeleteReply(ctx context.Context, actor models.Identity, replyKey string) error
}

// topicServiceImpl implements the TopicService interface
type topicServiceImpl struct {
	topicRepo repositories.ITopicRepository
	replyRepo repositories.ICommentRepository
	authz     *auth.AuthorizationService
	replies   commentThread
	events    websocket.Publisher
}

// NewTopicService creates a new topic service instance. events may be nil.
func NewTopicService(topicRepo repositories.ITopicRepository, replyRepo repositories.ICommentRepository, authz *auth.AuthorizationService, events websocket.Publisher) TopicService {
	if events == nil {
		events = websocket.Discard
	}
	return &topicServiceImpl{
		topicRepo: topicRepo,
		replyRepo: replyRepo,
		authz:     authz,
		events:    events,
		replies: commentThread{
			repo:     replyRepo,
			authz:    authz,
			prefix:   "reply",
			noun:     "Reply",
			parentNF: apperrors.NewCustomError(apperrors.ErrTopicNotFound, "Parent topic not found"),
		},
	}
}

func topicNotFound(err error) error {
	return withNotFound(err, apperrors.ErrTopicNotFound, "Topic not found")
}

func validateSubject(subject string) error {
	if !validation.LengthBetween(subject, validation.TopicSubjectMinLength, validation.TopicSubjectMaxLength) {
		return apperrors.NewBadRequestError(fmt.Sprintf("Subject must be between %d and %d characters",
			validation.TopicSubjectMinLength, validation.TopicSubjectMaxLength))
	}
	return nil
}

func validateMessage(message string) error {
	if !validation.LengthBetween(message, validation.TopicMessageMinLength, 0) {
		return apperrors.NewBadRequestError(fmt.Sprintf("Message must be at least %d characters", validation.TopicMessageMinLength))
	}
	return nil
}

// ListTopics returns one page of topics with author and reply count
func (s *topicServiceImpl) ListTopics(ctx context.Context, query url.Values) (*dto.TopicListResponse, error) {
	params, err := parseList(repositories.TopicListSpec, query)
	if err != nil {
		return nil, err
	}
	topics, pagination, err := s.topicRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := &dto.TopicListResponse{Topics: make([]dto.TopicResponse, 0, len(topics)), Pagination: pagination}
	for _, t := range topics {
		resp.Topics = append(resp.Topics, dto.FromTopic(t))
	}
	return resp, nil
}

// GetTopic returns one topic by its public id
func (s *topicServiceImpl) GetTopic(ctx context.Context, key string) (*dto.TopicResponse, error) {
	topic, err := s.topicRepo.GetByKey(ctx, validation.Clean(key))
	if err != nil {
		return nil, topicNotFound(err)
	}
	resp := dto.FromTopic(topic)
	return &resp, nil
}

// CreateTopic opens a thread owned by actor
func (s *topicServiceImpl) CreateTopic(ctx context.Context, actor models.Identity, req dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	subject := validation.Clean(req.Subject)
	message := validation.Clean(req.Message)
	if field, missing := validation.FirstMissing([2]string{"subject", subject}, [2]string{"message", message}); missing {
		return nil, apperrors.NewMissingFieldError(field)
	}
	if err := validateSubject(subject); err != nil {
		return nil, err
	}
	if err := validateMessage(message); err != nil {
		return nil, err
	}
	key, err := resolveKey("topic_id", req.TopicID, "topic")
	if err != nil {
		return nil, err
	}

	topic := &models.Topic{Key: key, UserID: actor.ID, Subject: subject, Message: message}
	if _, err := s.topicRepo.Create(ctx, topic); err != nil {
		if apperrors.Is(err, apperrors.ErrTopicKeyExists) {
			return nil, withMessage(err, "Topic id already exists")
		}
		return nil, err
	}

	logger.Info().Int64("userID", actor.ID).Str("topicKey", key).Msg("Topic created")
	topic.AuthorName, topic.AuthorRole = actor.Name, actor.Role
	resp := dto.FromTopic(topic)
	return &resp, nil
}

// UpdateTopic edits subject and/or message; only the owner or an admin may do so
func (s *topicServiceImpl) UpdateTopic(ctx context.Context, actor models.Identity, key string, req dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	update := models.TopicUpdate{
		Subject: validation.CleanPtr(req.Subject),
		Message: validation.CleanPtr(req.Message),
	}
	if update.Subject == nil && update.Message == nil {
		return nil, errNoFields
	}
	if update.Subject != nil {
		if err := validateSubject(*update.Subject); err != nil {
			return nil, err
		}
	}
	if update.Message != nil {
		if err := validateMessage(*update.Message); err != nil {
			return nil, err
		}
	}

	topic, err := s.authz.ValidateTopicOwnership(ctx, actor, validation.Clean(key))
	if err != nil {
		return nil, topicNotFound(err)
	}
	if err := s.topicRepo.Update(ctx, topic.ID, update); err != nil {
		return nil, topicNotFound(err)
	}

	logger.Info().Int64("userID", actor.ID).Str("topicKey", topic.Key).Msg("Topic updated")
	resp, err := s.GetTopic(ctx, topic.Key)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.Event{Type: websocket.EventTopicUpdated, TopicID: topic.ID, Data: resp})
	return resp, nil
}

// DeleteTopic removes a thread and its replies; only the owner or an admin may do so
func (s *topicServiceImpl) DeleteTopic(ctx context.Context, actor models.Identity, key string) error {
	topic, err := s.authz.ValidateTopicOwnership(ctx, actor, validation.Clean(key))
	if err != nil {
		return topicNotFound(err)
	}
	if err := s.topicRepo.Delete(ctx, topic.ID); err != nil {
		return topicNotFound(err)
	}
	logger.Info().Int64("userID", actor.ID).Str("topicKey", topic.Key).Msg("Topic deleted")
	s.events.Publish(websocket.Event{Type: websocket.EventTopicDeleted, TopicID: topic.ID, Data: map[string]string{"topic_id": topic.Key}})
	return nil
}

// ListReplies returns the replies of a topic, oldest first
func (s *topicServiceImpl) ListReplies(ctx context.Context, topicKey string) ([]dto.CommentResponse, error) {
	topicKey = validation.Clean(topicKey)
	if topicKey == "" {
		return nil, apperrors.NewMissingFieldError("topic_id")
	}
	topic, err := s.topicRepo.GetByKey(ctx, topicKey)
	if err != nil {
		return nil, topicNotFound(err)
	}
	return s.replies.list(ctx, topic.ID)
}

// CreateReply adds a reply to a topic
func (s *topicServiceImpl) CreateReply(ctx context.Context, actor models.Identity, topicKey string, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	topicKey = validation.Clean(topicKey)
	if topicKey == "" {
		return nil, apperrors.NewMissingFieldError("topic_id")
	}
	topic, err := s.topicRepo.GetByKey(ctx, topicKey)
	if err != nil {
		return nil, withNotFound(err, apperrors.ErrTopicNotFound, "Parent topic not found")
	}
	reply, err := s.replies.add(ctx, actor, topic.ID, req.ReplyID, req.Text)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.Event{Type: websocket.EventReplyCreated, TopicID: topic.ID, Data: reply})
	return reply, nil
}

// DeleteReply removes a reply by its public id; only the author or an admin may do so
func (s *topicServiceImpl) DeleteReply(ctx context.Context, actor models.Identity, replyKey string) error {
	reply, err := s.authz.ValidateReplyOwnership(ctx, actor, validation.Clean(replyKey))
	if err != nil {
		return withNotFound(err, apperrors.ErrReplyNotFound, "Reply not found")
	}
	if err := s.replyRepo.Delete(ctx, reply.ID); err != nil {
		return withNotFound(err, apperrors.ErrCommentNotFound, "Reply not found")
	}
	logger.Info().Int64("userID", actor.ID).Str("replyKey", reply.Key).Msg("Reply deleted")
	s.events.Publish(websocket.Event{Type: websocket.EventReplyDeleted, TopicID: reply.ParentID, Data: map[string]string{"comment_id": reply.Key}})
	return nil
}
