package auth

import (
	"context"
	"errors"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// CanModify reports whether actor may edit or delete something owned by ownerID.
func CanModify(actor models.Identity, ownerID int64) bool {
	return actor.ID == ownerID || actor.IsAdmin()
}

type identityKey struct{}

// WithIdentity stores the request actor in ctx.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the actor stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok && identity.ID > 0
}

// AuthorizationService handles ownership checks on user-owned content
type AuthorizationService struct {
	topicRepo        repositories.ITopicRepository
	topicCommentRepo repositories.ICommentRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(topicRepo repositories.ITopicRepository, topicCommentRepo repositories.ICommentRepository) *AuthorizationService {
	return &AuthorizationService{
		topicRepo:        topicRepo,
		topicCommentRepo: topicCommentRepo,
	}
}

// ValidateTopicOwnership loads the topic and checks that actor may modify it
func (s *AuthorizationService) ValidateTopicOwnership(ctx context.Context, actor models.Identity, key string) (*models.Topic, error) {
	topic, err := s.topicRepo.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTopicNotFound) {
			logger.Error().Err(err).Str("topicKey", key).Msg("Error loading topic for ownership check")
		}
		return nil, err
	}
	if !CanModify(actor, topic.UserID) {
		logger.Warn().Int64("userID", actor.ID).Str("topicKey", key).Msg("Topic modification denied")
		return nil, apperrors.NewForbiddenError("You can only modify your own topics")
	}
	return topic, nil
}

// ValidateReplyOwnership loads a topic reply by key and checks that actor may modify it
func (s *AuthorizationService) ValidateReplyOwnership(ctx context.Context, actor models.Identity, key string) (*models.Comment, error) {
	reply, err := s.topicCommentRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrCommentNotFound) {
			return nil, apperrors.ErrReplyNotFound
		}
		logger.Error().Err(err).Str("replyKey", key).Msg("Error loading reply for ownership check")
		return nil, err
	}
	if !CanModify(actor, reply.UserID) {
		logger.Warn().Int64("userID", actor.ID).Str("replyKey", key).Msg("Reply deletion denied")
		return nil, apperrors.NewForbiddenError("You can only delete your own replies")
	}
	return reply, nil
}

// ValidateCommentOwnership loads a comment from repo and checks that actor may modify it
func (s *AuthorizationService) ValidateCommentOwnership(ctx context.Context, actor models.Identity, repo repositories.ICommentRepository, id int64) (*models.Comment, error) {
	comment, err := repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCommentNotFound) {
			logger.Error().Err(err).Int64("commentID", id).Msg("Error loading comment for ownership check")
		}
		return nil, err
	}
	if !CanModify(actor, comment.UserID) {
		logger.Warn().Int64("userID", actor.ID).Int64("commentID", id).Msg("Comment deletion denied")
		return nil, apperrors.NewForbiddenError("You can only delete your own comments")
	}
	return comment, nil
}
