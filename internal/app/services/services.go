// Package services holds the business rules of the course site. Controllers and
// the query-dispatch API call the same services.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/helpers"
	"github.com/yigit/coursehub/internal/pkg/listquery"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// KeyMaxLength bounds client supplied topic, reply and week ids.
const KeyMaxLength = 100

var errNoFields = apperrors.NewBadRequestError("No fields to update")

// newKey builds a public id such as topic_1b4e28ba-2fa1-11d2-883f-0016d3cca427.
func newKey(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// resolveKey trims a client supplied key or generates one when it is empty.
func resolveKey(field, given, prefix string) (string, error) {
	key := validation.Clean(given)
	if key == "" {
		return newKey(prefix), nil
	}
	if !validation.LengthBetween(key, 1, KeyMaxLength) {
		return "", apperrors.NewBadRequestError(fmt.Sprintf("%s must be at most %d characters", field, KeyMaxLength))
	}
	return key, nil
}

func parseList(spec listquery.Spec, query url.Values) (listquery.Params, error) {
	if query == nil {
		query = url.Values{}
	}
	return spec.ParseValues(query)
}

// parseDate validates a required YYYY-MM-DD field.
func parseDate(field, value string) (time.Time, error) {
	t, ok := helpers.ParseDate(validation.Clean(value))
	if !ok {
		return time.Time{}, apperrors.NewBadRequestError(fmt.Sprintf("Invalid date format for %s. Use YYYY-MM-DD", field))
	}
	return t, nil
}

// validTitle bounds the title column shared by assignments, resources and weeks.
// A nil title is an update that leaves it unchanged.
func validTitle(title *string) error {
	if title != nil && !validation.LengthBetween(*title, 1, validation.TitleMaxLength) {
		return apperrors.NewBadRequestError(fmt.Sprintf("Title must be at most %d characters", validation.TitleMaxLength))
	}
	return nil
}

// notEmpty rejects a provided-but-blank field of a partial update.
func notEmpty(field string, value *string) error {
	if value != nil && *value == "" {
		return apperrors.NewBadRequestError(fmt.Sprintf("%s cannot be empty", field))
	}
	return nil
}

// withMessage keeps err matchable while giving it the client facing text.
func withMessage(err error, message string) error {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return apperrors.NewCustomError(err, message)
}

// withNotFound attaches message when err is the given not-found sentinel.
func withNotFound(err, notFound error, message string) error {
	if errors.Is(err, notFound) {
		return withMessage(err, message)
	}
	return err
}

// commentThread implements the comment operations shared by every commentable entity.
type commentThread struct {
	repo     repositories.ICommentRepository
	authz    *auth.AuthorizationService
	prefix   string
	noun     string // capitalized, as used in messages
	parentNF error
}

func (t commentThread) list(ctx context.Context, parentID int64) ([]dto.CommentResponse, error) {
	comments, err := t.repo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return dto.FromComments(comments), nil
}

func (t commentThread) add(ctx context.Context, actor models.Identity, parentID int64, key, text string) (*dto.CommentResponse, error) {
	text = validation.Clean(text)
	if text == "" {
		return nil, apperrors.NewMissingFieldError("text")
	}
	if !validation.LengthBetween(text, validation.CommentMinLength, 0) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s must be at least %d characters", t.noun, validation.CommentMinLength))
	}
	key, err := resolveKey(t.prefix+"_id", key, t.prefix)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{Key: key, ParentID: parentID, UserID: actor.ID, Text: text}
	if _, err := t.repo.Create(ctx, comment); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrResourceNotFound):
			return nil, t.parentNF
		case apperrors.Is(err, apperrors.ErrReplyKeyExists, apperrors.ErrCommentKeyExists):
			return nil, withMessage(err, t.noun+" id already exists")
		}
		return nil, err
	}

	comment.AuthorName, comment.AuthorRole = actor.Name, actor.Role
	resp := dto.FromComment(comment)
	logger.Info().Int64("userID", actor.ID).Int64("parentID", parentID).Str("key", key).Msgf("%s added", t.noun)
	return &resp, nil
}

func (t commentThread) remove(ctx context.Context, actor models.Identity, commentID int64) error {
	comment, err := t.authz.ValidateCommentOwnership(ctx, actor, t.repo, commentID)
	if err != nil {
		return err
	}
	if err := t.repo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	logger.Info().Int64("userID", actor.ID).Int64("commentID", commentID).Msgf("%s deleted", t.noun)
	return nil
}
