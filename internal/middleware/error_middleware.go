package middleware

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// HandleAPIError maps a service error onto its status code and error envelope.
func HandleAPIError(c *gin.Context, err error) {
	status, code, sentinel := classify(err)

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
		return
	}

	message, ok := apperrors.Message(err)
	if !ok {
		message = capitalize(sentinel.Error())
	}
	detail := dto.NewErrorDetail(code, message)
	if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusTooManyRequests {
		detail = detail.WithSeverity(dto.ErrorSeverityWarning)
	}

	var ce *apperrors.CustomError
	if errors.As(err, &ce) && len(ce.Details) > 0 {
		detail = detail.WithDetails(ce.Details)
		if field, ok := ce.Details["field"].(string); ok {
			detail = detail.WithField(field)
		}
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode, error) {
	switch {
	case apperrors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, apperrors.ErrValidationFailed
	case apperrors.Is(err, apperrors.ErrInvalidEmail):
		return http.StatusBadRequest, dto.ErrorCodeInvalidEmail, apperrors.ErrInvalidEmail
	case apperrors.Is(err, apperrors.ErrPasswordTooShort):
		return http.StatusBadRequest, dto.ErrorCodeInvalidPassword, apperrors.ErrPasswordTooShort
	case apperrors.Is(err, apperrors.ErrPasswordTooLong):
		return http.StatusBadRequest, dto.ErrorCodeInvalidPassword, apperrors.ErrPasswordTooLong
	case apperrors.Is(err, apperrors.ErrPasswordMismatch):
		return http.StatusBadRequest, dto.ErrorCodeInvalidPassword, apperrors.ErrPasswordMismatch
	case apperrors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeBadRequest, apperrors.ErrBadRequest
	case apperrors.Is(err, apperrors.ErrCannotDeleteSelf):
		return http.StatusBadRequest, dto.ErrorCodeBadRequest, apperrors.ErrCannotDeleteSelf

	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, apperrors.ErrInvalidCredentials
	case apperrors.Is(err, apperrors.ErrWrongCurrentPassword):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, apperrors.ErrWrongCurrentPassword
	case apperrors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, apperrors.ErrTokenExpired
	case apperrors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, apperrors.ErrTokenInvalid
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized, apperrors.ErrUnauthorized

	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, apperrors.ErrPermissionDenied

	case apperrors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrUserNotFound
	case apperrors.Is(err, apperrors.ErrTopicNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrTopicNotFound
	case apperrors.Is(err, apperrors.ErrReplyNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrReplyNotFound
	case apperrors.Is(err, apperrors.ErrAssignmentNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrAssignmentNotFound
	case apperrors.Is(err, apperrors.ErrCourseResNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrCourseResNotFound
	case apperrors.Is(err, apperrors.ErrWeekNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrWeekNotFound
	case apperrors.Is(err, apperrors.ErrCommentNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrCommentNotFound
	case apperrors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrResourceNotFound

	case apperrors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrEmailAlreadyExists
	case apperrors.Is(err, apperrors.ErrStudentIDExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrStudentIDExists
	case apperrors.Is(err, apperrors.ErrTopicKeyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrTopicKeyExists
	case apperrors.Is(err, apperrors.ErrReplyKeyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrReplyKeyExists
	case apperrors.Is(err, apperrors.ErrWeekKeyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrWeekKeyExists
	case apperrors.Is(err, apperrors.ErrCommentKeyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrCommentKeyExists
	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrConflict

	case apperrors.Is(err, apperrors.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, dto.ErrorCodeMethodNotAllowed, apperrors.ErrMethodNotAllowed
	case apperrors.Is(err, apperrors.ErrTooManyAttempts):
		return http.StatusTooManyRequests, dto.ErrorCodeTooManyAttempts, apperrors.ErrTooManyAttempts
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, nil
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// NoRoute answers unknown paths with the JSON envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Endpoint not found").
			WithDetails(strings.TrimSpace(c.Request.Method + " " + c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(detail))
	}
}

// NoMethod answers a known path used with an unsupported method.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrMethodNotAllowed, "Method not allowed"))
	}
}

// Recovery turns a panic into a logged 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	})
}
