package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/loginguard"
	"github.com/yigit/coursehub/internal/pkg/metrics"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// Login outcomes reported to metrics.
const (
	loginSuccess   = "success"
	loginFailure   = "failure"
	loginThrottled = "throttled"
)

// LoginResult is a successful login.
type LoginResult struct {
	User        *models.User
	AccessToken string
	ExpiresIn   int
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	hasher     auth.Hasher
	guard      loginguard.Guard
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService. metrics may be nil.
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	hasher auth.Hasher,
	guard loginguard.Guard,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		hasher:     hasher,
		guard:      guard,
		metrics:    metrics,
		logger:     logger,
	}
}

func invalidCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
}

// Login checks the credentials and issues an access token. clientIP scopes the
// failed attempt counter together with the email.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, clientIP string) (*LoginResult, error) {
	email := validation.Clean(req.Email)
	if field, missing := validation.FirstMissing([2]string{"email", email}, [2]string{"password", req.Password}); missing {
		return nil, apperrors.NewMissingFieldError(field)
	}

	guardKey := loginguard.Key(email, clientIP)
	allowed, err := s.guard.Allowed(ctx, guardKey)
	if err != nil {
		// fail open when the counter backend is down
		s.logger.Warn().Err(err).Msg("Login guard unavailable")
		allowed = true
	}
	if !allowed {
		s.metrics.LoginOutcome(loginThrottled)
		s.logger.Warn().Str("email", email).Str("ip", clientIP).Msg("Login throttled")
		return nil, apperrors.NewCustomError(apperrors.ErrTooManyAttempts, "Too many failed login attempts. Please try again later.")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if user == nil || !s.hasher.Check(user.Password, req.Password) {
		if ferr := s.guard.Fail(ctx, guardKey); ferr != nil {
			s.logger.Warn().Err(ferr).Msg("Failed to record login attempt")
		}
		s.metrics.LoginOutcome(loginFailure)
		s.logger.Info().Str("email", email).Str("ip", clientIP).Msg("Login failed")
		return nil, invalidCredentials()
	}

	if err := s.guard.Reset(ctx, guardKey); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reset login attempts")
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(user.Identity())
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate access token")
		return nil, err
	}

	s.metrics.LoginOutcome(loginSuccess)
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &LoginResult{User: user, AccessToken: token, ExpiresIn: expiresIn}, nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor models.Identity, req dto.ChangePasswordRequest) error {
	if field, missing := validation.FirstMissing(
		[2]string{"current_password", req.CurrentPassword},
		[2]string{"new_password", req.NewPassword},
		[2]string{"confirm_password", req.ConfirmPassword},
	); missing {
		return apperrors.NewMissingFieldError(field)
	}
	if err := checkPasswordLength("New password", req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewCustomError(apperrors.ErrPasswordMismatch, "New passwords do not match")
	}

	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !s.hasher.Check(user.Password, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrWrongCurrentPassword, "Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	return nil
}

// Authenticate validates a bearer token and returns its identity.
func (s *AuthService) Authenticate(token string) (models.Identity, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return models.Identity{}, apperrors.NewCustomError(apperrors.ErrTokenExpired, "Token expired")
		}
		return models.Identity{}, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid token")
	}
	return claims.Identity(), nil
}
