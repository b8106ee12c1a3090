package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

// Login handles user login
// @Summary User login
// @Description Checks the credentials, starts a cookie session and returns a bearer token for API clients
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Missing email or password"
// @Failure 401 {object} dto.APIResponse "Invalid email or password"
// @Failure 429 {object} dto.APIResponse "Too many failed attempts"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req, ctx.ClientIP())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	identity := result.User.Identity()
	if err := session.SetIdentity(ctx, identity); err != nil {
		c.logger.Error().Err(err).Int64("userID", identity.ID).Msg("Failed to save session")
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Welcome back, "+identity.Name+"!")

	respondOK(ctx, dto.LoginResponse{
		User:        dto.FromIdentity(identity),
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
	}, "Login successful")
}

// Logout ends the session
// @Summary Log out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := session.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("Failed to clear session")
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "You have been logged out.")
	respondOK(ctx, nil, "Logged out successfully")
}

// Me returns the logged-in identity
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.IdentityResponse}
// @Failure 401 {object} dto.APIResponse "Not logged in"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	respondOK(ctx, dto.FromIdentity(identity), "")
}

// ChangePassword changes the password of the logged-in user
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.APIResponse "Missing field, too short or mismatch"
// @Failure 401 {object} dto.APIResponse "Current password is incorrect"
// @Router /auth/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authService.ChangePassword(ctx.Request.Context(), identity, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Password changed successfully.")
	respondOK(ctx, nil, "Password changed successfully")
}
