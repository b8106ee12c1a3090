package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// UserController handles the admin user panel
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers lists users
// @Summary List users
// @Description Admin only. Search matches name, student ID or email.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term"
// @Param sort query string false "Sort field" Enums(name, student_id, email)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid sort or order"
// @Failure 403 {object} dto.APIResponse "Admin access required"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.userService.ListUsers(ctx.Request.Context(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, users, "")
}

// GetUser returns one user
// @Summary Get user by ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user, "")
}

// CreateUser adds an account
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "New user"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 409 {object} dto.APIResponse "Email or student ID already exists"
// @Router /admin/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "User created successfully.")
	respondCreated(ctx, user, "User created successfully")
}

// UpdateUser applies a partial update
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.APIResponse "No fields to update"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 409 {object} dto.APIResponse "Email or student ID already exists"
// @Router /admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.UpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.UpdateUser(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "User updated successfully.")
	respondOK(ctx, user, "User updated successfully")
}

// DeleteUser removes an account with its topics and comments
// @Summary Delete user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Cannot delete yourself"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	identity, found := actor(ctx)
	if !found {
		return
	}
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	if err := c.userService.DeleteUser(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "User deleted successfully.")
	respondOK(ctx, nil, "User deleted successfully")
}

// ResetPassword sets a new password for a user
// @Summary Reset user password
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Password too short"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id}/password [post]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id, valid := idParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.userService.ResetPassword(ctx.Request.Context(), id, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	flash(ctx, session.FlashSuccess, "Password reset successfully.")
	respondOK(ctx, nil, "Password reset successfully")
}
